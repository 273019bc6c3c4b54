package analysis

// Default threshold values. These match common print-shop practice: 300% TAC
// for coated offset stock, the 72/150/300 DPI bands, 3mm bleed.
const (
	DefaultMaxInkCoverage     = 300.0
	DefaultWarningInkCoverage = 250.0
	DefaultMinImageDPI        = 72
	DefaultWarningImageDPI    = 150
	DefaultOptimalImageDPI    = 300
	DefaultStandardBleedMM    = 3.0
	DefaultSizeToleranceMM    = 2.0
	DefaultMinTextSizePt      = 4.0
	DefaultInkCalculationDPI  = 150
	DefaultWorkerCount        = 3
)

// Settings is the immutable configuration snapshot for one batch run. It is
// loaded once, normalized, and passed by value; nothing mutates it mid-run.
type Settings struct {
	MaxInkCoverage     float64 `toml:"max_ink_coverage"`
	WarningInkCoverage float64 `toml:"warning_ink_coverage"`

	MinImageDPI     int `toml:"min_image_dpi"`
	WarningImageDPI int `toml:"warning_image_dpi"`
	OptimalImageDPI int `toml:"optimal_image_dpi"`

	StandardBleedSizeMM float64 `toml:"standard_bleed_size_mm"`
	PageSizeToleranceMM float64 `toml:"page_size_tolerance_mm"`
	MinTextSizePt       float64 `toml:"min_text_size_pt"`

	CheckTransparency bool `toml:"check_transparency"`
	CheckOverprint    bool `toml:"check_overprint"`
	CheckBleed        bool `toml:"check_bleed"`
	CheckSpotColors   bool `toml:"check_spot_colors"`

	InkCoverageEnabled bool `toml:"ink_coverage_enabled"`
	InkCalculationDPI  int  `toml:"ink_calculation_dpi"`

	WorkerCount int `toml:"worker_count"`

	AutoConvertRGB   bool `toml:"auto_convert_rgb"`
	AutoOutlineFonts bool `toml:"auto_outline_fonts"`
}

// DefaultSettings returns the full default configuration. Configuration files
// are decoded over this value, so absent keys keep their defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxInkCoverage:      DefaultMaxInkCoverage,
		WarningInkCoverage:  DefaultWarningInkCoverage,
		MinImageDPI:         DefaultMinImageDPI,
		WarningImageDPI:     DefaultWarningImageDPI,
		OptimalImageDPI:     DefaultOptimalImageDPI,
		StandardBleedSizeMM: DefaultStandardBleedMM,
		PageSizeToleranceMM: DefaultSizeToleranceMM,
		MinTextSizePt:       DefaultMinTextSizePt,
		CheckTransparency:   true,
		CheckOverprint:      true,
		CheckBleed:          true,
		CheckSpotColors:     true,
		InkCoverageEnabled:  false,
		InkCalculationDPI:   DefaultInkCalculationDPI,
		WorkerCount:         DefaultWorkerCount,
		AutoConvertRGB:      false,
		AutoOutlineFonts:    false,
	}
}

// Normalized fills unset numeric fields with their defaults. Boolean toggles
// are left as-is; callers that need the default toggles should start from
// DefaultSettings.
func (s Settings) Normalized() Settings {
	if s.MaxInkCoverage <= 0 {
		s.MaxInkCoverage = DefaultMaxInkCoverage
	}

	if s.WarningInkCoverage <= 0 {
		s.WarningInkCoverage = DefaultWarningInkCoverage
	}

	if s.MinImageDPI <= 0 {
		s.MinImageDPI = DefaultMinImageDPI
	}

	if s.WarningImageDPI <= 0 {
		s.WarningImageDPI = DefaultWarningImageDPI
	}

	if s.OptimalImageDPI <= 0 {
		s.OptimalImageDPI = DefaultOptimalImageDPI
	}

	if s.StandardBleedSizeMM <= 0 {
		s.StandardBleedSizeMM = DefaultStandardBleedMM
	}

	if s.PageSizeToleranceMM <= 0 {
		s.PageSizeToleranceMM = DefaultSizeToleranceMM
	}

	if s.MinTextSizePt <= 0 {
		s.MinTextSizePt = DefaultMinTextSizePt
	}

	if s.InkCalculationDPI <= 0 {
		s.InkCalculationDPI = DefaultInkCalculationDPI
	}

	if s.WorkerCount <= 0 {
		s.WorkerCount = DefaultWorkerCount
	}

	return s
}
