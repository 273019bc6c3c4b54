package analysis

import (
	"sort"
	"time"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
)

// Severity ranks a finding. "ok" is never stored as a finding.
type Severity string

// Severity levels, worst first.
const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank returns an ordering value for worst-severity reduction; lower is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityError:
		return 1
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 3
	default:
		return 4
	}
}

// Finding types emitted by the issue checks and the print-quality checks.
const (
	FindingPageSizeInconsistent  = "page_size_inconsistent"
	FindingFontNotEmbedded       = "font_not_embedded"
	FindingRGBOnly               = "rgb_only"
	FindingSpotColors            = "spot_colors"
	FindingLowResolutionImage    = "low_resolution_image"
	FindingMediumResolutionImage = "medium_resolution_image"
	FindingHighInkCoverage       = "high_ink_coverage"
	FindingInsufficientBleed     = "insufficient_bleed"
	FindingTransparency          = "transparency"
	FindingWhiteOverprint        = "white_overprint"
	FindingOverprint             = "overprint"
	FindingSmallText             = "small_text"
	FindingUncompressedImages    = "uncompressed_images"
)

// Finding is one typed, severity-ranked defect report. Pages is sorted
// ascending. Meta is a narrow extension point for detector-specific detail
// (font lists, minimum DPI, suggestions).
type Finding struct {
	Type     string         `json:"type"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Pages    []int          `json:"pages,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// FileInfo identifies the analyzed file.
type FileInfo struct {
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	SizeBytes   int64  `json:"size_bytes"`
	SizeDisplay string `json:"size_display"`
}

// BasicInfo holds the document-level facts. Immutable once created.
type BasicInfo struct {
	PageCount  int               `json:"page_count"`
	Version    string            `json:"version"`
	Encrypted  bool              `json:"encrypted"`
	Linearized bool              `json:"linearized"`
	Metadata   document.Metadata `json:"metadata"`
}

// BleedInfo holds the per-edge bleed margins in millimeters.
type BleedInfo struct {
	LeftMM   float64 `json:"left_mm"`
	BottomMM float64 `json:"bottom_mm"`
	RightMM  float64 `json:"right_mm"`
	TopMM    float64 `json:"top_mm"`
}

// Min returns the smallest of the four margins.
func (b BleedInfo) Min() float64 {
	minimum := b.LeftMM

	for _, v := range []float64{b.BottomMM, b.RightMM, b.TopMM} {
		if v < minimum {
			minimum = v
		}
	}

	return minimum
}

// PageGeometry describes one page. Bleed margins are computed exactly once
// here; downstream checks read them and never re-derive from boxes. Immutable
// after creation.
type PageGeometry struct {
	PageNumber int `json:"page_number"`

	WidthPts  float64 `json:"width_pts"`
	HeightPts float64 `json:"height_pts"`
	WidthMM   float64 `json:"width_mm"`
	HeightMM  float64 `json:"height_mm"`

	Rotation        int     `json:"rotation"`
	DisplayWidthMM  float64 `json:"display_width_mm"`
	DisplayHeightMM float64 `json:"display_height_mm"`

	PaperSize string `json:"paper_size"`

	HasBleed   bool      `json:"has_bleed"`
	Bleed      BleedInfo `json:"bleed"`
	MinBleedMM float64   `json:"min_bleed_mm"`
}

// FontUsage describes one font on one page.
type FontUsage struct {
	Name       string `json:"name"`
	BaseFont   string `json:"base_font"`
	Page       int    `json:"page"`
	Embedded   bool   `json:"embedded"`
	Subset     bool   `json:"subset"`
	IsStandard bool   `json:"is_standard"`
	Encoding   string `json:"encoding,omitempty"`
}

// SpotColor describes one named separation ink. Pages is sorted ascending.
type SpotColor struct {
	Name       string `json:"name"`
	Pages      []int  `json:"pages"`
	IsPantone  bool   `json:"is_pantone"`
	ColorSpace string `json:"color_space"`
}

// ColorProfile summarizes the color spaces observed in the document. Spaces
// and SpotColors keep first-seen order.
type ColorProfile struct {
	Spaces        []string    `json:"spaces"`
	HasRGB        bool        `json:"has_rgb"`
	HasCMYK       bool        `json:"has_cmyk"`
	HasGray       bool        `json:"has_gray"`
	HasSpotColors bool        `json:"has_spot_colors"`
	SpotColors    []SpotColor `json:"spot_colors,omitempty"`
	ICCProfiles   []string    `json:"icc_profiles,omitempty"`
}

// Image resolution categories.
const (
	DPICategoryCritical   = "critical"
	DPICategoryWarning    = "warning"
	DPICategoryAcceptable = "acceptable"
	DPICategoryOptimal    = "optimal"
	DPICategoryUnknown    = "unknown"
)

// ImageUsage describes one placed image. DPI is zero and Category is
// "unknown" when the placed size could not be determined.
type ImageUsage struct {
	Page        int     `json:"page"`
	PixelWidth  int     `json:"pixel_width"`
	PixelHeight int     `json:"pixel_height"`
	DPI         float64 `json:"dpi"`
	Category    string  `json:"category"`
	HasAlpha    bool    `json:"has_alpha"`
	ColorSpace  string  `json:"color_space,omitempty"`
	Filter      string  `json:"filter,omitempty"`
	StreamSize  int     `json:"stream_size"`
}

// ResolutionHistogram counts images per DPI category.
type ResolutionHistogram struct {
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Acceptable int `json:"acceptable"`
	Optimal    int `json:"optimal"`
	Unknown    int `json:"unknown"`
}

// PageCoverage is the worst total-area-coverage sample of one page.
type PageCoverage struct {
	Page       int     `json:"page"`
	MaxPercent float64 `json:"max_percent"`
}

// CoverageSummary aggregates the ink-coverage sampling pass.
type CoverageSummary struct {
	Pages          []PageCoverage `json:"pages"`
	AveragePercent float64        `json:"average_percent"`
	MaxPercent     float64        `json:"max_percent"`
	OverLimitPages []int          `json:"over_limit_pages,omitempty"`
	SampleDPI      int            `json:"sample_dpi"`
}

// TransparencySignals records where transparency was observed.
type TransparencySignals struct {
	Found   bool     `json:"found"`
	Pages   []int    `json:"pages,omitempty"`
	Markers []string `json:"markers,omitempty"`
}

// OverprintSignals records overprint usage, classified by the fill color in
// effect when the overprinting graphics state was applied. K-only overprint
// is a legitimate technique and never becomes a finding.
type OverprintSignals struct {
	Found      bool  `json:"found"`
	WhitePages []int `json:"white_pages,omitempty"`
	KOnlyPages []int `json:"k_only_pages,omitempty"`
	OtherPages []int `json:"other_pages,omitempty"`
}

// CompressionSignals records images stored without a compression filter.
type CompressionSignals struct {
	UncompressedImages int   `json:"uncompressed_images"`
	Pages              []int `json:"pages,omitempty"`
}

// TextSignals records text drawn below the minimum legible size.
type TextSignals struct {
	SmallTextPages []int   `json:"small_text_pages,omitempty"`
	MinSizePt      float64 `json:"min_size_pt,omitempty"`
}

// PrintQuality bundles the optional print-quality signal scans. Nil
// sub-records mean the corresponding check was disabled or failed.
type PrintQuality struct {
	Transparency *TransparencySignals `json:"transparency,omitempty"`
	Overprint    *OverprintSignals    `json:"overprint,omitempty"`
	Compression  *CompressionSignals  `json:"compression,omitempty"`
	Text         *TextSignals         `json:"text,omitempty"`
}

// Record is the measurement record of one analyzed document. A fresh Record
// is built per analysis call; it is owned by exactly one worker and never
// shared while mutable. The profile verdict is not part of the record: the
// pipeline result envelope carries the record and the verdict side by side to
// the report and storage collaborators.
type Record struct {
	File         FileInfo            `json:"file"`
	Basic        BasicInfo           `json:"basic"`
	Pages        []PageGeometry      `json:"pages"`
	Fonts        []FontUsage         `json:"fonts"`
	Colors       ColorProfile        `json:"colors"`
	Images       []ImageUsage        `json:"images,omitempty"`
	Histogram    ResolutionHistogram `json:"resolution_histogram"`
	InkCoverage  *CoverageSummary    `json:"ink_coverage,omitempty"`
	PrintQuality *PrintQuality       `json:"print_quality,omitempty"`
	Issues       []Finding           `json:"issues"`
	AnalyzedAt   time.Time           `json:"analyzed_at"`
	Duration     time.Duration       `json:"duration"`
}

// AddIssue appends a finding, enforcing the one-finding-per-type invariant:
// a second finding of an already-present type is dropped and false returned.
func (r *Record) AddIssue(finding Finding) bool {
	if r.HasIssueType(finding.Type) {
		return false
	}

	sort.Ints(finding.Pages)
	r.Issues = append(r.Issues, finding)

	return true
}

// HasIssueType reports whether a finding of the given type was appended.
func (r *Record) HasIssueType(findingType string) bool {
	for _, issue := range r.Issues {
		if issue.Type == findingType {
			return true
		}
	}

	return false
}

// NonEmbeddedFonts returns the fonts that are neither embedded nor standard.
func (r *Record) NonEmbeddedFonts() []FontUsage {
	var fonts []FontUsage

	for _, font := range r.Fonts {
		if !font.Embedded && !font.IsStandard {
			fonts = append(fonts, font)
		}
	}

	return fonts
}

// MinImageDPI returns the lowest categorized image DPI. The second return is
// false when no image has a known DPI.
func (r *Record) MinImageDPI() (float64, bool) {
	var (
		minimum float64
		found   bool
	)

	for _, img := range r.Images {
		if img.Category == DPICategoryUnknown {
			continue
		}

		if !found || img.DPI < minimum {
			minimum = img.DPI
			found = true
		}
	}

	return minimum, found
}

// MaxInkPercent returns the worst page coverage, or false when ink sampling
// did not run.
func (r *Record) MaxInkPercent() (float64, bool) {
	if r.InkCoverage == nil || len(r.InkCoverage.Pages) == 0 {
		return 0, false
	}

	return r.InkCoverage.MaxPercent, true
}

// MinBleedMM returns the smallest bleed margin across pages that have bleed.
// The second return is false when no page has bleed boxes at all.
func (r *Record) MinBleedMM() (float64, bool) {
	var (
		minimum float64
		found   bool
	)

	for _, page := range r.Pages {
		if !page.HasBleed {
			continue
		}

		if !found || page.MinBleedMM < minimum {
			minimum = page.MinBleedMM
			found = true
		}
	}

	return minimum, found
}

// sortedPageSet turns a page set into a sorted slice.
func sortedPageSet(pages map[int]bool) []int {
	if len(pages) == 0 {
		return nil
	}

	out := make([]int, 0, len(pages))
	for page := range pages {
		out = append(out, page)
	}

	sort.Ints(out)

	return out
}
