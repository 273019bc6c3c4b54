package preflight

import (
	"fmt"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
)

// Rule constructors. Each reads one measurement field of the record; none of
// them re-derive values the extractors already computed.

func fontsEmbeddedRule() Rule {
	return Rule{
		Name:        "fonts_embedded",
		Expected:    "all fonts embedded",
		Severity:    analysis.SeverityError,
		AutoFixable: true,
		check: func(rec *analysis.Record) (bool, string) {
			missing := rec.NonEmbeddedFonts()
			if len(missing) == 0 {
				return true, "all fonts embedded"
			}

			return false, fmt.Sprintf("%d fonts not embedded", len(missing))
		},
	}
}

func noRGBRule(severity analysis.Severity) Rule {
	return Rule{
		Name:        "no_rgb_color",
		Expected:    "no RGB color",
		Severity:    severity,
		AutoFixable: true,
		check: func(rec *analysis.Record) (bool, string) {
			if rec.Colors.HasRGB {
				return false, "RGB color present"
			}

			return true, "no RGB color"
		},
	}
}

// rgbAllowedRule documents that a profile tolerates RGB; it always passes.
func rgbAllowedRule() Rule {
	return Rule{
		Name:     "rgb_color_allowed",
		Expected: "RGB permitted",
		Severity: analysis.SeverityInfo,
		check: func(rec *analysis.Record) (bool, string) {
			if rec.Colors.HasRGB {
				return true, "RGB color present"
			}

			return true, "no RGB color"
		},
	}
}

func imageResolutionRule(name string, minDPI float64, severity analysis.Severity) Rule {
	return Rule{
		Name:     name,
		Expected: fmt.Sprintf("images at %.0f DPI or more", minDPI),
		Severity: severity,
		check: func(rec *analysis.Record) (bool, string) {
			lowest, ok := rec.MinImageDPI()
			if !ok {
				return true, "no raster images"
			}

			return lowest >= minDPI, fmt.Sprintf("lowest image at %.0f DPI", lowest)
		},
	}
}

func inkCoverageRule(maxPercent float64, severity analysis.Severity) Rule {
	return Rule{
		Name:     "ink_coverage",
		Expected: fmt.Sprintf("at most %.0f%% total coverage", maxPercent),
		Severity: severity,
		check: func(rec *analysis.Record) (bool, string) {
			worst, ok := rec.MaxInkPercent()
			if !ok {
				return true, "ink coverage not sampled"
			}

			return worst <= maxPercent, fmt.Sprintf("%.1f%% total coverage", worst)
		},
	}
}

func bleedMarginRule(minMM float64, severity analysis.Severity) Rule {
	return Rule{
		Name:     "bleed_margin",
		Expected: fmt.Sprintf("at least %.1f mm bleed", minMM),
		Severity: severity,
		check: func(rec *analysis.Record) (bool, string) {
			if minMM <= 0 {
				return true, "no bleed required"
			}

			smallest, ok := rec.MinBleedMM()
			if !ok {
				return false, "no bleed boxes"
			}

			// Tolerate float noise from the points round trip.
			return smallest >= minMM-0.01, fmt.Sprintf("%.1f mm bleed", smallest)
		},
	}
}

func spotColorCountRule(maxCount int, severity analysis.Severity) Rule {
	return Rule{
		Name:     "spot_color_count",
		Expected: fmt.Sprintf("at most %d spot colors", maxCount),
		Severity: severity,
		check: func(rec *analysis.Record) (bool, string) {
			count := len(rec.Colors.SpotColors)

			return count <= maxCount, fmt.Sprintf("%d spot colors", count)
		},
	}
}

func noSmallTextRule(minPt float64, severity analysis.Severity) Rule {
	return Rule{
		Name:     "no_small_text",
		Expected: fmt.Sprintf("text at %.1f pt or larger", minPt),
		Severity: severity,
		check: func(rec *analysis.Record) (bool, string) {
			quality := rec.PrintQuality
			if quality == nil || quality.Text == nil || len(quality.Text.SmallTextPages) == 0 {
				return true, "no undersized text"
			}

			return false, fmt.Sprintf("text down to %.1f pt", quality.Text.MinSizePt)
		},
	}
}
