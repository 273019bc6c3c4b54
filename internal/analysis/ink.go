package analysis

import (
	"context"
	"fmt"
	"image"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
)

// extractInkCoverage rasterizes every page and estimates the worst total
// area coverage per page. The estimate converts each RGB sample to CMYK with
// full black generation, which matches what a standard separation would
// produce for rendered output.
func (s *Scanner) extractInkCoverage(ctx context.Context, doc document.Document) (*CoverageSummary, error) {
	summary := &CoverageSummary{SampleDPI: s.settings.InkCalculationDPI}

	var total float64

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ink sampling canceled: %w", err)
		}

		img, err := doc.RenderPage(ctx, pageNr, s.settings.InkCalculationDPI)
		if err != nil {
			return nil, fmt.Errorf("render page %d at %d dpi: %w",
				pageNr, s.settings.InkCalculationDPI, err)
		}

		pageMax := maxCoveragePercent(img)

		summary.Pages = append(summary.Pages, PageCoverage{
			Page:       pageNr,
			MaxPercent: pageMax,
		})

		total += pageMax

		if pageMax > summary.MaxPercent {
			summary.MaxPercent = pageMax
		}

		if pageMax > s.settings.MaxInkCoverage {
			summary.OverLimitPages = append(summary.OverLimitPages, pageNr)
		}
	}

	if len(summary.Pages) > 0 {
		summary.AveragePercent = total / float64(len(summary.Pages))
	}

	return summary, nil
}

// maxCoveragePercent returns the worst per-pixel TAC of one rendered page.
func maxCoveragePercent(img image.Image) float64 {
	bounds := img.Bounds()

	var worst float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()

			tac := coveragePercent(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
			if tac > worst {
				worst = tac
			}
		}
	}

	return worst
}

// coveragePercent converts normalized RGB to a CMYK total-area-coverage
// percentage using full black generation (GCR): the gray component moves
// entirely into the K channel, so pure black costs 100%, not 400%.
func coveragePercent(r, g, b float64) float64 {
	k := 1.0 - max(r, g, b)
	if k >= 1.0 {
		return 100.0
	}

	c := (1.0 - r - k) / (1.0 - k)
	m := (1.0 - g - k) / (1.0 - k)
	y := (1.0 - b - k) / (1.0 - k)

	return (c + m + y + k) * 100.0
}
