package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// maxSpotColorsInfo is the spot count above which the spot-color finding is
// a warning instead of informational.
const maxSpotColorsInfo = 2

// collectIssues runs the ordered consistency checks over the finished
// measurements. Each check appends at most one finding of its type,
// aggregating all affected pages. Bleed is deliberately absent here; the
// print-quality pass owns it.
func (s *Scanner) collectIssues(rec *Record) {
	s.checkPageSizeConsistency(rec)
	s.checkFontEmbedding(rec)
	s.checkRGBOnly(rec)
	s.checkSpotColors(rec)
	s.checkImageResolution(rec)
	s.checkInkCoverage(rec)
}

// checkPageSizeConsistency groups pages by their rounded rotation-aware
// display size. The largest group is the baseline; every other page goes into
// one warning finding. A rotated page whose display size matches the baseline
// is consistent.
func (s *Scanner) checkPageSizeConsistency(rec *Record) {
	if len(rec.Pages) < 2 {
		return
	}

	type sizeKey struct{ w, h int }

	groups := make(map[sizeKey][]PageGeometry)
	order := make([]sizeKey, 0)

	for _, page := range rec.Pages {
		key := sizeKey{
			w: int(math.Round(page.DisplayWidthMM)),
			h: int(math.Round(page.DisplayHeightMM)),
		}

		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}

		groups[key] = append(groups[key], page)
	}

	if len(groups) < 2 {
		return
	}

	// Largest group wins; ties go to the earlier-seen size.
	baseline := order[0]
	for _, key := range order[1:] {
		if len(groups[key]) > len(groups[baseline]) {
			baseline = key
		}
	}

	var (
		pages   []int
		details []string
	)

	for _, page := range rec.Pages {
		key := sizeKey{
			w: int(math.Round(page.DisplayWidthMM)),
			h: int(math.Round(page.DisplayHeightMM)),
		}
		if key == baseline {
			continue
		}

		pages = append(pages, page.PageNumber)
		details = append(details, fmt.Sprintf(
			"page %d: %.1f × %.1f mm (rotation %d)",
			page.PageNumber, page.DisplayWidthMM, page.DisplayHeightMM, page.Rotation,
		))
	}

	rec.AddIssue(Finding{
		Type:     FindingPageSizeInconsistent,
		Severity: SeverityWarning,
		Message: fmt.Sprintf("%d of %d pages deviate from the %d × %d mm baseline size",
			len(pages), len(rec.Pages), baseline.w, baseline.h),
		Pages: pages,
		Meta: map[string]any{
			"baseline": fmt.Sprintf("%d × %d mm", baseline.w, baseline.h),
			"sizes":    details,
		},
	})
}

// checkFontEmbedding emits one error finding covering every non-embedded,
// non-standard font, grouped by base font name.
func (s *Scanner) checkFontEmbedding(rec *Record) {
	missing := rec.NonEmbeddedFonts()
	if len(missing) == 0 {
		return
	}

	pages := make(map[int]bool)
	seen := make(map[string]bool)

	var names []string

	for _, font := range missing {
		pages[font.Page] = true

		if !seen[font.BaseFont] {
			seen[font.BaseFont] = true

			names = append(names, font.BaseFont)
		}
	}

	sort.Strings(names)

	rec.AddIssue(Finding{
		Type:     FindingFontNotEmbedded,
		Severity: SeverityError,
		Message:  fmt.Sprintf("%d fonts are not embedded: %s", len(names), strings.Join(names, ", ")),
		Pages:    sortedPageSet(pages),
		Meta: map[string]any{
			"fonts":      names,
			"suggestion": "embed all fonts or convert text to outlines",
		},
	})
}

func (s *Scanner) checkRGBOnly(rec *Record) {
	if !rec.Colors.HasRGB || rec.Colors.HasCMYK {
		return
	}

	rec.AddIssue(Finding{
		Type:     FindingRGBOnly,
		Severity: SeverityWarning,
		Message:  "document uses RGB color without any CMYK content",
		Meta: map[string]any{
			"suggestion": "convert colors to CMYK before printing",
		},
	})
}

func (s *Scanner) checkSpotColors(rec *Record) {
	if !s.settings.CheckSpotColors || !rec.Colors.HasSpotColors {
		return
	}

	severity := SeverityInfo
	if len(rec.Colors.SpotColors) > maxSpotColorsInfo {
		severity = SeverityWarning
	}

	pages := make(map[int]bool)

	names := make([]string, 0, len(rec.Colors.SpotColors))
	for _, spot := range rec.Colors.SpotColors {
		names = append(names, spot.Name)

		for _, page := range spot.Pages {
			pages[page] = true
		}
	}

	rec.AddIssue(Finding{
		Type:     FindingSpotColors,
		Severity: severity,
		Message:  fmt.Sprintf("%d spot colors in use: %s", len(names), strings.Join(names, ", ")),
		Pages:    sortedPageSet(pages),
		Meta:     map[string]any{"spot_colors": names},
	})
}

// checkImageResolution emits the critical-band error finding and the
// warning-band advisory finding.
func (s *Scanner) checkImageResolution(rec *Record) {
	var (
		criticalPages = make(map[int]bool)
		mediumPages   = make(map[int]bool)
		minDPI        float64
	)

	for _, img := range rec.Images {
		switch img.Category {
		case DPICategoryCritical:
			criticalPages[img.Page] = true

			if minDPI == 0 || img.DPI < minDPI {
				minDPI = img.DPI
			}
		case DPICategoryWarning:
			mediumPages[img.Page] = true
		}
	}

	if len(criticalPages) > 0 {
		rec.AddIssue(Finding{
			Type:     FindingLowResolutionImage,
			Severity: SeverityError,
			Message: fmt.Sprintf("images below %d DPI found (lowest %.0f DPI)",
				s.settings.MinImageDPI, minDPI),
			Pages: sortedPageSet(criticalPages),
			Meta:  map[string]any{"min_dpi": minDPI},
		})
	}

	if len(mediumPages) > 0 {
		rec.AddIssue(Finding{
			Type:     FindingMediumResolutionImage,
			Severity: SeverityInfo,
			Message: fmt.Sprintf("images between %d and %d DPI found",
				s.settings.MinImageDPI, s.settings.WarningImageDPI),
			Pages: sortedPageSet(mediumPages),
		})
	}
}

// checkInkCoverage emits the ink finding: an error when any page exceeds the
// hard maximum, otherwise a warning when the warning threshold is crossed.
func (s *Scanner) checkInkCoverage(rec *Record) {
	if rec.InkCoverage == nil {
		return
	}

	if len(rec.InkCoverage.OverLimitPages) > 0 {
		rec.AddIssue(Finding{
			Type:     FindingHighInkCoverage,
			Severity: SeverityError,
			Message: fmt.Sprintf("ink coverage reaches %.1f%%, limit is %.0f%%",
				rec.InkCoverage.MaxPercent, s.settings.MaxInkCoverage),
			Pages: append([]int(nil), rec.InkCoverage.OverLimitPages...),
			Meta:  map[string]any{"max_percent": rec.InkCoverage.MaxPercent},
		})

		return
	}

	warnPages := make(map[int]bool)

	for _, page := range rec.InkCoverage.Pages {
		if page.MaxPercent > s.settings.WarningInkCoverage {
			warnPages[page.Page] = true
		}
	}

	if len(warnPages) == 0 {
		return
	}

	rec.AddIssue(Finding{
		Type:     FindingHighInkCoverage,
		Severity: SeverityWarning,
		Message: fmt.Sprintf("ink coverage reaches %.1f%%, above the %.0f%% advisory threshold",
			rec.InkCoverage.MaxPercent, s.settings.WarningInkCoverage),
		Pages: sortedPageSet(warnPages),
		Meta:  map[string]any{"max_percent": rec.InkCoverage.MaxPercent},
	})
}

// collectQualityIssues converts the print-quality signals into findings.
// K-only overprint never becomes a finding, and insufficient bleed stays
// informational regardless of profile expectations.
func (s *Scanner) collectQualityIssues(rec *Record) {
	quality := rec.PrintQuality
	if quality == nil {
		return
	}

	if quality.Transparency != nil && quality.Transparency.Found {
		rec.AddIssue(Finding{
			Type:     FindingTransparency,
			Severity: SeverityInfo,
			Message:  "transparency in use; flatten before output if the RIP requires it",
			Pages:    append([]int(nil), quality.Transparency.Pages...),
			Meta:     map[string]any{"markers": quality.Transparency.Markers},
		})
	}

	if quality.Overprint != nil {
		if len(quality.Overprint.WhitePages) > 0 {
			rec.AddIssue(Finding{
				Type:     FindingWhiteOverprint,
				Severity: SeverityError,
				Message:  "white objects set to overprint will disappear on press",
				Pages:    append([]int(nil), quality.Overprint.WhitePages...),
			})
		}

		if len(quality.Overprint.OtherPages) > 0 {
			rec.AddIssue(Finding{
				Type:     FindingOverprint,
				Severity: SeverityWarning,
				Message:  "colored objects set to overprint; verify the intended result",
				Pages:    append([]int(nil), quality.Overprint.OtherPages...),
			})
		}
	}

	s.checkBleed(rec)

	if quality.Text != nil && len(quality.Text.SmallTextPages) > 0 {
		rec.AddIssue(Finding{
			Type:     FindingSmallText,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("text below %.1f pt found (smallest %.1f pt)",
				s.settings.MinTextSizePt, quality.Text.MinSizePt),
			Pages: append([]int(nil), quality.Text.SmallTextPages...),
			Meta:  map[string]any{"min_size_pt": quality.Text.MinSizePt},
		})
	}

	if quality.Compression != nil && quality.Compression.UncompressedImages > 0 {
		rec.AddIssue(Finding{
			Type:     FindingUncompressedImages,
			Severity: SeverityInfo,
			Message: fmt.Sprintf("%d images are stored uncompressed",
				quality.Compression.UncompressedImages),
			Pages: append([]int(nil), quality.Compression.Pages...),
		})
	}
}

// checkBleed is the single producer of the bleed finding. Missing or short
// bleed is informational only; plenty of jobs never go near a cutter.
func (s *Scanner) checkBleed(rec *Record) {
	if !s.settings.CheckBleed {
		return
	}

	pages := make(map[int]bool)

	for _, page := range rec.Pages {
		if !page.HasBleed || page.MinBleedMM < s.settings.StandardBleedSizeMM {
			pages[page.PageNumber] = true
		}
	}

	if len(pages) == 0 {
		return
	}

	rec.AddIssue(Finding{
		Type:     FindingInsufficientBleed,
		Severity: SeverityInfo,
		Message: fmt.Sprintf("bleed below %.1f mm on %d pages",
			s.settings.StandardBleedSizeMM, len(pages)),
		Pages: sortedPageSet(pages),
		Meta:  map[string]any{"required_mm": s.settings.StandardBleedSizeMM},
	})
}
