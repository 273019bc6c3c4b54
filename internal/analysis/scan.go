// Package analysis builds the measurement record for one PDF: document facts,
// page geometry with bleed margins, font embedding, color-space usage, image
// resolution, optional ink-coverage sampling and print-quality signals, plus
// the ordered issue checks that reduce those measurements into findings.
package analysis

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/book-expert/logger"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/units"
)

// subsetTagPattern matches the six-letter subset prefix, e.g. "ABCDEF+Foo".
var subsetTagPattern = regexp.MustCompile(`^[A-Z]{6}\+`)

// standardFontNames holds the 14 standard PostScript fonts plus the common
// system aliases viewers substitute for them.
var standardFontNames = map[string]bool{
	"Courier":               true,
	"Courier-Bold":          true,
	"Courier-Oblique":       true,
	"Courier-BoldOblique":   true,
	"Helvetica":             true,
	"Helvetica-Bold":        true,
	"Helvetica-Oblique":     true,
	"Helvetica-BoldOblique": true,
	"Times-Roman":           true,
	"Times-Bold":            true,
	"Times-Italic":          true,
	"Times-BoldItalic":      true,
	"Symbol":                true,
	"ZapfDingbats":          true,
	"Arial":                 true,
	"ArialMT":               true,
	"Arial-Bold":            true,
	"Arial-BoldMT":          true,
	"TimesNewRoman":         true,
	"TimesNewRomanPSMT":     true,
	"CourierNew":            true,
	"CourierNewPSMT":        true,
}

// Scanner runs the measurement pipeline over one open document. A Scanner is
// cheap and stateless between calls; every Scan builds a fresh Record, so one
// Scanner may be shared across workers.
type Scanner struct {
	settings Settings
	log      *logger.Logger
}

// NewScanner returns a Scanner with normalized settings.
func NewScanner(settings Settings, log *logger.Logger) *Scanner {
	return &Scanner{settings: settings.Normalized(), log: log}
}

// Settings returns the normalized settings snapshot the scanner runs with.
func (s *Scanner) Settings() Settings {
	return s.settings
}

// Scan analyzes the open document and returns its measurement record. Only
// fatal conditions return an error: missing page geometry or context
// cancellation. Partial extractor failures, including an ink-sampling
// backend that cannot rasterize, are logged and leave the corresponding
// sub-record empty.
func (s *Scanner) Scan(ctx context.Context, doc document.Document, path string) (*Record, error) {
	started := time.Now()

	rec := &Record{
		File:       fileInfo(path),
		Basic:      basicInfo(doc),
		AnalyzedAt: started,
	}

	pages, err := s.extractPages(doc)
	if err != nil {
		return nil, err
	}

	rec.Pages = pages

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis canceled: %w", err)
	}

	rec.Fonts = s.extractFonts(doc)
	rec.Colors = s.extractColors(doc)
	s.extractImages(doc, rec)

	if s.settings.InkCoverageEnabled {
		coverage, inkErr := s.extractInkCoverage(ctx, doc)
		if inkErr != nil {
			if ctx.Err() != nil {
				return nil, inkErr
			}

			s.log.Warn("Ink-coverage sampling skipped for %s: %v", rec.File.Filename, inkErr)
		} else {
			rec.InkCoverage = coverage
		}
	}

	rec.PrintQuality = s.extractPrintQuality(doc, rec)

	s.collectIssues(rec)
	s.collectQualityIssues(rec)

	rec.Duration = time.Since(started)

	return rec, nil
}

func fileInfo(path string) FileInfo {
	info := FileInfo{
		Filename: filepath.Base(path),
		Path:     path,
	}

	stat, err := os.Stat(path)
	if err == nil {
		info.SizeBytes = stat.Size()
		info.SizeDisplay = units.FormatFileSize(stat.Size())
	}

	return info
}

func basicInfo(doc document.Document) BasicInfo {
	return BasicInfo{
		PageCount:  doc.PageCount(),
		Version:    doc.Version(),
		Encrypted:  doc.Encrypted(),
		Linearized: doc.Linearized(),
		Metadata:   doc.Metadata(),
	}
}

// extractPages resolves the geometry of every page, including the bleed
// margins, which are computed here exactly once for the whole analysis.
func (s *Scanner) extractPages(doc document.Document) ([]PageGeometry, error) {
	pages := make([]PageGeometry, 0, doc.PageCount())

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		boxes, err := doc.Boxes(pageNr)
		if err != nil {
			return nil, fmt.Errorf("resolve boxes of page %d: %w", pageNr, err)
		}

		if boxes.Media == nil {
			return nil, fmt.Errorf(
				"page %d has no MediaBox: %w", pageNr, document.ErrMissingGeometry,
			)
		}

		rotation, err := doc.Rotation(pageNr)
		if err != nil {
			s.log.Warn("Page %d rotation unavailable, assuming 0: %v", pageNr, err)

			rotation = 0
		}

		pages = append(pages, s.pageGeometry(pageNr, boxes, normalizeRotation(rotation)))
	}

	return pages, nil
}

func (s *Scanner) pageGeometry(pageNr int, boxes document.PageBoxes, rotation int) PageGeometry {
	// Page size follows the CropBox when present, the MediaBox otherwise.
	size := boxes.Crop
	if size == nil {
		size = boxes.Media
	}

	widthMM := units.PointsToMM(size.Width())
	heightMM := units.PointsToMM(size.Height())
	displayW, displayH := units.DisplaySize(widthMM, heightMM, rotation)

	geometry := PageGeometry{
		PageNumber:      pageNr,
		WidthPts:        size.Width(),
		HeightPts:       size.Height(),
		WidthMM:         widthMM,
		HeightMM:        heightMM,
		Rotation:        rotation,
		DisplayWidthMM:  displayW,
		DisplayHeightMM: displayH,
		PaperSize:       units.ClassifyPaperSize(widthMM, heightMM, s.settings.PageSizeToleranceMM),
	}

	// Bleed exists only when both TrimBox and BleedBox are present and
	// actually differ.
	if boxes.Trim != nil && boxes.Bleed != nil && !boxes.Trim.Equals(*boxes.Bleed) {
		geometry.HasBleed = true
		geometry.Bleed = BleedInfo{
			LeftMM:   marginMM(boxes.Trim.LLX - boxes.Bleed.LLX),
			BottomMM: marginMM(boxes.Trim.LLY - boxes.Bleed.LLY),
			RightMM:  marginMM(boxes.Bleed.URX - boxes.Trim.URX),
			TopMM:    marginMM(boxes.Bleed.URY - boxes.Trim.URY),
		}
		geometry.MinBleedMM = geometry.Bleed.Min()
	}

	return geometry
}

func marginMM(points float64) float64 {
	if points < 0 {
		return 0
	}

	return units.PointsToMM(points)
}

func normalizeRotation(rotation int) int {
	rotation %= 360
	if rotation < 0 {
		rotation += 360
	}

	return rotation
}

// extractFonts lists every font per page and applies the embedding
// invariants: a FontDescriptor font-file stream overrides the raw embedded
// signal, and standard or subset fonts are always embedded.
func (s *Scanner) extractFonts(doc document.Document) []FontUsage {
	var fonts []FontUsage

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		refs, err := doc.Fonts(pageNr)
		if err != nil {
			s.log.Warn("Font extraction failed on page %d: %v", pageNr, err)

			continue
		}

		for _, ref := range refs {
			base := ref.BaseFont
			if base == "" {
				base = ref.Name
			}

			subset := subsetTagPattern.MatchString(base)

			stripped := base
			if subset {
				stripped = base[7:]
			}

			isStandard := standardFontNames[stripped]
			embedded := ref.Embedded || ref.HasFontFile

			if isStandard || subset {
				embedded = true
			}

			fonts = append(fonts, FontUsage{
				Name:       ref.Name,
				BaseFont:   base,
				Page:       pageNr,
				Embedded:   embedded,
				Subset:     subset,
				IsStandard: isStandard,
				Encoding:   ref.Encoding,
			})
		}
	}

	return fonts
}

// extractColors scans the color-space resources of every page. Spaces and
// spot colors keep first-seen order; spot pages accumulate per colorant name.
func (s *Scanner) extractColors(doc document.Document) ColorProfile {
	var profile ColorProfile

	seenSpaces := make(map[string]bool)
	seenICC := make(map[string]bool)
	spotIndex := make(map[string]int)

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		refs, err := doc.ColorSpaces(pageNr)
		if err != nil {
			s.log.Warn("Color-space extraction failed on page %d: %v", pageNr, err)

			continue
		}

		for _, ref := range refs {
			if ref.Family != "" && !seenSpaces[ref.Family] {
				seenSpaces[ref.Family] = true

				profile.Spaces = append(profile.Spaces, ref.Family)
			}

			classifyColorFamily(ref.Family, &profile)

			if ref.ICCBased && ref.Name != "" && !seenICC[ref.Name] {
				seenICC[ref.Name] = true

				profile.ICCProfiles = append(profile.ICCProfiles, ref.Name)
			}

			if ref.Family == "Separation" && ref.SpotName != "" {
				recordSpotColor(&profile, spotIndex, ref, pageNr)
			}
		}
	}

	return profile
}

func classifyColorFamily(family string, profile *ColorProfile) {
	switch {
	case strings.Contains(family, "RGB"):
		profile.HasRGB = true
	case strings.Contains(family, "CMYK"):
		profile.HasCMYK = true
	case strings.Contains(family, "Gray"):
		profile.HasGray = true
	}
}

func recordSpotColor(profile *ColorProfile, index map[string]int, ref document.ColorSpaceRef, pageNr int) {
	// "All" and "None" are reserved colorant names, not printing plates.
	if ref.SpotName == "All" || ref.SpotName == "None" {
		return
	}

	profile.HasSpotColors = true

	if i, ok := index[ref.SpotName]; ok {
		spot := &profile.SpotColors[i]
		if len(spot.Pages) == 0 || spot.Pages[len(spot.Pages)-1] != pageNr {
			spot.Pages = append(spot.Pages, pageNr)
		}

		return
	}

	index[ref.SpotName] = len(profile.SpotColors)
	profile.SpotColors = append(profile.SpotColors, SpotColor{
		Name:       ref.SpotName,
		Pages:      []int{pageNr},
		IsPantone:  strings.Contains(strings.ToUpper(ref.SpotName), "PANTONE"),
		ColorSpace: ref.Family,
	})
}

// extractImages computes the effective DPI of every placed image and fills
// the resolution histogram. Image color spaces also feed the color profile:
// an RGB-only document is RGB-only even when the color comes from images.
func (s *Scanner) extractImages(doc document.Document, rec *Record) {
	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		refs, err := doc.Images(pageNr)
		if err != nil {
			s.log.Warn("Image extraction failed on page %d: %v", pageNr, err)

			continue
		}

		for _, ref := range refs {
			usage := ImageUsage{
				Page:        pageNr,
				PixelWidth:  ref.PixelWidth,
				PixelHeight: ref.PixelHeight,
				HasAlpha:    ref.HasAlpha,
				ColorSpace:  ref.ColorSpace,
				Filter:      ref.Filter,
				StreamSize:  ref.StreamSize,
			}

			usage.DPI, usage.Category = s.categorizeImage(ref)
			classifyColorFamily(ref.ColorSpace, &rec.Colors)

			rec.Images = append(rec.Images, usage)

			switch usage.Category {
			case DPICategoryCritical:
				rec.Histogram.Critical++
			case DPICategoryWarning:
				rec.Histogram.Warning++
			case DPICategoryAcceptable:
				rec.Histogram.Acceptable++
			case DPICategoryOptimal:
				rec.Histogram.Optimal++
			default:
				rec.Histogram.Unknown++
			}
		}
	}
}

// categorizeImage derives the effective DPI as the minimum of the horizontal
// and vertical resolutions. All band comparisons are strict less-than: an
// image at exactly the minimum DPI is not critical.
func (s *Scanner) categorizeImage(ref document.ImageRef) (float64, string) {
	if ref.WidthPts <= 0 || ref.HeightPts <= 0 || ref.PixelWidth <= 0 || ref.PixelHeight <= 0 {
		return 0, DPICategoryUnknown
	}

	dpiX := float64(ref.PixelWidth) / (ref.WidthPts / 72.0)
	dpiY := float64(ref.PixelHeight) / (ref.HeightPts / 72.0)

	dpi := math.Min(dpiX, dpiY)

	switch {
	case dpi < float64(s.settings.MinImageDPI):
		return dpi, DPICategoryCritical
	case dpi < float64(s.settings.WarningImageDPI):
		return dpi, DPICategoryWarning
	case dpi < float64(s.settings.OptimalImageDPI):
		return dpi, DPICategoryAcceptable
	default:
		return dpi, DPICategoryOptimal
	}
}
