// Package units provides the geometry and unit helpers shared by the
// measurement extractors: point/millimeter conversion, standard paper-size
// classification and rotation-aware display sizes.
package units

import (
	"fmt"
	"math"
)

// pointsPerInch is the PDF user-space resolution.
const pointsPerInch = 72.0

// mmPerInch is the metric definition of an inch.
const mmPerInch = 25.4

// DefaultSizeToleranceMM is the per-dimension tolerance used when matching a
// page against the standard paper-size table.
const DefaultSizeToleranceMM = 2.0

// PointsToMM converts a length in PDF points to millimeters.
func PointsToMM(points float64) float64 {
	return points * mmPerInch / pointsPerInch
}

// MMToPoints converts a length in millimeters to PDF points.
func MMToPoints(mm float64) float64 {
	return mm * pointsPerInch / mmPerInch
}

// PaperSize is one entry of the standard size table, in millimeters.
type PaperSize struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

// standardSizes is the fixed classification table. Order matters only for
// equally close matches; the first match wins.
var standardSizes = []PaperSize{
	{Name: "A0", WidthMM: 841, HeightMM: 1189},
	{Name: "A1", WidthMM: 594, HeightMM: 841},
	{Name: "A2", WidthMM: 420, HeightMM: 594},
	{Name: "A3", WidthMM: 297, HeightMM: 420},
	{Name: "A4", WidthMM: 210, HeightMM: 297},
	{Name: "A5", WidthMM: 148, HeightMM: 210},
	{Name: "A6", WidthMM: 105, HeightMM: 148},
	{Name: "B4", WidthMM: 250, HeightMM: 353},
	{Name: "B5", WidthMM: 176, HeightMM: 250},
	{Name: "Letter", WidthMM: 215.9, HeightMM: 279.4},
	{Name: "Legal", WidthMM: 215.9, HeightMM: 355.6},
	{Name: "Tabloid", WidthMM: 279.4, HeightMM: 431.8},
}

// ClassifyPaperSize matches a page size in millimeters against the standard
// table within the given per-dimension tolerance. Both orientations are
// tried. It returns "Custom" when nothing matches. A non-positive tolerance
// falls back to DefaultSizeToleranceMM.
func ClassifyPaperSize(widthMM, heightMM, toleranceMM float64) string {
	if toleranceMM <= 0 {
		toleranceMM = DefaultSizeToleranceMM
	}

	for _, size := range standardSizes {
		if within(widthMM, size.WidthMM, toleranceMM) &&
			within(heightMM, size.HeightMM, toleranceMM) {
			return size.Name
		}

		// Landscape orientation.
		if within(widthMM, size.HeightMM, toleranceMM) &&
			within(heightMM, size.WidthMM, toleranceMM) {
			return size.Name
		}
	}

	return "Custom"
}

func within(value, target, tolerance float64) bool {
	return math.Abs(value-target) <= tolerance
}

// DisplaySize derives the rotation-adjusted size of a page. Rotations of 90
// and 270 degrees swap the dimensions; all other values leave them unchanged.
func DisplaySize(widthMM, heightMM float64, rotation int) (float64, float64) {
	if rotation == 90 || rotation == 270 {
		return heightMM, widthMM
	}

	return widthMM, heightMM
}

// FormatSizeMM renders a width/height pair in points as a human-readable
// millimeter string, e.g. "210.0 × 297.0 mm".
func FormatSizeMM(widthPts, heightPts float64) string {
	return fmt.Sprintf("%.1f × %.1f mm", PointsToMM(widthPts), PointsToMM(heightPts))
}

// FormatFileSize renders a byte count with a binary unit suffix.
func FormatFileSize(size int64) string {
	const unit = 1024

	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
