package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/units"
)

func TestPointsToMM(t *testing.T) {
	t.Parallel()

	// 72 points is one inch, i.e. 25.4 mm.
	assert.InDelta(t, 25.4, units.PointsToMM(72), 1e-9)
	assert.InDelta(t, 297.0, units.PointsToMM(841.89), 0.01)
	assert.InDelta(t, 0, units.PointsToMM(0), 1e-9)
}

func TestMMToPointsRoundTrip(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 595.28, units.MMToPoints(210), 0.01)
	assert.InDelta(t, 123.45, units.PointsToMM(units.MMToPoints(123.45)), 1e-9)
}

func TestClassifyPaperSize(t *testing.T) {
	t.Parallel()

	t.Run("Exact match", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "A4", units.ClassifyPaperSize(210, 297, 2))
		assert.Equal(t, "Letter", units.ClassifyPaperSize(215.9, 279.4, 2))
	})

	t.Run("Within tolerance", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "A4", units.ClassifyPaperSize(211.5, 295.2, 2))
	})

	t.Run("Outside tolerance", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Custom", units.ClassifyPaperSize(215, 297, 2))
	})

	t.Run("Landscape orientation matches", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "A4", units.ClassifyPaperSize(297, 210, 2))
		assert.Equal(t, "A3", units.ClassifyPaperSize(420, 297, 2))
	})

	t.Run("Zero tolerance uses default", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "A4", units.ClassifyPaperSize(209, 296, 0))
	})
}

func TestDisplaySize(t *testing.T) {
	t.Parallel()

	w, h := units.DisplaySize(210, 297, 0)
	assert.Equal(t, 210.0, w)
	assert.Equal(t, 297.0, h)

	w, h = units.DisplaySize(210, 297, 90)
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)

	w, h = units.DisplaySize(210, 297, 180)
	assert.Equal(t, 210.0, w)
	assert.Equal(t, 297.0, h)

	w, h = units.DisplaySize(210, 297, 270)
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)
}

func TestFormatFileSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", units.FormatFileSize(512))
	assert.Equal(t, "1.0 KB", units.FormatFileSize(1024))
	assert.Equal(t, "1.5 MB", units.FormatFileSize(1536*1024))
}
