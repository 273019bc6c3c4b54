package autofix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/autofix"
)

func TestNeededFixes(t *testing.T) {
	t.Parallel()

	settings := analysis.DefaultSettings()
	settings.AutoConvertRGB = true
	settings.AutoOutlineFonts = true

	t.Run("rgb-only document wants conversion", func(t *testing.T) {
		t.Parallel()

		rec := &analysis.Record{Colors: analysis.ColorProfile{HasRGB: true}}

		req, wanted := autofix.NeededFixes(settings, rec)
		assert.True(t, wanted)
		assert.True(t, req.ConvertRGB)
		assert.False(t, req.OutlineFonts)
	})

	t.Run("mixed color document is left alone", func(t *testing.T) {
		t.Parallel()

		rec := &analysis.Record{
			Colors: analysis.ColorProfile{HasRGB: true, HasCMYK: true},
		}

		_, wanted := autofix.NeededFixes(settings, rec)
		assert.False(t, wanted)
	})

	t.Run("non-embedded fonts want outlining", func(t *testing.T) {
		t.Parallel()

		rec := &analysis.Record{
			Fonts: []analysis.FontUsage{{BaseFont: "CustomSans", Page: 1}},
		}

		req, wanted := autofix.NeededFixes(settings, rec)
		assert.True(t, wanted)
		assert.True(t, req.OutlineFonts)
	})

	t.Run("disabled settings never request fixes", func(t *testing.T) {
		t.Parallel()

		rec := &analysis.Record{
			Colors: analysis.ColorProfile{HasRGB: true},
			Fonts:  []analysis.FontUsage{{BaseFont: "CustomSans", Page: 1}},
		}

		_, wanted := autofix.NeededFixes(analysis.DefaultSettings(), rec)
		assert.False(t, wanted)
	})
}

func TestCompareClassifiesIssueTypes(t *testing.T) {
	t.Parallel()

	before := &analysis.Record{
		Colors: analysis.ColorProfile{HasRGB: true},
		Fonts:  []analysis.FontUsage{{BaseFont: "CustomSans", Page: 1}},
		Issues: []analysis.Finding{
			{Type: analysis.FindingRGBOnly},
			{Type: analysis.FindingFontNotEmbedded},
			{Type: analysis.FindingInsufficientBleed},
		},
	}

	after := &analysis.Record{
		Colors: analysis.ColorProfile{HasCMYK: true},
		Issues: []analysis.Finding{
			{Type: analysis.FindingInsufficientBleed},
			{Type: analysis.FindingTransparency},
		},
	}

	comparison := autofix.Compare(before, after, []string{"converted RGB to CMYK"})

	assert.Equal(t, []string{
		analysis.FindingFontNotEmbedded,
		analysis.FindingRGBOnly,
	}, comparison.Resolved)
	assert.Equal(t, []string{analysis.FindingInsufficientBleed}, comparison.Remaining)
	assert.Equal(t, []string{analysis.FindingTransparency}, comparison.Introduced)

	assert.Equal(t, 1, comparison.FontsBefore)
	assert.Equal(t, 0, comparison.FontsAfter)
	assert.True(t, comparison.RGBBefore)
	assert.False(t, comparison.RGBAfter)

	require.Len(t, comparison.Modifications, 1)
}
