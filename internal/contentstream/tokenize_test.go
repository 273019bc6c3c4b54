package contentstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/contentstream"
)

func TestTokenizeOperatorsAndOperands(t *testing.T) {
	t.Parallel()

	stream := []byte("0 0 0 1 k\n/F1 9.5 Tf\n(Hello) Tj")
	tokens := contentstream.Tokenize(stream)

	require.Len(t, tokens, 10)

	assert.Equal(t, contentstream.KindNumber, tokens[0].Kind)
	assert.InDelta(t, 1.0, tokens[3].Num, 0.0001)
	assert.Equal(t, contentstream.KindOperator, tokens[4].Kind)
	assert.Equal(t, "k", tokens[4].Raw)

	assert.Equal(t, contentstream.KindName, tokens[5].Kind)
	assert.Equal(t, "F1", tokens[5].Raw)
	assert.InDelta(t, 9.5, tokens[6].Num, 0.0001)
	assert.Equal(t, "Tf", tokens[7].Raw)

	assert.Equal(t, contentstream.KindString, tokens[8].Kind)
	assert.Equal(t, "Hello", tokens[8].Raw)
	assert.Equal(t, "Tj", tokens[9].Raw)
}

func TestTokenizeNestedAndEscapedStrings(t *testing.T) {
	t.Parallel()

	tokens := contentstream.Tokenize([]byte(`(outer (inner) tail) Tj (esc \) paren) Tj`))

	require.Len(t, tokens, 4)
	assert.Equal(t, "outer (inner) tail", tokens[0].Raw)
	assert.Equal(t, `esc \) paren`, tokens[2].Raw)
}

func TestTokenizeHexStringAndDict(t *testing.T) {
	t.Parallel()

	tokens := contentstream.Tokenize([]byte("<48656C6C6F> Tj << /Type /Page >>"))

	require.Len(t, tokens, 7)
	assert.Equal(t, contentstream.KindString, tokens[0].Kind)
	assert.Equal(t, "48656C6C6F", tokens[0].Raw)
	assert.Equal(t, contentstream.KindDictStart, tokens[2].Kind)
	assert.Equal(t, contentstream.KindName, tokens[3].Kind)
	assert.Equal(t, contentstream.KindDictEnd, tokens[6].Kind)
}

func TestTokenizeSkipsComments(t *testing.T) {
	t.Parallel()

	tokens := contentstream.Tokenize([]byte("% a comment\n1 0 0 1 0 0 cm"))

	require.Len(t, tokens, 7)
	assert.Equal(t, "cm", tokens[6].Raw)
}

func TestTokenizeMalformedInputDoesNotPanic(t *testing.T) {
	t.Parallel()

	tokens := contentstream.Tokenize([]byte("(unterminated string"))

	require.Len(t, tokens, 1)
	assert.Equal(t, "unterminated string", tokens[0].Raw)

	tokens = contentstream.Tokenize([]byte("> ] } q"))
	require.NotEmpty(t, tokens)
	assert.Equal(t, "q", tokens[len(tokens)-1].Raw)
}

func TestScanExtGStateUseReportsPrecedingFill(t *testing.T) {
	t.Parallel()

	stream := []byte("0 0 0 0 k /GS1 gs 0 0 0 1 k /GS2 gs 1 0 0 rg /GS3 gs")
	hits := contentstream.ScanExtGStateUse(contentstream.Tokenize(stream))

	require.Len(t, hits, 3)

	assert.Equal(t, "GS1", hits[0].Name)
	assert.Equal(t, "k", hits[0].FillOperator)
	assert.Equal(t, []float64{0, 0, 0, 0}, hits[0].FillComponents)

	assert.Equal(t, "GS2", hits[1].Name)
	assert.Equal(t, []float64{0, 0, 0, 1}, hits[1].FillComponents)

	assert.Equal(t, "GS3", hits[2].Name)
	assert.Equal(t, "rg", hits[2].FillOperator)
}

func TestScanExtGStateUseWithoutFillColor(t *testing.T) {
	t.Parallel()

	hits := contentstream.ScanExtGStateUse(contentstream.Tokenize([]byte("/GS0 gs")))

	require.Len(t, hits, 1)
	assert.Empty(t, hits[0].FillOperator)
	assert.Empty(t, hits[0].FillComponents)
}

func TestScanExtGStateUseTracksStrokeBlack(t *testing.T) {
	t.Parallel()

	hits := contentstream.ScanExtGStateUse(contentstream.Tokenize([]byte("0 0 0 1 K /GS1 gs")))

	require.Len(t, hits, 1)
	assert.Equal(t, "K", hits[0].FillOperator)
	assert.Equal(t, []float64{0, 0, 0, 1}, hits[0].FillComponents)
}

func TestScanExtGStateUseIgnoresStringContent(t *testing.T) {
	t.Parallel()

	// Operator-like text inside a string literal must not register as a
	// graphics state invocation.
	stream := []byte("(set /GS1 gs here) Tj /GS2 gs")
	hits := contentstream.ScanExtGStateUse(contentstream.Tokenize(stream))

	require.Len(t, hits, 1)
	assert.Equal(t, "GS2", hits[0].Name)
}

func TestScanFontSizes(t *testing.T) {
	t.Parallel()

	stream := []byte("BT /F1 3.2 Tf (tiny) Tj /F2 11 Tf (body) Tj ET")
	sizes := contentstream.ScanFontSizes(contentstream.Tokenize(stream))

	require.Len(t, sizes, 2)
	assert.Equal(t, "F1", sizes[0].Name)
	assert.InDelta(t, 3.2, sizes[0].SizePt, 0.0001)
	assert.Equal(t, "F2", sizes[1].Name)
	assert.InDelta(t, 11.0, sizes[1].SizePt, 0.0001)
}

func TestTransparencyMarkers(t *testing.T) {
	t.Parallel()

	stream := []byte("/BM /Multiply gs /SMask /Mask0 gs /SMask /None gs /BM /Normal gs")
	markers := contentstream.TransparencyMarkers(contentstream.Tokenize(stream))

	assert.Equal(t, []string{"BM/Multiply", "SMask"}, markers)
}

func TestTransparencyMarkersNoneFound(t *testing.T) {
	t.Parallel()

	markers := contentstream.TransparencyMarkers(
		contentstream.Tokenize([]byte("/BM /Normal gs 0 0 0 1 k")),
	)

	assert.Empty(t, markers)
}
