package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/autofix"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/preflight"
)

// fakeDoc is a single-page in-memory document.
type fakeDoc struct {
	colors []document.ColorSpaceRef
	fonts  []document.FontRef
	closed bool
}

func (d *fakeDoc) PageCount() int              { return 1 }
func (d *fakeDoc) Version() string             { return "1.7" }
func (d *fakeDoc) Encrypted() bool             { return false }
func (d *fakeDoc) Linearized() bool            { return false }
func (d *fakeDoc) Metadata() document.Metadata { return document.Metadata{} }

func (d *fakeDoc) Boxes(int) (document.PageBoxes, error) {
	b := &document.Box{URX: 595.276, URY: 841.890}

	return document.PageBoxes{Media: b, Crop: b}, nil
}

func (d *fakeDoc) Rotation(int) (int, error)                      { return 0, nil }
func (d *fakeDoc) Fonts(int) ([]document.FontRef, error)          { return d.fonts, nil }
func (d *fakeDoc) ColorSpaces(int) ([]document.ColorSpaceRef, error) {
	return d.colors, nil
}
func (d *fakeDoc) Images(int) ([]document.ImageRef, error)    { return nil, nil }
func (d *fakeDoc) Content(int) ([]byte, error)                { return nil, nil }
func (d *fakeDoc) ExtGStates(int) ([]document.ExtGState, error) { return nil, nil }

func (d *fakeDoc) RenderPage(context.Context, int, int) (image.Image, error) {
	return nil, document.ErrRenderingUnsupported
}

func (d *fakeDoc) Close() error {
	d.closed = true

	return nil
}

// fakeOpener serves documents by path.
type fakeOpener struct {
	docs map[string]*fakeDoc
}

func (o *fakeOpener) Open(_ context.Context, path string) (document.Document, error) {
	doc, ok := o.docs[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, document.ErrDocumentUnreadable)
	}

	return doc, nil
}

// fakeFixer returns a canned outcome or error.
type fakeFixer struct {
	outcome *autofix.Outcome
	err     error
	called  bool
}

func (f *fakeFixer) Fix(_ context.Context, _ string, _ autofix.Request) (*autofix.Outcome, error) {
	f.called = true

	if f.err != nil {
		return nil, f.err
	}

	return f.outcome, nil
}

func newRunner(t *testing.T, opts *pipeline.Options) *pipeline.Runner {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	if opts.Registry == nil {
		opts.Registry = preflight.NewRegistry(log)
	}

	runner, err := pipeline.New(opts, log)
	require.NoError(t, err)

	return runner
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	_, err = pipeline.New(&pipeline.Options{Registry: preflight.NewRegistry(log)}, log)
	require.ErrorIs(t, err, pipeline.ErrOpenerRequired)

	_, err = pipeline.New(&pipeline.Options{Opener: &fakeOpener{}}, log)
	require.ErrorIs(t, err, pipeline.ErrRegistryRequired)
}

func TestRunProducesRecordAndVerdict(t *testing.T) {
	t.Parallel()

	doc := &fakeDoc{colors: []document.ColorSpaceRef{{Name: "CS0", Family: "DeviceRGB"}}}
	runner := newRunner(t, &pipeline.Options{
		Opener:   &fakeOpener{docs: map[string]*fakeDoc{"in.pdf": doc}},
		Settings: analysis.DefaultSettings(),
	})

	result, err := runner.Run(context.Background(), "in.pdf", "offset", nil)
	require.NoError(t, err)

	assert.Equal(t, "offset", result.Profile)
	assert.True(t, result.Record.HasIssueType(analysis.FindingRGBOnly))
	assert.True(t, result.Record.HasIssueType("preflight_no_rgb_color"))
	assert.Equal(t, preflight.StatusFail, result.Preflight.OverallStatus)
	assert.False(t, result.AutoFixApplied)
	assert.True(t, doc.closed)
	assert.Positive(t, result.Duration)
}

func TestRunReportsMilestones(t *testing.T) {
	t.Parallel()

	runner := newRunner(t, &pipeline.Options{
		Opener:   &fakeOpener{docs: map[string]*fakeDoc{"in.pdf": {}}},
		Settings: analysis.DefaultSettings(),
	})

	var percents []int

	_, err := runner.Run(context.Background(), "in.pdf", "offset",
		func(percent int, stage string) {
			percents = append(percents, percent)

			assert.NotEmpty(t, stage)
		})
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20, 40, 45}, percents)
}

func TestRunAppliesAutoFix(t *testing.T) {
	t.Parallel()

	settings := analysis.DefaultSettings()
	settings.AutoConvertRGB = true

	original := &fakeDoc{colors: []document.ColorSpaceRef{{Name: "CS0", Family: "DeviceRGB"}}}
	fixed := &fakeDoc{colors: []document.ColorSpaceRef{{Name: "CS0", Family: "DeviceCMYK"}}}
	fixer := &fakeFixer{outcome: &autofix.Outcome{
		FixedPath:     "fixed.pdf",
		Modifications: []string{"converted RGB to CMYK"},
	}}

	runner := newRunner(t, &pipeline.Options{
		Opener: &fakeOpener{docs: map[string]*fakeDoc{
			"in.pdf":    original,
			"fixed.pdf": fixed,
		}},
		Settings: settings,
		Fixer:    fixer,
	})

	var percents []int

	result, err := runner.Run(context.Background(), "in.pdf", "offset",
		func(percent int, _ string) { percents = append(percents, percent) })
	require.NoError(t, err)

	assert.True(t, fixer.called)
	assert.True(t, result.AutoFixApplied)
	assert.Equal(t, "fixed.pdf", result.FixedPath)
	assert.Equal(t, []int{10, 20, 40, 45, 50, 55}, percents)

	require.NotNil(t, result.FixComparison)
	assert.Contains(t, result.FixComparison.Resolved, analysis.FindingRGBOnly)
	assert.True(t, fixed.closed)
}

func TestRunKeepsOriginalWhenFixerFails(t *testing.T) {
	t.Parallel()

	settings := analysis.DefaultSettings()
	settings.AutoConvertRGB = true

	doc := &fakeDoc{colors: []document.ColorSpaceRef{{Name: "CS0", Family: "DeviceRGB"}}}
	fixer := &fakeFixer{err: errors.New("converter crashed")}

	runner := newRunner(t, &pipeline.Options{
		Opener:   &fakeOpener{docs: map[string]*fakeDoc{"in.pdf": doc}},
		Settings: settings,
		Fixer:    fixer,
	})

	result, err := runner.Run(context.Background(), "in.pdf", "offset", nil)
	require.NoError(t, err)

	assert.True(t, fixer.called)
	assert.False(t, result.AutoFixApplied)
	assert.Nil(t, result.FixComparison)
	assert.True(t, result.Record.HasIssueType(analysis.FindingRGBOnly))
}

func TestRunClassifiesOpenFailure(t *testing.T) {
	t.Parallel()

	runner := newRunner(t, &pipeline.Options{
		Opener:   &fakeOpener{},
		Settings: analysis.DefaultSettings(),
	})

	_, err := runner.Run(context.Background(), "missing.pdf", "offset", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, document.ErrDocumentUnreadable)
	assert.Equal(t, document.KindDocumentUnreadable, document.Classify(err))
}
