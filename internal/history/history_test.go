package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/history"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
)

func newStore(t *testing.T) *history.Store {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	store, err := history.New(
		filepath.Join(t.TempDir(), "history", "results.jsonl"),
		log,
	)
	require.NoError(t, err)

	return store
}

func sampleResult(path string) *pipeline.Result {
	return &pipeline.Result{
		Path:    path,
		Profile: "offset",
		Record: &analysis.Record{
			Issues: []analysis.Finding{{
				Type:     analysis.FindingRGBOnly,
				Severity: analysis.SeverityWarning,
				Message:  "Document uses only RGB color",
			}},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	require.NoError(t, store.Save(sampleResult("first.pdf")))
	require.NoError(t, store.Save(sampleResult("second.pdf")))

	entries, err := store.Load()
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "first.pdf", entries[0].Result.Path)
	assert.Equal(t, "second.pdf", entries[1].Result.Path)
	assert.False(t, entries[0].SavedAt.IsZero())
	assert.Equal(
		t,
		analysis.FindingRGBOnly,
		entries[1].Result.Record.Issues[0].Type,
	)
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	entries, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadSkipsCorruptLines(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	require.NoError(t, store.Save(sampleResult("good.pdf")))

	file, err := os.OpenFile(store.Path(), os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)

	_, err = file.WriteString("{not json}\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, store.Save(sampleResult("after.pdf")))

	entries, err := store.Load()
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "good.pdf", entries[0].Result.Path)
	assert.Equal(t, "after.pdf", entries[1].Result.Path)
}

func TestSaveErrorClassifiesAsPersistenceFailure(t *testing.T) {
	t.Parallel()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	dir := t.TempDir()

	// A directory at the history path makes the append fail.
	store, err := history.New(filepath.Join(dir, "results.jsonl"), log)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(store.Path(), 0o750))

	saveErr := store.Save(sampleResult("blocked.pdf"))
	require.Error(t, saveErr)
	assert.ErrorIs(t, saveErr, document.ErrPersistenceFailed)
	assert.Equal(
		t,
		document.KindPersistenceFailure,
		document.Classify(saveErr),
	)
}
