package batch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/batch"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))

	return path
}

func TestDiscoverPDFs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", 1)
	writeFile(t, dir, "B.PDF", 1)
	writeFile(t, dir, "notes.txt", 1)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o750))
	writeFile(t, filepath.Join(dir, "nested"), "deep.pdf", 1)

	paths, err := batch.DiscoverPDFs(dir)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Contains(t, paths, filepath.Join(dir, "a.pdf"))
	assert.Contains(t, paths, filepath.Join(dir, "B.PDF"))
}

func TestDiscoverPDFsMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := batch.DiscoverPDFs(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestSortPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	big := writeFile(t, dir, "big.pdf", 300)
	small := writeFile(t, dir, "small.pdf", 10)
	medium := writeFile(t, dir, "a_medium.pdf", 100)

	t.Run("by name", func(t *testing.T) {
		t.Parallel()

		sorted := batch.SortPaths([]string{small, big, medium}, batch.OrderName)
		assert.Equal(t, []string{medium, big, small}, sorted)
	})

	t.Run("by size ascending", func(t *testing.T) {
		t.Parallel()

		sorted := batch.SortPaths([]string{big, medium, small}, batch.OrderSizeAsc)
		assert.Equal(t, []string{small, medium, big}, sorted)
	})

	t.Run("by size descending", func(t *testing.T) {
		t.Parallel()

		sorted := batch.SortPaths([]string{small, medium, big}, batch.OrderSizeDesc)
		assert.Equal(t, []string{big, medium, small}, sorted)
	})

	t.Run("by modification time", func(t *testing.T) {
		t.Parallel()

		base := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(big, base, base))
		require.NoError(t, os.Chtimes(small, base, base.Add(time.Minute)))
		require.NoError(t, os.Chtimes(medium, base, base.Add(2*time.Minute)))

		sorted := batch.SortPaths([]string{medium, small, big}, batch.OrderModTime)
		assert.Equal(t, []string{big, small, medium}, sorted)
	})

	t.Run("default keeps order", func(t *testing.T) {
		t.Parallel()

		sorted := batch.SortPaths([]string{big, small}, batch.OrderNone)
		assert.Equal(t, []string{big, small}, sorted)
	})
}
