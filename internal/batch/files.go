package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Order selects the enqueue order of discovered files.
type Order string

// Supported orderings. The zero value keeps directory order.
const (
	OrderNone     Order = ""
	OrderName     Order = "name"
	OrderSizeAsc  Order = "size_asc"
	OrderSizeDesc Order = "size_desc"
	OrderModTime  Order = "mtime"
)

// DiscoverPDFs finds all PDF files in a given directory.
// It performs a case-insensitive search and does not recurse into
// subdirectories.
func DiscoverPDFs(dirPath string) ([]string, error) {
	dirEntries, readErr := os.ReadDir(dirPath)
	if readErr != nil {
		return nil, fmt.Errorf(
			"could not read directory %s: %w",
			dirPath,
			readErr,
		)
	}

	var pdfPaths []string

	for _, entry := range dirEntries {
		// Ensure we only process files, not directories.
		if !entry.IsDir() &&
			strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {

			pdfPaths = append(pdfPaths, filepath.Join(dirPath, entry.Name()))
		}
	}

	return pdfPaths, nil
}

// SortPaths orders file paths by the given policy. Unreadable files sort
// with zero size and time; the input slice is sorted in place and returned.
func SortPaths(paths []string, order Order) []string {
	switch order {
	case OrderName:
		sort.Slice(paths, func(i, j int) bool {
			return filepath.Base(paths[i]) < filepath.Base(paths[j])
		})
	case OrderSizeAsc:
		sort.SliceStable(paths, func(i, j int) bool {
			return fileSize(paths[i]) < fileSize(paths[j])
		})
	case OrderSizeDesc:
		sort.SliceStable(paths, func(i, j int) bool {
			return fileSize(paths[i]) > fileSize(paths[j])
		})
	case OrderModTime:
		sort.SliceStable(paths, func(i, j int) bool {
			return modTime(paths[i]) < modTime(paths[j])
		})
	}

	return paths
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return info.Size()
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return info.ModTime().UnixNano()
}
