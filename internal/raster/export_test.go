package raster

// Exported test-only accessors for unexported functions and fields.
// This file is compiled only during tests and does not affect the public API.

// BuildGhostscriptArgsForTest exposes buildGhostscriptArgs for tests in
// external package.
func BuildGhostscriptArgsForTest(dpi, page int, outPath, pdfPath string) []string {
	return buildGhostscriptArgs(dpi, page, outPath, pdfPath)
}

// SetExecutorForTest swaps the renderer's command executor.
func (r *Renderer) SetExecutorForTest(executor CommandExecutor) { r.executor = executor }
