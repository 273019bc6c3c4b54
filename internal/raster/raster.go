// Package raster renders PDF pages to images through Ghostscript for
// ink-coverage sampling. The external process sits behind a CommandExecutor
// so tests can fake it.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/book-expert/logger"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
)

// ErrPageOutOfRange is returned for non-positive page numbers.
var ErrPageOutOfRange = errors.New("page number must be positive")

// CommandExecutor defines an interface for running external commands.
// This abstraction is crucial for enabling unit tests to mock command execution.
type CommandExecutor interface {
	// Run executes a command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// RunCombined executes a command and returns its combined standard output and
	// standard error.
	RunCombined(ctx context.Context, name string, args ...string) ([]byte, error)
}

// defaultExecutor implements the CommandExecutor interface using the standard
// os/exec package.
type defaultExecutor struct{}

func (executor *defaultExecutor) Run(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (executor *defaultExecutor) RunCombined(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Renderer rasterizes single PDF pages via Ghostscript.
type Renderer struct {
	executor CommandExecutor
	log      *logger.Logger
}

// New returns a Renderer backed by the real Ghostscript binary.
func New(log *logger.Logger) *Renderer {
	return &Renderer{
		executor: &defaultExecutor{},
		log:      log,
	}
}

// Available reports whether the Ghostscript binary can be invoked.
func (r *Renderer) Available(ctx context.Context) bool {
	_, err := r.executor.Run(ctx, "ghostscript", "--version")

	return err == nil
}

// RenderPage rasterizes one page of the PDF at the given resolution and
// decodes the resulting PNG.
func (r *Renderer) RenderPage(
	ctx context.Context,
	pdfPath string,
	page int,
	dpi int,
) (image.Image, error) {
	if page <= 0 {
		return nil, ErrPageOutOfRange
	}

	tmpDir, err := os.MkdirTemp("", "preflight-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create raster temp dir: %w", err)
	}

	defer func() {
		if removeErr := os.RemoveAll(tmpDir); removeErr != nil {
			r.log.Warn("Could not remove raster temp dir %s: %v", tmpDir, removeErr)
		}
	}()

	outPath := filepath.Join(tmpDir, fmt.Sprintf("page_%04d.png", page))
	args := buildGhostscriptArgs(dpi, page, outPath, pdfPath)

	outputBytes, execErr := r.executor.RunCombined(ctx, "ghostscript", args...)
	if execErr != nil {
		return nil, fmt.Errorf(
			"ghostscript execution failed: %w. Output: %s",
			execErr,
			string(outputBytes),
		)
	}

	return decodePNG(outPath)
}

// buildGhostscriptArgs constructs the list of command-line arguments for the
// Ghostscript process.
func buildGhostscriptArgs(dpi, page int, outPath, pdfPath string) []string {
	return []string{
		"-q", "-dNOPAUSE", "-dBATCH", // Quiet mode, non-interactive batch processing.
		"-sDEVICE=png16m",                   // Set the output device to a 24-bit color PNG.
		fmt.Sprintf("-r%d", dpi),            // Set the resolution in DPI.
		fmt.Sprintf("-dFirstPage=%d", page), // Specify the page number to render.
		fmt.Sprintf("-dLastPage=%d", page),  // Process only that single page.
		"-o", outPath,                       // Set the output file path.
		"-dTextAlphaBits=4",     // Enable anti-aliasing for text.
		"-dGraphicsAlphaBits=4", // Enable anti-aliasing for graphics.
		pdfPath,                 // The input PDF file.
	}
}

func decodePNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rendered page: %w", err)
	}

	defer func() { _ = file.Close() }()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}

	return img, nil
}

// renderedDocument wraps a Document whose backend cannot rasterize and routes
// RenderPage through the Ghostscript renderer.
type renderedDocument struct {
	document.Document

	renderer *Renderer
	path     string
}

// WithRenderer returns a view of doc whose RenderPage is served by the given
// renderer. All other methods pass through unchanged.
func WithRenderer(doc document.Document, path string, renderer *Renderer) document.Document {
	return &renderedDocument{
		Document: doc,
		renderer: renderer,
		path:     path,
	}
}

func (d *renderedDocument) RenderPage(
	ctx context.Context,
	page int,
	dpi int,
) (image.Image, error) {
	return d.renderer.RenderPage(ctx, d.path, page, dpi)
}
