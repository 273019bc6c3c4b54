// Package pipeline orchestrates the per-file preflight run: open the
// document, build the measurement record, evaluate the preflight profile,
// optionally apply automated fixes and re-scan the corrected file. Stage
// progress is reported through a callback at fixed milestones.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/autofix"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/preflight"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/raster"
)

var (
	// ErrOpenerRequired is returned when no document opener is configured.
	ErrOpenerRequired = errors.New("document opener is required")
	// ErrRegistryRequired is returned when no profile registry is configured.
	ErrRegistryRequired = errors.New("profile registry is required")
)

// ProgressFunc receives stage milestones as the pipeline advances. Implement
// it to be safe for concurrent calls; workers report from their own
// goroutines.
type ProgressFunc func(percent int, stage string)

// Options configures a Runner. Fixer and Renderer are optional; everything
// else is required.
type Options struct {
	Opener   document.Opener
	Registry *preflight.Registry
	Settings analysis.Settings
	Fixer    autofix.Fixer
	Renderer *raster.Renderer
}

// Result is the complete outcome of one file's preflight run.
type Result struct {
	Path           string              `json:"path"`
	Profile        string              `json:"profile"`
	Record         *analysis.Record    `json:"record"`
	Preflight      *preflight.Verdict  `json:"preflight"`
	FixComparison  *autofix.Comparison `json:"fix_comparison,omitempty"`
	AutoFixApplied bool                `json:"auto_fix_applied"`
	FixedPath      string              `json:"fixed_path,omitempty"`
	Duration       time.Duration       `json:"duration"`
}

// Runner executes the preflight pipeline for single files. A Runner holds no
// per-file state and is safe to share across workers.
type Runner struct {
	opener    document.Opener
	registry  *preflight.Registry
	settings  analysis.Settings
	fixer     autofix.Fixer
	renderer  *raster.Renderer
	scanner   *analysis.Scanner
	rescanner *analysis.Scanner
	log       *logger.Logger
}

// New validates the options and builds a Runner. The re-scan after a fix
// runs without ink sampling; the fix never changes rendered ink and the
// sampling pass is by far the most expensive stage.
func New(opts *Options, log *logger.Logger) (*Runner, error) {
	if opts.Opener == nil {
		return nil, ErrOpenerRequired
	}

	if opts.Registry == nil {
		return nil, ErrRegistryRequired
	}

	settings := opts.Settings.Normalized()

	rescanSettings := settings
	rescanSettings.InkCoverageEnabled = false

	return &Runner{
		opener:    opts.Opener,
		registry:  opts.Registry,
		settings:  settings,
		fixer:     opts.Fixer,
		renderer:  opts.Renderer,
		scanner:   analysis.NewScanner(settings, log),
		rescanner: analysis.NewScanner(rescanSettings, log),
		log:       log,
	}, nil
}

// Settings returns the normalized settings snapshot the runner was built
// with.
func (r *Runner) Settings() analysis.Settings {
	return r.settings
}

// Run executes the full pipeline for one file. Fatal document errors return
// an error classified by the taxonomy in the document package; recoverable
// stage failures (auto-fix, re-scan) are logged and the run completes with
// what it has.
func (r *Runner) Run(
	ctx context.Context,
	path string,
	profileName string,
	progress ProgressFunc,
) (*Result, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	started := time.Now()

	progress(10, "analysis started")

	rec, err := r.analyze(ctx, path, r.scanner, progress)
	if err != nil {
		return nil, err
	}

	progress(40, "analysis complete")

	profile := r.registry.Get(profileName)
	verdict := profile.Evaluate(rec)
	verdict.MergeInto(rec)

	result := &Result{
		Path:      path,
		Profile:   profile.Name,
		Record:    rec,
		Preflight: verdict,
	}

	progress(45, "checking auto-fix")
	r.applyFixes(ctx, result, profile, progress)

	result.Duration = time.Since(started)

	return result, nil
}

// analyze opens the file and runs the scanner over it, releasing the
// document on every path.
func (r *Runner) analyze(
	ctx context.Context,
	path string,
	scanner *analysis.Scanner,
	progress ProgressFunc,
) (*analysis.Record, error) {
	doc, err := r.opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			r.log.Warn("Closing %s failed: %v", path, closeErr)
		}
	}()

	if r.renderer != nil {
		doc = raster.WithRenderer(doc, path, r.renderer)
	}

	progress(20, "extracting measurements")

	rec, err := scanner.Scan(ctx, doc, path)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}

	return rec, nil
}

// applyFixes runs the optional fixer and attaches a before/after comparison
// from a re-scan of the corrected file. Every failure in here is recoverable:
// the original analysis stands and the run continues without the fix.
func (r *Runner) applyFixes(
	ctx context.Context,
	result *Result,
	profile preflight.Profile,
	progress ProgressFunc,
) {
	if r.fixer == nil {
		return
	}

	request, wanted := autofix.NeededFixes(r.settings, result.Record)
	if !wanted {
		return
	}

	progress(50, "applying fixes")

	outcome, err := r.fixer.Fix(ctx, result.Path, request)
	if err != nil {
		r.log.Warn("Auto-fix of %s failed, keeping original: %v", result.Path, err)

		return
	}

	progress(55, "verifying fixes")

	fixedRec, err := r.analyze(ctx, outcome.FixedPath, r.rescanner, func(int, string) {})
	if err != nil {
		r.log.Warn("Re-scan of fixed file %s failed: %v", outcome.FixedPath, err)

		return
	}

	profile.Evaluate(fixedRec).MergeInto(fixedRec)

	result.AutoFixApplied = true
	result.FixedPath = outcome.FixedPath
	result.FixComparison = autofix.Compare(result.Record, fixedRec, outcome.Modifications)
}
