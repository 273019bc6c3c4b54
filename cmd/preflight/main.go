// Command preflight checks a directory of PDF files against a print
// production profile. It loads project.toml, merges command-line overrides,
// runs the batch scheduler over the discovered files and prints a summary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/cheggaaa/pb/v3"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/batch"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/history"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/notify"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pdfcpudoc"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/preflight"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/raster"
)

type configPaths struct {
	InputDir    string `toml:"input_dir"`
	HistoryFile string `toml:"history_file"`
	ReportDir   string `toml:"report_dir"`
}

type configLogsDir struct {
	Preflight string `toml:"preflight"`
}

type configBatch struct {
	Profile   string `toml:"profile"`
	SortOrder string `toml:"sort_order"`
}

type configNATS struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	StreamName     string `toml:"stream_name"`
	SubjectPrefix  string `toml:"subject_prefix"`
	PublishTimeout string `toml:"publish_timeout"`
}

// config represents the structure of the project.toml file.
type config struct {
	Paths    configPaths       `toml:"paths"`
	LogsDir  configLogsDir     `toml:"logs_dir"`
	Settings analysis.Settings `toml:"settings"`
	Batch    configBatch       `toml:"batch"`
	NATS     configNATS        `toml:"nats"`
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	projectRoot, configPath, err := configurator.FindProjectRoot(".")
	if err != nil {
		return fmt.Errorf("could not find project root: %w", err)
	}

	cfg, err := safeLoadConfig(configPath)
	if err != nil {
		return err
	}

	flgs := parseFlags()
	options := mergeConfigAndFlags(&cfg, flgs)

	log, err := setupLogger(projectRoot, cfg.LogsDir.Preflight)
	if err != nil {
		return fmt.Errorf("could not set up logger: %w", err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", closeErr)
		}
	}()

	return runBatch(ctx, &options, log)
}

// safeLoadConfig loads the TOML config over the built-in defaults, allowing a
// missing file without error.
func safeLoadConfig(path string) (config, error) {
	cfg := defaultConfig()

	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}

		return config{}, fmt.Errorf("error loading config file: %w", err)
	}

	return cfg, nil
}

func defaultConfig() config {
	return config{
		Paths:    configPaths{InputDir: "", HistoryFile: "", ReportDir: ""},
		LogsDir:  configLogsDir{Preflight: ""},
		Settings: analysis.DefaultSettings(),
		Batch:    configBatch{Profile: "", SortOrder: ""},
		NATS: configNATS{
			Enabled:        false,
			URL:            "",
			StreamName:     "",
			SubjectPrefix:  "",
			PublishTimeout: "",
		},
	}
}

// options is the merged runtime configuration of one invocation.
type options struct {
	inputDir    string
	historyFile string
	reportDir   string
	profile     string
	sortOrder   string
	settings    analysis.Settings
	nats        configNATS
}

// flags represents the command-line arguments.
type flags struct {
	inputDir    string
	profile     string
	workers     int
	sortOrder   string
	inkCoverage bool
	historyFile string
	reportDir   string
	natsURL     string
}

// parseFlags defines and parses command-line flags.
func parseFlags() flags {
	var flagsVar flags

	flag.StringVar(
		&flagsVar.inputDir,
		"input",
		"",
		"Input directory containing PDF files.",
	)
	flag.StringVar(
		&flagsVar.profile,
		"profile",
		"",
		"Preflight profile (offset, digital, newspaper, large_format, high_quality).",
	)
	flag.IntVar(&flagsVar.workers, "workers", 0, "Number of concurrent workers.")
	flag.StringVar(
		&flagsVar.sortOrder,
		"sort",
		"",
		"Processing order: name, size_asc, size_desc or mtime.",
	)
	flag.BoolVar(
		&flagsVar.inkCoverage,
		"ink",
		false,
		"Enable ink coverage sampling (requires Ghostscript).",
	)
	flag.StringVar(
		&flagsVar.historyFile,
		"history",
		"",
		"Path of the JSONL history file.",
	)
	flag.StringVar(
		&flagsVar.reportDir,
		"report-dir",
		"",
		"Directory for per-file JSON reports.",
	)
	flag.StringVar(&flagsVar.natsURL, "nats-url", "", "NATS server URL for event publishing.")
	flag.Parse()

	return flagsVar
}

// mergeConfigAndFlags combines settings from the config file and command-line
// flags. Flags take precedence over the config file settings.
func mergeConfigAndFlags(cfg *config, flgs flags) options {
	opts := options{
		inputDir:    cfg.Paths.InputDir,
		historyFile: cfg.Paths.HistoryFile,
		reportDir:   cfg.Paths.ReportDir,
		profile:     cfg.Batch.Profile,
		sortOrder:   cfg.Batch.SortOrder,
		settings:    cfg.Settings,
		nats:        cfg.NATS,
	}

	if flgs.inputDir != "" {
		opts.inputDir = flgs.inputDir
	}

	if flgs.profile != "" {
		opts.profile = flgs.profile
	}

	if flgs.workers > 0 {
		opts.settings.WorkerCount = flgs.workers
	}

	if flgs.sortOrder != "" {
		opts.sortOrder = flgs.sortOrder
	}

	if flgs.inkCoverage {
		opts.settings.InkCoverageEnabled = true
	}

	if flgs.historyFile != "" {
		opts.historyFile = flgs.historyFile
	}

	if flgs.reportDir != "" {
		opts.reportDir = flgs.reportDir
	}

	if flgs.natsURL != "" {
		opts.nats.Enabled = true
		opts.nats.URL = flgs.natsURL
	}

	if opts.profile == "" {
		opts.profile = preflight.DefaultProfileName
	}

	opts.settings = opts.settings.Normalized()

	return opts
}

// runBatch wires the collaborators together and drains the result stream.
func runBatch(ctx context.Context, opts *options, log *logger.Logger) error {
	if opts.inputDir == "" {
		return errors.New("no input directory; pass -input or set paths.input_dir")
	}

	paths, err := batch.DiscoverPDFs(opts.inputDir)
	if err != nil {
		return fmt.Errorf("could not discover PDF files: %w", err)
	}

	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found in %s", opts.inputDir)
	}

	batch.SortPaths(paths, batch.Order(opts.sortOrder))

	runner, err := buildRunner(ctx, opts, log)
	if err != nil {
		return err
	}

	schedulerOpts := &batch.Options{
		Runner:       runner,
		Profile:      opts.profile,
		Workers:      opts.settings.WorkerCount,
		QueueTimeout: 0,
		PausePoll:    0,
		Store:        nil,
		Reports:      nil,
		Notifier:     nil,
		Progress:     nil,
	}

	if attachErr := attachCollaborators(ctx, schedulerOpts, opts, log); attachErr != nil {
		return attachErr
	}

	scheduler, err := batch.New(schedulerOpts, log)
	if err != nil {
		return fmt.Errorf("could not create scheduler: %w", err)
	}

	scheduler.Add(paths...)

	results, err := scheduler.Start(ctx)
	if err != nil {
		return fmt.Errorf("could not start batch: %w", err)
	}

	summary := drainResults(results, len(paths), log)
	printSummary(os.Stdout, summary)

	if summary != nil && summary.Errors > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Errors, summary.Total)
	}

	return nil
}

// buildRunner assembles the per-file pipeline. Ink sampling needs a working
// Ghostscript; when it is missing the run continues without ink coverage.
func buildRunner(
	ctx context.Context,
	opts *options,
	log *logger.Logger,
) (*pipeline.Runner, error) {
	var renderer *raster.Renderer

	if opts.settings.InkCoverageEnabled {
		renderer = raster.New(log)
		if !renderer.Available(ctx) {
			log.Warn("Ghostscript not found; ink coverage sampling disabled")

			renderer = nil
			opts.settings.InkCoverageEnabled = false
		}
	}

	runner, err := pipeline.New(&pipeline.Options{
		Opener:   pdfcpudoc.NewOpener(),
		Registry: preflight.NewRegistry(log),
		Settings: opts.settings,
		Fixer:    nil,
		Renderer: renderer,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("could not create pipeline: %w", err)
	}

	return runner, nil
}

func attachCollaborators(
	ctx context.Context,
	schedulerOpts *batch.Options,
	opts *options,
	log *logger.Logger,
) error {
	if opts.historyFile != "" {
		store, err := history.New(opts.historyFile, log)
		if err != nil {
			return fmt.Errorf("could not create history store: %w", err)
		}

		schedulerOpts.Store = store
	}

	if opts.reportDir != "" {
		schedulerOpts.Reports = &jsonReportSink{dir: opts.reportDir}
	}

	if opts.nats.Enabled {
		publisher, err := notify.Connect(ctx, notify.Config{
			URL:            opts.nats.URL,
			StreamName:     opts.nats.StreamName,
			SubjectPrefix:  opts.nats.SubjectPrefix,
			PublishTimeout: opts.nats.PublishTimeout,
		}, log)
		if err != nil {
			return fmt.Errorf("could not connect notification publisher: %w", err)
		}

		schedulerOpts.Notifier = publisher
	}

	return nil
}

// drainResults consumes the result stream behind a progress bar and returns
// the batch summary.
func drainResults(
	results <-chan batch.Result,
	total int,
	log *logger.Logger,
) *batch.Summary {
	bar := pb.New(total).
		SetTemplateString(`{{ bar . " " "━" "━" " " " "}} {{percent .}} {{rtime .}}`).
		SetWriter(os.Stdout).
		Start()
	defer bar.Finish()

	var summary *batch.Summary

	for result := range results {
		switch result.Kind {
		case batch.ResultFileComplete:
			bar.Increment()
			log.Success("Checked %s: %s",
				filepath.Base(result.Path), overallStatus(result))
		case batch.ResultFileError:
			bar.Increment()
			log.Error("Failed %s: %s", filepath.Base(result.Path), result.Message)
		case batch.ResultBatchComplete:
			summary = result.Summary
		}
	}

	return summary
}

func overallStatus(result batch.Result) string {
	if result.Outcome == nil || result.Outcome.Preflight == nil {
		return "unknown"
	}

	return result.Outcome.Preflight.OverallStatus
}

func printSummary(out *os.File, summary *batch.Summary) {
	if summary == nil {
		return
	}

	fmt.Fprintf(out, "\nChecked %d file(s): %d passed preflight analysis, %d failed\n",
		summary.Total, summary.Processed, summary.Errors)

	if summary.AutoFixed > 0 {
		fmt.Fprintf(out, "Auto-fixed: %d\n", summary.AutoFixed)
	}

	fmt.Fprintf(out, "Total time %s, average %s per file\n",
		summary.TotalTime.Round(time.Millisecond),
		summary.AverageTime.Round(time.Millisecond))
}

// setupLogger initializes the logger, creating the log directory if needed.
func setupLogger(projectRoot, logDirConfig string) (*logger.Logger, error) {
	logDir := logDirConfig
	if logDir == "" {
		logDir = filepath.Join(projectRoot, "logs", "preflight")
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("20060102_150405"))

	log, err := logger.New(logDir, logFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// jsonReportSink writes one JSON report file per checked PDF.
type jsonReportSink struct {
	dir string
}

func (s *jsonReportSink) Write(result *pipeline.Result) (string, error) {
	err := os.MkdirAll(s.dir, 0o750)
	if err != nil {
		return "", fmt.Errorf("could not create report directory: %w", err)
	}

	base := strings.TrimSuffix(
		filepath.Base(result.Path),
		filepath.Ext(result.Path),
	)
	reportPath := filepath.Join(s.dir, base+"_report.json")

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not encode report: %w", err)
	}

	err = os.WriteFile(reportPath, payload, 0o600)
	if err != nil {
		return "", fmt.Errorf("could not write report: %w", err)
	}

	return reportPath, nil
}
