// Package batch runs the preflight pipeline concurrently over a set of
// files: a fixed worker pool pulls jobs from a bounded queue, pushes tagged
// results to a bounded result channel, and supports cooperative pause,
// resume and stop. A failure in one file never affects the others.
package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
)

var (
	// ErrRunnerRequired is returned when no file runner is configured.
	ErrRunnerRequired = errors.New("file runner is required")
	// ErrAlreadyRunning is returned when Start is called on a running batch.
	ErrAlreadyRunning = errors.New("batch is already running")
	// ErrNoJobs is returned when Start is called with nothing queued.
	ErrNoJobs = errors.New("no waiting jobs to process")
)

// Result kinds carried on the result channel.
const (
	ResultFileComplete  = "complete"
	ResultFileError     = "error"
	ResultBatchComplete = "batch_complete"
)

// Result is one tagged record on the result channel. Outcome is set for
// complete results, ErrorKind and Message for error results, Summary for the
// single batch_complete record.
type Result struct {
	Kind      string           `json:"kind"`
	JobID     string           `json:"job_id,omitempty"`
	Path      string           `json:"path,omitempty"`
	Outcome   *pipeline.Result `json:"outcome,omitempty"`
	ErrorKind document.Kind    `json:"error_kind,omitempty"`
	Message   string           `json:"message,omitempty"`
	Summary   *Summary         `json:"summary,omitempty"`
}

// Summary is the batch completion record.
type Summary struct {
	Total       int           `json:"total"`
	Processed   int           `json:"processed"`
	Errors      int           `json:"errors"`
	AutoFixed   int           `json:"auto_fixed"`
	TotalTime   time.Duration `json:"total_time"`
	AverageTime time.Duration `json:"average_time"`
}

// FileRunner executes the preflight pipeline for one file. *pipeline.Runner
// implements it.
type FileRunner interface {
	Run(
		ctx context.Context,
		path string,
		profile string,
		progress pipeline.ProgressFunc,
	) (*pipeline.Result, error)
}

// ResultStore persists completed results. Failures are logged and never fail
// the job.
type ResultStore interface {
	Save(result *pipeline.Result) error
}

// ReportSink renders a report artifact for a completed result and returns
// its location.
type ReportSink interface {
	Write(result *pipeline.Result) (string, error)
}

// Notifier receives per-file and batch summary events.
type Notifier interface {
	FileProcessed(jobID string, result *pipeline.Result) error
	FileFailed(jobID, path, message string) error
	BatchComplete(summary Summary) error
}

// ProgressFunc receives job progress from worker goroutines; implementations
// must tolerate concurrent calls.
type ProgressFunc func(jobID string, status Status, percent int, stage string)

// Default scheduler timings.
const (
	defaultQueueTimeout = time.Second
	defaultPausePoll    = 100 * time.Millisecond
	defaultWorkerCount  = 3
)

// Options configures a Scheduler. Runner is required; the collaborators and
// the progress callback are optional.
type Options struct {
	Runner       FileRunner
	Profile      string
	Workers      int
	QueueTimeout time.Duration
	PausePoll    time.Duration
	Store        ResultStore
	Reports      ReportSink
	Notifier     Notifier
	Progress     ProgressFunc
}

func (o *Options) withDefaults() {
	if o.Workers <= 0 {
		o.Workers = defaultWorkerCount
	}

	if o.QueueTimeout <= 0 {
		o.QueueTimeout = defaultQueueTimeout
	}

	if o.PausePoll <= 0 {
		o.PausePoll = defaultPausePoll
	}
}

// Scheduler owns the job table, the work queue and the worker pool. The only
// shared mutable state between workers is the queue, the result channel and
// the two atomic flags; every measurement record stays worker-local.
type Scheduler struct {
	opts Options
	log  *logger.Logger

	mu     sync.Mutex
	jobs   map[string]*Job
	order  []string
	durSum time.Duration

	queue   chan *Job
	results chan Result

	running atomic.Bool
	paused  atomic.Bool
	wg      sync.WaitGroup

	batchStart time.Time
}

// New builds a Scheduler.
func New(opts *Options, log *logger.Logger) (*Scheduler, error) {
	if opts.Runner == nil {
		return nil, ErrRunnerRequired
	}

	opts.withDefaults()

	return &Scheduler{
		opts: *opts,
		log:  log,
		jobs: make(map[string]*Job),
	}, nil
}

// Add queues files for the next Start call and returns their job IDs.
func (s *Scheduler) Add(paths ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(paths))

	for _, path := range paths {
		job := &Job{
			ID:      uuid.NewString(),
			Path:    path,
			Status:  StatusWaiting,
			AddedAt: time.Now(),
		}

		s.jobs[job.ID] = job
		s.order = append(s.order, job.ID)
		ids = append(ids, job.ID)
	}

	return ids
}

// Jobs returns a snapshot of all jobs in insertion order.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]Job, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *s.jobs[id])
	}

	return snapshot
}

// Start spawns the worker pool over the waiting jobs and returns the result
// channel. The channel carries one record per processed file plus a single
// batch_complete record, after which it is closed.
func (s *Scheduler) Start(ctx context.Context) (<-chan Result, error) {
	if s.running.Swap(true) {
		return nil, ErrAlreadyRunning
	}

	s.mu.Lock()

	var waiting []*Job

	for _, id := range s.order {
		if s.jobs[id].Status == StatusWaiting {
			waiting = append(waiting, s.jobs[id])
		}
	}

	if len(waiting) == 0 {
		s.mu.Unlock()
		s.running.Store(false)

		return nil, ErrNoJobs
	}

	s.batchStart = time.Now()
	s.durSum = 0
	s.queue = make(chan *Job, len(waiting))

	for _, job := range waiting {
		s.queue <- job
	}

	close(s.queue) // No more jobs will be sent this run.

	// One slot per file plus the summary: emitting never blocks a worker.
	s.results = make(chan Result, len(waiting)+1)
	s.mu.Unlock()

	for range s.opts.Workers {
		s.wg.Add(1)

		go s.worker(ctx)
	}

	go s.finalize()

	return s.results, nil
}

// Pause halts new dequeues; in-flight jobs continue. Workers observe the
// flag within one polling interval.
func (s *Scheduler) Pause() { s.paused.Store(true) }

// Resume clears the pause flag.
func (s *Scheduler) Resume() { s.paused.Store(false) }

// Stop prevents any further dequeues and drains the remaining queue without
// processing. In-flight jobs are not interrupted; they finish naturally and
// their results are still emitted.
func (s *Scheduler) Stop() {
	s.running.Store(false)
	s.paused.Store(false)

	for {
		select {
		case _, ok := <-s.queue:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Running reports whether a batch run is in progress.
func (s *Scheduler) Running() bool { return s.running.Load() }

// Paused reports whether the pause flag is set.
func (s *Scheduler) Paused() bool { return s.paused.Load() }

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		if !s.running.Load() {
			return
		}

		if s.paused.Load() {
			time.Sleep(s.opts.PausePoll)

			continue
		}

		select {
		case job, ok := <-s.queue:
			if !ok {
				return
			}

			s.process(ctx, job)
		case <-time.After(s.opts.QueueTimeout):
			// Re-check the running and pause flags.
		}
	}
}

// finalize waits for the pool to drain, emits the single batch_complete
// record and closes the result channel.
func (s *Scheduler) finalize() {
	s.wg.Wait()

	summary := s.summary()

	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.BatchComplete(summary); err != nil {
			s.log.Warn("Batch-complete notification failed: %v", err)
		}
	}

	s.results <- Result{Kind: ResultBatchComplete, Summary: &summary}
	close(s.results)

	s.running.Store(false)
	s.paused.Store(false)
}

// process runs one job through the pipeline and the result collaborators.
// Any error is classified and terminates only this job.
func (s *Scheduler) process(ctx context.Context, job *Job) {
	s.transition(job.ID, StatusProcessing)

	report := func(percent int, stage string) {
		s.reportProgress(job.ID, StatusProcessing, percent, stage)
	}

	started := time.Now()

	outcome, err := s.opts.Runner.Run(ctx, job.Path, s.opts.Profile, report)
	if err != nil {
		s.failJob(job, err, time.Since(started))

		return
	}

	report(60, "preparing results")
	s.persist(job, outcome, report)
	s.completeJob(job, outcome, time.Since(started))
}

// persist hands the result to the storage and report collaborators. Both are
// best-effort: a failure is logged and the job still completes.
func (s *Scheduler) persist(job *Job, outcome *pipeline.Result, report pipeline.ProgressFunc) {
	if s.opts.Store != nil {
		report(65, "storing result")

		if err := s.opts.Store.Save(outcome); err != nil {
			s.log.Warn("Storing result of %s failed: %v", job.Path, err)
		}
	}

	if s.opts.Reports != nil {
		report(75, "generating report")

		reportPath, err := s.opts.Reports.Write(outcome)
		if err != nil {
			s.log.Warn("Report generation for %s failed: %v", job.Path, err)
		} else {
			s.log.Info("Report for %s saved to %s", job.Path, reportPath)
			report(90, "report saved")
		}
	}
}

func (s *Scheduler) completeJob(job *Job, outcome *pipeline.Result, elapsed time.Duration) {
	s.mu.Lock()
	if allowedTransition(job.Status, StatusComplete) {
		job.Status = StatusComplete
	}

	job.Duration = elapsed
	job.AutoFixed = outcome.AutoFixApplied
	s.durSum += elapsed
	s.mu.Unlock()

	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.FileProcessed(job.ID, outcome); err != nil {
			s.log.Warn("Completion notification for %s failed: %v", job.Path, err)
		}
	}

	s.reportProgress(job.ID, StatusComplete, 100, "complete")

	s.results <- Result{
		Kind:    ResultFileComplete,
		JobID:   job.ID,
		Path:    job.Path,
		Outcome: outcome,
	}
}

func (s *Scheduler) failJob(job *Job, err error, elapsed time.Duration) {
	kind := document.Classify(err)
	message := document.UserMessage(err)

	s.log.Error("Processing %s failed (%s): %v", job.Path, kind, err)

	s.mu.Lock()
	if allowedTransition(job.Status, StatusError) {
		job.Status = StatusError
	}

	job.Duration = elapsed
	job.Message = message
	s.durSum += elapsed
	s.mu.Unlock()

	if s.opts.Notifier != nil {
		if notifyErr := s.opts.Notifier.FileFailed(job.ID, job.Path, message); notifyErr != nil {
			s.log.Warn("Failure notification for %s failed: %v", job.Path, notifyErr)
		}
	}

	s.reportProgress(job.ID, StatusError, 100, "error")

	s.results <- Result{
		Kind:      ResultFileError,
		JobID:     job.ID,
		Path:      job.Path,
		ErrorKind: kind,
		Message:   message,
	}
}

func (s *Scheduler) transition(jobID string, to Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return
	}

	if !allowedTransition(job.Status, to) {
		s.log.Warn("Refusing job %s transition from %s to %s", jobID, job.Status, to)

		return
	}

	job.Status = to

	if to == StatusProcessing {
		job.StartedAt = time.Now()
	}
}

func (s *Scheduler) reportProgress(jobID string, status Status, percent int, stage string) {
	if s.opts.Progress != nil {
		s.opts.Progress(jobID, status, percent, stage)
	}
}
