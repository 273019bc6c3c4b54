// Package notify publishes preflight lifecycle events to NATS JetStream. It
// implements the batch.Notifier interface so the scheduler can announce each
// processed file and the batch summary to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/batch"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
)

// Config holds the NATS connection and stream settings.
type Config struct {
	URL            string `toml:"url"`
	StreamName     string `toml:"stream_name"`
	SubjectPrefix  string `toml:"subject_prefix"`
	PublishTimeout string `toml:"publish_timeout"`
}

const defaultPublishTimeout = 5 * time.Second

// Subject suffixes appended to the configured prefix.
const (
	subjectFileProcessed = "file.processed"
	subjectFileFailed    = "file.failed"
	subjectBatchComplete = "batch.complete"
)

// EventHeader identifies one published event.
type EventHeader struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// FileProcessedEvent announces a successfully checked file.
type FileProcessedEvent struct {
	Header        EventHeader `json:"header"`
	JobID         string      `json:"job_id"`
	Path          string      `json:"path"`
	Profile       string      `json:"profile"`
	OverallStatus string      `json:"overall_status"`
	IssueCount    int         `json:"issue_count"`
	AutoFixed     bool        `json:"auto_fixed"`
}

// FileFailedEvent announces a file that could not be checked.
type FileFailedEvent struct {
	Header  EventHeader `json:"header"`
	JobID   string      `json:"job_id"`
	Path    string      `json:"path"`
	Message string      `json:"message"`
}

// BatchCompleteEvent announces the end of a batch run.
type BatchCompleteEvent struct {
	Header  EventHeader   `json:"header"`
	Summary batch.Summary `json:"summary"`
}

// Publisher publishes events over a JetStream connection.
type Publisher struct {
	conn      *nats.Conn
	jetStream jetstream.JetStream
	cfg       Config
	timeout   time.Duration
	log       *logger.Logger
}

// Connect dials NATS, creates the event stream if it does not exist yet and
// returns a ready Publisher.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Publisher, error) {
	conn, connErr := nats.Connect(cfg.URL)
	if connErr != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", connErr)
	}

	jetStream, jsErr := jetstream.New(conn)
	if jsErr != nil {
		conn.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", jsErr)
	}

	streamCfg := newStreamConfig(cfg.StreamName, cfg.SubjectPrefix+".>")

	_, streamErr := jetStream.CreateStream(ctx, *streamCfg)
	if streamErr != nil && !errors.Is(streamErr, jetstream.ErrStreamNameAlreadyInUse) {
		conn.Close()

		return nil, fmt.Errorf("failed to create event stream: %w", streamErr)
	}

	timeout := defaultPublishTimeout

	if cfg.PublishTimeout != "" {
		parsed, parseErr := time.ParseDuration(cfg.PublishTimeout)
		if parseErr != nil {
			log.Warn("Invalid publish timeout %q, using default: %v",
				cfg.PublishTimeout, parseErr)
		} else {
			timeout = parsed
		}
	}

	log.Info("Connected to NATS server at %s", conn.ConnectedUrl())

	return &Publisher{
		conn:      conn,
		jetStream: jetStream,
		cfg:       cfg,
		timeout:   timeout,
		log:       log,
	}, nil
}

func newStreamConfig(name, subject string) *jetstream.StreamConfig {
	return &jetstream.StreamConfig{
		Name:                   name,
		Description:            "",
		Subjects:               []string{subject},
		Retention:              jetstream.LimitsPolicy,
		MaxConsumers:           -1,
		MaxMsgs:                -1,
		MaxBytes:               -1,
		Discard:                jetstream.DiscardOld,
		DiscardNewPerSubject:   false,
		MaxAge:                 0,
		MaxMsgsPerSubject:      -1,
		MaxMsgSize:             -1,
		Storage:                jetstream.FileStorage,
		Replicas:               1,
		NoAck:                  false,
		Duplicates:             0,
		Placement:              nil,
		Mirror:                 nil,
		Sources:                nil,
		Sealed:                 false,
		DenyDelete:             false,
		DenyPurge:              false,
		AllowRollup:            false,
		Compression:            jetstream.NoCompression,
		FirstSeq:               0,
		SubjectTransform:       nil,
		RePublish:              nil,
		AllowDirect:            false,
		MirrorDirect:           false,
		ConsumerLimits:         jetstream.StreamConsumerLimits{},
		Metadata:               nil,
		Template:               "",
		AllowMsgTTL:            false,
		SubjectDeleteMarkerTTL: 0,
	}
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	p.conn.Close()
}

// FileProcessed publishes a file.processed event for a completed job.
func (p *Publisher) FileProcessed(jobID string, result *pipeline.Result) error {
	return p.publish(subjectFileProcessed, fileProcessedEvent(jobID, result))
}

func fileProcessedEvent(jobID string, result *pipeline.Result) FileProcessedEvent {
	event := FileProcessedEvent{
		Header:        newHeader(),
		JobID:         jobID,
		Path:          result.Path,
		Profile:       result.Profile,
		OverallStatus: "",
		IssueCount:    0,
		AutoFixed:     result.AutoFixApplied,
	}

	if result.Preflight != nil {
		event.OverallStatus = result.Preflight.OverallStatus
	}

	if result.Record != nil {
		event.IssueCount = len(result.Record.Issues)
	}

	return event
}

// FileFailed publishes a file.failed event for a job that errored.
func (p *Publisher) FileFailed(jobID, path, message string) error {
	event := FileFailedEvent{
		Header:  newHeader(),
		JobID:   jobID,
		Path:    path,
		Message: message,
	}

	return p.publish(subjectFileFailed, event)
}

// BatchComplete publishes the batch.complete summary event.
func (p *Publisher) BatchComplete(summary batch.Summary) error {
	event := BatchCompleteEvent{
		Header:  newHeader(),
		Summary: summary,
	}

	return p.publish(subjectBatchComplete, event)
}

func (p *Publisher) publish(suffix string, event any) error {
	payload, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal %s event: %w", suffix, marshalErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	subject := p.cfg.SubjectPrefix + "." + suffix

	_, pubErr := p.jetStream.Publish(ctx, subject, payload)
	if pubErr != nil {
		return fmt.Errorf("failed to publish %s event: %w", suffix, pubErr)
	}

	return nil
}

func newHeader() EventHeader {
	return EventHeader{
		EventID:   uuid.New().String(),
		Timestamp: time.Now(),
	}
}
