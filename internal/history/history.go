// Package history persists completed preflight results as an append-only
// JSONL file, one result per line. The store is safe for concurrent use by
// the batch workers.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/book-expert/logger"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
)

const (
	historyFileMode = 0o600
	historyDirMode  = 0o750
)

// Entry is one persisted line. It carries the full pipeline result plus the
// wall-clock time of persistence.
type Entry struct {
	SavedAt time.Time        `json:"saved_at"`
	Result  *pipeline.Result `json:"result"`
}

// Store appends results to a JSONL file.
type Store struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

// New creates the history directory if needed and returns a store writing to
// the given file path.
func New(path string, log *logger.Logger) (*Store, error) {
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, historyDirMode)
	if err != nil {
		return nil, fmt.Errorf(
			"could not create history directory %s: %w",
			dir,
			err,
		)
	}

	return &Store{path: path, log: log}, nil
}

// Path returns the JSONL file location.
func (s *Store) Path() string {
	return s.path
}

// Save appends one result as a single JSON line. Errors are wrapped so the
// caller can classify them as persistence failures.
func (s *Store) Save(result *pipeline.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{SavedAt: time.Now(), Result: result}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: encoding history entry: %w",
			document.ErrPersistenceFailed, err)
	}

	file, err := os.OpenFile(
		s.path,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		historyFileMode,
	)
	if err != nil {
		return fmt.Errorf("%w: opening history file: %w",
			document.ErrPersistenceFailed, err)
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			s.log.Warn("Closing history file failed: %v", closeErr)
		}
	}()

	_, err = file.Write(append(line, '\n'))
	if err != nil {
		return fmt.Errorf("%w: appending history entry: %w",
			document.ErrPersistenceFailed, err)
	}

	return nil
}

// Load reads all entries back in append order. Unparseable lines are skipped
// with a warning so one corrupt record never hides the rest.
func (s *Store) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not read history file: %w", err)
	}

	var entries []Entry

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}

		var entry Entry

		decodeErr := json.Unmarshal(line, &entry)
		if decodeErr != nil {
			s.log.Warn("Skipping corrupt history line: %v", decodeErr)

			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
