package notify_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/batch"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/notify"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/preflight"
)

func TestFileProcessedEventCarriesResultSummary(t *testing.T) {
	t.Parallel()

	result := &pipeline.Result{
		Path:    "catalog.pdf",
		Profile: "offset",
		Record: &analysis.Record{
			Issues: []analysis.Finding{
				{Type: analysis.FindingRGBOnly},
				{Type: analysis.FindingInsufficientBleed},
			},
		},
		Preflight:      &preflight.Verdict{OverallStatus: preflight.StatusWarning},
		AutoFixApplied: true,
	}

	event := notify.FileProcessedEventForTest("job-1", result)

	assert.Equal(t, "job-1", event.JobID)
	assert.Equal(t, "catalog.pdf", event.Path)
	assert.Equal(t, "offset", event.Profile)
	assert.Equal(t, preflight.StatusWarning, event.OverallStatus)
	assert.Equal(t, 2, event.IssueCount)
	assert.True(t, event.AutoFixed)

	_, parseErr := uuid.Parse(event.Header.EventID)
	require.NoError(t, parseErr)
	assert.WithinDuration(t, time.Now(), event.Header.Timestamp, time.Minute)
}

func TestFileProcessedEventToleratesSparseResult(t *testing.T) {
	t.Parallel()

	event := notify.FileProcessedEventForTest(
		"job-2",
		&pipeline.Result{Path: "bare.pdf"},
	)

	assert.Empty(t, event.OverallStatus)
	assert.Zero(t, event.IssueCount)
	assert.False(t, event.AutoFixed)
}

func TestBatchCompleteEventPayloadShape(t *testing.T) {
	t.Parallel()

	event := notify.BatchCompleteEvent{
		Header: notify.NewHeaderForTest(),
		Summary: batch.Summary{
			Total:       3,
			Processed:   2,
			Errors:      1,
			AutoFixed:   0,
			TotalTime:   time.Second,
			AverageTime: 333 * time.Millisecond,
		},
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Contains(t, decoded, "header")
	require.Contains(t, decoded, "summary")

	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 3.0, summary["total"], 0.001)
	assert.InDelta(t, 1.0, summary["errors"], 0.001)
}

func TestEventHeadersAreUnique(t *testing.T) {
	t.Parallel()

	first := notify.NewHeaderForTest()
	second := notify.NewHeaderForTest()

	assert.NotEqual(t, first.EventID, second.EventID)
}
