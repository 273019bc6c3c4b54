package notify

import (
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/pipeline"
)

// FileProcessedEventForTest exposes fileProcessedEvent for tests in the
// external test package.
func FileProcessedEventForTest(jobID string, result *pipeline.Result) FileProcessedEvent {
	return fileProcessedEvent(jobID, result)
}

// NewHeaderForTest exposes newHeader for tests in the external test package.
func NewHeaderForTest() EventHeader {
	return newHeader()
}
