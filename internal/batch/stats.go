package batch

import "time"

// Statistics is a live snapshot of the batch state, safe to take from any
// goroutine while workers run.
type Statistics struct {
	Total              int           `json:"total"`
	Waiting            int           `json:"waiting"`
	Processing         int           `json:"processing"`
	Completed          int           `json:"completed"`
	Errors             int           `json:"errors"`
	AutoFixed          int           `json:"auto_fixed"`
	ProgressPercent    float64       `json:"progress_percent"`
	AverageTime        time.Duration `json:"average_time"`
	EstimatedRemaining time.Duration `json:"estimated_remaining"`
}

// Statistics returns the current batch counters. The estimate extrapolates
// the average per-file time over the jobs not yet finished; it is zero until
// the first job finishes.
func (s *Scheduler) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Statistics{Total: len(s.jobs)}

	for _, job := range s.jobs {
		switch job.Status {
		case StatusWaiting:
			stats.Waiting++
		case StatusProcessing:
			stats.Processing++
		case StatusComplete:
			stats.Completed++
		case StatusError:
			stats.Errors++
		}

		if job.AutoFixed {
			stats.AutoFixed++
		}
	}

	done := stats.Completed + stats.Errors
	if stats.Total > 0 {
		stats.ProgressPercent = float64(done) / float64(stats.Total) * 100.0
	}

	if done > 0 {
		stats.AverageTime = s.durSum / time.Duration(done)
		stats.EstimatedRemaining = stats.AverageTime *
			time.Duration(stats.Waiting+stats.Processing)
	}

	return stats
}

// summary builds the batch_complete record.
func (s *Scheduler) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		Total:     len(s.jobs),
		TotalTime: time.Since(s.batchStart),
	}

	for _, job := range s.jobs {
		switch job.Status {
		case StatusComplete:
			summary.Processed++
		case StatusError:
			summary.Errors++
		}

		if job.AutoFixed {
			summary.AutoFixed++
		}
	}

	if done := summary.Processed + summary.Errors; done > 0 {
		summary.AverageTime = s.durSum / time.Duration(done)
	}

	return summary
}
