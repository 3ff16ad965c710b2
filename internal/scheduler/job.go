package scheduler

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrJobNotFound is returned for a job name that was never registered
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists is returned when a job name is registered twice
	ErrJobExists = errors.New("job already exists")
)

// Job is a unit of background work: CRM sync, commitment reconciliation, day rollover
// ⭐ SSOT: the scheduled job interface is defined only here
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule is a cron expression with a seconds field, or a descriptor
	// such as "@hourly" or "@every 15m"
	Schedule() string
}

// JobResult is one execution of a job, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

const maxHistory = 100

// JobHistory keeps the most recent maxHistory results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// Record appends a result, dropping the oldest once the cap is reached
func (h *JobHistory) Record(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - maxHistory; over > 0 {
		h.Results = h.Results[over:]
	}
}

// Latest returns up to n of the newest results
func (h *JobHistory) Latest(n int) []JobResult {
	n = min(n, len(h.Results))
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// Last returns the newest result, or nil when the job never ran
func (h *JobHistory) Last() *JobResult {
	if len(h.Results) == 0 {
		return nil
	}
	r := h.Results[len(h.Results)-1]
	return &r
}

// Failures counts unsuccessful runs
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is successful runs over all runs, 0 when empty
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}
