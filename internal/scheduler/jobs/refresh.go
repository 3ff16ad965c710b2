package jobs

import (
	"context"

	"github.com/Atiwari330/hub-agent-sub001/internal/realtime"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// DayRolloverJob refreshes queues when the business day changes.
// Business-day ages and overdue checks move at midnight even without a sync.
type DayRolloverJob struct {
	queues    Invalidator
	publisher realtime.Publisher
	logger    *logger.Logger
}

// NewDayRolloverJob creates a new day rollover job
func NewDayRolloverJob(queues Invalidator, publisher realtime.Publisher, log *logger.Logger) *DayRolloverJob {
	return &DayRolloverJob{
		queues:    queues,
		publisher: publisher,
		logger:    log,
	}
}

// Name returns the job name
func (j *DayRolloverJob) Name() string {
	return "day_rollover"
}

// Schedule returns the cron schedule (one second past midnight, business time)
func (j *DayRolloverJob) Schedule() string {
	return "1 0 0 * * *"
}

// Run drops cached queues and tells clients to refetch
func (j *DayRolloverJob) Run(ctx context.Context) error {
	j.logger.Debug("Business day rolled over")

	j.queues.Invalidate(ctx)
	j.publisher.Publish(realtime.Event{Type: realtime.EventQueuesRefreshed, Source: j.Name()})
	return nil
}
