package jobs

import (
	"context"
	"fmt"

	"github.com/Atiwari330/hub-agent-sub001/internal/ingest"
	"github.com/Atiwari330/hub-agent-sub001/internal/realtime"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// Syncer pulls the CRM into the store
type Syncer interface {
	Sync(ctx context.Context, cfg ingest.Config) (*ingest.Result, error)
}

// Invalidator drops cached queue responses
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// SyncJob mirrors HubSpot into the store on a schedule
// ⭐ SSOT: the CRM sync schedule lives only in this job
type SyncJob struct {
	syncer    Syncer
	queues    Invalidator
	publisher realtime.Publisher
	schedule  string
	workers   int
	logger    *logger.Logger
}

// NewSyncJob creates a new sync job
func NewSyncJob(syncer Syncer, queues Invalidator, publisher realtime.Publisher, schedule string, workers int, log *logger.Logger) *SyncJob {
	return &SyncJob{
		syncer:    syncer,
		queues:    queues,
		publisher: publisher,
		schedule:  schedule,
		workers:   workers,
		logger:    log.WithField("job", "crm_sync"),
	}
}

// Name returns the job name
func (j *SyncJob) Name() string {
	return "crm_sync"
}

// Schedule returns the cron schedule (every 30 minutes by default)
func (j *SyncJob) Schedule() string {
	return j.schedule
}

// Run executes the sync. Per-deal engagement failures are logged, not fatal.
func (j *SyncJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled CRM sync")

	result, err := j.syncer.Sync(ctx, ingest.Config{Workers: j.workers})
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if result.Failed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"failed": result.Failed,
			"total":  result.Deals,
		}).Warn("Some deals failed to sync engagements")
	}

	j.queues.Invalidate(ctx)
	j.publisher.Publish(realtime.Event{Type: realtime.EventQueuesRefreshed, Source: j.Name()})

	j.logger.Info("Scheduled CRM sync completed successfully")
	return nil
}
