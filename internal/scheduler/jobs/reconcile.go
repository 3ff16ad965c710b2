package jobs

import (
	"context"
	"fmt"

	"github.com/Atiwari330/hub-agent-sub001/internal/commitment"
	"github.com/Atiwari330/hub-agent-sub001/internal/realtime"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// Reconciler resolves pending hygiene commitments
type Reconciler interface {
	Reconcile(ctx context.Context) (commitment.ReconcileResult, error)
}

// ReconcileJob completes or escalates pending commitments
// ⭐ SSOT: the commitment reconciliation schedule lives only in this job
type ReconcileJob struct {
	reconciler Reconciler
	queues     Invalidator
	publisher  realtime.Publisher
	schedule   string
	logger     *logger.Logger
}

// NewReconcileJob creates a new reconcile job
func NewReconcileJob(reconciler Reconciler, queues Invalidator, publisher realtime.Publisher, schedule string, log *logger.Logger) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		queues:     queues,
		publisher:  publisher,
		schedule:   schedule,
		logger:     log.WithField("job", "commitment_reconcile"),
	}
}

// Name returns the job name
func (j *ReconcileJob) Name() string {
	return "commitment_reconcile"
}

// Schedule returns the cron schedule (hourly by default)
func (j *ReconcileJob) Schedule() string {
	return j.schedule
}

// Run executes the reconciliation. Clients are notified only when something changed.
func (j *ReconcileJob) Run(ctx context.Context) error {
	result, err := j.reconciler.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile commitments: %w", err)
	}

	if result.Completed+result.Escalated == 0 {
		return nil
	}

	j.queues.Invalidate(ctx)
	j.publisher.Publish(realtime.Event{Type: realtime.EventQueuesRefreshed, Source: j.Name()})
	return nil
}
