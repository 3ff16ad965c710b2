package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atiwari330/hub-agent-sub001/internal/commitment"
	"github.com/Atiwari330/hub-agent-sub001/internal/ingest"
	"github.com/Atiwari330/hub-agent-sub001/internal/realtime"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

type fakeSyncer struct {
	cfg    ingest.Config
	result *ingest.Result
	err    error
}

func (f *fakeSyncer) Sync(ctx context.Context, cfg ingest.Config) (*ingest.Result, error) {
	f.cfg = cfg
	return f.result, f.err
}

type fakeReconciler struct {
	result commitment.ReconcileResult
	err    error
}

func (f *fakeReconciler) Reconcile(ctx context.Context) (commitment.ReconcileResult, error) {
	return f.result, f.err
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(ctx context.Context) { c.n++ }

type recordingPublisher struct{ events []realtime.Event }

func (p *recordingPublisher) Publish(e realtime.Event) { p.events = append(p.events, e) }

func TestSyncJob(t *testing.T) {
	t.Run("invalidates and publishes", func(t *testing.T) {
		syncer := &fakeSyncer{result: &ingest.Result{Deals: 3, Succeeded: 2, Failed: 1}}
		inv := &countingInvalidator{}
		pub := &recordingPublisher{}

		job := NewSyncJob(syncer, inv, pub, "0 */30 * * * *", 8, logger.Nop())
		assert.Equal(t, "crm_sync", job.Name())
		assert.Equal(t, "0 */30 * * * *", job.Schedule())

		require.NoError(t, job.Run(testContext(t)))
		assert.Equal(t, 8, syncer.cfg.Workers)
		assert.Equal(t, 1, inv.n)
		require.Len(t, pub.events, 1)
		assert.Equal(t, realtime.EventQueuesRefreshed, pub.events[0].Type)
		assert.Equal(t, "crm_sync", pub.events[0].Source)
	})

	t.Run("sync failure leaves caches alone", func(t *testing.T) {
		inv := &countingInvalidator{}
		pub := &recordingPublisher{}
		job := NewSyncJob(&fakeSyncer{err: errors.New("hubspot down")}, inv, pub, "@hourly", 4, logger.Nop())

		err := job.Run(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hubspot down")
		assert.Zero(t, inv.n)
		assert.Empty(t, pub.events)
	})
}

func TestReconcileJob(t *testing.T) {
	t.Run("publishes when commitments moved", func(t *testing.T) {
		inv := &countingInvalidator{}
		pub := &recordingPublisher{}
		rec := &fakeReconciler{result: commitment.ReconcileResult{Checked: 4, Completed: 1, Escalated: 1}}

		require.NoError(t, NewReconcileJob(rec, inv, pub, "@hourly", logger.Nop()).Run(testContext(t)))
		assert.Equal(t, 1, inv.n)
		assert.Len(t, pub.events, 1)
	})

	t.Run("quiet when nothing changed", func(t *testing.T) {
		inv := &countingInvalidator{}
		pub := &recordingPublisher{}
		rec := &fakeReconciler{result: commitment.ReconcileResult{Checked: 4, Skipped: 1}}

		require.NoError(t, NewReconcileJob(rec, inv, pub, "@hourly", logger.Nop()).Run(testContext(t)))
		assert.Zero(t, inv.n)
		assert.Empty(t, pub.events)
	})

	t.Run("error is wrapped", func(t *testing.T) {
		rec := &fakeReconciler{err: errors.New("db locked")}
		err := NewReconcileJob(rec, &countingInvalidator{}, &recordingPublisher{}, "@hourly", logger.Nop()).Run(testContext(t))
		assert.ErrorContains(t, err, "reconcile commitments: db locked")
	})
}

func TestDayRolloverJob(t *testing.T) {
	inv := &countingInvalidator{}
	pub := &recordingPublisher{}
	job := NewDayRolloverJob(inv, pub, logger.Nop())

	assert.Equal(t, "1 0 0 * * *", job.Schedule())
	require.NoError(t, job.Run(testContext(t)))
	assert.Equal(t, 1, inv.n)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "day_rollover", pub.events[0].Source)
}

// testContext stands in for testing.T.Context (Go 1.24+): a context that is
// canceled when the test finishes
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
