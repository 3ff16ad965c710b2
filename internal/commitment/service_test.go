package commitment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/hygiene"
	"github.com/Atiwari330/hub-agent-sub001/internal/store"
	"github.com/Atiwari330/hub-agent-sub001/pkg/database"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

var business = time.FixedZone("UTC-5", -5*3600)

// Monday 2025-01-20, 10:00 business time
var now = time.Date(2025, 1, 20, 10, 0, 0, 0, business)

func newTestService(t *testing.T, at time.Time) (*Service, *store.Store) {
	t.Helper()
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := store.New(db, business)
	require.NoError(t, repo.Migrate(context.Background()))

	cal := calendar.NewAt(at, business)
	return NewService(repo, hygiene.NewChecker(cal, nil), cal, logger.Nop()), repo
}

func seedDeal(t *testing.T, repo *store.Store, id string, compliant bool) {
	t.Helper()
	amount := 1000.0
	closeDate := time.Date(2025, 3, 31, 0, 0, 0, 0, business)
	deal := contracts.DealSnapshot{
		ID: id, Name: "Deal " + id, OwnerID: "7", Pipeline: contracts.PipelineSales,
		StageName: "SQL", Amount: &amount, CloseDate: &closeDate,
		CreatedAt:  time.Date(2025, 1, 2, 9, 0, 0, 0, business),
		LeadSource: "Inbound", Products: "Platform", Substage: "Qualified",
	}
	if !compliant {
		deal.LeadSource = ""
	}
	require.NoError(t, repo.UpsertDeals(context.Background(), []contracts.DealSnapshot{deal}))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, now)
	seedDeal(t, repo, "1", false)

	t.Run("rejects malformed and past dates", func(t *testing.T) {
		_, err := svc.Create(ctx, "1", CreateRequest{CommitmentDate: "01/24/2025"})
		assert.ErrorIs(t, err, ErrInvalidDate)

		_, err = svc.Create(ctx, "1", CreateRequest{CommitmentDate: "2025-01-17"})
		assert.ErrorIs(t, err, ErrDateInPast)
	})

	t.Run("unknown deal", func(t *testing.T) {
		_, err := svc.Create(ctx, "missing", CreateRequest{CommitmentDate: "2025-01-24"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("today is allowed", func(t *testing.T) {
		c, err := svc.Create(ctx, "1", CreateRequest{CommitmentDate: "2025-01-20", CreatedBy: " rep@acme.io "})
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, contracts.CommitmentPending, c.Status)
		assert.Equal(t, "rep@acme.io", c.CreatedBy)

		latest, err := repo.LatestCommitment(ctx, "1")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, c.ID, latest.ID)
	})

	t.Run("pending commitment in force blocks another", func(t *testing.T) {
		_, err := svc.Create(ctx, "1", CreateRequest{CommitmentDate: "2025-01-24"})
		assert.ErrorIs(t, err, ErrPendingExists)
	})
}

func TestService_Create_ReplacesMissedCommitment(t *testing.T) {
	ctx := context.Background()
	earlier, repo := newTestService(t, time.Date(2025, 1, 13, 10, 0, 0, 0, business))
	seedDeal(t, repo, "1", false)

	missed, err := earlier.Create(ctx, "1", CreateRequest{CommitmentDate: "2025-01-15"})
	require.NoError(t, err)

	later := NewService(repo, hygiene.NewChecker(calendar.NewAt(now, business), nil), calendar.NewAt(now, business), logger.Nop())
	fresh, err := later.Create(ctx, "1", CreateRequest{CommitmentDate: "2025-01-22"})
	require.NoError(t, err)

	pending, err := repo.ListPendingCommitments(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, fresh.ID, pending[0].ID)
	assert.NotEqual(t, missed.ID, fresh.ID)
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, now)
	seedDeal(t, repo, "1", false)

	_, err := svc.Clear(ctx, "1")
	assert.ErrorIs(t, err, ErrNoPendingCommitment)

	_, err = svc.Create(ctx, "1", CreateRequest{CommitmentDate: "2025-01-22"})
	require.NoError(t, err)
	seedDeal(t, repo, "1", true)

	outcome, err := svc.Clear(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, ClearCompleted, outcome)

	latest, err := repo.LatestCommitment(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, contracts.CommitmentCompleted, latest.Status)
	assert.False(t, latest.Withdrawn)
	require.NotNil(t, latest.ResolvedAt)

	_, err = svc.Clear(ctx, "1")
	assert.ErrorIs(t, err, ErrNoPendingCommitment)
}

func TestService_Clear_IncompleteDealWithdraws(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, now)
	checker := hygiene.NewChecker(calendar.NewAt(now, business), nil)

	amount := 1000.0
	closeDate := time.Date(2025, 3, 31, 0, 0, 0, 0, business)
	fresh := contracts.DealSnapshot{
		ID: "new", Name: "Deal new", OwnerID: "7", Pipeline: contracts.PipelineSales,
		StageName: "SQL", Amount: &amount, CloseDate: &closeDate,
		CreatedAt: time.Date(2025, 1, 17, 9, 0, 0, 0, business),
		Products:  "Platform", Substage: "Qualified",
	}
	require.NoError(t, repo.UpsertDeals(ctx, []contracts.DealSnapshot{fresh}))
	seedDeal(t, repo, "old", false)

	for _, id := range []string{"new", "old"} {
		_, err := svc.Create(ctx, id, CreateRequest{CommitmentDate: "2025-01-22"})
		require.NoError(t, err)

		outcome, err := svc.Clear(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, ClearWithdrawn, outcome)

		latest, err := repo.LatestCommitment(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, latest, "withdrawn commitment must not classify %s", id)

		_, err = svc.Clear(ctx, id)
		assert.ErrorIs(t, err, ErrNoPendingCommitment)
	}

	t.Run("new deal is back in its grace period", func(t *testing.T) {
		deal, err := repo.GetDeal(ctx, "new")
		require.NoError(t, err)
		result := checker.DetermineStatus(*deal, nil)
		assert.Equal(t, contracts.HygieneNeedsCommitment, result.Status)
		assert.NotContains(t, result.Reason, "completed")
	})

	t.Run("old deal escalates for having no commitment", func(t *testing.T) {
		deal, err := repo.GetDeal(ctx, "old")
		require.NoError(t, err)
		result := checker.DetermineStatus(*deal, nil)
		assert.Equal(t, contracts.HygieneEscalated, result.Status)
		assert.Contains(t, result.Reason, "no commitment")
	})

	t.Run("an earlier escalation still counts", func(t *testing.T) {
		_, err := repo.DB().SQL.ExecContext(ctx, `UPDATE hygiene_commitments SET status = 'escalated', withdrawn = 0
			WHERE deal_id = 'old'`)
		require.NoError(t, err)
		_, err = svc.Create(ctx, "old", CreateRequest{CommitmentDate: "2025-01-23"})
		require.NoError(t, err)
		_, err = svc.Clear(ctx, "old")
		require.NoError(t, err)

		latest, err := repo.LatestCommitment(ctx, "old")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, contracts.CommitmentEscalated, latest.Status)
	})
}

func TestService_Reconcile(t *testing.T) {
	ctx := context.Background()
	earlier, repo := newTestService(t, time.Date(2025, 1, 13, 10, 0, 0, 0, business))
	seedDeal(t, repo, "fixed", true)
	seedDeal(t, repo, "missed", false)
	seedDeal(t, repo, "waiting", false)

	for id, date := range map[string]string{"fixed": "2025-01-15", "missed": "2025-01-17", "waiting": "2025-01-24"} {
		_, err := earlier.Create(ctx, id, CreateRequest{CommitmentDate: date})
		require.NoError(t, err)
	}
	_, err := repo.DB().SQL.ExecContext(ctx, `INSERT INTO hygiene_commitments
		(id, deal_id, commitment_date, status, created_by, created_at, resolved_at)
		VALUES ('orphan', 'gone', '2025-01-10', 'pending', '', '2025-01-06T00:00:00.000000000Z', NULL)`)
	require.NoError(t, err)

	cal := calendar.NewAt(now, business)
	svc := NewService(repo, hygiene.NewChecker(cal, nil), cal, logger.Nop())

	result, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Checked: 4, Completed: 1, Escalated: 1, Skipped: 1}, result)

	status := func(id string) contracts.CommitmentStatus {
		c, err := repo.LatestCommitment(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, c)
		return c.Status
	}
	assert.Equal(t, contracts.CommitmentCompleted, status("fixed"))
	assert.Equal(t, contracts.CommitmentEscalated, status("missed"))
	assert.Equal(t, contracts.CommitmentPending, status("waiting"))
}
