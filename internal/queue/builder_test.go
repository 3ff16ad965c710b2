package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/fiscal"
)

// Monday 2025-02-03, noon UTC
var now = time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
	return &t
}

func civil(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(v float64) *float64 { return &v }

// baseDeal is compliant, active, with a future next step
func baseDeal(id string) contracts.DealSnapshot {
	return contracts.DealSnapshot{
		ID:             id,
		Name:           "Deal " + id,
		OwnerID:        "owner-1",
		Pipeline:       contracts.PipelineSales,
		StageName:      "Discovery",
		Amount:         amount(1000),
		CloseDate:      civil(2025, 3, 31),
		CreatedAt:      *day(2025, 1, 27),
		LastActivityAt: day(2025, 2, 3),
		NextStep:       contracts.NextStep{Text: "Call", Status: contracts.NextStepDateFound, DueDate: civil(2025, 2, 10)},
		LeadSource:     "Inbound",
		Products:       "Platform",
		Substage:       "Qualified",
		DealType:       "New",
	}
}

func newBuilder() *Builder {
	return NewBuilder(calendar.NewAt(now, time.UTC), nil, 3)
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func TestFilter_Match(t *testing.T) {
	q := fiscal.NewCalculator(calendar.NewAt(now, time.UTC)).CurrentQuarter()
	d := baseDeal("1")

	assert.True(t, Filter{}.Match(d))
	assert.True(t, Filter{Pipeline: contracts.PipelineSales, OwnerID: "owner-1"}.Match(d))
	assert.False(t, Filter{Pipeline: contracts.PipelineUpsell}.Match(d))
	assert.False(t, Filter{OwnerID: "owner-2"}.Match(d))
	assert.True(t, Filter{ClosingIn: &q}.Match(d))

	d.CloseDate = civil(2025, 4, 1)
	assert.False(t, Filter{ClosingIn: &q}.Match(d))
	d.CloseDate = nil
	assert.False(t, Filter{ClosingIn: &q}.Match(d))
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	deals := make([]contracts.DealSnapshot, 50)
	for i := range deals {
		deals[i] = contracts.DealSnapshot{ID: string(rune('A' + i))}
	}
	got := classifyAll(deals, 8, func(d contracts.DealSnapshot) (string, bool) {
		return d.ID, d.ID[0]%2 == 0
	})

	want := make([]string, 0)
	for _, d := range deals {
		if d.ID[0]%2 == 0 {
			want = append(want, d.ID)
		}
	}
	assert.Equal(t, want, got)
	assert.Empty(t, classifyAll(nil, 4, func(d contracts.DealSnapshot) (int, bool) { return 0, true }))
}

func TestBuilder_Hygiene(t *testing.T) {
	compliant := baseDeal("ok")

	escalated := baseDeal("esc")
	escalated.CreatedAt = *day(2025, 1, 2)
	escalated.LeadSource = ""

	olderEscalated := baseDeal("esc-old")
	olderEscalated.CreatedAt = *day(2024, 12, 2)
	olderEscalated.Amount = nil

	fresh := baseDeal("new")
	fresh.Products = ""

	pending := baseDeal("pending")
	pending.CreatedAt = *day(2025, 1, 2)
	pending.Substage = ""

	closed := baseDeal("closed")
	closed.StageName = "Closed Lost"
	closed.Amount = nil

	commitments := map[string]contracts.HygieneCommitment{
		"pending": {ID: "c1", DealID: "pending", CommitmentDate: *civil(2025, 2, 5), Status: contracts.CommitmentPending},
	}

	q := newBuilder().Hygiene([]contracts.DealSnapshot{compliant, fresh, pending, escalated, olderEscalated, closed}, commitments, Filter{})

	assert.Equal(t, []string{"esc-old", "esc", "new", "pending"}, ids(q.Items, func(i HygieneItem) string { return i.Deal.ID }))
	assert.Equal(t, HygieneSummary{Total: 4, Escalated: 2, NeedsCommitment: 1, Pending: 1}, q.Summary)
}

func TestBuilder_Stalled(t *testing.T) {
	b := newBuilder()

	// business days before 2025-02-03: 01-22 = 8, 01-17 = 11, 01-10 = 16
	watch := baseDeal("watch")
	watch.CreatedAt = *day(2024, 12, 1)
	watch.LastActivityAt = day(2025, 1, 22)

	watchWithFactors := watch
	watchWithFactors.ID = "watch-factors"
	watchWithFactors.NextStep = contracts.NextStep{}

	critical := watch
	critical.ID = "critical"
	critical.LastActivityAt = day(2025, 1, 10)

	warning := watch
	warning.ID = "warning"
	warning.LastActivityAt = day(2025, 1, 17)

	active := baseDeal("active")

	q, err := b.Stalled([]contracts.DealSnapshot{watch, active, warning, watchWithFactors, critical}, "", Filter{})
	require.NoError(t, err)
	assert.Equal(t, "default", q.Preset)
	assert.Equal(t, []string{"critical", "warning", "watch-factors", "watch"}, ids(q.Items, func(i StalledItem) string { return i.Deal.ID }))
	assert.Equal(t, StalledSummary{Total: 4, Critical: 1, Warning: 1, Watch: 2}, q.Summary)

	relaxed, err := b.Stalled([]contracts.DealSnapshot{watch, warning, critical}, "relaxed", Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"critical", "warning"}, ids(relaxed.Items, func(i StalledItem) string { return i.Deal.ID }))

	_, err = b.Stalled(nil, "nope", Filter{})
	assert.Error(t, err)
}

func TestBuilder_AtRisk(t *testing.T) {
	b := newBuilder()

	healthy := baseDeal("healthy")

	oneFactor := baseDeal("one")
	oneFactor.NextStep = contracts.NextStep{}

	twoFactors := baseDeal("two")
	twoFactors.NextStep = contracts.NextStep{}
	twoFactors.CloseDate = civil(2025, 1, 31)

	threeFactors := baseDeal("three")
	threeFactors.NextStep = contracts.NextStep{}
	threeFactors.CloseDate = civil(2025, 1, 31)
	threeFactors.CreatedAt = *day(2024, 11, 1)

	q := b.AtRisk([]contracts.DealSnapshot{healthy, oneFactor, twoFactors, threeFactors}, Filter{})
	assert.Equal(t, []string{"three", "two", "one"}, ids(q.Items, func(i RiskItem) string { return i.Deal.ID }))
	assert.Equal(t, RiskSummary{Total: 3, Stale: 2, AtRisk: 1}, q.Summary)

	quarter := fiscal.NewCalculator(b.Calendar()).CurrentQuarter()
	next := oneFactor
	next.ID = "next-quarter"
	next.CloseDate = civil(2025, 5, 15)
	inQuarter := b.AtRisk([]contracts.DealSnapshot{oneFactor, next}, Filter{ClosingIn: &quarter})
	assert.Equal(t, []string{"one"}, ids(inQuarter.Items, func(i RiskItem) string { return i.Deal.ID }))
}

func TestBuilder_NextStep(t *testing.T) {
	b := newBuilder()

	missing := baseDeal("missing")
	missing.NextStep = contracts.NextStep{Text: "  "}

	overdue3 := baseDeal("overdue-3")
	overdue3.NextStep = contracts.NextStep{Text: "Send MSA", Status: contracts.NextStepDateFound, DueDate: civil(2025, 1, 31)}

	overdue10 := baseDeal("overdue-10")
	overdue10.NextStep = contracts.NextStep{Text: "Send MSA", Status: contracts.NextStepDateInferred, DueDate: civil(2025, 1, 24)}

	unclear := baseDeal("unclear")
	unclear.NextStep = contracts.NextStep{Text: "Soon", Status: contracts.NextStepDateUnclear, DueDate: civil(2025, 1, 1)}

	q := b.NextStep([]contracts.DealSnapshot{overdue3, unclear, missing, overdue10, baseDeal("ok")}, Filter{})
	assert.Equal(t, []string{"missing", "overdue-10", "overdue-3"}, ids(q.Items, func(i NextStepItem) string { return i.Deal.ID }))
	assert.Equal(t, NextStepSummary{Total: 3, Missing: 1, Overdue: 2}, q.Summary)
	assert.Equal(t, 10, q.Items[1].Compliance.DaysOverdue)
}

func TestBuilder_Week1(t *testing.T) {
	b := newBuilder()

	// created Monday 2025-01-27: window closes end of Monday 2025-02-03
	onTrack := baseDeal("on-track")
	behind := baseDeal("behind")
	critical := baseDeal("critical")
	old := baseDeal("old")
	old.CreatedAt = *day(2025, 1, 6)

	calls := func(n int) contracts.Engagements {
		var eng contracts.Engagements
		for i := 0; i < n; i++ {
			eng.Calls = append(eng.Calls, contracts.Call{ID: string(rune('a' + i)), Timestamp: *day(2025, 1, 28)})
		}
		return eng
	}

	q := b.Week1([]contracts.DealSnapshot{onTrack, critical, behind, old}, map[string]contracts.Engagements{
		"on-track": calls(6),
		"behind":   calls(4),
	}, Filter{})

	assert.Equal(t, []string{"critical", "behind", "on-track"}, ids(q.Items, func(i Week1Item) string { return i.Deal.ID }))
	assert.Equal(t, Week1Summary{Total: 3, Critical: 1, Behind: 1, OnTrack: 1}, q.Summary)
	assert.True(t, q.Items[0].Analysis.WindowOpen)
}

func TestBuilder_Classify(t *testing.T) {
	b := newBuilder()
	deal := baseDeal("1")

	c := b.Classify(deal, nil, nil)
	assert.Equal(t, contracts.RiskHealthy, c.Risk.Level)
	assert.Equal(t, contracts.HygieneCompliant, c.Hygiene.Status)
	assert.False(t, c.Staleness.IsStalled)
	assert.Equal(t, contracts.NextStepCompliant, c.NextStep.Status)
	assert.Nil(t, c.Week1)

	c = b.Classify(deal, nil, &contracts.Engagements{})
	require.NotNil(t, c.Week1)
	assert.Equal(t, 6, c.Week1.Gap)
}
