package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

var testNow = time.Date(2025, 1, 20, 15, 0, 0, 0, time.UTC)

func testEngine(now time.Time) *Engine {
	return NewEngine(calendar.NewAt(now, time.UTC), nil)
}

func ptr(t time.Time) *time.Time { return &t }

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func kinds(factors []contracts.RiskFactor) []contracts.RiskFactorKind {
	out := make([]contracts.RiskFactorKind, 0, len(factors))
	for _, f := range factors {
		out = append(out, f.Kind)
	}
	return out
}

func TestCategorizeStage(t *testing.T) {
	tests := []struct {
		stage string
		want  contracts.StageCategory
	}{
		{"", contracts.StageEarly},
		{"SQL", contracts.StageEarly},
		{"Discovery", contracts.StageEarly},
		{"Demo Scheduled", contracts.StageMid},
		{"DEMO COMPLETED", contracts.StageMid},
		{"Proposal Sent", contracts.StageLate},
		{"Contract Review", contracts.StageLate},
		{"Legal", contracts.StageLate},
		{"Procurement", contracts.StageLate},
		{"Closed Won", contracts.StageClosed},
		{"Disqualified", contracts.StageClosed},
		{"Demo Lost", contracts.StageClosed},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeStage(tt.stage))
		})
	}
}

func TestStageEntryDate(t *testing.T) {
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	sql := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	scheduled := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	completed := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)

	entries := contracts.StageEntries{
		SQLEnteredAt:           &sql,
		DemoScheduledEnteredAt: &scheduled,
		DemoCompletedEnteredAt: &completed,
	}

	tests := []struct {
		name    string
		stage   string
		entries contracts.StageEntries
		want    time.Time
	}{
		{"sql tracked", "SQL", entries, sql},
		{"demo scheduled tracked", "Demo Scheduled", entries, scheduled},
		{"demo completed tracked", "Demo Completed", entries, completed},
		{"sql untracked falls back", "SQL", contracts.StageEntries{}, created},
		{"untracked stage falls back", "Proposal", entries, created},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := contracts.DealSnapshot{StageName: tt.stage, CreatedAt: created, StageEntries: tt.entries}
			assert.Equal(t, tt.want, StageEntryDate(deal))
		})
	}
}

func TestEngine_Assess_ClosedShortCircuits(t *testing.T) {
	deal := contracts.DealSnapshot{
		ID:        "1",
		StageName: "Closed Lost",
		CreatedAt: testNow.AddDate(-1, 0, 0),
		CloseDate: daysAgo(90),
		NextStep:  contracts.NextStep{Status: contracts.NextStepDateFound, DueDate: daysAgo(30)},
	}

	got := testEngine(testNow).Assess(deal)

	assert.Equal(t, contracts.RiskHealthy, got.Level)
	assert.Equal(t, contracts.StageClosed, got.Category)
	assert.Empty(t, got.Factors)
}

func TestEngine_Assess_SQLStageScenario(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deal := contracts.DealSnapshot{
		ID:        "scenario",
		StageName: "SQL",
		CreatedAt: created,
		NextStep:  contracts.NextStep{Text: "Book demo"},
	}

	t.Run("day 19 is below at-risk", func(t *testing.T) {
		got := testEngine(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)).Assess(deal)

		assert.Equal(t, contracts.StageEarly, got.Category)
		assert.Equal(t, 19, got.DaysInStage)
		assert.Nil(t, got.DaysSinceActivity)
		assert.NotContains(t, kinds(got.Factors), contracts.FactorStageAge)
		// no activity at all and older than the grace period
		assert.Equal(t, []contracts.RiskFactorKind{contracts.FactorActivityDrought}, kinds(got.Factors))
		assert.Equal(t, contracts.RiskAtRisk, got.Level)
	})

	t.Run("day 24 still below at-risk", func(t *testing.T) {
		got := testEngine(time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC)).Assess(deal)
		assert.Equal(t, 24, got.DaysInStage)
		assert.NotContains(t, kinds(got.Factors), contracts.FactorStageAge)
	})

	t.Run("day 32 reaches at-risk", func(t *testing.T) {
		got := testEngine(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)).Assess(deal)
		require.Equal(t, 32, got.DaysInStage)
		require.Equal(t, contracts.FactorStageAge, got.Factors[0].Kind)
		assert.Contains(t, got.Factors[0].Message, "at-risk threshold: 32 days")
	})

	t.Run("day 42 reaches stale band as one factor", func(t *testing.T) {
		got := testEngine(time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)).Assess(deal)
		require.Equal(t, 42, got.DaysInStage)
		assert.Equal(t, []contracts.RiskFactorKind{contracts.FactorStageAge, contracts.FactorActivityDrought}, kinds(got.Factors))
		assert.Contains(t, got.Factors[0].Message, "stale threshold: 42 days")
	})
}

func TestEngine_Assess_ActivityDrought(t *testing.T) {
	tests := []struct {
		name      string
		stage     string
		created   *time.Time
		last      *time.Time
		wantFired bool
	}{
		{"early within SLA", "SQL", daysAgo(3), daysAgo(7), false},
		{"early beyond SLA", "SQL", daysAgo(3), daysAgo(8), true},
		{"mid within SLA", "Demo Scheduled", daysAgo(3), daysAgo(10), false},
		{"late beyond SLA", "Proposal", daysAgo(3), daysAgo(16), true},
		{"no activity new deal", "SQL", daysAgo(7), nil, false},
		{"no activity old deal", "SQL", daysAgo(8), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := contracts.DealSnapshot{
				StageName:      tt.stage,
				CreatedAt:      *tt.created,
				LastActivityAt: tt.last,
				NextStep:       contracts.NextStep{Text: "Follow up"},
			}
			got := testEngine(testNow).Assess(deal)
			if tt.wantFired {
				assert.Contains(t, kinds(got.Factors), contracts.FactorActivityDrought)
			} else {
				assert.NotContains(t, kinds(got.Factors), contracts.FactorActivityDrought)
			}
		})
	}
}

func TestEngine_Assess_NoNextStep(t *testing.T) {
	tomorrow := testNow.Add(24 * time.Hour)
	yesterday := testNow.Add(-24 * time.Hour)

	tests := []struct {
		name      string
		text      string
		next      *time.Time
		wantFired bool
	}{
		{"blank and nothing scheduled", "  ", nil, true},
		{"blank with future activity", "", &tomorrow, false},
		{"blank with past activity", "", &yesterday, true},
		{"text present", "Send pricing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := contracts.DealSnapshot{
				StageName:      "SQL",
				CreatedAt:      testNow.AddDate(0, 0, -1),
				NextActivityAt: tt.next,
				NextStep:       contracts.NextStep{Text: tt.text},
			}
			got := testEngine(testNow).Assess(deal)
			if tt.wantFired {
				assert.Equal(t, []contracts.RiskFactorKind{contracts.FactorNoNextStep}, kinds(got.Factors))
			} else {
				assert.Empty(t, got.Factors)
			}
		})
	}
}

func TestEngine_Assess_OverdueCloseDate(t *testing.T) {
	base := contracts.DealSnapshot{
		StageName: "Proposal",
		CreatedAt: testNow.AddDate(0, 0, -2),
		NextStep:  contracts.NextStep{Text: "Negotiate"},
	}

	today := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	base.CloseDate = &today
	assert.Empty(t, testEngine(testNow).Assess(base).Factors, "close date today is not past")

	yesterday := time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC)
	base.CloseDate = &yesterday
	got := testEngine(testNow).Assess(base)
	require.Len(t, got.Factors, 1)
	assert.Equal(t, contracts.FactorOverdue, got.Factors[0].Kind)
	assert.Contains(t, got.Factors[0].Message, "2025-01-19")
}

func TestEngine_Assess_FactorOrder(t *testing.T) {
	deal := contracts.DealSnapshot{
		StageName: "SQL",
		CreatedAt: testNow.AddDate(0, 0, -60),
		CloseDate: ptr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		NextStep: contracts.NextStep{
			Status:  contracts.NextStepDateInferred,
			DueDate: ptr(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)),
		},
	}

	got := testEngine(testNow).Assess(deal)

	assert.Equal(t, []contracts.RiskFactorKind{
		contracts.FactorStageAge,
		contracts.FactorActivityDrought,
		contracts.FactorNoNextStep,
		contracts.FactorOverdue,
		contracts.FactorOverdueNextStep,
	}, kinds(got.Factors))
	assert.Equal(t, contracts.RiskStale, got.Level)
}

func TestEngine_CustomThresholds(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds[contracts.StageEarly] = Thresholds{Expected: 1, AtRisk: 2, Stale: 3, InactivitySLA: 1}
	engine := NewEngine(calendar.NewAt(testNow, time.UTC), thresholds)

	got := engine.Assess(contracts.DealSnapshot{
		StageName:      "Discovery",
		CreatedAt:      testNow.AddDate(0, 0, -2),
		LastActivityAt: daysAgo(2),
		NextStep:       contracts.NextStep{Text: "Call"},
	})

	assert.Equal(t, []contracts.RiskFactorKind{contracts.FactorStageAge, contracts.FactorActivityDrought}, kinds(got.Factors))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, contracts.RiskHealthy, LevelFor(0))
	assert.Equal(t, contracts.RiskAtRisk, LevelFor(1))
	assert.Equal(t, contracts.RiskStale, LevelFor(2))
	assert.Equal(t, contracts.RiskStale, LevelFor(5))
}
