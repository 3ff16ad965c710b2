package hubspot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

var est = time.FixedZone("UTC-5", -5*3600)

func testPipelines() []Pipeline {
	return []Pipeline{
		{ID: "default", Label: "Sales Pipeline", Stages: []PipelineStage{
			{ID: "101", Label: "SQL"},
			{ID: "102", Label: "Demo Scheduled"},
			{ID: "103", Label: "Demo Completed"},
			{ID: "104", Label: "Proposal"},
			{ID: "105", Label: "Closed Won"},
		}},
		{ID: "9001", Label: "Upsell", Stages: []PipelineStage{{ID: "201", Label: "Discovery"}}},
		{ID: "9002", Label: "Customer Success Renewals", Stages: []PipelineStage{{ID: "301", Label: "Renewal Due"}}},
	}
}

func TestPipelineKindFor(t *testing.T) {
	assert.Equal(t, contracts.PipelineSales, PipelineKindFor("Sales Pipeline"))
	assert.Equal(t, contracts.PipelineUpsell, PipelineKindFor("Upsell"))
	assert.Equal(t, contracts.PipelineUpsell, PipelineKindFor("Account Expansion"))
	assert.Equal(t, contracts.PipelineCustomerSuccess, PipelineKindFor("Customer Success"))
	assert.Equal(t, contracts.PipelineSales, PipelineKindFor(""))
}

func TestMapper_DealProperties(t *testing.T) {
	m := NewMapper(testPipelines(), est, logger.Nop())
	props := m.DealProperties()

	assert.Contains(t, props, PropDealName)
	assert.Contains(t, props, "hs_v2_date_entered_101")
	assert.Contains(t, props, "hs_v2_date_entered_102")
	assert.Contains(t, props, "hs_v2_date_entered_103")
	assert.NotContains(t, props, "hs_v2_date_entered_104")
}

func TestMapper_ToDeal(t *testing.T) {
	m := NewMapper(testPipelines(), est, logger.Nop())
	synced := time.Date(2025, 1, 20, 15, 0, 0, 0, time.UTC)

	obj := Object{
		ID: "5001",
		Properties: map[string]string{
			PropDealName:             " Acme Expansion ",
			PropAmount:               "12000.50",
			PropCloseDate:            "2025-03-31T00:00:00Z",
			PropCreateDate:           "2025-01-06T14:30:00.000Z",
			PropOwnerID:              "42",
			PropPipeline:             "default",
			PropDealStage:            "102",
			PropLastActivity:         "1736438400000",
			PropNextStep:             "Send MSA",
			PropNextStepStatus:       "date_found",
			PropNextStepDue:          "2025-01-24",
			PropLeadSource:           "Inbound",
			"hs_v2_date_entered_102": "2025-01-10T09:00:00Z",
			"hs_v2_date_entered_101": "2025-01-07T09:00:00Z",
		},
	}

	deal, ok := m.ToDeal(obj, synced)
	require.True(t, ok)

	assert.Equal(t, "Acme Expansion", deal.Name)
	assert.Equal(t, contracts.PipelineSales, deal.Pipeline)
	assert.Equal(t, "Demo Scheduled", deal.StageName)
	require.NotNil(t, deal.Amount)
	assert.InDelta(t, 12000.50, *deal.Amount, 0.001)

	require.NotNil(t, deal.CloseDate)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, est), *deal.CloseDate)

	assert.True(t, deal.CreatedAt.Equal(time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC)))

	require.NotNil(t, deal.LastActivityAt)
	assert.True(t, deal.LastActivityAt.Equal(time.Date(2025, 1, 9, 16, 0, 0, 0, time.UTC)))
	assert.Nil(t, deal.NextActivityAt)

	assert.Equal(t, contracts.NextStepDateFound, deal.NextStep.Status)
	require.NotNil(t, deal.NextStep.DueDate)
	assert.Equal(t, time.Date(2025, 1, 24, 0, 0, 0, 0, est), *deal.NextStep.DueDate)

	require.NotNil(t, deal.StageEntries.DemoScheduledEnteredAt)
	require.NotNil(t, deal.StageEntries.SQLEnteredAt)
	assert.Nil(t, deal.StageEntries.DemoCompletedEnteredAt)
	assert.Equal(t, synced, deal.SyncedAt)
}

func TestMapper_ToDeal_Lenient(t *testing.T) {
	m := NewMapper(testPipelines(), est, logger.Nop())

	deal, ok := m.ToDeal(Object{
		ID:        "5002",
		CreatedAt: "2025-01-02T10:00:00Z",
		Properties: map[string]string{
			PropAmount:         "twelve",
			PropCloseDate:      "next quarter",
			PropPipeline:       "9002",
			PropDealStage:      "unknown-stage",
			PropNextStep:       "Follow up",
			PropNextStepStatus: "garbage",
		},
	}, time.Now())
	require.True(t, ok, "createdAt stands in for a missing createdate")

	assert.Nil(t, deal.Amount)
	assert.Nil(t, deal.CloseDate)
	assert.Equal(t, contracts.PipelineCustomerSuccess, deal.Pipeline)
	assert.Equal(t, "unknown-stage", deal.StageName, "unknown stage ids fall back to the raw id")
	assert.True(t, deal.CreatedAt.Equal(time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, contracts.NextStepUnparseable, deal.NextStep.Status)

	blank, ok := m.ToDeal(Object{ID: "5003", CreatedAt: "2025-01-02T10:00:00Z", Properties: map[string]string{PropNextStepStatus: "date_found"}}, time.Now())
	require.True(t, ok)
	assert.Equal(t, contracts.NextStepEmpty, blank.NextStep.Status)
	assert.Equal(t, contracts.PipelineSales, blank.Pipeline)
}

func TestMapper_ToDeal_NoCreationDate(t *testing.T) {
	m := NewMapper(testPipelines(), est, logger.Nop())

	tests := []struct {
		name string
		obj  Object
	}{
		{"both absent", Object{ID: "6001", Properties: map[string]string{PropDealStage: "101"}}},
		{"both unparseable", Object{ID: "6002", CreatedAt: "yesterday", Properties: map[string]string{
			PropDealStage:  "101",
			PropCreateDate: "last week",
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal, ok := m.ToDeal(tt.obj, time.Now())
			assert.False(t, ok)
			assert.True(t, deal.CreatedAt.IsZero())
		})
	}

	deal, ok := m.ToDeal(Object{ID: "6003", CreatedAt: "2025-01-02T10:00:00Z", Properties: map[string]string{
		PropCreateDate: "not a date",
	}}, time.Now())
	require.True(t, ok, "an unparseable createdate falls back to createdAt")
	assert.True(t, deal.CreatedAt.Equal(time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)))
}

func TestMapper_ToEngagements(t *testing.T) {
	m := NewMapper(nil, est, logger.Nop())

	eng := m.ToEngagements("77", DealEngagements{
		Calls: []Object{
			{ID: "c1", Properties: map[string]string{"hs_timestamp": "2025-01-07T10:00:00Z", "hs_call_direction": "OUTBOUND"}},
			{ID: "c2", Properties: map[string]string{}},
		},
		Emails: []Object{
			{ID: "e1", Properties: map[string]string{"hs_timestamp": "1736244000000", "hs_email_direction": "email", "hs_email_from_email": "rep@acme.io"}},
		},
		Meetings: []Object{
			{ID: "m1", CreatedAt: "2025-01-07T11:00:00Z", Properties: map[string]string{"hs_meeting_start_time": "2025-01-21T15:00:00Z"}},
		},
	})

	require.Len(t, eng.Calls, 1, "calls without a timestamp are dropped")
	assert.Equal(t, "77", eng.Calls[0].DealID)
	assert.Equal(t, "OUTBOUND", eng.Calls[0].Direction)

	require.Len(t, eng.Emails, 1)
	assert.Equal(t, contracts.EmailGeneric, eng.Emails[0].Direction)

	require.Len(t, eng.Meetings, 1)
	assert.True(t, eng.Meetings[0].CreatedAt.Equal(time.Date(2025, 1, 7, 11, 0, 0, 0, time.UTC)))
	require.NotNil(t, eng.Meetings[0].StartTime)
}
