package hubspot

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// Deal properties read on every sync
const (
	PropDealName       = "dealname"
	PropAmount         = "amount"
	PropCloseDate      = "closedate"
	PropCreateDate     = "createdate"
	PropOwnerID        = "hubspot_owner_id"
	PropPipeline       = "pipeline"
	PropDealStage      = "dealstage"
	PropLastActivity   = "notes_last_updated"
	PropNextActivity   = "notes_next_activity_date"
	PropNextStep       = "hs_next_step"
	PropNextStepStatus = "next_step_status"
	PropNextStepDue    = "next_step_due_date"
	PropLeadSource     = "lead_source"
	PropProducts       = "product_s"
	PropSubstage       = "deal_substage"
	PropDealType       = "dealtype"

	stageEnteredPrefix = "hs_v2_date_entered_"
)

var baseDealProperties = []string{
	PropDealName, PropAmount, PropCloseDate, PropCreateDate, PropOwnerID,
	PropPipeline, PropDealStage, PropLastActivity, PropNextActivity,
	PropNextStep, PropNextStepStatus, PropNextStepDue,
	PropLeadSource, PropProducts, PropSubstage, PropDealType,
}

// Engagement properties requested in batch reads
var (
	CallProperties    = []string{"hs_timestamp", "hs_call_direction", "hs_call_disposition"}
	EmailProperties   = []string{"hs_timestamp", "hs_email_direction", "hs_email_from_email", "hs_email_subject"}
	MeetingProperties = []string{"hs_createdate", "hs_meeting_start_time", "hs_meeting_title"}
)

type trackedStage int

const (
	trackedNone trackedStage = iota
	trackedSQL
	trackedDemoScheduled
	trackedDemoCompleted
)

func trackStage(label string) trackedStage {
	name := strings.ToLower(label)
	switch {
	case strings.Contains(name, "sql"):
		return trackedSQL
	case strings.Contains(name, "demo") && strings.Contains(name, "scheduled"):
		return trackedDemoScheduled
	case strings.Contains(name, "demo") && strings.Contains(name, "completed"):
		return trackedDemoCompleted
	default:
		return trackedNone
	}
}

type stageInfo struct {
	label      string
	pipelineID string
	tracked    trackedStage
}

// Mapper converts CRM objects into contract snapshots.
// Values that fail to parse are logged and left unknown; mapping never fails.
type Mapper struct {
	loc       *time.Location
	logger    *logger.Logger
	stages    map[string]stageInfo
	pipelines map[string]contracts.PipelineKind
}

// NewMapper indexes the portal's pipelines so stage ids resolve to labels
func NewMapper(pipelines []Pipeline, loc *time.Location, log *logger.Logger) *Mapper {
	m := &Mapper{
		loc:       loc,
		logger:    log.Component("hubspot_mapper"),
		stages:    make(map[string]stageInfo),
		pipelines: make(map[string]contracts.PipelineKind),
	}
	for _, p := range pipelines {
		m.pipelines[p.ID] = PipelineKindFor(p.Label)
		for _, s := range p.Stages {
			m.stages[s.ID] = stageInfo{label: s.Label, pipelineID: p.ID, tracked: trackStage(s.Label)}
		}
	}
	return m
}

// PipelineKindFor infers the sales motion from a pipeline label.
// Anything not recognizably upsell or customer success is sales.
func PipelineKindFor(label string) contracts.PipelineKind {
	name := strings.ToLower(label)
	switch {
	case strings.Contains(name, "upsell") || strings.Contains(name, "expansion"):
		return contracts.PipelineUpsell
	case strings.Contains(name, "success") || strings.Contains(name, "renewal"):
		return contracts.PipelineCustomerSuccess
	default:
		return contracts.PipelineSales
	}
}

// DealProperties lists the deal properties to request, including the
// stage-entry timestamps of tracked stages
func (m *Mapper) DealProperties() []string {
	props := append([]string(nil), baseDealProperties...)

	var entered []string
	for id, s := range m.stages {
		if s.tracked != trackedNone {
			entered = append(entered, stageEnteredPrefix+id)
		}
	}
	sort.Strings(entered)
	return append(props, entered...)
}

// ToDeal maps a deal object to a snapshot. ok is false when neither createdate
// nor the object's createdAt is a usable timestamp; every age-based rule needs it.
func (m *Mapper) ToDeal(obj Object, syncedAt time.Time) (contracts.DealSnapshot, bool) {
	log := m.logger.WithDeal(obj.ID)

	created := m.timestamp(log, PropCreateDate, obj.Prop(PropCreateDate))
	if created == nil {
		created = m.timestamp(log, "createdAt", obj.CreatedAt)
	}
	if created == nil {
		return contracts.DealSnapshot{}, false
	}

	deal := contracts.DealSnapshot{
		ID:         obj.ID,
		Name:       strings.TrimSpace(obj.Prop(PropDealName)),
		OwnerID:    strings.TrimSpace(obj.Prop(PropOwnerID)),
		StageID:    obj.Prop(PropDealStage),
		LeadSource: obj.Prop(PropLeadSource),
		Products:   obj.Prop(PropProducts),
		Substage:   obj.Prop(PropSubstage),
		DealType:   obj.Prop(PropDealType),
		CreatedAt:  *created,
		SyncedAt:   syncedAt,
	}

	deal.Pipeline = contracts.PipelineSales
	if kind, ok := m.pipelines[obj.Prop(PropPipeline)]; ok {
		deal.Pipeline = kind
	}
	if stage, ok := m.stages[deal.StageID]; ok {
		deal.StageName = stage.label
	} else {
		deal.StageName = deal.StageID
	}

	deal.Amount = m.amount(log, obj.Prop(PropAmount))
	deal.CloseDate = m.civilDate(log, PropCloseDate, obj.Prop(PropCloseDate))

	deal.LastActivityAt = m.timestamp(log, PropLastActivity, obj.Prop(PropLastActivity))
	deal.NextActivityAt = m.timestamp(log, PropNextActivity, obj.Prop(PropNextActivity))

	deal.NextStep = contracts.NextStep{
		Text:    obj.Prop(PropNextStep),
		Status:  nextStepStatus(obj.Prop(PropNextStep), obj.Prop(PropNextStepStatus)),
		DueDate: m.civilDate(log, PropNextStepDue, obj.Prop(PropNextStepDue)),
	}

	for id, s := range m.stages {
		if s.tracked == trackedNone {
			continue
		}
		entered := m.timestamp(log, stageEnteredPrefix+id, obj.Prop(stageEnteredPrefix+id))
		if entered == nil {
			continue
		}
		switch s.tracked {
		case trackedSQL:
			deal.StageEntries.SQLEnteredAt = latest(deal.StageEntries.SQLEnteredAt, entered)
		case trackedDemoScheduled:
			deal.StageEntries.DemoScheduledEnteredAt = latest(deal.StageEntries.DemoScheduledEnteredAt, entered)
		case trackedDemoCompleted:
			deal.StageEntries.DemoCompletedEnteredAt = latest(deal.StageEntries.DemoCompletedEnteredAt, entered)
		}
	}

	return deal, true
}

// ToCall maps a call object; ok is false when it has no usable timestamp
func (m *Mapper) ToCall(dealID string, obj Object) (contracts.Call, bool) {
	ts := m.timestamp(m.logger.WithDeal(dealID), "hs_timestamp", obj.Prop("hs_timestamp"))
	if ts == nil {
		return contracts.Call{}, false
	}
	return contracts.Call{
		ID:          obj.ID,
		DealID:      dealID,
		Timestamp:   *ts,
		Direction:   obj.Prop("hs_call_direction"),
		Disposition: obj.Prop("hs_call_disposition"),
	}, true
}

// ToEmail maps an email object; ok is false when it has no usable timestamp
func (m *Mapper) ToEmail(dealID string, obj Object) (contracts.Email, bool) {
	ts := m.timestamp(m.logger.WithDeal(dealID), "hs_timestamp", obj.Prop("hs_timestamp"))
	if ts == nil {
		return contracts.Email{}, false
	}
	return contracts.Email{
		ID:        obj.ID,
		DealID:    dealID,
		Timestamp: *ts,
		Direction: contracts.EmailDirection(strings.ToUpper(obj.Prop("hs_email_direction"))),
		FromEmail: obj.Prop("hs_email_from_email"),
		Subject:   obj.Prop("hs_email_subject"),
	}, true
}

// ToMeeting maps a meeting object. The booking time falls back to the
// object's createdAt when hs_createdate is absent.
func (m *Mapper) ToMeeting(dealID string, obj Object) (contracts.Meeting, bool) {
	log := m.logger.WithDeal(dealID)
	booked := m.timestamp(log, "hs_createdate", obj.Prop("hs_createdate"))
	if booked == nil {
		booked = m.timestamp(log, "createdAt", obj.CreatedAt)
	}
	if booked == nil {
		return contracts.Meeting{}, false
	}
	return contracts.Meeting{
		ID:        obj.ID,
		DealID:    dealID,
		CreatedAt: *booked,
		StartTime: m.timestamp(log, "hs_meeting_start_time", obj.Prop("hs_meeting_start_time")),
		Title:     obj.Prop("hs_meeting_title"),
	}, true
}

// ToEngagements maps every raw engagement of one deal, skipping unusable objects
func (m *Mapper) ToEngagements(dealID string, raw DealEngagements) contracts.Engagements {
	eng := contracts.Engagements{
		Calls:    make([]contracts.Call, 0, len(raw.Calls)),
		Emails:   make([]contracts.Email, 0, len(raw.Emails)),
		Meetings: make([]contracts.Meeting, 0, len(raw.Meetings)),
	}
	for _, o := range raw.Calls {
		if c, ok := m.ToCall(dealID, o); ok {
			eng.Calls = append(eng.Calls, c)
		}
	}
	for _, o := range raw.Emails {
		if e, ok := m.ToEmail(dealID, o); ok {
			eng.Emails = append(eng.Emails, e)
		}
	}
	for _, o := range raw.Meetings {
		if mt, ok := m.ToMeeting(dealID, o); ok {
			eng.Meetings = append(eng.Meetings, mt)
		}
	}
	return eng
}

// =============================================================================
// Value parsing
// =============================================================================

func (m *Mapper) amount(log *logger.Logger, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.WithField("property", PropAmount).WithField("value", raw).Warn("Unparseable amount")
		return nil
	}
	return &v
}

// timestamp accepts RFC 3339 or epoch milliseconds
func (m *Mapper) timestamp(log *logger.Logger, prop, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	log.WithField("property", prop).WithField("value", raw).Warn("Unparseable timestamp")
	return nil
}

// civilDate reads a date-only property. HubSpot stores these as midnight UTC,
// so the UTC calendar day is the civil date.
func (m *Mapper) civilDate(log *logger.Logger, prop, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		utc := time.UnixMilli(ms).UTC()
		t := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, m.loc)
		return &t
	}
	t, err := calendar.ParseDate(raw, m.loc)
	if err != nil {
		log.WithField("property", prop).WithField("value", raw).Warn("Unparseable date")
		return nil
	}
	return &t
}

func nextStepStatus(text, raw string) contracts.NextStepStatus {
	if strings.TrimSpace(text) == "" {
		return contracts.NextStepEmpty
	}
	status := contracts.NextStepStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case contracts.NextStepDateFound, contracts.NextStepDateInferred, contracts.NextStepDateUnclear,
		contracts.NextStepAwaitingExternal, contracts.NextStepNoDate, contracts.NextStepEmpty:
		return status
	default:
		return contracts.NextStepUnparseable
	}
}

func latest(current, candidate *time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		return candidate
	}
	return current
}
