package hygiene

import (
	"fmt"
	"strings"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

// NewDealGraceBusinessDays is how long a deal may miss fields without a commitment
const NewDealGraceBusinessDays = 7

// =============================================================================
// Field check
// =============================================================================

// CheckHygiene reports which required fields are missing on the deal.
// Empty strings count as missing, and so does an amount of zero.
// The result preserves the order of required.
func CheckHygiene(deal contracts.DealSnapshot, required []contracts.HygieneRequirement) contracts.HygieneCheck {
	missing := make([]contracts.HygieneRequirement, 0)
	for _, req := range required {
		if isMissing(deal, req.Field) {
			missing = append(missing, req)
		}
	}
	return contracts.HygieneCheck{
		IsCompliant:   len(missing) == 0,
		MissingFields: missing,
	}
}

// isMissing reads one field off the snapshot.
// Unknown fields panic: requirement sets are validated when loaded.
func isMissing(deal contracts.DealSnapshot, field contracts.HygieneField) bool {
	switch field {
	case contracts.FieldDealName:
		return blank(deal.Name)
	case contracts.FieldAmount:
		return deal.Amount == nil || *deal.Amount == 0
	case contracts.FieldCloseDate:
		return deal.CloseDate == nil
	case contracts.FieldOwner:
		return blank(deal.OwnerID)
	case contracts.FieldLeadSource:
		return blank(deal.LeadSource)
	case contracts.FieldProducts:
		return blank(deal.Products)
	case contracts.FieldSubstage:
		return blank(deal.Substage)
	case contracts.FieldDealType:
		return blank(deal.DealType)
	default:
		panic(fmt.Sprintf("hygiene: unknown field %q", field))
	}
}

// KnownField reports whether the field can be checked
func KnownField(field contracts.HygieneField) bool {
	for _, f := range contracts.HygieneFields() {
		if f == field {
			return true
		}
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// =============================================================================
// Commitment state machine
// =============================================================================

// Checker resolves hygiene status per pipeline
type Checker struct {
	cal          calendar.Calendar
	requirements map[contracts.PipelineKind][]contracts.HygieneRequirement
}

// NewChecker creates a checker. Nil requirements fall back to DefaultRequirements.
func NewChecker(cal calendar.Calendar, requirements map[contracts.PipelineKind][]contracts.HygieneRequirement) *Checker {
	if requirements == nil {
		requirements = DefaultRequirements()
	}
	return &Checker{cal: cal, requirements: requirements}
}

// Requirements returns the ordered required fields for a pipeline.
// Unknown or empty pipelines use the sales list.
func (c *Checker) Requirements(pipeline contracts.PipelineKind) []contracts.HygieneRequirement {
	if reqs, ok := c.requirements[pipeline]; ok {
		return reqs
	}
	return c.requirements[contracts.PipelineSales]
}

// Check runs CheckHygiene with the deal's pipeline requirements
func (c *Checker) Check(deal contracts.DealSnapshot) contracts.HygieneCheck {
	return CheckHygiene(deal, c.Requirements(deal.Pipeline))
}

// DetermineStatus places a deal in the remediation workflow.
//
//	no missing fields               -> compliant
//	no commitment, new deal         -> needs_commitment
//	no commitment, past grace       -> escalated
//	commitment completed/escalated  -> escalated (regressed after a fix, or already escalated)
//	commitment date passed          -> escalated
//	otherwise                       -> pending
//
// The commitment is the latest one for the deal; nil when none exists.
func (c *Checker) DetermineStatus(deal contracts.DealSnapshot, commitment *contracts.HygieneCommitment) contracts.HygieneStatusResult {
	check := c.Check(deal)
	age := c.cal.BusinessDaysSince(deal.CreatedAt)
	isNew := age <= NewDealGraceBusinessDays

	result := contracts.HygieneStatusResult{
		MissingFields:   check.MissingFields,
		BusinessDaysOld: age,
		IsNewDeal:       isNew,
	}

	if check.IsCompliant {
		result.Status = contracts.HygieneCompliant
		result.Reason = "All required fields are complete"
		return result
	}

	labels := Labels(check.MissingFields)

	if commitment == nil {
		if isNew {
			result.Status = contracts.HygieneNeedsCommitment
			result.Reason = fmt.Sprintf("New deal missing %s. Set a date to complete %s.",
				labels, pluralize(len(check.MissingFields), "it", "them"))
			return result
		}
		result.Status = contracts.HygieneEscalated
		result.Reason = fmt.Sprintf("Missing %s for %d business days with no commitment", labels, age)
		return result
	}

	date := commitment.CommitmentDate
	result.CommitmentDate = &date

	switch commitment.Status {
	case contracts.CommitmentCompleted:
		result.Status = contracts.HygieneEscalated
		result.Reason = fmt.Sprintf("Fields were completed but are missing again: %s", labels)
		return result
	case contracts.CommitmentEscalated:
		result.Status = contracts.HygieneEscalated
		result.Reason = fmt.Sprintf("Commitment for %s was escalated on %s", labels, c.cal.FormatDate(date))
		return result
	}

	if c.cal.IsPastDate(date) {
		overdue := -c.cal.DaysUntil(date)
		result.Status = contracts.HygieneEscalated
		result.Reason = fmt.Sprintf("Commitment to complete %s was due %s (%d %s overdue)",
			labels, c.cal.FormatDate(date), overdue, pluralize(overdue, "day", "days"))
		return result
	}

	result.Status = contracts.HygienePending
	if until := c.cal.DaysUntil(date); until == 0 {
		result.Reason = fmt.Sprintf("Committed to complete %s today", labels)
	} else {
		result.Reason = fmt.Sprintf("Committed to complete %s by %s (due in %d %s)",
			labels, c.cal.FormatDate(date), until, pluralize(until, "day", "days"))
	}
	return result
}

// Labels joins the human labels of the given requirements
func Labels(reqs []contracts.HygieneRequirement) string {
	labels := make([]string, 0, len(reqs))
	for _, r := range reqs {
		labels = append(labels, r.Label)
	}
	return strings.Join(labels, ", ")
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
