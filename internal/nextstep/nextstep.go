package nextstep

import (
	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

// IsOverdue reports whether a confidently extracted due date has passed.
// Returns the number of days since it was due.
func IsOverdue(cal calendar.Calendar, ns contracts.NextStep) (bool, int) {
	if !ns.Status.HasConfidentDate() || ns.DueDate == nil {
		return false, 0
	}
	if !cal.IsPastDate(*ns.DueDate) {
		return false, 0
	}
	return true, -cal.DaysUntil(*ns.DueDate)
}

// Check classifies a deal's next step as missing, overdue or compliant.
// Only date_found and date_inferred statuses can make a next step overdue.
func Check(cal calendar.Calendar, ns contracts.NextStep) contracts.NextStepCompliance {
	if ns.IsBlank() {
		return contracts.NextStepCompliance{Status: contracts.NextStepMissing}
	}

	if overdue, days := IsOverdue(cal, ns); overdue {
		return contracts.NextStepCompliance{
			Status:      contracts.NextStepOverdue,
			DaysOverdue: days,
			DueDate:     ns.DueDate,
		}
	}

	return contracts.NextStepCompliance{
		Status:  contracts.NextStepCompliant,
		DueDate: ns.DueDate,
	}
}
