package risk

import (
	"strings"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
)

// Keyword order is significant: closed wins over demo, demo over late.
// A stage named "Demo Lost" is closed.
var (
	closedKeywords = []string{"closed", "disqualified", "lost"}
	midKeywords    = []string{"demo"}
	lateKeywords   = []string{"proposal", "negotiation", "contract", "legal", "procurement"}
)

// CategorizeStage maps a stage label to its category by case-insensitive substring match.
// Empty or unrecognized labels are early.
// ⭐ SSOT: the only place stage labels are interpreted
func CategorizeStage(stageName string) contracts.StageCategory {
	name := strings.ToLower(stageName)

	switch {
	case containsAny(name, closedKeywords):
		return contracts.StageClosed
	case containsAny(name, midKeywords):
		return contracts.StageMid
	case containsAny(name, lateKeywords):
		return contracts.StageLate
	default:
		return contracts.StageEarly
	}
}

// IsClosed reports whether the deal's stage is a closed category
func IsClosed(deal contracts.DealSnapshot) bool {
	return CategorizeStage(deal.StageName) == contracts.StageClosed
}

// StageEntryDate resolves when the deal entered its current stage.
// A tracked stage timestamp wins; otherwise the creation date is used.
func StageEntryDate(deal contracts.DealSnapshot) time.Time {
	name := strings.ToLower(deal.StageName)
	entries := deal.StageEntries

	var tracked *time.Time
	switch {
	case strings.Contains(name, "sql"):
		tracked = entries.SQLEnteredAt
	case strings.Contains(name, "demo") && strings.Contains(name, "scheduled"):
		tracked = entries.DemoScheduledEnteredAt
	case strings.Contains(name, "demo") && strings.Contains(name, "completed"):
		tracked = entries.DemoCompletedEnteredAt
	}

	if tracked != nil {
		return *tracked
	}
	return deal.CreatedAt
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
