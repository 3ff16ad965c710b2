package risk

import "github.com/Atiwari330/hub-agent-sub001/internal/contracts"

// =============================================================================
// Thresholds
// =============================================================================

// Thresholds are the day counts for one stage category
type Thresholds struct {
	Expected      int `yaml:"expected" json:"expected"`             // normal time in stage
	AtRisk        int `yaml:"at_risk" json:"at_risk"`               // stage_age fires from here
	Stale         int `yaml:"stale" json:"stale"`                   // message switches to the stale band
	InactivitySLA int `yaml:"inactivity_sla" json:"inactivity_sla"` // max days without activity
}

// ThresholdSet maps each open stage category to its thresholds
type ThresholdSet map[contracts.StageCategory]Thresholds

// DefaultThresholds returns the standard thresholds per stage category
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		contracts.StageEarly: {Expected: 21, AtRisk: 32, Stale: 42, InactivitySLA: 7},
		contracts.StageMid:   {Expected: 14, AtRisk: 21, Stale: 28, InactivitySLA: 10},
		contracts.StageLate:  {Expected: 30, AtRisk: 45, Stale: 60, InactivitySLA: 15},
	}
}

// NewDealGraceDays is how old (calendar days) a deal with no recorded activity
// must be before the missing activity counts against it
const NewDealGraceDays = 7
