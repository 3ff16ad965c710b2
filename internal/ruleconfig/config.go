package ruleconfig

import (
	"github.com/Atiwari330/hub-agent-sub001/internal/cadence"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/hygiene"
	"github.com/Atiwari330/hub-agent-sub001/internal/risk"
	"github.com/Atiwari330/hub-agent-sub001/internal/staleness"
)

// Config holds the numeric rule knobs of the classification engine
// ⭐ SSOT: every threshold the classifiers use is read from here at startup
type Config struct {
	Risk      RiskRules      `yaml:"risk" json:"risk"`
	Staleness StalenessRules `yaml:"staleness" json:"staleness"`
	Hygiene   HygieneRules   `yaml:"hygiene" json:"hygiene"`
	Cadence   CadenceRules   `yaml:"cadence" json:"cadence"`
}

// RiskRules are the per-category stage thresholds
type RiskRules struct {
	Early risk.Thresholds `yaml:"early" json:"early"`
	Mid   risk.Thresholds `yaml:"mid" json:"mid"`
	Late  risk.Thresholds `yaml:"late" json:"late"`
}

// StalenessRules are the named staleness presets
type StalenessRules struct {
	DefaultPreset string                          `yaml:"default_preset" json:"default_preset"`
	Presets       map[string]staleness.Thresholds `yaml:"presets" json:"presets"`
}

// HygieneRules are the required fields per pipeline, in display order
type HygieneRules struct {
	Pipelines map[contracts.PipelineKind][]contracts.HygieneRequirement `yaml:"pipelines" json:"pipelines"`
}

// CadenceRules configure the week-1 touch analysis
type CadenceRules struct {
	Week1Target      int    `yaml:"week1_target" json:"week1_target"`
	OwnerEmailDomain string `yaml:"owner_email_domain" json:"owner_email_domain"`
}

// Default returns the built-in rules
func Default() *Config {
	thresholds := risk.DefaultThresholds()
	return &Config{
		Risk: RiskRules{
			Early: thresholds[contracts.StageEarly],
			Mid:   thresholds[contracts.StageMid],
			Late:  thresholds[contracts.StageLate],
		},
		Staleness: StalenessRules{
			DefaultPreset: "default",
			Presets:       staleness.Presets(),
		},
		Hygiene: HygieneRules{
			Pipelines: hygiene.DefaultRequirements(),
		},
		Cadence: CadenceRules{
			Week1Target: cadence.DefaultTarget,
		},
	}
}

// RiskThresholds converts the risk rules to the engine's threshold set
func (c *Config) RiskThresholds() risk.ThresholdSet {
	return risk.ThresholdSet{
		contracts.StageEarly: c.Risk.Early,
		contracts.StageMid:   c.Risk.Mid,
		contracts.StageLate:  c.Risk.Late,
	}
}

// StalenessPreset looks up a preset by name. Empty name means the default preset.
func (c *Config) StalenessPreset(name string) (staleness.Thresholds, bool) {
	if name == "" {
		name = c.Staleness.DefaultPreset
	}
	t, ok := c.Staleness.Presets[name]
	return t, ok
}
