package ruleconfig

import (
	"fmt"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/hygiene"
	"github.com/Atiwari330/hub-agent-sub001/internal/risk"
)

// ValidationError is a rules file that must not be used
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommendation violation (logged only)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Risk ===
	for name, thr := range map[string]risk.Thresholds{
		"risk.early": cfg.Risk.Early,
		"risk.mid":   cfg.Risk.Mid,
		"risk.late":  cfg.Risk.Late,
	} {
		if thr.AtRisk <= 0 || thr.InactivitySLA <= 0 {
			return ValidationError{name, "at_risk and inactivity_sla must be > 0"}
		}
		if thr.AtRisk > thr.Stale {
			return ValidationError{name, "at_risk must be <= stale"}
		}
	}

	// === Staleness ===
	if len(cfg.Staleness.Presets) == 0 {
		return ValidationError{"staleness.presets", "at least one preset required"}
	}
	for name, p := range cfg.Staleness.Presets {
		if err := p.Validate(); err != nil {
			return ValidationError{"staleness.presets." + name, err.Error()}
		}
	}
	if _, ok := cfg.Staleness.Presets[cfg.Staleness.DefaultPreset]; !ok {
		return ValidationError{"staleness.default_preset", fmt.Sprintf("unknown preset %q", cfg.Staleness.DefaultPreset)}
	}

	// === Hygiene ===
	if _, ok := cfg.Hygiene.Pipelines[contracts.PipelineSales]; !ok {
		return ValidationError{"hygiene.pipelines.sales", "required"}
	}
	for pipeline, reqs := range cfg.Hygiene.Pipelines {
		field := "hygiene.pipelines." + string(pipeline)
		if !pipeline.Valid() {
			return ValidationError{field, "unknown pipeline"}
		}
		seen := make(map[contracts.HygieneField]bool, len(reqs))
		for _, r := range reqs {
			if !hygiene.KnownField(r.Field) {
				return ValidationError{field, fmt.Sprintf("unknown field %q", r.Field)}
			}
			if r.Label == "" {
				return ValidationError{field, fmt.Sprintf("field %q needs a label", r.Field)}
			}
			if seen[r.Field] {
				return ValidationError{field, fmt.Sprintf("duplicate field %q", r.Field)}
			}
			seen[r.Field] = true
		}
	}

	// === Cadence ===
	if cfg.Cadence.Week1Target <= 0 {
		return ValidationError{"cadence.week1_target", "must be > 0"}
	}

	return nil
}

// Warnings returns recommendation violations that do not block startup
func Warnings(cfg *Config) []Warning {
	var warnings []Warning

	for name, thr := range map[string]risk.Thresholds{
		"risk.early": cfg.Risk.Early,
		"risk.mid":   cfg.Risk.Mid,
		"risk.late":  cfg.Risk.Late,
	} {
		if thr.Expected > thr.AtRisk {
			warnings = append(warnings, Warning{
				Code:    "RISK_EXPECTED_ABOVE_AT_RISK",
				Message: fmt.Sprintf("%s: expected (%d) exceeds at_risk (%d)", name, thr.Expected, thr.AtRisk),
			})
		}
	}

	if cfg.Cadence.OwnerEmailDomain == "" {
		warnings = append(warnings, Warning{
			Code:    "CADENCE_NO_OWNER_DOMAIN",
			Message: "owner_email_domain is empty; generic-direction emails will not count as touches",
		})
	}

	return warnings
}
