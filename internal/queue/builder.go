package queue

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/Atiwari330/hub-agent-sub001/internal/cadence"
	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/hygiene"
	"github.com/Atiwari330/hub-agent-sub001/internal/nextstep"
	"github.com/Atiwari330/hub-agent-sub001/internal/risk"
	"github.com/Atiwari330/hub-agent-sub001/internal/ruleconfig"
	"github.com/Atiwari330/hub-agent-sub001/internal/staleness"
)

// ErrUnknownPreset is returned for a staleness preset name that is not configured
var ErrUnknownPreset = errors.New("unknown staleness preset")

// Week1LookbackBusinessDays bounds which deals appear on the week-1 queue:
// the 5-day window plus one more business week to catch misses
const Week1LookbackBusinessDays = 2 * cadence.WindowBusinessDays

// Builder runs the classifiers over many deals and shapes the dashboard queues.
// Every classifier is pure, so deals are classified concurrently and the
// output does not depend on worker scheduling.
type Builder struct {
	cal     calendar.Calendar
	rules   *ruleconfig.Config
	risk    *risk.Engine
	hygiene *hygiene.Checker
	cadence *cadence.Analyzer
	workers int
}

// NewBuilder creates a Builder. Nil rules use the defaults; workers <= 0 uses GOMAXPROCS.
func NewBuilder(cal calendar.Calendar, rules *ruleconfig.Config, workers int) *Builder {
	if rules == nil {
		rules = ruleconfig.Default()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{
		cal:     cal,
		rules:   rules,
		risk:    risk.NewEngine(cal, rules.RiskThresholds()),
		hygiene: hygiene.NewChecker(cal, rules.Hygiene.Pipelines),
		cadence: cadence.NewAnalyzer(cal, rules.Cadence.OwnerEmailDomain, rules.Cadence.Week1Target),
		workers: workers,
	}
}

// Calendar returns the builder's business calendar
func (b *Builder) Calendar() calendar.Calendar { return b.cal }

// Rules returns the active rule configuration
func (b *Builder) Rules() *ruleconfig.Config { return b.rules }

// HygieneChecker returns the checker built from the pipeline requirements
func (b *Builder) HygieneChecker() *hygiene.Checker { return b.hygiene }

// classifyAll maps fn over deals with a worker pool and keeps the kept results
// in input order
func classifyAll[T any](deals []contracts.DealSnapshot, workers int, fn func(contracts.DealSnapshot) (T, bool)) []T {
	results := make([]T, len(deals))
	keep := make([]bool, len(deals))

	jobs := make(chan int, len(deals))
	for i := range deals {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(deals)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], keep[i] = fn(deals[i])
			}
		}()
	}
	wg.Wait()

	out := make([]T, 0, len(deals))
	for i, k := range keep {
		if k {
			out = append(out, results[i])
		}
	}
	return out
}

func openDeals(deals []contracts.DealSnapshot, filter Filter) []contracts.DealSnapshot {
	out := make([]contracts.DealSnapshot, 0, len(deals))
	for _, d := range deals {
		if !risk.IsClosed(d) && filter.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// =============================================================================
// Queues
// =============================================================================

// Hygiene builds the hygiene queue. commitments maps deal id to the
// commitment the state machine should see.
func (b *Builder) Hygiene(deals []contracts.DealSnapshot, commitments map[string]contracts.HygieneCommitment, filter Filter) HygieneQueue {
	items := classifyAll(openDeals(deals, filter), b.workers, func(d contracts.DealSnapshot) (HygieneItem, bool) {
		var c *contracts.HygieneCommitment
		if found, ok := commitments[d.ID]; ok {
			c = &found
		}
		res := b.hygiene.DetermineStatus(d, c)
		return HygieneItem{Deal: Summarize(d), Result: res}, res.Status != contracts.HygieneCompliant
	})

	sort.SliceStable(items, func(i, j int) bool {
		a, c := items[i], items[j]
		if ra, rc := hygieneRank(a.Result.Status), hygieneRank(c.Result.Status); ra != rc {
			return ra < rc
		}
		if a.Result.BusinessDaysOld != c.Result.BusinessDaysOld {
			return a.Result.BusinessDaysOld > c.Result.BusinessDaysOld
		}
		return a.Deal.ID < c.Deal.ID
	})

	q := HygieneQueue{Items: items, Summary: HygieneSummary{Total: len(items)}}
	for _, it := range items {
		switch it.Result.Status {
		case contracts.HygieneEscalated:
			q.Summary.Escalated++
		case contracts.HygieneNeedsCommitment:
			q.Summary.NeedsCommitment++
		case contracts.HygienePending:
			q.Summary.Pending++
		}
	}
	return q
}

// Stalled builds the stalled-deal queue with the named staleness preset
func (b *Builder) Stalled(deals []contracts.DealSnapshot, preset string, filter Filter) (StalledQueue, error) {
	if preset == "" {
		preset = b.rules.Staleness.DefaultPreset
	}
	thr, ok := b.rules.StalenessPreset(preset)
	if !ok {
		return StalledQueue{}, fmt.Errorf("%w %q", ErrUnknownPreset, preset)
	}

	items := classifyAll(openDeals(deals, filter), b.workers, func(d contracts.DealSnapshot) (StalledItem, bool) {
		res := staleness.Check(b.cal, d, thr)
		return StalledItem{Deal: Summarize(d), Result: res}, res.IsStalled
	})

	sort.SliceStable(items, func(i, j int) bool {
		a, c := items[i].Result, items[j].Result
		if ra, rc := staleness.SeverityRank(a.Severity), staleness.SeverityRank(c.Severity); ra != rc {
			return ra < rc
		}
		if a.Factors.Count() != c.Factors.Count() {
			return a.Factors.Count() > c.Factors.Count()
		}
		if a.DaysSinceActivity != c.DaysSinceActivity {
			return a.DaysSinceActivity > c.DaysSinceActivity
		}
		return items[i].Deal.ID < items[j].Deal.ID
	})

	q := StalledQueue{Preset: preset, Items: items, Summary: StalledSummary{Total: len(items)}}
	for _, it := range items {
		switch it.Result.Severity {
		case contracts.SeverityCritical:
			q.Summary.Critical++
		case contracts.SeverityWarning:
			q.Summary.Warning++
		case contracts.SeverityWatch:
			q.Summary.Watch++
		}
	}
	return q, nil
}

// AtRisk builds the risk queue
func (b *Builder) AtRisk(deals []contracts.DealSnapshot, filter Filter) RiskQueue {
	items := classifyAll(openDeals(deals, filter), b.workers, func(d contracts.DealSnapshot) (RiskItem, bool) {
		a := b.risk.Assess(d)
		return RiskItem{Deal: Summarize(d), Assessment: a}, a.Level != contracts.RiskHealthy
	})

	sort.SliceStable(items, func(i, j int) bool {
		a, c := items[i].Assessment, items[j].Assessment
		if ra, rc := riskRank(a.Level), riskRank(c.Level); ra != rc {
			return ra < rc
		}
		if len(a.Factors) != len(c.Factors) {
			return len(a.Factors) > len(c.Factors)
		}
		if a.DaysInStage != c.DaysInStage {
			return a.DaysInStage > c.DaysInStage
		}
		return items[i].Deal.ID < items[j].Deal.ID
	})

	q := RiskQueue{Items: items, Summary: RiskSummary{Total: len(items)}}
	for _, it := range items {
		switch it.Assessment.Level {
		case contracts.RiskStale:
			q.Summary.Stale++
		case contracts.RiskAtRisk:
			q.Summary.AtRisk++
		}
	}
	return q
}

// NextStep builds the next-step compliance queue
func (b *Builder) NextStep(deals []contracts.DealSnapshot, filter Filter) NextStepQueue {
	items := classifyAll(openDeals(deals, filter), b.workers, func(d contracts.DealSnapshot) (NextStepItem, bool) {
		c := nextstep.Check(b.cal, d.NextStep)
		return NextStepItem{Deal: Summarize(d), NextStep: d.NextStep.Text, Compliance: c}, c.Status != contracts.NextStepCompliant
	})

	sort.SliceStable(items, func(i, j int) bool {
		a, c := items[i].Compliance, items[j].Compliance
		if ra, rc := nextStepRank(a.Status), nextStepRank(c.Status); ra != rc {
			return ra < rc
		}
		if a.DaysOverdue != c.DaysOverdue {
			return a.DaysOverdue > c.DaysOverdue
		}
		return items[i].Deal.ID < items[j].Deal.ID
	})

	q := NextStepQueue{Items: items, Summary: NextStepSummary{Total: len(items)}}
	for _, it := range items {
		switch it.Compliance.Status {
		case contracts.NextStepMissing:
			q.Summary.Missing++
		case contracts.NextStepOverdue:
			q.Summary.Overdue++
		}
	}
	return q
}

// Week1Candidate reports whether a deal is young enough for the week-1 queue
func (b *Builder) Week1Candidate(deal contracts.DealSnapshot) bool {
	return !risk.IsClosed(deal) && b.cal.BusinessDaysSince(deal.CreatedAt) <= Week1LookbackBusinessDays
}

// Week1 builds the week-1 cadence queue over recently created deals.
// engagements maps deal id to its engagements; a missing entry means none.
func (b *Builder) Week1(deals []contracts.DealSnapshot, engagements map[string]contracts.Engagements, filter Filter) Week1Queue {
	candidates := make([]contracts.DealSnapshot, 0)
	for _, d := range openDeals(deals, filter) {
		if b.Week1Candidate(d) {
			candidates = append(candidates, d)
		}
	}

	items := classifyAll(candidates, b.workers, func(d contracts.DealSnapshot) (Week1Item, bool) {
		return Week1Item{Deal: Summarize(d), Analysis: b.cadence.AnalyzeWeek1(d.CreatedAt, engagements[d.ID])}, true
	})

	sort.SliceStable(items, func(i, j int) bool {
		a, c := items[i].Analysis, items[j].Analysis
		if ra, rc := cadence.StatusRank(a.Status), cadence.StatusRank(c.Status); ra != rc {
			return ra < rc
		}
		if a.Gap != c.Gap {
			return a.Gap > c.Gap
		}
		return items[i].Deal.ID < items[j].Deal.ID
	})

	q := Week1Queue{Items: items, Summary: Week1Summary{Total: len(items)}}
	for _, it := range items {
		switch it.Analysis.Status {
		case contracts.CadenceCritical:
			q.Summary.Critical++
		case contracts.CadenceBehind:
			q.Summary.Behind++
		case contracts.CadenceOnTrack:
			q.Summary.OnTrack++
		}
	}
	return q
}

// Classify runs every classifier on one deal with the default staleness preset
func (b *Builder) Classify(deal contracts.DealSnapshot, commitment *contracts.HygieneCommitment, engagements *contracts.Engagements) Classification {
	thr, ok := b.rules.StalenessPreset("")
	if !ok {
		thr = staleness.DefaultThresholds()
	}

	c := Classification{
		Deal:       deal,
		Risk:       b.risk.Assess(deal),
		Hygiene:    b.hygiene.DetermineStatus(deal, commitment),
		Staleness:  staleness.Check(b.cal, deal, thr),
		NextStep:   nextstep.Check(b.cal, deal.NextStep),
		Commitment: commitment,
	}
	if engagements != nil {
		week1 := b.cadence.AnalyzeWeek1(deal.CreatedAt, *engagements)
		c.Week1 = &week1
	}
	return c
}

// =============================================================================
// Ranks
// =============================================================================

func hygieneRank(s contracts.HygieneStatus) int {
	switch s {
	case contracts.HygieneEscalated:
		return 0
	case contracts.HygieneNeedsCommitment:
		return 1
	case contracts.HygienePending:
		return 2
	default:
		return 3
	}
}

func riskRank(l contracts.RiskLevel) int {
	switch l {
	case contracts.RiskStale:
		return 0
	case contracts.RiskAtRisk:
		return 1
	default:
		return 2
	}
}

func nextStepRank(s contracts.NextStepComplianceStatus) int {
	switch s {
	case contracts.NextStepMissing:
		return 0
	case contracts.NextStepOverdue:
		return 1
	default:
		return 2
	}
}
