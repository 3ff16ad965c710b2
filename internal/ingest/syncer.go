package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/internal/external/hubspot"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
)

// DefaultWorkers is the engagement fetch concurrency when none is configured
const DefaultWorkers = 4

// Source is the CRM the syncer pulls from
type Source interface {
	Pipelines(ctx context.Context) ([]hubspot.Pipeline, error)
	ListDeals(ctx context.Context, properties []string) ([]hubspot.Object, error)
	DealEngagements(ctx context.Context, dealID string) (hubspot.DealEngagements, error)
}

// Repository is where synced data lands
type Repository interface {
	contracts.DealRepository
	contracts.EngagementRepository
}

// Syncer mirrors CRM deals and their engagements into the store
// ⭐ SSOT: CRM → store synchronization happens only here
type Syncer struct {
	source Source
	repo   Repository
	cal    calendar.Calendar
	logger *logger.Logger
}

// Config holds sync configuration
type Config struct {
	Workers int // concurrent engagement fetches

	// OnDealsSaved is called once with the deal count before engagements are fetched
	OnDealsSaved func(total int)

	// OnDealDone is called once per deal after its engagements are handled.
	// Calls are serialized.
	OnDealDone func(dealID string, err error)
}

// DealResult is the engagement sync outcome of one deal
type DealResult struct {
	DealID   string
	Calls    int
	Emails   int
	Meetings int
	Error    error
}

// Result summarizes one sync run
type Result struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Deals      int
	Skipped    int // deals the mapper rejected
	Removed    int // local deals no longer in the CRM
	Succeeded  int
	Failed     int
	Results    []DealResult
}

// NewSyncer creates a new Syncer
func NewSyncer(source Source, repo Repository, cal calendar.Calendar, log *logger.Logger) *Syncer {
	return &Syncer{
		source: source,
		repo:   repo,
		cal:    cal,
		logger: log.WithField("module", "ingest"),
	}
}

// Sync pulls every deal, upserts the snapshots, then refreshes each deal's
// engagements with a worker pool. A failure on one deal's engagements is
// recorded in the result and does not stop the run.
func (s *Syncer) Sync(ctx context.Context, cfg Config) (*Result, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	result := &Result{StartedAt: s.cal.Now()}

	// 1. Pipelines resolve stage ids to labels
	pipelines, err := s.source.Pipelines(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch pipelines: %w", err)
	}
	mapper := hubspot.NewMapper(pipelines, s.cal.Location(), s.logger)

	// 2. Deals
	objects, err := s.source.ListDeals(ctx, mapper.DealProperties())
	if err != nil {
		return nil, fmt.Errorf("fetch deals: %w", err)
	}

	syncedAt := s.cal.Now()
	deals := make([]contracts.DealSnapshot, 0, len(objects))
	for _, obj := range objects {
		deal, ok := mapper.ToDeal(obj, syncedAt)
		if !ok {
			s.logger.WithDeal(obj.ID).Warn("Skipping deal without a usable creation date")
			result.Skipped++
			continue
		}
		deals = append(deals, deal)
	}

	// an empty pull never prunes the mirror
	if len(objects) == 0 {
		s.logger.Warn("CRM returned no deals, keeping the existing mirror")
	} else {
		removed, err := s.repo.SyncDeals(ctx, deals, syncedAt)
		if err != nil {
			return nil, fmt.Errorf("save deals: %w", err)
		}
		result.Removed = removed
	}
	result.Deals = len(deals)
	if cfg.OnDealsSaved != nil {
		cfg.OnDealsSaved(len(deals))
	}

	s.logger.WithFields(map[string]interface{}{
		"deal_count": len(deals),
		"skipped":    result.Skipped,
		"removed":    result.Removed,
		"pipelines":  len(pipelines),
		"workers":    workers,
	}).Info("Starting engagement sync")

	// 3. Engagements per deal
	var mu sync.Mutex
	result.Results = make([]DealResult, 0, len(deals))
	record := func(r DealResult) {
		mu.Lock()
		defer mu.Unlock()
		result.Results = append(result.Results, r)
		if r.Error != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
		if cfg.OnDealDone != nil {
			cfg.OnDealDone(r.DealID, r.Error)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, deal := range deals {
		dealID := deal.ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record(s.syncEngagements(gctx, mapper, dealID))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sync engagements: %w", err)
	}

	result.FinishedAt = s.cal.Now()
	s.logger.WithFields(map[string]interface{}{
		"success":  result.Succeeded,
		"failed":   result.Failed,
		"total":    result.Deals,
		"duration": result.FinishedAt.Sub(result.StartedAt).String(),
	}).Info("Sync completed")

	return result, nil
}

func (s *Syncer) syncEngagements(ctx context.Context, mapper *hubspot.Mapper, dealID string) DealResult {
	log := s.logger.WithDeal(dealID)

	raw, err := s.source.DealEngagements(ctx, dealID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch engagements")
		return DealResult{DealID: dealID, Error: err}
	}

	eng := mapper.ToEngagements(dealID, raw)
	if err := s.repo.ReplaceEngagements(ctx, dealID, eng); err != nil {
		log.WithError(err).Error("Failed to save engagements")
		return DealResult{DealID: dealID, Error: err}
	}

	log.WithFields(map[string]interface{}{
		"calls":    len(eng.Calls),
		"emails":   len(eng.Emails),
		"meetings": len(eng.Meetings),
	}).Debug("Synced engagements")

	return DealResult{
		DealID:   dealID,
		Calls:    len(eng.Calls),
		Emails:   len(eng.Emails),
		Meetings: len(eng.Meetings),
	}
}
