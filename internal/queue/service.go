package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/Atiwari330/hub-agent-sub001/internal/contracts"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
	"github.com/Atiwari330/hub-agent-sub001/pkg/redis"
)

// Repository is the read side the queues are built from
type Repository interface {
	contracts.DealRepository
	contracts.EngagementRepository
	contracts.CommitmentRepository
}

// Service loads deals from the store and serves cached queues
// ⭐ SSOT: queue responses are built and cached only here
type Service struct {
	repo    Repository
	builder *Builder
	cache   *redis.Cache
	ttl     time.Duration
	logger  *logger.Logger
}

// NewService creates a queue service. A nil cache disables caching.
func NewService(repo Repository, builder *Builder, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Service {
	if cache == nil {
		cache = redis.NewCache(redis.Disabled(), "hubagent")
	}
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &Service{
		repo:    repo,
		builder: builder,
		cache:   cache,
		ttl:     ttl,
		logger:  log.WithField("module", "queue"),
	}
}

// Builder returns the underlying queue builder
func (s *Service) Builder() *Builder { return s.builder }

// cached serves a queue from the cache, building and storing it on a miss.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *Service, key string, build func() (T, error)) (T, error) {
	var out T
	found, err := s.cache.Get(ctx, key, &out)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Queue cache read failed")
	}
	if found {
		return out, nil
	}

	out, err = build()
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Queue cache write failed")
	}
	return out, nil
}

func (s *Service) cacheKey(queue string, filter Filter, extra map[string]string) string {
	params := map[string]string{
		"day":      s.builder.Calendar().FormatDate(s.builder.Calendar().Now()),
		"pipeline": string(filter.Pipeline),
		"owner":    filter.OwnerID,
	}
	if filter.ClosingIn != nil {
		params["quarter"] = filter.ClosingIn.Label
	}
	for k, v := range extra {
		params[k] = v
	}
	return redis.QueueKey(queue, params)
}

func (s *Service) loadDeals(ctx context.Context, filter Filter) ([]contracts.DealSnapshot, error) {
	deals, err := s.repo.ListDeals(ctx, contracts.DealFilter{Pipeline: filter.Pipeline, OwnerID: filter.OwnerID})
	if err != nil {
		return nil, fmt.Errorf("load deals: %w", err)
	}
	return deals, nil
}

// Hygiene returns the hygiene queue
func (s *Service) Hygiene(ctx context.Context, filter Filter) (HygieneQueue, error) {
	return cached(ctx, s, s.cacheKey("hygiene", filter, nil), func() (HygieneQueue, error) {
		deals, err := s.loadDeals(ctx, filter)
		if err != nil {
			return HygieneQueue{}, err
		}
		commitments, err := s.repo.LatestCommitments(ctx)
		if err != nil {
			return HygieneQueue{}, fmt.Errorf("load commitments: %w", err)
		}
		return s.builder.Hygiene(deals, commitments, filter), nil
	})
}

// Stalled returns the stalled queue for a staleness preset
func (s *Service) Stalled(ctx context.Context, preset string, filter Filter) (StalledQueue, error) {
	if _, ok := s.builder.Rules().StalenessPreset(preset); !ok {
		return StalledQueue{}, fmt.Errorf("%w %q", ErrUnknownPreset, preset)
	}
	return cached(ctx, s, s.cacheKey("stalled", filter, map[string]string{"preset": preset}), func() (StalledQueue, error) {
		deals, err := s.loadDeals(ctx, filter)
		if err != nil {
			return StalledQueue{}, err
		}
		return s.builder.Stalled(deals, preset, filter)
	})
}

// AtRisk returns the risk queue
func (s *Service) AtRisk(ctx context.Context, filter Filter) (RiskQueue, error) {
	return cached(ctx, s, s.cacheKey("at-risk", filter, nil), func() (RiskQueue, error) {
		deals, err := s.loadDeals(ctx, filter)
		if err != nil {
			return RiskQueue{}, err
		}
		return s.builder.AtRisk(deals, filter), nil
	})
}

// NextStep returns the next-step queue
func (s *Service) NextStep(ctx context.Context, filter Filter) (NextStepQueue, error) {
	return cached(ctx, s, s.cacheKey("next-step", filter, nil), func() (NextStepQueue, error) {
		deals, err := s.loadDeals(ctx, filter)
		if err != nil {
			return NextStepQueue{}, err
		}
		return s.builder.NextStep(deals, filter), nil
	})
}

// Week1 returns the week-1 cadence queue. Engagements are loaded only for
// deals young enough to be on it.
func (s *Service) Week1(ctx context.Context, filter Filter) (Week1Queue, error) {
	return cached(ctx, s, s.cacheKey("week1", filter, nil), func() (Week1Queue, error) {
		deals, err := s.loadDeals(ctx, filter)
		if err != nil {
			return Week1Queue{}, err
		}

		engagements := make(map[string]contracts.Engagements)
		for _, d := range deals {
			if !s.builder.Week1Candidate(d) || !filter.Match(d) {
				continue
			}
			eng, err := s.repo.GetEngagements(ctx, d.ID)
			if err != nil {
				return Week1Queue{}, fmt.Errorf("load engagements for deal %s: %w", d.ID, err)
			}
			engagements[d.ID] = eng
		}
		return s.builder.Week1(deals, engagements, filter), nil
	})
}

// Classify runs every classifier on one stored deal. Week-1 analysis is
// included only for deals still young enough to be on that queue. Not cached.
func (s *Service) Classify(ctx context.Context, dealID string) (Classification, error) {
	deal, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return Classification{}, err
	}
	commitment, err := s.repo.LatestCommitment(ctx, dealID)
	if err != nil {
		return Classification{}, fmt.Errorf("load commitment: %w", err)
	}
	if !s.builder.Week1Candidate(*deal) {
		return s.builder.Classify(*deal, commitment, nil), nil
	}
	eng, err := s.repo.GetEngagements(ctx, dealID)
	if err != nil {
		return Classification{}, fmt.Errorf("load engagements: %w", err)
	}
	return s.builder.Classify(*deal, commitment, &eng), nil
}

// Invalidate drops every cached queue. Called after syncs and commitment writes.
func (s *Service) Invalidate(ctx context.Context) {
	n, err := s.cache.DeletePrefix(ctx, redis.QueuePrefix)
	if err != nil {
		s.logger.WithError(err).Warn("Queue cache invalidation failed")
		return
	}
	if n > 0 {
		s.logger.WithField("keys", n).Debug("Queue cache invalidated")
	}
}
