package commands

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/Atiwari330/hub-agent-sub001/internal/calendar"
	"github.com/Atiwari330/hub-agent-sub001/internal/commitment"
	"github.com/Atiwari330/hub-agent-sub001/internal/external/hubspot"
	"github.com/Atiwari330/hub-agent-sub001/internal/ingest"
	"github.com/Atiwari330/hub-agent-sub001/internal/queue"
	"github.com/Atiwari330/hub-agent-sub001/internal/realtime"
	"github.com/Atiwari330/hub-agent-sub001/internal/ruleconfig"
	"github.com/Atiwari330/hub-agent-sub001/internal/scheduler"
	"github.com/Atiwari330/hub-agent-sub001/internal/scheduler/jobs"
	"github.com/Atiwari330/hub-agent-sub001/internal/store"
	"github.com/Atiwari330/hub-agent-sub001/pkg/config"
	"github.com/Atiwari330/hub-agent-sub001/pkg/database"
	"github.com/Atiwari330/hub-agent-sub001/pkg/httputil"
	"github.com/Atiwari330/hub-agent-sub001/pkg/logger"
	"github.com/Atiwari330/hub-agent-sub001/pkg/redis"
)

const cachePrefix = "hubagent"

// app is the wired service graph shared by the long-running commands
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *database.DB
	redis       *redis.Client
	store       *store.Store
	rules       *ruleconfig.Config
	cal         calendar.Calendar
	builder     *queue.Builder
	queues      *queue.Service
	commitments *commitment.Service
	hub         *realtime.Hub
}

// newApp connects to the database and redis, applies migrations and builds the services
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg)

	rules, err := loadRules(cfg)
	if err != nil {
		return nil, err
	}
	hash, _ := ruleconfig.Hash(rules)
	log.WithField("rules_hash", hash).Debug("Rules loaded")
	for _, w := range ruleconfig.Warnings(rules) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	st := store.New(db, cfg.Business.Location())
	if err := st.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
		rc = redis.Disabled()
	}

	cal := calendar.New(cfg.Business.Location())
	builder := queue.NewBuilder(cal, rules, 0)

	return &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		redis:       rc,
		store:       st,
		rules:       rules,
		cal:         cal,
		builder:     builder,
		queues:      queue.NewService(st, builder, redis.NewCache(rc, cachePrefix), cfg.Redis.QueueTTL, log),
		commitments: commitment.NewService(st, builder.HygieneChecker(), cal, log),
		hub:         realtime.NewHub(log),
	}, nil
}

// loadRules reads the rules file, falling back to the env owner domain for cadence
func loadRules(cfg *config.Config) (*ruleconfig.Config, error) {
	rules, err := ruleconfig.LoadOrDefault(cfg.Business.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	if rules.Cadence.OwnerEmailDomain == "" {
		rules.Cadence.OwnerEmailDomain = cfg.Business.OwnerEmailDomain
	}
	return rules, nil
}

func (a *app) Close() {
	a.hub.Close()
	_ = a.redis.Close()
	a.db.Close()
}

// syncer builds the HubSpot client chain: bearer auth, a local token bucket
// and the redis window shared with other processes syncing the same portal
func (a *app) syncer() (*ingest.Syncer, error) {
	if a.cfg.HubSpot.AccessToken == "" {
		return nil, fmt.Errorf("HUBSPOT_ACCESS_TOKEN is required to sync")
	}

	httpClient := httputil.New(a.cfg, a.log).
		WithBearerToken(a.cfg.HubSpot.AccessToken).
		WithLimiter(rate.NewLimiter(rate.Limit(a.cfg.HubSpot.RateLimit), a.cfg.HubSpot.RateLimit)).
		WithRateLimiter(redis.NewRateLimiter(a.redis, cachePrefix), redis.HubSpotRateLimit)

	client := hubspot.NewClient(a.cfg.HubSpot, httpClient, a.log)
	return ingest.NewSyncer(client, a.store, a.cal, a.log), nil
}

// scheduler registers every job. Jobs needing HubSpot are skipped without a token.
func (a *app) scheduler(workers int) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.cal.Location(), a.log)

	if syncer, err := a.syncer(); err != nil {
		a.log.WithError(err).Warn("CRM sync job disabled")
	} else if err := sched.AddJob(jobs.NewSyncJob(syncer, a.queues, a.hub, a.cfg.SyncSchedule, workers, a.log)); err != nil {
		return nil, err
	}

	if err := sched.AddJob(jobs.NewReconcileJob(a.commitments, a.queues, a.hub, a.cfg.ReconcileSchedule, a.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewDayRolloverJob(a.queues, a.hub, a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}
