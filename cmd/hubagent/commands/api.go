package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Atiwari330/hub-agent-sub001/internal/api"
	"github.com/Atiwari330/hub-agent-sub001/internal/api/handlers"
	"github.com/Atiwari330/hub-agent-sub001/internal/fiscal"
	"github.com/Atiwari330/hub-agent-sub001/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server and the websocket hub.

By default the scheduler runs in the same process so that sync and
reconcile results reach connected dashboards immediately.

Endpoints:
  GET  /health
  GET  /api/queues/hygiene?pipeline=&owner=
  GET  /api/queues/stalled?preset=&pipeline=&owner=
  GET  /api/queues/at-risk?pipeline=&owner=&quarter=current
  GET  /api/queues/next-step?pipeline=&owner=
  GET  /api/queues/week1?owner=
  GET  /api/deals/{id}/classification
  POST /api/deals/{id}/commitments
  POST /api/deals/{id}/commitments/clear
  GET  /api/fiscal/current
  GET  /ws

Example:
  go run ./cmd/hubagent api
  go run ./cmd/hubagent api --port 8080 --scheduler=false`,
	RunE: runAPIServer,
}

var (
	apiPort      string
	apiScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&apiScheduler, "scheduler", true, "run scheduled jobs in this process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Hub Agent API Server ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.WithFields(map[string]interface{}{
		"port":      cfg.Port,
		"scheduler": apiScheduler,
	}).Info("Initializing API server")

	calc := fiscal.NewCalculator(a.cal)
	router := api.NewRouter(api.Handlers{
		Health:   handlers.NewHealthHandler(a.db, a.redis, a.hub),
		Queues:   handlers.NewQueueHandler(a.queues, calc, a.log),
		Deals:    handlers.NewDealHandler(a.queues, a.commitments, a.hub, a.log),
		Fiscal:   handlers.NewFiscalHandler(calc, a.cal, redis.NewCache(a.redis, cachePrefix), a.log),
		Realtime: a.hub,
	}, a.log)

	if apiScheduler {
		sched, err := a.scheduler(0)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	go a.hub.Run(ctx)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	server := api.New(cfg, a.log, router)
	if err := server.Run(ctx); err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
