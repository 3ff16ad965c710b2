package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Atiwari330/hub-agent-sub001/internal/ingest"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull deals and engagements from HubSpot",
	Long: `Mirrors every open deal, its stage history and its associated calls,
emails and meetings from HubSpot into the store, then drops cached queues.

Example:
  go run ./cmd/hubagent sync
  go run ./cmd/hubagent sync --workers 8`,
	RunE: runSync,
}

var (
	syncWorkers  int
	syncProgress bool
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().IntVar(&syncWorkers, "workers", ingest.DefaultWorkers, "concurrent engagement fetches")
	syncCmd.Flags().BoolVar(&syncProgress, "progress", true, "show a progress bar")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	syncer, err := a.syncer()
	if err != nil {
		return err
	}

	PrintJobHeader("CRM Sync", map[string]string{
		"Portal":  cfg.HubSpot.BaseURL,
		"Workers": fmt.Sprint(syncWorkers),
	})

	var bar *progressbar.ProgressBar
	cfgSync := ingest.Config{Workers: syncWorkers}
	if syncProgress {
		cfgSync.OnDealsSaved = func(total int) {
			bar = newProgressBar(total, "engagements")
		}
		cfgSync.OnDealDone = func(dealID string, err error) {
			_ = bar.Add(1)
		}
	}

	started := time.Now()
	result, err := syncer.Sync(ctx, cfgSync)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	a.queues.Invalidate(ctx)

	fmt.Println()
	PrintKeyValue("Deals", fmt.Sprint(result.Deals), 10)
	PrintKeyValue("Succeeded", fmt.Sprint(result.Succeeded), 10)
	PrintKeyValue("Failed", fmt.Sprint(result.Failed), 10)
	PrintKeyValue("Skipped", fmt.Sprint(result.Skipped), 10)
	PrintKeyValue("Removed", fmt.Sprint(result.Removed), 10)
	for _, r := range result.Results {
		if r.Error != nil {
			PrintError(fmt.Sprintf("deal %s: %v", r.DealID, r.Error))
		}
	}
	PrintJobCompletion("CRM Sync", time.Since(started))
	return nil
}
