package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Atiwari330/hub-agent-sub001/internal/store"
	"github.com/Atiwari330/hub-agent-sub001/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Creates or upgrades the deals, engagements and commitments tables.
Already-applied migrations are skipped.

Example:
  DATABASE_URL=sqlite://hubagent.db go run ./cmd/hubagent migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	before, err := db.SchemaVersion(ctx)
	if err != nil {
		before = 0
	}

	if err := store.New(db, cfg.Business.Location()).Migrate(ctx); err != nil {
		return err
	}

	after, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if after == before {
		PrintSuccess(fmt.Sprintf("Schema already at version %d (%s)", after, db.Dialect))
		return nil
	}
	PrintSuccess(fmt.Sprintf("Migrated %s schema from version %d to %d", db.Dialect, before, after))
	return nil
}
