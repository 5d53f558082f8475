package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ldsilvadev/mcp-word-caller/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Applies the embedded SQL migrations to DATABASE_URL.

Tables are created with the TABLE_PREFIX of the current environment.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if err := postgres.Migrate(cmd.Context(), cfg.DatabaseURL, cfg.TablePrefix, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.Info("migrations applied", "table_prefix", cfg.TablePrefix)
	return nil
}
