package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ldsilvadev/mcp-word-caller/internal/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "mcp-word-caller",
	Short: "Document drafting assistant backed by a Word rendering server",
	Long: `Drafts institutional documents through a conversational agent.

Drafts are parsed into sections, rendered to .docx by an MCP renderer
process, and published to Google Drive.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal in production.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the environment file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(chatCmd)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging loads configuration and installs the default logger. The
// returned func closes the log file, if any.
func setupLogging() (*config.Config, *slog.Logger, func(), error) {
	cfg := config.Load()

	out, closeLog, err := config.LogOutput(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup log output: %w", err)
	}

	logger := config.NewLogger(cfg, out)
	slog.SetDefault(logger)
	return cfg, logger, closeLog, nil
}
