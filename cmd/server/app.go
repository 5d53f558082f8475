package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/config"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/repositories"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	"github.com/ldsilvadev/mcp-word-caller/internal/repository/postgres"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/content"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/draft"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/editor"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/filesync"
	serviceLLM "github.com/ldsilvadev/mcp-word-caller/internal/service/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/renderer"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/storage/gdrive"
)

// app is the wired service graph shared by the serve and chat commands.
type app struct {
	pool    *pgxpool.Pool
	invoker *renderer.MCPInvoker

	copies repositories.RemoteCopyRepository
	sync   services.Synchronizer
	drafts services.DraftService
	editor services.EditorService
	llm    *serviceLLM.Services
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	logger.Info("database connected", "table_prefix", cfg.TablePrefix)

	a := &app{pool: pool}
	if err := a.wire(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repoConfig := &postgres.RepositoryConfig{
		Pool:   a.pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	draftRepo := postgres.NewDraftRepository(repoConfig)
	a.copies = postgres.NewRemoteCopyRepository(repoConfig)
	txManager := postgres.NewTransactionManager(a.pool, logger)

	policy, err := catalog.NewRegistry()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// Without Drive credentials everything stays local.
	var store services.RemoteStore
	if cfg.RemoteStorageEnabled() {
		driveStore, err := gdrive.NewStore(ctx, gdrive.Config{
			CredentialsFile: cfg.GoogleCredentialsFile,
			FolderID:        cfg.DriveFolderID,
			ShareDomain:     cfg.DriveShareDomain,
		}, logger)
		if err != nil {
			return fmt.Errorf("create drive store: %w", err)
		}
		store = driveStore
		logger.Info("remote storage enabled", "folder_id", cfg.DriveFolderID)
	} else {
		logger.Warn("GOOGLE_CREDENTIALS_FILE not set - remote storage is disabled")
	}

	syncConfig := filesync.DefaultConfig(cfg.OutputDir)
	syncConfig.LockRetryAttempts = cfg.LockRetryAttempts
	syncConfig.LockRetryDelay = cfg.LockRetryDelay
	a.sync = filesync.NewSynchronizer(syncConfig, store, a.copies, logger)

	a.invoker = renderer.NewMCPInvoker(renderer.MCPConfig{
		Command: cfg.RendererCommand,
		Args:    cfg.RendererArgs,
	}, logger)
	gateway := renderer.NewGateway(a.invoker, policy.Catalog().Renderer.FillOperation, logger)

	a.drafts = draft.NewService(draftRepo, txManager, gateway, a.sync, content.NewNormalizer(logger), draft.Config{
		TemplatePath:  cfg.TemplatePath,
		AwaitTimeout:  cfg.AwaitTimeout,
		AwaitInterval: cfg.AwaitInterval,
	}, logger)

	a.llm, err = serviceLLM.SetupServices(cfg, serviceLLM.Dependencies{
		Catalog: policy,
		Drafts:  a.drafts,
		Copies:  a.copies,
		Sync:    a.sync,
		Invoker: a.invoker,
	}, logger)
	if err != nil {
		return fmt.Errorf("setup llm services: %w", err)
	}

	a.editor = editor.NewService(a.drafts, editor.Config{
		ServerURL:  cfg.EditorURL,
		BackendURL: cfg.BackendURL,
		JWTSecret:  cfg.EditorJWTSecret,
		Lang:       cfg.EditorLang,
	}, nil, logger)

	logger.Info("services initialized",
		"renderer", cfg.RendererCommand,
		"chat_enabled", a.llm.Chat != nil,
	)
	return nil
}

// Close stops the renderer process and closes the pool.
func (a *app) Close() {
	if a.invoker != nil {
		if err := a.invoker.Close(); err != nil {
			slog.Warn("failed to stop renderer", "error", err)
		}
	}
	a.pool.Close()
}
