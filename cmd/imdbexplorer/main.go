package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/explorador/imdbexplorer/internal/api"
	"github.com/explorador/imdbexplorer/internal/config"
	"github.com/explorador/imdbexplorer/internal/database"
	"github.com/explorador/imdbexplorer/internal/dataset"
	"github.com/explorador/imdbexplorer/internal/logger"
	"github.com/explorador/imdbexplorer/internal/scheduler"
	"github.com/explorador/imdbexplorer/internal/scheduler/tasks"
	"github.com/explorador/imdbexplorer/internal/websocket"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the configuration")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "imdbexplorer: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		Path:            cfg.Logging.Path,
		MaxSizeMB:       cfg.Logging.MaxSizeMB,
		MaxBackups:      cfg.Logging.MaxBackups,
		MaxAgeDays:      cfg.Logging.MaxAgeDays,
		Compress:        cfg.Logging.Compress,
		EnableStreaming: true,
		BufferSize:      1000,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Str("dataDir", cfg.Data.Dir).
		Msg("starting imdbexplorer")

	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := database.New(cfg.Database.Path, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(log.Logger)
	go hub.Run(ctx)

	// Enable log streaming via WebSocket now that hub is available
	log.SetBroadcastHub(hub)

	sources := dataset.SourcesFromPaths(
		cfg.Data.Resolve(cfg.Data.Titles),
		cfg.Data.Resolve(cfg.Data.EpisodeLinks),
		cfg.Data.Resolve(cfg.Data.EpisodeRatings),
		cfg.Data.Delimiter(),
	)
	store := dataset.NewStore(sources, log.Logger)

	server := api.NewServer(cfg, db.Conn(), store, hub, log.Logger)
	server.SetLogsProvider(log)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return err
	}
	if cfg.Scheduler.Enabled {
		freshness := tasks.NewSourceFreshnessTask(store, server.HealthChecker(), log.Logger)
		if err := tasks.RegisterSourceFreshnessTask(sched, freshness, cfg.Scheduler.FreshnessCron); err != nil {
			return err
		}
		if err := tasks.RegisterLedgerCleanupTask(sched, server.HistoryService(),
			cfg.Scheduler.LedgerCleanupCron, cfg.Scheduler.LedgerRetentionDays); err != nil {
			return err
		}
	}
	server.SetScheduler(sched)
	if err := sched.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}
