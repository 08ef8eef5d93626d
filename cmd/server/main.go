package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/expense-tracker/internal/application/service"
	"github.com/damon-houk/expense-tracker/internal/config"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/db"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const cacheSweepInterval = 10 * time.Minute

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, toml or json)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "expense tracker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zl := logger.NewZapLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	defer zl.Sync()
	logger.SetDefaultLogger(zl)
	log := zl.WithField("service", "expense-tracker")

	log.Info("Starting expense tracker", map[string]interface{}{
		"backend":       cfg.DataBackend,
		"port":          cfg.Port,
		"summary_scope": cfg.SummaryScope,
		"summary_cache": cfg.SummaryCache,
	})

	kv, closeStore, err := openKeyValueStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Error closing storage", map[string]interface{}{"error": err.Error()})
		}
	}()

	repo := db.NewKVExpenseRepository(kv, cfg.StorageKey, log)
	store := service.NewExpenseStore(repo, log)

	// unreadable data is reported and the tracker starts empty
	if _, err := store.Load(context.Background()); err != nil {
		log.Warn("Continuing with an empty expense set", map[string]interface{}{
			"error": err.Error(),
		})
	}

	scope, err := service.ParseScope(cfg.SummaryScope)
	if err != nil {
		return err
	}

	var summaryCache *cache.SummaryCache
	if cfg.SummaryCache {
		summaryCache = cache.NewSummaryCache()
		summaryCache.SetExpiration(cfg.SummaryCacheTTL)
		store.OnMutation(summaryCache.Clear)
	}
	summaries := service.NewSummaryService(store, scope, summaryCache, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	handler.NewExpenseHandler(store, log).RegisterRoutes(router)
	handler.NewSummaryHandler(summaries, log).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if summaryCache != nil {
		g.Go(func() error {
			ticker := time.NewTicker(cacheSweepInterval)
			defer ticker.Stop()

			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := summaryCache.CleanExpired(); n > 0 {
						log.Debug("Expired summaries removed", map[string]interface{}{"count": n})
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Expense tracker stopped with error", map[string]interface{}{"error": err.Error()})
		return err
	}

	if err := store.LastPersistError(); err != nil {
		log.Warn("Last save failed, recent changes were not persisted", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server stopped gracefully", nil)
	return nil
}

// openKeyValueStore opens the configured persistence slot and returns a function that closes it
func openKeyValueStore(cfg *config.Config) (repository.KeyValueStore, func() error, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		s, err := db.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, s.Close, nil

	case config.BackendMemory:
		return db.NewMemoryStore(), func() error { return nil }, nil

	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		bdb, err := db.OpenBadger(cfg.DataDir, true)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return db.NewBadgerStore(bdb), bdb.Close, nil
	}
}
