package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"collatzgraph/internal/app"
	"collatzgraph/internal/config"
	"collatzgraph/internal/handler"
	"collatzgraph/internal/hub"
	"collatzgraph/internal/logging"
	"collatzgraph/internal/repository/sqlite"
	"collatzgraph/internal/service"
	"collatzgraph/internal/watcher"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger := logging.Must(cfg.Log)
	defer logger.Sync()

	logger.Info("starting collatzgraph server", zap.String("config", path))
	for _, line := range strings.Split(cfg.Summary(), "\n") {
		logger.Info(line)
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer repo.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	runner, err := app.NewRunner(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build runner", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize event bus and SSE hub
	eventBus := service.NewEventBus()
	sseHub := hub.New(logger)
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(string(event.Type), event)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Initialize services
	limits := app.Limits(cfg)
	levelSvc := service.NewLevelService(limits, logger)
	statsSvc := service.NewStatsService(repo, runner, eventBus, limits, logger)
	defer statsSvc.Close()

	// Hot-reload limits, partition settings and the local worker pool size
	if path != "" {
		w := watcher.New(path, func() {
			next, _, err := config.LoadFromPath(path)
			if err != nil {
				logger.Warn("config reload failed, keeping current settings", zap.Error(err))
				return
			}
			if next.Dispatch.Mode != cfg.Dispatch.Mode {
				logger.Warn("dispatch mode change needs a restart",
					zap.String("current", cfg.Dispatch.Mode), zap.String("configured", next.Dispatch.Mode))
			}
			newLimits := app.Limits(next)
			levelSvc.SetLimits(newLimits)
			statsSvc.SetLimits(newLimits)
			runner.UpdateSettings(app.Settings(next))
			logger.Info("config reloaded")
			eventBus.Publish(service.Event{Type: service.EventConfigReloaded, Payload: newLimits})
		}, logger)
		go func() {
			if err := w.Watch(ctx); err != nil && err != context.Canceled {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	// Setup routes
	mux := http.NewServeMux()
	handler.Register(mux,
		handler.NewLevelHandler(levelSvc, logger),
		handler.NewRunHandler(statsSvc, logger),
		sseHub,
		promhttp.Handler())

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover(logger),
		handler.CORS,
		handler.Logger(logger.Named("http")),
	)

	// Create server; no write timeout so SSE streams and long runs survive
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           finalHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Stop background sweeps, the watcher and SSE streams
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
}

// loadConfig reads the config at path, or searches the standard locations
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}
