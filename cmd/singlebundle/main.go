package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pv/singlebundle/internal/combiner"
	"github.com/pv/singlebundle/internal/config"
	"github.com/pv/singlebundle/internal/livereload"
	"github.com/pv/singlebundle/internal/logger"
	"github.com/pv/singlebundle/internal/pipeline"
	"github.com/pv/singlebundle/internal/storage"
	"github.com/pv/singlebundle/internal/watcher"
)

func main() {
	cfg := config.Parse()

	// Initialize logger
	logger.Init(cfg.LogFormat, config.ParseLogLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		logger.Error("singlebundle failed", "dir", cfg.Dir, "error", err)
		os.Exit(1)
	}
}

// run владеет ресурсами процесса: отложенные Close/Shutdown выполняются до os.Exit в main
func run(cfg *config.Config) error {
	opts, err := cfg.CombinerOptions()
	if err != nil {
		return fmt.Errorf("invalid combiner options: %w", err)
	}
	plugin := combiner.NewPlugin(opts)

	// Create storage
	var store storage.Storage
	switch cfg.History {
	case config.StorageSQLite:
		store, err = storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("create SQLite storage: %w", err)
		}
		logger.Debug("Using SQLite history", "path", cfg.SQLitePath)
	default:
		store = storage.NewMemoryStorage()
	}
	defer store.Close()

	projectID := cfg.ProjectID()

	if cfg.ShowHistory {
		return printHistory(store, projectID, plugin.Config().OutputName, cfg.HistoryLimit)
	}

	// Live reload (только вместе с -watch)
	var notify pipeline.Broadcaster
	if cfg.LiveReloadAddr != "" {
		hub := livereload.NewHub()
		lrServer, err := livereload.Listen(cfg.LiveReloadAddr, hub)
		if err != nil {
			return fmt.Errorf("start live reload on %s: %w", cfg.LiveReloadAddr, err)
		}
		notify = hub
		go func() {
			if err := lrServer.Serve(); err != nil {
				logger.Error("Live reload server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := lrServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Live reload shutdown error", "error", err)
			}
		}()
	}

	p := pipeline.New(cfg.Dir, projectID, plugin, store, notify)
	p.RemoveOriginals = cfg.RemoveOriginals
	p.Retention = cfg.HistoryRetention

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("combine: %w", err)
	}

	if !cfg.Watch {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := watcher.New(cfg.Dir, cfg.WatchInterval, func(ctx context.Context) {
		if _, err := p.Run(); err != nil {
			logger.Error("Combine failed", "dir", cfg.Dir, "error", err)
		}
	}, p.Output())
	if err := w.MarkProcessed(); err != nil {
		logger.Warn("Failed to snapshot build output", "error", err)
	}
	go w.Run(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	return nil
}

func printHistory(store storage.Storage, projectID, output string, limit int) error {
	reports, err := store.Latest(projectID, output, limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println("no builds recorded for", output)
		return nil
	}
	for _, r := range reports {
		fmt.Printf("%s  %-12s %8d bytes  styles=[%s] scripts=[%s]\n",
			r.CreatedAt.Local().Format(time.DateTime),
			r.Output,
			r.Bytes,
			strings.Join(r.StyleNames, ", "),
			strings.Join(r.ScriptNames, ", "),
		)
	}
	return nil
}
