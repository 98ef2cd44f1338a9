package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playlist-crawler/internal/app"
	"playlist-crawler/internal/config"
	"playlist-crawler/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Parse Flags (allows running: ./server -addr=:8080 -workers=4)
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address")
	workers := flag.Int("workers", cfg.Workers, "Number of concurrent crawls")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()
	cfg.HTTPAddr = *addr
	cfg.Workers = *workers
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logger := app.NewLogger(os.Stdout, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = waitForDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Could not connect to DB after retries", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()
	}

	a, err := app.Build(ctx, cfg, db, logger)
	if err != nil {
		logger.Error("initialising crawler", slog.Any("error", err))
		os.Exit(1)
	}

	// The engine outlives the signal so in-flight requests can drain.
	engineCtx, stopEngine := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	go func() {
		a.Engine.Run(engineCtx)
		close(engineDone)
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()
	logger.Info("Server listening", slog.String("addr", cfg.HTTPAddr), slog.Int("workers", cfg.Workers))

	// Block here until a signal is received
	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", slog.Any("error", err))
	}
	stopEngine()
	<-engineDone
}

func waitForDB(ctx context.Context, url string, logger *slog.Logger) (*sql.DB, error) {
	var err error
	for i := 0; i < 10; i++ {
		var db *sql.DB
		db, err = sql.Open(storage.DriverName, url)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				logger.Info("Connected to database")
				return db, nil
			}
			db.Close()
		}
		logger.Info("Waiting for DB...", slog.Any("error", err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, err
}
