package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"playlist-crawler/internal/app"
	"playlist-crawler/internal/config"
)

const defaultURL = "https://youtube.com/playlist?list=PLhQjrBD2T381WAHyx1pq-sBfykqMBI7V4&si=TBcXJlHl6j42j8zs"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Parse Flags (allows running: ./scrape -url="https://www.youtube.com/playlist?list=..." -v)
	playlistURL := flag.String("url", defaultURL, "The playlist URL to scrape")
	headful := flag.Bool("headful", !cfg.Headless, "Show the browser window")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()
	cfg.Headless = !*headful
	if *verbose {
		cfg.LogLevel = "debug"
	}

	level, err := cfg.Level()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	// Logs go to stderr so stdout carries only the JSON result.
	logger := app.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, nil, logger)
	if err != nil {
		logger.Error("initialising crawler", slog.Any("error", err))
		os.Exit(1)
	}

	engineCtx, stopEngine := context.WithCancel(ctx)
	engineDone := make(chan struct{})
	go func() {
		a.Engine.Run(engineCtx)
		close(engineDone)
	}()

	result, err := a.Engine.Scrape(ctx, *playlistURL)
	stopEngine()
	<-engineDone
	if err != nil {
		logger.Error("scraping failed", slog.Any("error", err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("write result", slog.Any("error", err))
		os.Exit(1)
	}
}
