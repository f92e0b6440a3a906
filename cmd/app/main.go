package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"crisisdrill/internal/api"
	"crisisdrill/internal/config"
	"crisisdrill/internal/ingest"
	"crisisdrill/internal/scenario"
	"crisisdrill/internal/seed"
	"crisisdrill/internal/stream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("failed to resolve timezone: %v", err)
	}

	store := scenario.NewStore()
	parser := ingest.NewParser(loc)

	// Load the timetable present at startup, if any. A broken or absent
	// file leaves the store empty instead of killing the process.
	if cfg.Scenario.Path != "" {
		if err := loadInitial(store, parser, cfg.Scenario.Path); err != nil {
			logger.Warn("startup timetable not loaded", "path", cfg.Scenario.Path, "err", err)
		}
	}

	dispatcher := stream.NewDispatcher(store, logger)
	dispatcher.Interval = cfg.Scenario.PollInterval

	server := api.NewServer(cfg, loc, store, parser, dispatcher, seed.NewFeed(loc), logger)

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Port)
		if err := server.Start(cfg.Server.Port); err != nil {
			logger.Error("server stopped", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	server.Shutdown()
}

func loadInitial(store *scenario.Store, parser *ingest.Parser, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := ingest.ReadTable(f, path)
	if err != nil {
		return err
	}
	snap, err := parser.ParseScenario(table)
	if err != nil {
		return err
	}
	store.Replace(snap)
	return nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
