package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/offlattice/config"
	"github.com/pthm-cable/offlattice/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for JSON occupancy snapshots")
	seed := flag.Int64("seed", 0, "RNG seed (0 = walk.seed from config, then time-based)")
	steps := flag.Int("steps", 0, "Walk steps (0 = use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog (overrides telemetry.log_stats)")

	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	// JSON to stdout for structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Walk.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	numSteps := cfg.Walk.Steps
	if *steps > 0 {
		numSteps = *steps
	}

	g, err := game.NewGameWithOptions(cfg, game.Options{
		Seed:        rngSeed,
		LogStats:    *logStats || cfg.Telemetry.LogStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
		Logger:      logger,
	})
	if err != nil {
		slog.Error("failed to initialize run", "error", err)
		os.Exit(1)
	}

	slog.Info("starting walk", "seed", rngSeed, "steps", numSteps)
	start := time.Now()
	runErr := g.Run(numSteps)
	if err := g.Unload(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if runErr != nil {
		slog.Error("walk aborted", "tick", g.Tick(), "error", runErr)
		os.Exit(1)
	}
	slog.Info("walk finished",
		"tick", g.Tick(),
		"particles", g.Space().NumParticles(),
		"elapsed", time.Since(start),
	)
}
