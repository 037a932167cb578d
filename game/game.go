// Package game wires the occupancy store, the ECS walkers and telemetry into
// a headless diffusion run.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/offlattice/components"
	"github.com/pthm-cable/offlattice/config"
	"github.com/pthm-cable/offlattice/lattice"
	"github.com/pthm-cable/offlattice/space"
	"github.com/pthm-cable/offlattice/systems"
	"github.com/pthm-cable/offlattice/telemetry"
)

// Options configures a run beyond what the config file holds.
type Options struct {
	Seed        int64
	LogStats    bool
	OutputDir   string // empty = no CSV output
	SnapshotDir string // empty = no JSON snapshots
	Logger      *slog.Logger
}

// Game is one diffusion run.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	world     *ecs.World
	space     *space.Space
	diffusion *systems.DiffusionSystem

	rng  *rand.Rand
	seed int64
	tick int

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func([]telemetry.WindowStats)

	logStats    bool
	snapshotDir string
}

// NewGameWithOptions builds the topology, declares structures and species
// and places every walker.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	topo, err := buildTopology(cfg)
	if err != nil {
		return nil, err
	}
	s, err := space.NewWithTopology(cfg.Space.VoxelRadius, topo.Positions, topo.Pairs, space.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("building store: %w", err)
	}
	if err := declareStructures(s, cfg.Structures); err != nil {
		return nil, err
	}

	g := &Game{
		cfg:           cfg,
		logger:        logger,
		world:         ecs.NewWorld(),
		space:         s,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		seed:          opts.Seed,
		collector:     telemetry.NewCollector(cfg.Telemetry.SnapshotInterval),
		perfCollector: telemetry.NewPerfCollector(),
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
	}

	placer := systems.NewPlacer(g.world, s, components.NewIDGenerator(1), g.rng)
	for _, sp := range cfg.Species {
		info := components.MoleculeInfo{Species: sp.Name, Radius: sp.Radius, D: sp.D, Location: sp.Location}
		if err := placer.Place(info, sp.Count); err != nil {
			return nil, err
		}
	}
	if err := s.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("after placement: %w", err)
	}

	g.diffusion = systems.NewDiffusionSystem(g.world, s, g.rng)
	g.diffusion.SetRecorder(g.collector)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config", "error", err)
	}
	g.writeOccupancy()

	logger.Info("run initialized",
		"voxels", s.Size(),
		"pools", len(s.Pools()),
		"walkers", s.NumParticles(),
		"seed", opts.Seed,
	)
	return g, nil
}

func buildTopology(cfg *config.Config) (lattice.Topology, error) {
	if cfg.Lattice.Topology != "" {
		return lattice.Load(cfg.Lattice.Topology)
	}
	return lattice.Square(cfg.Lattice.Columns, cfg.Lattice.Rows, cfg.Derived.Spacing, cfg.Lattice.Periodic)
}

func declareStructures(s *space.Space, structures []config.StructureConfig) error {
	for _, st := range structures {
		if _, err := s.DeclareStructure(st.Name, st.Location); err != nil {
			return err
		}
		if st.First+st.Count > s.Size() {
			return fmt.Errorf("structure %q covers [%d, %d) beyond %d voxels", st.Name, st.First, st.First+st.Count, s.Size())
		}
		for c := st.First; c < st.First+st.Count; c++ {
			if err := s.AssignStructure(components.Coordinate(c), st.Name); err != nil {
				return fmt.Errorf("structure %q: %w", st.Name, err)
			}
		}
	}
	return nil
}

// Step runs one hop attempt for every walker. At the end of each telemetry
// window the store is audited and stats are flushed.
func (g *Game) Step() error {
	start := time.Now()
	hops := g.diffusion.Update()
	g.perfCollector.RecordDiffusion(hops, time.Since(start))
	g.tick++

	if g.collector.ShouldFlush(g.tick) {
		start = time.Now()
		err := g.space.CheckInvariants()
		g.perfCollector.RecordAudit(g.space.Size(), time.Since(start))
		if err != nil {
			return fmt.Errorf("step %d: %w", g.tick, err)
		}
		g.flushTelemetry()
	}
	return nil
}

// Run advances the walk by steps steps.
func (g *Game) Run(steps int) error {
	for i := 0; i < steps; i++ {
		if err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

// SetStatsCallback registers a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func([]telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Space returns the occupancy store.
func (g *Game) Space() *space.Space { return g.space }

// Walkers returns a copy of every walker component.
func (g *Game) Walkers() []components.Walker { return g.diffusion.Walkers() }

// Tick returns the number of completed steps.
func (g *Game) Tick() int { return g.tick }

// Unload closes the output files.
func (g *Game) Unload() error {
	return g.outputManager.Close()
}
