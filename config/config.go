// Package config provides configuration loading and access for the diffusion harness.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all harness configuration parameters.
type Config struct {
	Space      SpaceConfig       `yaml:"space"`
	Lattice    LatticeConfig     `yaml:"lattice"`
	Structures []StructureConfig `yaml:"structures"`
	Species    []SpeciesConfig   `yaml:"species"`
	Walk       WalkConfig        `yaml:"walk"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SpaceConfig holds occupancy store parameters.
type SpaceConfig struct {
	VoxelRadius float64 `yaml:"voxel_radius"`
}

// LatticeConfig selects the voxel topology. A non-empty Topology path
// overrides the generated square lattice.
type LatticeConfig struct {
	Columns  int     `yaml:"columns"`
	Rows     int     `yaml:"rows"`
	Spacing  float64 `yaml:"spacing"` // 0 = twice the voxel radius
	Periodic bool    `yaml:"periodic"`
	Topology string  `yaml:"topology"`
}

// StructureConfig declares a substrate structure and the coordinates it covers.
type StructureConfig struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"` // "" = bulk
	First    int    `yaml:"first"`    // first covered coordinate
	Count    int    `yaml:"count"`    // number of consecutive coordinates
}

// SpeciesConfig declares a diffusing species and how many walkers to place.
type SpeciesConfig struct {
	Name     string  `yaml:"name"`
	Radius   float64 `yaml:"radius"` // 0 = voxel radius
	D        float64 `yaml:"d"`
	Location string  `yaml:"location"`
	Count    int     `yaml:"count"`
}

// WalkConfig holds random walk parameters.
type WalkConfig struct {
	Steps int   `yaml:"steps"`
	Seed  int64 `yaml:"seed"`
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	SnapshotInterval int  `yaml:"snapshot_interval"` // steps between occupancy snapshots
	LogStats         bool `yaml:"log_stats"`
}

// DerivedConfig holds values computed from other config fields.
type DerivedConfig struct {
	Spacing    float64
	NumWalkers int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file; lists are replaced whole.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Space.VoxelRadius <= 0 {
		return fmt.Errorf("config: space.voxel_radius must be positive, got %v", c.Space.VoxelRadius)
	}
	if c.Lattice.Topology == "" && (c.Lattice.Columns <= 0 || c.Lattice.Rows <= 0) {
		return fmt.Errorf("config: lattice needs columns and rows or a topology file")
	}
	seen := make(map[string]bool)
	for _, s := range c.Structures {
		if s.Name == "" || seen[s.Name] {
			return fmt.Errorf("config: structure name %q empty or repeated", s.Name)
		}
		if s.First < 0 || s.Count < 0 {
			return fmt.Errorf("config: structure %q has a negative range", s.Name)
		}
		seen[s.Name] = true
	}
	for _, s := range c.Species {
		if s.Name == "" || seen[s.Name] {
			return fmt.Errorf("config: species name %q empty or repeated", s.Name)
		}
		if s.Count < 0 || s.D < 0 {
			return fmt.Errorf("config: species %q has a negative count or D", s.Name)
		}
		seen[s.Name] = true
	}
	if c.Walk.Steps < 0 {
		return fmt.Errorf("config: walk.steps must not be negative")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Spacing = c.Lattice.Spacing
	if c.Derived.Spacing == 0 {
		c.Derived.Spacing = 2 * c.Space.VoxelRadius
	}

	c.Derived.NumWalkers = 0
	for i := range c.Species {
		sp := &c.Species[i]
		if sp.Radius == 0 {
			sp.Radius = c.Space.VoxelRadius
		}
		c.Derived.NumWalkers += sp.Count
	}

	if c.Telemetry.SnapshotInterval <= 0 {
		c.Telemetry.SnapshotInterval = c.Walk.Steps
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
