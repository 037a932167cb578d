package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.Space.VoxelRadius != 0.005 {
		t.Errorf("VoxelRadius = %v, want 0.005", cfg.Space.VoxelRadius)
	}
	if cfg.Derived.Spacing != 0.01 {
		t.Errorf("Derived.Spacing = %v, want 0.01", cfg.Derived.Spacing)
	}
	if cfg.Derived.NumWalkers != 160 {
		t.Errorf("Derived.NumWalkers = %d, want 160", cfg.Derived.NumWalkers)
	}
	for _, sp := range cfg.Species {
		if sp.Radius != cfg.Space.VoxelRadius {
			t.Errorf("species %s radius = %v, want voxel radius", sp.Name, sp.Radius)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	body := `
lattice:
  columns: 8
walk:
  steps: 20
telemetry:
  snapshot_interval: 0
species:
  - name: B
    d: 2
    count: 3
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lattice.Columns != 8 || cfg.Lattice.Rows != 30 {
		t.Errorf("lattice = %dx%d, want 8x30", cfg.Lattice.Columns, cfg.Lattice.Rows)
	}
	if len(cfg.Species) != 1 || cfg.Species[0].Name != "B" {
		t.Errorf("Species = %+v, want only B", cfg.Species)
	}
	if cfg.Telemetry.SnapshotInterval != 20 {
		t.Errorf("SnapshotInterval = %d, want steps (20)", cfg.Telemetry.SnapshotInterval)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero radius", "space:\n  voxel_radius: 0\n"},
		{"repeated name", "species:\n  - name: membrane\n"},
		{"negative count", "species:\n  - name: X\n    count: -1\n"},
		{"no lattice", "lattice:\n  columns: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Walk != cfg.Walk || back.Lattice != cfg.Lattice || len(back.Species) != len(cfg.Species) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, cfg)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() before Init() should panic")
		}
	}()
	Cfg()
}
