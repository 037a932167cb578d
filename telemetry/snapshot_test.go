package telemetry

import (
	"io"
	"log/slog"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/offlattice/components"
	"github.com/pthm-cable/offlattice/space"
)

// testSpace is a three-voxel line with a membrane at coordinate 0 and one
// A particle at coordinate 2.
func testSpace(t *testing.T) *space.Space {
	t.Helper()
	s, err := space.NewWithTopology(0.5,
		[]r3.Vec{{}, {X: 1}, {X: 2}},
		[]components.Pair{{A: 0, B: 1}, {A: 1, B: 2}},
		space.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.DeclareStructure("membrane", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.AssignStructure(0, "membrane"); err != nil {
		t.Fatal(err)
	}
	a := components.MoleculeInfo{Species: "A", Radius: 0.5, D: 1}
	if _, err := s.Update(components.ParticleID{Serial: 7}, components.NewVoxel(a, 2)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCaptureOccupancy(t *testing.T) {
	records, err := CaptureOccupancy(5, testSpace(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	want := []struct {
		species string
		hasPID  bool
	}{
		{"membrane", false},
		{"", false},
		{"A", true},
	}
	for i, w := range want {
		r := records[i]
		if r.Step != 5 || r.Coordinate != i || r.Species != w.species {
			t.Errorf("record %d = %+v, want species %q", i, r, w.species)
		}
		if (r.PID != "") != w.hasPID {
			t.Errorf("record %d PID = %q", i, r.PID)
		}
	}
	if records[2].X != 2 {
		t.Errorf("record 2 X = %v, want 2", records[2].X)
	}
}

func TestCapturePools(t *testing.T) {
	records := CapturePools(1, testSpace(t))
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	byName := make(map[string]PoolRecord)
	for _, r := range records {
		byName[r.Species] = r
	}
	if v := byName[""]; v.Kind != "vacant" || v.Claimed != 1 {
		t.Errorf("vacant = %+v", v)
	}
	if m := byName["membrane"]; m.Kind != "structure" || m.Claimed != 1 || m.Entries != 0 {
		t.Errorf("membrane = %+v", m)
	}
	if a := byName["A"]; a.Kind != "molecular" || a.Claimed != 1 || a.Entries != 1 {
		t.Errorf("A = %+v", a)
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	voxels, err := CaptureOccupancy(40, testSpace(t))
	if err != nil {
		t.Fatal(err)
	}
	snapshot := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: 42,
		Step:    40,
		Voxels:  voxels,
	}

	path, err := SaveSnapshot(snapshot, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if loaded.RNGSeed != 42 || loaded.Step != 40 {
		t.Errorf("loaded header = %+v", loaded)
	}
	if len(loaded.Voxels) != len(voxels) {
		t.Fatalf("voxels = %d, want %d", len(loaded.Voxels), len(voxels))
	}
	for i := range voxels {
		if loaded.Voxels[i] != voxels[i] {
			t.Errorf("voxel %d = %+v, want %+v", i, loaded.Voxels[i], voxels[i])
		}
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion + 1}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for a newer snapshot version")
	}
}
