package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/offlattice/components"
	"github.com/pthm-cable/offlattice/space"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// OccupancyRecord describes what one coordinate holds at a given step.
type OccupancyRecord struct {
	Step       int     `csv:"step" json:"step"`
	Coordinate int     `csv:"coordinate" json:"coordinate"`
	Species    string  `csv:"species" json:"species"`
	Location   string  `csv:"location" json:"location"`
	PID        string  `csv:"pid" json:"pid,omitempty"` // empty for anonymous voxels
	X          float64 `csv:"x" json:"x"`
	Y          float64 `csv:"y" json:"y"`
	Z          float64 `csv:"z" json:"z"`
}

// PoolRecord summarises one pool at a given step.
type PoolRecord struct {
	Step        int    `csv:"step"`
	Species     string `csv:"species"`
	Kind        string `csv:"kind"`
	Location    string `csv:"location"`
	Placeholder bool   `csv:"placeholder"`
	Entries     int    `csv:"entries"`
	Claimed     int    `csv:"claimed"`
}

// CaptureOccupancy records every coordinate of s.
func CaptureOccupancy(step int, s *space.Space) ([]OccupancyRecord, error) {
	records := make([]OccupancyRecord, 0, s.Size())
	for i := 0; i < s.Size(); i++ {
		c := components.Coordinate(i)
		pid, v, err := s.VoxelAt(c)
		if err != nil {
			return nil, fmt.Errorf("capture coordinate %d: %w", c, err)
		}
		pos := s.Position(c)
		rec := OccupancyRecord{
			Step:       step,
			Coordinate: i,
			Species:    v.Species,
			Location:   v.Location,
			X:          pos.X,
			Y:          pos.Y,
			Z:          pos.Z,
		}
		if !pid.IsZero() {
			rec.PID = pid.String()
		}
		records = append(records, rec)
	}
	return records, nil
}

// CapturePools summarises every pool of s, the vacant pool first.
func CapturePools(step int, s *space.Space) []PoolRecord {
	claimed := make(map[space.PoolID]int)
	for i := 0; i < s.Size(); i++ {
		claimed[s.PoolOf(components.Coordinate(i))]++
	}

	pools := s.Pools()
	records := make([]PoolRecord, 0, len(pools))
	for _, p := range pools {
		records = append(records, PoolRecord{
			Step:        step,
			Species:     p.Species(),
			Kind:        p.Kind().String(),
			Location:    s.Pool(p.Location()).Species(),
			Placeholder: p.IsPlaceholder(),
			Entries:     p.Len(),
			Claimed:     claimed[p.ID()],
		})
	}
	return records
}

// Snapshot holds the occupancy of a store at one step.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`
	Step    int   `json:"step"`

	Voxels []OccupancyRecord `json:"voxels"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Step))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
