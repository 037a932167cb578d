// Package lattice builds the voxel topologies fed to the occupancy store.
package lattice

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/offlattice/components"
)

// Topology is a set of voxel positions and the adjacency pairs joining them.
type Topology struct {
	Positions []r3.Vec
	Pairs     []components.Pair
}

// Square builds a planar cols x rows lattice in the z=0 plane with
// 4-neighbour adjacency. Coordinate y*cols+x sits at (x, y) * spacing.
// With periodic set, rows and columns wrap; a dimension needs at least three
// sites to wrap without duplicating a pair.
func Square(cols, rows int, spacing float64, periodic bool) (Topology, error) {
	if cols <= 0 || rows <= 0 {
		return Topology{}, fmt.Errorf("lattice: invalid size %dx%d", cols, rows)
	}
	if spacing <= 0 {
		return Topology{}, fmt.Errorf("lattice: spacing must be positive, got %v", spacing)
	}

	topo := Topology{Positions: make([]r3.Vec, 0, cols*rows)}
	at := func(x, y int) components.Coordinate { return components.Coordinate(y*cols + x) }

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			topo.Positions = append(topo.Positions, r3.Vec{X: float64(x) * spacing, Y: float64(y) * spacing})
			if x+1 < cols {
				topo.Pairs = append(topo.Pairs, components.Pair{A: at(x, y), B: at(x+1, y)})
			} else if periodic && cols > 2 {
				topo.Pairs = append(topo.Pairs, components.Pair{A: at(x, y), B: at(0, y)})
			}
			if y+1 < rows {
				topo.Pairs = append(topo.Pairs, components.Pair{A: at(x, y), B: at(x, y+1)})
			} else if periodic && rows > 2 {
				topo.Pairs = append(topo.Pairs, components.Pair{A: at(x, y), B: at(x, 0)})
			}
		}
	}
	return topo, nil
}

// Size returns the number of voxels.
func (t Topology) Size() int { return len(t.Positions) }

// topologyFile is the on-disk layout:
//
//	positions: [[x, y, z], ...]
//	pairs: [[a, b], ...]
type topologyFile struct {
	Positions [][]float64 `yaml:"positions"`
	Pairs     [][]int     `yaml:"pairs"`
}

// Load reads a topology from a YAML file. Pair indices are checked against
// the number of positions.
func Load(path string) (Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("reading topology file: %w", err)
	}
	var f topologyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Topology{}, fmt.Errorf("parsing topology file: %w", err)
	}

	topo := Topology{
		Positions: make([]r3.Vec, len(f.Positions)),
		Pairs:     make([]components.Pair, len(f.Pairs)),
	}
	for i, p := range f.Positions {
		if len(p) != 3 {
			return Topology{}, fmt.Errorf("topology position %d: want 3 components, got %d", i, len(p))
		}
		topo.Positions[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	n := len(topo.Positions)
	for i, p := range f.Pairs {
		if len(p) != 2 {
			return Topology{}, fmt.Errorf("topology pair %d: want 2 indices, got %d", i, len(p))
		}
		if p[0] < 0 || p[0] >= n || p[1] < 0 || p[1] >= n {
			return Topology{}, fmt.Errorf("topology pair %d: (%d, %d) outside [0, %d)", i, p[0], p[1], n)
		}
		topo.Pairs[i] = components.Pair{A: components.Coordinate(p[0]), B: components.Coordinate(p[1])}
	}
	return topo, nil
}

// WriteYAML writes the topology in the layout Load reads.
func (t Topology) WriteYAML(path string) error {
	f := topologyFile{
		Positions: make([][]float64, len(t.Positions)),
		Pairs:     make([][]int, len(t.Pairs)),
	}
	for i, p := range t.Positions {
		f.Positions[i] = []float64{p.X, p.Y, p.Z}
	}
	for i, p := range t.Pairs {
		f.Pairs[i] = []int{int(p.A), int(p.B)}
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling topology: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing topology file: %w", err)
	}
	return nil
}
