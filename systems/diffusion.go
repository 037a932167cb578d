// Package systems provides the ECS systems of the diffusion harness.
package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/offlattice/components"
	"github.com/pthm-cable/offlattice/space"
)

// HopRecorder receives the outcome of every hop attempt.
type HopRecorder interface {
	RecordHop(species string, accepted bool)
}

// DiffusionSystem gives every walker one hop attempt per update: a random
// neighbour is picked and the walker moves there if the neighbour belongs to
// the walker's location pool and holds no other particle.
type DiffusionSystem struct {
	filter   ecs.Filter1[components.Walker]
	space    *space.Space
	rng      *rand.Rand
	recorder HopRecorder
}

// NewDiffusionSystem creates a new diffusion system over the walkers of w.
func NewDiffusionSystem(w *ecs.World, s *space.Space, rng *rand.Rand) *DiffusionSystem {
	return &DiffusionSystem{
		filter: *ecs.NewFilter1[components.Walker](w),
		space:  s,
		rng:    rng,
	}
}

// SetRecorder sets where hop outcomes are reported.
func (d *DiffusionSystem) SetRecorder(r HopRecorder) {
	d.recorder = r
}

// Update runs one hop attempt for every walker and returns the number of
// attempts. Immobile species (D == 0) are skipped.
func (d *DiffusionSystem) Update() int {
	attempts := 0
	query := d.filter.Query()
	for query.Next() {
		w := query.Get()

		id, ok := d.space.PoolByName(w.Species)
		if !ok {
			continue
		}
		pool := d.space.Pool(id)
		if pool.Info().D == 0 {
			continue
		}

		n := d.space.NumNeighbors(w.Coord)
		accepted := false
		if n > 0 {
			choice := d.rng.Intn(n)
			// Swapping with another walker would leave its component stale.
			if d.space.IsFree(d.space.Neighbor(w.Coord, choice)) {
				occ := space.Occupant{PID: w.PID, Coord: w.Coord}
				var dst components.Coordinate
				dst, accepted = d.space.MoveToNeighbor(id, pool.Location(), occ, choice)
				if accepted {
					w.Coord = dst
				}
			}
		}

		attempts++
		if accepted {
			w.Accepted++
		} else {
			w.Rejected++
		}
		if d.recorder != nil {
			d.recorder.RecordHop(w.Species, accepted)
		}
	}
	return attempts
}

// Displacements returns, per species, the distance of every walker from the
// position it was placed at.
func (d *DiffusionSystem) Displacements() map[string][]float64 {
	out := make(map[string][]float64)
	query := d.filter.Query()
	for query.Next() {
		w := query.Get()
		dist := r3.Norm(r3.Sub(d.space.Position(w.Coord), w.Origin))
		out[w.Species] = append(out[w.Species], dist)
	}
	return out
}

// Walkers returns a copy of every walker component.
func (d *DiffusionSystem) Walkers() []components.Walker {
	var out []components.Walker
	query := d.filter.Query()
	for query.Next() {
		out = append(out, *query.Get())
	}
	return out
}
