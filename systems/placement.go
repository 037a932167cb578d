package systems

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/offlattice/components"
	"github.com/pthm-cable/offlattice/space"
)

// Placer creates walker entities and registers them in the store.
type Placer struct {
	mapper *ecs.Map1[components.Walker]
	space  *space.Space
	ids    *components.IDGenerator
	rng    *rand.Rand
}

// NewPlacer creates a placer for world w and store s.
func NewPlacer(w *ecs.World, s *space.Space, ids *components.IDGenerator, rng *rand.Rand) *Placer {
	return &Placer{
		mapper: ecs.NewMap1[components.Walker](w),
		space:  s,
		ids:    ids,
		rng:    rng,
	}
}

// Place puts count walkers of species info on random coordinates of its
// location pool. Coordinates holding a particle of the location species are
// never taken. It fails without placing anything if the location has fewer
// than count free coordinates.
func (p *Placer) Place(info components.MoleculeInfo, count int) error {
	if count == 0 {
		return nil
	}
	id, err := p.space.DeclareSpecies(info)
	if err != nil {
		return err
	}

	free := p.space.Free(p.space.Pool(id).Location())
	if len(free) < count {
		return fmt.Errorf("placing %d %s walkers: only %d free coordinates on %q",
			count, info.Species, len(free), info.Location)
	}
	p.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	for _, c := range free[:count] {
		pid := p.ids.Next()
		if _, err := p.space.Update(pid, components.NewVoxel(info, c)); err != nil {
			return fmt.Errorf("placing %s at %d: %w", info.Species, c, err)
		}
		w := components.Walker{
			PID:     pid,
			Species: info.Species,
			Coord:   c,
			Origin:  p.space.Position(c),
		}
		p.mapper.NewEntity(&w)
	}
	return nil
}
