package space

import (
	"slices"

	"github.com/pthm-cable/offlattice/components"
)

// PoolID is a handle into the pool arena of a Space.
type PoolID int

// VacantID is the handle of the vacant pool. It exists in every Space.
const VacantID PoolID = 0

// Kind distinguishes how a pool tracks the coordinates it claims.
type Kind uint8

const (
	// KindVacant is the unique pool of unoccupied bulk voxels.
	KindVacant Kind = iota
	// KindStructure claims voxels without tracking occupants.
	KindStructure
	// KindMolecular tracks an (identity, coordinate) entry per voxel.
	KindMolecular
)

func (k Kind) String() string {
	switch k {
	case KindVacant:
		return "vacant"
	case KindStructure:
		return "structure"
	default:
		return "molecular"
	}
}

// Occupant pairs a particle identity with the coordinate it holds. Entries
// of anonymous substrate voxels carry the zero ParticleID.
type Occupant struct {
	PID   components.ParticleID
	Coord components.Coordinate
}

// Pool groups the coordinates claimed by one species. Membership is kept
// in step with the Space's coordinate table; only Space mutates a pool.
type Pool struct {
	id          PoolID
	kind        Kind
	info        components.MoleculeInfo
	location    PoolID
	placeholder bool

	occupants []Occupant
	index     map[components.Coordinate]int // coordinate -> position in occupants
}

func newPool(id PoolID, kind Kind, info components.MoleculeInfo, location PoolID) *Pool {
	p := &Pool{
		id:       id,
		kind:     kind,
		info:     info,
		location: location,
	}
	if kind == KindMolecular {
		p.index = make(map[components.Coordinate]int)
	}
	return p
}

// ID returns the pool's handle.
func (p *Pool) ID() PoolID { return p.id }

// Kind returns how the pool tracks its voxels.
func (p *Pool) Kind() Kind { return p.kind }

// Species returns the species name; "" for the vacant pool.
func (p *Pool) Species() string { return p.info.Species }

// Info returns the pool's physical metadata.
func (p *Pool) Info() components.MoleculeInfo { return p.info }

// Location returns the handle of the substrate pool. The vacant pool is
// its own location.
func (p *Pool) Location() PoolID { return p.location }

// IsVacant reports whether this is the vacant pool.
func (p *Pool) IsVacant() bool { return p.kind == KindVacant }

// IsStructure reports whether this is a structural pool.
func (p *Pool) IsStructure() bool { return p.kind == KindStructure }

// IsPlaceholder reports whether the pool was created as somebody's
// location before its own species was introduced.
func (p *Pool) IsPlaceholder() bool { return p.placeholder }

// Tracks reports whether the pool keeps an entry per claimed coordinate.
func (p *Pool) Tracks() bool { return p.kind == KindMolecular }

// Len returns the number of tracked entries.
func (p *Pool) Len() int { return len(p.occupants) }

// Occupants returns a copy of the tracked entries in iteration order.
func (p *Pool) Occupants() []Occupant { return slices.Clone(p.occupants) }

// Find returns the entry of pid. The zero ID is never found.
func (p *Pool) Find(pid components.ParticleID) (Occupant, bool) {
	if pid.IsZero() {
		return Occupant{}, false
	}
	for _, o := range p.occupants {
		if o.PID == pid {
			return o, true
		}
	}
	return Occupant{}, false
}

// Contains reports whether the pool tracks coordinate c.
func (p *Pool) Contains(c components.Coordinate) bool {
	_, ok := p.index[c]
	return ok
}

// ParticleAt returns the identity held at c, or the zero ID.
func (p *Pool) ParticleAt(c components.Coordinate) components.ParticleID {
	if i, ok := p.index[c]; ok {
		return p.occupants[i].PID
	}
	return components.ParticleID{}
}

// add registers an entry. It returns false if the coordinate is already
// tracked, which the Space treats as a bookkeeping bug.
func (p *Pool) add(o Occupant) bool {
	if !p.Tracks() {
		return true
	}
	if _, ok := p.index[o.Coord]; ok {
		return false
	}
	p.index[o.Coord] = len(p.occupants)
	p.occupants = append(p.occupants, o)
	return true
}

// remove drops the entry at c by swapping the last entry into its slot.
func (p *Pool) remove(c components.Coordinate) bool {
	if !p.Tracks() {
		return true
	}
	i, ok := p.index[c]
	if !ok {
		return false
	}
	last := len(p.occupants) - 1
	if i != last {
		p.occupants[i] = p.occupants[last]
		p.index[p.occupants[i].Coord] = i
	}
	p.occupants = p.occupants[:last]
	delete(p.index, c)
	return true
}

// replace moves the entry at from to to, keeping its identity. hint is the
// entry's expected position and is used when it matches.
func (p *Pool) replace(from, to components.Coordinate, hint int) bool {
	if !p.Tracks() {
		return true
	}
	i := hint
	if i < 0 || i >= len(p.occupants) || p.occupants[i].Coord != from {
		var ok bool
		if i, ok = p.index[from]; !ok {
			return false
		}
	}
	if _, taken := p.index[to]; taken {
		return false
	}
	p.occupants[i].Coord = to
	delete(p.index, from)
	p.index[to] = i
	return true
}

// clear forgets every entry.
func (p *Pool) clear() {
	p.occupants = p.occupants[:0]
	if p.index != nil {
		clear(p.index)
	}
}
