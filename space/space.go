// Package space implements the off-lattice occupancy store: a finite set of
// voxels with fixed positions and an explicit adjacency table, each voxel
// claimed by exactly one species pool.
//
// Every coordinate belongs to exactly one pool. Pools that track occupants
// hold an entry for exactly the coordinates that map to them; the vacant
// pool and structural pools claim coordinates without entries.
package space

import (
	"fmt"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/offlattice/components"
)

// Space is the occupancy store and pool registry. It is not safe for
// concurrent use.
type Space struct {
	voxelRadius float64

	positions  []r3.Vec
	adjoinings [][]components.Coordinate
	voxels     []PoolID // coordinate -> claiming pool

	pools  []*Pool
	byName map[string]PoolID

	logger *slog.Logger
}

// Option configures a Space.
type Option func(*Space)

// WithLogger sets the logger used for registry events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Space) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty store holding only the vacant pool.
func New(voxelRadius float64, opts ...Option) *Space {
	s := &Space{
		voxelRadius: voxelRadius,
		byName:      make(map[string]PoolID),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pools = []*Pool{newPool(VacantID, KindVacant, components.MoleculeInfo{}, VacantID)}
	return s
}

// NewWithTopology creates a store and resets it to the given topology.
func NewWithTopology(voxelRadius float64, positions []r3.Vec, pairs []components.Pair, opts ...Option) (*Space, error) {
	s := New(voxelRadius, opts...)
	if err := s.Reset(positions, pairs); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset replaces the topology. Every coordinate becomes vacant and every
// pool forgets its occupants; registered pools survive. On error the store
// is left untouched.
func (s *Space) Reset(positions []r3.Vec, pairs []components.Pair) error {
	n := len(positions)
	adj := make([][]components.Coordinate, n)
	for _, p := range pairs {
		if !inRange(p.A, n) || !inRange(p.B, n) {
			return fmt.Errorf("%w: adjacency pair (%d, %d) outside [0, %d)", ErrIllegalState, p.A, p.B, n)
		}
		adj[p.A] = append(adj[p.A], p.B)
		adj[p.B] = append(adj[p.B], p.A)
	}

	s.positions = slices.Clone(positions)
	s.adjoinings = adj
	s.voxels = make([]PoolID, n)
	for _, p := range s.pools {
		p.clear()
	}

	s.logger.Debug("space reset", "voxels", n, "pairs", len(pairs), "pools", len(s.pools))
	return nil
}

func inRange(c components.Coordinate, n int) bool {
	return c >= 0 && int(c) < n
}

// Size returns the number of voxels.
func (s *Space) Size() int { return len(s.voxels) }

// IsInRange reports whether c is a valid coordinate.
func (s *Space) IsInRange(c components.Coordinate) bool { return inRange(c, len(s.voxels)) }

// VoxelRadius returns the radius assigned to every voxel.
func (s *Space) VoxelRadius() float64 { return s.voxelRadius }

// Position returns the position of coordinate c. It panics if c is out of
// range.
func (s *Space) Position(c components.Coordinate) r3.Vec { return s.positions[c] }

// Neighbors returns the coordinates adjacent to c, in declaration order.
func (s *Space) Neighbors(c components.Coordinate) []components.Coordinate {
	return slices.Clone(s.adjoinings[c])
}

// NumNeighbors returns the number of coordinates adjacent to c.
func (s *Space) NumNeighbors(c components.Coordinate) int { return len(s.adjoinings[c]) }

// Neighbor returns the i-th neighbour of c.
func (s *Space) Neighbor(c components.Coordinate, i int) components.Coordinate {
	return s.adjoinings[c][i]
}

// NearestCoordinate returns the coordinate whose position is closest to p.
// Ties go to the lowest coordinate.
func (s *Space) NearestCoordinate(p r3.Vec) (components.Coordinate, error) {
	if len(s.positions) == 0 {
		return 0, fmt.Errorf("%w: nearest coordinate of an empty store", ErrOutOfRange)
	}
	best := components.Coordinate(0)
	bestDist := r3.Norm2(r3.Sub(s.positions[0], p))
	for i := 1; i < len(s.positions); i++ {
		if d := r3.Norm2(r3.Sub(s.positions[i], p)); d < bestDist {
			best, bestDist = components.Coordinate(i), d
		}
	}
	return best, nil
}

// Pool returns the pool with handle id.
func (s *Space) Pool(id PoolID) *Pool { return s.pools[id] }

// Pools returns every registered pool, the vacant pool first.
func (s *Space) Pools() []*Pool { return slices.Clone(s.pools) }

// PoolByName looks up a pool by species name. "" names the vacant pool.
func (s *Space) PoolByName(name string) (PoolID, bool) {
	if name == "" {
		return VacantID, true
	}
	id, ok := s.byName[name]
	return id, ok
}

// PoolOf returns the pool claiming c. It panics if c is out of range.
func (s *Space) PoolOf(c components.Coordinate) PoolID { return s.voxels[c] }

// Claimed returns the coordinates claimed by pool id in ascending order.
func (s *Space) Claimed(id PoolID) []components.Coordinate {
	var out []components.Coordinate
	for c, owner := range s.voxels {
		if owner == id {
			out = append(out, components.Coordinate(c))
		}
	}
	return out
}

// Free returns the coordinates claimed by pool id that hold no particle, in
// ascending order. For the vacant and structural pools this is Claimed.
func (s *Space) Free(id PoolID) []components.Coordinate {
	p := s.pools[id]
	var out []components.Coordinate
	for c, owner := range s.voxels {
		if owner == id && p.ParticleAt(components.Coordinate(c)).IsZero() {
			out = append(out, components.Coordinate(c))
		}
	}
	return out
}

// IsFree reports whether c holds no particle.
func (s *Space) IsFree(c components.Coordinate) bool {
	return s.pools[s.voxels[c]].ParticleAt(c).IsZero()
}

// NumParticles counts tracked entries with a non-zero identity.
func (s *Space) NumParticles() int {
	n := 0
	for _, p := range s.pools {
		for _, o := range p.occupants {
			if !o.PID.IsZero() {
				n++
			}
		}
	}
	return n
}

// List returns the entries of the named species, or nil if it is unknown.
func (s *Space) List(species string) []Occupant {
	id, ok := s.byName[species]
	if !ok {
		return nil
	}
	return s.pools[id].Occupants()
}

// location resolves a location name to a registered pool.
func (s *Space) location(name string) (PoolID, bool) {
	if name == "" {
		return VacantID, true
	}
	id, ok := s.byName[name]
	return id, ok
}

func (s *Space) register(kind Kind, info components.MoleculeInfo, location PoolID, placeholder bool) PoolID {
	id := PoolID(len(s.pools))
	p := newPool(id, kind, info, location)
	p.placeholder = placeholder
	s.pools = append(s.pools, p)
	s.byName[info.Species] = id
	s.logger.Debug("pool created",
		"species", info.Species,
		"kind", kind,
		"location", s.pools[location].info.Species,
		"placeholder", placeholder,
	)
	return id
}

// createMolecular registers a molecular pool for info, creating a
// placeholder for its location if that species is not yet known.
func (s *Space) createMolecular(info components.MoleculeInfo) PoolID {
	loc, ok := s.location(info.Location)
	if !ok {
		loc = s.register(KindMolecular, components.MoleculeInfo{Species: info.Location}, VacantID, true)
	}
	return s.register(KindMolecular, info, loc, false)
}

// refine fills in the parameters of a placeholder pool.
func (s *Space) refine(p *Pool, info components.MoleculeInfo) error {
	loc, ok := s.location(info.Location)
	if !ok || loc != p.location {
		return fmt.Errorf("%w: placeholder %q sits on %q, cannot relocate to %q",
			ErrIllegalState, p.info.Species, s.pools[p.location].info.Species, info.Location)
	}
	p.info = info
	p.placeholder = false
	s.logger.Debug("placeholder refined", "species", info.Species, "radius", info.Radius, "d", info.D)
	return nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty species name", ErrIllegalState)
	}
	return nil
}

// PoolFor returns the pool of info.Species, creating it (and a placeholder
// for its location) on first sight. Parameters seen first are kept; a
// placeholder is refined in place.
func (s *Space) PoolFor(info components.MoleculeInfo) (PoolID, error) {
	if err := checkName(info.Species); err != nil {
		return 0, err
	}
	id, ok := s.byName[info.Species]
	if !ok {
		return s.createMolecular(info), nil
	}
	p := s.pools[id]
	if p.kind == KindStructure {
		return 0, fmt.Errorf("%w: %q is a structure", ErrIllegalState, info.Species)
	}
	if p.placeholder {
		if err := s.refine(p, info); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// DeclareSpecies registers a species explicitly. Re-declaring it with
// different parameters or location fails.
func (s *Space) DeclareSpecies(info components.MoleculeInfo) (PoolID, error) {
	if err := checkName(info.Species); err != nil {
		return 0, err
	}
	id, ok := s.byName[info.Species]
	if !ok {
		return s.createMolecular(info), nil
	}
	p := s.pools[id]
	switch {
	case p.kind == KindStructure:
		return 0, fmt.Errorf("%w: %q is a structure", ErrIllegalState, info.Species)
	case p.placeholder:
		if err := s.refine(p, info); err != nil {
			return 0, err
		}
	case !p.info.SameParameters(info):
		return 0, fmt.Errorf("%w: %q already declared as %+v", ErrIllegalState, info.Species, p.info)
	}
	return id, nil
}

// DeclareStructure registers a structural pool named name on the given
// location. Structures must be declared before any species that uses them
// as location.
func (s *Space) DeclareStructure(name, location string) (PoolID, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	if id, ok := s.byName[name]; ok {
		p := s.pools[id]
		if p.kind == KindStructure && p.info.Location == location {
			return id, nil
		}
		return 0, fmt.Errorf("%w: %q already registered as %s", ErrIllegalState, name, p.kind)
	}
	loc, ok := s.location(location)
	if !ok {
		return 0, fmt.Errorf("%w: structure %q on unknown location %q", ErrIllegalState, name, location)
	}
	return s.register(KindStructure, components.MoleculeInfo{Species: name, Location: location}, loc, false), nil
}

// AssignStructure makes coordinate c part of the named structure. c must
// currently belong to the structure's location.
func (s *Space) AssignStructure(c components.Coordinate, name string) error {
	if !s.IsInRange(c) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, c)
	}
	id, ok := s.byName[name]
	if !ok || s.pools[id].kind != KindStructure {
		return fmt.Errorf("%w: %q is not a structure", ErrIllegalState, name)
	}
	st := s.pools[id]
	if s.voxels[c] != st.location {
		return fmt.Errorf("%w: coordinate %d is %q, structure %q needs %q", ErrNotSupported,
			c, s.pools[s.voxels[c]].info.Species, name, st.info.Location)
	}
	s.detach(c)
	s.voxels[c] = id
	return nil
}

// VoxelAt returns the identity and description of what occupies c.
func (s *Space) VoxelAt(c components.Coordinate) (components.ParticleID, components.Voxel, error) {
	if !s.IsInRange(c) {
		return components.ParticleID{}, components.Voxel{}, fmt.Errorf("%w: %d", ErrOutOfRange, c)
	}
	p := s.pools[s.voxels[c]]
	v := components.Voxel{
		Species:    p.info.Species,
		Coordinate: c,
		Radius:     p.info.Radius,
		D:          p.info.D,
		Location:   s.pools[p.location].info.Species,
	}
	return p.ParticleAt(c), v, nil
}

// ParticleAt returns the continuous view of what occupies c.
func (s *Space) ParticleAt(c components.Coordinate) (components.ParticleID, components.Particle, error) {
	pid, v, err := s.VoxelAt(c)
	if err != nil {
		return components.ParticleID{}, components.Particle{}, err
	}
	return pid, components.Particle{
		Species:  v.Species,
		Position: s.positions[c],
		Radius:   v.Radius,
		D:        v.D,
	}, nil
}

// Locate returns the coordinate of pid. The zero ID is never found.
func (s *Space) Locate(pid components.ParticleID) (components.Coordinate, bool) {
	if pid.IsZero() {
		return 0, false
	}
	for _, p := range s.pools {
		if o, ok := p.Find(pid); ok {
			return o.Coord, true
		}
	}
	return 0, false
}

// Update places pid as the voxel described by v. The species' location must
// be the pool currently claiming the target coordinate. If pid is already
// present it is moved and its old coordinate is handed back to its old
// pool's location; inserted is false in that case. A failed update leaves
// the store and the registry unchanged.
func (s *Space) Update(pid components.ParticleID, v components.Voxel) (inserted bool, err error) {
	to := v.Coordinate
	if !s.IsInRange(to) {
		return false, fmt.Errorf("%w: %d", ErrOutOfRange, to)
	}
	info := v.Info()
	if err := checkName(info.Species); err != nil {
		return false, err
	}

	// Resolve the required location without touching the registry.
	dest := s.voxels[to]
	want, known := s.location(info.Location)
	if id, ok := s.byName[info.Species]; ok {
		p := s.pools[id]
		if p.kind == KindStructure {
			return false, fmt.Errorf("%w: %q is a structure", ErrIllegalState, info.Species)
		}
		want, known = p.location, true
	}
	if !known || want != dest {
		return false, fmt.Errorf("%w: mismatched location, cannot place %q on %q at %d",
			ErrNotSupported, info.Species, s.pools[dest].info.Species, to)
	}

	id, err := s.PoolFor(info)
	if err != nil {
		return false, err
	}
	target := s.pools[id]

	if from, ok := s.Locate(pid); ok {
		old := s.pools[s.voxels[from]]
		if from == to {
			s.mustRemove(old, to)
		} else {
			s.mustRemove(old, from)
			s.claim(from, old.location, components.ParticleID{})
			s.detach(to)
		}
		s.claim(to, id, pid)
		s.logger.Debug("particle relocated", "pid", pid, "species", target.info.Species, "from", from, "to", to)
		return false, nil
	}

	s.detach(to)
	s.claim(to, id, pid)
	return true, nil
}

// Remove deletes pid and hands its coordinate back to its pool's location.
func (s *Space) Remove(pid components.ParticleID) bool {
	if pid.IsZero() {
		return false
	}
	for _, p := range s.pools {
		if o, ok := p.Find(pid); ok {
			s.mustRemove(p, o.Coord)
			s.claim(o.Coord, p.location, components.ParticleID{})
			return true
		}
	}
	return false
}

// RemoveAt empties coordinate c, handing it back to its pool's location. It
// reports false if c is already vacant.
func (s *Space) RemoveAt(c components.Coordinate) (bool, error) {
	if !s.IsInRange(c) {
		return false, fmt.Errorf("%w: %d", ErrOutOfRange, c)
	}
	p := s.pools[s.voxels[c]]
	if p.IsVacant() {
		return false, nil
	}
	s.mustRemove(p, c)
	s.claim(c, p.location, components.ParticleID{})
	return true, nil
}

// CanMove reports whether the occupant of src may swap with dst: both in
// range and distinct, src not vacant, and dst claimed by src's location.
func (s *Space) CanMove(src, dst components.Coordinate) bool {
	if !s.IsInRange(src) || !s.IsInRange(dst) || src == dst {
		return false
	}
	p := s.pools[s.voxels[src]]
	return !p.IsVacant() && s.voxels[dst] == p.location
}

// Move swaps the occupant of src with the location voxel at dst. hint is
// the expected index of the src entry in its pool, or -1.
func (s *Space) Move(src, dst components.Coordinate, hint int) (bool, error) {
	if !s.IsInRange(src) {
		return false, fmt.Errorf("%w: %d", ErrOutOfRange, src)
	}
	if !s.IsInRange(dst) {
		return false, fmt.Errorf("%w: %d", ErrOutOfRange, dst)
	}
	if !s.CanMove(src, dst) {
		return false, nil
	}
	s.swap(src, dst, hint)
	return true, nil
}

// MoveToNeighbor moves occ, a member of pool src, to its choice-th
// neighbour if that neighbour is claimed by loc. It returns the neighbour
// coordinate and whether the move happened.
func (s *Space) MoveToNeighbor(src, loc PoolID, occ Occupant, choice int) (components.Coordinate, bool) {
	from := occ.Coord
	if !s.IsInRange(from) || choice < 0 || choice >= len(s.adjoinings[from]) {
		return from, false
	}
	to := s.adjoinings[from][choice]
	if s.voxels[to] != loc || s.voxels[from] != src || src == loc {
		return to, false
	}
	s.swap(from, to, -1)
	return to, true
}

func (s *Space) swap(src, dst components.Coordinate, hint int) {
	srcID, dstID := s.voxels[src], s.voxels[dst]
	if !s.pools[srcID].replace(src, dst, hint) {
		s.invariantViolation("replace failed", "pool", s.pools[srcID].info.Species, "from", src, "to", dst)
	}
	if !s.pools[dstID].replace(dst, src, -1) {
		s.invariantViolation("replace failed", "pool", s.pools[dstID].info.Species, "from", dst, "to", src)
	}
	s.voxels[src], s.voxels[dst] = dstID, srcID
}

// claim assigns c to pool id, registering an entry if the pool tracks one.
func (s *Space) claim(c components.Coordinate, id PoolID, pid components.ParticleID) {
	p := s.pools[id]
	if !p.add(Occupant{PID: pid, Coord: c}) {
		s.invariantViolation("duplicate entry", "pool", p.info.Species, "coordinate", c)
	}
	s.voxels[c] = id
}

// detach drops the entry of whichever pool currently claims c.
func (s *Space) detach(c components.Coordinate) {
	s.mustRemove(s.pools[s.voxels[c]], c)
}

func (s *Space) mustRemove(p *Pool, c components.Coordinate) {
	if !p.remove(c) {
		s.invariantViolation("missing entry", "pool", p.info.Species, "coordinate", c)
	}
}

func (s *Space) invariantViolation(msg string, args ...any) {
	s.logger.Error("pool bookkeeping: "+msg, args...)
	panic(fmt.Sprintf("space: pool bookkeeping: %s %v", msg, args))
}

// CheckInvariants verifies that the coordinate table and the pool entries
// agree in both directions and that no identity appears twice.
func (s *Space) CheckInvariants() error {
	for c, id := range s.voxels {
		if id < 0 || int(id) >= len(s.pools) {
			return fmt.Errorf("%w: coordinate %d claimed by unknown pool %d", ErrIllegalState, c, id)
		}
		p := s.pools[id]
		if p.Tracks() && !p.Contains(components.Coordinate(c)) {
			return fmt.Errorf("%w: coordinate %d claimed by %q without an entry", ErrIllegalState, c, p.info.Species)
		}
	}

	seen := make(map[components.ParticleID]PoolID)
	for _, p := range s.pools {
		if !p.Tracks() {
			if len(p.occupants) != 0 {
				return fmt.Errorf("%w: untracked pool %q holds entries", ErrIllegalState, p.info.Species)
			}
			continue
		}
		if len(p.index) != len(p.occupants) {
			return fmt.Errorf("%w: pool %q index has %d keys for %d entries",
				ErrIllegalState, p.info.Species, len(p.index), len(p.occupants))
		}
		for i, o := range p.occupants {
			if !s.IsInRange(o.Coord) || s.voxels[o.Coord] != p.id {
				return fmt.Errorf("%w: pool %q has an entry at %d it does not claim", ErrIllegalState, p.info.Species, o.Coord)
			}
			if p.index[o.Coord] != i {
				return fmt.Errorf("%w: pool %q index of %d is stale", ErrIllegalState, p.info.Species, o.Coord)
			}
			if o.PID.IsZero() {
				continue
			}
			if other, dup := seen[o.PID]; dup {
				return fmt.Errorf("%w: %v held by %q and %q", ErrIllegalState, o.PID,
					s.pools[other].info.Species, p.info.Species)
			}
			seen[o.PID] = p.id
		}
	}
	return nil
}
