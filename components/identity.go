package components

import "fmt"

// ParticleID identifies a single particle. The zero value means "no
// particle" and is what unoccupied structure voxels carry.
type ParticleID struct {
	Lot    int32
	Serial uint64
}

// IsZero reports whether id is the null identity.
func (id ParticleID) IsZero() bool {
	return id == ParticleID{}
}

func (id ParticleID) String() string {
	return fmt.Sprintf("PID(%d:%d)", id.Lot, id.Serial)
}

// IDGenerator issues particle identities with increasing serials.
type IDGenerator struct {
	lot  int32
	next uint64
}

// NewIDGenerator creates a generator for the given lot.
func NewIDGenerator(lot int32) *IDGenerator {
	return &IDGenerator{lot: lot, next: 1}
}

// Next returns a fresh identity. It never returns the zero ID.
func (g *IDGenerator) Next() ParticleID {
	id := ParticleID{Lot: g.lot, Serial: g.next}
	g.next++
	return id
}
