package components

import "gonum.org/v1/gonum/spatial/r3"

// Walker is the ECS component of a diffusing particle.
type Walker struct {
	PID     ParticleID
	Species string
	Coord   Coordinate
	Origin  r3.Vec // position at placement, for displacement statistics

	Accepted int // hops that moved the particle
	Rejected int // hops refused by the substrate constraint
}
