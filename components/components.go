// Package components defines the value types shared by the occupancy store,
// the ECS systems and telemetry.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Voxel describes what a coordinate holds: the species occupying it, its
// physical parameters and the name of the structure it sits on.
type Voxel struct {
	Species    string
	Coordinate Coordinate
	Radius     float64
	D          float64
	Location   string // "" means the vacant (bulk) structure
}

// Info returns the species metadata carried by the voxel.
func (v Voxel) Info() MoleculeInfo {
	return MoleculeInfo{Species: v.Species, Radius: v.Radius, D: v.D, Location: v.Location}
}

// NewVoxel places a species described by info at coordinate c.
func NewVoxel(info MoleculeInfo, c Coordinate) Voxel {
	return Voxel{
		Species:    info.Species,
		Coordinate: c,
		Radius:     info.Radius,
		D:          info.D,
		Location:   info.Location,
	}
}

// Particle is the continuous view of an occupied coordinate.
type Particle struct {
	Species  string
	Position r3.Vec
	Radius   float64
	D        float64
}
