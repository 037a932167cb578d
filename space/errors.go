package space

import "errors"

var (
	// ErrOutOfRange reports a coordinate outside [0, Size()).
	ErrOutOfRange = errors.New("space: coordinate out of range")

	// ErrIllegalState reports inconsistent registration: a bad adjacency
	// table, a species reused as a structure, or conflicting declarations.
	ErrIllegalState = errors.New("space: illegal state")

	// ErrNotSupported reports a placement that violates the substrate
	// constraint of the species being placed.
	ErrNotSupported = errors.New("space: not supported")
)
