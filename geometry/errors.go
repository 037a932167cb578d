package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a geometric query that has no answer for
	// the given input, e.g. a displacement that never leaves the triangle.
	ErrInvalidArgument = errors.New("geometry: invalid argument")

	// ErrUnreachable reports a sign classification that cannot happen for
	// on-plane input. Receiving it means the caller broke the barycentric
	// invariant; it must not be ignored.
	ErrUnreachable = errors.New("geometry: unreachable classification")
)

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}
