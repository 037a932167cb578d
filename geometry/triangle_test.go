package geometry

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestTriangleBasics(t *testing.T) {
	tri := NewTriangle(r3.Vec{}, r3.Vec{X: 3}, r3.Vec{Y: 4})

	if got := tri.Area(); !scalar.EqualWithinAbs(got, 6, 1e-12) {
		t.Errorf("Area = %v, want 6", got)
	}
	if got := tri.Normal(); !vecNear(got, r3.Vec{Z: 1}, 1e-12) {
		t.Errorf("Normal = %v, want (0, 0, 1)", got)
	}

	lengths := tri.EdgeLengths()
	want := [3]float64{3, 5, 4}
	for i := range want {
		if !scalar.EqualWithinAbs(lengths[i], want[i], 1e-12) {
			t.Errorf("EdgeLengths[%d] = %v, want %v", i, lengths[i], want[i])
		}
	}

	if got := Centroid(tri); !vecNear(got, r3.Vec{X: 1, Y: 4.0 / 3}, 1e-12) {
		t.Errorf("Centroid = %v, want (1, 4/3, 0)", got)
	}
	if got := Incenter(tri); !vecNear(got, r3.Vec{X: 1, Y: 1}, 1e-12) {
		t.Errorf("Incenter = %v, want (1, 1, 0)", got)
	}
	if got := ProjectToPlane(r3.Vec{X: 1, Y: 1, Z: 5}, tri); !vecNear(got, r3.Vec{X: 1, Y: 1}, 1e-12) {
		t.Errorf("ProjectToPlane = %v, want (1, 1, 0)", got)
	}
}

func TestMatchEdge(t *testing.T) {
	tri := NewTriangle(r3.Vec{}, r3.Vec{X: 3}, r3.Vec{Y: 4})

	tests := []struct {
		vec  r3.Vec
		want int
	}{
		{r3.Vec{X: 3}, 0},
		{r3.Vec{X: -3, Y: 4}, 1},
		{r3.Vec{Y: -4}, 2},
	}
	for _, tt := range tests {
		got, err := MatchEdge(tt.vec, tri)
		if err != nil {
			t.Fatalf("MatchEdge(%v) error: %v", tt.vec, err)
		}
		if got != tt.want {
			t.Errorf("MatchEdge(%v) = %d, want %d", tt.vec, got, tt.want)
		}
	}

	if _, err := MatchEdge(r3.Vec{X: 1, Y: 1, Z: 1}, tri); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("MatchEdge(no match) err = %v, want ErrInvalidArgument", err)
	}
}

func TestCrossSectionUsesOppositeComponent(t *testing.T) {
	pos := Barycentric{0.2, 0.3, 0.5}
	disp := Barycentric{-0.4, -0.6, 1.0}

	// Edge 0 is opposite component 2, edge 1 opposite 0, edge 2 opposite 1.
	want := [3]float64{-0.5 / 1.0, -0.2 / -0.4, -0.3 / -0.6}
	for e := 0; e < 3; e++ {
		if got := CrossSection(pos, disp, e); !scalar.EqualWithinAbs(got, want[e], 1e-12) {
			t.Errorf("CrossSection(edge %d) = %v, want %v", e, got, want[e])
		}
	}
}
