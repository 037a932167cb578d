package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTolerance bounds |u+v+w-1| for a coordinate to count as on-plane.
const DefaultTolerance = 1e-10

// Barycentric holds the weights (u, v, w) of a point relative to the three
// vertices of a triangle. Positions sum to 1; displacements sum to 0.
type Barycentric [3]float64

// Add returns b + o. Adding a displacement to a position keeps it on-plane.
func (b Barycentric) Add(o Barycentric) Barycentric {
	return Barycentric{b[0] + o[0], b[1] + o[1], b[2] + o[2]}
}

// Sub returns b - o.
func (b Barycentric) Sub(o Barycentric) Barycentric {
	return Barycentric{b[0] - o[0], b[1] - o[1], b[2] - o[2]}
}

// Sum returns u + v + w.
func (b Barycentric) Sum() float64 {
	return b[0] + b[1] + b[2]
}

// OnPlane reports whether the components sum to 1 within tol.
func (b Barycentric) OnPlane(tol float64) bool {
	return math.Abs(b.Sum()-1) < tol
}

// IsInside reports whether b is on-plane and every component is in [0, 1].
func (b Barycentric) IsInside() bool {
	return b.IsInsideTol(0)
}

// IsInsideTol is IsInside with the [0, 1] bounds widened by tol on both
// sides. The on-plane test always uses DefaultTolerance.
func (b Barycentric) IsInsideTol(tol float64) bool {
	if !b.OnPlane(DefaultTolerance) {
		return false
	}
	for _, c := range b {
		if c < -tol || c > 1+tol {
			return false
		}
	}
	return true
}

func (b Barycentric) String() string {
	return fmt.Sprintf("%g, %g, %g", b[0], b[1], b[2])
}

// opposite returns the barycentric component that reaches zero on edge e.
// Edge e joins vertices e and e+1, so the component of the remaining vertex
// vanishes there.
func opposite(edge int) int {
	if edge == 0 {
		return 2
	}
	return edge - 1
}

// CrossSection returns the fraction of disp after which pos+t*disp lies on
// edge e.
func CrossSection(pos, disp Barycentric, edge int) float64 {
	i := opposite(edge)
	return -pos[i] / disp[i]
}

type crossKind uint8

const (
	crossUnreachable crossKind = iota // no component positive
	crossSingle                       // one component went non-positive
	crossPair                         // two components went non-positive
	crossNone                         // still inside
)

// crossRule describes how a sign pattern maps to the crossed edge. For
// crossPair the alternative edge wins only when it is crossed strictly
// earlier than the preferred one.
type crossRule struct {
	kind        crossKind
	preferred   int
	alternative int
}

// crossRules is indexed by the sign pattern of the landing point: bit i is
// set when component i is strictly positive.
var crossRules = [8]crossRule{
	0b000: {kind: crossUnreachable},
	0b001: {kind: crossPair, preferred: 0, alternative: 2},
	0b010: {kind: crossPair, preferred: 1, alternative: 0},
	0b011: {kind: crossSingle, preferred: 0},
	0b100: {kind: crossPair, preferred: 2, alternative: 1},
	0b101: {kind: crossSingle, preferred: 2},
	0b110: {kind: crossSingle, preferred: 1},
	0b111: {kind: crossNone},
}

func signPattern(b Barycentric) uint8 {
	var p uint8
	for i, c := range b {
		if c > 0 {
			p |= 1 << i
		}
	}
	return p
}

// FirstCrossEdge returns the edge through which pos+disp first leaves the
// triangle and the fraction of disp travelled when it does.
func FirstCrossEdge(pos, disp Barycentric) (int, float64, error) {
	npos := pos.Add(disp)
	rule := crossRules[signPattern(npos)]

	switch rule.kind {
	case crossSingle:
		return rule.preferred, CrossSection(pos, disp, rule.preferred), nil
	case crossPair:
		tp := CrossSection(pos, disp, rule.preferred)
		ta := CrossSection(pos, disp, rule.alternative)
		if ta < tp {
			return rule.alternative, ta, nil
		}
		return rule.preferred, tp, nil
	case crossNone:
		return -1, 0, fmt.Errorf("%w: destination %v is inside the triangle", ErrInvalidArgument, npos)
	default:
		return -1, 0, fmt.Errorf("%w: destination %v has no positive component", ErrUnreachable, npos)
	}
}

// ForcePutInside clamps a slightly outside on-plane point back onto the
// triangle. Out-of-range components are clamped to 0 or 1 and the first
// unclamped component absorbs the difference. If every component had to be
// clamped the point is too far outside to project.
func ForcePutInside(b Barycentric) (Barycentric, error) {
	if !b.OnPlane(DefaultTolerance) {
		return b, invalidArgument("force put inside: outside of the plane")
	}
	if b.IsInside() {
		return b, nil
	}

	ret := b
	var clamped [3]bool
	for i := range ret {
		switch {
		case ret[i] < 0:
			clamped[i] = true
			ret[i] = 0
		case ret[i] > 1:
			clamped[i] = true
			ret[i] = 1
		}
	}

	for i, c := range clamped {
		if !c {
			ret[i] = 1 - ret[(i+1)%3] - ret[(i+2)%3]
			return ret, nil
		}
	}
	return b, invalidArgument("force put inside: too far")
}

// ToAbsolute returns the Cartesian point with barycentric coordinates b.
func ToAbsolute(b Barycentric, t Triangle) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(b[0], t.V[0]), r3.Scale(b[1], t.V[1])), r3.Scale(b[2], t.V[2]))
}

// triangleArea2D returns twice the signed area of the 2D triangle
// (x1,y1), (x2,y2), (x3,y3).
func triangleArea2D(x1, y1, x2, y2, x3, y3 float64) float64 {
	return (x1-x2)*(y2-y3) - (x2-x3)*(y1-y2)
}

// ToBarycentric returns the barycentric coordinates of p projected onto the
// plane of t. The projection drops the axis the normal is most aligned
// with, so the 2D area ratio never divides by a near-zero denominator for a
// non-degenerate triangle.
func ToBarycentric(p r3.Vec, t Triangle) Barycentric {
	a, b, c := t.V[0], t.V[1], t.V[2]
	m := r3.Scale(-1, r3.Cross(t.Edge(0), t.Edge(2)))
	x, y, z := math.Abs(m.X), math.Abs(m.Y), math.Abs(m.Z)

	var nu, nv, ood float64
	switch {
	case x >= y && x >= z:
		nu = triangleArea2D(p.Y, p.Z, b.Y, b.Z, c.Y, c.Z)
		nv = triangleArea2D(p.Y, p.Z, c.Y, c.Z, a.Y, a.Z)
		ood = 1 / m.X
	case y >= x && y >= z:
		nu = triangleArea2D(p.X, p.Z, b.X, b.Z, c.X, c.Z)
		nv = triangleArea2D(p.X, p.Z, c.X, c.Z, a.X, a.Z)
		ood = 1 / -m.Y
	default:
		nu = triangleArea2D(p.X, p.Y, b.X, b.Y, c.X, c.Y)
		nv = triangleArea2D(p.X, p.Y, c.X, c.Y, a.X, a.Y)
		ood = 1 / m.Z
	}

	u := nu * ood
	v := nv * ood
	return Barycentric{u, v, 1 - u - v}
}
