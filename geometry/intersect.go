package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Region identifies the Voronoi feature of a triangle closest to a point.
type Region uint8

const (
	RegionVertexA Region = iota
	RegionVertexB
	RegionVertexC
	RegionEdgeAB
	RegionEdgeAC
	RegionEdgeBC
	RegionFace
)

func (r Region) String() string {
	switch r {
	case RegionVertexA:
		return "vertex A"
	case RegionVertexB:
		return "vertex B"
	case RegionVertexC:
		return "vertex C"
	case RegionEdgeAB:
		return "edge AB"
	case RegionEdgeAC:
		return "edge AC"
	case RegionEdgeBC:
		return "edge BC"
	default:
		return "face"
	}
}

// ClosestPoint returns the point of t closest to p and the region it lies
// in (Ericson, Real-Time Collision Detection, 5.1.5). The region tests run
// in a fixed order and their inequalities partition space without gaps.
func ClosestPoint(p r3.Vec, t Triangle) (r3.Vec, Region) {
	a, b, c := t.V[0], t.V[1], t.V[2]

	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a, RegionVertexA
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b, RegionVertexB
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab)), RegionEdgeAB
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c, RegionVertexC
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac)), RegionEdgeAC
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))), RegionEdgeBC
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac))), RegionFace
}

// Distance returns the Euclidean distance from p to the closest point of t.
func Distance(p r3.Vec, t Triangle) float64 {
	q, _ := ClosestPoint(p, t)
	return r3.Norm(r3.Sub(q, p))
}

// IsPierce reports whether the segment from begin to end crosses t and, if
// so, where. The test is one-sided: only segments entering from the side
// the normal points to count, segments crossing from behind are rejected.
// A segment parallel to the plane never pierces, including one lying in
// the plane across the triangle: a zero dot product with the normal is
// treated like a crossing from behind, so no point is ever computed from a
// zero denominator.
func IsPierce(begin, end r3.Vec, t Triangle) (r3.Vec, bool) {
	line := r3.Sub(begin, end)
	ab := r3.Sub(t.V[1], t.V[0])
	ac := r3.Sub(t.V[2], t.V[0])
	normal := r3.Cross(ab, ac)

	d := r3.Dot(line, normal)
	if d <= 0 {
		return r3.Vec{}, false
	}

	ap := r3.Sub(begin, t.V[0])
	s := r3.Dot(ap, normal)
	if s < 0 || d < s {
		return r3.Vec{}, false
	}

	e := r3.Cross(line, ap)
	v := r3.Dot(ac, e)
	if v < 0 || d < v {
		return r3.Vec{}, false
	}
	w := -r3.Dot(ab, e)
	if w < 0 || d < v+w {
		return r3.Vec{}, false
	}

	ood := 1 / d
	v *= ood
	w *= ood
	return ToAbsolute(Barycentric{1 - v - w, v, w}, t), true
}
