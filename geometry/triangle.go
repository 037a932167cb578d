// Package geometry provides the triangle and barycentric primitives used to
// carry particles across a triangulated surface.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a face of the surface mesh. Vertices are ordered; edge i runs
// from vertex i to vertex i+1 (mod 3) and is opposite vertex i+2.
type Triangle struct {
	V [3]r3.Vec
}

// NewTriangle creates a triangle from three ordered vertices.
func NewTriangle(a, b, c r3.Vec) Triangle {
	return Triangle{V: [3]r3.Vec{a, b, c}}
}

// Vertex returns vertex i.
func (t Triangle) Vertex(i int) r3.Vec {
	return t.V[i]
}

// Edge returns edge i as the vector V[i+1]-V[i].
func (t Triangle) Edge(i int) r3.Vec {
	return r3.Sub(t.V[(i+1)%3], t.V[i])
}

// Edges returns all three edge vectors.
func (t Triangle) Edges() [3]r3.Vec {
	return [3]r3.Vec{t.Edge(0), t.Edge(1), t.Edge(2)}
}

// Normal returns the unit normal, oriented by the right-hand rule over the
// vertex order.
func (t Triangle) Normal() r3.Vec {
	return r3.Unit(t.scaledNormal())
}

// scaledNormal is the normal with length twice the area.
func (t Triangle) scaledNormal() r3.Vec {
	return r3.Cross(t.Edge(0), r3.Sub(t.V[2], t.V[0]))
}

// Area returns the surface area of the triangle.
func (t Triangle) Area() float64 {
	return r3.Norm(t.scaledNormal()) / 2
}

// EdgeLengths returns the lengths of the three edges.
func (t Triangle) EdgeLengths() [3]float64 {
	return [3]float64{
		r3.Norm(t.Edge(0)),
		r3.Norm(t.Edge(1)),
		r3.Norm(t.Edge(2)),
	}
}

// Centroid returns the arithmetic mean of the vertices.
func Centroid(t Triangle) r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(r3.Add(t.V[0], t.V[1]), t.V[2]))
}

// Incenter returns the center of the inscribed circle. Each vertex is
// weighted by the length of the edge opposite to it.
func Incenter(t Triangle) r3.Vec {
	l := t.EdgeLengths()
	a := l[1] // opposite V[0]
	b := l[2] // opposite V[1]
	c := l[0] // opposite V[2]
	sum := r3.Add(r3.Add(r3.Scale(a, t.V[0]), r3.Scale(b, t.V[1])), r3.Scale(c, t.V[2]))
	return r3.Scale(1/(a+b+c), sum)
}

// ProjectToPlane returns the orthogonal projection of p onto the plane of t.
func ProjectToPlane(p r3.Vec, t Triangle) r3.Vec {
	n := t.Normal()
	d := r3.Dot(n, r3.Sub(p, t.V[0]))
	return r3.Sub(p, r3.Scale(d, n))
}

// MatchEdge returns the index of the edge equal to vec, component-wise
// within DefaultTolerance relative to the edge length.
func MatchEdge(vec r3.Vec, t Triangle) (int, error) {
	for i := 0; i < 3; i++ {
		e := t.Edge(i)
		tol := DefaultTolerance * math.Max(1, r3.Norm(e))
		if r3.Norm(r3.Sub(vec, e)) <= tol {
			return i, nil
		}
	}
	return -1, invalidArgument("vector does not match any edge")
}
