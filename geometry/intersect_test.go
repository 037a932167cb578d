package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// unitTriangle is the right triangle (0,0,0), (1,0,0), (0,1,0).
var unitTriangle = NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		p          r3.Vec
		wantDist   float64
		wantRegion Region
	}{
		{"on vertex A", r3.Vec{}, 0, RegionVertexA},
		{"on vertex B", r3.Vec{X: 1}, 0, RegionVertexB},
		{"on edge AB", r3.Vec{X: 0.5}, 0, RegionEdgeAB},
		{"interior", r3.Vec{X: 0.2, Y: 0.2}, 0, RegionFace},
		{"vertex region A", r3.Vec{X: -1, Y: -1}, math.Sqrt2, RegionVertexA},
		{"vertex region B", r3.Vec{X: 2, Y: -1}, math.Sqrt2, RegionVertexB},
		{"vertex region C", r3.Vec{X: -1, Y: 2}, math.Sqrt2, RegionVertexC},
		{"edge region AB", r3.Vec{X: 0.5, Y: -1, Z: 1}, math.Sqrt2, RegionEdgeAB},
		{"edge region AC", r3.Vec{X: -1, Y: 0.5}, 1, RegionEdgeAC},
		{"edge region BC", r3.Vec{X: 1, Y: 1}, math.Sqrt(0.5), RegionEdgeBC},
		{"face region above", r3.Vec{X: 0.25, Y: 0.25, Z: 2}, 2, RegionFace},
		{"face region below", r3.Vec{X: 0.1, Y: 0.3, Z: -0.5}, 0.5, RegionFace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.p, unitTriangle)
			if !scalar.EqualWithinAbs(got, tt.wantDist, 1e-12) {
				t.Errorf("Distance(%v) = %v, want %v", tt.p, got, tt.wantDist)
			}
			_, region := ClosestPoint(tt.p, unitTriangle)
			if region != tt.wantRegion {
				t.Errorf("region of %v = %v, want %v", tt.p, region, tt.wantRegion)
			}
		})
	}
}

func TestDistanceOnVertexC(t *testing.T) {
	if d := Distance(r3.Vec{Y: 1}, unitTriangle); d != 0 {
		t.Errorf("Distance(vertex C) = %v, want 0", d)
	}
}

func TestIsPierce(t *testing.T) {
	tests := []struct {
		name   string
		begin  r3.Vec
		end    r3.Vec
		want   bool
		wantAt r3.Vec
	}{
		{
			name:   "crosses from the front",
			begin:  r3.Vec{X: 0.2, Y: 0.2, Z: 1},
			end:    r3.Vec{X: 0.2, Y: 0.2, Z: -1},
			want:   true,
			wantAt: r3.Vec{X: 0.2, Y: 0.2},
		},
		{
			name:   "slanted crossing",
			begin:  r3.Vec{X: 0, Y: 0.1, Z: 1},
			end:    r3.Vec{X: 0.4, Y: 0.1, Z: -1},
			want:   true,
			wantAt: r3.Vec{X: 0.2, Y: 0.1},
		},
		{
			name:  "crosses from behind",
			begin: r3.Vec{X: 0.2, Y: 0.2, Z: -1},
			end:   r3.Vec{X: 0.2, Y: 0.2, Z: 1},
		},
		{
			name:  "stops short of the plane",
			begin: r3.Vec{X: 0.2, Y: 0.2, Z: 3},
			end:   r3.Vec{X: 0.2, Y: 0.2, Z: 1},
		},
		{
			name:  "passes outside the triangle",
			begin: r3.Vec{X: 0.8, Y: 0.8, Z: 1},
			end:   r3.Vec{X: 0.8, Y: 0.8, Z: -1},
		},
		{
			name:  "lies in the plane across the triangle",
			begin: r3.Vec{X: -0.5, Y: 0.1, Z: 0},
			end:   r3.Vec{X: 0.3, Y: 0.1, Z: 0},
		},
		{
			name:  "parallel above the plane",
			begin: r3.Vec{X: 0.1, Y: 0.1, Z: 0.5},
			end:   r3.Vec{X: 0.3, Y: 0.1, Z: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, ok := IsPierce(tt.begin, tt.end, unitTriangle)
			if ok != tt.want {
				t.Fatalf("IsPierce(%v, %v) = %v, want %v", tt.begin, tt.end, ok, tt.want)
			}
			if ok && r3.Norm(r3.Sub(at, tt.wantAt)) > 1e-12 {
				t.Errorf("pierce point = %v, want %v", at, tt.wantAt)
			}
		})
	}
}

func BenchmarkDistance(b *testing.B) {
	p := r3.Vec{X: 0.25, Y: 0.25, Z: 2}
	for n := 0; n < b.N; n++ {
		_ = Distance(p, unitTriangle)
	}
}
