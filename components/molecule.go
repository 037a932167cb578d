package components

// MoleculeInfo holds the physical metadata of a species.
type MoleculeInfo struct {
	Species  string
	Radius   float64
	D        float64 // diffusion coefficient
	Location string  // substrate structure; "" is the vacant (bulk) structure
}

// SameParameters reports whether two descriptions agree on every physical
// parameter and on the location.
func (m MoleculeInfo) SameParameters(o MoleculeInfo) bool {
	return m.Radius == o.Radius && m.D == o.D && m.Location == o.Location
}
