package components

// Coordinate indexes a voxel of the occupancy store. Valid coordinates are
// [0, N) for a store of N voxels.
type Coordinate int

// Pair declares two coordinates adjacent. Adjacency is symmetric.
type Pair struct {
	A, B Coordinate
}
