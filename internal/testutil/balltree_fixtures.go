package testutil

// ExpectedNodeCount returns the number of nodes a ball tree over nPoints
// points must have: nPoints leaves plus nPoints-1 internal splits.
func ExpectedNodeCount(nPoints int) int {
	return 2*nPoints - 1
}

// TwoClusters returns eight 2-D points arranged as two well-separated
// unit-square clusters, a small deterministic fixture for exercising tree
// construction across both the shared-memory and distributed phases.
func TwoClusters() [][]float64 {
	return [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {1, 1},
		{10, 10}, {11, 10}, {10, 11}, {11, 11},
	}
}

// UnitSquare returns the four corners of a unit square, the smallest point
// set that forces one non-trivial split.
func UnitSquare() [][]float64 {
	return [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
}

// GridPoints returns n deterministic 3-D points, each coordinate a simple
// function of its index, for tests that only need a plausible shard of a
// given size rather than specific geometry.
func GridPoints(n int) [][]float64 {
	points := make([][]float64, n)
	for i := range points {
		points[i] = []float64{float64(i), float64(i * i), float64(n - i)}
	}
	return points
}
