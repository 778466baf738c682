// Package kmeans partitions reduced 2-D points into k clusters using
// Lloyd's iteration with a seeded, reproducible initialization.
package kmeans

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/KaramelBytes/basketlens/internal/pca"
)

// DefaultMaxIterations bounds Lloyd's iteration when assignments keep
// oscillating; in practice convergence arrives far earlier.
const DefaultMaxIterations = 100

// InvalidClusterCountError indicates k is outside [1, number of points].
type InvalidClusterCountError struct {
	K      int
	Points int
}

func (e *InvalidClusterCountError) Error() string {
	return fmt.Sprintf("kmeans: k=%d invalid for %d points", e.K, e.Points)
}

// Options tunes a clustering run.
type Options struct {
	// Seed drives centroid initialization. The same seed and input always
	// produce the same assignments.
	Seed int64
	// MaxIterations caps Lloyd's iteration; 0 means DefaultMaxIterations.
	MaxIterations int
}

// Result holds the outcome of one clustering run. Labels is row-aligned
// with the input points; every label is in [0, k).
type Result struct {
	Labels     []int       `json:"labels"`
	Centroids  []pca.Point `json:"centroids"`
	Iterations int         `json:"iterations"`
}

// Cluster partitions points into k clusters. Initialization picks k
// distinct points with a seeded Fisher-Yates prefix shuffle; iteration
// assigns each point to its nearest centroid by squared Euclidean distance
// (lowest-indexed centroid wins ties) and recomputes centroids as the mean
// of their members, stopping when assignments no longer change. A cluster
// left empty by an iteration is reseeded to the point farthest from its
// assigned centroid so no cluster is empty after convergence.
func Cluster(points []pca.Point, k int, opt Options) (*Result, error) {
	if k < 1 || k > len(points) {
		return nil, &InvalidClusterCountError{K: k, Points: len(points)}
	}
	maxIter := opt.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	rng := rand.New(rand.NewSource(opt.Seed))
	centroids := initialCentroids(points, k, rng)
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	iterations := 0
	for iter := 0; iter < maxIter; iter++ {
		iterations = iter + 1
		if changed := assign(points, centroids, labels); !changed {
			break
		}
		means, counts := recompute(points, labels, k)
		for j := 0; j < k; j++ {
			if counts[j] == 0 {
				means[j] = farthestPoint(points, labels, centroids)
			}
		}
		centroids = means
	}

	return &Result{Labels: labels, Centroids: centroids, Iterations: iterations}, nil
}

// initialCentroids picks k distinct points via a partial Fisher-Yates
// shuffle of the index space.
func initialCentroids(points []pca.Point, k int, rng *rand.Rand) []pca.Point {
	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(indices)-i)
		indices[i], indices[j] = indices[j], indices[i]
	}
	centroids := make([]pca.Point, k)
	for i := 0; i < k; i++ {
		centroids[i] = points[indices[i]]
	}
	return centroids
}

// assign labels every point with its nearest centroid and reports whether
// any label changed. Strict less-than keeps the lowest-indexed centroid for
// equidistant points.
func assign(points []pca.Point, centroids []pca.Point, labels []int) bool {
	changed := false
	for i, p := range points {
		best := 0
		bestDist := math.MaxFloat64
		for j, c := range centroids {
			if d := distSq(p, c); d < bestDist {
				bestDist = d
				best = j
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// recompute returns the mean of each cluster's members and the member counts.
func recompute(points []pca.Point, labels []int, k int) ([]pca.Point, []int) {
	sums := make([]pca.Point, k)
	counts := make([]int, k)
	for i, p := range points {
		j := labels[i]
		sums[j].PC1 += p.PC1
		sums[j].PC2 += p.PC2
		counts[j]++
	}
	for j := 0; j < k; j++ {
		if counts[j] > 0 {
			sums[j].PC1 /= float64(counts[j])
			sums[j].PC2 /= float64(counts[j])
		}
	}
	return sums, counts
}

// farthestPoint returns the point with the greatest squared distance to the
// centroid it is currently assigned to. Reseeding an empty cluster there
// splits the most spread-out cluster deterministically.
func farthestPoint(points []pca.Point, labels []int, centroids []pca.Point) pca.Point {
	bestIdx := 0
	bestDist := -1.0
	for i, p := range points {
		d := distSq(p, centroids[labels[i]])
		if d > bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return points[bestIdx]
}

func distSq(a, b pca.Point) float64 {
	dx := a.PC1 - b.PC1
	dy := a.PC2 - b.PC2
	return dx*dx + dy*dy
}
