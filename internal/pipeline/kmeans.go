package pipeline

import (
	"math"
	"math/rand"
)

// KMeans is a fitted clustering model
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
	Inertia   float64     `json:"inertia"`
}

// KMeansOptions controls FitKMeans
type KMeansOptions struct {
	Clusters int
	Seed     int64
	Restarts int
	MaxIter  int
	Tol      float64
}

// FitKMeans runs k-means++ seeded Lloyd iterations Restarts times and keeps
// the run with the lowest inertia. Clusters is capped at len(X).
func FitKMeans(X [][]float64, opts KMeansOptions) *KMeans {
	k := opts.Clusters
	if k > len(X) {
		k = len(X)
	}
	if k <= 0 {
		return &KMeans{}
	}
	if opts.Restarts <= 0 {
		opts.Restarts = 1
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 300
	}
	if opts.Tol <= 0 {
		opts.Tol = 1e-4
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	var best *KMeans
	for run := 0; run < opts.Restarts; run++ {
		m := lloyd(X, initPlusPlus(X, k, rng), opts.MaxIter, opts.Tol)
		if best == nil || m.Inertia < best.Inertia {
			best = m
		}
	}
	return best
}

// Predict returns the index of the nearest centroid
func (m *KMeans) Predict(x []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range m.Centroids {
		if d := sqDist(x, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func initPlusPlus(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := [][]float64{clone(X[rng.Intn(len(X))])}
	dist := make([]float64, len(X))
	for len(centroids) < k {
		var total float64
		for i, x := range X {
			dist[i] = math.Inf(1)
			for _, c := range centroids {
				if d := sqDist(x, c); d < dist[i] {
					dist[i] = d
				}
			}
			total += dist[i]
		}
		if total == 0 {
			// Remaining points coincide with chosen centroids.
			centroids = append(centroids, clone(X[rng.Intn(len(X))]))
			continue
		}
		target := rng.Float64() * total
		chosen := len(X) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(X[chosen]))
	}
	return centroids
}

func lloyd(X [][]float64, centroids [][]float64, maxIter int, tol float64) *KMeans {
	dims := len(X[0])
	labels := make([]int, len(X))
	m := &KMeans{Centroids: centroids}

	for iter := 0; iter < maxIter; iter++ {
		for i, x := range X {
			labels[i] = m.Predict(x)
		}

		sums := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for i := range sums {
			sums[i] = make([]float64, dims)
		}
		for i, x := range X {
			counts[labels[i]]++
			for j, v := range x {
				sums[labels[i]][j] += v
			}
		}

		var shift float64
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			next := make([]float64, dims)
			for j := range next {
				next[j] = sums[c][j] / float64(counts[c])
			}
			shift += sqDist(next, centroids[c])
			centroids[c] = next
		}
		if shift <= tol {
			break
		}
	}

	for _, x := range X {
		m.Inertia += sqDist(x, m.Centroids[m.Predict(x)])
	}
	return m
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
