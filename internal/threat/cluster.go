package threat

import "math"

// Label assigned to points that belong to no cluster.
const noiseLabel = -1

// dbscan is a small density-based clustering over n-dimensional points with
// euclidean distance. Returns one label per point; noise points get -1.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = noiseLabel
	}
	visited := make([]bool, len(points))
	cluster := 0

	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true
		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			continue
		}
		labels[i] = cluster
		// Expand the cluster over density-reachable points.
		for k := 0; k < len(neighbors); k++ {
			j := neighbors[k]
			if !visited[j] {
				visited[j] = true
				more := regionQuery(points, j, eps)
				if len(more) >= minPts {
					neighbors = append(neighbors, more...)
				}
			}
			if labels[j] == noiseLabel {
				labels[j] = cluster
			}
		}
		cluster++
	}
	return labels
}

func regionQuery(points [][]float64, i int, eps float64) []int {
	var out []int
	for j := range points {
		if euclidean(points[i], points[j]) <= eps {
			out = append(out, j)
		}
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for d := range a {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// standardize scales each column to zero mean and unit variance. Columns with
// zero variance are left at zero.
func standardize(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return points
	}
	dims := len(points[0])
	mean := make([]float64, dims)
	std := make([]float64, dims)
	for _, p := range points {
		for d := 0; d < dims; d++ {
			mean[d] += p[d]
		}
	}
	for d := 0; d < dims; d++ {
		mean[d] /= float64(len(points))
	}
	for _, p := range points {
		for d := 0; d < dims; d++ {
			diff := p[d] - mean[d]
			std[d] += diff * diff
		}
	}
	for d := 0; d < dims; d++ {
		std[d] = math.Sqrt(std[d] / float64(len(points)))
	}
	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, dims)
		for d := 0; d < dims; d++ {
			if std[d] > 0 {
				row[d] = (p[d] - mean[d]) / std[d]
			}
		}
		out[i] = row
	}
	return out
}
