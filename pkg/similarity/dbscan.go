package similarity

// Noise is the cluster id assigned to points that do not reach any
// cluster's density requirement.
const Noise = -1

// unclassified marks points not yet visited during the scan.
const unclassified = -2

// DBSCAN partitions vectors into density-based clusters. A point becomes a
// core point when at least minPoints vectors (itself included) lie within eps
// of it; clusters grow from core points, and points reachable from no core
// point are labeled Noise. Returns one cluster id per input vector, in input
// order, with ids assigned in scan order starting at 0.
//
// A nil distance defaults to EuclideanDistance.
func DBSCAN(vectors [][]float32, eps float64, minPoints int, distance DistanceFunc) []int {
	if distance == nil {
		distance = EuclideanDistance
	}

	n := len(vectors)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unclassified
	}

	clusterID := 0
	for i := 0; i < n; i++ {
		if labels[i] != unclassified {
			continue
		}

		neighbors := regionQuery(vectors, i, eps, distance)
		if len(neighbors) < minPoints {
			labels[i] = Noise
			continue
		}

		labels[i] = clusterID
		expandCluster(vectors, labels, neighbors, clusterID, eps, minPoints, distance)
		clusterID++
	}

	return labels
}

// expandCluster grows a cluster from a core point's neighborhood,
// absorbing density-reachable points and reclaiming earlier noise.
func expandCluster(vectors [][]float32, labels []int, seeds []int, clusterID int, eps float64, minPoints int, distance DistanceFunc) {
	for qi := 0; qi < len(seeds); qi++ {
		j := seeds[qi]

		if labels[j] == Noise {
			labels[j] = clusterID // border point, reclaimed from noise
			continue
		}
		if labels[j] != unclassified {
			continue
		}

		labels[j] = clusterID
		neighbors := regionQuery(vectors, j, eps, distance)
		if len(neighbors) >= minPoints {
			seeds = append(seeds, neighbors...)
		}
	}
}

// regionQuery returns the indices of all vectors within eps of vectors[i],
// including i itself.
func regionQuery(vectors [][]float32, i int, eps float64, distance DistanceFunc) []int {
	var neighbors []int
	for j := range vectors {
		if distance(vectors[i], vectors[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
