package quant

import "github.com/Aikku93/tilequant/internal/colour"

// Vec4 is a local alias so this package's code reads naturally against the
// reference's BGRAf_t without spelling out colour.Vec4 everywhere.
type Vec4 = colour.Vec4

// cluster mirrors the reference QuantCluster_t: a centroid, its training
// accumulators, and an intrusive link used to thread the cluster into
// exactly one of two singly-linked lists at a time (most-distorted-first,
// or currently-empty). next == -1 marks the list terminator.
type cluster struct {
	centroid Vec4

	train       Vec4 // Σ data, resolves to the mean centroid
	splitDir    Vec4 // Σ |data-centroid|*|data-centroid|
	splitWeight Vec4 // Σ |data-centroid|

	nPoints    int
	maxDistIdx int
	maxDistVal float64

	next int
}

func (c *cluster) clearTraining() {
	c.train = Vec4{}
	c.splitDir = Vec4{}
	c.splitWeight = Vec4{}
	c.nPoints = 0
	c.maxDistIdx = -1
	c.maxDistVal = 0
}

// errorToDist converts a training error vector to the scalar distortion
// measure used to rank clusters for splitting: the L1 norm (sum of
// absolute channel error). The reference notes the L1 norm gives better
// results in practice than the squared L2 norm.
func errorToDist(absErr Vec4) float64 {
	return colour.Sum(absErr)
}

// trainPoint folds one data point into the cluster's running statistics:
// the mean accumulator, the split-direction accumulator (mean absolute
// deviation step), and the most-distant-point tracker used for splitting
// priority.
func (c *cluster) trainPoint(data Vec4, dataIdx int) {
	errv := colour.Sub(data, c.centroid)
	absErr := colour.Abs(errv)

	dist := errorToDist(absErr)
	if dist > c.maxDistVal {
		c.maxDistIdx = dataIdx
		c.maxDistVal = dist
	}

	c.train = colour.Add(c.train, data)
	c.splitDir = colour.Add(c.splitDir, colour.Mul(absErr, absErr))
	c.splitWeight = colour.Add(c.splitWeight, absErr)
	c.nPoints++
}

// resolve recomputes the centroid as the arithmetic mean of the training
// accumulator. Returns the number of points that were folded in; zero means
// the cluster did not resolve and should be recycled via the empty list.
func (c *cluster) resolve() int {
	if c.nPoints > 0 {
		c.centroid = colour.Divs(c.train, float64(c.nPoints))
	}
	return c.nPoints
}

// insertDescending threads cluster idx into the most-distorted list headed
// at head, keeping the list sorted by descending maxDistVal with ties
// broken by insertion order (earlier insertions stay closer to the head).
// Clusters with zero distortion are never inserted (they have nothing left
// to split). Returns the new head.
func insertDescending(clusters []cluster, idx, head int) int {
	dist := clusters[idx].maxDistVal
	if dist == 0 {
		return head
	}
	prev := -1
	cur := head
	for cur != -1 && dist <= clusters[cur].maxDistVal {
		prev = cur
		cur = clusters[cur].next
	}
	clusters[idx].next = cur
	if prev != -1 {
		clusters[prev].next = idx
		return head
	}
	return idx
}

// split derives a new cluster dst from src's accumulated split offset —
// the mean-absolute-deviation step Σ|data-centroid|*|data-centroid| /
// Σ|data-centroid| — placing dst at src's centroid plus the offset and
// moving src to its centroid minus the offset. When recluster is set,
// src's former members are then reassigned between src and dst by nearest
// (perceptually weighted) colour distance and both centroids are resolved
// to the mean of their new membership.
func split(clusters []cluster, src, dst int, data []Vec4, assignments []int32, recluster bool) {
	direction := colour.DivSafe(clusters[src].splitDir, clusters[src].splitWeight, Vec4{})
	centroid := clusters[src].centroid
	clusters[dst].centroid = colour.Add(centroid, direction)
	clusters[src].centroid = colour.Sub(centroid, direction)

	if !recluster {
		return
	}

	clusters[src].clearTraining()
	clusters[dst].clearTraining()
	for i, d := range data {
		if int(assignments[i]) != src {
			continue
		}
		distSrc := colour.WeightedDistance(d, clusters[src].centroid)
		distDst := colour.WeightedDistance(d, clusters[dst].centroid)
		if distSrc < distDst {
			clusters[src].trainPoint(d, i)
		} else {
			clusters[dst].trainPoint(d, i)
			assignments[i] = int32(dst)
		}
	}
	clusters[src].resolve()
	clusters[dst].resolve()
}
