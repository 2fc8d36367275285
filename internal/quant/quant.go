// Package quant implements generalized LBG (Linde-Buzo-Gray) vector
// quantization: it clusters a set of colour vectors into at most K
// centroids, seeding from the global mean and repeatedly splitting the
// most-distorted cluster, with a bounded number of refinement passes per
// codebook size.
//
// Grounded on original_source/src/quantize.c (QuantCluster_Quantize), with
// the split-direction and refinement distance substituted per DESIGN.md's
// Open Question resolution: arithmetic-mean centroids, mean-absolute-
// deviation split direction, and perceptually weighted colour distance for
// nearest-centroid assignment.
package quant

import (
	"math"

	"github.com/Aikku93/tilequant/internal/colour"
)

// DefaultPasses is substituted whenever a caller passes 0 for the
// refinement pass count.
const DefaultPasses = 16

// Quantize computes up to k centroids from data and writes each data
// point's resolved cluster index into assignments (which must have the
// same length as data). It returns the resolved centroids; fewer than k
// is not an error — it happens whenever the data does not have enough
// distinct values to support k clusters.
//
// passes is the number of refinement (Lloyd relaxation) passes performed
// each time the codebook grows; 0 substitutes DefaultPasses.
func Quantize(data []Vec4, k int, passes int, assignments []int32) []Vec4 {
	n := len(data)
	if n == 0 {
		return nil
	}
	if len(assignments) != n {
		panic("quant: assignments must have the same length as data")
	}
	if k < 1 {
		k = 1
	}
	if passes <= 0 {
		passes = DefaultPasses
	}

	clusters := make([]cluster, k)

	// Seed: cluster 0 is the mean of all data, and every point starts
	// assigned to it.
	var mean Vec4
	for i, d := range data {
		assignments[i] = 0
		mean = colour.Add(mean, d)
	}
	clusters[0].centroid = colour.Divs(mean, float64(n))

	clusters[0].clearTraining()
	for i, d := range data {
		clusters[0].trainPoint(d, i)
	}
	if clusters[0].maxDistVal == 0 {
		// Global convergence already reached (all points identical).
		clusters[0].resolve()
		return []Vec4{clusters[0].centroid}
	}
	clusters[0].next = -1

	nActive := 1
	maxDistHead := 0
	emptyHead := -1
	lastTotalError := math.Inf(1)

	for nActive < k {
		growCodebook(clusters, data, assignments, &nActive, &maxDistHead, &emptyHead, k)

		thisTotalError := 0.0
		clusterLastError := math.Inf(1)
		for pass := 0; pass < passes; pass++ {
			thisTotalError = 0
			for i := 0; i < nActive; i++ {
				clusters[i].clearTraining()
			}
			for i, d := range data {
				bestIdx, bestDist := nearest(clusters[:nActive], d)
				thisTotalError += bestDist
				assignments[i] = int32(bestIdx)
				clusters[bestIdx].trainPoint(d, i)
			}

			maxDistHead = -1
			emptyHead = -1
			for i := 0; i < nActive; i++ {
				if clusters[i].resolve() > 0 {
					maxDistHead = insertDescending(clusters, i, maxDistHead)
				} else {
					clusters[i].next = emptyHead
					emptyHead = i
				}
			}

			// Reclaim capacity lost to collapsed clusters by splitting the
			// most-distorted clusters into the empty ones.
			for emptyHead != -1 && maxDistHead != -1 {
				src, dst := maxDistHead, emptyHead
				split(clusters, src, dst, data, assignments, true)
				maxDistHead = clusters[src].next
				emptyHead = clusters[dst].next
			}

			if thisTotalError == 0 || thisTotalError == clusterLastError {
				break
			}
			clusterLastError = thisTotalError
		}

		if thisTotalError == 0 || thisTotalError == lastTotalError {
			break
		}
		lastTotalError = thisTotalError
	}

	out := make([]Vec4, nActive)
	for i := range out {
		out[i] = clusters[i].centroid
	}
	return out
}

// nearest returns the index and weighted colour distance of the cluster
// closest to d, breaking ties toward the lowest index.
func nearest(clusters []cluster, d Vec4) (int, float64) {
	bestIdx := 0
	bestDist := math.Inf(1)
	for j := range clusters {
		dist := colour.WeightedDistance(d, clusters[j].centroid)
		if dist < bestDist {
			bestIdx, bestDist = j, dist
		}
	}
	return bestIdx, bestDist
}

// growCodebook performs one binary-splitting round: starting from the
// nActive clusters active at loop entry, it splits nActive clusters (each
// either a fresh most-distorted cluster or a recycled empty slot) into new
// or recycled cluster slots, stopping when either the target count k is
// reached or there is nothing left to split.
func growCodebook(clusters []cluster, data []Vec4, assignments []int32, nActive, maxDistHead, emptyHead *int, k int) {
	n := *nActive
	for n > 0 {
		src := *maxDistHead
		if src != -1 {
			*maxDistHead = clusters[src].next
		} else {
			// Ran out of pre-threaded candidates (can happen after
			// splitting into recycled empties last pass); search directly.
			src = -1
			best := 0.0
			for i := 0; i < *nActive; i++ {
				if clusters[i].maxDistVal > best {
					src = i
					best = clusters[i].maxDistVal
				}
			}
		}
		if src == -1 {
			// Nothing left with any distortion to split.
			return
		}

		var dst int
		if *emptyHead != -1 {
			dst = *emptyHead
			*emptyHead = clusters[dst].next
		} else {
			if *nActive == k {
				return
			}
			dst = *nActive
			*nActive++
			n--
		}

		split(clusters, src, dst, data, assignments, true)
	}
}
