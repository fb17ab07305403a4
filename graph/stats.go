package graph

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the graph topology and its edge-distance distribution.
type Stats struct {
	Nodes int
	Edges int

	// Pending is the number of nodes waiting for their first rebuild.
	Pending int

	Distance DistanceStats
}

// DistanceStats describes the distribution of stored edge distances.
type DistanceStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

// Stats collects statistics over the live (undirected) edges. On a finalized
// graph every edge is counted exactly once.
func (g *Graph[T]) Stats() Stats {
	var dists []float64
	for id, n := range g.nodes {
		for v, d := range n.table.live {
			if v > id {
				dists = append(dists, d)
			}
		}
	}

	s := Stats{
		Nodes:   len(g.nodes),
		Edges:   len(dists),
		Pending: len(g.pending),
	}
	if len(dists) == 0 {
		return s
	}

	slices.Sort(dists)
	s.Distance = DistanceStats{
		Mean:   stat.Mean(dists, nil),
		Min:    dists[0],
		Max:    dists[len(dists)-1],
		Median: stat.Quantile(0.5, stat.Empirical, dists, nil),
	}
	if len(dists) > 1 {
		s.Distance.StdDev = stat.StdDev(dists, nil)
	}
	return s
}
