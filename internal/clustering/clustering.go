// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package clustering groups a batch of generated routes that cover
// similar ground so the generator can return one representative per
// group instead of dozens of near-duplicates. Each route is first
// reduced to a fixed-size fingerprint (its shape approximated by a
// handful of evenly spaced chunk-mean points), then fingerprints are
// clustered by mutual distance.
package clustering

import (
	"math"
	"sort"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

// ApproximationPoints is the number of chunk-mean points a route is
// reduced to before clustering.
const ApproximationPoints = 10

// Noise is the label assigned to a fingerprint that didn't join any
// cluster meeting MinClusterSize.
const Noise = -1

// Params controls the clustering threshold. There is no HDBSCAN
// implementation in the Go ecosystem pack this project draws from;
// Params substitutes a flat epsilon/min-cluster-size single-link
// clusterer, which the specification explicitly allows as a fallback.
type Params struct {
	Epsilon        float64
	MinClusterSize int
}

// DefaultParams mirrors the epsilon and min_cluster_size values the
// reference implementation's HDBSCAN hyperparameters used.
var DefaultParams = Params{Epsilon: 0.1, MinClusterSize: 2}

// Point is a 2D fingerprint coordinate (lat, lon).
type Point [2]float64

// Result is the output of Generate: one approximated shape and one
// cluster label per input route, in the same order as the input slice.
type Result struct {
	ApproximatedRoutes [][]Point
	Labels             []int
}

// Approximate reduces route to ApproximationPoints evenly spaced
// chunk-mean points, each the arithmetic mean lat/lon of the segment
// end-points falling in that chunk.
func Approximate(g *mapdata.Graph, route *walker.Route) []Point {
	segments := route.Segments()
	n := len(segments)
	if n == 0 {
		return nil
	}

	pointsPerStep := float64(n) / float64(ApproximationPoints)
	out := make([]Point, 0, ApproximationPoints)
	var last Point
	haveLast := false

	for step := 0; step < ApproximationPoints; step++ {
		start := int(float64(step) * pointsPerStep)
		end := int((float64(step) + 1) * pointsPerStep)
		if end > n {
			end = n
		}
		if start >= end {
			// A short route can yield an empty chunk near its tail due
			// to rounding; repeat the previous chunk's point rather
			// than leave a gap in the fixed-size fingerprint.
			if haveLast {
				out = append(out, last)
				continue
			}
			start, end = 0, n
		}

		var sumLat, sumLon float64
		for _, seg := range segments[start:end] {
			p := seg.Point.Borrow(g)
			sumLat += float64(p.Lat)
			sumLon += float64(p.Lon)
		}
		count := float64(end - start)
		mean := Point{sumLat / count, sumLon / count}
		out = append(out, mean)
		last = mean
		haveLast = true
	}
	return out
}

func flatten(p []Point) []float64 {
	out := make([]float64, 0, len(p)*2)
	for _, pt := range p {
		out = append(out, pt[0], pt[1])
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Generate approximates every route with a non-empty segment list and
// clusters the resulting fingerprints, returning nil if no route
// yielded a fingerprint.
func Generate(g *mapdata.Graph, routes []*walker.Route, params Params) *Result {
	approximated := make([][]Point, 0, len(routes))
	features := make([][]float64, 0, len(routes))

	for _, route := range routes {
		shape := Approximate(g, route)
		if shape == nil {
			continue
		}
		approximated = append(approximated, shape)
		features = append(features, flatten(shape))
	}

	if len(approximated) == 0 {
		return nil
	}

	labels := cluster(features, params)
	return &Result{ApproximatedRoutes: approximated, Labels: labels}
}

// cluster runs single-link agglomerative clustering with a flat
// distance threshold: two fingerprints within params.Epsilon of each
// other join the same cluster, transitively. Clusters smaller than
// params.MinClusterSize are relabeled Noise. Surviving clusters are
// renumbered 0, 1, 2, ... in order of their lowest member index, so the
// labeling is deterministic for a given input order.
func cluster(features [][]float64, params Params) []int {
	n := len(features)
	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if euclidean(features[i], features[j]) <= params.Epsilon {
				uf.union(i, j)
			}
		}
	}

	members := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	roots := make([]int, 0, len(members))
	for root := range members {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(a, b int) bool {
		return members[roots[a]][0] < members[roots[b]][0]
	})

	labels := make([]int, n)
	nextLabel := 0
	for _, root := range roots {
		idxs := members[root]
		if len(idxs) < params.MinClusterSize {
			for _, i := range idxs {
				labels[i] = Noise
			}
			continue
		}
		for _, i := range idxs {
			labels[i] = nextLabel
		}
		nextLabel++
	}
	return labels
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: make([]int, n)}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
