// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package proximity implements the coarse bucketed spatial index the
// graph store uses for closest-point queries: points are dropped into
// quantized lat/lon cells, and a query expands outward in concentric
// rings until it has enough candidates to score.
package proximity

import "math"

// DefaultCellSizeDeg is the bucket width in degrees. At mid-latitudes
// this is roughly a 1.1km square, small enough that a handful of rings
// always reaches real road density without scanning the whole grid.
const DefaultCellSizeDeg = 0.01

// CellKey identifies one bucket. Its fields are exported so the grid
// round-trips through encoding/gob unchanged (see internal/graphcache).
type CellKey struct {
	X int32
	Y int32
}

// Grid is a bucketed index from quantized coordinates to point indices.
// It holds no coordinates itself; the caller (internal/mapdata) is
// responsible for resolving candidate indices back into scorable points.
type Grid struct {
	CellSizeDeg float64
	Cells       map[CellKey][]int32
}

// NewGrid builds an empty grid with the given cell size in degrees. A
// zero or negative size falls back to DefaultCellSizeDeg.
func NewGrid(cellSizeDeg float64) *Grid {
	if cellSizeDeg <= 0 {
		cellSizeDeg = DefaultCellSizeDeg
	}
	return &Grid{
		CellSizeDeg: cellSizeDeg,
		Cells:       make(map[CellKey][]int32),
	}
}

func (g *Grid) keyFor(lat, lon float64) CellKey {
	return CellKey{
		X: int32(math.Floor(lon / g.CellSizeDeg)),
		Y: int32(math.Floor(lat / g.CellSizeDeg)),
	}
}

// Insert buckets idx under the cell containing (lat, lon).
func (g *Grid) Insert(lat, lon float64, idx int32) {
	k := g.keyFor(lat, lon)
	g.Cells[k] = append(g.Cells[k], idx)
}

// Len returns the total number of indexed entries, counting duplicates
// in the (unlikely) event two distinct points share a cell and both
// get inserted under the same key more than once.
func (g *Grid) Len() int {
	n := 0
	for _, v := range g.Cells {
		n += len(v)
	}
	return n
}

// ringCellKeys returns the square ring of cells at Chebyshev distance
// `ring` from (cx, cy). Ring 0 is just the center cell.
func ringCellKeys(cx, cy int32, ring int32) []CellKey {
	if ring == 0 {
		return []CellKey{{X: cx, Y: cy}}
	}
	var keys []CellKey
	for dx := -ring; dx <= ring; dx++ {
		keys = append(keys, CellKey{X: cx + dx, Y: cy - ring}, CellKey{X: cx + dx, Y: cy + ring})
	}
	for dy := -ring + 1; dy <= ring-1; dy++ {
		keys = append(keys, CellKey{X: cx - ring, Y: cy + dy}, CellKey{X: cx + ring, Y: cy + dy})
	}
	return keys
}

// maxRingSearch bounds the ring expansion so a query over an empty or
// sparse grid terminates instead of scanning forever.
const maxRingSearch = 10000

// CandidatesNear expands outward in concentric rings from (lat, lon)
// until at least one candidate is found, then additionally collects the
// next ring out (to avoid bias from candidates sitting just past a ring
// boundary), and returns the union of point indices found. Returns nil
// if the grid holds nothing within maxRingSearch rings.
func (g *Grid) CandidatesNear(lat, lon float64) []int32 {
	k := g.keyFor(lat, lon)
	var found []int32
	var ring int32
	for ; ring <= maxRingSearch; ring++ {
		for _, ck := range ringCellKeys(k.X, k.Y, ring) {
			found = append(found, g.Cells[ck]...)
		}
		if len(found) > 0 {
			for _, ck := range ringCellKeys(k.X, k.Y, ring+1) {
				found = append(found, g.Cells[ck]...)
			}
			return found
		}
	}
	return nil
}
