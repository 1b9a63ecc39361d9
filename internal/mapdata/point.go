// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

// PointRef is a stable, type-tagged index into the frozen graph's point
// table. It never owns the pointed-to data; Borrow resolves it against
// whichever *Graph produced it. Idx is exported so the handle survives
// a gob round-trip through internal/graphcache unchanged.
type PointRef struct {
	Idx int32
}

// Borrow resolves the handle against g. Calling it on a handle from a
// different graph, or before the graph is frozen, is a programmer error.
func (r PointRef) Borrow(g *Graph) *Point {
	return &g.points[r.Idx]
}

func newPointRef(idx int) PointRef { return PointRef{Idx: int32(idx)} }

// Point is a graph node: a stable OSM id, coordinates, its incident
// lines, any restriction rules for which it is the via point, and the
// two area flags ingestion may set.
type Point struct {
	ID                     int64
	Lat                    float32
	Lon                    float32
	Lines                  []LineRef
	Rules                  []Rule
	ResidentialInProximity bool
	NogoArea               bool
}

// IsJunction reports whether p has three or more incident lines.
func (p *Point) IsJunction() bool { return len(p.Lines) >= 3 }
