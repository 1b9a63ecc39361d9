// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

import "fmt"

// LineDirection classifies how a line may be traversed.
type LineDirection uint8

const (
	BothWays LineDirection = iota
	OneWay
	Roundabout
)

// LineRef is a stable index into the frozen graph's line table.
type LineRef struct {
	Idx int32
}

func (r LineRef) Borrow(g *Graph) *Line { return &g.lines[r.Idx] }
func newLineRef(idx int) LineRef        { return LineRef{Idx: int32(idx)} }

// Line is an undirected arc between two points, carrying a traversal
// direction and an interned tag-set handle. Length is never stored; it
// is always derived from the endpoints via geo.DistanceM.
type Line struct {
	PointA    PointRef
	PointB    PointRef
	Direction LineDirection
	Tags      TagSetRef
}

// IsOneWay reports whether the line may only be traversed A→B.
func (l *Line) IsOneWay() bool {
	return l.Direction == OneWay || l.Direction == Roundabout
}

// IsRoundabout reports whether the line is part of a roundabout.
func (l *Line) IsRoundabout() bool { return l.Direction == Roundabout }

// OtherEnd returns the endpoint of l that is not from.
func (l *Line) OtherEnd(from PointRef) PointRef {
	if l.PointA == from {
		return l.PointB
	}
	return l.PointA
}

// LineID returns the implicit "a-b" identifier used in tests and debug
// output, ordered by the underlying OSM point ids.
func (g *Graph) LineID(ref LineRef) string {
	l := ref.Borrow(g)
	a, b := l.PointA.Borrow(g), l.PointB.Borrow(g)
	if b.ID < a.ID {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a.ID, b.ID)
}

// LengthM returns the line's great-circle length in meters.
func (g *Graph) LengthM(ref LineRef) float64 {
	l := ref.Borrow(g)
	return g.DistanceM(l.PointA, l.PointB)
}
