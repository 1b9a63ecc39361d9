// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package testgraph builds the small canonical road network used across
// the engine's test suites (navigator, proximity, walker). It is a
// regular package rather than a _test.go file so multiple packages'
// tests can import the same fixture.
package testgraph

import "github.com/tomsjansons/ridi-router/internal/mapdata"

// Canonical is the frozen graph plus the point ids it was built from,
// so tests can refer to points by the same numbers the scenarios use.
type Canonical struct {
	Graph *mapdata.Graph
}

// pointIDs is 1..9, 11, 12, laid out at (i.0, i.0) degrees, matching
// the fixture every navigator/walker/proximity scenario test targets.
var pointIDs = []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 11, 12}

// ways is the fixed way layout: Way 1234 through 1-2-3-4; Way 5367
// through 5-3-6-7; Way 489 through 4-8-9; Way 68 through 6-8; a
// disconnected Way 1112 through 11-12.
var ways = []struct {
	id       int64
	points   []int64
	tags     map[string]string
}{
	{id: 1234, points: []int64{1, 2, 3, 4}, tags: map[string]string{"highway": "unclassified"}},
	{id: 5367, points: []int64{5, 3, 6, 7}, tags: map[string]string{"highway": "unclassified"}},
	{id: 489, points: []int64{4, 8, 9}, tags: map[string]string{"highway": "unclassified"}},
	{id: 68, points: []int64{6, 8}, tags: map[string]string{"highway": "unclassified"}},
	{id: 1112, points: []int64{11, 12}, tags: map[string]string{"highway": "unclassified"}},
}

// Build constructs and freezes the canonical graph.
func Build() *Canonical {
	g := mapdata.NewGraph()
	for _, id := range pointIDs {
		g.InsertNode(mapdata.OsmNode{ID: id, Lat: float64(id), Lon: float64(id)})
	}
	for _, w := range ways {
		if err := g.InsertWay(mapdata.OsmWay{ID: w.id, PointIDs: w.points, Tags: w.tags}); err != nil {
			panic(err) // fixture is fixed and known-good; a failure here is a bug in the fixture itself
		}
	}
	g.GeneratePointHashes()
	return &Canonical{Graph: g}
}

// PointRef resolves one of the fixture's point ids to a handle.
func (c *Canonical) PointRef(id int64) mapdata.PointRef {
	ref, ok := pointRefByID(c.Graph, id)
	if !ok {
		panic("testgraph: unknown point id")
	}
	return ref
}

// pointRefByID scans the point table for id, since the builder-only id
// map is dropped at freeze time; the fixture is small enough that a
// linear scan is cheap and keeps Graph's public surface free of an
// index-by-id query nobody else needs.
func pointRefByID(g *mapdata.Graph, id int64) (mapdata.PointRef, bool) {
	for i := 0; i < g.NumPoints(); i++ {
		ref := mapdata.PointRef{Idx: int32(i)}
		if ref.Borrow(g).ID == id {
			return ref, true
		}
	}
	return mapdata.PointRef{}, false
}
