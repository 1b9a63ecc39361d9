// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
)

func buildSmallGraph(t *testing.T) *mapdata.Graph {
	t.Helper()
	g := mapdata.NewGraph()
	for id := int64(1); id <= 4; id++ {
		g.InsertNode(mapdata.OsmNode{ID: id, Lat: float64(id), Lon: float64(id)})
	}
	require.NoError(t, g.InsertWay(mapdata.OsmWay{
		ID:       100,
		PointIDs: []int64{1, 2, 3, 4},
		Tags:     map[string]string{"highway": "unclassified", "name": "Main Street"},
	}))
	g.GeneratePointHashes()
	return g
}

func pointByID(g *mapdata.Graph, id int64) mapdata.PointRef {
	for i := 0; i < g.NumPoints(); i++ {
		ref := mapdata.PointRef{Idx: int32(i)}
		if ref.Borrow(g).ID == id {
			return ref
		}
	}
	panic("point not found")
}

// Invariant 1: every line index in a point's incidence list references
// a line whose endpoints include that point.
func TestIncidenceListsAreConsistent(t *testing.T) {
	g := buildSmallGraph(t)
	for i := 0; i < g.NumPoints(); i++ {
		ref := mapdata.PointRef{Idx: int32(i)}
		p := ref.Borrow(g)
		for _, lineRef := range p.Lines {
			line := lineRef.Borrow(g)
			assert.True(t, line.PointA == ref || line.PointB == ref,
				"line %v incident to point %d does not have it as an endpoint", lineRef, p.ID)
		}
	}
}

// Invariant 2: IsJunction iff degree >= 3.
func TestJunctionDegree(t *testing.T) {
	g := mapdata.NewGraph()
	for id := int64(1); id <= 5; id++ {
		g.InsertNode(mapdata.OsmNode{ID: id, Lat: float64(id), Lon: float64(id)})
	}
	// star: 1 is connected to 2,3,4 individually (three separate ways so
	// each contributes one line), 5 stays isolated.
	for i, leaf := range []int64{2, 3, 4} {
		require.NoError(t, g.InsertWay(mapdata.OsmWay{
			ID:       int64(200 + i),
			PointIDs: []int64{1, leaf},
			Tags:     map[string]string{"highway": "residential"},
		}))
	}
	g.GeneratePointHashes()

	center := pointByID(g, 1)
	assert.True(t, center.Borrow(g).IsJunction())

	leaf := pointByID(g, 2)
	assert.False(t, leaf.Borrow(g).IsJunction())
}

// Invariant 3: equal tag-set 5-tuples share a single slot.
func TestTagSetInterningDeduplicates(t *testing.T) {
	g := mapdata.NewGraph()
	for id := int64(1); id <= 6; id++ {
		g.InsertNode(mapdata.OsmNode{ID: id, Lat: float64(id), Lon: float64(id)})
	}
	tags := map[string]string{"highway": "primary", "surface": "asphalt"}
	require.NoError(t, g.InsertWay(mapdata.OsmWay{ID: 1, PointIDs: []int64{1, 2}, Tags: tags}))
	require.NoError(t, g.InsertWay(mapdata.OsmWay{ID: 2, PointIDs: []int64{3, 4}, Tags: tags}))
	// highway values are stored with any "_link" suffix trimmed, so
	// "primary_link" interns as "primary" and this way's tag set matches
	// the other two.
	require.NoError(t, g.InsertWay(mapdata.OsmWay{ID: 3, PointIDs: []int64{5, 6}, Tags: map[string]string{"highway": "primary_link", "surface": "asphalt"}}))
	g.GeneratePointHashes()

	line1 := pointByID(g, 1).Borrow(g).Lines[0].Borrow(g)
	line2 := pointByID(g, 3).Borrow(g).Lines[0].Borrow(g)
	line3 := pointByID(g, 5).Borrow(g).Lines[0].Borrow(g)

	assert.Equal(t, line1.Tags, line2.Tags, "identical tag 5-tuples must share one interned slot")
	assert.Equal(t, g.Highway(g.TagSetByRef(line1.Tags)), g.Highway(g.TagSetByRef(line3.Tags)),
		"primary_link normalizes to the same highway value as primary")
}

// Invariant 7: pack/unpack round-trips structural equality.
func TestSnapshotRoundTrip(t *testing.T) {
	g := buildSmallGraph(t)
	snap := g.Snapshot()
	restored := mapdata.FromSnapshot(snap)

	assert.Equal(t, g.NumPoints(), restored.NumPoints())
	assert.Equal(t, g.NumLines(), restored.NumLines())

	orig := pointByID(g, 1)
	again := pointByID(restored, 1)
	assert.Equal(t, orig.Borrow(g).ID, again.Borrow(restored).ID)
	assert.Equal(t, len(orig.Borrow(g).Lines), len(again.Borrow(restored).Lines))
}

func TestInsertWayMissingPoint(t *testing.T) {
	g := mapdata.NewGraph()
	g.InsertNode(mapdata.OsmNode{ID: 1, Lat: 1, Lon: 1})
	err := g.InsertWay(mapdata.OsmWay{
		ID:       1,
		PointIDs: []int64{1, 2},
		Tags:     map[string]string{"highway": "residential"},
	})
	var missing *mapdata.MissingPointError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, int64(2), missing.PointID)
}

func TestWayAdmissibility(t *testing.T) {
	g := mapdata.NewGraph()
	g.InsertNode(mapdata.OsmNode{ID: 1, Lat: 1, Lon: 1})
	g.InsertNode(mapdata.OsmNode{ID: 2, Lat: 2, Lon: 2})

	cases := []struct {
		name string
		tags map[string]string
		want bool
	}{
		{"plain residential", map[string]string{"highway": "residential"}, true},
		{"service excluded", map[string]string{"highway": "residential", "service": "driveway"}, false},
		{"access private excluded", map[string]string{"highway": "residential", "access": "private"}, false},
		{"path without motorcycle excluded", map[string]string{"highway": "path"}, false},
		{"path with motorcycle allowed", map[string]string{"highway": "path", "motorcycle": "yes"}, true},
		{"unlisted highway excluded", map[string]string{"highway": "footway"}, false},
	}
	for i, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			way := mapdata.OsmWay{ID: int64(i + 1), PointIDs: []int64{1, 2}, Tags: c.tags}
			before := g.NumLines()
			require.NoError(t, g.InsertWay(way))
			if c.want {
				assert.Greater(t, g.NumLines(), before)
			} else {
				assert.Equal(t, before, g.NumLines())
			}
		})
	}
}

func TestClosestToCoordsBeforeFreezeIsUninitialized(t *testing.T) {
	g := mapdata.NewGraph()
	_, _, err := g.GetClosestToCoords(1, 1, nil, false)
	assert.ErrorIs(t, err, mapdata.ErrUninitialized)
}
