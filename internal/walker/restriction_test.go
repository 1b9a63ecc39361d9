// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package walker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

// buildRestrictedStar builds a 4-way junction at point 0 (legs to
// points 1/2/3/4 on ways 10/11/12/13) with a no_left_turn restriction
// forbidding continuing from way 10 (the north leg) onto way 11 (the
// east leg) via the center point.
func buildRestrictedStar(t *testing.T) *mapdata.Graph {
	t.Helper()
	g := mapdata.NewGraph()
	g.InsertNode(mapdata.OsmNode{ID: 0, Lat: 0, Lon: 0})
	g.InsertNode(mapdata.OsmNode{ID: 1, Lat: 1, Lon: 0})
	g.InsertNode(mapdata.OsmNode{ID: 2, Lat: 0, Lon: 1})
	g.InsertNode(mapdata.OsmNode{ID: 3, Lat: -1, Lon: 0})
	g.InsertNode(mapdata.OsmNode{ID: 4, Lat: 0, Lon: -1})

	legs := []struct {
		id     int64
		points []int64
	}{
		{id: 10, points: []int64{1, 0}},
		{id: 11, points: []int64{0, 2}},
		{id: 12, points: []int64{0, 3}},
		{id: 13, points: []int64{0, 4}},
	}
	for _, leg := range legs {
		require.NoError(t, g.InsertWay(mapdata.OsmWay{
			ID:       leg.id,
			PointIDs: leg.points,
			Tags:     map[string]string{"highway": "unclassified"},
		}))
	}
	require.NoError(t, g.InsertRelation(mapdata.OsmRelation{
		ID:   900,
		Tags: map[string]string{"type": "restriction", "restriction": "no_left_turn"},
		Members: []mapdata.OsmRelationMember{
			{MemberRef: 10, Role: mapdata.RoleFrom, MemberType: mapdata.MemberWay},
			{MemberRef: 0, Role: mapdata.RoleVia, MemberType: mapdata.MemberNode},
			{MemberRef: 11, Role: mapdata.RoleTo, MemberType: mapdata.MemberWay},
		},
	}))
	g.GeneratePointHashes()
	return g
}

func starPointByID(g *mapdata.Graph, id int64) mapdata.PointRef {
	for i := 0; i < g.NumPoints(); i++ {
		ref := mapdata.PointRef{Idx: int32(i)}
		if ref.Borrow(g).ID == id {
			return ref
		}
	}
	panic("walker: point not found in restriction fixture")
}

// TestMoveForwardHonorsNotAllowedRestriction arrives at the center
// point from the north leg; the east leg must be excluded from the
// fork's choices, while south and west remain legal.
func TestMoveForwardHonorsNotAllowedRestriction(t *testing.T) {
	g := buildRestrictedStar(t)
	w := walker.New(starPointByID(g, 1), starPointByID(g, 3))

	move := w.MoveForwardToNextFork(g)

	require.Equal(t, walker.Fork, move.Kind)
	got := make([]int64, 0, len(move.Choices))
	for _, s := range move.Choices {
		got = append(got, s.Point.Borrow(g).ID)
	}
	assert.ElementsMatch(t, []int64{3, 4}, got, "east (2) is forbidden when entering via the north leg")
}

// TestMoveForwardRestrictionDoesNotApplyFromOtherEntryLines confirms the
// restriction only fires for a walker that actually entered via the
// rule's FromLines: arriving from the south leg, all three other
// directions (including east) remain legal.
func TestMoveForwardRestrictionDoesNotApplyFromOtherEntryLines(t *testing.T) {
	g := buildRestrictedStar(t)
	w := walker.New(starPointByID(g, 3), starPointByID(g, 1))

	move := w.MoveForwardToNextFork(g)

	require.Equal(t, walker.Fork, move.Kind)
	got := make([]int64, 0, len(move.Choices))
	for _, s := range move.Choices {
		got = append(got, s.Point.Borrow(g).ID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 4}, got)
}
