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
	"github.com/tomsjansons/ridi-router/internal/rules"
)

// buildClosestScenarioGraph lays out the three candidate points from
// scenarios F and G, each given its own single incident line (so each
// can carry a distinct highway tag) via a throwaway neighbor placed on
// top of it.
func buildClosestScenarioGraph(t *testing.T, point3Highway string) *mapdata.Graph {
	t.Helper()
	g := mapdata.NewGraph()

	g.InsertNode(mapdata.OsmNode{ID: 1, Lat: 57.169, Lon: 24.875})
	g.InsertNode(mapdata.OsmNode{ID: 2, Lat: 57.168, Lon: 24.875})
	g.InsertNode(mapdata.OsmNode{ID: 3, Lat: 57.159, Lon: 24.8776})
	g.InsertNode(mapdata.OsmNode{ID: 11, Lat: 57.169, Lon: 24.875})
	g.InsertNode(mapdata.OsmNode{ID: 12, Lat: 57.168, Lon: 24.875})
	g.InsertNode(mapdata.OsmNode{ID: 13, Lat: 57.159, Lon: 24.8776})

	require.NoError(t, g.InsertWay(mapdata.OsmWay{
		ID:       901,
		PointIDs: []int64{1, 11},
		Tags:     map[string]string{"highway": "unclassified"},
	}))
	require.NoError(t, g.InsertWay(mapdata.OsmWay{
		ID:       902,
		PointIDs: []int64{2, 12},
		Tags:     map[string]string{"highway": "unclassified"},
	}))
	require.NoError(t, g.InsertWay(mapdata.OsmWay{
		ID:       903,
		PointIDs: []int64{3, 13},
		Tags:     map[string]string{"highway": point3Highway},
	}))

	g.GeneratePointHashes()
	return g
}

// Scenario F: closest-to-coords with no avoid policy returns the point
// with the shortest great-circle distance to the query.
func TestClosestToCoordsScenarioF(t *testing.T) {
	g := buildClosestScenarioGraph(t, "unclassified")

	got, ok, err := g.GetClosestToCoords(57.163, 24.877, rules.Default(), false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, int64(3), got.Borrow(g).ID)
}

// Scenario G: marking point #3's only incident line highway=trunk, with
// rules that avoid trunk, demotes it in favor of the next-closest
// candidate.
func TestClosestToCoordsScenarioG(t *testing.T) {
	g := buildClosestScenarioGraph(t, "trunk")

	router := rules.Default()
	if router.Highway == nil {
		router.Highway = map[string]rules.TagAction{}
	}
	router.Highway["trunk"] = rules.TagAction{Action: rules.ActionAvoid}

	got, ok, err := g.GetClosestToCoords(57.163, 24.877, router, false)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, int64(2), got.Borrow(g).ID)
	assert.NotEqual(t, int64(3), got.Borrow(g).ID)
}
