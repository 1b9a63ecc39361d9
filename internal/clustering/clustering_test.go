// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package clustering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/clustering"
	"github.com/tomsjansons/ridi-router/internal/testgraph"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

func appendLine(t *testing.T, c *testgraph.Canonical, r *walker.Route, from, to int64) {
	t.Helper()
	for _, pair := range c.Graph.GetAdjacent(c.PointRef(from)) {
		if pair.Point.Borrow(c.Graph).ID == to {
			r.Append(walker.Segment{Line: pair.Line, Point: pair.Point})
			return
		}
	}
	t.Fatalf("no line from %d to %d in fixture", from, to)
}

func route1234(t *testing.T, c *testgraph.Canonical) *walker.Route {
	r := &walker.Route{}
	appendLine(t, c, r, 1, 2)
	appendLine(t, c, r, 2, 3)
	appendLine(t, c, r, 3, 4)
	return r
}

func TestApproximateReturnsFixedPointCount(t *testing.T) {
	c := testgraph.Build()
	shape := clustering.Approximate(c.Graph, route1234(t, c))
	assert.Len(t, shape, clustering.ApproximationPoints)
}

func TestApproximateEmptyRouteReturnsNil(t *testing.T) {
	c := testgraph.Build()
	shape := clustering.Approximate(c.Graph, &walker.Route{})
	assert.Nil(t, shape)
}

func TestGenerateGroupsIdenticalRoutesTogether(t *testing.T) {
	c := testgraph.Build()
	routes := []*walker.Route{route1234(t, c), route1234(t, c), route1234(t, c)}

	result := clustering.Generate(c.Graph, routes, clustering.DefaultParams)
	require.NotNil(t, result)
	require.Len(t, result.Labels, 3)
	assert.Equal(t, result.Labels[0], result.Labels[1])
	assert.Equal(t, result.Labels[1], result.Labels[2])
	assert.NotEqual(t, clustering.Noise, result.Labels[0])
}

func TestGenerateMarksLoneRouteAsNoise(t *testing.T) {
	c := testgraph.Build()
	onlyRoute := &walker.Route{}
	appendLine(t, c, onlyRoute, 1, 2)

	result := clustering.Generate(c.Graph, []*walker.Route{onlyRoute}, clustering.DefaultParams)
	require.NotNil(t, result)
	assert.Equal(t, []int{clustering.Noise}, result.Labels)
}

func TestGenerateSkipsEmptyRoutes(t *testing.T) {
	c := testgraph.Build()
	routes := []*walker.Route{route1234(t, c), {}}

	result := clustering.Generate(c.Graph, routes, clustering.DefaultParams)
	require.NotNil(t, result)
	assert.Len(t, result.Labels, 1)
}

func TestGenerateAllEmptyReturnsNil(t *testing.T) {
	c := testgraph.Build()
	result := clustering.Generate(c.Graph, []*walker.Route{{}, {}}, clustering.DefaultParams)
	assert.Nil(t, result)
}
