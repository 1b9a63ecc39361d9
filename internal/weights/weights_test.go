// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package weights_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomsjansons/ridi-router/internal/itinerary"
	"github.com/tomsjansons/ridi-router/internal/testgraph"
	"github.com/tomsjansons/ridi-router/internal/walker"
	"github.com/tomsjansons/ridi-router/internal/weights"
)

// lineTo finds the adjacent pair from `from` to `to` in the fixture, so
// tests can build a Segment without reimplementing graph traversal.
func lineTo(t *testing.T, c *testgraph.Canonical, from, to int64) walker.Segment {
	t.Helper()
	for _, pair := range c.Graph.GetAdjacent(c.PointRef(from)) {
		if pair.Point.Borrow(c.Graph).ID == to {
			return walker.Segment{Line: pair.Line, Point: pair.Point}
		}
	}
	t.Fatalf("no line from %d to %d in fixture", from, to)
	return walker.Segment{}
}

func TestNoLoopsVetoesRevisitedPointViaDifferentLine(t *testing.T) {
	c := testgraph.Build()

	route := &walker.Route{}
	route.Append(lineTo(t, c, 1, 2))
	route.Append(lineTo(t, c, 2, 3))

	calc := weights.NoLoops()

	fresh := calc(weights.Input{
		CurrentForkSegment: lineTo(t, c, 3, 4),
		Route:              route,
		Graph:              c.Graph,
	})
	assert.False(t, fresh.DoNotUse)

	loop := calc(weights.Input{
		CurrentForkSegment: lineTo(t, c, 3, 2),
		Route:              route,
		Graph:              c.Graph,
	})
	assert.True(t, loop.DoNotUse, "point 2 was already visited via a different line")
}

func TestPreferSameRoadNoBonusWithoutSharedTags(t *testing.T) {
	c := testgraph.Build()
	route := &walker.Route{}
	route.Append(lineTo(t, c, 1, 2))

	calc := weights.PreferSameRoad(80)
	result := calc(weights.Input{
		CurrentForkSegment: lineTo(t, c, 2, 3),
		Route:              route,
		Graph:              c.Graph,
	})
	// the fixture's ways carry no name/ref tags, so sharing is never
	// detected and the bonus never applies.
	assert.Equal(t, uint8(0), result.Weight)
	assert.False(t, result.DoNotUse)
}

func TestRulesHighwayAvoidVetoes(t *testing.T) {
	c := testgraph.Build()
	route := &walker.Route{}

	calc := weights.RulesHighway(stubPolicy{avoidHighway: true})
	result := calc(weights.Input{
		CurrentForkSegment: lineTo(t, c, 1, 2),
		Route:              route,
		Graph:              c.Graph,
	})
	assert.True(t, result.DoNotUse)
}

func TestRulesHighwayPriorityPassesThrough(t *testing.T) {
	c := testgraph.Build()
	route := &walker.Route{}

	calc := weights.RulesHighway(stubPolicy{highwayPriority: 42})
	result := calc(weights.Input{
		CurrentForkSegment: lineTo(t, c, 1, 2),
		Route:              route,
		Graph:              c.Graph,
	})
	assert.False(t, result.DoNotUse)
	assert.Equal(t, uint8(42), result.Weight)
}

func TestHeadingScoresPerfectApproach(t *testing.T) {
	c := testgraph.Build()

	it := itinerary.New(c.PointRef(1), c.PointRef(3), nil, 0)
	calc := weights.Heading()

	result := calc(weights.Input{
		CurrentForkSegment: lineTo(t, c, 1, 2),
		Route:              &walker.Route{},
		Itinerary:          it,
		WalkerFromFork:     walker.New(c.PointRef(2), it.Next()),
		Graph:              c.Graph,
	})
	assert.False(t, result.DoNotUse)
	assert.Equal(t, uint8(255), result.Weight)
}

type stubPolicy struct {
	avoidHighway    bool
	highwayPriority uint8
}

func (s stubPolicy) HighwayPriority(string) (uint8, bool) { return s.highwayPriority, s.avoidHighway }
func (s stubPolicy) SurfacePriority(string) (uint8, bool) { return 0, false }
func (s stubPolicy) SmoothnessPriority(string) (uint8, bool) { return 0, false }
