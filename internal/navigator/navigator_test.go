// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package navigator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/itinerary"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/navigator"
	"github.com/tomsjansons/ridi-router/internal/testgraph"
	"github.com/tomsjansons/ridi-router/internal/walker"
	"github.com/tomsjansons/ridi-router/internal/weights"
)

func routeIDs(t *testing.T, g *mapdata.Graph, route *walker.Route) []int64 {
	t.Helper()
	ids := make([]int64, 0, route.Len())
	for _, seg := range route.Segments() {
		ids = append(ids, seg.Point.Borrow(g).ID)
	}
	return ids
}

func prevPointID(g *mapdata.Graph, in weights.Input) int64 {
	if last, ok := in.Route.Last(); ok {
		return last.Point.Borrow(g).ID
	}
	return in.Itinerary.Start.Borrow(g).ID
}

// Scenario A: pick best at junction. Weight prefers 6 from 3 with 10,
// else 1. From 1 to 7 the only junction is 3; the route should go
// straight through the heavier choice to 7.
func TestPickBestAtJunction(t *testing.T) {
	c := testgraph.Build()
	g := c.Graph

	weight := func(in weights.Input) weights.Result {
		if prevPointID(g, in) == 3 && in.CurrentForkSegment.Point.Borrow(g).ID == 6 {
			return weights.UseWithWeight(10)
		}
		return weights.UseWithWeight(1)
	}

	it := itinerary.New(c.PointRef(1), c.PointRef(7), nil, 0)
	nav := navigator.New(g, it, []weights.Calc{weight}, navigator.DefaultStepLimit)
	result := nav.GenerateRoutes()

	require.Equal(t, navigator.Finished, result.Outcome)
	assert.Equal(t, []int64{2, 3, 6, 7}, routeIDs(t, g, result.Route))
}

// Scenario B: backtrack on dead end. Weight favors 5 highest (10), then
// 6 (5), then 6->7 (10). 5 is a dead end so the navigator must
// backtrack and retry with 6.
func TestBacktrackOnDeadEnd(t *testing.T) {
	c := testgraph.Build()
	g := c.Graph

	weight := func(in weights.Input) weights.Result {
		endID := in.CurrentForkSegment.Point.Borrow(g).ID
		prevID := prevPointID(g, in)
		if prevID == 3 && endID == 5 {
			return weights.UseWithWeight(10)
		}
		if prevID == 3 && endID == 6 {
			return weights.UseWithWeight(5)
		}
		if prevID == 6 && endID == 7 {
			return weights.UseWithWeight(10)
		}
		return weights.UseWithWeight(1)
	}

	it := itinerary.New(c.PointRef(1), c.PointRef(7), nil, 0)
	nav := navigator.New(g, it, []weights.Calc{weight}, navigator.DefaultStepLimit)
	result := nav.GenerateRoutes()

	require.Equal(t, navigator.Finished, result.Outcome)
	assert.Equal(t, []int64{2, 3, 6, 7}, routeIDs(t, g, result.Route))
}

// Scenario C: node 11 is in a disconnected component; no positive
// weighting can bridge the gap.
func TestUnreachableIsStuck(t *testing.T) {
	c := testgraph.Build()
	g := c.Graph

	weight := func(weights.Input) weights.Result { return weights.UseWithWeight(1) }

	it := itinerary.New(c.PointRef(1), c.PointRef(11), nil, 0)
	nav := navigator.New(g, it, []weights.Calc{weight}, navigator.DefaultStepLimit)
	result := nav.GenerateRoutes()

	assert.Equal(t, navigator.Stuck, result.Outcome)
}

// Scenario D: a weight function vetoes node 7 outright everywhere it
// appears as a fork choice, so the destination can never be chosen.
func TestDoNotUseEverywhereIsStuck(t *testing.T) {
	c := testgraph.Build()
	g := c.Graph

	weight := func(in weights.Input) weights.Result {
		if in.CurrentForkSegment.Point.Borrow(g).ID == 7 {
			return weights.DoNotUseResult
		}
		return weights.UseWithWeight(1)
	}

	it := itinerary.New(c.PointRef(1), c.PointRef(7), nil, 0)
	nav := navigator.New(g, it, []weights.Calc{weight}, navigator.DefaultStepLimit)
	result := nav.GenerateRoutes()

	assert.Equal(t, navigator.Stuck, result.Outcome)
}

// Scenario E: two weight functions agree everywhere except the 3->6
// fork, where their sum (11) loses to the flat sum every other choice
// gets (12); the route takes the longer way through 4, 8, 6, 7. Ties
// along the way get discarded through backtracking and converge on the
// same answer regardless of which tied candidate is tried first.
func TestSumOfWeightsFavorsLongerPath(t *testing.T) {
	c := testgraph.Build()
	g := c.Graph

	weight1 := func(in weights.Input) weights.Result {
		if prevPointID(g, in) == 3 && in.CurrentForkSegment.Point.Borrow(g).ID == 6 {
			return weights.UseWithWeight(10)
		}
		return weights.UseWithWeight(6)
	}
	weight2 := func(in weights.Input) weights.Result {
		if prevPointID(g, in) == 3 && in.CurrentForkSegment.Point.Borrow(g).ID == 6 {
			return weights.UseWithWeight(1)
		}
		return weights.UseWithWeight(6)
	}

	it := itinerary.New(c.PointRef(1), c.PointRef(7), nil, 0)
	nav := navigator.New(g, it, []weights.Calc{weight1, weight2}, navigator.DefaultStepLimit)
	result := nav.GenerateRoutes()

	require.Equal(t, navigator.Finished, result.Outcome)
	assert.Equal(t, []int64{2, 3, 4, 8, 6, 7}, routeIDs(t, g, result.Route))
}

func TestStepLimitStops(t *testing.T) {
	c := testgraph.Build()
	g := c.Graph

	weight := func(weights.Input) weights.Result { return weights.UseWithWeight(0) }

	it := itinerary.New(c.PointRef(1), c.PointRef(7), nil, 0)
	nav := navigator.New(g, it, []weights.Calc{weight}, 3)
	result := nav.GenerateRoutes()

	assert.Equal(t, navigator.Stopped, result.Outcome)
}
