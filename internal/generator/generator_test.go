// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/generator"
	"github.com/tomsjansons/ridi-router/internal/rules"
	"github.com/tomsjansons/ridi-router/internal/testgraph"
)

func TestGenerateRoutesProducesOneRouteWhenVariationsResolveToEndpoints(t *testing.T) {
	c := testgraph.Build()

	// the fixture's points sit whole degrees apart (hundreds of km), so
	// every bearing/distance variation around start/finish (10-30 km out)
	// resolves back to the start or finish point itself; every itinerary
	// follows the same path and clustering keeps a single representative.
	gen := generator.New(c.Graph, c.PointRef(1), c.PointRef(7), nil, rules.Default(), false)

	routes, err := gen.GenerateRoutes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)

	assert.Greater(t, routes[0].Stats.LenM, 0.0)
	assert.NotNil(t, routes[0].Stats.Cluster)
}

func TestGenerateRoutesRoundTrip(t *testing.T) {
	c := testgraph.Build()

	rt := &generator.RoundTrip{BearingDeg: 45, TotalDistanceM: 100}
	gen := generator.New(c.Graph, c.PointRef(1), c.PointRef(1), rt, rules.Default(), false)

	routes, err := gen.GenerateRoutes(context.Background())
	require.NoError(t, err)
	// the round-trip grid's tiny sample distances all resolve back to
	// the start point, so every itinerary starts on its own finish and
	// yields an empty route; empty routes are dropped, so none survives.
	assert.Empty(t, routes)
}
