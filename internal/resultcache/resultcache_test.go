// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resultcache_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/generator"
	"github.com/tomsjansons/ridi-router/internal/resultcache"
	"github.com/tomsjansons/ridi-router/internal/routestats"
	"github.com/tomsjansons/ridi-router/internal/testgraph"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

func openStore(t *testing.T) *resultcache.Store {
	t.Helper()
	store, err := resultcache.Open(filepath.Join(t.TempDir(), "badger"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadMissReturnsNilWithoutError(t *testing.T) {
	store := openStore(t)
	c := testgraph.Build()
	sig := resultcache.SignatureFor(c.Graph, c.PointRef(1), c.PointRef(7), "rules-v1")

	routes, err := store.Load(context.Background(), sig)
	require.NoError(t, err)
	assert.Nil(t, routes)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store := openStore(t)
	c := testgraph.Build()
	sig := resultcache.SignatureFor(c.Graph, c.PointRef(1), c.PointRef(7), "rules-v1")

	route := walker.FromSegments(nil)
	for _, pair := range c.Graph.GetAdjacent(c.PointRef(1)) {
		route.Append(walker.Segment{Line: pair.Line, Point: pair.Point})
		break
	}
	batch := []generator.RouteWithStats{{Stats: routestats.Stats{LenM: 123}, Route: route}}

	require.NoError(t, store.Save(context.Background(), sig, batch))

	loaded, err := store.Load(context.Background(), sig)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 123.0, loaded[0].Stats.LenM)
	assert.Len(t, loaded[0].Route.Segments(), 1)
}

func TestDifferentSignaturesDoNotCollide(t *testing.T) {
	store := openStore(t)
	c := testgraph.Build()

	sigA := resultcache.SignatureFor(c.Graph, c.PointRef(1), c.PointRef(7), "rules-v1")
	sigB := resultcache.SignatureFor(c.Graph, c.PointRef(1), c.PointRef(9), "rules-v1")
	assert.NotEqual(t, sigA.Key(), sigB.Key())
}
