// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphcache_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/graphcache"
	"github.com/tomsjansons/ridi-router/internal/testgraph"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	c := testgraph.Build()
	dir := filepath.Join(t.TempDir(), "cache")
	cache := graphcache.New(dir)

	require.NoError(t, cache.Write(context.Background(), c.Graph))

	restored, err := cache.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, c.Graph.NumPoints(), restored.NumPoints())

	ref, ok, err := restored.GetClosestToCoords(1.0, 1.0, nil, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), ref.Borrow(restored).ID)
}

func TestReadMissingDirReturnsNilWithoutError(t *testing.T) {
	cache := graphcache.New(filepath.Join(t.TempDir(), "missing"))
	restored, err := cache.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestDisabledCacheIsNoop(t *testing.T) {
	cache := graphcache.New("")
	c := testgraph.Build()

	require.NoError(t, cache.Write(context.Background(), c.Graph))
	restored, err := cache.Read(context.Background())
	require.NoError(t, err)
	assert.Nil(t, restored)
}
