// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ingestion_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/ingestion"
)

const fixtureJSON = `[
	{"type": "node", "id": 1, "lat": 1.0, "lon": 1.0},
	{"type": "node", "id": 2, "lat": 2.0, "lon": 2.0},
	{"type": "node", "id": 3, "lat": 3.0, "lon": 3.0},
	{"type": "way", "id": 100, "nodes": [1, 2, 3], "tags": {"highway": "unclassified"}},
	{"type": "way", "id": 101, "nodes": [1, 2], "tags": {"highway": "footway"}},
	{"type": "way", "id": 102, "nodes": [1, 2], "tags": {"highway": "path", "motorcycle": "yes"}},
	{"type": "relation", "id": 200, "tags": {"type": "restriction"}, "members": [
		{"ref": 100, "role": "from", "type": "way"},
		{"ref": 1, "role": "via", "type": "node"},
		{"ref": 102, "role": "to", "type": "way"}
	]}
]`

func TestLoadBuildsGraphFromJSONSource(t *testing.T) {
	src := ingestion.NewJSONSource(strings.NewReader(fixtureJSON), nil)
	g, err := ingestion.Load(context.Background(), src, nil)
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestJSONSourceDropsInadmissibleWays(t *testing.T) {
	src := ingestion.NewJSONSource(strings.NewReader(fixtureJSON), nil)

	var wayIDs []int64
	done := make(chan struct{})
	go func() {
		for w := range src.Ways() {
			wayIDs = append(wayIDs, w.ID)
		}
		close(done)
	}()
	for range src.Nodes() {
	}
	for range src.Relations() {
	}
	<-done

	require.NoError(t, src.Err())
	assert.Contains(t, wayIDs, int64(100))
	assert.Contains(t, wayIDs, int64(102))
	assert.NotContains(t, wayIDs, int64(101))
}

func TestJSONSourceInvalidJSONReturnsDecodeError(t *testing.T) {
	src := ingestion.NewJSONSource(strings.NewReader("not json"), nil)
	_, err := ingestion.Load(context.Background(), src, nil)
	assert.Error(t, err)
}

const skippedElementsFixture = `[
	{"type": "node", "id": 1, "lat": 1.0, "lon": 1.0},
	{"type": "way", "id": 100, "nodes": [1, 999], "tags": {"highway": "unclassified"}},
	{"type": "relation", "id": 200, "tags": {"type": "restriction", "restriction": "no_diagonal_teleport"}, "members": [
		{"ref": 100, "role": "from", "type": "way"},
		{"ref": 1, "role": "via", "type": "node"},
		{"ref": 100, "role": "to", "type": "way"}
	]}
]`

func TestLoadLogsSkippedWaysAndRelations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	src := ingestion.NewJSONSource(strings.NewReader(skippedElementsFixture), logger)
	g, err := ingestion.Load(context.Background(), src, logger)
	require.NoError(t, err)
	require.NotNil(t, g)

	out := buf.String()
	assert.Contains(t, out, "skipping way")
	assert.Contains(t, out, "way_id=100")
	assert.Contains(t, out, "skipping relation")
	assert.Contains(t, out, "relation_id=200")
}

func TestLoadRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := ingestion.NewJSONSource(strings.NewReader(fixtureJSON), nil)
	_, err := ingestion.Load(ctx, src, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
