// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/generator"
	"github.com/tomsjansons/ridi-router/internal/routestats"
	"github.com/tomsjansons/ridi-router/internal/tui"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

func TestPickRouteSkipsThePickerWithOneCandidate(t *testing.T) {
	routes := []generator.RouteWithStats{
		{Stats: routestats.Stats{LenM: 12000}, Route: walker.FromSegments(nil)},
	}
	idx, err := tui.PickRoute(routes)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestPickRouteRejectsEmptyBatch(t *testing.T) {
	_, err := tui.PickRoute(nil)
	assert.Error(t, err)
}
