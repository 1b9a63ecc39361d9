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

	"github.com/tomsjansons/ridi-router/internal/testgraph"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

func TestMoveForwardAutoAdvancesThroughNonJunctions(t *testing.T) {
	c := testgraph.Build()
	w := walker.New(c.PointRef(1), c.PointRef(3))

	move := w.MoveForwardToNextFork(c.Graph)

	require.Equal(t, walker.Finish, move.Kind)
	ids := make([]int64, 0)
	for _, seg := range w.GetRoute().Segments() {
		ids = append(ids, seg.Point.Borrow(c.Graph).ID)
	}
	assert.Equal(t, []int64{2, 3}, ids)
}

func TestMoveForwardStopsAtJunctionWithoutChoice(t *testing.T) {
	c := testgraph.Build()
	w := walker.New(c.PointRef(1), c.PointRef(7))

	move := w.MoveForwardToNextFork(c.Graph)

	require.Equal(t, walker.Fork, move.Kind)
	got := make([]int64, 0, len(move.Choices))
	for _, s := range move.Choices {
		got = append(got, s.Point.Borrow(c.Graph).ID)
	}
	assert.ElementsMatch(t, []int64{4, 5, 6}, got)
}

func TestMoveForwardConsumesForkChoice(t *testing.T) {
	c := testgraph.Build()
	w := walker.New(c.PointRef(1), c.PointRef(7))

	_ = w.MoveForwardToNextFork(c.Graph) // reach the fork at 3
	w.SetForkChoice(c.PointRef(6))

	move := w.MoveForwardToNextFork(c.Graph)
	require.Equal(t, walker.Fork, move.Kind, "point 6 is itself a junction, degree 3")
	assert.Equal(t, int64(6), w.GetLastPoint().Borrow(c.Graph).ID)
}

func TestMoveForwardDeadEnd(t *testing.T) {
	c := testgraph.Build()
	w := walker.New(c.PointRef(1), c.PointRef(7))

	_ = w.MoveForwardToNextFork(c.Graph)
	w.SetForkChoice(c.PointRef(5))

	move := w.MoveForwardToNextFork(c.Graph)
	assert.Equal(t, walker.DeadEnd, move.Kind, "5 only connects back to 3")
}

func TestMoveBackwardsToPrevFork(t *testing.T) {
	c := testgraph.Build()
	w := walker.New(c.PointRef(1), c.PointRef(7))

	_ = w.MoveForwardToNextFork(c.Graph)
	w.SetForkChoice(c.PointRef(5))
	_ = w.MoveForwardToNextFork(c.Graph) // walks onto 5, dead ends

	popped, atJunction := w.MoveBackwardsToPrevFork(c.Graph)

	assert.True(t, atJunction)
	assert.Len(t, popped, 1)
	assert.Equal(t, int64(3), w.GetLastPoint().Borrow(c.Graph).ID)
}

func TestMoveBackwardsUnwindsWithoutJunction(t *testing.T) {
	c := testgraph.Build()
	w := walker.New(c.PointRef(11), c.PointRef(12))

	move := w.MoveForwardToNextFork(c.Graph)
	require.Equal(t, walker.Finish, move.Kind)

	popped, atJunction := w.MoveBackwardsToPrevFork(c.Graph)
	assert.False(t, atJunction)
	assert.Len(t, popped, 1)
	assert.Equal(t, int64(11), w.GetLastPoint().Borrow(c.Graph).ID)
}
