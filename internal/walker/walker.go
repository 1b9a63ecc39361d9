// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package walker implements the cursor that advances a route through
// the frozen road graph one fork at a time, honoring one-way/roundabout
// directionality and turn-restriction rules at every junction.
package walker

import "github.com/tomsjansons/ridi-router/internal/mapdata"

// MoveKind classifies the outcome of MoveForwardToNextFork.
type MoveKind uint8

const (
	// Finish means the cursor has reached the walker's target point.
	Finish MoveKind = iota
	// Fork means the cursor sits at a point with more than one legal
	// continuation, awaiting a choice via SetForkChoice.
	Fork
	// DeadEnd means the cursor has no legal continuation, or the pending
	// fork choice is not among the legal continuations.
	DeadEnd
)

// MoveResult is the outcome of one MoveForwardToNextFork call.
type MoveResult struct {
	Kind    MoveKind
	Choices []Segment // populated only when Kind == Fork
}

// Walker is a cursor over the graph: a route built so far, an implicit
// origin (Start), a target (Finish), and a pending fork choice the
// caller sets after inspecting a Fork result.
type Walker struct {
	Start         mapdata.PointRef
	TargetFinish  mapdata.PointRef
	route         Route
	pendingChoice *mapdata.PointRef
}

// New returns a walker with an empty route, cursor at start.
func New(start, finish mapdata.PointRef) *Walker {
	return &Walker{Start: start, TargetFinish: finish}
}

// GetRoute returns the route built so far.
func (w *Walker) GetRoute() *Route { return &w.route }

// GetLastPoint returns the walker's current cursor position: the last
// segment's endpoint, or Start if the route is still empty.
func (w *Walker) GetLastPoint() mapdata.PointRef {
	if last, ok := w.route.Last(); ok {
		return last.Point
	}
	return w.Start
}

// GetSegmentLast returns the most recently appended segment, if any.
func (w *Walker) GetSegmentLast() (Segment, bool) { return w.route.Last() }

// SetForkChoice records the end-point the caller picked at the most
// recent Fork result; the next MoveForwardToNextFork call consumes it.
func (w *Walker) SetForkChoice(point mapdata.PointRef) {
	p := point
	w.pendingChoice = &p
}

func (w *Walker) cameFromLine() (mapdata.LineRef, bool) {
	if last, ok := w.route.Last(); ok {
		return last.Line, true
	}
	return mapdata.LineRef{}, false
}

// legalContinuations returns current's outgoing adjacent pairs with the
// immediate-reversal line, wrong-direction one-way/roundabout lines, and
// rule-forbidden continuations removed.
func legalContinuations(g *mapdata.Graph, current mapdata.PointRef, cameFrom mapdata.LineRef, hasCameFrom bool) []mapdata.AdjacentPair {
	p := current.Borrow(g)
	applicable := []mapdata.Rule{}
	if hasCameFrom {
		applicable = mapdata.RulesFor(p.Rules, cameFrom)
	}

	adjacent := g.GetAdjacent(current)
	out := make([]mapdata.AdjacentPair, 0, len(adjacent))
	for _, pair := range adjacent {
		if hasCameFrom && pair.Line == cameFrom {
			continue
		}
		line := pair.Line.Borrow(g)
		if line.IsOneWay() && line.PointA != current {
			continue
		}
		allowed := true
		for _, rule := range applicable {
			if !rule.Allows(cameFrom, pair.Line) {
				allowed = false
				break
			}
		}
		if !allowed {
			continue
		}
		out = append(out, pair)
	}
	return out
}

func toSegments(pairs []mapdata.AdjacentPair) []Segment {
	out := make([]Segment, len(pairs))
	for i, p := range pairs {
		out[i] = Segment{Line: p.Line, Point: p.Point}
	}
	return out
}

// MoveForwardToNextFork walks the unique outgoing non-backward line
// from the current cursor, appending a segment for each crossed line,
// until it reaches the target (Finish), a point with more than one
// legal continuation (Fork), or a point with none (DeadEnd). At a fork
// it consumes a previously set fork choice if present; otherwise it
// stops and reports the legal choices without advancing.
//
// Forking is gated on candidate count rather than graph degree: a
// degree-2 point reached with a known incoming line always has at most
// one legal continuation once the reversal is excluded, so it behaves
// like any other pass-through point. But a walker with no incoming line
// yet (a fresh lookahead walker seeded at an arbitrary point) can face
// more than one legal choice even at a degree-2 point, since there is
// no reversal to exclude; candidate count, not IsJunction, is what
// actually determines whether a choice needs to be made.
func (w *Walker) MoveForwardToNextFork(g *mapdata.Graph) MoveResult {
	for {
		current := w.GetLastPoint()
		if current == w.TargetFinish {
			return MoveResult{Kind: Finish}
		}

		cameFrom, hasCameFrom := w.cameFromLine()
		candidates := legalContinuations(g, current, cameFrom, hasCameFrom)

		switch {
		case len(candidates) == 0:
			return MoveResult{Kind: DeadEnd}

		case len(candidates) == 1:
			w.route.Append(Segment{Line: candidates[0].Line, Point: candidates[0].Point})

		default:
			if w.pendingChoice == nil {
				return MoveResult{Kind: Fork, Choices: toSegments(candidates)}
			}
			chosen, ok := findCandidate(candidates, *w.pendingChoice)
			w.pendingChoice = nil
			if !ok {
				return MoveResult{Kind: DeadEnd}
			}
			w.route.Append(Segment{Line: chosen.Line, Point: chosen.Point})
		}
	}
}

func findCandidate(candidates []mapdata.AdjacentPair, want mapdata.PointRef) (mapdata.AdjacentPair, bool) {
	for _, c := range candidates {
		if c.Point == want {
			return c, true
		}
	}
	return mapdata.AdjacentPair{}, false
}

// MoveBackwardsToPrevFork pops segments off the route until the cursor
// lands on a point that actually offered more than one legal
// continuation at the time it was crossed, returning the popped
// segments in the order they were removed (most recent first).
// atJunction is false if the whole route unwound without finding one,
// meaning there is no earlier fork left to retry. Candidate count, not
// graph degree, decides this for the same reason MoveForwardToNextFork
// uses it: a geometric junction can still have had only one legal exit
// once one-way/rule restrictions are applied, in which case it was
// never really a decision point.
func (w *Walker) MoveBackwardsToPrevFork(g *mapdata.Graph) (popped []Segment, atJunction bool) {
	for {
		seg, ok := w.route.popLast()
		if !ok {
			return popped, false
		}
		popped = append(popped, seg)

		cursor := w.GetLastPoint()
		cameFrom, hasCameFrom := w.cameFromLine()
		if len(legalContinuations(g, cursor, cameFrom, hasCameFrom)) > 1 {
			return popped, true
		}
	}
}
