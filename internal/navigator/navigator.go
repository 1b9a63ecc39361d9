// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package navigator runs the weight-guided depth-first search that
// turns an itinerary into a concrete route: at every fork it scores the
// legal continuations with a caller-supplied set of weight functions,
// commits to the heaviest, and backtracks past dead ends and exhausted
// forks, remembering what it already tried so it never retries a
// discarded branch from the same fork point.
package navigator

import (
	"github.com/tomsjansons/ridi-router/internal/itinerary"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/walker"
	"github.com/tomsjansons/ridi-router/internal/weights"
)

// DefaultStepLimit bounds the main loop so a pathological graph cannot
// hang a navigation run forever.
const DefaultStepLimit = 30000

// discardedForkChoices remembers, per fork point, the end-points that
// must never be retried from that fork again.
type discardedForkChoices struct {
	choices map[mapdata.PointRef]map[mapdata.PointRef]struct{}
}

func newDiscardedForkChoices() *discardedForkChoices {
	return &discardedForkChoices{choices: make(map[mapdata.PointRef]map[mapdata.PointRef]struct{})}
}

func (d *discardedForkChoices) add(forkPoint, choice mapdata.PointRef) {
	set, ok := d.choices[forkPoint]
	if !ok {
		set = make(map[mapdata.PointRef]struct{})
		d.choices[forkPoint] = set
	}
	set[choice] = struct{}{}
}

func (d *discardedForkChoices) filter(forkPoint mapdata.PointRef, candidates []walker.Segment) []walker.Segment {
	set := d.choices[forkPoint]
	if len(set) == 0 {
		return candidates
	}
	out := make([]walker.Segment, 0, len(candidates))
	for _, c := range candidates {
		if _, discarded := set[c.Point]; !discarded {
			out = append(out, c)
		}
	}
	return out
}

// forkWeights accumulates the summed weight for each surviving choice
// at one fork, in first-seen order, so ties resolve by stable order
// rather than map iteration order.
type forkWeights struct {
	order []mapdata.PointRef
	sums  map[mapdata.PointRef]uint32
}

func newForkWeights() *forkWeights {
	return &forkWeights{sums: make(map[mapdata.PointRef]uint32)}
}

// add folds one candidate's weight-function results into its running
// sum. Any DoNotUse result drops the candidate from consideration
// entirely, even if it was already accumulating weight.
func (fw *forkWeights) add(point mapdata.PointRef, results []weights.Result) {
	for _, r := range results {
		if r.DoNotUse {
			return
		}
	}
	var sum uint32
	for _, r := range results {
		sum += uint32(r.Weight)
	}
	if _, seen := fw.sums[point]; !seen {
		fw.order = append(fw.order, point)
	}
	fw.sums[point] += sum
}

// heaviest returns the candidate with the largest summed weight, ties
// broken by first-seen order. ok is false only when every candidate was
// vetoed by a DoNotUse.
func (fw *forkWeights) heaviest() (point mapdata.PointRef, ok bool) {
	if len(fw.order) == 0 {
		return mapdata.PointRef{}, false
	}
	best := fw.order[0]
	bestSum := fw.sums[best]
	for _, p := range fw.order[1:] {
		if fw.sums[p] > bestSum {
			best = p
			bestSum = fw.sums[p]
		}
	}
	return best, true
}

// Outcome classifies how a navigation run ended.
type Outcome uint8

const (
	// Finished means the walker reached the itinerary's finish point.
	Finished Outcome = iota
	// Stopped means the step limit was reached before finishing.
	Stopped
	// Stuck means backtracking exhausted every fork without a route.
	Stuck
)

// String renders an Outcome as a label-safe lowercase string.
func (o Outcome) String() string {
	switch o {
	case Finished:
		return "finished"
	case Stopped:
		return "stopped"
	case Stuck:
		return "stuck"
	default:
		return "unknown"
	}
}

// Result is what GenerateRoutes returns: the outcome, and the route
// built so far (nil on Stuck).
type Result struct {
	Outcome Outcome
	Route   *walker.Route
}

// Navigator drives one walker towards one itinerary's target, scoring
// every fork with the given weight functions.
type Navigator struct {
	graph     *mapdata.Graph
	itinerary *itinerary.Itinerary
	walker    *walker.Walker
	calcs     []weights.Calc
	discarded *discardedForkChoices
	stepLimit int
}

// New builds a navigator starting at the itinerary's start point,
// targeting its finish point, with the given weight-function registry.
func New(g *mapdata.Graph, it *itinerary.Itinerary, calcs []weights.Calc, stepLimit int) *Navigator {
	if stepLimit <= 0 {
		stepLimit = DefaultStepLimit
	}
	return &Navigator{
		graph:     g,
		itinerary: it,
		walker:    walker.New(it.Start, it.Finish),
		calcs:     calcs,
		discarded: newDiscardedForkChoices(),
		stepLimit: stepLimit,
	}
}

// GenerateRoutes runs the main search loop to completion: Finished,
// Stopped at the step limit, or Stuck with no way forward.
func (n *Navigator) GenerateRoutes() Result {
	for step := 0; ; step++ {
		if step >= n.stepLimit {
			return Result{Outcome: Stopped, Route: n.walker.GetRoute()}
		}

		move := n.walker.MoveForwardToNextFork(n.graph)

		switch move.Kind {
		case walker.Finish:
			return Result{Outcome: Finished, Route: n.walker.GetRoute()}

		case walker.DeadEnd:
			if _, atJunction := n.walker.MoveBackwardsToPrevFork(n.graph); !atJunction {
				return Result{Outcome: Stuck}
			}

		case walker.Fork:
			forkPoint := n.walker.GetLastPoint()
			candidates := n.discarded.filter(forkPoint, move.Choices)
			n.itinerary.CheckSetNext(n.graph, forkPoint)

			fw := newForkWeights()
			for _, candidate := range candidates {
				fw.add(candidate.Point, n.scoreCandidate(candidate, candidates))
			}

			chosen, ok := fw.heaviest()
			if ok {
				n.discarded.add(forkPoint, chosen)
				n.walker.SetForkChoice(chosen)
				continue
			}
			_, atJunction := n.walker.MoveBackwardsToPrevFork(n.graph)
			if !atJunction {
				return Result{Outcome: Stuck}
			}
		}
	}
}

// scoreCandidate runs every weight function against candidate, each
// with its own fresh lookahead walker seeded at the candidate's
// end-point: a weight function that walks it forward must never affect
// another weight function's view of the same fork.
func (n *Navigator) scoreCandidate(candidate walker.Segment, allCandidates []walker.Segment) []weights.Result {
	results := make([]weights.Result, len(n.calcs))
	for i, calc := range n.calcs {
		in := weights.Input{
			CurrentForkSegment: candidate,
			Route:              n.walker.GetRoute(),
			AllForkSegments:    allCandidates,
			Itinerary:          n.itinerary,
			WalkerFromFork:     walker.New(candidate.Point, n.itinerary.Next()),
			Graph:              n.graph,
		}
		results[i] = calc(in)
	}
	return results
}
