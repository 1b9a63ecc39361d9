// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package weights implements the pure scoring functions the navigator
// sums at every fork to pick the next segment. Each is a WeightCalc: no
// side effects, no shared state, callable concurrently across forks.
package weights

import (
	"github.com/tomsjansons/ridi-router/internal/geo"
	"github.com/tomsjansons/ridi-router/internal/itinerary"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

// Result is a weight function's verdict: either it vetoes the choice
// outright, or it contributes a priority in [0, 255] to the choice's
// running sum.
type Result struct {
	DoNotUse bool
	Weight   uint8
}

// UseWithWeight builds a Result carrying a positive contribution.
func UseWithWeight(w uint8) Result { return Result{Weight: w} }

// DoNotUseResult is the veto result: it zeros the whole choice regardless of
// what other weight functions return for it.
var DoNotUseResult = Result{DoNotUse: true}

// Input bundles everything a weight function may consult: the fork
// candidate under evaluation, the route built so far, its sibling
// candidates at the same fork, the itinerary, and a fresh walker seeded
// at the candidate's end-point so lookahead functions can project
// forward without mutating the real walker.
type Input struct {
	CurrentForkSegment walker.Segment
	Route              *walker.Route
	AllForkSegments    []walker.Segment
	Itinerary          *itinerary.Itinerary
	WalkerFromFork     *walker.Walker
	Graph              *mapdata.Graph
}

// Calc is a single named weight function.
type Calc func(Input) Result

// TagPolicy supplies caller-configured priorities (or an avoid veto)
// for the three tag dimensions the rules_* weight functions consult.
// Implemented by internal/rules' loaded configuration.
type TagPolicy interface {
	HighwayPriority(value string) (priority uint8, avoid bool)
	SurfacePriority(value string) (priority uint8, avoid bool)
	SmoothnessPriority(value string) (priority uint8, avoid bool)
}

func pointGeo(g *mapdata.Graph, ref mapdata.PointRef) geo.Point {
	p := ref.Borrow(g)
	return geo.Point{Lat: float64(p.Lat), Lon: float64(p.Lon)}
}

// lineBearing returns the bearing of line as traversed from its
// non-endpoint side towards end.
func lineBearing(g *mapdata.Graph, line mapdata.LineRef, end mapdata.PointRef) float64 {
	l := line.Borrow(g)
	from := l.OtherEnd(end)
	return geo.BearingDeg(pointGeo(g, from), pointGeo(g, end))
}

// NoSharpTurns contributes priority for a fork whose approach bearing
// differs from the previous segment's by more than 180-underDeg (30
// degrees with the default underDeg of 150), and 0 otherwise. It never
// vetoes.
func NoSharpTurns(underDeg float64, priority uint8) Calc {
	return func(in Input) Result {
		last, ok := in.Route.Last()
		if !ok {
			return UseWithWeight(0)
		}
		prevBearing := lineBearing(in.Graph, last.Line, last.Point)
		forkBearing := lineBearing(in.Graph, in.CurrentForkSegment.Line, in.CurrentForkSegment.Point)
		delta := geo.AngleDiffDeg(prevBearing, forkBearing)
		if delta > 180-underDeg {
			return UseWithWeight(priority)
		}
		return UseWithWeight(0)
	}
}

// NoShortDetours vetoes a fork that commits to a detour too small to be
// worth the extra turning: it projects one fork ahead and compares the
// straight-line chord between the current point and that next fork
// against minDetourLenM.
func NoShortDetours(minDetourLenM float64) Calc {
	return func(in Input) Result {
		w := in.WalkerFromFork
		move := w.MoveForwardToNextFork(in.Graph)
		switch move.Kind {
		case walker.DeadEnd:
			return DoNotUseResult
		case walker.Finish:
			return UseWithWeight(0)
		}
		next, ok := w.GetSegmentLast()
		if !ok {
			return UseWithWeight(0)
		}
		chord := in.Graph.DistanceM(in.CurrentForkSegment.Point, next.Point)
		if chord < minDetourLenM {
			return DoNotUseResult
		}
		return UseWithWeight(0)
	}
}

// ProgressSpeed compares the average distance covered per segment over
// the last checkStepsBack steps to the global average implied by
// distance(start, next)/segment_count; a window that crawls below
// ratio times the global average scores 0 rather than vetoing, mirroring
// the reference behavior of never actually triggering DoNotUse here.
func ProgressSpeed(checkStepsBack int, ratio float64) Calc {
	return func(in Input) Result {
		if in.Route.Len() == 0 {
			return UseWithWeight(0)
		}
		last, _ := in.Route.Last()
		back, ok := in.Route.SegmentFromEnd(checkStepsBack)
		if !ok {
			return UseWithWeight(0)
		}
		totalDistance := in.Graph.DistanceM(in.Itinerary.Start, in.Itinerary.Next())
		avgPerSegment := totalDistance / float64(in.Route.Len())
		distLastWindow := in.Graph.DistanceM(back.Point, last.Point)
		avgLastWindow := distLastWindow / float64(checkStepsBack)
		if avgLastWindow < avgPerSegment*ratio {
			return UseWithWeight(0)
		}
		return UseWithWeight(0)
	}
}

// CheckDistanceToNext vetoes a fork whose current end-point is farther
// from itinerary.Next than the point checkStepsBack segments back,
// catching forks that backslide towards the target.
func CheckDistanceToNext(checkStepsBack int) Calc {
	return func(in Input) Result {
		last, ok := in.Route.Last()
		if !ok {
			return UseWithWeight(0)
		}
		back, ok := in.Route.SegmentFromEnd(checkStepsBack)
		if !ok {
			return UseWithWeight(0)
		}
		distCurrent := in.Graph.DistanceM(last.Point, in.Itinerary.Next())
		distBack := in.Graph.DistanceM(back.Point, in.Itinerary.Next())
		if distCurrent > distBack {
			return DoNotUseResult
		}
		return UseWithWeight(0)
	}
}

// PreferSameRoad rewards a fork whose line shares the previous line's
// ref or name tag, keeping the route on the same numbered/named road.
func PreferSameRoad(bonus uint8) Calc {
	return func(in Input) Result {
		g := in.Graph
		forkTags := g.TagSetByRef(in.CurrentForkSegment.Line.Borrow(g).Tags)

		last, ok := in.Route.Last()
		if !ok {
			return UseWithWeight(0)
		}
		prevTags := g.TagSetByRef(last.Line.Borrow(g).Tags)

		sameRef := g.Ref(prevTags) != "" && g.Ref(prevTags) == g.Ref(forkTags)
		sameName := g.Name(prevTags) != "" && g.Name(prevTags) == g.Name(forkTags)
		if sameRef || sameName {
			return UseWithWeight(bonus)
		}
		return UseWithWeight(0)
	}
}

// NoLoops vetoes a fork whose end-point the route has already visited
// via a different line.
func NoLoops() Calc {
	return func(in Input) Result {
		if in.Route.HasVisited(in.CurrentForkSegment.Point, in.CurrentForkSegment.Line) {
			return DoNotUseResult
		}
		return UseWithWeight(0)
	}
}

// Heading projects the walker to the next fork beyond this one, then
// scores by how closely that approach bearing matches the bearing
// towards itinerary.Next: 255 for a perfect match, descending linearly,
// 255 outright on reaching the finish, DoNotUse on a dead end.
func Heading() Calc {
	return func(in Input) Result {
		w := in.WalkerFromFork
		move := w.MoveForwardToNextFork(in.Graph)
		switch move.Kind {
		case walker.DeadEnd:
			return DoNotUseResult
		case walker.Finish:
			return UseWithWeight(255)
		}

		forkSegment, ok := w.GetSegmentLast()
		if !ok {
			forkSegment = in.CurrentForkSegment
		}

		forkPoint := pointGeo(in.Graph, forkSegment.Point)
		nextPoint := pointGeo(in.Graph, in.Itinerary.Next())
		nextBearing := geo.BearingDeg(forkPoint, nextPoint)
		forkBearing := lineBearing(in.Graph, forkSegment.Line, forkSegment.Point)

		delta := geo.AngleDiffDeg(forkBearing, nextBearing)
		ratio := 255.0 / 180.0
		scored := 255 - int(delta*ratio+0.5)
		if scored < 0 {
			scored = 0
		}
		return UseWithWeight(uint8(scored))
	}
}

// RulesHighway applies the caller's highway-tag policy: Avoid vetoes
// the choice outright, otherwise it contributes the configured priority.
func RulesHighway(policy TagPolicy) Calc {
	return func(in Input) Result {
		if policy == nil {
			return UseWithWeight(0)
		}
		g := in.Graph
		ts := g.TagSetByRef(in.CurrentForkSegment.Line.Borrow(g).Tags)
		value := g.Highway(ts)
		if value == "" {
			return UseWithWeight(0)
		}
		priority, avoid := policy.HighwayPriority(value)
		if avoid {
			return DoNotUseResult
		}
		return UseWithWeight(priority)
	}
}

// RulesSurface applies the caller's surface-tag policy.
func RulesSurface(policy TagPolicy) Calc {
	return func(in Input) Result {
		if policy == nil {
			return UseWithWeight(0)
		}
		g := in.Graph
		ts := g.TagSetByRef(in.CurrentForkSegment.Line.Borrow(g).Tags)
		value := g.Surface(ts)
		if value == "" {
			return UseWithWeight(0)
		}
		priority, avoid := policy.SurfacePriority(value)
		if avoid {
			return DoNotUseResult
		}
		return UseWithWeight(priority)
	}
}

// RulesSmoothness applies the caller's smoothness-tag policy.
func RulesSmoothness(policy TagPolicy) Calc {
	return func(in Input) Result {
		if policy == nil {
			return UseWithWeight(0)
		}
		g := in.Graph
		ts := g.TagSetByRef(in.CurrentForkSegment.Line.Borrow(g).Tags)
		value := g.Smoothness(ts)
		if value == "" {
			return UseWithWeight(0)
		}
		priority, avoid := policy.SmoothnessPriority(value)
		if avoid {
			return DoNotUseResult
		}
		return UseWithWeight(priority)
	}
}
