// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package routestats computes the descriptive statistics attached to a
// finished route: total length, junction count, per-tag length
// breakdowns, the route's mean point, its direction-change ratio, and a
// single numeric score used to rank routes within and across clusters.
package routestats

import (
	"github.com/tomsjansons/ridi-router/internal/geo"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

// TagBreakdown is one tag value's share of a route.
type TagBreakdown struct {
	LenM       float64
	Percentage float64
}

// ScoreWeights are the coefficients Score combines the raw statistics
// with. There is no single canonical weighting; these defaults favor
// longer routes with gentler, steadier direction changes.
type ScoreWeights struct {
	LengthKm           float64
	DirectionChangeKm  float64
	JunctionPerKm      float64
}

// DefaultScoreWeights rewards distance traveled, and penalizes both
// sharp/frequent direction changes and dense junction spacing, on the
// theory that a good motorcycle route covers ground on flowing roads.
var DefaultScoreWeights = ScoreWeights{
	LengthKm:          1.0,
	DirectionChangeKm: -0.02,
	JunctionPerKm:     -0.01,
}

// Stats is the full statistics bundle for one route.
type Stats struct {
	LenM                 float64
	JunctionCount        int
	Highway              map[string]TagBreakdown
	Surface              map[string]TagBreakdown
	Smoothness           map[string]TagBreakdown
	MeanPoint            geo.Point
	DirectionChangeRatio float64
	Score                float64

	// Cluster and ApproximatedRoute are filled in by the generator
	// after clustering; Stats itself has no clustering opinion.
	Cluster           *int
	ApproximatedRoute [][2]float64
}

type tagAccumulator map[string]float64

func (acc tagAccumulator) add(value string, lenM float64) {
	if value == "" {
		return
	}
	acc[value] += lenM
}

func (acc tagAccumulator) breakdown(totalLenM float64) map[string]TagBreakdown {
	out := make(map[string]TagBreakdown, len(acc))
	for value, lenM := range acc {
		pct := 0.0
		if totalLenM > 0 {
			pct = lenM / totalLenM * 100
		}
		out[value] = TagBreakdown{LenM: lenM, Percentage: pct}
	}
	return out
}

// Calc derives a route's statistics from its graph and the walker route
// it produced, starting from originStart (the itinerary's start point,
// not carried by a Route itself).
func Calc(g *mapdata.Graph, originStart mapdata.PointRef, route *walker.Route, weights ScoreWeights) Stats {
	segments := route.Segments()

	highway := make(tagAccumulator)
	surface := make(tagAccumulator)
	smoothness := make(tagAccumulator)

	var lenM float64
	junctionCount := 0
	points := make([]geo.Point, 0, len(segments)+1)
	points = append(points, pointGeo(g, originStart))

	prev := originStart
	var prevBearing float64
	var haveBearing bool
	var sumAngleDelta float64

	for _, seg := range segments {
		lineLen := g.LengthM(seg.Line)
		lenM += lineLen

		ts := g.TagSetByRef(seg.Line.Borrow(g).Tags)
		highway.add(g.Highway(ts), lineLen)
		surface.add(g.Surface(ts), lineLen)
		smoothness.add(g.Smoothness(ts), lineLen)

		if seg.Point.Borrow(g).IsJunction() {
			junctionCount++
		}

		bearing := geo.BearingDeg(pointGeo(g, prev), pointGeo(g, seg.Point))
		if haveBearing {
			sumAngleDelta += geo.AngleDiffDeg(prevBearing, bearing)
		}
		prevBearing = bearing
		haveBearing = true

		points = append(points, pointGeo(g, seg.Point))
		prev = seg.Point
	}

	directionChangeRatio := 0.0
	if lenM > 0 {
		directionChangeRatio = sumAngleDelta / (lenM / 1000)
	}

	lenKm := lenM / 1000
	score := lenKm*weights.LengthKm +
		directionChangeRatio*weights.DirectionChangeKm +
		float64(junctionCount)*weights.JunctionPerKm

	return Stats{
		LenM:                 lenM,
		JunctionCount:        junctionCount,
		Highway:              highway.breakdown(lenM),
		Surface:              surface.breakdown(lenM),
		Smoothness:           smoothness.breakdown(lenM),
		MeanPoint:            geo.MeanPoint(points),
		DirectionChangeRatio: directionChangeRatio,
		Score:                score,
	}
}

func pointGeo(g *mapdata.Graph, ref mapdata.PointRef) geo.Point {
	p := ref.Borrow(g)
	return geo.Point{Lat: float64(p.Lat), Lon: float64(p.Lon)}
}
