// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package generator turns a start/finish (or start + round-trip
// bearing/distance) request into a batch of candidate routes: it
// samples a grid of itineraries around the request, navigates each one
// concurrently, clusters the results by shape, and returns one
// representative per cluster plus the handful of best unclustered
// outliers.
package generator

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomsjansons/ridi-router/internal/clustering"
	"github.com/tomsjansons/ridi-router/internal/geo"
	"github.com/tomsjansons/ridi-router/internal/itinerary"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/navigator"
	"github.com/tomsjansons/ridi-router/internal/routestats"
	"github.com/tomsjansons/ridi-router/internal/rules"
	"github.com/tomsjansons/ridi-router/internal/telemetry"
	"github.com/tomsjansons/ridi-router/internal/walker"
	"github.com/tomsjansons/ridi-router/internal/weights"
)

// RoundTrip describes a round-trip request: head out on Bearing for
// roughly TotalDistanceM before looping back to the start.
type RoundTrip struct {
	BearingDeg     float64
	TotalDistanceM float64
}

// RouteWithStats pairs one generated route with its computed statistics.
type RouteWithStats struct {
	Stats routestats.Stats
	Route *walker.Route
}

// Event reports one itinerary's navigation finishing, for a live
// viewer to stream while a batch is still being generated.
type Event struct {
	Index     int
	Total     int
	Outcome   string
	RouteLenM float64
}

// Generator samples itineraries around a request and navigates each
// one to produce a diverse set of candidate routes.
type Generator struct {
	graph     *mapdata.Graph
	start     mapdata.PointRef
	finish    mapdata.PointRef
	roundTrip *RoundTrip
	rules     rules.Router
	avoidResidentialProximity bool

	// Progress, if set, is called once per navigated itinerary from
	// whichever goroutine finished it. Must be safe for concurrent use.
	Progress func(Event)

	// Waypoints, if set, are resolved points a caller wants the route
	// to pass through, in order. They seed one extra itinerary on top
	// of the sampled grid; they do not replace it.
	Waypoints []mapdata.PointRef
}

// New builds a Generator. roundTrip is nil for a point-to-point request
// (finish is then the real destination); non-nil for a round trip
// (finish is conventionally equal to start).
func New(g *mapdata.Graph, start, finish mapdata.PointRef, roundTrip *RoundTrip, router rules.Router, avoidResidentialProximity bool) *Generator {
	return &Generator{
		graph:                      g,
		start:                      start,
		finish:                     finish,
		roundTrip:                  roundTrip,
		rules:                      router,
		avoidResidentialProximity: avoidResidentialProximity,
	}
}

func (gen *Generator) closest(p geo.Point, avoidResidential bool) (mapdata.PointRef, bool) {
	ref, ok, err := gen.graph.GetClosestToCoords(p.Lat, p.Lon, gen.rules, avoidResidential)
	if err != nil {
		return mapdata.PointRef{}, false
	}
	return ref, ok
}

func pointGeo(g *mapdata.Graph, ref mapdata.PointRef) geo.Point {
	p := ref.Borrow(g)
	return geo.Point{Lat: float64(p.Lat), Lon: float64(p.Lon)}
}

// widenBearings appends the retry pass's bearing adjustments onto base,
// leaving base untouched.
func (gen *Generator) widenBearings(base []float64, widen bool) []float64 {
	if !widen {
		return base
	}
	adjustments := gen.rules.Generation.RouteGenerationRetry.RoundTripAdjustmentBearingDeg
	out := make([]float64, 0, len(base)+len(adjustments))
	out = append(out, base...)
	out = append(out, adjustments...)
	return out
}

// createWaypointsAround samples the configured start/finish variation
// grid around point, keeping only the bearings/distances that land on
// a real graph point. On a retry pass the bearing list is widened with
// the retry rules' adjustment degrees and the residential filter is
// whatever avoidResidential the caller is currently retrying with.
func (gen *Generator) createWaypointsAround(point mapdata.PointRef, widen, avoidResidential bool) []mapdata.PointRef {
	sf := gen.rules.Generation.WaypointGeneration.StartFinish
	bearings := gen.widenBearings(sf.VariationBearingDeg, widen)

	origin := pointGeo(gen.graph, point)
	out := make([]mapdata.PointRef, 0, len(bearings)*len(sf.VariationDistancesM))
	for _, bearing := range bearings {
		for _, distance := range sf.VariationDistancesM {
			wpGeo := geo.Destination(origin, bearing, distance)
			if ref, ok := gen.closest(wpGeo, avoidResidential); ok {
				out = append(out, ref)
			}
		}
	}
	return out
}

// generateItineraries builds the itinerary grid: for a round trip, the
// nested side/tip/bearing-variation sampling producing a 3-waypoint
// loop per combination; for point-to-point, one direct itinerary plus
// the cross product of waypoints sampled around start and finish.
// widen and avoidResidential carry the current retry attempt's
// parameters (see GenerateRoutes).
func (gen *Generator) generateItineraries(widen, avoidResidential bool) []*itinerary.Itinerary {
	if gen.roundTrip != nil {
		return gen.generateRoundTripItineraries(*gen.roundTrip, widen, avoidResidential)
	}
	return gen.generatePointToPointItineraries(widen, avoidResidential)
}

func (gen *Generator) generateRoundTripItineraries(rt RoundTrip, widen, avoidResidential bool) []*itinerary.Itinerary {
	rtRules := gen.rules.Generation.WaypointGeneration.RoundTrip
	// The reference rule document only carries one distance-ratio list
	// for the round-trip grid; it is reused for both the tip and the
	// side-leg axes rather than keeping two separately-sized hardcoded
	// lists that nothing in the rules could ever tune.
	ratios := rtRules.VariationDistanceRatios
	bearingVariations := gen.widenBearings(rtRules.VariationBearingDeg, widen)

	startGeo := pointGeo(gen.graph, gen.start)
	var out []*itinerary.Itinerary

	for _, sideLeftRatio := range ratios {
		for _, tipRatio := range ratios {
			for _, bearingVariation := range bearingVariations {
				totalDist := rt.TotalDistanceM
				bearing := rt.BearingDeg + bearingVariation

				tipGeo := geo.Destination(startGeo, bearing, totalDist*tipRatio)
				totalDist -= totalDist * tipRatio
				tipPoint, ok := gen.closest(tipGeo, avoidResidential)
				if !ok {
					continue
				}

				sideLeftGeo := geo.Destination(startGeo, bearing-45, totalDist*sideLeftRatio)
				totalDist -= totalDist * sideLeftRatio
				sideLeftPoint, ok := gen.closest(sideLeftGeo, avoidResidential)
				if !ok {
					continue
				}

				sideRightGeo := geo.Destination(startGeo, bearing+45, totalDist)
				sideRightPoint, ok := gen.closest(sideRightGeo, avoidResidential)
				if !ok {
					continue
				}

				it := itinerary.New(gen.start, gen.finish, []mapdata.PointRef{sideLeftPoint, tipPoint, sideRightPoint}, 5)
				out = append(out, it)
			}
		}
	}
	return out
}

func (gen *Generator) generatePointToPointItineraries(widen, avoidResidential bool) []*itinerary.Itinerary {
	fromWaypoints := gen.createWaypointsAround(gen.start, widen, avoidResidential)
	toWaypoints := gen.createWaypointsAround(gen.finish, widen, avoidResidential)

	out := []*itinerary.Itinerary{itinerary.New(gen.start, gen.finish, nil, 10)}
	if len(gen.Waypoints) > 0 {
		out = append(out, itinerary.New(gen.start, gen.finish, gen.Waypoints, 10))
	}
	for _, from := range fromWaypoints {
		for _, to := range toWaypoints {
			out = append(out, itinerary.New(gen.start, gen.finish, []mapdata.PointRef{from, to}, 1000))
		}
	}
	return out
}

// weightCalcs is the fixed weight-function list every navigation run
// uses, in the same order the reference implementation wires them
// (summation is commutative, so order only matters for readability).
func weightCalcs(router rules.Router) []weights.Calc {
	b := router.Basic
	return []weights.Calc{
		weights.NoSharpTurns(b.NoSharpTurns.UnderDeg, b.NoSharpTurns.Priority),
		weights.NoShortDetours(b.NoShortDetours.MinDetourLenM),
		weights.ProgressSpeed(b.ProgressSpeed.CheckStepsBack, b.ProgressSpeed.LastStepDistanceBelowAvgWithRatio),
		weights.CheckDistanceToNext(b.ProgressDirection.CheckJunctionsBack),
		weights.PreferSameRoad(b.PreferSameRoad.Priority),
		weights.NoLoops(),
		weights.Heading(),
		weights.RulesHighway(router),
		weights.RulesSurface(router),
		weights.RulesSmoothness(router),
	}
}

// navigateItineraries navigates every itinerary concurrently and
// returns the ones that reached a usable outcome.
func (gen *Generator) navigateItineraries(ctx context.Context, itineraries []*itinerary.Itinerary) ([]*walker.Route, error) {
	calcs := weightCalcs(gen.rules)
	stepLimit := int(gen.rules.Basic.StepLimit)

	routes := make([]*walker.Route, len(itineraries))
	group, _ := errgroup.WithContext(ctx)
	for i, it := range itineraries {
		i, it := i, it
		group.Go(func() error {
			nav := navigator.New(gen.graph, it, calcs, stepLimit)
			navResult := nav.GenerateRoutes()
			telemetry.NavigatorOutcomes.WithLabelValues(navResult.Outcome.String()).Inc()
			if navResult.Outcome == navigator.Stuck || navResult.Route.Len() == 0 {
				if gen.Progress != nil {
					gen.Progress(Event{Index: i, Total: len(itineraries), Outcome: navResult.Outcome.String()})
				}
				return nil
			}
			telemetry.NavigatorSteps.Observe(float64(navResult.Route.Len()))
			routes[i] = navResult.Route
			if gen.Progress != nil {
				gen.Progress(Event{
					Index:     i,
					Total:     len(itineraries),
					Outcome:   navResult.Outcome.String(),
					RouteLenM: routeLenM(gen.graph, navResult.Route),
				})
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	survivors := make([]*walker.Route, 0, len(routes))
	for _, r := range routes {
		if r != nil {
			survivors = append(survivors, r)
		}
	}
	return survivors, nil
}

// GenerateRoutes samples the itinerary grid for this request, navigates
// every itinerary concurrently, and reduces the survivors to one
// representative per shape cluster plus up to three best unclustered
// outliers.
//
// The first pass samples waypoints with the retry rules' first
// avoid-residential setting (conventionally true). If it produces
// fewer than trigger_min_route_count routes, a retry pass widens the
// sampled bearings (adding round_trip_adjustment_bearing_deg to the
// bearing grid) and advances to the next avoid-residential setting in
// the configured sequence.
func (gen *Generator) GenerateRoutes(ctx context.Context) (result []RouteWithStats, err error) {
	start := time.Now()
	defer func() { telemetry.RecordGeneration(time.Since(start), err) }()

	kind := "point_to_point"
	if gen.roundTrip != nil {
		kind = "round_trip"
	}

	retry := gen.rules.Generation.RouteGenerationRetry
	attempts := retry.AvoidResidential
	if len(attempts) == 0 {
		attempts = []bool{gen.avoidResidentialProximity}
	}

	var survivors []*walker.Route
	for attempt, avoidResidential := range attempts {
		widen := attempt > 0
		itineraries := gen.generateItineraries(widen, avoidResidential)
		telemetry.ItinerariesGenerated.WithLabelValues(kind).Add(float64(len(itineraries)))

		survivors, err = gen.navigateItineraries(ctx, itineraries)
		if err != nil {
			return nil, err
		}
		if retry.TriggerMinRouteCount <= 0 || len(survivors) >= retry.TriggerMinRouteCount || attempt == len(attempts)-1 {
			break
		}
	}
	if len(survivors) == 0 {
		return nil, nil
	}

	clusterResult := clustering.Generate(gen.graph, survivors, clustering.DefaultParams)

	withStats := make([]RouteWithStats, 0, len(survivors))
	labels := make([]int, len(survivors))
	shapeIdx := 0
	for i, r := range survivors {
		stats := routestats.Calc(gen.graph, gen.start, r, routestats.DefaultScoreWeights)
		label := clustering.Noise
		if clusterResult != nil && shapeIdx < len(clusterResult.Labels) {
			label = clusterResult.Labels[shapeIdx]
			shape := clusterResult.ApproximatedRoutes[shapeIdx]
			stats.ApproximatedRoute = make([][2]float64, len(shape))
			for j, p := range shape {
				stats.ApproximatedRoute[j] = [2]float64{p[0], p[1]}
			}
			shapeIdx++
		}
		cluster := label
		stats.Cluster = &cluster
		labels[i] = label
		withStats = append(withStats, RouteWithStats{Stats: stats, Route: r})
	}

	return selectRepresentatives(withStats, labels), nil
}

func routeLenM(g *mapdata.Graph, route *walker.Route) float64 {
	var total float64
	for _, seg := range route.Segments() {
		total += g.LengthM(seg.Line)
	}
	return total
}

// selectRepresentatives keeps, per cluster label, only the
// highest-scoring route, plus up to 3 of the highest-scoring noise
// (unclustered) routes.
func selectRepresentatives(routes []RouteWithStats, labels []int) []RouteWithStats {
	bestByCluster := make(map[int]int) // label -> index into routes
	clusterSizes := make(map[int]int)
	var noise []int

	for i, label := range labels {
		if label == clustering.Noise {
			noise = append(noise, i)
			continue
		}
		clusterSizes[label]++
		if current, ok := bestByCluster[label]; !ok || routes[i].Stats.Score > routes[current].Stats.Score {
			bestByCluster[label] = i
		}
	}
	for _, size := range clusterSizes {
		telemetry.RoutesPerCluster.Observe(float64(size))
	}

	out := make([]RouteWithStats, 0, len(bestByCluster)+3)
	for _, idx := range bestByCluster {
		out = append(out, routes[idx])
	}

	sort.Slice(noise, func(a, b int) bool {
		return routes[noise[a]].Stats.Score > routes[noise[b]].Stats.Score
	})
	if len(noise) > 3 {
		noise = noise[:3]
	}
	for _, idx := range noise {
		out = append(out, routes[idx])
	}
	return out
}

