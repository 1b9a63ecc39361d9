// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level metrics for the route generation engine. Auto-registered
// via promauto against the default registry so no explicit wiring is
// needed at call sites.
var (
	// ItinerariesGenerated counts itinerary samples fed to the navigator
	// per generation request.
	//
	// Labels:
	//   - kind: "point_to_point" or "round_trip"
	ItinerariesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridi_router",
			Subsystem: "generator",
			Name:      "itineraries_generated_total",
			Help:      "Total number of itinerary samples submitted to the navigator.",
		},
		[]string{"kind"},
	)

	// NavigatorOutcomes counts navigator runs by terminal outcome.
	//
	// Labels:
	//   - outcome: "finished", "stopped", "stuck"
	NavigatorOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridi_router",
			Subsystem: "navigator",
			Name:      "outcomes_total",
			Help:      "Total navigator runs by terminal outcome.",
		},
		[]string{"outcome"},
	)

	// NavigatorSteps observes the number of segments in the route a
	// navigator run returned. Runs that end stuck or with an empty route
	// are not observed, and the loop iteration count itself is not
	// recorded.
	NavigatorSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ridi_router",
			Subsystem: "navigator",
			Name:      "steps",
			Help:      "Number of route segments per non-empty navigator result.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000},
		},
	)

	// RoutesPerCluster observes the number of survivor routes grouped
	// into each non-noise cluster by one generation request.
	RoutesPerCluster = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ridi_router",
			Subsystem: "clustering",
			Name:      "routes_per_cluster",
			Help:      "Number of survivor routes per non-noise cluster label.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	// GenerationDuration measures wall-clock time for a full
	// GenerateRoutes call, from itinerary fan-out through clustering and
	// representative selection.
	//
	// Labels:
	//   - result: "success" or "error"
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridi_router",
			Subsystem: "generator",
			Name:      "generation_duration_seconds",
			Help:      "Duration of a full route generation request.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"result"},
	)

	// CacheLookups counts result-cache hits and misses.
	//
	// Labels:
	//   - outcome: "hit" or "miss"
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridi_router",
			Subsystem: "resultcache",
			Name:      "lookups_total",
			Help:      "Total result cache lookups by hit/miss outcome.",
		},
		[]string{"outcome"},
	)
)

// RecordGeneration records GenerationDuration for a completed
// GenerateRoutes call.
func RecordGeneration(d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	GenerationDuration.WithLabelValues(result).Observe(d.Seconds())
}
