// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package itinerary tracks a navigator's moving target: the start and
// finish points, the waypoints in between, and a cursor advanced as the
// walker gets close enough to each one in turn.
package itinerary

import "github.com/tomsjansons/ridi-router/internal/mapdata"

// Itinerary is start + ordered waypoints + finish + per-waypoint
// radius. Next is mutable and always points at either the finish or one
// of the not-yet-visited waypoints.
type Itinerary struct {
	Start        mapdata.PointRef
	Finish       mapdata.PointRef
	Waypoints    []mapdata.PointRef
	RadiusM      float64
	next         mapdata.PointRef
	nextWaypoint int // index into Waypoints of the next not-yet-visited one; len(Waypoints) once all are visited
}

// New builds an itinerary with next initialized to the first waypoint,
// or the finish if there are none.
func New(start, finish mapdata.PointRef, waypoints []mapdata.PointRef, radiusM float64) *Itinerary {
	it := &Itinerary{Start: start, Finish: finish, Waypoints: waypoints, RadiusM: radiusM}
	if len(waypoints) > 0 {
		it.next = waypoints[0]
	} else {
		it.next = finish
		it.nextWaypoint = 0
	}
	return it
}

// Next returns the itinerary's current target.
func (it *Itinerary) Next() mapdata.PointRef { return it.next }

// AtFinish reports whether the current target is the finish point.
func (it *Itinerary) AtFinish() bool {
	return it.nextWaypoint >= len(it.Waypoints)
}

// advance moves next to the following waypoint, or to Finish once all
// waypoints are consumed.
func (it *Itinerary) advance() {
	it.nextWaypoint++
	if it.nextWaypoint >= len(it.Waypoints) {
		it.next = it.Finish
		return
	}
	it.next = it.Waypoints[it.nextWaypoint]
}

// CheckSetNext re-evaluates the target given the walker's current
// position: if current is closer to the finish than to next, next jumps
// straight to the finish (a shortcut past any waypoints the route
// already satisfies geographically); else if current is within
// RadiusM of next, next advances to the following waypoint (or finish).
func (it *Itinerary) CheckSetNext(g *mapdata.Graph, current mapdata.PointRef) {
	if it.AtFinish() {
		return
	}
	distToFinish := g.DistanceM(current, it.Finish)
	distToNext := g.DistanceM(current, it.next)
	if distToFinish < distToNext {
		it.nextWaypoint = len(it.Waypoints)
		it.next = it.Finish
		return
	}
	if distToNext <= it.RadiusM {
		it.advance()
	}
}
