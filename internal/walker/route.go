// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package walker

import (
	"bytes"
	"encoding/gob"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
)

// Segment is one directed traversal of a line, identified by the line
// itself and the endpoint the traversal arrives at.
type Segment struct {
	Line mapdata.LineRef
	Point mapdata.PointRef
}

// Route is the ordered sequence of segments a walker has built up. Its
// implicit start is whatever point the owning walker was constructed
// with; Route itself holds no opinion about that.
type Route struct {
	segments []Segment
}

// Segments returns the route's segments in traversal order.
func (r *Route) Segments() []Segment { return r.segments }

// Last returns the most recently appended segment, if any.
func (r *Route) Last() (Segment, bool) {
	if len(r.segments) == 0 {
		return Segment{}, false
	}
	return r.segments[len(r.segments)-1], true
}

// Append adds a segment to the end of the route.
func (r *Route) Append(s Segment) {
	r.segments = append(r.segments, s)
}

// popLast removes and returns the last segment.
func (r *Route) popLast() (Segment, bool) {
	last, ok := r.Last()
	if !ok {
		return Segment{}, false
	}
	r.segments = r.segments[:len(r.segments)-1]
	return last, ok
}

// SegmentFromEnd returns the segment stepsBack positions before the end
// (0 means Last), or false if the route is too short.
func (r *Route) SegmentFromEnd(stepsBack int) (Segment, bool) {
	idx := len(r.segments) - 1 - stepsBack
	if idx < 0 {
		return Segment{}, false
	}
	return r.segments[idx], true
}

// Len reports the number of segments in the route.
func (r *Route) Len() int { return len(r.segments) }

// HasVisited reports whether point already appears as the end-point of
// a segment reached via a line other than via.
func (r *Route) HasVisited(point mapdata.PointRef, via mapdata.LineRef) bool {
	for _, s := range r.segments {
		if s.Point == point && s.Line != via {
			return true
		}
	}
	return false
}

// FromSegments builds a Route directly from an already-traversed
// segment list, for callers reconstructing a route from storage
// (internal/resultcache) rather than walking it live.
func FromSegments(segments []Segment) *Route {
	return &Route{segments: append([]Segment(nil), segments...)}
}

// GobEncode implements gob.GobEncoder so a Route round-trips through
// internal/resultcache without exposing its unexported segment slice.
func (r *Route) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r.segments); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (r *Route) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&r.segments)
}
