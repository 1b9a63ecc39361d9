// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

import (
	"fmt"
	"strings"

	"github.com/tomsjansons/ridi-router/internal/geo"
	"github.com/tomsjansons/ridi-router/internal/proximity"
)

// Graph is the frozen, process-wide, read-only road network. It is
// built once by a single goroutine through InsertNode/InsertWay/
// InsertRelation, sealed by GeneratePointHashes, and from then on only
// read. All cross-references into it are index handles (PointRef,
// LineRef, TagSetRef), never owning pointers, which is what lets the
// network's cycles exist without cyclic ownership.
type Graph struct {
	points   []Point
	pointIdx map[int64]int32 // builder-only: OSM id -> points index
	wayLines map[int64][]LineRef // builder-only: OSM way id -> its lines, for relation resolution
	lines    []Line
	tags     *tagInterner
	grid     *proximity.Grid
	memo     *proximity.Memo
	frozen   bool
}

// closestMemoCapacity bounds the ristretto cache GeneratePointHashes
// builds over GetClosestToCoords answers. The generator re-resolves
// the same handful of waypoint-grid coordinates many times per
// request, so even a small cache absorbs most repeat lookups.
const closestMemoCapacity = 4096

// NewGraph returns an empty, unfrozen graph ready for ingestion.
func NewGraph() *Graph {
	return &Graph{
		pointIdx: make(map[int64]int32),
		wayLines: make(map[int64][]LineRef),
		tags:     newTagInterner(),
		grid:     proximity.NewGrid(proximity.DefaultCellSizeDeg),
	}
}

// InsertNode appends a point to the graph's point table.
func (g *Graph) InsertNode(n OsmNode) {
	idx := int32(len(g.points))
	g.points = append(g.points, Point{
		ID:                     n.ID,
		Lat:                    float32(n.Lat),
		Lon:                    float32(n.Lon),
		ResidentialInProximity: n.ResidentialInProximity,
		NogoArea:               n.NogoArea,
	})
	g.pointIdx[n.ID] = idx
}

func (g *Graph) pointRefByID(id int64) (PointRef, bool) {
	idx, ok := g.pointIdx[id]
	if !ok {
		return PointRef{}, false
	}
	return newPointRef(int(idx)), true
}

// wayIsAdmissible implements the fixed highway allow-list and the
// service/access/motor_vehicle exclusions.
func wayIsAdmissible(tags map[string]string) bool {
	if tags == nil {
		return false
	}
	if _, ok := tags["service"]; ok {
		return false
	}
	if access := tags["access"]; access == "no" || access == "private" {
		return false
	}
	if mv := tags["motor_vehicle"]; mv == "private" || mv == "no" || mv == "destination" {
		return false
	}
	highway, ok := tags["highway"]
	if !ok {
		return false
	}
	motorcycle := tags["motorcycle"] == "yes"
	if highway == "path" {
		return motorcycle
	}
	return AllowedHighwayValues[highway]
}

// InsertWay validates the way and, if admissible, walks its point ids
// pairwise, materializing one line per consecutive pair with shared,
// interned tags. Returns MissingPointError if any referenced point was
// never ingested; that aborts only this way.
func (g *Graph) InsertWay(w OsmWay) error {
	if !wayIsAdmissible(w.Tags) {
		return nil
	}

	direction := BothWays
	if w.isRoundabout() {
		direction = Roundabout
	} else if w.isOneWay() {
		direction = OneWay
	}

	tagsRef := g.tags.getOrCreate(w.tag("name"), w.tag("ref"), w.tag("highway"), w.tag("surface"), w.tag("smoothness"))

	var lineRefs []LineRef
	var prev (*PointRef)
	for _, pointID := range w.PointIDs {
		ref, ok := g.pointRefByID(pointID)
		if !ok {
			return &MissingPointError{PointID: pointID}
		}
		if prev != nil {
			line := Line{PointA: *prev, PointB: ref, Direction: direction, Tags: tagsRef}
			g.lines = append(g.lines, line)
			lineRef := newLineRef(len(g.lines) - 1)
			lineRefs = append(lineRefs, lineRef)

			g.points[ref.Idx].Lines = append(g.points[ref.Idx].Lines, lineRef)
			g.points[prev.Idx].Lines = append(g.points[prev.Idx].Lines, lineRef)
		}
		refCopy := ref
		prev = &refCopy
	}
	g.wayLines[w.ID] = lineRefs
	return nil
}

var restrictionRuleType = map[string]RuleType{
	"no_right_turn":    NotAllowed,
	"no_left_turn":     NotAllowed,
	"no_u_turn":        NotAllowed,
	"no_straight_on":   NotAllowed,
	"no_entry":         NotAllowed,
	"no_exit":          NotAllowed,
	"only_right_turn":  OnlyAllowed,
	"only_left_turn":   OnlyAllowed,
	"only_u_turn":      OnlyAllowed,
	"only_straight_on": OnlyAllowed,
}

func relationRestrictionTag(tags map[string]string) (string, bool) {
	for _, key := range []string{"restriction", "restriction:motorcycle", "restriction:conditional", "restriction:motorcar"} {
		if v, ok := tags[key]; ok {
			return v, true
		}
	}
	return "", false
}

func relationIsAdmissible(tags map[string]string) bool {
	relType, ok := tags["type"]
	if !ok || !strings.HasPrefix(relType, "restriction") {
		return false
	}
	_, hasRestriction := relationRestrictionTag(tags)
	return hasRestriction
}

func linesForRole(wayLines map[int64][]LineRef, members []OsmRelationMember, role OsmRelationMemberRole) []LineRef {
	var out []LineRef
	for _, m := range members {
		if m.Role != role {
			continue
		}
		out = append(out, wayLines[m.MemberRef]...)
	}
	return out
}

// InsertRelation validates the relation and, for admissible restriction
// relations with exactly one via member, appends a Rule to the via
// point. Relations with zero via members are silently skipped per the
// OSM restriction schema (they are invalid and have no effect); more
// than one via member, or a via member of type way, fail with
// NotYetImplementedError.
func (g *Graph) InsertRelation(rel OsmRelation) error {
	if !relationIsAdmissible(rel.Tags) {
		return nil
	}
	restriction, _ := relationRestrictionTag(rel.Tags)
	firstToken := strings.SplitN(restriction, " ", 2)[0]
	ruleType, ok := restrictionRuleType[firstToken]
	if !ok {
		return &UnknownRestrictionError{RelationID: rel.ID, Restriction: restriction}
	}

	var viaMembers []OsmRelationMember
	for _, m := range rel.Members {
		if m.Role == RoleVia {
			viaMembers = append(viaMembers, m)
		}
	}
	if len(viaMembers) == 0 {
		return nil
	}
	if len(viaMembers) > 1 {
		return &NotYetImplementedError{RelationID: rel.ID, Message: "relations with more than one via member"}
	}

	fromLines := linesForRole(g.wayLines, rel.Members, RoleFrom)
	toLines := linesForRole(g.wayLines, rel.Members, RoleTo)
	if len(fromLines) == 0 || len(toLines) == 0 {
		return nil
	}

	via := viaMembers[0]
	if via.MemberType == MemberWay {
		return &NotYetImplementedError{RelationID: rel.ID, Message: "restrictions with a way as the via role"}
	}
	viaRef, ok := g.pointRefByID(via.MemberRef)
	if !ok {
		return &MissingViaPointError{RelationID: rel.ID, PointID: via.MemberRef}
	}

	g.points[viaRef.Idx].Rules = append(g.points[viaRef.Idx].Rules, Rule{
		FromLines: fromLines,
		ToLines:   toLines,
		Type:      ruleType,
	})
	return nil
}

// GeneratePointHashes seals the graph: every point participating in at
// least one line is inserted into the proximity grid, then the
// builder-only id and way-line maps are dropped. Must be called exactly
// once, after the last InsertNode/InsertWay/InsertRelation and before
// any query.
func (g *Graph) GeneratePointHashes() {
	for i := range g.points {
		if len(g.points[i].Lines) == 0 {
			continue
		}
		g.grid.Insert(float64(g.points[i].Lat), float64(g.points[i].Lon), int32(i))
	}
	g.pointIdx = nil
	g.wayLines = nil
	g.tags.clearBuilderMaps()
	g.frozen = true

	if memo, err := proximity.NewMemo(g.grid, closestMemoCapacity); err == nil {
		g.memo = memo
	}
}

// DistanceM returns the great-circle distance in meters between two
// points already resolved against this graph.
func (g *Graph) DistanceM(a, b PointRef) float64 {
	pa, pb := a.Borrow(g), b.Borrow(g)
	return geo.DistanceM(
		geo.Point{Lat: float64(pa.Lat), Lon: float64(pa.Lon)},
		geo.Point{Lat: float64(pb.Lat), Lon: float64(pb.Lon)},
	)
}

// AdjacentPair is one (line, other endpoint) result of GetAdjacent.
type AdjacentPair struct {
	Line  LineRef
	Point PointRef
}

// GetAdjacent returns every incident line of center paired with the
// endpoint at its far end.
func (g *Graph) GetAdjacent(center PointRef) []AdjacentPair {
	p := center.Borrow(g)
	out := make([]AdjacentPair, 0, len(p.Lines))
	for _, lineRef := range p.Lines {
		line := lineRef.Borrow(g)
		out = append(out, AdjacentPair{Line: lineRef, Point: line.OtherEnd(center)})
	}
	return out
}

// AvoidTagPolicy answers whether a highway/surface/smoothness value is
// to be avoided, decoupling mapdata from the rules package's JSON shape.
type AvoidTagPolicy interface {
	AvoidHighway(value string) bool
	AvoidSurface(value string) bool
	AvoidSmoothness(value string) bool
}

func (g *Graph) pointHasAvoidedTag(p *Point, policy AvoidTagPolicy) bool {
	if policy == nil {
		return false
	}
	for _, lineRef := range p.Lines {
		ts := g.TagSetByRef(lineRef.Borrow(g).Tags)
		if hw := g.Highway(ts); hw != "" && policy.AvoidHighway(hw) {
			return true
		}
		if sf := g.Surface(ts); sf != "" && policy.AvoidSurface(sf) {
			return true
		}
		if sm := g.Smoothness(ts); sm != "" && policy.AvoidSmoothness(sm) {
			return true
		}
	}
	return false
}

// GetClosestToCoords runs a ring-expansion proximity search around
// (lat, lon), drops candidates the policy or residential flag rule out,
// and returns the survivor nearest by great-circle distance. Returns
// (zero, false) if no candidate survives, and ErrUninitialized if the
// graph has not yet been frozen. Resolved answers are cached by quantized
// coordinate plus a fingerprint of policy and avoidProximityToResidential,
// since the generator re-resolves the same waypoint-grid coordinates
// repeatedly within one request.
func (g *Graph) GetClosestToCoords(lat, lon float64, policy AvoidTagPolicy, avoidProximityToResidential bool) (PointRef, bool, error) {
	if !g.frozen {
		return PointRef{}, false, ErrUninitialized
	}

	resolve := func(candidates []int32) (int32, bool) {
		target := geo.Point{Lat: lat, Lon: lon}
		var best int32
		bestDist := -1.0
		found := false
		for _, idx := range candidates {
			p := &g.points[idx]
			if avoidProximityToResidential && p.ResidentialInProximity {
				continue
			}
			if g.pointHasAvoidedTag(p, policy) {
				continue
			}
			d := geo.DistanceM(target, geo.Point{Lat: float64(p.Lat), Lon: float64(p.Lon)})
			if !found || d < bestDist {
				best = idx
				bestDist = d
				found = true
			}
		}
		return best, found
	}

	if g.memo != nil {
		idx, found := g.memo.Resolve(lat, lon, avoidProximityToResidential, fmt.Sprintf("%+v", policy), resolve)
		if !found {
			return PointRef{}, false, nil
		}
		return newPointRef(int(idx)), true, nil
	}

	idx, found := resolve(g.grid.CandidatesNear(lat, lon))
	if !found {
		return PointRef{}, false, nil
	}
	return newPointRef(int(idx)), true, nil
}

// NumPoints returns the size of the point table, mainly for cache and
// debug-viewer summaries.
func (g *Graph) NumPoints() int { return len(g.points) }

// NumLines returns the size of the line table.
func (g *Graph) NumLines() int { return len(g.lines) }

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(points=%d, lines=%d, frozen=%t)", len(g.points), len(g.lines), g.frozen)
}
