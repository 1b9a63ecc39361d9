// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

// OsmNode is the wire shape of a graph-building Node element (spec.md §6).
type OsmNode struct {
	ID                     int64
	Lat                    float64
	Lon                    float64
	ResidentialInProximity bool
	NogoArea               bool
}

// OsmWay is the wire shape of a graph-building Way element. Tags is nil
// for a way with no tags at all, which InsertWay treats as inadmissible.
type OsmWay struct {
	ID       int64
	PointIDs []int64
	Tags     map[string]string
}

func (w *OsmWay) tag(key string) *string {
	if w.Tags == nil {
		return nil
	}
	if v, ok := w.Tags[key]; ok {
		return &v
	}
	return nil
}

func (w *OsmWay) isRoundabout() bool {
	return w.Tags != nil && w.Tags["junction"] == "roundabout"
}

func (w *OsmWay) isOneWay() bool {
	if w.Tags == nil {
		return false
	}
	return w.Tags["oneway"] == "yes" || w.Tags["oneway"] == "1" || w.isRoundabout()
}

// OsmRelationMemberRole is the role an OsmRelationMember plays within a
// restriction relation.
type OsmRelationMemberRole uint8

const (
	RoleFrom OsmRelationMemberRole = iota
	RoleVia
	RoleTo
)

// OsmRelationMemberType is the OSM element kind a member references.
type OsmRelationMemberType uint8

const (
	MemberNode OsmRelationMemberType = iota
	MemberWay
	MemberRelation
)

// OsmRelationMember is one entry in a relation's member list.
type OsmRelationMember struct {
	MemberRef  int64
	Role       OsmRelationMemberRole
	MemberType OsmRelationMemberType
}

// OsmRelation is the wire shape of a graph-building Relation element.
type OsmRelation struct {
	ID      int64
	Tags    map[string]string
	Members []OsmRelationMember
}

// AllowedHighwayValues is the fixed admissibility allow-list for the
// `highway` tag. `path` is handled separately since it additionally
// requires `motorcycle=yes`.
var AllowedHighwayValues = map[string]bool{
	"motorway":       true,
	"trunk":          true,
	"primary":        true,
	"secondary":      true,
	"tertiary":       true,
	"unclassified":   true,
	"residential":    true,
	"motorway_link":  true,
	"trunk_link":     true,
	"primary_link":   true,
	"secondary_link": true,
	"tertiary_link":  true,
	"living_street":  true,
	"track":          true,
	"escape":         true,
	"raceway":        true,
	"road":           true,
}
