// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ingestion

import (
	"fmt"
	"io"
	"log/slog"

	gojson "github.com/goccy/go-json"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
)

// jsonElement is the wire shape of one entry in a JSON-array element
// feed: a discriminated union over node/way/relation, flattened into
// one struct since goccy/go-json has no tagged-union support.
type jsonElement struct {
	Type string `json:"type"`

	ID  int64   `json:"id"`
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`

	ResidentialInProximity bool `json:"residential_in_proximity,omitempty"`
	NogoArea               bool `json:"nogo_area,omitempty"`

	Nodes []int64           `json:"nodes,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`

	Members []jsonRelationMember `json:"members,omitempty"`
}

type jsonRelationMember struct {
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
	Type string `json:"type"`
}

// JSONSource reads a JSON array of elements (as jsonElement marshals)
// and streams them out as mapdata OSM elements, dropping ways whose
// highway tag is not admissible before they ever reach a consumer.
type JSONSource struct {
	nodes     chan mapdata.OsmNode
	ways      chan mapdata.OsmWay
	relations chan mapdata.OsmRelation
	done      chan struct{}
	err       error
	logger    *slog.Logger
}

// NewJSONSource starts decoding r in the background and returns a
// source streaming its elements. Callers must drain Nodes/Ways/
// Relations to completion (or cancel the Load call consuming them)
// before checking Err.
func NewJSONSource(r io.Reader, logger *slog.Logger) *JSONSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &JSONSource{
		nodes:     make(chan mapdata.OsmNode),
		ways:      make(chan mapdata.OsmWay),
		relations: make(chan mapdata.OsmRelation),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go s.run(r)
	return s
}

func (s *JSONSource) Nodes() <-chan mapdata.OsmNode         { return s.nodes }
func (s *JSONSource) Ways() <-chan mapdata.OsmWay           { return s.ways }
func (s *JSONSource) Relations() <-chan mapdata.OsmRelation { return s.relations }

// Err returns the first decode error encountered, valid once all three
// channels have closed.
func (s *JSONSource) Err() error {
	<-s.done
	return s.err
}

func (s *JSONSource) run(r io.Reader) {
	defer close(s.done)
	defer close(s.relations)
	defer close(s.ways)
	defer close(s.nodes)

	var elements []jsonElement
	if err := gojson.NewDecoder(r).Decode(&elements); err != nil {
		s.err = fmt.Errorf("ingestion: decode element array: %w", err)
		return
	}

	var nodeCount, wayCount, wayDropped, relCount int
	for _, el := range elements {
		switch el.Type {
		case "node":
			s.nodes <- mapdata.OsmNode{
				ID:                     el.ID,
				Lat:                    el.Lat,
				Lon:                    el.Lon,
				ResidentialInProximity: el.ResidentialInProximity,
				NogoArea:               el.NogoArea,
			}
			nodeCount++
		case "way":
			if !wayAdmissible(el.Tags) {
				wayDropped++
				continue
			}
			s.ways <- mapdata.OsmWay{ID: el.ID, PointIDs: el.Nodes, Tags: el.Tags}
			wayCount++
		case "relation":
			members := make([]mapdata.OsmRelationMember, 0, len(el.Members))
			for _, m := range el.Members {
				role, ok := relationRole(m.Role)
				if !ok {
					continue
				}
				memberType, ok := relationMemberType(m.Type)
				if !ok {
					continue
				}
				members = append(members, mapdata.OsmRelationMember{
					MemberRef:  m.Ref,
					Role:       role,
					MemberType: memberType,
				})
			}
			s.relations <- mapdata.OsmRelation{ID: el.ID, Tags: el.Tags, Members: members}
			relCount++
		default:
			s.logger.Warn("ingestion: unknown element type, skipping", slog.String("type", el.Type), slog.Int64("id", el.ID))
		}
	}

	s.logger.Info("ingestion: json source exhausted",
		slog.Int("nodes", nodeCount), slog.Int("ways", wayCount),
		slog.Int("ways_dropped", wayDropped), slog.Int("relations", relCount))
}

func wayAdmissible(tags map[string]string) bool {
	if tags == nil {
		return false
	}
	highway, ok := tags["highway"]
	if !ok {
		return false
	}
	if AllowedHighwayValues[highway] {
		return tags["motor_vehicle"] != "destination"
	}
	if highway == "path" && tags["motorcycle"] == "yes" {
		return tags["motor_vehicle"] != "destination"
	}
	return false
}

func relationRole(role string) (mapdata.OsmRelationMemberRole, bool) {
	switch role {
	case "from":
		return mapdata.RoleFrom, true
	case "via":
		return mapdata.RoleVia, true
	case "to":
		return mapdata.RoleTo, true
	default:
		return 0, false
	}
}

func relationMemberType(t string) (mapdata.OsmRelationMemberType, bool) {
	switch t {
	case "node":
		return mapdata.MemberNode, true
	case "way":
		return mapdata.MemberWay, true
	case "relation":
		return mapdata.MemberRelation, true
	default:
		return 0, false
	}
}
