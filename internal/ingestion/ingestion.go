// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ingestion defines the consumer-side contract a graph builder
// needs from an OSM element feed, and one concrete source good enough
// to exercise it end to end: a JSON array of elements. Parsing an
// actual .osm.pbf extract, and the residential-area/nogo-area
// detection that would otherwise compute Node.ResidentialInProximity
// and Node.NogoArea, are out of scope — those booleans are accepted
// pre-computed on the wire.
package ingestion

import (
	"context"
	"log/slog"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
)

// AllowedHighwayValues mirrors mapdata.AllowedHighwayValues; a source
// implementation filters ways against it (plus the path+motorcycle=yes
// special case) before ever handing them to a consumer, so the
// consumer never has to re-derive admissibility from raw tags.
var AllowedHighwayValues = mapdata.AllowedHighwayValues

// ElementSource streams OSM elements to a consumer over channels. Each
// channel is closed once exhausted; Err returns the first error
// encountered during streaming, valid only after all three channels
// have closed.
type ElementSource interface {
	Nodes() <-chan mapdata.OsmNode
	Ways() <-chan mapdata.OsmWay
	Relations() <-chan mapdata.OsmRelation
	Err() error
}

// Load drains source into a fresh graph, calling GeneratePointHashes
// once streaming completes. Ways and relations the graph rejects as inadmissible or
// unresolvable are skipped rather than fatal, but each skip is logged
// against logger so a malformed extract is diagnosable after the fact.
// A nil logger falls back to slog.Default().
func Load(ctx context.Context, source ElementSource, logger *slog.Logger) (*mapdata.Graph, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := mapdata.NewGraph()

	nodes := source.Nodes()
	ways := source.Ways()
	relations := source.Relations()

	var waysSkipped, relationsSkipped int
	for nodes != nil || ways != nil || relations != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case n, ok := <-nodes:
			if !ok {
				nodes = nil
				continue
			}
			g.InsertNode(n)
		case w, ok := <-ways:
			if !ok {
				ways = nil
				continue
			}
			if err := g.InsertWay(w); err != nil {
				waysSkipped++
				logger.Warn("ingestion: skipping way", slog.Int64("way_id", w.ID), slog.Any("err", err))
			}
		case rel, ok := <-relations:
			if !ok {
				relations = nil
				continue
			}
			if err := g.InsertRelation(rel); err != nil {
				relationsSkipped++
				logger.Warn("ingestion: skipping relation", slog.Int64("relation_id", rel.ID), slog.Any("err", err))
			}
		}
	}

	if err := source.Err(); err != nil {
		return nil, err
	}

	if waysSkipped > 0 || relationsSkipped > 0 {
		logger.Info("ingestion: load finished with skipped elements",
			slog.Int("ways_skipped", waysSkipped), slog.Int("relations_skipped", relationsSkipped))
	}

	g.GeneratePointHashes()
	return g, nil
}
