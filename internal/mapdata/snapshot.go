// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

import "github.com/tomsjansons/ridi-router/internal/proximity"

// TagsSnapshot is the serializable form of the tag interning table: the
// string table and the deduplicated tag-set table, indexed exactly as
// the live graph addresses them.
type TagsSnapshot struct {
	Values  []string
	TagSets []TagSet
}

// Snapshot is the graph's state split into the four independently
// (de)serializable parts internal/graphcache packs. It carries no
// builder-only state (pointIdx, wayLines) since those are dropped at
// freeze time and have no meaning for a graph loaded from cache.
type Snapshot struct {
	Points []Point
	Lines  []Line
	Tags   TagsSnapshot
	Grid   *proximity.Grid
}

// Snapshot captures the frozen graph's state for serialization. Calling
// it before GeneratePointHashes is a programmer error; graphcache only
// ever packs a frozen graph.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Points: g.points,
		Lines:  g.lines,
		Tags:   TagsSnapshot{Values: g.tags.values, TagSets: g.tags.tagSets},
		Grid:   g.grid,
	}
}

// FromSnapshot reconstitutes a frozen graph from its four parts. Index
// handles captured before packing remain valid, since indices are
// preserved verbatim.
func FromSnapshot(s Snapshot) *Graph {
	return &Graph{
		points: s.Points,
		lines:  s.Lines,
		tags: &tagInterner{
			values:  s.Tags.Values,
			tagSets: s.Tags.TagSets,
		},
		grid:   s.Grid,
		frozen: true,
	}
}
