// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

import "strings"

// valueRef is a slot id into the interning table's value list. Zero means
// "absent" so a TagSet stays a fixed-size, cheaply hashable value.
type valueRef uint32

const noValue valueRef = 0

// TagSet is the interned five-tuple every line carries. Two TagSetRef
// handles are logically equal iff the underlying five valueRefs match,
// which is exactly referential equality of the interning slots (spec
// invariant 3).
type TagSet struct {
	Name       valueRef
	HwRef      valueRef
	Highway    valueRef
	Surface    valueRef
	Smoothness valueRef
}

// TagSetRef is an index into the graph's tag-set table.
type TagSetRef uint32

// tagInterner owns the string table and the deduplicated tag-set table
// built during ingestion. Its lookup maps are builder-only state,
// cleared once the graph is frozen; its values and tagSets slices stay
// and serve every tag lookup on the frozen graph.
type tagInterner struct {
	values    []string
	valueIdx  map[string]valueRef
	tagSets   []TagSet
	tagSetIdx map[TagSet]TagSetRef
}

func newTagInterner() *tagInterner {
	return &tagInterner{
		values:    []string{""}, // index 0 reserved, never returned by internValue
		valueIdx:  make(map[string]valueRef),
		tagSetIdx: make(map[TagSet]TagSetRef),
	}
}

func (t *tagInterner) internValue(v *string) valueRef {
	if v == nil || *v == "" {
		return noValue
	}
	if ref, ok := t.valueIdx[*v]; ok {
		return ref
	}
	t.values = append(t.values, *v)
	ref := valueRef(len(t.values) - 1)
	t.valueIdx[*v] = ref
	return ref
}

func normalizeHighway(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSuffix(*v, "_link")
	return &s
}

// getOrCreate interns the five tag values and returns the (deduplicated)
// tag-set handle for them, creating a new slot on first sight of a tuple.
func (t *tagInterner) getOrCreate(name, hwRef, highway, surface, smoothness *string) TagSetRef {
	ts := TagSet{
		Name:       t.internValue(name),
		HwRef:      t.internValue(hwRef),
		Highway:    t.internValue(normalizeHighway(highway)),
		Surface:    t.internValue(surface),
		Smoothness: t.internValue(smoothness),
	}
	if ref, ok := t.tagSetIdx[ts]; ok {
		return ref
	}
	t.tagSets = append(t.tagSets, ts)
	ref := TagSetRef(len(t.tagSets) - 1)
	t.tagSetIdx[ts] = ref
	return ref
}

// clearBuilderMaps drops the dedup indexes once ingestion is sealed;
// the slices themselves stay, since queries address them by index.
func (t *tagInterner) clearBuilderMaps() {
	t.valueIdx = nil
	t.tagSetIdx = nil
}

// Value returns the interned string for a slot, or "" if the slot is
// noValue (absent).
func (g *Graph) Value(ref valueRef) string {
	if ref == noValue {
		return ""
	}
	return g.tags.values[ref]
}

// TagSetByRef returns the tag-set record for a handle.
func (g *Graph) TagSetByRef(ref TagSetRef) TagSet {
	return g.tags.tagSets[ref]
}

// Name returns the line's `name` tag, or "" if unset.
func (g *Graph) Name(ts TagSet) string { return g.Value(ts.Name) }

// Ref returns the line's `hw_ref` tag, or "" if unset.
func (g *Graph) Ref(ts TagSet) string { return g.Value(ts.HwRef) }

// Highway returns the line's `highway` tag, or "" if unset.
func (g *Graph) Highway(ts TagSet) string { return g.Value(ts.Highway) }

// Surface returns the line's `surface` tag, or "" if unset.
func (g *Graph) Surface(ts TagSet) string { return g.Value(ts.Surface) }

// Smoothness returns the line's `smoothness` tag, or "" if unset.
func (g *Graph) Smoothness(ts TagSet) string { return g.Value(ts.Smoothness) }
