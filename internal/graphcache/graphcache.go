// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graphcache persists a frozen graph to disk as four
// independently encoded blobs (points, lines, tags, point grid) so a
// second run can skip re-ingesting and re-freezing the OSM source.
package graphcache

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/proximity"
)

const (
	pointsFile = "points.cache"
	linesFile  = "lines.cache"
	tagsFile   = "tags.cache"
	gridFile   = "point_grid.cache"
)

// Cache reads and writes a graph's on-disk cache under Dir. A nil Dir
// (zero value with Dir == "") disables both operations, matching the
// reference implementation's "no cache directory configured" behavior.
type Cache struct {
	Dir string
}

// New returns a Cache rooted at dir. An empty dir disables caching.
func New(dir string) Cache { return Cache{Dir: dir} }

// Enabled reports whether a cache directory was configured.
func (c Cache) Enabled() bool { return c.Dir != "" }

// Read loads a previously written cache, returning (nil, nil) if the
// directory doesn't exist yet (a cold start, not an error) or caching
// is disabled.
func (c Cache) Read(ctx context.Context) (*mapdata.Graph, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if _, err := os.Stat(c.Dir); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("graphcache: stat cache dir: %w", err)
	}

	var pointsBlob, linesBlob, tagsBlob, gridBlob []byte
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() (err error) { pointsBlob, err = c.readFile(pointsFile); return })
	group.Go(func() (err error) { linesBlob, err = c.readFile(linesFile); return })
	group.Go(func() (err error) { tagsBlob, err = c.readFile(tagsFile); return })
	group.Go(func() (err error) { gridBlob, err = c.readFile(gridFile); return })
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var points []mapdata.Point
	if err := gobDecode(pointsBlob, &points); err != nil {
		return nil, fmt.Errorf("graphcache: decode points: %w", err)
	}
	var lines []mapdata.Line
	if err := gobDecode(linesBlob, &lines); err != nil {
		return nil, fmt.Errorf("graphcache: decode lines: %w", err)
	}
	var tags mapdata.TagsSnapshot
	if err := gobDecode(tagsBlob, &tags); err != nil {
		return nil, fmt.Errorf("graphcache: decode tags: %w", err)
	}
	var grid proximity.Grid
	if err := gobDecode(gridBlob, &grid); err != nil {
		return nil, fmt.Errorf("graphcache: decode point grid: %w", err)
	}

	g := mapdata.FromSnapshot(mapdata.Snapshot{
		Points: points,
		Lines:  lines,
		Tags:   tags,
		Grid:   &grid,
	})
	return g, nil
}

// Write packs a frozen graph's snapshot into the four cache files,
// replacing the cache directory's prior contents. A no-op if caching is
// disabled.
func (c Cache) Write(ctx context.Context, g *mapdata.Graph) error {
	if !c.Enabled() {
		return nil
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		return fmt.Errorf("graphcache: clear cache dir: %w", err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("graphcache: create cache dir: %w", err)
	}

	snap := g.Snapshot()

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error { return c.writeEncoded(pointsFile, snap.Points) })
	group.Go(func() error { return c.writeEncoded(linesFile, snap.Lines) })
	group.Go(func() error { return c.writeEncoded(tagsFile, snap.Tags) })
	group.Go(func() error { return c.writeEncoded(gridFile, snap.Grid) })
	return group.Wait()
}

func (c Cache) readFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("graphcache: read %s: %w", name, err)
	}
	return data, nil
}

func (c Cache) writeEncoded(name string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("graphcache: encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(c.Dir, name), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("graphcache: write %s: %w", name, err)
	}
	return nil
}

func gobDecode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
