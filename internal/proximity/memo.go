// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package proximity

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// queryKey identifies a closest-point query for memoization purposes.
// Coordinates are rounded to the grid's own cell size before hashing,
// so two lookups that would land in the same cell share a cache entry.
type queryKey struct {
	cellX, cellY        int32
	avoidResidential     bool
	avoidTagsFingerprint string
}

// Memo wraps a Grid with a bounded in-process cache of closest-point
// results, keyed by quantized query coordinates and the caller's avoid
// rules. It does not decide candidates itself; callers supply a score
// function that resolves Grid candidates into a final answer, and Memo
// caches that resolved answer.
type Memo struct {
	grid  *Grid
	cache *ristretto.Cache[queryKey, int32]
}

// NewMemo wraps grid with a cache holding up to maxEntries resolved
// closest-point answers.
func NewMemo(grid *Grid, maxEntries int64) (*Memo, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[queryKey, int32]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("proximity: building memo cache: %w", err)
	}
	return &Memo{grid: grid, cache: cache}, nil
}

// Resolve returns the cached result for (lat, lon, avoidResidential,
// avoidTagsFingerprint) if present; otherwise it calls resolve with the
// grid's raw candidates, caches the outcome, and returns it. found is
// false both when resolve found nothing and when it reported a miss;
// callers distinguish those by resolve's own return convention.
func (m *Memo) Resolve(lat, lon float64, avoidResidential bool, avoidTagsFingerprint string, resolve func(candidates []int32) (int32, bool)) (int32, bool) {
	k := m.keyFor(lat, lon, avoidResidential, avoidTagsFingerprint)
	if v, ok := m.cache.Get(k); ok {
		return v, true
	}
	candidates := m.grid.CandidatesNear(lat, lon)
	result, ok := resolve(candidates)
	if ok {
		m.cache.Set(k, result, 1)
	}
	return result, ok
}

func (m *Memo) keyFor(lat, lon float64, avoidResidential bool, fp string) queryKey {
	c := m.grid.keyFor(lat, lon)
	return queryKey{cellX: c.X, cellY: c.Y, avoidResidential: avoidResidential, avoidTagsFingerprint: fp}
}

// Wait blocks until every Set so far has been applied to the cache.
// Ristretto applies writes asynchronously through an internal buffer;
// callers that need a just-written entry to be immediately visible
// (tests, warm-up passes) should call this first.
func (m *Memo) Wait() {
	m.cache.Wait()
}

// Close releases the cache's background goroutines.
func (m *Memo) Close() {
	m.cache.Close()
}
