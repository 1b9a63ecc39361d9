// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resultcache memoizes generator.Generator.GenerateRoutes
// results in an embedded BadgerDB store, keyed by a hash of the
// itinerary request and the rules that produced it. Generating a full
// route batch walks a large search tree per itinerary sample; repeating
// an identical request (same endpoints, same rules) is a pure cache
// hit instead of a second full search.
package resultcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tomsjansons/ridi-router/internal/generator"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/telemetry"
)

// DefaultTTL is how long a cached route batch survives before BadgerDB's
// GC reclaims it.
const DefaultTTL = 7 * 24 * time.Hour

// keyPrefix namespaces this cache's keys within a shared BadgerDB
// instance and versions the on-disk value format.
const keyPrefix = "routing/routes/v1/"

var errMiss = errors.New("resultcache: miss")

// Store persists generator route batches in BadgerDB.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens (creating if absent) a BadgerDB instance at dir.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("resultcache: open: %w", err)
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Close releases the underlying BadgerDB handle.
func (s *Store) Close() error { return s.db.Close() }

// Signature is the request fingerprint a cache entry is keyed on: the
// itinerary endpoints (or round-trip bearing/distance), plus a hash of
// the rules that governed generation. Two identical Signatures always
// deserve the same cached answer.
type Signature struct {
	StartID      int64
	FinishID     int64
	RoundTrip    bool
	BearingDeg   float64
	DistanceM    float64
	RulesHash    string
}

// Key derives the BadgerDB key for a signature: a versioned prefix plus
// the hex SHA256 of its fields, so two requests that differ only in
// field order or representation still collide correctly.
func (sig Signature) Key() []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%d\t%d\t%t\t%f\t%f\t%s", sig.StartID, sig.FinishID, sig.RoundTrip, sig.BearingDeg, sig.DistanceM, sig.RulesHash)
	return []byte(keyPrefix + hex.EncodeToString(h.Sum(nil)))
}

// Load looks up a previously cached route batch, returning (nil, nil)
// on a cache miss.
func (s *Store) Load(ctx context.Context, sig Signature) ([]generator.RouteWithStats, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sig.Key())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errMiss
		}
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, errMiss) {
		telemetry.CacheLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resultcache: load: %w", err)
	}
	telemetry.CacheLookups.WithLabelValues("hit").Inc()

	var cached []generator.RouteWithStats
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&cached); err != nil {
		return nil, fmt.Errorf("resultcache: decode: %w", err)
	}
	return cached, nil
}

// Save persists a route batch under sig's key with the store's TTL.
func (s *Store) Save(ctx context.Context, sig Signature, routes []generator.RouteWithStats) error {
	if len(routes) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(routes); err != nil {
		return fmt.Errorf("resultcache: encode: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sig.Key(), buf.Bytes()).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// SignatureFor builds a Signature for a point-to-point request.
func SignatureFor(g *mapdata.Graph, start, finish mapdata.PointRef, rulesHash string) Signature {
	return Signature{
		StartID:   start.Borrow(g).ID,
		FinishID:  finish.Borrow(g).ID,
		RulesHash: rulesHash,
	}
}

// SignatureForRoundTrip builds a Signature for a round-trip request.
func SignatureForRoundTrip(g *mapdata.Graph, start mapdata.PointRef, bearingDeg, distanceM float64, rulesHash string) Signature {
	return Signature{
		StartID:    start.Borrow(g).ID,
		FinishID:   start.Borrow(g).ID,
		RoundTrip:  true,
		BearingDeg: bearingDeg,
		DistanceM:  distanceM,
		RulesHash:  rulesHash,
	}
}
