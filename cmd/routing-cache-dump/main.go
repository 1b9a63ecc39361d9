// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// routing-cache-dump inspects the router's result cache.
//
// The result cache persists generated route batches (internal/resultcache,
// keyed by a hash of the itinerary request and the rules that produced it)
// in BadgerDB between router runs. This tool opens the cache read-only and
// prints a human-readable summary: keys, TTL remaining, route counts, and
// each route's length/score.
//
// Usage:
//
//	routing-cache-dump [--path /path/to/cache]
//
// If --path is not given, reads RIDI_ROUTER_CACHE_DIR from the environment,
// falling back to ~/.ridi-router/cache/routes/.
//
// Exit codes:
//
//	0 — success (including "empty cache", which prints a message and exits 0)
//	1 — error opening or reading the database
package main

import (
	"bytes"
	"encoding/gob"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tomsjansons/ridi-router/internal/generator"
)

// keyPrefix must match internal/resultcache exactly.
const keyPrefix = "routing/routes/v1/"

func main() {
	pathFlag := flag.String("path", "", "Path to result cache BadgerDB directory (overrides RIDI_ROUTER_CACHE_DIR)")
	flag.Parse()

	dbPath := *pathFlag
	if dbPath == "" {
		dbPath = os.Getenv("RIDI_ROUTER_CACHE_DIR")
	}
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fatalf("cannot resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, ".ridi-router", "cache", "routes")
	}

	fmt.Printf("Result cache path: %s\n", dbPath)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Cache directory does not exist. No route batch has been cached yet.")
		os.Exit(0)
	}

	opts := badger.DefaultOptions(dbPath).WithLogger(nil).WithReadOnly(true)
	db, err := badger.Open(opts)
	if err != nil {
		fatalf("open BadgerDB at %s: %v", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	type entry struct {
		key       string
		hasExpiry bool
		expiresAt time.Time
		rawSize   int
		routes    []generator.RouteWithStats
		decodeErr error
	}

	var entries []entry

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = true
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var e entry
			e.key = string(item.Key())

			if expiresAt := item.ExpiresAt(); expiresAt > 0 {
				e.hasExpiry = true
				e.expiresAt = time.Unix(int64(expiresAt), 0)
			}

			raw, err := item.ValueCopy(nil)
			if err != nil {
				e.decodeErr = fmt.Errorf("copy value: %w", err)
				entries = append(entries, e)
				continue
			}
			e.rawSize = len(raw)

			var routes []generator.RouteWithStats
			if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&routes); err != nil {
				e.decodeErr = fmt.Errorf("gob decode: %w", err)
			} else {
				e.routes = routes
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		fatalf("read BadgerDB: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("\nNo cached route batches found.")
		os.Exit(0)
	}

	fmt.Printf("\nFound %d cache entr%s:\n", len(entries), plural(len(entries), "y", "ies"))
	fmt.Println(strings.Repeat("─", 80))

	for i, e := range entries {
		fmt.Printf("\n[%d] Key:      %s\n", i+1, e.key)

		if e.hasExpiry {
			remaining := time.Until(e.expiresAt)
			if remaining < 0 {
				fmt.Printf("    TTL:      EXPIRED (%s ago)\n", (-remaining).Round(time.Second))
			} else {
				fmt.Printf("    TTL:      %s remaining\n", remaining.Round(time.Second))
			}
		} else {
			fmt.Printf("    TTL:      no expiry set\n")
		}
		fmt.Printf("    Raw size: %d bytes\n", e.rawSize)

		if e.decodeErr != nil {
			fmt.Printf("    DECODE ERROR: %v\n", e.decodeErr)
			continue
		}

		fmt.Printf("    Routes:   %d\n", len(e.routes))
		for j, r := range e.routes {
			fmt.Printf("      [%d] len=%.0fm score=%.2f cluster=%s\n",
				j, r.Stats.LenM, r.Stats.Score, clusterLabel(r.Stats.Cluster))
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("─", 80))
	fmt.Printf("Summary: %d entr%s, cache path: %s\n", len(entries), plural(len(entries), "y", "ies"), dbPath)
}

func clusterLabel(cluster *int) string {
	if cluster == nil {
		return "?"
	}
	if *cluster < 0 {
		return "noise"
	}
	return fmt.Sprintf("%d", *cluster)
}

func plural(n int, singular, pluralSuffix string) string {
	if n == 1 {
		return singular
	}
	return pluralSuffix
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "routing-cache-dump: "+format+"\n", args...)
	os.Exit(1)
}
