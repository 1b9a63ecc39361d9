// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command ridi-router generates motorcycle-friendly routes from an
// OSM-derived road graph.
//
// Usage:
//
//	ridi-router route --start lat,lon --finish lat,lon --cache-dir DIR --out out.gpx
//	ridi-router route --start lat,lon --loop-bearing 45 --loop-distance-m 40000 --cache-dir DIR --out loop.gpx
//	ridi-router cache build --osm-file map.json --cache-dir DIR
//	ridi-router cache inspect --cache-dir DIR
//	ridi-router serve --cache-dir DIR
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
