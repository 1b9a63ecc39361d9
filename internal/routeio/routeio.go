// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package routeio renders a generated route batch to disk in the
// formats a rider actually wants to load into a GPS unit or inspect by
// hand: GPX (for devices), CSV (for spreadsheets), and JSON (for
// scripting). Every route carries the same statistics regardless of
// format; only the encoding differs.
package routeio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/tomsjansons/ridi-router/internal/geo"
	"github.com/tomsjansons/ridi-router/internal/mapdata"
	"github.com/tomsjansons/ridi-router/internal/routestats"
	"github.com/tomsjansons/ridi-router/internal/walker"
)

// Format selects the output encoding WriteBatch produces.
type Format string

const (
	FormatGPX  Format = "gpx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Route bundles one generated route's coordinates with its precomputed
// statistics, the unit every writer in this package consumes.
type Route struct {
	ID     string
	Stats  routestats.Stats
	Coords []geo.Point
}

// Coords walks route from originStart and returns every point visited,
// in order, for rendering as a track/waypoint list.
func Coords(g *mapdata.Graph, originStart mapdata.PointRef, route *walker.Route) []geo.Point {
	segments := route.Segments()
	coords := make([]geo.Point, 0, len(segments)+1)
	coords = append(coords, pointGeo(g, originStart))
	for _, seg := range segments {
		coords = append(coords, pointGeo(g, seg.Point))
	}
	return coords
}

func pointGeo(g *mapdata.Graph, ref mapdata.PointRef) geo.Point {
	p := ref.Borrow(g)
	return geo.Point{Lat: float64(p.Lat), Lon: float64(p.Lon)}
}

// WriteBatch renders routes to w in the requested format.
func WriteBatch(w io.Writer, routes []Route, format Format) error {
	switch format {
	case FormatGPX:
		return writeGPX(w, routes)
	case FormatCSV:
		return writeCSV(w, routes)
	case FormatJSON:
		return writeJSON(w, routes)
	default:
		return fmt.Errorf("routeio: unknown format %q", format)
	}
}

func sortByLongest(m map[string]routestats.TagBreakdown) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return m[keys[i]].LenM > m[keys[j]].LenM
	})
	return keys
}

func writeCSV(w io.Writer, routes []Route) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "len", "junctions", "mean_point_lat", "mean_point_lon", "dir_change_ratio"}); err != nil {
		return fmt.Errorf("routeio: csv header: %w", err)
	}
	for _, r := range routes {
		record := []string{
			r.ID,
			strconv.FormatFloat(r.Stats.LenM/1000, 'f', -1, 64),
			strconv.Itoa(r.Stats.JunctionCount),
			strconv.FormatFloat(r.Stats.MeanPoint.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.MeanPoint.Lon, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.DirectionChangeRatio, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("routeio: csv record %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonTagBreakdown struct {
	LenM       float64 `json:"len_m"`
	Percentage float64 `json:"percentage"`
}

type jsonStats struct {
	LenM                 float64                      `json:"len_m"`
	JunctionCount        int                          `json:"junction_count"`
	Highway              map[string]jsonTagBreakdown   `json:"highway"`
	Surface              map[string]jsonTagBreakdown   `json:"surface"`
	Smoothness           map[string]jsonTagBreakdown   `json:"smoothness"`
	MeanPointLat         float64                       `json:"mean_point_lat"`
	MeanPointLon         float64                       `json:"mean_point_lon"`
	DirectionChangeRatio float64                       `json:"direction_change_ratio"`
	Score                float64                       `json:"score"`
	Cluster              *int                          `json:"cluster,omitempty"`
}

type jsonCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type jsonRoute struct {
	ID     string      `json:"id"`
	Stats  jsonStats   `json:"stats"`
	Coords []jsonCoord `json:"coords"`
}

func toJSONTagMap(m map[string]routestats.TagBreakdown) map[string]jsonTagBreakdown {
	out := make(map[string]jsonTagBreakdown, len(m))
	for k, v := range m {
		out[k] = jsonTagBreakdown{LenM: v.LenM, Percentage: v.Percentage}
	}
	return out
}

func writeJSON(w io.Writer, routes []Route) error {
	out := make([]jsonRoute, 0, len(routes))
	for _, r := range routes {
		coords := make([]jsonCoord, 0, len(r.Coords))
		for _, c := range r.Coords {
			coords = append(coords, jsonCoord{Lat: c.Lat, Lon: c.Lon})
		}
		out = append(out, jsonRoute{
			ID: r.ID,
			Stats: jsonStats{
				LenM:                 r.Stats.LenM,
				JunctionCount:        r.Stats.JunctionCount,
				Highway:              toJSONTagMap(r.Stats.Highway),
				Surface:              toJSONTagMap(r.Stats.Surface),
				Smoothness:           toJSONTagMap(r.Stats.Smoothness),
				MeanPointLat:         r.Stats.MeanPoint.Lat,
				MeanPointLon:         r.Stats.MeanPoint.Lon,
				DirectionChangeRatio: r.Stats.DirectionChangeRatio,
				Score:                r.Stats.Score,
				Cluster:              r.Stats.Cluster,
			},
			Coords: coords,
		})
	}

	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("routeio: json encode: %w", err)
	}
	return nil
}
