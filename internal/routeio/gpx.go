// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routeio

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tomsjansons/ridi-router/internal/routestats"
)

// No GPX-writing library is available in this module's dependency set,
// so the GPX 1.1 subset a motorcycle GPS unit actually needs (a named
// route, its description, and an ordered list of route points) is
// marshaled by hand via encoding/xml.

type gpxWaypoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

type gpxRoute struct {
	Name        string        `xml:"name"`
	Description string        `xml:"desc"`
	Points      []gpxWaypoint `xml:"rtept"`
}

type gpxDoc struct {
	XMLName xml.Name   `xml:"gpx"`
	Version string     `xml:"version,attr"`
	Creator string     `xml:"creator,attr"`
	Xmlns   string     `xml:"xmlns,attr"`
	Routes  []gpxRoute `xml:"rte"`
}

func writeGPX(w io.Writer, routes []Route) error {
	doc := gpxDoc{
		Version: "1.1",
		Creator: "ridi-router",
		Xmlns:   "http://www.topografix.com/GPX/1/1",
	}

	for _, r := range routes {
		var desc strings.Builder
		fmt.Fprintf(&desc, "Length: %.2fkm\n", r.Stats.LenM/1000)
		fmt.Fprintf(&desc, "Number of junctions: %d\n", r.Stats.JunctionCount)
		fmt.Fprintf(&desc, "Mean point: %.5f,%.5f\n", r.Stats.MeanPoint.Lat, r.Stats.MeanPoint.Lon)
		fmt.Fprintf(&desc, "Direction change degrees per km: %.2f\n", r.Stats.DirectionChangeRatio)

		desc.WriteString("Road types:\n")
		appendTagBreakdown(&desc, r.Stats.Highway)
		desc.WriteString("Road surface:\n")
		appendTagBreakdown(&desc, r.Stats.Surface)
		desc.WriteString("Road smoothness:\n")
		appendTagBreakdown(&desc, r.Stats.Smoothness)

		gr := gpxRoute{Name: r.ID, Description: desc.String()}
		for _, c := range r.Coords {
			gr.Points = append(gr.Points, gpxWaypoint{Lat: c.Lat, Lon: c.Lon})
		}
		doc.Routes = append(doc.Routes, gr)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("routeio: gpx header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("routeio: gpx encode: %w", err)
	}
	return nil
}

func appendTagBreakdown(sb *strings.Builder, m map[string]routestats.TagBreakdown) {
	for _, key := range sortByLongest(m) {
		stat := m[key]
		fmt.Fprintf(sb, " - %s: %.2fkm, %.2f%%\n", key, stat.LenM/1000, stat.Percentage)
	}
}
