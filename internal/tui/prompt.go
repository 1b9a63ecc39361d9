// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
)

// Request is a route request collected interactively, before the
// caller has parsed its strings into the coordinates/floats
// internal/generator actually needs.
type Request struct {
	StartLat string
	StartLon string

	RoundTrip bool

	FinishLat string
	FinishLon string

	RoundTripBearingDeg string
	RoundTripDistanceM  string

	RulesPath string
	OutPath   string
	Format    string
}

func nonEmpty(label string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func validFloat(label string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", label)
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("%s must be a number", label)
		}
		return nil
	}
}

// PromptRouteRequest interactively collects a route request, used by
// the CLI's "route" command when --start/--finish were left off.
func PromptRouteRequest() (Request, error) {
	var req Request
	req.Format = "gpx"

	basics := huh.NewGroup(
		huh.NewInput().Title("Start latitude").Value(&req.StartLat).Validate(validFloat("start latitude")),
		huh.NewInput().Title("Start longitude").Value(&req.StartLon).Validate(validFloat("start longitude")),
		huh.NewConfirm().Title("Round trip?").Value(&req.RoundTrip),
	)

	destination := huh.NewGroup(
		huh.NewInput().Title("Finish latitude").Value(&req.FinishLat).Validate(validFloat("finish latitude")),
		huh.NewInput().Title("Finish longitude").Value(&req.FinishLon).Validate(validFloat("finish longitude")),
	).WithHideFunc(func() bool { return req.RoundTrip })

	roundTrip := huh.NewGroup(
		huh.NewInput().Title("Bearing (degrees)").Value(&req.RoundTripBearingDeg).Validate(validFloat("bearing")),
		huh.NewInput().Title("Distance (meters)").Value(&req.RoundTripDistanceM).Validate(validFloat("distance")),
	).WithHideFunc(func() bool { return !req.RoundTrip })

	output := huh.NewGroup(
		huh.NewInput().Title("Rules file (optional)").Value(&req.RulesPath),
		huh.NewInput().Title("Output file").Value(&req.OutPath).Validate(nonEmpty("output file")),
		huh.NewSelect[string]().Title("Output format").Value(&req.Format).Options(
			huh.NewOption("GPX", "gpx"),
			huh.NewOption("CSV", "csv"),
			huh.NewOption("JSON", "json"),
		),
	)

	form := huh.NewForm(basics, destination, roundTrip, output).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		return Request{}, fmt.Errorf("tui: prompt: %w", err)
	}
	return req, nil
}
