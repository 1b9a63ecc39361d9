// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rules loads and validates the router's tunable rule set: tag
// priorities/avoidance for highway, surface and smoothness values, the
// basic weight-function knobs, and the waypoint-generation parameters.
package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
)

var validate = validator.New()

// TagAction is one tag value's rule: either Avoid it outright, or use
// it with the given Priority weight.
type TagAction struct {
	Action   string `json:"action" validate:"required,oneof=avoid priority"`
	Priority uint8  `json:"value,omitempty"`
}

const (
	ActionAvoid    = "avoid"
	ActionPriority = "priority"
)

// NoSharpTurns mirrors the reference implementation's
// BasicRuleNoSharpTurns: turns sharper than (180 - UnderDeg) degrees
// score Priority.
type NoSharpTurns struct {
	Enabled  bool    `json:"enabled"`
	UnderDeg float64 `json:"under_deg"`
	Priority uint8   `json:"priority"`
}

// PreferSameRoad rewards forks that stay on the same ref/name road.
type PreferSameRoad struct {
	Enabled  bool  `json:"enabled"`
	Priority uint8 `json:"priority"`
}

// ProgressDirection penalizes forks that move away from the finish
// relative to recent progress.
type ProgressDirection struct {
	Enabled          bool `json:"enabled"`
	CheckJunctionsBack int `json:"check_junctions_back"`
}

// ProgressSpeed penalizes forks whose step length falls far enough
// below the recent average to suggest backtracking.
type ProgressSpeed struct {
	Enabled                        bool    `json:"enabled"`
	CheckStepsBack                 int     `json:"check_steps_back"`
	LastStepDistanceBelowAvgWithRatio float64 `json:"last_step_distance_below_avg_with_ratio"`
}

// NoShortDetour vetoes forks that double back toward the route within
// MinDetourLenM.
type NoShortDetour struct {
	Enabled       bool    `json:"enabled"`
	MinDetourLenM float64 `json:"min_detour_len_m"`
}

// Basic groups the weight-function knobs the reference implementation
// calls its "basic" rules.
type Basic struct {
	StepLimit          uint32             `json:"step_limit"`
	PreferSameRoad     PreferSameRoad     `json:"prefer_same_road"`
	ProgressDirection  ProgressDirection  `json:"progression_direction"`
	ProgressSpeed      ProgressSpeed      `json:"progression_speed"`
	NoShortDetours     NoShortDetour      `json:"no_short_detours"`
	NoSharpTurns       NoSharpTurns       `json:"no_sharp_turns"`
}

// DefaultBasic matches BasicRules::default() in the reference
// implementation.
var DefaultBasic = Basic{
	StepLimit:         30000,
	PreferSameRoad:    PreferSameRoad{Enabled: true, Priority: 30},
	ProgressDirection: ProgressDirection{Enabled: true, CheckJunctionsBack: 50},
	ProgressSpeed:     ProgressSpeed{Enabled: false, CheckStepsBack: 1000, LastStepDistanceBelowAvgWithRatio: 1.3},
	NoShortDetours:    NoShortDetour{Enabled: true, MinDetourLenM: 5000},
	NoSharpTurns:      NoSharpTurns{Enabled: true, UnderDeg: 150, Priority: 60},
}

// StartFinish controls the bearing/distance sampling grid around
// point-to-point waypoints.
type StartFinish struct {
	VariationDistancesM []float64 `json:"variation_distances_m"`
	VariationBearingDeg []float64 `json:"variation_bearing_deg"`
}

// DefaultStartFinish matches GenerationRulesStartFinish::default().
var DefaultStartFinish = StartFinish{
	VariationDistancesM: []float64{10000, 20000, 30000},
	VariationBearingDeg: []float64{0, 45, 90, 135, 180, 225, 270, 315},
}

// RoundTrip controls the side/tip sampling grid for round-trip
// itineraries.
type RoundTrip struct {
	VariationDistanceRatios []float64 `json:"variation_distance_ratios"`
	VariationBearingDeg     []float64 `json:"variation_bearing_deg"`
}

// DefaultRoundTrip matches GenerationRulesRoundTrip::default().
var DefaultRoundTrip = RoundTrip{
	VariationDistanceRatios: []float64{1.0, 0.8, 0.6, 0.4},
	VariationBearingDeg:     []float64{-25, -10, 10, 25},
}

// Retry controls the fallback widening applied when a generation pass
// yields too few routes.
type Retry struct {
	TriggerMinRouteCount          int       `json:"trigger_min_route_count"`
	RoundTripAdjustmentBearingDeg []float64 `json:"round_trip_adjustment_bearing_deg"`
	AvoidResidential              []bool    `json:"avoid_residential"`
}

// DefaultRetry matches GenerationRulesRetry::default().
var DefaultRetry = Retry{
	TriggerMinRouteCount:          50,
	RoundTripAdjustmentBearingDeg: []float64{-135, -90, -45, 45, 90, 135},
	AvoidResidential:              []bool{true, false},
}

// Waypoints groups the two itinerary-sampling grids.
type Waypoints struct {
	StartFinish StartFinish `json:"start_finish"`
	RoundTrip   RoundTrip   `json:"round_trip"`
}

// Generation groups waypoint sampling and retry behavior.
type Generation struct {
	WaypointGeneration  Waypoints `json:"waypoint_generation"`
	RouteGenerationRetry Retry    `json:"route_generation_retry"`
}

// Router is the full rule document: tag actions per highway/surface/
// smoothness value, the basic weight-function knobs, and the
// generation sampling grids. A parsed document starts from Default(),
// so any field it leaves out keeps its default value.
type Router struct {
	Basic      Basic                `json:"basic"`
	Highway    map[string]TagAction `json:"highway,omitempty"`
	Surface    map[string]TagAction `json:"surface,omitempty"`
	Smoothness map[string]TagAction `json:"smoothness,omitempty"`
	Generation Generation           `json:"generation"`
}

// Default returns the rule set the reference implementation uses when
// no rules file is supplied.
func Default() Router {
	return Router{
		Basic: DefaultBasic,
		Generation: Generation{
			WaypointGeneration: Waypoints{
				StartFinish: DefaultStartFinish,
				RoundTrip:   DefaultRoundTrip,
			},
			RouteGenerationRetry: DefaultRetry,
		},
	}
}

func tagLookup(m map[string]TagAction, value string) (priority uint8, avoid bool) {
	action, ok := m[value]
	if !ok {
		return 0, false
	}
	if action.Action == ActionAvoid {
		return 0, true
	}
	return action.Priority, false
}

// HighwayPriority implements weights.TagPolicy.
func (r Router) HighwayPriority(value string) (uint8, bool) { return tagLookup(r.Highway, value) }

// SurfacePriority implements weights.TagPolicy.
func (r Router) SurfacePriority(value string) (uint8, bool) { return tagLookup(r.Surface, value) }

// SmoothnessPriority implements weights.TagPolicy.
func (r Router) SmoothnessPriority(value string) (uint8, bool) { return tagLookup(r.Smoothness, value) }

// AvoidHighway implements mapdata.AvoidTagPolicy.
func (r Router) AvoidHighway(value string) bool { _, avoid := tagLookup(r.Highway, value); return avoid }

// AvoidSurface implements mapdata.AvoidTagPolicy.
func (r Router) AvoidSurface(value string) bool { _, avoid := tagLookup(r.Surface, value); return avoid }

// AvoidSmoothness implements mapdata.AvoidTagPolicy.
func (r Router) AvoidSmoothness(value string) bool {
	_, avoid := tagLookup(r.Smoothness, value)
	return avoid
}

// Error is a typed rules-loading failure, distinguishing where in the
// read/parse pipeline it happened.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("rules: %s: %v", e.Stage, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ReadFromFile loads and parses a rules document from path.
func ReadFromFile(path string) (Router, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Router{}, &Error{Stage: "read file", Err: err}
	}
	return parse(data)
}

// ReadFromStdin parses a rules document piped into stdin, or returns
// Default if stdin is an interactive terminal (nothing was piped).
func ReadFromStdin() (Router, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return Default(), nil
	}
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return Router{}, &Error{Stage: "read stdin", Err: err}
	}
	if len(data) == 0 {
		return Default(), nil
	}
	return parse(data)
}

// Read loads rules from path if given, else from stdin.
func Read(path string) (Router, error) {
	if path == "" {
		return ReadFromStdin()
	}
	return ReadFromFile(path)
}

func parse(data []byte) (Router, error) {
	rules := Default()
	if err := json.Unmarshal(data, &rules); err != nil {
		return Router{}, &Error{Stage: "parse json", Err: err}
	}
	if err := validateTagActions(rules.Highway); err != nil {
		return Router{}, &Error{Stage: "validate highway rules", Err: err}
	}
	if err := validateTagActions(rules.Surface); err != nil {
		return Router{}, &Error{Stage: "validate surface rules", Err: err}
	}
	if err := validateTagActions(rules.Smoothness); err != nil {
		return Router{}, &Error{Stage: "validate smoothness rules", Err: err}
	}
	return rules, nil
}

func validateTagActions(m map[string]TagAction) error {
	for value, action := range m {
		if err := validate.Struct(action); err != nil {
			return fmt.Errorf("%q: %w", value, err)
		}
	}
	return nil
}
