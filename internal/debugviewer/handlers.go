// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package debugviewer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/tomsjansons/ridi-router/internal/generator"
	"github.com/tomsjansons/ridi-router/internal/rules"
)

const requestIDHeader = "X-Request-Id"

var tracer = otel.Tracer("ridi-router.debugviewer")

// Handlers holds everything the debug HTTP surface needs to serve a
// request: the graph to route over and the hub to publish progress to.
type Handlers struct {
	graph  GraphProvider
	hub    *Hub
	logger *slog.Logger
}

// NewHandlers builds a Handlers wrapping graph.
func NewHandlers(graph GraphProvider, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{graph: graph, hub: NewHub(), logger: logger}
}

func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader(requestIDHeader); id != "" {
		return id
	}
	id := uuid.NewString()
	c.Header(requestIDHeader, id)
	return id
}

// HandleHealth handles GET /debug/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleGraphStats handles GET /debug/graph/stats.
func (h *Handlers) HandleGraphStats(c *gin.Context) {
	g := h.graph.Graph()
	if g == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no graph loaded", Code: "NO_GRAPH"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"points": g.NumPoints(),
		"lines":  g.NumLines(),
	})
}

// runRequest is the JSON body for POST /debug/runs.
type runRequest struct {
	StartLat            float64  `json:"start_lat" binding:"required"`
	StartLon            float64  `json:"start_lon" binding:"required"`
	FinishLat           *float64 `json:"finish_lat"`
	FinishLon           *float64 `json:"finish_lon"`
	RoundTripBearingDeg *float64 `json:"round_trip_bearing_deg"`
	RoundTripDistanceM  *float64 `json:"round_trip_distance_m"`
	AvoidResidential    bool     `json:"avoid_residential_proximity"`
}

type runResponse struct {
	RunID string `json:"run_id"`
}

// HandleStartRun handles POST /debug/runs. It resolves start/finish
// points against the current graph, launches generation in the
// background, and returns a run ID whose progress can be followed at
// GET /debug/runs/:id/ws.
func (h *Handlers) HandleStartRun(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleStartRun")

	g := h.graph.Graph()
	if g == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no graph loaded", Code: "NO_GRAPH"})
		return
	}

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_BODY"})
		return
	}

	router := rules.Default()
	start, ok, err := g.GetClosestToCoords(req.StartLat, req.StartLon, router, req.AvoidResidential)
	if err != nil || !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no routable point near start coordinates", Code: "START_NOT_FOUND"})
		return
	}

	var roundTrip *generator.RoundTrip
	finish := start
	switch {
	case req.FinishLat != nil && req.FinishLon != nil:
		finish, ok, err = g.GetClosestToCoords(*req.FinishLat, *req.FinishLon, router, req.AvoidResidential)
		if err != nil || !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no routable point near finish coordinates", Code: "FINISH_NOT_FOUND"})
			return
		}
	case req.RoundTripBearingDeg != nil && req.RoundTripDistanceM != nil:
		roundTrip = &generator.RoundTrip{BearingDeg: *req.RoundTripBearingDeg, TotalDistanceM: *req.RoundTripDistanceM}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "either finish_lat/finish_lon or round_trip_bearing_deg/round_trip_distance_m is required",
			Code:  "MISSING_DESTINATION",
		})
		return
	}

	runID := requestID
	gen := generator.New(g, start, finish, roundTrip, router, req.AvoidResidential)
	progress, finishRun := h.hub.Start(runID)
	gen.Progress = progress

	go func() {
		ctx, span := tracer.Start(context.Background(), "debugviewer.generate_routes",
			oteltrace.WithAttributes(
				attribute.String("run_id", runID),
				attribute.Bool("round_trip", roundTrip != nil),
			),
		)
		defer span.End()

		routes, err := gen.GenerateRoutes(ctx)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			logger.Error("run failed", "error", err)
		}
		span.SetAttributes(attribute.Int("route_count", len(routes)))
		finishRun(len(routes), err)
	}()

	c.JSON(http.StatusAccepted, runResponse{RunID: runID})
}
