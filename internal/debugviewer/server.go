// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package debugviewer serves a small HTTP+websocket surface for
// watching a route generation run live: kick off a request, then
// stream per-itinerary navigator outcomes to a browser as they land
// instead of waiting for the whole batch to finish silently.
package debugviewer

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	otelgin "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tomsjansons/ridi-router/internal/mapdata"
)

// ErrorResponse is the JSON body returned for any non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// GraphProvider supplies the graph a run request is generated against.
// debugviewer never builds or owns a graph itself.
type GraphProvider interface {
	Graph() *mapdata.Graph
}

// Server hosts the debug HTTP API and the websocket run-progress feed.
type Server struct {
	engine   *gin.Engine
	handlers *Handlers
}

// NewServer builds a Server ready to ListenAndServe once mounted.
func NewServer(graph GraphProvider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware("ridi-router-debugviewer"))

	handlers := NewHandlers(graph, logger)

	s := &Server{engine: engine, handlers: handlers}
	RegisterRoutes(&engine.RouterGroup, handlers)
	return s
}

// Engine exposes the underlying gin.Engine, e.g. for httptest or for
// embedding behind a larger router.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Hub exposes the run-progress hub so a caller driving generation
// outside of the HTTP API can still publish Generator.Event values.
func (s *Server) Hub() *Hub { return s.handlers.hub }
