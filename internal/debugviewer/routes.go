// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package debugviewer

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers every /debug endpoint on rg.
//
// Endpoints:
//
//	GET  /debug/health - liveness check
//	GET  /debug/graph/stats - point/line counts of the loaded graph
//	POST /debug/runs - start a route generation run, returns a run ID
//	GET  /debug/runs/:id/ws - stream that run's progress over a websocket
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	debug := rg.Group("/debug")
	{
		debug.GET("/health", handlers.HandleHealth)
		debug.GET("/graph/stats", handlers.HandleGraphStats)

		debug.POST("/runs", handlers.HandleStartRun)
		debug.GET("/runs/:id/ws", handlers.HandleRunWebsocket)
	}
}
