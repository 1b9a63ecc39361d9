// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package debugviewer

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The debug viewer is a local developer tool, not a public API;
	// it doesn't need the usual same-origin check.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// runWebsocketRateLimit caps how fast progress updates are forwarded
// to a single websocket connection, independent of how fast the
// generator itself produces them.
const runWebsocketRateLimit = rate.Limit(20)
const runWebsocketBurst = 40

// HandleRunWebsocket handles GET /debug/runs/:id/ws. It replays
// whatever progress already happened for the run, then streams
// further updates until the run finishes or the client disconnects.
func (h *Handlers) HandleRunWebsocket(c *gin.Context) {
	id := c.Param("id")

	ch, backlog, ok := h.hub.Subscribe(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown run id", Code: "RUN_NOT_FOUND"})
		return
	}
	if ch != nil {
		defer h.hub.Unsubscribe(id, ch)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "run_id", id)
		return
	}
	defer conn.Close()

	limiter := rate.NewLimiter(runWebsocketRateLimit, runWebsocketBurst)
	ctx := c.Request.Context()

	for _, u := range backlog {
		if !h.writeUpdate(ctx, conn, limiter, u) {
			return
		}
	}
	if ch == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case u, open := <-ch:
			if !open {
				return
			}
			if !h.writeUpdate(ctx, conn, limiter, u) {
				return
			}
		}
	}
}

func (h *Handlers) writeUpdate(ctx context.Context, conn *websocket.Conn, limiter *rate.Limiter, u RunUpdate) bool {
	if err := limiter.Wait(ctx); err != nil {
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(u); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return false
	}
	return true
}
