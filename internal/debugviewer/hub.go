// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package debugviewer

import (
	"sync"

	"github.com/tomsjansons/ridi-router/internal/generator"
)

// RunStatus is the terminal state of a tracked run, carried alongside
// the last Event on the run's channel so a websocket client can tell a
// batch finishing from a batch merely progressing.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

// RunUpdate is one message pushed to a run's subscribers.
type RunUpdate struct {
	Status RunStatus        `json:"status"`
	Event  *generator.Event `json:"event,omitempty"`
	Error  string           `json:"error,omitempty"`
	Routes int              `json:"routes,omitempty"`
}

// run tracks one in-flight or finished generation and fans its updates
// out to any number of websocket subscribers.
type run struct {
	mu          sync.Mutex
	subscribers map[chan RunUpdate]struct{}
	history     []RunUpdate
	closed      bool
}

func newRun() *run {
	return &run{subscribers: make(map[chan RunUpdate]struct{})}
}

func (r *run) publish(u RunUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.history = append(r.history, u)
	for ch := range r.subscribers {
		select {
		case ch <- u:
		default:
			// Slow subscriber: drop the update rather than block the
			// generator goroutine driving this run.
		}
	}
	if u.Status == RunStatusDone || u.Status == RunStatusFailed {
		r.closed = true
		for ch := range r.subscribers {
			close(ch)
		}
		r.subscribers = nil
	}
}

func (r *run) subscribe() (chan RunUpdate, []RunUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	backlog := append([]RunUpdate(nil), r.history...)
	if r.closed {
		return nil, backlog
	}
	ch := make(chan RunUpdate, 32)
	r.subscribers[ch] = struct{}{}
	return ch, backlog
}

func (r *run) unsubscribe(ch chan RunUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscribers[ch]; ok {
		delete(r.subscribers, ch)
	}
}

// Hub tracks every run started through the debug API, keyed by run ID,
// so a websocket connecting after generation has already begun can
// still replay the backlog before following it live.
type Hub struct {
	mu   sync.Mutex
	runs map[string]*run
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{runs: make(map[string]*run)}
}

// Start registers a new run ID and returns a progress callback wired
// for generator.Generator.Progress, plus a Finish func to call once
// GenerateRoutes returns.
func (h *Hub) Start(id string) (progress func(generator.Event), finish func(routeCount int, err error)) {
	r := newRun()
	h.mu.Lock()
	h.runs[id] = r
	h.mu.Unlock()

	progress = func(ev generator.Event) {
		r.publish(RunUpdate{Status: RunStatusRunning, Event: &ev})
	}
	finish = func(routeCount int, err error) {
		if err != nil {
			r.publish(RunUpdate{Status: RunStatusFailed, Error: err.Error()})
			return
		}
		r.publish(RunUpdate{Status: RunStatusDone, Routes: routeCount})
	}
	return progress, finish
}

// Subscribe returns a channel of updates for id plus the backlog
// already published, or ok=false if no such run was ever started.
func (h *Hub) Subscribe(id string) (ch chan RunUpdate, backlog []RunUpdate, ok bool) {
	h.mu.Lock()
	r, found := h.runs[id]
	h.mu.Unlock()
	if !found {
		return nil, nil, false
	}
	ch, backlog = r.subscribe()
	return ch, backlog, true
}

// Unsubscribe releases a channel obtained from Subscribe.
func (h *Hub) Unsubscribe(id string, ch chan RunUpdate) {
	h.mu.Lock()
	r, found := h.runs[id]
	h.mu.Unlock()
	if !found || ch == nil {
		return
	}
	r.unsubscribe(ch)
}
