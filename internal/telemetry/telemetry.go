// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package telemetry wires up the router's ambient observability:
// structured logging via log/slog, an OpenTelemetry tracer provider,
// and the Prometheus metrics the engine's hot paths record against.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracerName is the shared OTel tracer name for every span the engine
// emits, so traces from one run share a single service identity.
const TracerName = "ridi-router"

// Setup configures the default slog logger and installs an OTel tracer
// provider. exporterKind is "stdout" (spans pretty-printed to stdout,
// there being no collector endpoint to ship them to from a CLI) or
// "none" (spans are created and discarded, for a quiet default run).
// Call the returned shutdown func before exit to flush the batcher.
// Callers span with otel.Tracer(TracerName).
func Setup(logLevel slog.Level, exporterKind string) (shutdown func(context.Context) error, err error) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	if exporterKind == "none" {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp.Shutdown, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: stdout trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
