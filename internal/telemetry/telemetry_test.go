// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomsjansons/ridi-router/internal/telemetry"
)

func TestSetupReturnsWorkingShutdown(t *testing.T) {
	shutdown, err := telemetry.Setup(slog.LevelInfo, "stdout")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupNoneExporterStillReturnsShutdown(t *testing.T) {
	shutdown, err := telemetry.Setup(slog.LevelInfo, "none")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestRecordGenerationLabelsSuccessAndError(t *testing.T) {
	before := testutil.CollectAndCount(telemetry.GenerationDuration)
	telemetry.RecordGeneration(10*time.Millisecond, nil)
	telemetry.RecordGeneration(10*time.Millisecond, assert.AnError)
	after := testutil.CollectAndCount(telemetry.GenerationDuration)
	assert.Greater(t, after, before)
}
