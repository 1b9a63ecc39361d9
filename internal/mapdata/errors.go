// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

import (
	"errors"
	"fmt"
)

// ErrUninitialized is returned by queries issued before GeneratePointHashes
// has sealed the graph. Querying an unfrozen graph is a programmer error,
// not a recoverable condition, so callers are expected to treat it as
// fatal rather than retry.
var ErrUninitialized = errors.New("mapdata: graph queried before GeneratePointHashes")

// MissingPointError is returned by InsertWay when a way references a
// point id that was never ingested via InsertNode. It aborts only the
// offending way; ingestion continues with the next element.
type MissingPointError struct {
	PointID int64
}

func (e *MissingPointError) Error() string {
	return fmt.Sprintf("mapdata: way references unknown point %d", e.PointID)
}

// UnknownRestrictionError is returned by InsertRelation when a
// restriction relation's value does not map to a known rule type.
type UnknownRestrictionError struct {
	RelationID  int64
	Restriction string
}

func (e *UnknownRestrictionError) Error() string {
	return fmt.Sprintf("mapdata: relation %d has unknown restriction %q", e.RelationID, e.Restriction)
}

// MissingViaPointError is returned by InsertRelation when the via
// member references a point id absent from the graph.
type MissingViaPointError struct {
	RelationID int64
	PointID    int64
}

func (e *MissingViaPointError) Error() string {
	return fmt.Sprintf("mapdata: relation %d via point %d not found", e.RelationID, e.PointID)
}

// NotYetImplementedError is returned for relation shapes the router
// does not support: a via member of type way, or more than one via
// member.
type NotYetImplementedError struct {
	RelationID int64
	Message    string
}

func (e *NotYetImplementedError) Error() string {
	return fmt.Sprintf("mapdata: relation %d: %s not implemented", e.RelationID, e.Message)
}
