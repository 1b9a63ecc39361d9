// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package mapdata

// RuleType is the kind of turn restriction a Rule enforces.
type RuleType uint8

const (
	NotAllowed RuleType = iota
	OnlyAllowed
)

// Rule is a turn restriction attached to the point it constrains (the
// "via" node of the originating OSM relation). It only applies to a
// walker that entered the via point through one of FromLines.
type Rule struct {
	FromLines []LineRef
	ToLines   []LineRef
	Type      RuleType
}

// containsLine reports whether ref appears in lines.
func containsLine(lines []LineRef, ref LineRef) bool {
	for _, l := range lines {
		if l == ref {
			return true
		}
	}
	return false
}

// Allows decides whether continuing onto `to` is legal, given the rule
// was entered via `from`. A rule that was not entered via one of its
// FromLines does not apply and always allows.
func (r Rule) Allows(from, to LineRef) bool {
	if !containsLine(r.FromLines, from) {
		return true
	}
	switch r.Type {
	case NotAllowed:
		return !containsLine(r.ToLines, to)
	case OnlyAllowed:
		return containsLine(r.ToLines, to)
	default:
		return true
	}
}

// RulesFor returns the subset of a point's rules that were entered via
// `from`, i.e. the rules actually in force for a walker arriving on
// that line.
func RulesFor(rules []Rule, from LineRef) []Rule {
	var out []Rule
	for _, r := range rules {
		if containsLine(r.FromLines, from) {
			out = append(out, r)
		}
	}
	return out
}
