// Copyright (C) 2025 ridi-router contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tui is the interactive half of the route CLI: a bubbletea
// list for choosing among a generated batch of candidate routes, and
// a huh form for collecting a request when flags were left off.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tomsjansons/ridi-router/internal/generator"
)

// ErrNoSelection is returned by PickRoute when the user quit or
// cancelled the picker without choosing a candidate.
var ErrNoSelection = errors.New("tui: no route selected")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Faint(true).Padding(1, 1)
)

// routeItem adapts one generator.RouteWithStats to list.DefaultItem.
type routeItem struct {
	index int
	route generator.RouteWithStats
}

func (i routeItem) Title() string {
	cluster := "unclustered"
	if i.route.Stats.Cluster != nil {
		cluster = fmt.Sprintf("cluster %d", *i.route.Stats.Cluster)
	}
	return fmt.Sprintf("#%d  %.1f km  (%s)", i.index+1, i.route.Stats.LenM/1000, cluster)
}

func (i routeItem) Description() string {
	return fmt.Sprintf("%d junctions, score %.2f, %.1f°/km direction change",
		i.route.Stats.JunctionCount, i.route.Stats.Score, i.route.Stats.DirectionChangeRatio)
}

func (i routeItem) FilterValue() string { return i.Title() }

type pickerModel struct {
	list     list.Model
	chosen   int
	quitting bool
	canceled bool
}

func newPickerModel(routes []generator.RouteWithStats) pickerModel {
	items := make([]list.Item, len(routes))
	for i, r := range routes {
		items[i] = routeItem{index: i, route: r}
	}
	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = "Candidate routes"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	return pickerModel{list: l, chosen: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(routeItem); ok {
				m.chosen = item.index
			}
			m.quitting = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View() + helpStyle.Render("enter: choose   esc: cancel   /: filter")
}

// PickRoute runs an interactive picker over routes and returns the
// index of the one the user chose. Returns ErrNoSelection if the user
// quit without choosing.
func PickRoute(routes []generator.RouteWithStats) (int, error) {
	if len(routes) == 0 {
		return 0, errors.New("tui: no routes to choose from")
	}
	if len(routes) == 1 {
		return 0, nil
	}
	m := newPickerModel(routes)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return 0, fmt.Errorf("tui: run picker: %w", err)
	}
	result := final.(pickerModel)
	if result.canceled || result.chosen < 0 {
		return 0, ErrNoSelection
	}
	return result.chosen, nil
}
