package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

type teamModel struct {
	svc    *report.Service
	weeks  int
	width  int
	height int

	rep    report.AllocationReport
	loaded bool
	err    error
}

func newTeamModel(svc *report.Service, weeks int) teamModel {
	return teamModel{svc: svc, weeks: weeks}
}

func (t teamModel) Init() tea.Cmd {
	return t.refresh()
}

func (t *teamModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type teamDataMsg struct {
	rep report.AllocationReport
	err error
}

func (t teamModel) refresh() tea.Cmd {
	svc, w := t.svc, defaultWindow(t.weeks)
	return func() tea.Msg {
		rep, err := svc.Allocation(context.Background(), w)
		return teamDataMsg{rep: rep, err: err}
	}
}

func (t teamModel) update(msg tea.Msg) (teamModel, tea.Cmd) {
	if msg, ok := msg.(teamDataMsg); ok {
		t.loaded = true
		t.err = msg.err
		t.rep = msg.rep
	}
	return t, nil
}

func (t teamModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}
	w := t.width - 4

	title := titleStyle.Render("Design Group")
	window := mutedStyle.Render(formatWindow(t.rep.Window))
	if !t.loaded {
		window = mutedStyle.Render("loading...")
	}

	var rows []string
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", window), "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-10s %10s %14s", "ID", "Name", "Hours", "Unclassified")))

	var total float64
	for i, eng := range timesheet.Roster() {
		var hours, unclassified float64
		if i < len(t.rep.Allocation.Rows) {
			row := t.rep.Allocation.Rows[i]
			hours, unclassified = row.Total(), row.Unclassified
		}
		total += hours
		dot := lipgloss.NewStyle().Foreground(engineerColor(i)).Render("●")
		rows = append(rows, fmt.Sprintf("%s %-12s %-10s %10s %14s",
			dot, eng.ID, eng.Name, formatHours(hours), formatHours(unclassified)))
	}
	rows = append(rows, "", "  "+totalStyle.Render("Department: "+formatHours(total)))

	if t.err != nil {
		rows = append(rows, "", errorStyle.Render("  "+t.err.Error()))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
