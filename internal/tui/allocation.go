package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dgdash/internal/report"
)

type allocationModel struct {
	svc    *report.Service
	width  int
	height int

	window report.Window
	rep    report.AllocationReport
	loaded bool
	err    error
	// seq tags each fetch so a slow response cannot overwrite a newer one.
	seq int

	chart barchart.Model
}

func newAllocationModel(svc *report.Service, weeks int) allocationModel {
	return allocationModel{
		svc:    svc,
		window: defaultWindow(weeks),
		chart:  barchart.New(60, 12),
	}
}

func (a *allocationModel) setSize(w, h int) {
	a.width = w
	a.height = h
	if a.loaded {
		a.buildChart()
	}
}

type allocationDataMsg struct {
	seq int
	rep report.AllocationReport
	err error
}

func (a *allocationModel) refresh() tea.Cmd {
	a.seq++
	seq, svc, w := a.seq, a.svc, a.window
	return func() tea.Msg {
		rep, err := svc.Allocation(context.Background(), w)
		return allocationDataMsg{seq: seq, rep: rep, err: err}
	}
}

func (a allocationModel) update(msg tea.Msg) (allocationModel, tea.Cmd) {
	switch msg := msg.(type) {
	case allocationDataMsg:
		if msg.seq != a.seq {
			return a, nil
		}
		a.loaded = true
		a.err = msg.err
		if msg.err != nil {
			return a, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Allocation error: %v", msg.err), isError: true}
			}
		}
		a.rep = msg.rep
		a.buildChart()
		return a, nil

	case tea.KeyMsg:
		days := max(windowDays(a.window), 7)
		switch {
		case key.Matches(msg, keys.Left):
			a.window = report.Window{Start: a.window.Start.AddDate(0, 0, -days), End: a.window.End.AddDate(0, 0, -days)}
			return a, a.refresh()
		case key.Matches(msg, keys.Right):
			a.window = report.Window{Start: a.window.Start.AddDate(0, 0, days), End: a.window.End.AddDate(0, 0, days)}
			return a, a.refresh()
		case key.Matches(msg, keys.Widen):
			a.window.Start = a.window.Start.AddDate(0, 0, -7)
			return a, a.refresh()
		case key.Matches(msg, keys.Narrow):
			if days <= 7 {
				return a, nil
			}
			a.window.Start = a.window.Start.AddDate(0, 0, 7)
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a *allocationModel) buildChart() {
	chartWidth := max(a.width-8, 20)
	chartHeight := 12
	if a.height > 30 {
		chartHeight = 16
	}

	a.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, row := range a.rep.Allocation.Rows {
		var values []barchart.BarValue
		for i, b := range report.Buckets {
			if row.Hours[i] == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  b.Name,
				Value: row.Hours[i],
				Style: lipgloss.NewStyle().Foreground(bucketColor(i)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: row.Engineer.Name, Values: values})
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a allocationModel) view() string {
	w := a.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Time Allocation"), "  ", mutedStyle.Render(formatWindow(a.window)),
	)
	nav := mutedStyle.Render("  ←/→: shift  +/-: widen/narrow")

	if a.err != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", errorStyle.Render("  "+a.err.Error()), "", nav),
		)
	}
	if !a.loaded || a.rep.Allocation.Empty() {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("  No data for this period"), "", nav),
		)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.chart.View(), "", renderBucketLegend(), "", a.renderSummaryTable(w), "", nav,
		),
	)
}

func renderBucketLegend() string {
	var items []string
	for i, b := range report.Buckets {
		dot := lipgloss.NewStyle().Foreground(bucketColor(i)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, b.Name))
	}
	return "  " + strings.Join(items, "  ")
}

func (a allocationModel) renderSummaryTable(w int) string {
	var rows []string
	cols := []string{fmt.Sprintf("%-10s", "Engineer")}
	for _, name := range report.BucketNames() {
		cols = append(cols, fmt.Sprintf("%9s", name))
	}
	cols = append(cols, fmt.Sprintf("%9s", "Total"))
	rows = append(rows, mutedStyle.Render("  "+strings.Join(cols, " ")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 10*(len(cols))))))

	var unclassified float64
	for _, row := range a.rep.Allocation.Rows {
		cells := []string{fmt.Sprintf("%-10s", row.Engineer.Name)}
		for _, h := range row.Hours {
			cells = append(cells, fmt.Sprintf("%9s", formatHours(h)))
		}
		cells = append(cells, highlightStyle.Render(fmt.Sprintf("%9s", formatHours(row.Total()))))
		rows = append(rows, "  "+strings.Join(cells, " "))
		unclassified += row.Unclassified
	}
	if unclassified > 0 {
		rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  %s in rows matching no category", formatHours(unclassified))))
	}
	return strings.Join(rows, "\n")
}
