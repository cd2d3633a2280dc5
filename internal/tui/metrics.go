package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

type metricsStage int

const (
	stageIdle metricsStage = iota
	stageType
	stageTasks
)

var groupingChoices = []report.Grouping{report.GroupAuto, report.GroupDaily, report.GroupWeekly, report.GroupMonthly}

type metricsModel struct {
	svc    *report.Service
	width  int
	height int

	formActive bool
	form       *huh.Form
	stage      metricsStage

	// Form field pointers (survive value copies)
	formType     *string
	formNumbers  *[]string
	formGrouping *string
	options      []string

	query  report.Query
	rep    report.MetricsReport
	loaded bool
	err    error

	// totals and visible follow axis rescales; rep.Table does not.
	totals  report.Summary
	visible report.Window

	// seq tags each fetch so a slow response cannot overwrite a newer one.
	seq int

	chart barchart.Model
}

func newMetricsModel(svc *report.Service) metricsModel {
	typ := timesheet.TaskTypes[0].Column()
	var numbers []string
	grouping := report.GroupAuto.String()
	return metricsModel{
		svc:          svc,
		formType:     &typ,
		formNumbers:  &numbers,
		formGrouping: &grouping,
		chart:        barchart.New(60, 12),
	}
}

func (m *metricsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	if m.loaded {
		m.buildChart()
	}
}

type taskNumbersMsg struct {
	field   timesheet.Field
	numbers []string
	err     error
}

type metricsDataMsg struct {
	seq int
	rep report.MetricsReport
	err error
}

type totalsMsg struct {
	seq int
	res report.RescaleResult
	rep report.MetricsReport
	err error
}

func (m *metricsModel) refresh() tea.Cmd {
	if !m.loaded {
		return nil
	}
	return m.fetch()
}

func (m *metricsModel) fetch() tea.Cmd {
	m.seq++
	seq, svc, q := m.seq, m.svc, m.query
	return func() tea.Msg {
		ctx := context.Background()
		if q.Window.Empty() {
			span, err := svc.TaskSpan(ctx, q.Field, q.Numbers)
			if err != nil {
				return metricsDataMsg{seq: seq, err: err}
			}
			q.Window = span.Window()
		}
		rep, err := svc.TaskMetrics(ctx, q)
		return metricsDataMsg{seq: seq, rep: rep, err: err}
	}
}

func (m *metricsModel) rescale(ev report.AxisEvent) tea.Cmd {
	m.seq++
	seq, svc, q := m.seq, m.svc, m.query
	return func() tea.Msg {
		res, rep, err := svc.RescaleTotals(context.Background(), q, ev)
		return totalsMsg{seq: seq, res: res, rep: rep, err: err}
	}
}

func (m metricsModel) loadTaskNumbers(field timesheet.Field) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		numbers, err := svc.TaskNumbers(context.Background(), field)
		return taskNumbersMsg{field: field, numbers: numbers, err: err}
	}
}

func (m metricsModel) update(msg tea.Msg) (metricsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case taskNumbersMsg:
		if msg.err != nil {
			return m, errorStatus("Task list error", msg.err)
		}
		if len(msg.numbers) == 0 {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("No %s tasks recorded", msg.field.Column()), isError: true}
			}
		}
		return m.showTasksForm(msg.numbers)

	case metricsDataMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loaded = true
		m.err = msg.err
		if msg.err != nil {
			return m, errorStatus("Metrics error", msg.err)
		}
		m.query = msg.rep.Query
		m.rep = msg.rep
		m.totals = msg.rep.Totals
		m.visible = msg.rep.Query.Window
		m.buildChart()
		return m, nil

	case totalsMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		switch msg.res.Outcome {
		case report.RescaleRecompute:
			m.totals = msg.rep.Totals
			m.visible = msg.res.Window
		case report.RescaleError:
			return m, errorStatus("Rescale error", msg.res.Err)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.New), key.Matches(msg, keys.Enter):
			return m.showTypeForm()
		case key.Matches(msg, keys.Zoom):
			if !m.loaded {
				return m, nil
			}
			ev, ok := zoomEvent(m.visible)
			if !ok {
				return m, func() tea.Msg { return statusMsg{text: "Cannot zoom further"} }
			}
			return m, m.rescale(ev)
		case key.Matches(msg, keys.Reset):
			if !m.loaded {
				return m, nil
			}
			return m, m.rescale(report.AxisEvent{AutoRange: true})
		}
	}
	return m, nil
}

// zoomEvent builds the axis event for the middle half of w.
func zoomEvent(w report.Window) (report.AxisEvent, bool) {
	quarter := windowDays(w) / 4
	if quarter < 1 {
		return report.AxisEvent{}, false
	}
	start := w.Start.AddDate(0, 0, quarter)
	end := w.End.AddDate(0, 0, -quarter)
	r := [2]string{start.Format(timesheet.DateLayout) + " 00:00", end.Format(timesheet.DateLayout) + " 00:00"}
	return report.AxisEvent{Range: &r}, true
}

func errorStatus(prefix string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
	}
}

func (m metricsModel) showTypeForm() (metricsModel, tea.Cmd) {
	options := make([]huh.Option[string], len(timesheet.TaskTypes))
	for i, f := range timesheet.TaskTypes {
		options[i] = huh.NewOption(f.Column(), f.Column())
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Task Type").Options(options...).Value(m.formType),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.stage = stageType
	m.formActive = true
	return m, m.form.Init()
}

func (m metricsModel) showTasksForm(numbers []string) (metricsModel, tea.Cmd) {
	m.options = numbers
	*m.formNumbers = nil

	groupings := make([]huh.Option[string], len(groupingChoices))
	for i, g := range groupingChoices {
		groupings[i] = huh.NewOption(g.String(), g.String())
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(*m.formType + " Numbers").
				Options(huh.NewOptions(numbers...)...).
				Value(m.formNumbers).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errors.New("select at least one task")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Grouping").Options(groupings...).Value(m.formGrouping),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.stage = stageTasks
	m.formActive = true
	return m, m.form.Init()
}

func (m metricsModel) updateForm(msg tea.Msg) (metricsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			m.stage = stageIdle
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		switch m.stage {
		case stageType:
			m.stage = stageIdle
			field, err := timesheet.ParseField(*m.formType)
			if err != nil {
				return m, errorStatus("Task type", err)
			}
			return m, m.loadTaskNumbers(field)
		case stageTasks:
			m.stage = stageIdle
			return m, m.submitQuery()
		}
	}

	return m, cmd
}

func (m *metricsModel) submitQuery() tea.Cmd {
	field, err := timesheet.ParseField(*m.formType)
	if err != nil {
		return errorStatus("Task type", err)
	}
	grouping, err := report.ParseGrouping(*m.formGrouping)
	if err != nil {
		return errorStatus("Grouping", err)
	}
	m.query = report.Query{
		Field:    field,
		Numbers:  append([]string(nil), *m.formNumbers...),
		Grouping: grouping,
	}
	return m.fetch()
}

func (m *metricsModel) buildChart() {
	chartWidth := max(m.width-8, 20)
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	rows := m.rep.Table.Rows
	if limit := maxBars(chartWidth); len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	var bars []barchart.BarData
	for _, row := range rows {
		var values []barchart.BarValue
		for i, name := range m.rep.Table.Columns {
			if row.Hours[i] == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  name,
				Value: row.Hours[i],
				Style: lipgloss.NewStyle().Foreground(engineerColor(i)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{
			Label:  periodLabel(row.Period, m.rep.Grouping),
			Values: values,
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

// maxBars keeps each bar and its gap at least a label wide.
func maxBars(width int) int {
	return max(width/6, 1)
}

func (m metricsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Task Metrics"), "", m.form.View()),
		)
	}

	title := titleStyle.Render("Task Metrics")
	nav := mutedStyle.Render("  n: new query  z: zoom  0: autorange")

	if !m.loaded {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("  Press n to pick a task type and tasks"), "", nav),
		)
	}
	if m.err != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", errorStyle.Render("  "+m.err.Error()), "", nav),
		)
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		title, "  ",
		highlightStyle.Render(fmt.Sprintf("%s %s", m.query.Field.Column(), strings.Join(m.query.Numbers, ", "))), "  ",
		mutedStyle.Render(fmt.Sprintf("%s, by %s", formatWindow(m.query.Window), strings.ToLower(m.rep.AxisLabel))),
	)

	body := mutedStyle.Render("  No data for this period")
	if m.rep.Table.Len() > 0 {
		parts := []string{m.chart.View(), "", m.renderLegend()}
		if limit := maxBars(max(m.width-8, 20)); m.rep.Table.Len() > limit {
			parts = append(parts, mutedStyle.Render(fmt.Sprintf("  showing last %d of %d %s", limit, m.rep.Table.Len(), strings.ToLower(m.rep.AxisLabel))))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.renderTotals(), "", nav),
	)
}

func (m metricsModel) renderLegend() string {
	var items []string
	for i, name := range m.rep.Table.Columns {
		dot := lipgloss.NewStyle().Foreground(engineerColor(i)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, name))
	}
	return "  " + strings.Join(items, "  ")
}

func departmentLine(s report.Summary) string {
	return fmt.Sprintf("Department Total: %g Hours", s.Department)
}

func (m metricsModel) renderTotals() string {
	rows := []string{
		"  " + totalStyle.Render(departmentLine(m.totals)),
		mutedStyle.Render("  " + formatWindow(m.visible)),
	}
	for _, e := range m.totals.Engineers {
		rows = append(rows, fmt.Sprintf("  %-10s %s", e.Name, formatHours(e.Hours)))
	}
	return strings.Join(rows, "\n")
}

// current returns the report with the rescaled totals applied.
func (m metricsModel) current() (report.MetricsReport, bool) {
	if !m.loaded || m.err != nil {
		return report.MetricsReport{}, false
	}
	rep := m.rep
	rep.Totals = m.totals
	return rep, true
}
