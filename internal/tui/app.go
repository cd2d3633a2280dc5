package tui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dgdash/internal/config"
	"github.com/sadopc/dgdash/internal/export"
	"github.com/sadopc/dgdash/internal/report"
	"github.com/sadopc/dgdash/internal/timesheet"
)

var exportFormats = []string{"CSV", "JSON", "XLSX"}

// App is the root Bubble Tea model.
type App struct {
	svc    *report.Service
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	// exportDir defaults to the home directory.
	exportDir string

	team       teamModel
	allocation allocationModel
	metrics    metricsModel
	settings   settingsModel

	help    help.Model
	status  string
	errored bool
}

func NewApp(svc *report.Service, cfg *config.Config) App {
	h := help.New()
	h.ShowAll = false

	weeks := 2
	if cfg != nil && cfg.AllocationWeeks > 0 {
		weeks = cfg.AllocationWeeks
	}

	return App{
		svc:        svc,
		activeView: viewTeam,
		team:       newTeamModel(svc, weeks),
		allocation: newAllocationModel(svc, weeks),
		metrics:    newMetricsModel(svc),
		settings:   newSettingsModel(cfg),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return a.team.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.team.setSize(a.width, contentHeight)
		a.allocation.setSize(a.width, contentHeight)
		a.metrics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewTeam)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewAllocation)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewMetrics)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case statusMsg:
		a.status = msg.text
		a.errored = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.errored = false
		a.exportPicking = false
		return a, nil

	// Data messages go to their owner whichever view is active.
	case teamDataMsg:
		a.team, _ = a.team.update(msg)
		return a, nil
	case allocationDataMsg:
		var cmd tea.Cmd
		a.allocation, cmd = a.allocation.update(msg)
		return a, cmd
	case taskNumbersMsg, metricsDataMsg, totalsMsg:
		var cmd tea.Cmd
		a.metrics, cmd = a.metrics.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	cmd := a.refreshCurrentView()
	return a, cmd
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTeam:
		a.team, cmd = a.team.update(msg)
	case viewAllocation:
		a.allocation, cmd = a.allocation.update(msg)
	case viewMetrics:
		a.metrics, cmd = a.metrics.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	if a.activeView == viewMetrics {
		return a.metrics.formActive
	}
	return false
}

// refreshCurrentView fetches fresh data for the active view. It takes a
// pointer so fetch sequence numbers stick to the returned App.
func (a *App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTeam:
		return a.team.refresh()
	case viewAllocation:
		return a.allocation.refresh()
	case viewMetrics:
		return a.metrics.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTeam:
		content = a.team.view()
	case viewAllocation:
		content = a.allocation.view()
	case viewMetrics:
		content = a.metrics.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("dgdash")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.errored {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(status)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"), "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the report behind the active view. Team and Allocation
// export the allocation report; Task Metrics exports the task report with
// its current totals.
func (a App) doExport(format int) tea.Cmd {
	var (
		kind  string
		write func(path string) error
	)
	switch a.activeView {
	case viewTeam, viewAllocation:
		rep := a.allocation.rep
		if a.activeView == viewTeam {
			rep = a.team.rep
		}
		kind = "allocation"
		write = func(path string) error {
			switch format {
			case 0:
				return export.AllocationCSV(rep, path)
			case 1:
				return export.AllocationJSON(rep, path)
			default:
				return export.AllocationXLSX(rep, path)
			}
		}
	case viewMetrics:
		rep, ok := a.metrics.current()
		if !ok {
			return func() tea.Msg { return statusMsg{text: "Run a task query before exporting", isError: true} }
		}
		kind = "tasks"
		write = func(path string) error {
			switch format {
			case 0:
				return export.MetricsCSV(rep, path)
			case 1:
				return export.ToJSON(rep, path)
			default:
				return export.ToXLSX(rep, path)
			}
		}
	default:
		return func() tea.Msg { return statusMsg{text: "Nothing to export here", isError: true} }
	}

	dir := a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		name := fmt.Sprintf("dgdash-%s-%s.%s", kind, today().Format(timesheet.DateLayout), extension(format))
		path := filepath.Join(dir, name)
		if err := write(path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s error: %v", exportFormats[format], err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func extension(format int) string {
	switch format {
	case 0:
		return "csv"
	case 1:
		return "json"
	}
	return "xlsx"
}
