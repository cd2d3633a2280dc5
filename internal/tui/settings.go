package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dgdash/internal/config"
)

type settingsModel struct {
	width  int
	height int

	settings []config.Setting
}

func newSettingsModel(cfg *config.Config) settingsModel {
	var settings []config.Setting
	if cfg != nil {
		settings = cfg.Settings()
	}
	return settingsModel{settings: settings}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) view() string {
	w := s.width - 4

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")

	if len(s.settings) == 0 {
		rows = append(rows, mutedStyle.Render("  No configuration loaded"))
	}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "", mutedStyle.Render("Set values in .env or the environment and restart"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
