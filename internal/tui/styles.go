package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
)

var (
	accent = lipgloss.Color("#7C3AED")
	muted  = lipgloss.Color("#6B7280")
	danger = lipgloss.Color("#DC2626")
	ok     = lipgloss.Color("#16A34A")
)

type Styles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Focused   lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Status    lipgloss.Style
	Cursor    lipgloss.Style
	MustLearn lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Impact    map[catalog.Impact]lipgloss.Style
}

func DefaultStyles() Styles {
	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Label:     lipgloss.NewStyle().Foreground(muted),
		Focused:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Help:      lipgloss.NewStyle().Foreground(muted).MarginTop(1),
		Error:     lipgloss.NewStyle().Foreground(danger),
		Status:    lipgloss.NewStyle().Foreground(ok),
		Cursor:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		MustLearn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(danger).Padding(0, 1),
		Tab:       tab,
		ActiveTab: tab.Foreground(accent).Bold(true).Underline(true),
		Impact: map[catalog.Impact]lipgloss.Style{
			catalog.ImpactLow:           lipgloss.NewStyle().Foreground(muted),
			catalog.ImpactMedium:        lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")),
			catalog.ImpactHigh:          lipgloss.NewStyle().Foreground(lipgloss.Color("#EA580C")),
			catalog.ImpactRevolutionary: lipgloss.NewStyle().Foreground(accent).Bold(true),
		},
	}
}

func (s Styles) impact(i catalog.Impact) lipgloss.Style {
	if st, ok := s.Impact[i]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
