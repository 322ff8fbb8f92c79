package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/flow"
)

func (m Model) View() string {
	var body string
	switch m.flow.State() {
	case flow.StateUpload:
		body = m.viewUpload()
	case flow.StateTimeline:
		body = m.viewTimeline()
	case flow.StateDetail:
		body = m.viewDetail()
	}
	var b strings.Builder
	b.WriteString(body)
	if m.err != nil {
		b.WriteString("\n" + m.styles.Error.Render("Error: "+m.err.Error()))
	}
	if m.status != "" {
		b.WriteString("\n" + m.styles.Status.Render(m.status))
	}
	return b.String()
}

func (m Model) label(field int, text string) string {
	if m.focus == field {
		return m.styles.Focused.Render("> " + text)
	}
	return m.styles.Label.Render("  " + text)
}

func (m Model) viewUpload() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("CourseKeeper: upload your syllabus"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n  %s\n", m.label(fieldEmail, "Email"), m.inputs[fieldEmail].View())
	fmt.Fprintf(&b, "%s\n  %s\n", m.label(fieldSyllabus, "Syllabus file"), m.inputs[fieldSyllabus].View())
	fmt.Fprintf(&b, "%s\n  < %s >\n", m.label(fieldSubject, "Subject"), flow.Subjects[m.subjectIdx])
	fmt.Fprintf(&b, "%s\n  < %d >\n", m.label(fieldBaseline, "Year you took the course"), m.baselines[m.baselineIdx])
	if m.processing {
		b.WriteString("\n" + m.spinner.View() + " Processing syllabus...\n")
	}
	b.WriteString(m.styles.Help.Render("tab next field • ←/→ change • enter submit • ctrl+c quit"))
	return b.String()
}

func (m Model) viewTimeline() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s since %d", m.flow.Subject(), m.flow.BaselineYear())))
	b.WriteString("\n")
	if m.loading {
		b.WriteString("Loading timeline...\n")
	} else if len(m.entries) == 0 && m.err == nil {
		b.WriteString("Nothing changed after your baseline.\n")
	}
	for i, e := range m.entries {
		marker := "  "
		if i == m.cursor {
			marker = m.styles.Cursor.Render("› ")
		}
		line := fmt.Sprintf("%d  %s", e.Year, e.Headline)
		impact := m.styles.impact(e.Impact).Render(string(e.Impact))
		fmt.Fprintf(&b, "%s%s  %s  +%dy", marker, line, impact, e.YearsAfterBaseline)
		if e.MustLearn {
			b.WriteString(" " + m.styles.MustLearn.Render("Must Learn!"))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("↑/↓ move • enter open • b back • q quit"))
	return b.String()
}

func (m Model) viewDetail() string {
	year, _ := m.flow.Year()
	var b strings.Builder
	title := fmt.Sprintf("%d Patch Notes", year)
	if m.lookup != nil && m.lookup.Outcome == catalog.OutcomeSynthesized {
		title += " (general overview)"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			tabs[i] = m.styles.ActiveTab.Render(name)
		} else {
			tabs[i] = m.styles.Tab.Render(name)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if m.loading && m.lookup == nil {
		b.WriteString("Loading...\n")
	} else {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("tab switch section • ↑/↓ scroll • e email report • b back • q quit"))
	return b.String()
}
