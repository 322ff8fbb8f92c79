// Package tui is the terminal client: syllabus upload, the year timeline and the per-year
// patch notes, driven by flow.Flow.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/flow"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

// DefaultProcessingDelay is how long the upload screen shows its progress indicator.
const DefaultProcessingDelay = 2 * time.Second

const (
	fieldEmail = iota
	fieldSyllabus
	fieldSubject
	fieldBaseline
	fieldCount
)

type tab int

const (
	tabSummary tab = iota
	tabPapers
	tabVideos
	tabLearningPath
)

var tabNames = []string{"Summary", "Papers", "Videos", "Learning Path"}

type (
	processedMsg struct{}

	timelineLoadedMsg struct {
		baseline  int
		subjectID uuid.UUID
		entries   []types.TimelineEntry
		err       error
	}

	yearLoadedMsg struct {
		year   int
		lookup *types.YearLookup
		err    error
	}

	emailSentMsg struct {
		to   string
		year int
		err  error
	}
)

type Option func(*Model)

// WithRenderer renders the detail markdown. Without one the markdown is shown as is.
func WithRenderer(r *glamour.TermRenderer) Option {
	return func(m *Model) { m.renderer = r }
}

func WithProcessingDelay(d time.Duration) Option {
	return func(m *Model) { m.delay = d }
}

// WithForm prefills the upload screen.
func WithForm(form flow.UploadForm) Option {
	return func(m *Model) {
		m.inputs[fieldEmail].SetValue(form.Email)
		m.inputs[fieldSyllabus].SetValue(form.SyllabusPath)
		if i := slices.Index(flow.Subjects, form.Subject); i >= 0 {
			m.subjectIdx = i
		}
		if i := slices.Index(m.baselines, form.BaselineYear); i >= 0 {
			m.baselineIdx = i
		}
	}
}

type Model struct {
	ctx      context.Context
	backend  Backend
	flow     *flow.Flow
	styles   Styles
	renderer *glamour.TermRenderer
	delay    time.Duration

	inputs      []textinput.Model
	focus       int
	subjectIdx  int
	baselines   []int
	baselineIdx int
	processing  bool
	pending     flow.UploadForm
	spinner     spinner.Model

	subjectID uuid.UUID
	entries   []types.TimelineEntry
	cursor    int
	loading   bool

	lookup   *types.YearLookup
	tab      tab
	viewport viewport.Model

	status string
	err    error
	width  int
	height int
}

func New(ctx context.Context, backend Backend, opts ...Option) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	syllabus := textinput.New()
	syllabus.Placeholder = "path/to/syllabus.pdf"
	syllabus.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		backend:     backend,
		flow:        flow.New(),
		styles:      DefaultStyles(),
		delay:       DefaultProcessingDelay,
		inputs:      []textinput.Model{email, syllabus},
		baselines:   flow.BaselineYears(),
		spinner:     sp,
		viewport:    viewport.New(80, 20),
		width:       80,
		height:      24,
		subjectIdx:  slices.Index(flow.Subjects, flow.DefaultSubject),
		baselineIdx: slices.Index(flow.BaselineYears(), catalog.DefaultBaselineYear),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, backend Backend, opts ...Option) error {
	p := tea.NewProgram(New(ctx, backend, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) State() flow.State { return m.flow.State() }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 3)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.flow.State() {
		case flow.StateUpload:
			return m.updateUpload(msg)
		case flow.StateTimeline:
			return m.updateTimeline(msg)
		case flow.StateDetail:
			return m.updateDetail(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case processedMsg:
		return m.finishUpload()

	case timelineLoadedMsg:
		if m.flow.State() != flow.StateTimeline || msg.baseline != m.flow.BaselineYear() {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.subjectID = msg.subjectID
		m.entries = msg.entries
		m.cursor = 0
		return m, nil

	case yearLoadedMsg:
		year, ok := m.flow.Year()
		if !ok || year != msg.year {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.lookup = msg.lookup
		m.refreshDetail()
		return m, nil

	case emailSentMsg:
		if msg.err != nil {
			m.status = ""
			if errors.Is(msg.err, services.ErrEmailDisabled) {
				m.err = errors.New("email delivery is not configured")
			} else {
				m.err = fmt.Errorf("email failed: %w", msg.err)
			}
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("%d report sent to %s", msg.year, msg.to)
		return m, nil
	}
	return m, nil
}

func (m Model) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.processing {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		return m.setFocus((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case "left", "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		switch m.focus {
		case fieldSubject:
			m.subjectIdx = (m.subjectIdx + step + len(flow.Subjects)) % len(flow.Subjects)
			return m, nil
		case fieldBaseline:
			m.baselineIdx = min(max(m.baselineIdx+step, 0), len(m.baselines)-1)
			return m, nil
		}
	case "enter":
		return m.startUpload()
	}
	if m.focus < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) setFocus(field int) (tea.Model, tea.Cmd) {
	m.focus = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m, cmd
}

func (m Model) form() flow.UploadForm {
	return flow.UploadForm{
		Email:        m.inputs[fieldEmail].Value(),
		SyllabusPath: m.inputs[fieldSyllabus].Value(),
		Subject:      flow.Subjects[m.subjectIdx],
		BaselineYear: m.baselines[m.baselineIdx],
	}
}

func (m Model) startUpload() (tea.Model, tea.Cmd) {
	form := m.form()
	if err := form.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.pending = form
	m.processing = true
	return m, tea.Batch(m.spinner.Tick, tea.Tick(m.delay, func(time.Time) tea.Msg { return processedMsg{} }))
}

func (m Model) finishUpload() (tea.Model, tea.Cmd) {
	if !m.processing {
		return m, nil
	}
	m.processing = false
	if err := m.flow.Submit(m.pending); err != nil {
		m.err = err
		return m, nil
	}
	m.entries = nil
	m.loading = true
	return m, m.loadTimeline(m.flow.Subject(), m.flow.BaselineYear())
}

func (m Model) loadTimeline(subject string, baseline int) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		s, err := backend.ResolveSubject(ctx, subject)
		if err != nil {
			return timelineLoadedMsg{baseline: baseline, err: err}
		}
		entries, err := backend.Timeline(ctx, s.ID, baseline)
		return timelineLoadedMsg{baseline: baseline, subjectID: s.ID, entries: entries, err: err}
	}
}

func (m Model) updateTimeline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "b", "esc":
		if err := m.flow.Back(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.entries = nil
		m.subjectIdx = slices.Index(flow.Subjects, m.flow.Subject())
		m.baselineIdx = slices.Index(m.baselines, m.flow.BaselineYear())
		return m.setFocus(fieldEmail)
	case "enter":
		if len(m.entries) == 0 {
			return m, nil
		}
		year := m.entries[m.cursor].Year
		if err := m.flow.SelectYear(year); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.lookup = nil
		m.tab = tabSummary
		m.loading = true
		return m, m.loadYear(year)
	}
	return m, nil
}

func (m Model) loadYear(year int) tea.Cmd {
	ctx, backend, subjectID := m.ctx, m.backend, m.subjectID
	return func() tea.Msg {
		res, err := backend.Lookup(ctx, subjectID, year)
		return yearLoadedMsg{year: year, lookup: res, err: err}
	}
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "b", "esc":
		if err := m.flow.Back(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.lookup = nil
		return m, nil
	case "tab", "right", "l":
		m.tab = (m.tab + 1) % tab(len(tabNames))
		m.refreshDetail()
		return m, nil
	case "shift+tab", "left", "h":
		m.tab = (m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
		m.refreshDetail()
		return m, nil
	case "e":
		year, _ := m.flow.Year()
		if m.lookup == nil || m.lookup.Data == nil {
			return m, nil
		}
		m.err = nil
		m.status = "Sending report..."
		ctx, backend, to, subjectID, baseline := m.ctx, m.backend, m.flow.Email(), m.subjectID, m.flow.BaselineYear()
		return m, func() tea.Msg {
			err := backend.EmailYear(ctx, to, subjectID, baseline, year)
			return emailSentMsg{to: to, year: year, err: err}
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refreshDetail() {
	if m.lookup == nil || m.lookup.Data == nil {
		m.viewport.SetContent("No patch notes for this year.")
		return
	}
	sections := services.RenderYearSections(*m.lookup.Data, m.flow.BaselineYear())
	var md string
	switch m.tab {
	case tabSummary:
		md = sections.Summary
	case tabPapers:
		md = sections.Papers
	case tabVideos:
		md = sections.Videos
	case tabLearningPath:
		md = sections.LearningPath
	}
	out := md
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			out = rendered
		}
	}
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}
