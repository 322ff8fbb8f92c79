package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/flow"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

type emailCall struct {
	to       string
	baseline int
	year     int
}

type fakeBackend struct {
	subjectID uuid.UUID
	emailErr  error
	emails    []emailCall
}

func (f *fakeBackend) ResolveSubject(_ context.Context, title string) (*types.Subject, error) {
	if title != "Computer Vision" {
		return nil, catalog.ErrSubjectNotFound
	}
	return &types.Subject{ID: f.subjectID, Title: title}, nil
}

func (f *fakeBackend) Timeline(_ context.Context, _ uuid.UUID, baseline int) ([]types.TimelineEntry, error) {
	events := []*types.TimelineEvent{
		{Year: 2012, Headline: "Deep learning takes over", Impact: catalog.ImpactRevolutionary},
		{Year: 2013, Headline: "Detection gets deeper", Impact: catalog.ImpactMedium},
		{Year: 2015, Headline: "ResNet", Impact: catalog.ImpactHigh},
	}
	return catalog.BuildTimeline(events, baseline, func(year int) bool { return year != 2013 }), nil
}

func (f *fakeBackend) Lookup(_ context.Context, _ uuid.UUID, year int) (*types.YearLookup, error) {
	if year == 2013 {
		data := catalog.Synthesize("Computer Vision", year)
		return &types.YearLookup{Outcome: catalog.OutcomeSynthesized, Data: &data}, nil
	}
	return &types.YearLookup{Outcome: catalog.OutcomeFound, Data: &types.YearData{
		Year:    year,
		Summary: "The Deep Learning Revolution Begins",
		Changes: []catalog.Change{{Type: catalog.ChangeAdd, Title: "CNNs", Rationale: "AlexNet"}},
		Papers:  []catalog.Paper{{Title: "ImageNet Classification", Authors: "Krizhevsky", URL: "https://example.com/p", Venue: "NIPS"}},
		Videos:  []catalog.Video{{Title: "CNNs explained", URL: "https://example.com/v", Channel: "Lectures"}},
	}}, nil
}

func (f *fakeBackend) EmailYear(_ context.Context, to string, _ uuid.UUID, baseline, year int) error {
	f.emails = append(f.emails, emailCall{to: to, baseline: baseline, year: year})
	return f.emailErr
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// run feeds the command's message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	return m
}

func toTimeline(t *testing.T, backend *fakeBackend) Model {
	t.Helper()
	m := New(context.Background(), backend, WithForm(flow.UploadForm{
		Email:        "a@example.com",
		SyllabusPath: "cv.pdf",
		Subject:      "Computer Vision",
		BaselineYear: 2010,
	}))
	m, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Processing syllabus")
	assert.Equal(t, flow.StateUpload, m.State())

	m, cmd = send(t, m, processedMsg{})
	require.Equal(t, flow.StateTimeline, m.State())
	return run(t, m, cmd)
}

func TestUploadValidation(t *testing.T) {
	m := New(context.Background(), &fakeBackend{})
	m, cmd := send(t, m, key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, flow.StateUpload, m.State())
	assert.Contains(t, m.View(), "email")

	m, _ = send(t, m, key("a@example.com"))
	m, _ = send(t, m, key("tab"))
	m, _ = send(t, m, key("syllabus.pdf"))
	assert.Equal(t, "a@example.com", m.form().Email)
	assert.Equal(t, "syllabus.pdf", m.form().SyllabusPath)

	m, _ = send(t, m, key("tab"))
	m, _ = send(t, m, key("right"))
	assert.Equal(t, "Natural Language Processing", m.form().Subject)
	m, _ = send(t, m, key("tab"))
	m, _ = send(t, m, key("right"))
	assert.Equal(t, 2009, m.form().BaselineYear)

	_, cmd = send(t, m, key("enter"))
	assert.NotNil(t, cmd)
}

func TestTimelineView(t *testing.T) {
	m := toTimeline(t, &fakeBackend{subjectID: uuid.New()})

	view := m.View()
	assert.Contains(t, view, "Computer Vision since 2010")
	assert.Contains(t, view, "Deep learning takes over")
	assert.Contains(t, view, "Must Learn!")
	assert.Equal(t, 1, strings.Count(view, "Must Learn!"))
	assert.Contains(t, view, "+2y")
}

func TestUnknownSubjectShowsError(t *testing.T) {
	m := New(context.Background(), &fakeBackend{}, WithForm(flow.UploadForm{
		Email:        "a@example.com",
		SyllabusPath: "nlp.pdf",
		Subject:      "Robotics",
	}))
	m, _ = send(t, m, key("enter"))
	m, cmd := send(t, m, processedMsg{})
	m = run(t, m, cmd)
	assert.Equal(t, flow.StateTimeline, m.State())
	assert.Contains(t, m.View(), "subject not found")
}

func TestDetailTabsEmailAndBack(t *testing.T) {
	backend := &fakeBackend{subjectID: uuid.New()}
	m := toTimeline(t, backend)

	m, cmd := send(t, m, key("enter"))
	require.Equal(t, flow.StateDetail, m.State())
	m = run(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "2012 Patch Notes")
	assert.Contains(t, view, "The Deep Learning Revolution Begins")

	m, _ = send(t, m, key("tab"))
	assert.Contains(t, m.View(), "ImageNet Classification")
	m, _ = send(t, m, key("tab"))
	assert.Contains(t, m.View(), "CNNs explained")
	m, _ = send(t, m, key("tab"))
	assert.Contains(t, m.View(), "Your Learning Path")

	m, cmd = send(t, m, key("e"))
	m = run(t, m, cmd)
	require.Len(t, backend.emails, 1)
	assert.Equal(t, emailCall{to: "a@example.com", baseline: 2010, year: 2012}, backend.emails[0])
	assert.Contains(t, m.View(), "2012 report sent to a@example.com")

	m, _ = send(t, m, key("b"))
	assert.Equal(t, flow.StateTimeline, m.State())
	assert.Contains(t, m.View(), "Deep learning takes over")

	m, _ = send(t, m, key("esc"))
	assert.Equal(t, flow.StateUpload, m.State())
	assert.Equal(t, "a@example.com", m.form().Email)
	assert.Equal(t, catalog.DefaultBaselineYear, m.form().BaselineYear)
}

func TestSynthesizedYear(t *testing.T) {
	m := toTimeline(t, &fakeBackend{subjectID: uuid.New()})
	m, _ = send(t, m, key("down"))
	m, cmd := send(t, m, key("enter"))
	m = run(t, m, cmd)

	assert.Contains(t, m.View(), "2013 Patch Notes (general overview)")
}

func TestEmailDisabled(t *testing.T) {
	backend := &fakeBackend{subjectID: uuid.New(), emailErr: services.ErrEmailDisabled}
	m := toTimeline(t, backend)
	m, cmd := send(t, m, key("enter"))
	m = run(t, m, cmd)

	m, cmd = send(t, m, key("e"))
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "email delivery is not configured")
}

func TestStaleYearIgnored(t *testing.T) {
	m := toTimeline(t, &fakeBackend{subjectID: uuid.New()})
	m, cmd := send(t, m, key("enter"))
	m, _ = send(t, m, key("b"))

	m = run(t, m, cmd)
	assert.Equal(t, flow.StateTimeline, m.State())
	assert.Nil(t, m.lookup)
}

func TestQuit(t *testing.T) {
	m := toTimeline(t, &fakeBackend{subjectID: uuid.New()})
	_, cmd := send(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
