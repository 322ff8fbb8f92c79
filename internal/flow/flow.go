// Package flow is the upload, timeline and detail navigation of the client. It holds no I/O;
// views read its state and call its transitions.
package flow

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
)

type State string

const (
	StateUpload   State = "upload"
	StateTimeline State = "timeline"
	StateDetail   State = "detail"
)

const (
	DefaultSubject = "Computer Vision"
	MinBaseline    = 2005
	MaxBaseline    = 2024
)

var Subjects = []string{
	"Computer Vision",
	"Natural Language Processing",
	"Machine Learning",
	"Robotics",
	"Bioinformatics",
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidForm       = errors.New("invalid upload form")
	ErrInvalidYear       = errors.New("year not on timeline")
)

// BaselineYears lists the selectable baselines, oldest first.
func BaselineYears() []int {
	out := make([]int, 0, MaxBaseline-MinBaseline+1)
	for y := MinBaseline; y <= MaxBaseline; y++ {
		out = append(out, y)
	}
	return out
}

type UploadForm struct {
	Email        string `validate:"required,email"`
	Subject      string
	BaselineYear int    `validate:"min=2005,max=2024"`
	SyllabusPath string `validate:"required"`
}

var validate = validator.New()

// Validate fills the subject and baseline defaults and checks the rest.
func (f *UploadForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	f.SyllabusPath = strings.TrimSpace(f.SyllabusPath)
	if strings.TrimSpace(f.Subject) == "" {
		f.Subject = DefaultSubject
	}
	if f.BaselineYear == 0 {
		f.BaselineYear = catalog.DefaultBaselineYear
	}

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidForm, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}
	if !slices.Contains(Subjects, f.Subject) {
		return fmt.Errorf("%w: unknown subject %q", ErrInvalidForm, f.Subject)
	}
	return nil
}

// Flow is not safe for concurrent use; one view owns it.
type Flow struct {
	state        State
	email        string
	subject      string
	baselineYear int
	year         int
}

func New() *Flow {
	return &Flow{
		state:        StateUpload,
		subject:      DefaultSubject,
		baselineYear: catalog.DefaultBaselineYear,
	}
}

func (f *Flow) State() State      { return f.state }
func (f *Flow) Email() string     { return f.email }
func (f *Flow) Subject() string   { return f.subject }
func (f *Flow) BaselineYear() int { return f.baselineYear }
func (f *Flow) Year() (int, bool) { return f.year, f.state == StateDetail }

func transitionErr(from State, action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
}

// Submit moves upload to timeline. On error the state is unchanged.
func (f *Flow) Submit(form UploadForm) error {
	if f.state != StateUpload {
		return transitionErr(f.state, "submit")
	}
	if err := form.Validate(); err != nil {
		return err
	}
	f.email = form.Email
	f.subject = form.Subject
	f.baselineYear = form.BaselineYear
	f.state = StateTimeline
	return nil
}

// SelectYear moves timeline to detail. The year must be on the timeline shown for the
// current baseline.
func (f *Flow) SelectYear(year int) error {
	if f.state != StateTimeline {
		return transitionErr(f.state, "select year")
	}
	if !catalog.InTimeline(year) || year < f.baselineYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	f.year = year
	f.state = StateDetail
	return nil
}

// Back reverses the last forward transition. Leaving the timeline resets baseline and
// subject but keeps the email.
func (f *Flow) Back() error {
	switch f.state {
	case StateDetail:
		f.year = 0
		f.state = StateTimeline
	case StateTimeline:
		f.baselineYear = catalog.DefaultBaselineYear
		f.subject = DefaultSubject
		f.state = StateUpload
	default:
		return transitionErr(f.state, "back")
	}
	return nil
}
