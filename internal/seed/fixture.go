package seed

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
)

const fixtureEnv = "SEED_FIXTURE_YAML"

//go:embed fixtures/computer_vision.yaml
var fixtureFS embed.FS

const defaultFixture = "fixtures/computer_vision.yaml"

var ErrInvalidFixture = errors.New("invalid seed fixture")

type Fixture struct {
	Subject  FixtureSubject `yaml:"subject"`
	User     FixtureUser    `yaml:"user"`
	Topics   []FixtureTopic `yaml:"topics"`
	Timeline []FixtureEvent `yaml:"timeline"`
	Years    []FixtureYear  `yaml:"years"`
}

type FixtureSubject struct {
	Title        string `yaml:"title"`
	Discipline   string `yaml:"discipline"`
	BaselineYear int    `yaml:"baseline_year"`
	Description  string `yaml:"description"`
}

type FixtureUser struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

type FixtureTopic struct {
	Name       string            `yaml:"name"`
	Type       catalog.TopicType `yaml:"type"`
	Category   string            `yaml:"category"`
	Importance int               `yaml:"importance"`
}

type FixtureEvent struct {
	Year     int            `yaml:"year"`
	Impact   catalog.Impact `yaml:"impact"`
	Headline string         `yaml:"headline"`
}

type FixtureYear struct {
	Year        int              `yaml:"year"`
	Summary     string           `yaml:"summary"`
	Description string           `yaml:"description"`
	Changes     []catalog.Change `yaml:"changes"`
	Papers      []catalog.Paper  `yaml:"papers"`
	Videos      []catalog.Video  `yaml:"videos"`
}

// YearNumbers lists the hand-authored years in fixture order.
func (f *Fixture) YearNumbers() []int {
	out := make([]int, 0, len(f.Years))
	for _, y := range f.Years {
		out = append(out, y.Year)
	}
	return out
}

// LoadFixture reads SEED_FIXTURE_YAML when set, otherwise the embedded computer vision fixture.
func LoadFixture() (*Fixture, error) {
	if p := strings.TrimSpace(os.Getenv(fixtureEnv)); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		return ParseFixture(b)
	}
	b, err := fixtureFS.ReadFile(defaultFixture)
	if err != nil {
		return nil, err
	}
	return ParseFixture(b)
}

func ParseFixture(b []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) validate() error {
	if strings.TrimSpace(f.User.Email) == "" {
		return fmt.Errorf("%w: user email is required", ErrInvalidFixture)
	}
	if strings.TrimSpace(f.Subject.Title) == "" || strings.TrimSpace(f.Subject.Discipline) == "" {
		return fmt.Errorf("%w: subject title and discipline are required", ErrInvalidFixture)
	}
	for _, ev := range f.Timeline {
		if !ev.Impact.Valid() {
			return fmt.Errorf("%w: year %d has impact %q", ErrInvalidFixture, ev.Year, ev.Impact)
		}
		if !catalog.InTimeline(ev.Year) {
			return fmt.Errorf("%w: timeline year %d outside %d..%d", ErrInvalidFixture, ev.Year, catalog.TimelineFrom, catalog.TimelineTo)
		}
	}
	seen := map[int]bool{}
	for _, y := range f.Years {
		if seen[y.Year] {
			return fmt.Errorf("%w: year %d listed twice", ErrInvalidFixture, y.Year)
		}
		seen[y.Year] = true
		for _, c := range y.Changes {
			if !c.Type.Valid() || c.Type == catalog.ChangeRename {
				return fmt.Errorf("%w: year %d change %q has type %q", ErrInvalidFixture, y.Year, c.Title, c.Type)
			}
		}
	}
	return nil
}
