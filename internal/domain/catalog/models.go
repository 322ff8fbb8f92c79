package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IDs are generated in Go instead of a database default so the schema runs unchanged on
// postgres, mysql and sqlite.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

type User struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	Email     string    `gorm:"size:320;uniqueIndex;not null;column:email" json:"email"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error { newID(&u.ID); return nil }

// Subject is one course a user studied. (UserID, Title) is looked up before create; there is
// no unique constraint on it.
type Subject struct {
	ID           uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"size:36;not null;index" json:"user_id"`
	Title        string    `gorm:"size:255;not null;index" json:"title"`
	Discipline   string    `gorm:"size:64;not null" json:"discipline"`
	BaselineYear int       `gorm:"not null" json:"baseline_year"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Subject) TableName() string { return "subject" }

func (s *Subject) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }

type BaselineTopic struct {
	ID         uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	SubjectID  uuid.UUID `gorm:"size:36;not null;index" json:"subject_id"`
	Name       string    `gorm:"not null" json:"name"`
	Type       TopicType `gorm:"size:16;not null" json:"type"`
	Category   string    `gorm:"not null" json:"category"`
	Importance int       `gorm:"not null" json:"importance"`
	Summary    string    `gorm:"type:text" json:"summary"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (BaselineTopic) TableName() string { return "baseline_topic" }

func (t *BaselineTopic) BeforeCreate(*gorm.DB) error { newID(&t.ID); return nil }

// YearRun is one analysis pass for a subject at a year. Summary and Description carry the
// patch-notes header of the detail view.
type YearRun struct {
	ID          uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	SubjectID   uuid.UUID  `gorm:"size:36;not null;index:idx_year_run_subject_year" json:"subject_id"`
	Year        int        `gorm:"not null;index:idx_year_run_subject_year" json:"year"`
	Status      RunStatus  `gorm:"size:16;not null" json:"status"`
	Summary     string     `gorm:"type:text" json:"summary"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (YearRun) TableName() string { return "year_run" }

func (r *YearRun) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }

type YearDiff struct {
	ID         uuid.UUID      `gorm:"size:36;primaryKey" json:"id"`
	RunID      uuid.UUID      `gorm:"size:36;not null;index" json:"run_id"`
	Position   int            `gorm:"not null" json:"position"`
	ChangeType ChangeType     `gorm:"size:16;not null" json:"change_type"`
	FromTitle  *string        `json:"from_title,omitempty"`
	ToTitle    *string        `json:"to_title,omitempty"`
	Rationale  string         `gorm:"type:text" json:"rationale"`
	Confidence float64        `gorm:"not null" json:"confidence"`
	Evidence   datatypes.JSON `json:"evidence"`
	Importance int            `gorm:"not null" json:"importance"`
}

func (YearDiff) TableName() string { return "year_diff" }

func (d *YearDiff) BeforeCreate(*gorm.DB) error {
	newID(&d.ID)
	if len(d.Evidence) == 0 {
		d.Evidence = datatypes.JSON("[]")
	}
	return d.Validate()
}

// Validate checks which of FromTitle/ToTitle a change type requires.
func (d *YearDiff) Validate() error {
	hasFrom := d.FromTitle != nil && *d.FromTitle != ""
	hasTo := d.ToTitle != nil && *d.ToTitle != ""
	switch d.ChangeType {
	case ChangeDeprecate:
		if !hasFrom || hasTo {
			return invalidDiff(d, "DEPRECATE needs from_title only")
		}
	case ChangeAdd, ChangeEmerge:
		if !hasTo || hasFrom {
			return invalidDiff(d, string(d.ChangeType)+" needs to_title only")
		}
	case ChangeRename:
		if !hasFrom || !hasTo {
			return invalidDiff(d, "RENAME needs from_title and to_title")
		}
	default:
		return invalidDiff(d, "unknown change type")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return invalidDiff(d, "confidence outside [0,1]")
	}
	return nil
}

// Title is the name a change is displayed under.
func (d *YearDiff) Title() string {
	if d.ChangeType == ChangeDeprecate && d.FromTitle != nil {
		return *d.FromTitle
	}
	if d.ToTitle != nil {
		return *d.ToTitle
	}
	if d.FromTitle != nil {
		return *d.FromTitle
	}
	return ""
}

// TimelineEvent is the one-line headline of a year on a subject's timeline. Every year of the
// timeline range has one, including years without a YearRun.
type TimelineEvent struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	SubjectID uuid.UUID `gorm:"size:36;not null;index" json:"subject_id"`
	Year      int       `gorm:"not null" json:"year"`
	Headline  string    `gorm:"not null" json:"headline"`
	Impact    Impact    `gorm:"size:16;not null" json:"impact"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TimelineEvent) TableName() string { return "timeline_event" }

func (e *TimelineEvent) BeforeCreate(*gorm.DB) error {
	newID(&e.ID)
	if !e.Impact.Valid() {
		return fmt.Errorf("%w %q for year %d", ErrInvalidImpact, e.Impact, e.Year)
	}
	return nil
}

// CanonItem is a discipline-scoped reference (paper, video, tool). It joins YearRun only by
// (Discipline, Year).
type CanonItem struct {
	ID         uuid.UUID      `gorm:"size:36;primaryKey" json:"id"`
	Discipline string         `gorm:"size:64;not null;index:idx_canon_item_discipline_year" json:"discipline"`
	Year       int            `gorm:"not null;index:idx_canon_item_discipline_year" json:"year"`
	Type       ItemType       `gorm:"size:16;not null" json:"type"`
	Position   int            `gorm:"not null" json:"position"`
	Title      string         `gorm:"not null" json:"title"`
	URL        string         `json:"url"`
	Venue      string         `json:"venue"`
	Summary    string         `gorm:"type:text" json:"summary"`
	Confidence float64        `gorm:"not null" json:"confidence"`
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (CanonItem) TableName() string { return "canon_item" }

func (c *CanonItem) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	if len(c.Metadata) == 0 {
		c.Metadata = datatypes.JSON("{}")
	}
	return nil
}

// All lists every persisted model in dependency order for migrations.
func All() []any {
	return []any{
		&User{},
		&Subject{},
		&BaselineTopic{},
		&YearRun{},
		&YearDiff{},
		&TimelineEvent{},
		&CanonItem{},
	}
}
