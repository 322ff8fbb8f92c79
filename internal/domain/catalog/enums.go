package catalog

import (
	"errors"
	"fmt"
)

type TopicType string

const (
	TopicMethod  TopicType = "method"
	TopicConcept TopicType = "concept"
	TopicSystem  TopicType = "system"
)

type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

type ChangeType string

const (
	ChangeAdd       ChangeType = "ADD"
	ChangeDeprecate ChangeType = "DEPRECATE"
	ChangeEmerge    ChangeType = "EMERGE"
	ChangeRename    ChangeType = "RENAME"
)

func (c ChangeType) Valid() bool {
	switch c {
	case ChangeAdd, ChangeDeprecate, ChangeEmerge, ChangeRename:
		return true
	}
	return false
}

type ItemType string

const (
	ItemPaper ItemType = "paper"
	ItemVideo ItemType = "video"
	ItemTool  ItemType = "tool"
)

// Impact ranks how much a year changed the field.
type Impact string

const (
	ImpactLow           Impact = "low"
	ImpactMedium        Impact = "medium"
	ImpactHigh          Impact = "high"
	ImpactRevolutionary Impact = "revolutionary"
)

func (i Impact) Valid() bool {
	switch i {
	case ImpactLow, ImpactMedium, ImpactHigh, ImpactRevolutionary:
		return true
	}
	return false
}

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrInvalidDiff     = errors.New("invalid year diff")
	ErrInvalidImpact   = errors.New("invalid impact")
)

func invalidDiff(d *YearDiff, reason string) error {
	return fmt.Errorf("%w (%s, position %d): %s", ErrInvalidDiff, d.ChangeType, d.Position, reason)
}
