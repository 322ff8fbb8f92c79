package domain

import "github.com/yungbote/coursekeeper-backend/internal/domain/catalog"

type (
	User          = catalog.User
	Subject       = catalog.Subject
	BaselineTopic = catalog.BaselineTopic
	YearRun       = catalog.YearRun
	YearDiff      = catalog.YearDiff
	TimelineEvent = catalog.TimelineEvent
	CanonItem     = catalog.CanonItem

	YearData      = catalog.YearData
	YearLookup    = catalog.YearLookup
	TimelineEntry = catalog.TimelineEntry
	LearningPath  = catalog.LearningPath
)
