package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Timeline bounds: every year in [TimelineFrom, TimelineTo] has patch notes, hand-authored or
// synthesized.
const (
	TimelineFrom = 2009
	TimelineTo   = 2024

	DefaultBaselineYear = 2008
)

func InTimeline(year int) bool { return year >= TimelineFrom && year <= TimelineTo }

type Change struct {
	Type      ChangeType `json:"type"`
	Title     string     `json:"title"`
	Rationale string     `json:"rationale"`
}

type Paper struct {
	Title   string `json:"title"`
	Authors string `json:"authors"`
	URL     string `json:"url"`
	Venue   string `json:"venue"`
}

type Video struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Channel string `json:"channel"`
}

// YearData is the patch notes for one year: the unit the timeline detail renders.
type YearData struct {
	Year        int      `json:"year"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Changes     []Change `json:"changes"`
	Papers      []Paper  `json:"papers"`
	Videos      []Video  `json:"videos"`
}

type Outcome string

const (
	OutcomeFound       Outcome = "found"
	OutcomeSynthesized Outcome = "synthesized"
	OutcomeNotFound    Outcome = "not_found"
)

// YearLookup is the result of looking a year up. Data is nil for OutcomeNotFound.
type YearLookup struct {
	Outcome Outcome   `json:"outcome"`
	Data    *YearData `json:"year_data,omitempty"`
}

// Synthesize builds the generic filler record for a year without hand-authored notes.
func Synthesize(field string, year int) YearData {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "Computer Vision"
	}
	return YearData{
		Year:        year,
		Summary:     "Incremental improvements in " + strings.ToLower(field),
		Description: "Various improvements in existing techniques and optimization methods.",
		Changes: []Change{
			{Type: ChangeAdd, Title: "New optimization technique", Rationale: "Improved training efficiency"},
			{Type: ChangeEmerge, Title: "Experimental approach", Rationale: "Shows promise for future development"},
		},
		Papers: []Paper{
			{Title: fmt.Sprintf("%s Research %d", field, year), Authors: "Various", URL: "#", Venue: fmt.Sprintf("CVPR %d", year)},
		},
		Videos: []Video{
			{Title: fmt.Sprintf("Year %d in Review", year), URL: "#", Channel: "AI Research"},
		},
	}
}

// AssembleYear builds the patch notes of a stored run. diffs are expected in position order
// and items in (type, position) order.
func AssembleYear(run *YearRun, diffs []*YearDiff, items []*CanonItem) YearData {
	data := YearData{
		Year:        run.Year,
		Summary:     run.Summary,
		Description: run.Description,
		Changes:     make([]Change, 0, len(diffs)),
		Papers:      []Paper{},
		Videos:      []Video{},
	}
	for _, d := range diffs {
		data.Changes = append(data.Changes, Change{Type: d.ChangeType, Title: d.Title(), Rationale: d.Rationale})
	}
	for _, it := range items {
		meta := map[string]any{}
		if len(it.Metadata) > 0 {
			_ = json.Unmarshal(it.Metadata, &meta)
		}
		switch it.Type {
		case ItemPaper:
			authors, _ := meta["authors"].(string)
			data.Papers = append(data.Papers, Paper{Title: it.Title, Authors: authors, URL: it.URL, Venue: it.Venue})
		case ItemVideo:
			channel, _ := meta["channel"].(string)
			data.Videos = append(data.Videos, Video{Title: it.Title, URL: it.URL, Channel: channel})
		}
	}
	return data
}

// TimelineEntry is one clickable year on the timeline.
type TimelineEntry struct {
	Year               int    `json:"year"`
	Headline           string `json:"headline"`
	Impact             Impact `json:"impact"`
	MustLearn          bool   `json:"must_learn"`
	YearsAfterBaseline int    `json:"years_after_baseline"`
	HasNotes           bool   `json:"has_notes"`
}

// BuildTimeline keeps the events from the baseline year up to TimelineTo, in year order.
// hasRun reports whether a year has hand-authored notes.
func BuildTimeline(events []*TimelineEvent, baselineYear int, hasRun func(year int) bool) []TimelineEntry {
	byYear := make(map[int]*TimelineEvent, len(events))
	for _, ev := range events {
		if ev != nil {
			byYear[ev.Year] = ev
		}
	}
	start := baselineYear
	if start < TimelineFrom {
		start = TimelineFrom
	}
	if start > TimelineTo {
		return []TimelineEntry{}
	}
	out := make([]TimelineEntry, 0, TimelineTo-start+1)
	for year := start; year <= TimelineTo; year++ {
		ev, ok := byYear[year]
		if !ok {
			continue
		}
		out = append(out, TimelineEntry{
			Year:               year,
			Headline:           ev.Headline,
			Impact:             ev.Impact,
			MustLearn:          ev.Impact == ImpactRevolutionary,
			YearsAfterBaseline: year - baselineYear,
			HasNotes:           hasRun != nil && hasRun(year),
		})
	}
	return out
}
