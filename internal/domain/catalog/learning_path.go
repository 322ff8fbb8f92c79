package catalog

import "fmt"

const maxPriorityTopics = 3

type PriorityTopic struct {
	Rank           int        `json:"rank"`
	Title          string     `json:"title"`
	Rationale      string     `json:"rationale"`
	Type           ChangeType `json:"type"`
	EstimatedHours int        `json:"estimated_hours"`
}

// LearningPath is what someone who studied the field at BaselineYear should pick up from Year.
type LearningPath struct {
	Year         int             `json:"year"`
	BaselineYear int             `json:"baseline_year"`
	Priorities   []PriorityTopic `json:"priorities"`
	Resources    []string        `json:"resources"`
}

// BuildLearningPath takes the first three additions or emergences of the year, in order.
func BuildLearningPath(data YearData, baselineYear int) LearningPath {
	lp := LearningPath{Year: data.Year, BaselineYear: baselineYear}
	for _, c := range data.Changes {
		if len(lp.Priorities) == maxPriorityTopics {
			break
		}
		if c.Type != ChangeAdd && c.Type != ChangeEmerge {
			continue
		}
		idx := len(lp.Priorities)
		lp.Priorities = append(lp.Priorities, PriorityTopic{
			Rank:           idx + 1,
			Title:          c.Title,
			Rationale:      c.Rationale,
			Type:           c.Type,
			EstimatedHours: 2 + idx,
		})
	}
	first := ""
	if len(data.Changes) > 0 {
		first = data.Changes[0].Title
	}
	lp.Resources = []string{
		"Deep Learning Book - Chapter on " + first,
		fmt.Sprintf("Coursera: Advanced Computer Vision (%d Edition)", data.Year),
		"GitHub: Implementation tutorials and code",
	}
	return lp
}
