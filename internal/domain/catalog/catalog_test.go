package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func TestYearDiffValidate(t *testing.T) {
	cases := []struct {
		name    string
		diff    YearDiff
		wantErr bool
	}{
		{"add", YearDiff{ChangeType: ChangeAdd, ToTitle: strPtr("CNNs")}, false},
		{"add with from", YearDiff{ChangeType: ChangeAdd, FromTitle: strPtr("x"), ToTitle: strPtr("CNNs")}, true},
		{"add without to", YearDiff{ChangeType: ChangeAdd}, true},
		{"deprecate", YearDiff{ChangeType: ChangeDeprecate, FromTitle: strPtr("SIFT")}, false},
		{"deprecate with to", YearDiff{ChangeType: ChangeDeprecate, FromTitle: strPtr("SIFT"), ToTitle: strPtr("CNN")}, true},
		{"emerge", YearDiff{ChangeType: ChangeEmerge, ToTitle: strPtr("ViT")}, false},
		{"rename", YearDiff{ChangeType: ChangeRename, FromTitle: strPtr("a"), ToTitle: strPtr("b")}, false},
		{"rename half", YearDiff{ChangeType: ChangeRename, ToTitle: strPtr("b")}, true},
		{"unknown", YearDiff{ChangeType: "MERGE", ToTitle: strPtr("b")}, true},
		{"confidence", YearDiff{ChangeType: ChangeAdd, ToTitle: strPtr("b"), Confidence: 1.5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.diff.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDiff) {
					t.Fatalf("expected ErrInvalidDiff, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestYearDiffTitle(t *testing.T) {
	dep := YearDiff{ChangeType: ChangeDeprecate, FromTitle: strPtr("Hand-crafted Features")}
	if got := dep.Title(); got != "Hand-crafted Features" {
		t.Fatalf("deprecate title: got %q", got)
	}
	add := YearDiff{ChangeType: ChangeAdd, ToTitle: strPtr("ReLU")}
	if got := add.Title(); got != "ReLU" {
		t.Fatalf("add title: got %q", got)
	}
}

func TestSynthesize(t *testing.T) {
	got := Synthesize("Computer Vision", 2010)
	want := YearData{
		Year:        2010,
		Summary:     "Incremental improvements in computer vision",
		Description: "Various improvements in existing techniques and optimization methods.",
		Changes: []Change{
			{Type: ChangeAdd, Title: "New optimization technique", Rationale: "Improved training efficiency"},
			{Type: ChangeEmerge, Title: "Experimental approach", Rationale: "Shows promise for future development"},
		},
		Papers: []Paper{{Title: "Computer Vision Research 2010", Authors: "Various", URL: "#", Venue: "CVPR 2010"}},
		Videos: []Video{{Title: "Year 2010 in Review", URL: "#", Channel: "AI Research"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Synthesize mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTimeline(t *testing.T) {
	events := []*TimelineEvent{
		{Year: 2009, Headline: "Incremental improvements", Impact: ImpactLow},
		{Year: 2012, Headline: "AlexNet", Impact: ImpactRevolutionary},
		{Year: 2014, Headline: "VGG", Impact: ImpactHigh},
		{Year: 2030, Headline: "future", Impact: ImpactHigh},
	}
	hasRun := func(year int) bool { return year == 2012 }

	got := BuildTimeline(events, 2010, hasRun)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	if got[0].Year != 2012 || !got[0].MustLearn || !got[0].HasNotes || got[0].YearsAfterBaseline != 2 {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].Year != 2014 || got[1].MustLearn || got[1].HasNotes {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}

	all := BuildTimeline(events, 2000, nil)
	if len(all) != 3 || all[0].Year != 2009 {
		t.Fatalf("baseline before range: got %+v", all)
	}
}

func TestBuildTimelineBaselineAfterRange(t *testing.T) {
	events := []*TimelineEvent{
		{Year: 2012, Headline: "AlexNet", Impact: ImpactRevolutionary},
		{Year: 2024, Headline: "Latest", Impact: ImpactHigh},
	}
	for _, baseline := range []int{TimelineTo + 1, 2030, 2100} {
		got := BuildTimeline(events, baseline, nil)
		if got == nil || len(got) != 0 {
			t.Fatalf("baseline %d: expected empty non-nil timeline, got %#v", baseline, got)
		}
	}
	if got := BuildTimeline(events, TimelineTo, nil); len(got) != 1 || got[0].YearsAfterBaseline != 0 {
		t.Fatalf("baseline %d: expected only the final year, got %+v", TimelineTo, got)
	}
}

func TestBuildLearningPath(t *testing.T) {
	data := YearData{
		Year: 2022,
		Changes: []Change{
			{Type: ChangeAdd, Title: "Diffusion Models"},
			{Type: ChangeDeprecate, Title: "Traditional GANs"},
			{Type: ChangeAdd, Title: "CLIP"},
			{Type: ChangeEmerge, Title: "MAE"},
			{Type: ChangeAdd, Title: "Fourth"},
		},
	}
	lp := BuildLearningPath(data, 2008)
	if len(lp.Priorities) != 3 {
		t.Fatalf("expected 3 priorities, got %d", len(lp.Priorities))
	}
	titles := []string{lp.Priorities[0].Title, lp.Priorities[1].Title, lp.Priorities[2].Title}
	if diff := cmp.Diff([]string{"Diffusion Models", "CLIP", "MAE"}, titles); diff != "" {
		t.Fatalf("priority titles (-want +got):\n%s", diff)
	}
	for i, p := range lp.Priorities {
		if p.EstimatedHours != 2+i || p.Rank != i+1 {
			t.Fatalf("priority %d: %+v", i, p)
		}
	}
	if lp.Resources[0] != "Deep Learning Book - Chapter on Diffusion Models" {
		t.Fatalf("unexpected first resource %q", lp.Resources[0])
	}
	if lp.Resources[1] != "Coursera: Advanced Computer Vision (2022 Edition)" {
		t.Fatalf("unexpected second resource %q", lp.Resources[1])
	}
}

func TestAssembleYear(t *testing.T) {
	run := &YearRun{Year: 2012, Summary: "s", Description: "d"}
	diffs := []*YearDiff{
		{Position: 0, ChangeType: ChangeAdd, ToTitle: strPtr("CNNs"), Rationale: "r1"},
		{Position: 1, ChangeType: ChangeDeprecate, FromTitle: strPtr("SIFT"), Rationale: "r2"},
	}
	items := []*CanonItem{
		{Type: ItemPaper, Title: "AlexNet", URL: "u1", Venue: "NIPS 2012", Metadata: []byte(`{"authors":"Krizhevsky","paperType":"research"}`)},
		{Type: ItemVideo, Title: "CNNs explained", URL: "u2", Metadata: []byte(`{"channel":"Two Minute Papers"}`)},
		{Type: ItemTool, Title: "ignored"},
	}

	got := AssembleYear(run, diffs, items)
	want := YearData{
		Year:        2012,
		Summary:     "s",
		Description: "d",
		Changes: []Change{
			{Type: ChangeAdd, Title: "CNNs", Rationale: "r1"},
			{Type: ChangeDeprecate, Title: "SIFT", Rationale: "r2"},
		},
		Papers: []Paper{{Title: "AlexNet", Authors: "Krizhevsky", URL: "u1", Venue: "NIPS 2012"}},
		Videos: []Video{{Title: "CNNs explained", URL: "u2", Channel: "Two Minute Papers"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("AssembleYear mismatch (-want +got):\n%s", diff)
	}
}
