package plan

import (
	"math"
	"strings"

	"github.com/theirongolddev/pmx/internal/model"
)

// FallbackRisks is used when the risk reply cannot be parsed.
func FallbackRisks() []model.Risk {
	return []model.Risk{{
		ID:          "R1",
		Description: "Scope may expand beyond initial objectives if requirements are unclear.",
		Category:    "Scope",
		Impact:      "High",
		Probability: "Medium",
		Response:    "Define a clear scope baseline and implement change control.",
		Owner:       "Project Manager",
	}}
}

// FallbackBreakdown is used when the breakdown reply cannot be parsed.
func FallbackBreakdown() Breakdown {
	return Breakdown{
		WBS: []model.Phase{
			{ID: "1", Name: "Initiation", StartWeek: 0, DurationWeeks: 1, Items: []string{"1.1 Define project scope", "1.2 Identify stakeholders"}},
			{ID: "2", Name: "Planning", StartWeek: 1, DurationWeeks: 2, Items: []string{"2.1 Create project plan", "2.2 Risk assessment"}},
			{ID: "3", Name: "Execution", StartWeek: 3, DurationWeeks: 5, Items: []string{"3.1 Deliver core work", "3.2 Track progress"}},
			{ID: "4", Name: "Closure", StartWeek: 8, DurationWeeks: 1, Items: []string{"4.1 Final review", "4.2 Handover"}},
		},
		Tasks: []model.Task{
			{ID: "1", Title: "Define project scope"},
			{ID: "2", Title: "Identify key stakeholders"},
			{ID: "3", Title: "Create project plan"},
		},
	}
}

// StaticWBS is the breakdown shown before a plan has been generated.
func StaticWBS() []model.Phase {
	return []model.Phase{
		{ID: "1", Name: "Initiation", StartWeek: 0, DurationWeeks: 2, Items: []string{
			"1.1 Gather high-level business need and pain points",
			"1.2 Define project objectives & success criteria",
			"1.3 Identify key stakeholders and sponsor",
			"1.4 Draft initial project charter outline",
		}},
		{ID: "2", Name: "Planning", StartWeek: 1, DurationWeeks: 3, Items: []string{
			"2.1 Refine scope and assumptions",
			"2.2 Break down work into phases & tasks (WBS)",
			"2.3 Define schedule milestones & dependencies",
			"2.4 Identify risks and draft risk responses",
		}},
		{ID: "3", Name: "Execution", StartWeek: 3, DurationWeeks: 6, Items: []string{
			"3.1 Configure PMX features & integrations",
			"3.2 Develop project templates (charter, WBS, risks)",
			"3.3 Run pilot with selected users",
			"3.4 Collect feedback and prioritise improvements",
		}},
		{ID: "4", Name: "Monitoring & Control", StartWeek: 3, DurationWeeks: 6, Items: []string{
			"4.1 Track progress vs. schedule & scope",
			"4.2 Monitor risks, issues, and change requests",
			"4.3 Update stakeholders with status reports",
		}},
		{ID: "5", Name: "Closure", StartWeek: 9, DurationWeeks: 2, Items: []string{
			"5.1 Formal handover & acceptance",
			"5.2 Capture lessons learned",
			"5.3 Archive project artefacts in PMX",
		}},
	}
}

var baseTimeline = []model.Phase{
	{ID: "1", Name: "Prerequisite Gathering", StartWeek: 0, DurationWeeks: 2},
	{ID: "2", Name: "Design Workshops", StartWeek: 2, DurationWeeks: 2},
	{ID: "3", Name: "Initiation", StartWeek: 4, DurationWeeks: 1},
	{ID: "4", Name: "Planning", StartWeek: 5, DurationWeeks: 2},
	{ID: "5", Name: "Execution", StartWeek: 7, DurationWeeks: 4},
	{ID: "6", Name: "Closure", StartWeek: 11, DurationWeeks: 1},
}

// leadTime is inserted for infrastructure projects after the design phase.
var leadTime = model.Phase{ID: "infra-lead", Name: "Equipment Lead Time", StartWeek: 2, DurationWeeks: 4}

// StaticTimeline returns the default timeline phases for a project type.
// Infrastructure projects get an equipment lead-time phase, and every phase
// after it starts two weeks later.
func StaticTimeline(projectType string) []model.Phase {
	out := make([]model.Phase, 0, len(baseTimeline)+1)
	if !strings.Contains(strings.ToLower(projectType), "infra") {
		for _, p := range baseTimeline {
			p.Items = []string{}
			out = append(out, p)
		}
		return out
	}
	for i, p := range baseTimeline {
		p.Items = []string{}
		if i == 2 {
			lt := leadTime
			lt.Items = []string{}
			out = append(out, lt)
		}
		if i >= 2 {
			p.ID = shiftID(p.ID)
			p.StartWeek += 2
		}
		out = append(out, p)
	}
	return out
}

func shiftID(id model.ID) model.ID {
	s := string(id)
	if len(s) == 1 && s[0] >= '0' && s[0] <= '8' {
		return model.ID(string(s[0] + 1))
	}
	return id
}

// Timeline picks the phases to draw and the number of week columns.
type Timeline struct {
	Phases []model.Phase
	Weeks  int
	Static bool
}

// BuildTimeline uses phases when there are any, otherwise the static
// timeline for projectType. Weeks is max(totalWeeks, last phase end) when
// totalWeeks is set, else the last phase end, else 12.
func BuildTimeline(phases []model.Phase, totalWeeks int, projectType string) Timeline {
	tl := Timeline{Phases: phases}
	if len(phases) == 0 {
		tl.Phases = StaticTimeline(projectType)
		tl.Static = true
	}
	maxWeek := 0
	for _, p := range tl.Phases {
		if end := int(p.StartWeek + p.DurationWeeks); end > maxWeek {
			maxWeek = end
		}
	}
	switch {
	case totalWeeks > 0:
		tl.Weeks = max(totalWeeks, maxWeek)
	case maxWeek > 0:
		tl.Weeks = maxWeek
	default:
		tl.Weeks = 12
	}
	return tl
}

// Columns returns how many chart columns to draw when at most width fit:
// one per week while the weeks fit, otherwise width.
func (tl Timeline) Columns(width int) int {
	if width <= 0 || tl.Weeks <= width {
		return max(tl.Weeks, 0)
	}
	return width
}

// Span returns the half-open column range [from, to) that p covers on a
// chart of cols columns. A phase with a duration covers at least one column.
func (tl Timeline) Span(p model.Phase, cols int) (from, to int) {
	if cols <= 0 || tl.Weeks <= 0 || p.DurationWeeks <= 0 {
		return 0, 0
	}
	scale := float64(cols) / float64(tl.Weeks)
	start := float64(max(p.StartWeek, 0))
	from = min(int(start*scale), cols-1)
	to = int(math.Ceil((start + float64(p.DurationWeeks)) * scale))
	return from, min(max(to, from+1), cols)
}

// WeekAt returns the 1-based week shown at column c of a cols-wide chart.
func (tl Timeline) WeekAt(c, cols int) int {
	if cols <= 0 {
		return 0
	}
	return int(float64(c)*float64(tl.Weeks)/float64(cols)) + 1
}

// ActiveWBS returns phases, or the static breakdown when there are none.
func ActiveWBS(phases []model.Phase) ([]model.Phase, bool) {
	if len(phases) > 0 {
		return phases, false
	}
	return StaticWBS(), true
}
