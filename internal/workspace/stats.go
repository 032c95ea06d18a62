package workspace

import "github.com/theirongolddev/pmx/internal/model"

// Stats aggregates the dashboard figures across projects.
type Stats struct {
	Projects   int
	TotalTasks int
	InProgress int
	DoneTasks  int
	HighRisks  int
}

// PercentDone is the share of all tasks in done, rounded; 0 with no tasks.
func (s Stats) PercentDone() int {
	return percent(s.DoneTasks, s.TotalTasks)
}

// Summarize computes Stats over projects.
func Summarize(projects []model.Project) Stats {
	st := Stats{Projects: len(projects)}
	for _, p := range projects {
		k := p.Kanban
		st.TotalTasks += len(k.Todo) + len(k.InProgress) + len(k.Done)
		st.InProgress += len(k.InProgress)
		st.DoneTasks += len(k.Done)
		for _, r := range p.Risks {
			if r.Impact == "High" {
				st.HighRisks++
			}
		}
	}
	return st
}

// ProjectProgress returns task count and percent done for one project.
func ProjectProgress(p model.Project) (tasks, pct int) {
	k := p.Kanban
	tasks = len(k.Todo) + len(k.InProgress) + len(k.Done)
	return tasks, percent(len(k.Done), tasks)
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return (part*200 + whole) / (whole * 2)
}
