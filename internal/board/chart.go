package board

import (
	"slices"
	"strings"

	"github.com/evanschultz/taskboard/internal/domain"
)

// ChartPoint is one {label, value} tuple handed to a chart renderer.
// Extra carries a secondary series where a chart needs one.
type ChartPoint struct {
	Label string
	Value int
	Extra int
}

// StatusBreakdown counts tasks per status, every status included.
func StatusBreakdown(tasks []domain.Task) []ChartPoint {
	out := make([]ChartPoint, 0, 4)
	for _, status := range domain.Statuses() {
		out = append(out, ChartPoint{Label: string(status)})
	}
	for _, task := range tasks {
		if rank := task.Status.Rank(); rank >= 0 {
			out[rank].Value++
		}
	}
	return out
}

// PriorityBreakdown counts tasks per priority, High first.
func PriorityBreakdown(tasks []domain.Task) []ChartPoint {
	out := make([]ChartPoint, 0, 3)
	for _, priority := range domain.Priorities() {
		out = append(out, ChartPoint{Label: string(priority)})
	}
	for _, task := range tasks {
		if rank := task.Priority.Rank(); rank >= 0 {
			out[rank].Value++
		}
	}
	return out
}

// WorkloadByAssignee reports open tasks (Value) and total tasks (Extra) per
// assignee, sorted by name. Unassigned work is grouped under "Unassigned".
func WorkloadByAssignee(tasks []domain.Task) []ChartPoint {
	return groupBy(tasks, func(t domain.Task) string {
		if name := strings.TrimSpace(t.Assignee.Name); name != "" {
			return name
		}
		return "Unassigned"
	}, func(p *ChartPoint, t domain.Task) {
		p.Extra++
		if t.Status != domain.StatusCompleted {
			p.Value++
		}
	})
}

// ProjectProgress reports mean stored progress (Value) and task count (Extra) per project.
func ProjectProgress(tasks []domain.Task) []ChartPoint {
	sums := map[string]int{}
	points := groupBy(tasks, func(t domain.Task) string {
		if project := strings.TrimSpace(t.Project); project != "" {
			return project
		}
		return "No project"
	}, func(p *ChartPoint, t domain.Task) {
		p.Extra++
		sums[p.Label] += t.Progress
	})
	for idx := range points {
		if points[idx].Extra > 0 {
			points[idx].Value = sums[points[idx].Label] / points[idx].Extra
		}
	}
	return points
}

func groupBy(tasks []domain.Task, key func(domain.Task) string, add func(*ChartPoint, domain.Task)) []ChartPoint {
	byLabel := map[string]*ChartPoint{}
	for _, task := range tasks {
		label := key(task)
		point, ok := byLabel[label]
		if !ok {
			point = &ChartPoint{Label: label}
			byLabel[label] = point
		}
		add(point, task)
	}
	out := make([]ChartPoint, 0, len(byLabel))
	for _, point := range byLabel {
		out = append(out, *point)
	}
	slices.SortFunc(out, func(a, b ChartPoint) int { return strings.Compare(a.Label, b.Label) })
	return out
}
