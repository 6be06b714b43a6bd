package app

import (
	"context"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// Analytics holds dashboard totals and chart series.
type Analytics struct {
	Total          int
	Completed      int
	Overdue        int
	CompletionRate int
	ByStatus       []board.ChartPoint
	ByPriority     []board.ChartPoint
	Workload       []board.ChartPoint
	Projects       []board.ChartPoint
}

// Analytics summarizes every stored task.
func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return Analytics{}, err
	}
	today := domain.NormalizeDate(s.clock())
	out := Analytics{
		Total:      len(tasks),
		ByStatus:   board.StatusBreakdown(tasks),
		ByPriority: board.PriorityBreakdown(tasks),
		Workload:   board.WorkloadByAssignee(tasks),
		Projects:   board.ProjectProgress(tasks),
	}
	for _, task := range tasks {
		if task.Status == domain.StatusCompleted {
			out.Completed++
			continue
		}
		if !task.EndDate.IsZero() && task.EndDate.Before(today) {
			out.Overdue++
		}
	}
	if out.Total > 0 {
		out.CompletionRate = out.Completed * 100 / out.Total
	}
	return out, nil
}
