package board

import (
	"cmp"
	"slices"

	"github.com/evanschultz/taskboard/internal/domain"
)

// KanbanColumn is one status lane.
type KanbanColumn struct {
	Status domain.Status
	Tasks  []domain.Task
}

// KanbanColumns groups tasks into one lane per status in board order. Empty lanes
// are kept so every status stays a drop target.
func KanbanColumns(tasks []domain.Task) []KanbanColumn {
	statuses := domain.Statuses()
	out := make([]KanbanColumn, len(statuses))
	for idx, status := range statuses {
		out[idx] = KanbanColumn{Status: status, Tasks: []domain.Task{}}
	}
	for _, task := range tasks {
		if rank := task.Status.Rank(); rank >= 0 {
			out[rank].Tasks = append(out[rank].Tasks, task)
		}
	}
	return out
}

// focusStatusOrder puts in-flight work ahead of new work.
var focusStatusOrder = map[domain.Status]int{
	domain.StatusInProgress: 0,
	domain.StatusReview:     1,
	domain.StatusToDo:       2,
}

// FocusQueue returns the open tasks ordered for the focus view: in progress,
// review, to do; then priority high to low; then earliest end date, undated last.
func FocusQueue(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := focusStatusOrder[task.Status]; ok {
			out = append(out, task)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Task) int {
		if c := cmp.Compare(focusStatusOrder[a.Status], focusStatusOrder[b.Status]); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		switch {
		case a.EndDate.IsZero() && b.EndDate.IsZero():
			return 0
		case a.EndDate.IsZero():
			return 1
		case b.EndDate.IsZero():
			return -1
		}
		return a.EndDate.Compare(b.EndDate)
	})
	return out
}
