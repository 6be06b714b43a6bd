package board

import (
	"cmp"
	"slices"
	"strings"

	"github.com/evanschultz/taskboard/internal/domain"
)

// SortColumn names one sortable list-view column.
type SortColumn string

// SortColumn values in list-view column order.
const (
	SortNone     SortColumn = ""
	SortTitle    SortColumn = "title"
	SortAssignee SortColumn = "assignee"
	SortPriority SortColumn = "priority"
	SortStatus   SortColumn = "status"
	SortProject  SortColumn = "project"
	SortStart    SortColumn = "start"
	SortEnd      SortColumn = "end"
	SortProgress SortColumn = "progress"
)

// SortColumns returns every sortable column in list-view order.
func SortColumns() []SortColumn {
	return []SortColumn{SortTitle, SortAssignee, SortPriority, SortStatus, SortProject, SortStart, SortEnd, SortProgress}
}

// ParseSortColumn returns SortNone with ok=false for unknown names.
func ParseSortColumn(raw string) (SortColumn, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return SortNone, true
	}
	for _, col := range SortColumns() {
		if string(col) == raw {
			return col, true
		}
	}
	return SortNone, false
}

// Direction is the sort order.
type Direction string

// Direction values.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active list-view sort. The zero value keeps collection order.
type SortState struct {
	Column    SortColumn
	Direction Direction
}

// ToggleSort flips the direction when column is already sorted, otherwise switches
// to column ascending.
func ToggleSort(current SortState, column SortColumn) SortState {
	if column == SortNone {
		return SortState{}
	}
	if current.Column == column {
		if current.Direction == Ascending {
			return SortState{Column: column, Direction: Descending}
		}
		return SortState{Column: column, Direction: Ascending}
	}
	return SortState{Column: column, Direction: Ascending}
}

// SortTasks returns a stably sorted copy.
func SortTasks(tasks []domain.Task, state SortState) []domain.Task {
	out := slices.Clone(tasks)
	if state.Column == SortNone {
		return out
	}
	compare := comparatorFor(state.Column)
	if state.Direction == Descending {
		slices.SortStableFunc(out, func(a, b domain.Task) int { return compare(b, a) })
		return out
	}
	slices.SortStableFunc(out, compare)
	return out
}

// comparatorFor compares text columns (priority and status labels included)
// lexically, progress numerically and dates chronologically.
func comparatorFor(column SortColumn) func(a, b domain.Task) int {
	switch column {
	case SortTitle:
		return func(a, b domain.Task) int { return strings.Compare(a.Title, b.Title) }
	case SortAssignee:
		return func(a, b domain.Task) int { return strings.Compare(a.Assignee.Name, b.Assignee.Name) }
	case SortProject:
		return func(a, b domain.Task) int { return strings.Compare(a.Project, b.Project) }
	case SortPriority:
		return func(a, b domain.Task) int { return strings.Compare(string(a.Priority), string(b.Priority)) }
	case SortStatus:
		return func(a, b domain.Task) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case SortStart:
		return func(a, b domain.Task) int { return a.StartDate.Compare(b.StartDate) }
	case SortEnd:
		return func(a, b domain.Task) int { return a.EndDate.Compare(b.EndDate) }
	case SortProgress:
		return func(a, b domain.Task) int { return cmp.Compare(a.Progress, b.Progress) }
	default:
		return func(domain.Task, domain.Task) int { return 0 }
	}
}
