// Package board owns the task collection together with the filter, sort,
// selection, view-mode and drag/drop state shared by the List, Kanban and Focus views.
//
// State is a single-owner container: views receive copies and report intent
// through its named operations. It is not safe for concurrent use.
package board

import (
	"slices"

	"github.com/evanschultz/taskboard/internal/domain"
)

// State is the single source of truth for one board session.
type State struct {
	tasks    []domain.Task
	filter   Filter
	query    string
	sort     SortState
	selected map[string]struct{}
	mode     domain.ViewMode
	drag     DragState
}

// New constructs a board over a copy of tasks, showing the list view.
func New(tasks []domain.Task) *State {
	return &State{
		tasks:    slices.Clone(tasks),
		selected: map[string]struct{}{},
		mode:     domain.ViewModeList,
		drag:     Idle{},
	}
}

// Tasks returns a copy of the full collection in its original order.
func (s *State) Tasks() []domain.Task {
	return slices.Clone(s.tasks)
}

// Len returns the collection size.
func (s *State) Len() int {
	return len(s.tasks)
}

// Task looks up one task by id.
func (s *State) Task(id string) (domain.Task, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return s.tasks[idx], true
}

// SetTasks replaces the collection. Selection and an in-flight drag survive only
// for ids still present.
func (s *State) SetTasks(tasks []domain.Task) {
	s.tasks = slices.Clone(tasks)
	for id := range s.selected {
		if s.indexOf(id) < 0 {
			delete(s.selected, id)
		}
	}
	if id, ok := DraggingTaskID(s.drag); ok && s.indexOf(id) < 0 {
		s.drag = Idle{}
	}
}

// Upsert replaces the task with the same id or appends a new one.
func (s *State) Upsert(task domain.Task) {
	if idx := s.indexOf(task.ID); idx >= 0 {
		s.tasks[idx] = task
		return
	}
	s.tasks = append(s.tasks, task)
}

// SetStatus replaces the status of one task and leaves every other field alone.
// It reports false, changing nothing, for unknown ids or statuses.
func (s *State) SetStatus(taskID string, status domain.Status) bool {
	if !status.Valid() {
		return false
	}
	idx := s.indexOf(taskID)
	if idx < 0 {
		return false
	}
	s.tasks[idx].Status = status
	return true
}

// ToggleSelect flips selection for a known id and reports the new membership.
func (s *State) ToggleSelect(taskID string) bool {
	if s.indexOf(taskID) < 0 {
		return false
	}
	if _, ok := s.selected[taskID]; ok {
		delete(s.selected, taskID)
		return false
	}
	s.selected[taskID] = struct{}{}
	return true
}

// SelectAll selects every currently visible task.
func (s *State) SelectAll() {
	for _, task := range s.Visible() {
		s.selected[task.ID] = struct{}{}
	}
}

// ClearSelection empties the selection and returns how many ids were dropped.
func (s *State) ClearSelection() int {
	n := len(s.selected)
	clear(s.selected)
	return n
}

// IsSelected reports selection membership.
func (s *State) IsSelected(taskID string) bool {
	_, ok := s.selected[taskID]
	return ok
}

// Selected returns selected ids in collection order.
func (s *State) Selected() []string {
	out := make([]string, 0, len(s.selected))
	for _, task := range s.tasks {
		if _, ok := s.selected[task.ID]; ok {
			out = append(out, task.ID)
		}
	}
	return out
}

// SetFilters replaces the toolbar filter.
func (s *State) SetFilters(f Filter) {
	s.filter = f.Clone()
}

// Filters returns a copy of the toolbar filter.
func (s *State) Filters() Filter {
	return s.filter.Clone()
}

// ToggleFilterValue toggles one value in one category.
func (s *State) ToggleFilterValue(category Category, value string) {
	s.filter = s.filter.Toggle(category, value)
}

// ClearFilters resets every category and the date range.
func (s *State) ClearFilters() {
	s.filter = Filter{}
}

// SetSearch sets the free-text title query.
func (s *State) SetSearch(query string) {
	s.query = query
}

// Search returns the free-text title query.
func (s *State) Search() string {
	return s.query
}

// ToggleSort applies the list-view column toggle.
func (s *State) ToggleSort(column SortColumn) SortState {
	s.sort = ToggleSort(s.sort, column)
	return s.sort
}

// SetSort replaces the sort outright.
func (s *State) SetSort(state SortState) {
	s.sort = state
}

// Sort returns the active sort.
func (s *State) Sort() SortState {
	return s.sort
}

// SetViewMode switches the projection. Unknown modes are ignored.
func (s *State) SetViewMode(mode domain.ViewMode) bool {
	switch mode {
	case domain.ViewModeList, domain.ViewModeKanban, domain.ViewModeFocus:
		s.mode = mode
		return true
	default:
		return false
	}
}

// ViewMode returns the active projection.
func (s *State) ViewMode() domain.ViewMode {
	return s.mode
}

// Filtered derives the filtered tasks in collection order.
func (s *State) Filtered() []domain.Task {
	return FilterTasks(s.tasks, s.filter, s.query)
}

// Visible is Filtered followed by the active sort.
func (s *State) Visible() []domain.Task {
	return SortTasks(s.Filtered(), s.sort)
}

// Drag returns the current drag state.
func (s *State) Drag() DragState {
	return s.drag
}

// DragStart picks up a card. Unknown ids leave the state idle.
func (s *State) DragStart(taskID string) bool {
	if s.indexOf(taskID) < 0 {
		s.drag = Idle{}
		return false
	}
	s.drag = Dragging{TaskID: taskID}
	return true
}

// DragOverColumn reports whether the column accepts a drop. It never changes state.
func (s *State) DragOverColumn(status domain.Status) bool {
	_, dragging := DraggingTaskID(s.drag)
	return dragging && status.Valid()
}

// Drop moves the dragged task to status and returns to idle. Dropping while idle
// is a no-op.
func (s *State) Drop(status domain.Status) (string, bool) {
	taskID, dragging := DraggingTaskID(s.drag)
	if !dragging {
		return "", false
	}
	s.drag = Idle{}
	if !s.SetStatus(taskID, status) {
		return "", false
	}
	return taskID, true
}

// DragEnd cancels any drag in progress.
func (s *State) DragEnd() {
	s.drag = Idle{}
}

func (s *State) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}
