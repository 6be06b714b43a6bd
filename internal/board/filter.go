package board

import (
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
)

// Category names one filterable task attribute.
type Category string

// Category values in toolbar order.
const (
	CategoryPriority Category = "priority"
	CategoryAssignee Category = "assignee"
	CategoryProject  Category = "project"
	CategoryStatus   Category = "status"
)

// Categories returns every filter category in toolbar order.
func Categories() []Category {
	return []Category{CategoryPriority, CategoryAssignee, CategoryProject, CategoryStatus}
}

// ValueSet is a set of selected filter values. An empty set places no restriction.
type ValueSet map[string]struct{}

// NewValueSet builds a set from values, skipping blanks.
func NewValueSet(values ...string) ValueSet {
	out := ValueSet{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

// Has reports membership.
func (s ValueSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in lexical order.
func (s ValueSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (s ValueSet) clone() ValueSet {
	out := make(ValueSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// DateRange bounds the task schedule filter. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Filter holds the toolbar selections. The zero value matches every task.
type Filter struct {
	Priorities ValueSet
	Assignees  ValueSet
	Projects   ValueSet
	Statuses   ValueSet
	Dates      DateRange
}

// Set returns the value set for one category.
func (f Filter) Set(category Category) ValueSet {
	switch category {
	case CategoryPriority:
		return f.Priorities
	case CategoryAssignee:
		return f.Assignees
	case CategoryProject:
		return f.Projects
	case CategoryStatus:
		return f.Statuses
	default:
		return nil
	}
}

// Toggle adds value to the category set, or removes it when already present.
func (f Filter) Toggle(category Category, value string) Filter {
	out := f.Clone()
	set := out.Set(category)
	if set == nil {
		return out
	}
	if set.Has(value) {
		delete(set, value)
	} else if value = strings.TrimSpace(value); value != "" {
		set[value] = struct{}{}
	}
	return out
}

// Empty reports whether the filter places no restriction at all.
func (f Filter) Empty() bool {
	return len(f.Priorities) == 0 && len(f.Assignees) == 0 && len(f.Projects) == 0 && len(f.Statuses) == 0 && f.Dates.IsZero()
}

// Clone deep-copies every set so the result can be mutated independently.
func (f Filter) Clone() Filter {
	return Filter{
		Priorities: f.Priorities.clone(),
		Assignees:  f.Assignees.clone(),
		Projects:   f.Projects.clone(),
		Statuses:   f.Statuses.clone(),
		Dates:      f.Dates,
	}
}

// FilterTasks keeps the tasks matching the search query and every category of f,
// preserving input order.
func FilterTasks(tasks []domain.Task, f Filter, query string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if Matches(task, f, query) {
			out = append(out, task)
		}
	}
	return out
}

// Matches is AND across categories and OR within one category's set.
func Matches(task domain.Task, f Filter, query string) bool {
	return matchesSearch(task, query) &&
		matchesSet(string(task.Priority), f.Priorities) &&
		matchesSet(task.Assignee.Name, f.Assignees) &&
		matchesSet(task.Project, f.Projects) &&
		matchesSet(string(task.Status), f.Statuses) &&
		matchesDates(task, f.Dates)
}

// matchesSet treats an empty selection as match-all.
func matchesSet(value string, selected ValueSet) bool {
	return len(selected) == 0 || selected.Has(value)
}

// matchesSearch is a case-insensitive substring match against the title only.
func matchesSearch(task domain.Task, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.Title), query)
}

// matchesDates keeps tasks whose schedule overlaps the range. Undated tasks only
// match an open range.
func matchesDates(task domain.Task, r DateRange) bool {
	if r.IsZero() {
		return true
	}
	start, end := task.StartDate, task.EndDate
	if start.IsZero() {
		start = end
	}
	if end.IsZero() {
		end = start
	}
	if start.IsZero() {
		return false
	}
	if !r.To.IsZero() && start.After(domain.NormalizeDate(r.To)) {
		return false
	}
	if !r.From.IsZero() && end.Before(domain.NormalizeDate(r.From)) {
		return false
	}
	return true
}

// FilterOptions lists the distinct values present in tasks for one category, in
// enum order for priority/status and lexical order otherwise.
func FilterOptions(tasks []domain.Task, category Category) []string {
	switch category {
	case CategoryPriority:
		out := make([]string, 0, 3)
		for _, p := range domain.Priorities() {
			out = append(out, string(p))
		}
		return out
	case CategoryStatus:
		out := make([]string, 0, 4)
		for _, s := range domain.Statuses() {
			out = append(out, string(s))
		}
		return out
	}
	seen := ValueSet{}
	for _, task := range tasks {
		switch category {
		case CategoryAssignee:
			if task.Assignee.Name != "" {
				seen[task.Assignee.Name] = struct{}{}
			}
		case CategoryProject:
			if task.Project != "" {
				seen[task.Project] = struct{}{}
			}
		}
	}
	return seen.Sorted()
}
