package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for start and end dates.
const DateLayout = "2006-01-02"

type Assignee struct {
	Name   string
	Avatar string
}

type Task struct {
	ID                string
	Title             string
	Assignee          Assignee
	Priority          Priority
	Status            Status
	StartDate         time.Time
	EndDate           time.Time
	Progress          int
	Project           string
	Subtasks          int
	CompletedSubtasks int
	Description       string
	TimeTracked       string
	TimeEstimated     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type TaskInput struct {
	ID                string
	Title             string
	Assignee          Assignee
	Priority          Priority
	Status            Status
	StartDate         time.Time
	EndDate           time.Time
	Progress          int
	Project           string
	Subtasks          int
	CompletedSubtasks int
	Description       string
	TimeTracked       string
	TimeEstimated     string
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Assignee.Name = strings.TrimSpace(in.Assignee.Name)
	in.Assignee.Avatar = strings.TrimSpace(in.Assignee.Avatar)
	in.Project = strings.TrimSpace(in.Project)
	in.Description = strings.TrimSpace(in.Description)
	in.TimeTracked = strings.TrimSpace(in.TimeTracked)
	in.TimeEstimated = strings.TrimSpace(in.TimeEstimated)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}
	if in.Status == "" {
		in.Status = StatusToDo
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}
	if in.Progress < 0 || in.Progress > 100 {
		return Task{}, ErrInvalidProgress
	}
	if in.Subtasks < 0 || in.CompletedSubtasks < 0 || in.CompletedSubtasks > in.Subtasks {
		return Task{}, ErrInvalidSubtasks
	}
	start := NormalizeDate(in.StartDate)
	end := NormalizeDate(in.EndDate)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return Task{}, ErrInvalidDateRange
	}

	return Task{
		ID:                in.ID,
		Title:             in.Title,
		Assignee:          in.Assignee,
		Priority:          in.Priority,
		Status:            in.Status,
		StartDate:         start,
		EndDate:           end,
		Progress:          in.Progress,
		Project:           in.Project,
		Subtasks:          in.Subtasks,
		CompletedSubtasks: in.CompletedSubtasks,
		Description:       in.Description,
		TimeTracked:       in.TimeTracked,
		TimeEstimated:     in.TimeEstimated,
		CreatedAt:         now.UTC(),
		UpdatedAt:         now.UTC(),
	}, nil
}

// SetStatus replaces the status and nothing else. Every transition is allowed.
func (t *Task) SetStatus(status Status, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

// SetProgress updates the stored progress and completed subtask count.
// Progress is not derived from the subtask counts.
func (t *Task) SetProgress(progress, completedSubtasks int, now time.Time) error {
	if progress < 0 || progress > 100 {
		return ErrInvalidProgress
	}
	if completedSubtasks < 0 || completedSubtasks > t.Subtasks {
		return ErrInvalidSubtasks
	}
	t.Progress = progress
	t.CompletedSubtasks = completedSubtasks
	t.UpdatedAt = now.UTC()
	return nil
}

// SubtasksConsistent reports whether completed subtasks do not exceed the total.
func (t Task) SubtasksConsistent() bool {
	return t.CompletedSubtasks >= 0 && t.CompletedSubtasks <= t.Subtasks
}

// FormatDate renders a calendar date, or "" for the zero value.
func FormatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(DateLayout)
}

// ParseDate parses a DateLayout value; blank input yields the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// NormalizeDate truncates to UTC midnight.
func NormalizeDate(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Time{}
	}
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
