package domain

import "strings"

// Status is the workflow column a task sits in.
type Status string

// Status values in board order.
const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusReview     Status = "Review"
	StatusCompleted  Status = "Completed"
)

// Statuses returns every status in board order.
func Statuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusReview, StatusCompleted}
}

// Rank returns the board position of the status, or -1 when unknown.
func (s Status) Rank() int {
	for idx, candidate := range Statuses() {
		if candidate == s {
			return idx
		}
	}
	return -1
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// Slug returns the compact identifier used in URLs and config.
func (s Status) Slug() string {
	switch s {
	case StatusToDo:
		return "todo"
	case StatusInProgress:
		return "in_progress"
	case StatusReview:
		return "review"
	case StatusCompleted:
		return "completed"
	default:
		return ""
	}
}

// ParseStatus accepts display labels ("In Progress") and slugs ("in_progress", "in-progress").
func ParseStatus(raw string) (Status, error) {
	norm := normalizeEnumToken(raw)
	for _, status := range Statuses() {
		if norm == normalizeEnumToken(string(status)) || norm == normalizeEnumToken(status.Slug()) {
			return status, nil
		}
	}
	switch norm {
	case "done":
		return StatusCompleted, nil
	case "progress", "doing":
		return StatusInProgress, nil
	}
	return "", ErrInvalidStatus
}

// Priority ranks task urgency.
type Priority string

// Priority values from most to least urgent.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities returns every priority from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank returns 0 for High through 2 for Low, or -1 when unknown.
func (p Priority) Rank() int {
	for idx, candidate := range Priorities() {
		if candidate == p {
			return idx
		}
	}
	return -1
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// ParsePriority is case-insensitive.
func ParsePriority(raw string) (Priority, error) {
	norm := normalizeEnumToken(raw)
	for _, priority := range Priorities() {
		if norm == normalizeEnumToken(string(priority)) {
			return priority, nil
		}
	}
	return "", ErrInvalidPriority
}

// normalizeEnumToken folds case and separators so "In Progress", "in_progress" and "in-progress" compare equal.
func normalizeEnumToken(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return replacer.Replace(raw)
}
