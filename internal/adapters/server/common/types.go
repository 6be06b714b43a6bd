// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing tasks or notifications.
var ErrNotFound = errors.New("not found")

// ErrValidation reports a rejected create-task form.
var ErrValidation = errors.New("validation failed")

// FieldErrors carries inline per-field messages for a rejected form.
type FieldErrors struct {
	Fields map[string]string
}

// Error joins the field messages in key order.
func (e *FieldErrors) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, key := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap matches errors.Is(err, ErrValidation).
func (e *FieldErrors) Unwrap() error {
	return ErrValidation
}

// Assignee is the wire form of a task owner.
type Assignee struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Task is the wire form of one task.
type Task struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Assignee          Assignee  `json:"assignee"`
	Priority          string    `json:"priority"`
	Status            string    `json:"status"`
	StartDate         string    `json:"start_date,omitempty"`
	EndDate           string    `json:"end_date,omitempty"`
	Progress          int       `json:"progress"`
	Project           string    `json:"project,omitempty"`
	Subtasks          int       `json:"subtasks"`
	CompletedSubtasks int       `json:"completed_subtasks"`
	Description       string    `json:"description,omitempty"`
	TimeTracked       string    `json:"time_tracked,omitempty"`
	TimeEstimated     string    `json:"time_estimated,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Notification is the wire form of one in-app notification.
type Notification struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id,omitempty"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// ChangeEvent is the wire form of one activity row.
type ChangeEvent struct {
	ID         int64             `json:"id"`
	TaskID     string            `json:"task_id,omitempty"`
	Operation  string            `json:"operation"`
	Actor      string            `json:"actor"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// ChartPoint is one chart tuple.
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Extra int    `json:"extra,omitempty"`
}

// Analytics is the dashboard summary payload.
type Analytics struct {
	Total          int          `json:"total"`
	Completed      int          `json:"completed"`
	Overdue        int          `json:"overdue"`
	CompletionRate int          `json:"completion_rate"`
	ByStatus       []ChartPoint `json:"by_status"`
	ByPriority     []ChartPoint `json:"by_priority"`
	Workload       []ChartPoint `json:"workload"`
	Projects       []ChartPoint `json:"projects"`
}

// ListTasksRequest carries list filters. Values within one category are ORed;
// categories are ANDed.
type ListTasksRequest struct {
	Priorities []string
	Assignees  []string
	Projects   []string
	Statuses   []string
	Query      string
	From       string
	To         string
	Sort       string
	Direction  string
}

// CreateTaskRequest carries the create-task form.
type CreateTaskRequest struct {
	ID                string `json:"id,omitempty"`
	Title             string `json:"title"`
	Assignee          string `json:"assignee,omitempty"`
	Avatar            string `json:"avatar,omitempty"`
	Priority          string `json:"priority,omitempty"`
	Status            string `json:"status,omitempty"`
	StartDate         string `json:"start_date,omitempty"`
	EndDate           string `json:"end_date,omitempty"`
	Project           string `json:"project,omitempty"`
	Progress          int    `json:"progress,omitempty"`
	Subtasks          int    `json:"subtasks,omitempty"`
	CompletedSubtasks int    `json:"completed_subtasks,omitempty"`
	Description       string `json:"description,omitempty"`
	TimeEstimated     string `json:"time_estimated,omitempty"`
	Actor             string `json:"-"`
}

// SetTaskStatusRequest moves one task to a new status.
type SetTaskStatusRequest struct {
	TaskID string
	Status string
	Actor  string
}

// ListActivityRequest scopes the activity feed.
type ListActivityRequest struct {
	TaskID string
	Limit  int
}

// TaskService exposes task reads and writes to transports.
type TaskService interface {
	ListTasks(context.Context, ListTasksRequest) ([]Task, error)
	GetTask(context.Context, string) (Task, error)
	CreateTask(context.Context, CreateTaskRequest) (Task, error)
	SetTaskStatus(context.Context, SetTaskStatusRequest) (Task, error)
	Analytics(context.Context) (Analytics, error)
}

// NotificationService exposes the notification inbox.
type NotificationService interface {
	ListNotifications(context.Context, bool) ([]Notification, error)
	MarkNotificationRead(context.Context, string) (Notification, error)
	MarkAllNotificationsRead(context.Context) (int, error)
}

// ActivityService exposes the change feed.
type ActivityService interface {
	ListActivity(context.Context, ListActivityRequest) ([]ChangeEvent, error)
}

// Service is everything the server transports need.
type Service interface {
	TaskService
	NotificationService
	ActivityService
}
