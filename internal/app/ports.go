package app

import (
	"context"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
)

// TaskWrite bundles the activity rows persisted in the same transaction as a task write.
type TaskWrite struct {
	Event        domain.ChangeEvent
	Notification *domain.Notification
}

// TaskMutation edits a task that was read inside the write transaction. A nil
// write means nothing changed and the row is left untouched.
type TaskMutation func(*domain.Task) (*TaskWrite, error)

// Repository is the persistence port used by Service.
type Repository interface {
	CreateTask(context.Context, domain.Task, TaskWrite) error
	UpdateTask(context.Context, domain.Task, TaskWrite) error
	// MutateTask reads, edits and writes one task in a single transaction and
	// returns the stored result.
	MutateTask(context.Context, string, TaskMutation) (domain.Task, error)
	GetTask(context.Context, string) (domain.Task, error)
	// ListTasks returns every task in insertion order.
	ListTasks(context.Context) ([]domain.Task, error)
	// ListChangeEvents returns newest-first events, optionally for one task.
	ListChangeEvents(context.Context, string, int) ([]domain.ChangeEvent, error)

	CreateNotification(context.Context, domain.Notification) error
	UpdateNotification(context.Context, domain.Notification) error
	// MarkNotificationsRead stamps every unread notification and returns how many changed.
	MarkNotificationsRead(context.Context, time.Time) (int, error)
	GetNotification(context.Context, string) (domain.Notification, error)
	// ListNotifications returns newest-first notifications.
	ListNotifications(context.Context, bool) ([]domain.Notification, error)

	GetPreference(context.Context, string) (string, error)
	SetPreference(context.Context, string, string) error
}
