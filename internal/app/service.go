package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultActor         string
	NotifyOnStatusChange bool
	ActivityLimit        int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service coordinates task persistence, activity and notifications.
type Service struct {
	repo          Repository
	idGen         IDGenerator
	clock         Clock
	defaultActor  string
	notify        bool
	activityLimit int
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if strings.TrimSpace(cfg.DefaultActor) == "" {
		cfg.DefaultActor = DefaultActor
	}
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = 50
	}
	return &Service{
		repo:          repo,
		idGen:         idGen,
		clock:         clock,
		defaultActor:  strings.TrimSpace(cfg.DefaultActor),
		notify:        cfg.NotifyOnStatusChange,
		activityLimit: cfg.ActivityLimit,
	}
}

// CreateTask validates the form, persists the task and records a create event.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, err
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.idGen()
	}
	if _, err := s.repo.GetTask(ctx, id); err == nil {
		return domain.Task{}, &ValidationError{Fields: map[string]string{"id": "is already in use"}}
	} else if !errors.Is(err, ErrNotFound) {
		return domain.Task{}, err
	}

	now := s.clock()
	task, err := domain.NewTask(in.toTaskInput(id), now)
	if err != nil {
		return domain.Task{}, err
	}
	write := TaskWrite{Event: domain.ChangeEvent{
		TaskID:    task.ID,
		Operation: domain.ChangeOperationCreate,
		Actor:     s.actorFor(ctx),
		Metadata: map[string]string{
			"title":  task.Title,
			"status": string(task.Status),
		},
		OccurredAt: now.UTC(),
	}}
	if err := s.repo.CreateTask(ctx, task, write); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// GetTask returns one task.
func (s *Service) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	return s.repo.GetTask(ctx, strings.TrimSpace(taskID))
}

// ListTasksFilter narrows and orders ListTasks with the same rules the board views use.
type ListTasksFilter struct {
	Filter board.Filter
	Query  string
	Sort   board.SortState
}

// ListTasks lists tasks matching filter in the requested order.
func (s *Service) ListTasks(ctx context.Context, filter ListTasksFilter) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return board.SortTasks(board.FilterTasks(tasks, filter.Filter, filter.Query), filter.Sort), nil
}

// SetTaskStatus moves one task to status. Only the status changes; every
// transition is allowed. Setting the current status again is a no-op.
func (s *Service) SetTaskStatus(ctx context.Context, taskID string, status domain.Status) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, domain.ErrInvalidStatus
	}
	actor := s.actorFor(ctx)
	return s.repo.MutateTask(ctx, strings.TrimSpace(taskID), func(task *domain.Task) (*TaskWrite, error) {
		from := task.Status
		if from == status {
			return nil, nil
		}
		now := s.clock()
		if err := task.SetStatus(status, now); err != nil {
			return nil, err
		}
		write := &TaskWrite{Event: domain.ChangeEvent{
			TaskID:    task.ID,
			Operation: domain.ChangeOperationStatus,
			Actor:     actor,
			Metadata: map[string]string{
				"from_status": string(from),
				"to_status":   string(status),
			},
			OccurredAt: now.UTC(),
		}}
		if s.notify {
			note, err := domain.NewNotification(
				s.idGen(),
				task.ID,
				fmt.Sprintf("%s moved to %s", task.Title, status),
				fmt.Sprintf("%s moved this task from %s to %s.", actor, from, status),
				now,
			)
			if err != nil {
				return nil, err
			}
			write.Notification = &note
		}
		return write, nil
	})
}

// UpdateTaskProgress stores progress and completed subtasks. Progress is not
// derived from the subtask counts.
func (s *Service) UpdateTaskProgress(ctx context.Context, taskID string, progress, completedSubtasks int) (domain.Task, error) {
	actor := s.actorFor(ctx)
	return s.repo.MutateTask(ctx, strings.TrimSpace(taskID), func(task *domain.Task) (*TaskWrite, error) {
		prevProgress, prevCompleted := task.Progress, task.CompletedSubtasks
		now := s.clock()
		if err := task.SetProgress(progress, completedSubtasks, now); err != nil {
			return nil, err
		}
		return &TaskWrite{Event: domain.ChangeEvent{
			TaskID:    task.ID,
			Operation: domain.ChangeOperationProgress,
			Actor:     actor,
			Metadata: map[string]string{
				"from_progress":  strconv.Itoa(prevProgress),
				"to_progress":    strconv.Itoa(progress),
				"from_completed": strconv.Itoa(prevCompleted),
				"to_completed":   strconv.Itoa(completedSubtasks),
			},
			OccurredAt: now.UTC(),
		}}, nil
	})
}

// ListChangeEvents returns recent activity, newest first. A blank taskID lists
// activity across every task; limit <= 0 uses the configured default.
func (s *Service) ListChangeEvents(ctx context.Context, taskID string, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = s.activityLimit
	}
	return s.repo.ListChangeEvents(ctx, strings.TrimSpace(taskID), limit)
}

// ListNotifications lists notifications newest first.
func (s *Service) ListNotifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	return s.repo.ListNotifications(ctx, unreadOnly)
}

// UnreadNotificationCount backs the header badge.
func (s *Service) UnreadNotificationCount(ctx context.Context) (int, error) {
	unread, err := s.repo.ListNotifications(ctx, true)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkNotificationRead marks one notification read. Repeated calls keep the first read time.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID string) (domain.Notification, error) {
	note, err := s.repo.GetNotification(ctx, strings.TrimSpace(notificationID))
	if err != nil {
		return domain.Notification{}, err
	}
	if !note.Unread() {
		return note, nil
	}
	note.MarkRead(s.clock())
	if err := s.repo.UpdateNotification(ctx, note); err != nil {
		return domain.Notification{}, err
	}
	return note, nil
}

// MarkAllNotificationsRead marks every unread notification in one write and
// returns how many changed.
func (s *Service) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	return s.repo.MarkNotificationsRead(ctx, s.clock())
}

// GetPreference returns a stored preference, or ErrNotFound.
func (s *Service) GetPreference(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidPreference
	}
	return s.repo.GetPreference(ctx, key)
}

// SetPreference stores a preference value, replacing any previous value.
func (s *Service) SetPreference(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidPreference
	}
	return s.repo.SetPreference(ctx, key, value)
}

// SeedFixtures loads inputs into an empty store and returns how many tasks were
// created. A store that already holds tasks is left untouched.
func (s *Service) SeedFixtures(ctx context.Context, inputs []domain.TaskInput) (int, error) {
	existing, err := s.repo.ListTasks(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	now := s.clock()
	actor := s.actorFor(ctx)
	for idx, in := range inputs {
		if strings.TrimSpace(in.ID) == "" {
			in.ID = s.idGen()
		}
		task, err := domain.NewTask(in, now)
		if err != nil {
			return idx, fmt.Errorf("seed task %q: %w", in.ID, err)
		}
		write := TaskWrite{Event: domain.ChangeEvent{
			TaskID:     task.ID,
			Operation:  domain.ChangeOperationImport,
			Actor:      actor,
			Metadata:   map[string]string{"source": "fixtures"},
			OccurredAt: now.UTC(),
		}}
		if err := s.repo.CreateTask(ctx, task, write); err != nil {
			return idx, err
		}
	}
	return len(inputs), nil
}
