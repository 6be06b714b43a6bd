package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "taskboard.snapshot.v1"

// Snapshot is the portable JSON export of a board.
type Snapshot struct {
	Version     string               `json:"version"`
	ExportedAt  time.Time            `json:"exported_at"`
	Tasks       []SnapshotTask       `json:"tasks"`
	Preferences []SnapshotPreference `json:"preferences,omitempty"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	AssigneeName      string    `json:"assignee_name,omitempty"`
	AssigneeAvatar    string    `json:"assignee_avatar,omitempty"`
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

// SnapshotPreference is one persisted key/value preference.
type SnapshotPreference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// snapshotPreferenceKeys lists the preferences carried by exports.
var snapshotPreferenceKeys = []string{PreferenceViewMode, PreferenceDisplayName}

// Preference keys written by the TUI.
const (
	PreferenceViewMode    = "ui.view_mode"
	PreferenceDisplayName = "identity.display_name"
)

// ExportSnapshot captures every task plus the known preferences.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Tasks:      make([]SnapshotTask, 0, len(tasks)),
	}
	for _, task := range tasks {
		snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
	}
	for _, key := range snapshotPreferenceKeys {
		value, err := s.repo.GetPreference(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Snapshot{}, err
		}
		snap.Preferences = append(snap.Preferences, SnapshotPreference{Key: key, Value: value})
	}
	return snap, nil
}

// ImportSnapshot upserts every snapshot task and preference and returns the
// number of tasks written. The snapshot is validated before anything is written.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) (int, error) {
	tasks, err := snap.Validate()
	if err != nil {
		return 0, err
	}
	now := s.clock()
	actor := s.actorFor(ctx)
	for _, task := range tasks {
		write := TaskWrite{Event: domain.ChangeEvent{
			TaskID:     task.ID,
			Operation:  domain.ChangeOperationImport,
			Actor:      actor,
			Metadata:   map[string]string{"source": "snapshot", "version": SnapshotVersion},
			OccurredAt: now.UTC(),
		}}
		if _, err := s.repo.GetTask(ctx, task.ID); err == nil {
			if err := s.repo.UpdateTask(ctx, task, write); err != nil {
				return 0, err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return 0, err
		}
		if err := s.repo.CreateTask(ctx, task, write); err != nil {
			return 0, err
		}
	}
	for _, pref := range snap.Preferences {
		if err := s.SetPreference(ctx, pref.Key, pref.Value); err != nil {
			return 0, err
		}
	}
	return len(tasks), nil
}

// Validate checks version, ids and every task field, returning domain tasks.
func (s Snapshot) Validate() ([]domain.Task, error) {
	if s.Version != "" && s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	seen := make(map[string]struct{}, len(s.Tasks))
	out := make([]domain.Task, 0, len(s.Tasks))
	for i, st := range s.Tasks {
		task, err := st.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: tasks[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		if _, dup := seen[task.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %q", ErrInvalidSnapshot, task.ID)
		}
		seen[task.ID] = struct{}{}
		out = append(out, task)
	}
	for i, pref := range s.Preferences {
		if strings.TrimSpace(pref.Key) == "" {
			return nil, fmt.Errorf("%w: preferences[%d].key is required", ErrInvalidSnapshot, i)
		}
	}
	return out, nil
}

// snapshotTaskFromDomain converts a task into its export form.
func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:                t.ID,
		Title:             t.Title,
		AssigneeName:      t.Assignee.Name,
		AssigneeAvatar:    t.Assignee.Avatar,
		Priority:          string(t.Priority),
		Status:            string(t.Status),
		StartDate:         domain.FormatDate(t.StartDate),
		EndDate:           domain.FormatDate(t.EndDate),
		Progress:          t.Progress,
		Project:           t.Project,
		Subtasks:          t.Subtasks,
		CompletedSubtasks: t.CompletedSubtasks,
		Description:       t.Description,
		TimeTracked:       t.TimeTracked,
		TimeEstimated:     t.TimeEstimated,
		CreatedAt:         t.CreatedAt.UTC(),
		UpdatedAt:         t.UpdatedAt.UTC(),
	}
}

// toDomain parses and validates one exported task, keeping its timestamps.
func (t SnapshotTask) toDomain() (domain.Task, error) {
	priority, err := domain.ParsePriority(t.Priority)
	if err != nil {
		return domain.Task{}, err
	}
	status, err := domain.ParseStatus(t.Status)
	if err != nil {
		return domain.Task{}, err
	}
	start, err := domain.ParseDate(t.StartDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := domain.ParseDate(t.EndDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("end_date: %w", err)
	}
	created := t.CreatedAt
	if created.IsZero() {
		created = t.UpdatedAt
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:                t.ID,
		Title:             t.Title,
		Assignee:          domain.Assignee{Name: t.AssigneeName, Avatar: t.AssigneeAvatar},
		Priority:          priority,
		Status:            status,
		StartDate:         start,
		EndDate:           end,
		Progress:          t.Progress,
		Project:           t.Project,
		Subtasks:          t.Subtasks,
		CompletedSubtasks: t.CompletedSubtasks,
		Description:       t.Description,
		TimeTracked:       t.TimeTracked,
		TimeEstimated:     t.TimeEstimated,
	}, created)
	if err != nil {
		return domain.Task{}, err
	}
	if !t.UpdatedAt.IsZero() {
		task.UpdatedAt = t.UpdatedAt.UTC()
	}
	return task, nil
}
