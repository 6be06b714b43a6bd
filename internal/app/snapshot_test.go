package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
)

func TestExportSnapshotIncludesTasksAndPreferences(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	seedTask(t, repo, domain.TaskInput{
		ID: "t1", Title: "Task A", Priority: domain.PriorityLow,
		StartDate: now, EndDate: now.AddDate(0, 0, 7), Project: "Alpha",
	}, now)
	seedTask(t, repo, domain.TaskInput{ID: "t2", Title: "Task B", Status: domain.StatusReview}, now)
	repo.prefs[PreferenceViewMode] = "focus"

	svc := NewService(repo, nil, func() time.Time { return now.Add(3 * time.Minute) }, ServiceConfig{})
	snap, err := svc.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if snap.Version != SnapshotVersion || !snap.ExportedAt.Equal(now.Add(3*time.Minute)) {
		t.Fatalf("unexpected header %q %v", snap.Version, snap.ExportedAt)
	}
	if len(snap.Tasks) != 2 || snap.Tasks[0].ID != "t1" || snap.Tasks[0].EndDate != "2026-03-01" {
		t.Fatalf("unexpected tasks %#v", snap.Tasks)
	}
	if snap.Tasks[1].Status != "Review" || snap.Tasks[1].Priority != "Medium" {
		t.Fatalf("unexpected enums %#v", snap.Tasks[1])
	}
	if len(snap.Preferences) != 1 || snap.Preferences[0].Value != "focus" {
		t.Fatalf("unexpected preferences %#v", snap.Preferences)
	}
}

func TestImportSnapshotCreatesAndUpdates(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	seedTask(t, repo, domain.TaskInput{ID: "t1", Title: "Old Task"}, now)

	raw := `{
		"version": "taskboard.snapshot.v1",
		"tasks": [
			{"id": "t1", "title": "New Task", "priority": "High", "status": "in_progress", "progress": 40,
			 "created_at": "2026-02-01T00:00:00Z", "updated_at": "2026-02-20T00:00:00Z"},
			{"id": "t2", "title": "Imported", "priority": "low", "status": "Completed", "subtasks": 2, "completed_subtasks": 2,
			 "start_date": "2026-01-01", "end_date": "2026-01-31"}
		],
		"preferences": [{"key": "ui.view_mode", "value": "kanban"}]
	}`
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	svc := NewService(repo, nil, func() time.Time { return now }, ServiceConfig{})
	n, err := svc.ImportSnapshot(context.Background(), snap)
	if err != nil || n != 2 {
		t.Fatalf("ImportSnapshot() = %d, %v", n, err)
	}
	updated := repo.tasks["t1"]
	if updated.Title != "New Task" || updated.Status != domain.StatusInProgress || updated.Progress != 40 {
		t.Fatalf("unexpected updated task %#v", updated)
	}
	if !updated.UpdatedAt.Equal(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected updated_at preserved, got %v", updated.UpdatedAt)
	}
	created := repo.tasks["t2"]
	if created.Priority != domain.PriorityLow || domain.FormatDate(created.EndDate) != "2026-01-31" {
		t.Fatalf("unexpected created task %#v", created)
	}
	if repo.prefs[PreferenceViewMode] != "kanban" {
		t.Fatalf("expected preference imported, got %#v", repo.prefs)
	}
	last := repo.events[len(repo.events)-1]
	if last.Operation != domain.ChangeOperationImport {
		t.Fatalf("expected import event, got %#v", last)
	}
}

func TestImportSnapshotValidation(t *testing.T) {
	cases := map[string]Snapshot{
		"version": {Version: "other.v9"},
		"status":  {Tasks: []SnapshotTask{{ID: "a", Title: "a", Priority: "High", Status: "Blocked"}}},
		"dup": {Tasks: []SnapshotTask{
			{ID: "a", Title: "a", Priority: "High", Status: "To Do"},
			{ID: "a", Title: "b", Priority: "High", Status: "To Do"},
		}},
		"subtasks": {Tasks: []SnapshotTask{{ID: "a", Title: "a", Priority: "High", Status: "To Do", Subtasks: 1, CompletedSubtasks: 2}}},
		"pref":     {Preferences: []SnapshotPreference{{Key: " "}}},
	}
	for name, snap := range cases {
		repo := newFakeRepo()
		svc := NewService(repo, nil, nil, ServiceConfig{})
		if _, err := svc.ImportSnapshot(context.Background(), snap); !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("%s: expected ErrInvalidSnapshot, got %v", name, err)
		}
		if len(repo.tasks) != 0 {
			t.Fatalf("%s: expected nothing written", name)
		}
	}
}
