package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/evanschultz/taskboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/taskboard/internal/app"
)

// newAdapterForTest builds an adapter over an in-memory sqlite-backed service.
func newAdapterForTest(t *testing.T) *AppServiceAdapter {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	next := 0
	idGen := func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	}
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := app.NewService(repo, idGen, func() time.Time { return now }, app.ServiceConfig{NotifyOnStatusChange: true})
	return NewAppServiceAdapter(svc)
}

// createForTest stores one task through the adapter.
func createForTest(t *testing.T, adapter *AppServiceAdapter, in CreateTaskRequest) Task {
	t.Helper()
	task, err := adapter.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateTask(%q) error = %v", in.Title, err)
	}
	return task
}

// TestAdapterListTasksAppliesFiltersAndSort verifies wire filters reach the board rules.
func TestAdapterListTasksAppliesFiltersAndSort(t *testing.T) {
	adapter := newAdapterForTest(t)
	createForTest(t, adapter, CreateTaskRequest{ID: "t1", Title: "Write docs", Priority: "low", Status: "in_progress", Assignee: "Ana Ruiz"})
	createForTest(t, adapter, CreateTaskRequest{ID: "t2", Title: "Build API", Priority: "high", Status: "In Progress", Assignee: "Bo Chen"})
	createForTest(t, adapter, CreateTaskRequest{ID: "t3", Title: "Audit logs", Priority: "high", Status: "todo", Assignee: "Ana Ruiz"})

	got, err := adapter.ListTasks(context.Background(), ListTasksRequest{
		Statuses:  []string{"in_progress"},
		Sort:      "title",
		Direction: "desc",
	})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" {
		t.Fatalf("unexpected tasks %#v", got)
	}
	if got[0].Status != "In Progress" || got[0].Assignee.Avatar != "AR" {
		t.Fatalf("unexpected wire mapping %#v", got[0])
	}

	got, err = adapter.ListTasks(context.Background(), ListTasksRequest{
		Assignees:  []string{"Ana Ruiz"},
		Priorities: []string{"High"},
	})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "t3" {
		t.Fatalf("expected only t3, got %#v", got)
	}
}

// TestAdapterListTasksRejectsBadFilters verifies malformed filter values fail closed.
func TestAdapterListTasksRejectsBadFilters(t *testing.T) {
	adapter := newAdapterForTest(t)
	cases := map[string]ListTasksRequest{
		"status":    {Statuses: []string{"blocked"}},
		"priority":  {Priorities: []string{"urgent"}},
		"sort":      {Sort: "color"},
		"direction": {Sort: "title", Direction: "sideways"},
		"from":      {From: "03/01/2026"},
		"range":     {From: "2026-03-10", To: "2026-03-01"},
	}
	for name, req := range cases {
		if _, err := adapter.ListTasks(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", name, err)
		}
	}
}

// TestAdapterCreateTaskMapsFieldErrors verifies form failures keep their field map.
func TestAdapterCreateTaskMapsFieldErrors(t *testing.T) {
	adapter := newAdapterForTest(t)
	_, err := adapter.CreateTask(context.Background(), CreateTaskRequest{
		Title:     " ",
		Priority:  "urgent",
		StartDate: "2026-03-10",
		EndDate:   "2026-03-01",
	})
	var fieldErrs *FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, field := range []string{"title", "priority", "end_date"} {
		if fieldErrs.Fields[field] == "" {
			t.Fatalf("missing %s message in %#v", field, fieldErrs.Fields)
		}
	}
}

// TestAdapterSetTaskStatusRecordsActorAndNotification verifies status changes are attributed.
func TestAdapterSetTaskStatusRecordsActorAndNotification(t *testing.T) {
	adapter := newAdapterForTest(t)
	createForTest(t, adapter, CreateTaskRequest{ID: "t1", Title: "Write docs"})

	task, err := adapter.SetTaskStatus(context.Background(), SetTaskStatusRequest{TaskID: "t1", Status: "review", Actor: "agent-7"})
	if err != nil {
		t.Fatalf("SetTaskStatus() error = %v", err)
	}
	if task.Status != "Review" {
		t.Fatalf("status = %q, want Review", task.Status)
	}

	events, err := adapter.ListActivity(context.Background(), ListActivityRequest{TaskID: "t1"})
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if len(events) != 2 || events[0].Operation != "status" || events[0].Actor != "agent-7" {
		t.Fatalf("unexpected activity %#v", events)
	}
	if events[0].Metadata["to_status"] != "Review" {
		t.Fatalf("unexpected metadata %#v", events[0].Metadata)
	}

	notes, err := adapter.ListNotifications(context.Background(), true)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(notes) != 1 || notes[0].TaskID != "t1" || notes[0].ReadAt != nil {
		t.Fatalf("unexpected notifications %#v", notes)
	}
	read, err := adapter.MarkNotificationRead(context.Background(), notes[0].ID)
	if err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if read.ReadAt == nil {
		t.Fatalf("expected read_at to be set")
	}
	count, err := adapter.MarkAllNotificationsRead(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("MarkAllNotificationsRead() = %d, %v; want 0, nil", count, err)
	}
}

// TestAdapterErrorMapping verifies missing and malformed inputs map to transport sentinels.
func TestAdapterErrorMapping(t *testing.T) {
	adapter := newAdapterForTest(t)
	if _, err := adapter.GetTask(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTask() error = %v, want ErrNotFound", err)
	}
	if _, err := adapter.SetTaskStatus(context.Background(), SetTaskStatusRequest{TaskID: "missing", Status: "done"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetTaskStatus(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := adapter.SetTaskStatus(context.Background(), SetTaskStatusRequest{TaskID: "t1", Status: "blocked"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("SetTaskStatus(blocked) error = %v, want ErrInvalidRequest", err)
	}
	if _, err := adapter.GetTask(context.Background(), " "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("GetTask(blank) error = %v, want ErrInvalidRequest", err)
	}
	if _, err := adapter.MarkNotificationRead(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkNotificationRead() error = %v, want ErrNotFound", err)
	}

	var unconfigured *AppServiceAdapter
	if _, err := unconfigured.ListTasks(context.Background(), ListTasksRequest{}); err == nil {
		t.Fatalf("expected error from unconfigured adapter")
	}
}

// TestAdapterAnalytics verifies chart series are mapped for every status.
func TestAdapterAnalytics(t *testing.T) {
	adapter := newAdapterForTest(t)
	createForTest(t, adapter, CreateTaskRequest{ID: "t1", Title: "Write docs", Status: "completed"})
	createForTest(t, adapter, CreateTaskRequest{ID: "t2", Title: "Build API"})

	got, err := adapter.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if got.Total != 2 || got.Completed != 1 || got.CompletionRate != 50 {
		t.Fatalf("unexpected totals %#v", got)
	}
	if len(got.ByStatus) != 4 {
		t.Fatalf("expected 4 status points, got %#v", got.ByStatus)
	}
}
