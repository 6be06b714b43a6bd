package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

type fakeRepo struct {
	order         []string
	tasks         map[string]domain.Task
	events        []domain.ChangeEvent
	notifications map[string]domain.Notification
	noteOrder     []string
	prefs         map[string]string
	markErr       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:         map[string]domain.Task{},
		notifications: map[string]domain.Notification{},
		prefs:         map[string]string{},
	}
}

func (f *fakeRepo) record(w TaskWrite) {
	w.Event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, w.Event)
	if w.Notification != nil {
		f.notifications[w.Notification.ID] = *w.Notification
		f.noteOrder = append(f.noteOrder, w.Notification.ID)
	}
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task, w TaskWrite) error {
	f.tasks[t.ID] = t
	f.order = append(f.order, t.ID)
	f.record(w)
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task, w TaskWrite) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	f.tasks[t.ID] = t
	f.record(w)
	return nil
}

func (f *fakeRepo) MutateTask(_ context.Context, id string, fn TaskMutation) (domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	w, err := fn(&t)
	if err != nil {
		return domain.Task{}, err
	}
	if w != nil {
		f.tasks[id] = t
		f.record(*w)
	}
	return t, nil
}

func (f *fakeRepo) GetTask(_ context.Context, id string) (domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) ListTasks(context.Context) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.tasks[id])
	}
	return out, nil
}

func (f *fakeRepo) ListChangeEvents(_ context.Context, taskID string, limit int) ([]domain.ChangeEvent, error) {
	out := make([]domain.ChangeEvent, 0)
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if taskID == "" || f.events[i].TaskID == taskID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateNotification(_ context.Context, n domain.Notification) error {
	f.notifications[n.ID] = n
	f.noteOrder = append(f.noteOrder, n.ID)
	return nil
}

func (f *fakeRepo) UpdateNotification(_ context.Context, n domain.Notification) error {
	if _, ok := f.notifications[n.ID]; !ok {
		return ErrNotFound
	}
	f.notifications[n.ID] = n
	return nil
}

func (f *fakeRepo) MarkNotificationsRead(_ context.Context, readAt time.Time) (int, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	changed := 0
	for id, n := range f.notifications {
		if n.Unread() {
			n.MarkRead(readAt)
			f.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (f *fakeRepo) GetNotification(_ context.Context, id string) (domain.Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return domain.Notification{}, ErrNotFound
	}
	return n, nil
}

func (f *fakeRepo) ListNotifications(_ context.Context, unreadOnly bool) ([]domain.Notification, error) {
	out := make([]domain.Notification, 0)
	for i := len(f.noteOrder) - 1; i >= 0; i-- {
		n := f.notifications[f.noteOrder[i]]
		if unreadOnly && !n.Unread() {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeRepo) GetPreference(_ context.Context, key string) (string, error) {
	v, ok := f.prefs[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *fakeRepo) SetPreference(_ context.Context, key, value string) error {
	f.prefs[key] = value
	return nil
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(repo *fakeRepo, now time.Time) *Service {
	return NewService(repo, sequentialIDs(), func() time.Time { return now }, ServiceConfig{NotifyOnStatusChange: true})
}

func seedTask(t *testing.T, repo *fakeRepo, in domain.TaskInput, now time.Time) domain.Task {
	t.Helper()
	task, err := domain.NewTask(in, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if err := repo.CreateTask(context.Background(), task, TaskWrite{}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	return task
}

func TestCreateTaskDefaultsAndEvent(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	ctx := WithActor(context.Background(), " Sarah ")
	task, err := svc.CreateTask(ctx, CreateTaskInput{
		Title:        "Implement user authentication system",
		AssigneeName: "Sarah Johnson",
		StartDate:    "2026-03-01",
		EndDate:      "2026-03-15",
		Subtasks:     5,
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.ID != "id-1" || task.Priority != domain.PriorityMedium || task.Status != domain.StatusToDo {
		t.Fatalf("unexpected task defaults %#v", task)
	}
	if task.Assignee.Avatar != "SJ" {
		t.Fatalf("expected derived avatar SJ, got %q", task.Assignee.Avatar)
	}
	if domain.FormatDate(task.EndDate) != "2026-03-15" {
		t.Fatalf("unexpected end date %v", task.EndDate)
	}
	if len(repo.events) != 1 || repo.events[0].Operation != domain.ChangeOperationCreate || repo.events[0].Actor != "Sarah" {
		t.Fatalf("unexpected create events %#v", repo.events)
	}
}

func TestCreateTaskValidationCollectsFields(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Now())
	_, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:             "   ",
		Priority:          "urgent",
		StartDate:         "2026-03-10",
		EndDate:           "2026-03-01",
		Progress:          120,
		Subtasks:          2,
		CompletedSubtasks: 3,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation in chain, got %v", err)
	}
	for _, field := range []string{"title", "priority", "end_date", "progress", "completed_subtasks"} {
		if verr.Fields[field] == "" {
			t.Fatalf("expected message for %s, got %#v", field, verr.Fields)
		}
	}
	if _, ok := verr.Fields["start_date"]; ok {
		t.Fatalf("did not expect start_date message, got %#v", verr.Fields)
	}
}

func TestCreateTaskRejectsBadDateAndDuplicateID(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	_, err := svc.CreateTask(context.Background(), CreateTaskInput{Title: "x", StartDate: "03/01/2026"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["start_date"] == "" {
		t.Fatalf("expected start_date message, got %v", err)
	}
	if _, err := svc.CreateTask(context.Background(), CreateTaskInput{ID: "t1", Title: "first"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	_, err = svc.CreateTask(context.Background(), CreateTaskInput{ID: "t1", Title: "second"})
	if !errors.As(err, &verr) || verr.Fields["id"] == "" {
		t.Fatalf("expected id conflict message, got %v", err)
	}
}

func TestSetTaskStatusRecordsEventAndNotification(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	before := seedTask(t, repo, domain.TaskInput{ID: "1", Title: "Design mobile app wireframes", Progress: 60, Subtasks: 4, CompletedSubtasks: 2}, now)
	later := now.Add(time.Hour)
	svc := newTestService(repo, later)

	got, err := svc.SetTaskStatus(context.Background(), "1", domain.StatusReview)
	if err != nil {
		t.Fatalf("SetTaskStatus() error = %v", err)
	}
	want := before
	want.Status = domain.StatusReview
	want.UpdatedAt = later
	if got != want {
		t.Fatalf("expected only status and updated_at to change:\n got %#v\nwant %#v", got, want)
	}
	last := repo.events[len(repo.events)-1]
	if last.Operation != domain.ChangeOperationStatus || last.Metadata["from_status"] != "To Do" || last.Metadata["to_status"] != "Review" {
		t.Fatalf("unexpected status event %#v", last)
	}
	count, err := svc.UnreadNotificationCount(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("UnreadNotificationCount() = %d, %v", count, err)
	}

	// Completed back to To Do is allowed.
	if _, err := svc.SetTaskStatus(context.Background(), "1", domain.StatusCompleted); err != nil {
		t.Fatalf("SetTaskStatus(completed) error = %v", err)
	}
	if _, err := svc.SetTaskStatus(context.Background(), "1", domain.StatusToDo); err != nil {
		t.Fatalf("SetTaskStatus(todo) error = %v", err)
	}
	eventCount := len(repo.events)
	if _, err := svc.SetTaskStatus(context.Background(), "1", domain.StatusToDo); err != nil {
		t.Fatalf("SetTaskStatus(same) error = %v", err)
	}
	if len(repo.events) != eventCount {
		t.Fatal("expected same-status update to skip activity")
	}
}

func TestSetTaskStatusErrors(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())
	if _, err := svc.SetTaskStatus(context.Background(), "missing", domain.StatusReview); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.SetTaskStatus(context.Background(), "missing", domain.Status("Blocked")); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if len(repo.events) != 0 || len(repo.notifications) != 0 {
		t.Fatal("expected no activity for rejected updates")
	}
}

func TestSetTaskStatusWithoutNotifications(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	seedTask(t, repo, domain.TaskInput{ID: "1", Title: "quiet"}, now)
	svc := NewService(repo, sequentialIDs(), func() time.Time { return now }, ServiceConfig{})
	if _, err := svc.SetTaskStatus(context.Background(), "1", domain.StatusCompleted); err != nil {
		t.Fatalf("SetTaskStatus() error = %v", err)
	}
	if len(repo.notifications) != 0 {
		t.Fatalf("expected notifications disabled, got %#v", repo.notifications)
	}
}

func TestUpdateTaskProgressIsIndependentOfSubtasks(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	seedTask(t, repo, domain.TaskInput{ID: "1", Title: "t", Subtasks: 4}, now)
	svc := newTestService(repo, now)
	got, err := svc.UpdateTaskProgress(context.Background(), "1", 80, 1)
	if err != nil {
		t.Fatalf("UpdateTaskProgress() error = %v", err)
	}
	if got.Progress != 80 || got.CompletedSubtasks != 1 {
		t.Fatalf("unexpected progress %#v", got)
	}
	if _, err := svc.UpdateTaskProgress(context.Background(), "1", 50, 5); !errors.Is(err, domain.ErrInvalidSubtasks) {
		t.Fatalf("expected ErrInvalidSubtasks, got %v", err)
	}
	events, err := svc.ListChangeEvents(context.Background(), "1", 0)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Operation != domain.ChangeOperationProgress || events[0].Metadata["to_progress"] != "80" {
		t.Fatalf("unexpected events %#v", events)
	}
}

func TestListTasksAppliesBoardFilterAndSort(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	seedTask(t, repo, domain.TaskInput{ID: "1", Title: "Alpha", Priority: domain.PriorityHigh, Progress: 10}, now)
	seedTask(t, repo, domain.TaskInput{ID: "2", Title: "Beta", Priority: domain.PriorityLow, Progress: 90}, now)
	seedTask(t, repo, domain.TaskInput{ID: "3", Title: "Gamma", Priority: domain.PriorityHigh, Progress: 50}, now)
	svc := newTestService(repo, now)

	got, err := svc.ListTasks(context.Background(), ListTasksFilter{
		Filter: board.Filter{Priorities: board.NewValueSet("High")},
		Sort:   board.SortState{Column: board.SortProgress, Direction: board.Descending},
	})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	if !slices.Equal(ids, []string{"3", "1"}) {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestNotificationReadFlow(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"n1", "n2", "n3"} {
		note, _ := domain.NewNotification(id, "1", "moved "+id, "", now)
		_ = repo.CreateNotification(context.Background(), note)
	}
	svc := newTestService(repo, now.Add(time.Minute))

	read, err := svc.MarkNotificationRead(context.Background(), "n2")
	if err != nil || read.Unread() {
		t.Fatalf("MarkNotificationRead() = %#v, %v", read, err)
	}
	if _, err := svc.MarkNotificationRead(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	n, err := svc.MarkAllNotificationsRead(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("MarkAllNotificationsRead() = %d, %v", n, err)
	}
	all, _ := svc.ListNotifications(context.Background(), false)
	if len(all) != 3 || all[0].ID != "n3" {
		t.Fatalf("expected newest first, got %#v", all)
	}
	if count, _ := svc.UnreadNotificationCount(context.Background()); count != 0 {
		t.Fatalf("expected no unread notifications, got %d", count)
	}
}

func TestMarkAllNotificationsReadFailureKeepsUnread(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"n1", "n2"} {
		note, _ := domain.NewNotification(id, "1", "moved "+id, "", now)
		_ = repo.CreateNotification(context.Background(), note)
	}
	repo.markErr = errors.New("disk full")
	svc := newTestService(repo, now)

	if n, err := svc.MarkAllNotificationsRead(context.Background()); err == nil || n != 0 {
		t.Fatalf("MarkAllNotificationsRead() = %d, %v", n, err)
	}
	if count, _ := svc.UnreadNotificationCount(context.Background()); count != 2 {
		t.Fatalf("expected both notifications to stay unread, got %d unread", count)
	}
}

func TestPreferences(t *testing.T) {
	svc := newTestService(newFakeRepo(), time.Now())
	if _, err := svc.GetPreference(context.Background(), PreferenceViewMode); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.SetPreference(context.Background(), PreferenceViewMode, "kanban"); err != nil {
		t.Fatalf("SetPreference() error = %v", err)
	}
	if got, _ := svc.GetPreference(context.Background(), PreferenceViewMode); got != "kanban" {
		t.Fatalf("expected kanban, got %q", got)
	}
	if err := svc.SetPreference(context.Background(), " ", "x"); !errors.Is(err, ErrInvalidPreference) {
		t.Fatalf("expected ErrInvalidPreference, got %v", err)
	}
}

func TestSeedFixturesOnlyIntoEmptyStore(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)
	inputs := []domain.TaskInput{{ID: "1", Title: "one"}, {Title: "generated"}}
	n, err := svc.SeedFixtures(context.Background(), inputs)
	if err != nil || n != 2 {
		t.Fatalf("SeedFixtures() = %d, %v", n, err)
	}
	if _, err := svc.GetTask(context.Background(), "id-1"); err != nil {
		t.Fatalf("expected generated id, got %v", err)
	}
	n, err = svc.SeedFixtures(context.Background(), inputs)
	if err != nil || n != 0 {
		t.Fatalf("expected second seed to be a no-op, got %d, %v", n, err)
	}
}

func TestAnalytics(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedTask(t, repo, domain.TaskInput{ID: "1", Title: "late", EndDate: now.AddDate(0, 0, -1)}, now)
	seedTask(t, repo, domain.TaskInput{ID: "2", Title: "done", Status: domain.StatusCompleted, EndDate: now.AddDate(0, 0, -5)}, now)
	seedTask(t, repo, domain.TaskInput{ID: "3", Title: "future", EndDate: now.AddDate(0, 0, 3)}, now)
	seedTask(t, repo, domain.TaskInput{ID: "4", Title: "today", EndDate: now}, now)
	svc := newTestService(repo, now)
	got, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if got.Total != 4 || got.Completed != 1 || got.Overdue != 1 || got.CompletionRate != 25 {
		t.Fatalf("unexpected totals %#v", got)
	}
	if len(got.ByStatus) != 4 || got.ByStatus[0].Value != 3 {
		t.Fatalf("unexpected status series %#v", got.ByStatus)
	}
}
