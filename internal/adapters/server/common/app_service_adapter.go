package common

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListTasks lists tasks through the board filter and sort rules.
func (a *AppServiceAdapter) ListTasks(ctx context.Context, in ListTasksRequest) ([]Task, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	filter, err := normalizeListTasksRequest(in)
	if err != nil {
		return nil, err
	}
	tasks, err := a.service.ListTasks(ctx, filter)
	if err != nil {
		return nil, mapAppError("list tasks", err)
	}
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskFromDomain(task))
	}
	return out, nil
}

// GetTask returns one task by id.
func (a *AppServiceAdapter) GetTask(ctx context.Context, taskID string) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return Task{}, fmt.Errorf("task id is required: %w", ErrInvalidRequest)
	}
	task, err := a.service.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, mapAppError("get task", err)
	}
	return taskFromDomain(task), nil
}

// CreateTask validates and stores one task.
func (a *AppServiceAdapter) CreateTask(ctx context.Context, in CreateTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	task, err := a.service.CreateTask(withActor(ctx, in.Actor), app.CreateTaskInput{
		ID:                in.ID,
		Title:             in.Title,
		AssigneeName:      in.Assignee,
		AssigneeAvatar:    in.Avatar,
		Priority:          in.Priority,
		Status:            in.Status,
		StartDate:         in.StartDate,
		EndDate:           in.EndDate,
		Project:           in.Project,
		Progress:          in.Progress,
		Subtasks:          in.Subtasks,
		CompletedSubtasks: in.CompletedSubtasks,
		Description:       in.Description,
		TimeEstimated:     in.TimeEstimated,
	})
	if err != nil {
		return Task{}, mapAppError("create task", err)
	}
	return taskFromDomain(task), nil
}

// SetTaskStatus moves one task to a new status.
func (a *AppServiceAdapter) SetTaskStatus(ctx context.Context, in SetTaskStatusRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	taskID := strings.TrimSpace(in.TaskID)
	if taskID == "" {
		return Task{}, fmt.Errorf("task id is required: %w", ErrInvalidRequest)
	}
	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return Task{}, fmt.Errorf("status %q: %w", in.Status, errors.Join(ErrInvalidRequest, err))
	}
	task, err := a.service.SetTaskStatus(withActor(ctx, in.Actor), taskID, status)
	if err != nil {
		return Task{}, mapAppError("set task status", err)
	}
	return taskFromDomain(task), nil
}

// Analytics returns dashboard totals and chart series.
func (a *AppServiceAdapter) Analytics(ctx context.Context) (Analytics, error) {
	if err := a.ready(); err != nil {
		return Analytics{}, err
	}
	summary, err := a.service.Analytics(ctx)
	if err != nil {
		return Analytics{}, mapAppError("analytics", err)
	}
	return Analytics{
		Total:          summary.Total,
		Completed:      summary.Completed,
		Overdue:        summary.Overdue,
		CompletionRate: summary.CompletionRate,
		ByStatus:       chartFromBoard(summary.ByStatus),
		ByPriority:     chartFromBoard(summary.ByPriority),
		Workload:       chartFromBoard(summary.Workload),
		Projects:       chartFromBoard(summary.Projects),
	}, nil
}

// ListNotifications lists notifications newest first.
func (a *AppServiceAdapter) ListNotifications(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	notes, err := a.service.ListNotifications(ctx, unreadOnly)
	if err != nil {
		return nil, mapAppError("list notifications", err)
	}
	out := make([]Notification, 0, len(notes))
	for _, note := range notes {
		out = append(out, notificationFromDomain(note))
	}
	return out, nil
}

// MarkNotificationRead marks one notification read.
func (a *AppServiceAdapter) MarkNotificationRead(ctx context.Context, notificationID string) (Notification, error) {
	if err := a.ready(); err != nil {
		return Notification{}, err
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return Notification{}, fmt.Errorf("notification id is required: %w", ErrInvalidRequest)
	}
	note, err := a.service.MarkNotificationRead(ctx, notificationID)
	if err != nil {
		return Notification{}, mapAppError("mark notification read", err)
	}
	return notificationFromDomain(note), nil
}

// MarkAllNotificationsRead marks every unread notification read.
func (a *AppServiceAdapter) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	if err := a.ready(); err != nil {
		return 0, err
	}
	count, err := a.service.MarkAllNotificationsRead(ctx)
	if err != nil {
		return 0, mapAppError("mark notifications read", err)
	}
	return count, nil
}

// ListActivity lists change events newest first.
func (a *AppServiceAdapter) ListActivity(ctx context.Context, in ListActivityRequest) ([]ChangeEvent, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if in.Limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	events, err := a.service.ListChangeEvents(ctx, in.TaskID, in.Limit)
	if err != nil {
		return nil, mapAppError("list activity", err)
	}
	out := make([]ChangeEvent, 0, len(events))
	for _, event := range events {
		out = append(out, ChangeEvent{
			ID:         event.ID,
			TaskID:     event.TaskID,
			Operation:  string(event.Operation),
			Actor:      event.Actor,
			Metadata:   maps.Clone(event.Metadata),
			OccurredAt: event.OccurredAt.UTC(),
		})
	}
	return out, nil
}

// ready reports a missing service as an internal failure.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return errors.New("app service adapter is not configured")
	}
	return nil
}

// withActor attaches a non-blank caller identity to ctx.
func withActor(ctx context.Context, actor string) context.Context {
	if strings.TrimSpace(actor) == "" {
		return ctx
	}
	return app.WithActor(ctx, actor)
}

// normalizeListTasksRequest converts wire filters into board filter values.
func normalizeListTasksRequest(in ListTasksRequest) (app.ListTasksFilter, error) {
	out := app.ListTasksFilter{
		Filter: board.Filter{
			Assignees: board.NewValueSet(in.Assignees...),
			Projects:  board.NewValueSet(in.Projects...),
		},
		Query: strings.TrimSpace(in.Query),
	}

	priorities := make([]string, 0, len(in.Priorities))
	for _, raw := range in.Priorities {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return app.ListTasksFilter{}, fmt.Errorf("priority %q: %w", raw, errors.Join(ErrInvalidRequest, err))
		}
		priorities = append(priorities, string(priority))
	}
	out.Filter.Priorities = board.NewValueSet(priorities...)

	statuses := make([]string, 0, len(in.Statuses))
	for _, raw := range in.Statuses {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return app.ListTasksFilter{}, fmt.Errorf("status %q: %w", raw, errors.Join(ErrInvalidRequest, err))
		}
		statuses = append(statuses, string(status))
	}
	out.Filter.Statuses = board.NewValueSet(statuses...)

	from, err := domain.ParseDate(in.From)
	if err != nil {
		return app.ListTasksFilter{}, fmt.Errorf("from %q: %w", in.From, ErrInvalidRequest)
	}
	to, err := domain.ParseDate(in.To)
	if err != nil {
		return app.ListTasksFilter{}, fmt.Errorf("to %q: %w", in.To, ErrInvalidRequest)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return app.ListTasksFilter{}, fmt.Errorf("to is before from: %w", ErrInvalidRequest)
	}
	out.Filter.Dates = board.DateRange{From: from, To: to}

	column, ok := board.ParseSortColumn(in.Sort)
	if !ok {
		return app.ListTasksFilter{}, fmt.Errorf("unsupported sort column %q: %w", in.Sort, ErrInvalidRequest)
	}
	direction := board.Direction(strings.ToLower(strings.TrimSpace(in.Direction)))
	switch direction {
	case "":
		direction = board.Ascending
	case board.Ascending, board.Descending:
	default:
		return app.ListTasksFilter{}, fmt.Errorf("unsupported sort direction %q: %w", in.Direction, ErrInvalidRequest)
	}
	if column != board.SortNone {
		out.Sort = board.SortState{Column: column, Direction: direction}
	}
	return out, nil
}

// mapAppError maps app-layer failures onto transport sentinels.
func mapAppError(operation string, err error) error {
	var validationErr *app.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Errorf("%s: %w", operation, &FieldErrors{Fields: maps.Clone(validationErr.Fields)})
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, domain.ErrInvalidSubtasks),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidID):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

// taskFromDomain maps one domain task to its wire form.
func taskFromDomain(task domain.Task) Task {
	return Task{
		ID:                task.ID,
		Title:             task.Title,
		Assignee:          Assignee{Name: task.Assignee.Name, Avatar: task.Assignee.Avatar},
		Priority:          string(task.Priority),
		Status:            string(task.Status),
		StartDate:         domain.FormatDate(task.StartDate),
		EndDate:           domain.FormatDate(task.EndDate),
		Progress:          task.Progress,
		Project:           task.Project,
		Subtasks:          task.Subtasks,
		CompletedSubtasks: task.CompletedSubtasks,
		Description:       task.Description,
		TimeTracked:       task.TimeTracked,
		TimeEstimated:     task.TimeEstimated,
		CreatedAt:         task.CreatedAt.UTC(),
		UpdatedAt:         task.UpdatedAt.UTC(),
	}
}

// notificationFromDomain maps one domain notification to its wire form.
func notificationFromDomain(note domain.Notification) Notification {
	out := Notification{
		ID:        note.ID,
		TaskID:    note.TaskID,
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: note.CreatedAt.UTC(),
	}
	if note.ReadAt != nil {
		readAt := note.ReadAt.UTC()
		out.ReadAt = &readAt
	}
	return out
}

// chartFromBoard maps chart tuples to their wire form.
func chartFromBoard(points []board.ChartPoint) []ChartPoint {
	out := make([]ChartPoint, 0, len(points))
	for _, point := range points {
		out = append(out, ChartPoint{Label: point.Label, Value: point.Value, Extra: point.Extra})
	}
	return out
}
