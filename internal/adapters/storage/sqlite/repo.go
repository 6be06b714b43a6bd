package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// memoryDBSeq keeps in-memory databases from sharing a cache name.
var memoryDBSeq atomic.Int64

// Repository persists tasks, activity, notifications and preferences.
type Repository struct {
	db *sql.DB
}

// Open opens (creating when needed) the database at path and migrates it.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:taskboard-mem-%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	// One connection serializes writers and keeps per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable; used by readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate creates every table and index idempotently.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			assignee_name TEXT NOT NULL DEFAULT '',
			assignee_avatar TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL,
			status TEXT NOT NULL,
			start_date TEXT NOT NULL DEFAULT '',
			end_date TEXT NOT NULL DEFAULT '',
			progress INTEGER NOT NULL DEFAULT 0,
			project TEXT NOT NULL DEFAULT '',
			subtasks INTEGER NOT NULL DEFAULT 0,
			completed_subtasks INTEGER NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			time_tracked TEXT NOT NULL DEFAULT '',
			time_estimated TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			metadata_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			read_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_task ON change_events(task_id, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(read_at);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// taskColumns lists the tasks columns in scanTask order.
const taskColumns = `id, title, assignee_name, assignee_avatar, priority, status, start_date, end_date, progress, project,
	subtasks, completed_subtasks, description, time_tracked, time_estimated, created_at, updated_at`

// CreateTask inserts a task and its activity rows in one transaction.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task, w app.TaskWrite) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks(`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Title,
		t.Assignee.Name,
		t.Assignee.Avatar,
		string(t.Priority),
		string(t.Status),
		domain.FormatDate(t.StartDate),
		domain.FormatDate(t.EndDate),
		t.Progress,
		t.Project,
		t.Subtasks,
		t.CompletedSubtasks,
		t.Description,
		t.TimeTracked,
		t.TimeEstimated,
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	if err = writeActivity(ctx, tx, t, w, domain.ChangeOperationCreate); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// UpdateTask replaces a task row and writes its activity rows in one transaction.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task, w app.TaskWrite) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = updateTaskRow(ctx, tx, t); err != nil {
		return err
	}
	if err = writeActivity(ctx, tx, t, w, ""); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// MutateTask reads one task, applies fn and writes the row with its activity
// inside a single transaction, so concurrent edits of other fields survive.
func (r *Repository) MutateTask(ctx context.Context, id string, fn app.TaskMutation) (_ domain.Task, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	t, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return domain.Task{}, err
	}
	w, err := fn(&t)
	if err != nil {
		return domain.Task{}, err
	}
	if w != nil {
		if err = updateTaskRow(ctx, tx, t); err != nil {
			return domain.Task{}, err
		}
		if err = writeActivity(ctx, tx, t, *w, ""); err != nil {
			return domain.Task{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// updateTaskRow rewrites every mutable column of one task.
func updateTaskRow(ctx context.Context, execer execerContext, t domain.Task) error {
	res, err := execer.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, assignee_name = ?, assignee_avatar = ?, priority = ?, status = ?, start_date = ?, end_date = ?,
		    progress = ?, project = ?, subtasks = ?, completed_subtasks = ?, description = ?, time_tracked = ?,
		    time_estimated = ?, created_at = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Title,
		t.Assignee.Name,
		t.Assignee.Avatar,
		string(t.Priority),
		string(t.Status),
		domain.FormatDate(t.StartDate),
		domain.FormatDate(t.EndDate),
		t.Progress,
		t.Project,
		t.Subtasks,
		t.CompletedSubtasks,
		t.Description,
		t.TimeTracked,
		t.TimeEstimated,
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return translateNoRows(res)
}

// GetTask returns one task or app.ErrNotFound.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListTasks returns every task in insertion order.
func (r *Repository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// ListChangeEvents lists recent events newest first, for one task or all of them.
func (r *Repository) ListChangeEvents(ctx context.Context, taskID string, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, task_id, operation, actor, metadata_json, created_at
		FROM change_events
		WHERE (? = '' OR task_id = ?)
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, taskID, taskID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event       domain.ChangeEvent
			opRaw       string
			metadataRaw string
			createdRaw  string
		)
		if err := rows.Scan(&event.ID, &event.TaskID, &opRaw, &event.Actor, &metadataRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = domain.ChangeOperation(strings.TrimSpace(opRaw))
		event.OccurredAt = parseTS(createdRaw)
		if strings.TrimSpace(metadataRaw) == "" {
			metadataRaw = "{}"
		}
		if err := json.Unmarshal([]byte(metadataRaw), &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode change_events.metadata_json: %w", err)
		}
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// CreateNotification inserts one notification.
func (r *Repository) CreateNotification(ctx context.Context, n domain.Notification) error {
	return insertNotification(ctx, r.db, n)
}

// UpdateNotification rewrites the read marker of one notification.
func (r *Repository) UpdateNotification(ctx context.Context, n domain.Notification) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET title = ?, body = ?, read_at = ? WHERE id = ?
	`, n.Title, n.Body, nullableTS(n.ReadAt), n.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// MarkNotificationsRead stamps every unread notification with readAt in one statement.
func (r *Repository) MarkNotificationsRead(ctx context.Context, readAt time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read_at = ? WHERE read_at IS NULL`, ts(readAt))
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// GetNotification returns one notification or app.ErrNotFound.
func (r *Repository) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, task_id, title, body, created_at, read_at FROM notifications WHERE id = ?
	`, id)
	return scanNotification(row)
}

// ListNotifications lists notifications newest first.
func (r *Repository) ListNotifications(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT id, task_id, title, body, created_at, read_at FROM notifications`
	if unreadOnly {
		query += ` WHERE read_at IS NULL`
	}
	query += ` ORDER BY rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		note, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

// GetPreference returns a stored preference or app.ErrNotFound.
func (r *Repository) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", app.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetPreference upserts a preference value.
func (r *Repository) SetPreference(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences(key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, ts(time.Now()))
	return err
}

// execerContext represents a write-only DB contract used by DB and Tx implementations.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// writeActivity stores the change event and optional notification for a task write.
// A blank event operation falls back to fallbackOp; with neither, no event is written.
func writeActivity(ctx context.Context, execer execerContext, t domain.Task, w app.TaskWrite, fallbackOp domain.ChangeOperation) error {
	event := w.Event
	if event.Operation == "" {
		event.Operation = fallbackOp
	}
	if event.Operation != "" {
		if strings.TrimSpace(event.TaskID) == "" {
			event.TaskID = t.ID
		}
		if event.OccurredAt.IsZero() {
			event.OccurredAt = t.UpdatedAt
		}
		if err := insertChangeEvent(ctx, execer, event); err != nil {
			return err
		}
	}
	if w.Notification != nil {
		if err := insertNotification(ctx, execer, *w.Notification); err != nil {
			return err
		}
	}
	return nil
}

// insertChangeEvent inserts a change-event ledger record.
func insertChangeEvent(ctx context.Context, execer execerContext, event domain.ChangeEvent) error {
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode change event metadata: %w", err)
	}
	actor := strings.TrimSpace(event.Actor)
	if actor == "" {
		actor = app.DefaultActor
	}
	_, err = execer.ExecContext(ctx, `
		INSERT INTO change_events(task_id, operation, actor, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		event.TaskID,
		string(event.Operation),
		actor,
		string(metadataJSON),
		ts(event.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// insertNotification inserts one notification row.
func insertNotification(ctx context.Context, execer execerContext, n domain.Notification) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO notifications(id, task_id, title, body, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.TaskID, n.Title, n.Body, ts(n.CreatedAt), nullableTS(n.ReadAt))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask decodes one tasks row.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t          domain.Task
		priority   string
		status     string
		startRaw   string
		endRaw     string
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(
		&t.ID,
		&t.Title,
		&t.Assignee.Name,
		&t.Assignee.Avatar,
		&priority,
		&status,
		&startRaw,
		&endRaw,
		&t.Progress,
		&t.Project,
		&t.Subtasks,
		&t.CompletedSubtasks,
		&t.Description,
		&t.TimeTracked,
		&t.TimeEstimated,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	var err error
	if t.Priority, err = domain.ParsePriority(priority); err != nil {
		return domain.Task{}, fmt.Errorf("decode tasks.priority %q: %w", priority, err)
	}
	if t.Status, err = domain.ParseStatus(status); err != nil {
		return domain.Task{}, fmt.Errorf("decode tasks.status %q: %w", status, err)
	}
	if t.StartDate, err = domain.ParseDate(startRaw); err != nil {
		return domain.Task{}, fmt.Errorf("decode tasks.start_date: %w", err)
	}
	if t.EndDate, err = domain.ParseDate(endRaw); err != nil {
		return domain.Task{}, fmt.Errorf("decode tasks.end_date: %w", err)
	}
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// scanNotification decodes one notifications row.
func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n          domain.Notification
		createdRaw string
		readRaw    sql.NullString
	)
	if err := s.Scan(&n.ID, &n.TaskID, &n.Title, &n.Body, &createdRaw, &readRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, app.ErrNotFound
		}
		return domain.Notification{}, err
	}
	n.CreatedAt = parseTS(createdRaw)
	n.ReadAt = parseNullTS(readRaw)
	return n, nil
}

// translateNoRows maps a zero-row write to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts formats a timestamp for storage.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS formats an optional timestamp.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses a stored timestamp; malformed values decode as zero.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses an optional stored timestamp.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
