package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/platform"
)

// Service represents service data used by this package.
type Service interface {
	ListTasks(context.Context, app.ListTasksFilter) ([]domain.Task, error)
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	SetTaskStatus(context.Context, string, domain.Status) (domain.Task, error)
	ListNotifications(context.Context, bool) ([]domain.Notification, error)
	UnreadNotificationCount(context.Context) (int, error)
	MarkNotificationRead(context.Context, string) (domain.Notification, error)
	MarkAllNotificationsRead(context.Context) (int, error)
	GetPreference(context.Context, string) (string, error)
	SetPreference(context.Context, string, string) error
	ExportSnapshot(context.Context) (app.Snapshot, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeSearch
	modeFilter
	modeStatusPicker
	modeCreate
	modeNotifications
)

// createFormFields stores create-form field keys in display order. Keys match
// the validation field names so inline messages land on the right input.
var createFormFields = []string{"title", "assignee", "priority", "status", "start_date", "end_date", "project", "description"}

// create-form field indexes.
const (
	createFieldTitle = iota
	createFieldAssignee
	createFieldPriority
	createFieldStatus
	createFieldStart
	createFieldEnd
	createFieldProject
	createFieldDescription
)

// notificationListWindow caps the rows drawn in the notifications overlay.
const notificationListWindow = 12

type Model struct {
	svc    Service
	logger Logger
	now    func() time.Time

	writeClipboard func(string) error
	md             *markdownRenderer

	ready  bool
	loaded bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap
	cfg  RuntimeConfig

	board  *board.State
	unread int

	mode inputMode

	listCursor  int
	kanbanCol   int
	kanbanRow   int
	focusCursor int

	// dragOver is the kanban lane index under the dragged card.
	dragOver      int
	mouseDragging bool

	searchInput textinput.Model

	filterCategory int
	filterCursor   int

	statusPickerIdx    int
	statusPickerTaskID string

	// savingStatus marks tasks with a status save in flight; queuedStatus holds
	// the newest status requested meanwhile, sent once that save returns.
	savingStatus map[string]bool
	queuedStatus map[string]domain.Status

	formInputs []textinput.Model
	formFocus  int
	formErrors map[string]string

	notifications      []domain.Notification
	notificationCursor int

	exporting bool
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	tasks    []domain.Task
	unread   int
	viewPref string
	err      error
}

// statusSavedMsg reports a persisted status change.
type statusSavedMsg struct {
	taskID string
	task   domain.Task
	err    error
}

// taskCreatedMsg reports a create-form submission.
type taskCreatedMsg struct {
	task domain.Task
	err  error
}

// unreadMsg carries a refreshed unread notification count.
type unreadMsg struct {
	count int
	err   error
}

// notificationsLoadedMsg carries the notification list.
type notificationsLoadedMsg struct {
	items []domain.Notification
	err   error
}

// notificationsMarkedMsg reports a mark-read action.
type notificationsMarkedMsg struct {
	count int
	err   error
}

// exportTickMsg ends the export processing delay.
type exportTickMsg struct{}

// exportDoneMsg reports a written snapshot file.
type exportDoneMsg struct {
	path  string
	tasks int
	err   error
}

// clipboardMsg reports a copied summary.
type clipboardMsg struct {
	count int
	err   error
}

// preferenceSavedMsg reports a persisted preference.
type preferenceSavedMsg struct {
	key string
	err error
}

// ConfigReloadedMsg delivers settings reloaded from disk while the program runs.
type ConfigReloadedMsg struct {
	Config RuntimeConfig
	Err    error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	searchInput := textinput.New()
	searchInput.Prompt = "search: "
	searchInput.Placeholder = "task title"
	searchInput.CharLimit = 120
	m := Model{
		svc:            svc,
		logger:         nopLogger{},
		now:            time.Now,
		writeClipboard: clipboard.WriteAll,
		md:             &markdownRenderer{},
		status:         "loading...",
		help:           h,
		board:          board.New(nil),
		searchInput:    searchInput,
		savingStatus:   map[string]bool{},
		queuedStatus:   map[string]domain.Status{},
	}
	m.applyRuntimeConfig(DefaultRuntimeConfig())
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.board.SetTasks(msg.tasks)
		m.unread = msg.unread
		if !m.loaded {
			m.loaded = true
			if mode, err := domain.ParseViewMode(msg.viewPref); err == nil {
				m.board.SetViewMode(mode)
			}
		}
		m.clampCursors()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case statusSavedMsg:
		delete(m.savingStatus, msg.taskID)
		next, queued := m.queuedStatus[msg.taskID]
		delete(m.queuedStatus, msg.taskID)
		switch {
		case msg.err == nil && queued:
			return m, tea.Batch(m.queueStatusSave(msg.taskID, next), m.loadUnread)
		case msg.err == nil:
			m.board.Upsert(msg.task)
			return m, m.loadUnread
		case errors.Is(msg.err, app.ErrNotFound):
			m.logger.Warn("status change for a task missing from the store", "task_id", msg.taskID)
			m.status = "task no longer exists"
		default:
			m.logger.Error("save status failed", "task_id", msg.taskID, "err", msg.err)
			m.status = "save failed: " + msg.err.Error()
		}
		return m, m.loadData

	case taskCreatedMsg:
		if msg.err != nil {
			var verr *app.ValidationError
			if errors.As(msg.err, &verr) {
				m.formErrors = verr.Fields
				m.status = "fix the highlighted fields"
				return m, nil
			}
			m.status = "create failed: " + msg.err.Error()
			return m, nil
		}
		m.closeForm()
		m.board.Upsert(msg.task)
		m.status = "created " + truncate(msg.task.Title, 40)
		m.focusTaskByID(msg.task.ID)
		return m, nil

	case unreadMsg:
		if msg.err != nil {
			m.logger.Warn("unread count failed", "err", msg.err)
			return m, nil
		}
		m.unread = msg.count
		return m, nil

	case notificationsLoadedMsg:
		if msg.err != nil {
			m.status = "notifications unavailable: " + msg.err.Error()
			return m, nil
		}
		m.notifications = msg.items
		m.notificationCursor = clamp(m.notificationCursor, 0, len(m.notifications)-1)
		unread := 0
		for _, n := range msg.items {
			if n.Unread() {
				unread++
			}
		}
		m.unread = unread
		return m, nil

	case notificationsMarkedMsg:
		if msg.err != nil {
			m.status = "mark read failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%d marked read", msg.count)
		return m, m.loadNotifications

	case exportTickMsg:
		return m, m.exportSnapshot

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.logger.Error("export failed", "err", msg.err)
			m.status = "export failed: " + msg.err.Error()
			return m, nil
		}
		m.logger.Info("board exported", "path", msg.path, "tasks", msg.tasks)
		m.status = fmt.Sprintf("exported %d tasks to %s", msg.tasks, msg.path)
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("copied %d task summaries", msg.count)
		return m, nil

	case preferenceSavedMsg:
		if msg.err != nil {
			m.logger.Warn("save preference failed", "key", msg.key, "err", msg.err)
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			m.logger.Warn("config reload failed", "err", msg.Err)
			m.status = "reload config failed: " + msg.Err.Error()
			return m, nil
		}
		m.applyRuntimeConfig(msg.Config)
		m.status = "config reloaded"
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// context returns the request context carrying the configured actor.
func (m Model) context() context.Context {
	ctx := context.Background()
	if m.cfg.DisplayName != "" {
		ctx = app.WithActor(ctx, m.cfg.DisplayName)
	}
	return ctx
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	ctx := m.context()
	tasks, err := m.svc.ListTasks(ctx, app.ListTasksFilter{})
	if err != nil {
		return loadedMsg{err: err}
	}
	unread, err := m.svc.UnreadNotificationCount(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	viewPref, err := m.svc.GetPreference(ctx, app.PreferenceViewMode)
	if err != nil && !errors.Is(err, app.ErrNotFound) {
		return loadedMsg{err: err}
	}
	if m.cfg.DisplayName != "" {
		if err := m.svc.SetPreference(ctx, app.PreferenceDisplayName, m.cfg.DisplayName); err != nil {
			return loadedMsg{err: err}
		}
	}
	return loadedMsg{tasks: tasks, unread: unread, viewPref: viewPref}
}

// loadUnread refreshes the unread badge.
func (m Model) loadUnread() tea.Msg {
	count, err := m.svc.UnreadNotificationCount(m.context())
	return unreadMsg{count: count, err: err}
}

// loadNotifications loads the notification list, newest first.
func (m Model) loadNotifications() tea.Msg {
	items, err := m.svc.ListNotifications(m.context(), false)
	return notificationsLoadedMsg{items: items, err: err}
}

// queueStatusSave persists status for taskID, holding it back while an earlier
// save of the same task is still running so the store ends on the newest choice.
func (m *Model) queueStatusSave(taskID string, status domain.Status) tea.Cmd {
	if m.savingStatus[taskID] {
		m.queuedStatus[taskID] = status
		return nil
	}
	m.savingStatus[taskID] = true
	return m.saveStatusCmd(taskID, status)
}

// saveStatusCmd persists one status change.
func (m Model) saveStatusCmd(taskID string, status domain.Status) tea.Cmd {
	return func() tea.Msg {
		task, err := m.svc.SetTaskStatus(m.context(), taskID, status)
		return statusSavedMsg{taskID: taskID, task: task, err: err}
	}
}

// savePreferenceCmd persists one preference.
func (m Model) savePreferenceCmd(key, value string) tea.Cmd {
	return func() tea.Msg {
		return preferenceSavedMsg{key: key, err: m.svc.SetPreference(m.context(), key, value)}
	}
}

// exportSnapshot writes the board snapshot into the export directory.
func (m Model) exportSnapshot() tea.Msg {
	snap, err := m.svc.ExportSnapshot(m.context())
	if err != nil {
		return exportDoneMsg{err: err}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return exportDoneMsg{err: fmt.Errorf("encode snapshot: %w", err)}
	}
	if err := os.MkdirAll(m.cfg.ExportDir, 0o755); err != nil {
		return exportDoneMsg{err: fmt.Errorf("create export dir: %w", err)}
	}
	path := platform.SnapshotPath(m.cfg.ExportDir, m.now())
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return exportDoneMsg{err: fmt.Errorf("write snapshot: %w", err)}
	}
	return exportDoneMsg{path: path, tasks: len(snap.Tasks)}
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll {
		if key.Matches(msg, m.keys.toggleHelp) || msg.String() == "esc" {
			m.help.ShowAll = false
		}
		return m, nil
	}
	if _, dragging := board.DraggingTaskID(m.board.Drag()); dragging {
		return m.handleGrabKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.nextView):
		return m.setViewMode(m.board.ViewMode().Next())
	case key.Matches(msg, m.keys.listView):
		return m.setViewMode(domain.ViewModeList)
	case key.Matches(msg, m.keys.kanbanView):
		return m.setViewMode(domain.ViewModeKanban)
	case key.Matches(msg, m.keys.focusView):
		return m.setViewMode(domain.ViewModeFocus)
	case key.Matches(msg, m.keys.moveUp):
		m.moveCursor(0, -1)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		m.moveCursor(0, 1)
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.moveCursor(-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.moveCursor(1, 0)
		return m, nil
	case key.Matches(msg, m.keys.setStatus):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeStatusPicker
		m.statusPickerTaskID = task.ID
		m.statusPickerIdx = max(0, task.Status.Rank())
		m.status = "set status"
		return m, nil
	case key.Matches(msg, m.keys.toggleSelect):
		task, ok := m.currentTask()
		if !ok {
			return m, nil
		}
		if m.board.ToggleSelect(task.ID) {
			m.status = "selected " + truncate(task.Title, 40)
		} else {
			m.status = "unselected " + truncate(task.Title, 40)
		}
		return m, nil
	case key.Matches(msg, m.keys.selectAll):
		m.board.SelectAll()
		m.status = fmt.Sprintf("%d tasks selected", len(m.board.Selected()))
		return m, nil
	case key.Matches(msg, m.keys.clear):
		if n := m.board.ClearSelection(); n > 0 {
			m.status = fmt.Sprintf("cleared %d selected", n)
			return m, nil
		}
		if m.board.Search() != "" || !m.board.Filters().Empty() {
			m.board.SetSearch("")
			m.board.ClearFilters()
			m.searchInput.SetValue("")
			m.clampCursors()
			m.status = "filters cleared"
		}
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.board.Search())
		m.searchInput.CursorEnd()
		m.status = "search"
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.filter):
		m.mode = modeFilter
		m.filterCursor = 0
		m.status = "filters"
		return m, nil
	case key.Matches(msg, m.keys.sortColumn):
		m.board.SetSort(nextSortColumn(m.board.Sort()))
		m.clampCursors()
		m.status = "sort: " + sortLabel(m.board.Sort())
		return m, nil
	case key.Matches(msg, m.keys.sortDirection):
		current := m.board.Sort()
		if current.Column == board.SortNone {
			m.status = "no sort column (press o)"
			return m, nil
		}
		m.board.ToggleSort(current.Column)
		m.status = "sort: " + sortLabel(m.board.Sort())
		return m, nil
	case key.Matches(msg, m.keys.create):
		return m, m.startCreateForm()
	case key.Matches(msg, m.keys.export):
		if m.exporting {
			m.status = "export already in progress"
			return m, nil
		}
		m.exporting = true
		if m.cfg.SimulatedDelay <= 0 {
			m.status = "exporting..."
			return m, m.exportSnapshot
		}
		m.status = "processing export..."
		return m, tea.Tick(m.cfg.SimulatedDelay, func(time.Time) tea.Msg {
			return exportTickMsg{}
		})
	case key.Matches(msg, m.keys.share):
		return m.copySummary()
	case key.Matches(msg, m.keys.notifications):
		m.mode = modeNotifications
		m.notificationCursor = 0
		m.status = "notifications"
		return m, m.loadNotifications
	case key.Matches(msg, m.keys.bulkAction):
		ids := m.board.Selected()
		if len(ids) == 0 {
			m.status = "select tasks first (space or A)"
			return m, nil
		}
		m.logger.Info("bulk action requested", "count", len(ids), "task_ids", strings.Join(ids, ","))
		m.status = fmt.Sprintf("bulk action logged for %d tasks (no changes made)", len(ids))
		return m, nil
	case key.Matches(msg, m.keys.grab):
		if m.board.ViewMode() != domain.ViewModeKanban {
			m.status = "drag and drop works in the kanban view (2)"
			return m, nil
		}
		task, ok := m.currentTask()
		if !ok || !m.board.DragStart(task.ID) {
			m.status = "no card to grab"
			return m, nil
		}
		m.dragOver = m.kanbanCol
		m.status = "grabbed " + truncate(task.Title, 32) + " • h/l choose lane • enter drop • esc cancel"
		return m, nil
	default:
		return m, nil
	}
}

// handleGrabKey drives a keyboard drag.
func (m Model) handleGrabKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	statuses := domain.Statuses()
	switch {
	case key.Matches(msg, m.keys.clear):
		m.board.DragEnd()
		m.status = "drag cancelled"
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.dragOverLane(clamp(m.dragOver-1, 0, len(statuses)-1))
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.dragOverLane(clamp(m.dragOver+1, 0, len(statuses)-1))
		return m, nil
	case key.Matches(msg, m.keys.drop):
		return m.dropOnLane(m.dragOver)
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	default:
		return m, nil
	}
}

// dragOverLane moves the drop target when the lane accepts the card.
func (m *Model) dragOverLane(lane int) {
	statuses := domain.Statuses()
	if lane < 0 || lane >= len(statuses) {
		return
	}
	if m.board.DragOverColumn(statuses[lane]) {
		m.dragOver = lane
	}
}

// dropOnLane drops the dragged card on lane and persists the change.
func (m Model) dropOnLane(lane int) (tea.Model, tea.Cmd) {
	statuses := domain.Statuses()
	if lane < 0 || lane >= len(statuses) {
		m.board.DragEnd()
		m.status = "drop cancelled"
		return m, nil
	}
	taskID, _ := board.DraggingTaskID(m.board.Drag())
	before, known := m.board.Task(taskID)
	target := statuses[lane]
	droppedID, ok := m.board.Drop(target)
	if !ok {
		m.logger.Warn("drop ignored", "task_id", taskID, "status", target)
		m.status = "drop ignored"
		return m, nil
	}
	m.focusTaskByID(droppedID)
	if known && before.Status == target {
		m.status = "card returned to " + string(target)
		return m, nil
	}
	m.status = truncate(before.Title, 32) + " → " + string(target)
	return m, m.queueStatusSave(droppedID, target)
}

// applyStatus sets one task status locally and persists it.
func (m Model) applyStatus(taskID string, status domain.Status) (tea.Model, tea.Cmd) {
	before, ok := m.board.Task(taskID)
	if !ok || !m.board.SetStatus(taskID, status) {
		m.logger.Warn("status change ignored for unknown task", "task_id", taskID, "status", status)
		m.status = "task not found"
		return m, nil
	}
	m.focusTaskByID(taskID)
	if before.Status == status {
		m.status = "status unchanged"
		return m, nil
	}
	m.status = truncate(before.Title, 32) + " → " + string(status)
	return m, m.queueStatusSave(taskID, status)
}

// setViewMode switches views and persists the choice.
func (m Model) setViewMode(mode domain.ViewMode) (tea.Model, tea.Cmd) {
	if !m.board.SetViewMode(mode) {
		return m, nil
	}
	m.board.DragEnd()
	m.mouseDragging = false
	m.clampCursors()
	m.status = "view: " + string(mode)
	return m, m.savePreferenceCmd(app.PreferenceViewMode, string(mode))
}

// copySummary copies selected tasks, or the current task, to the clipboard.
func (m Model) copySummary() (tea.Model, tea.Cmd) {
	tasks := m.selectedTasks()
	if len(tasks) == 0 {
		task, ok := m.currentTask()
		if !ok {
			m.status = "nothing to copy"
			return m, nil
		}
		tasks = []domain.Task{task}
	}
	text := m.summarize(tasks)
	write := m.writeClipboard
	count := len(tasks)
	return m, func() tea.Msg {
		return clipboardMsg{count: count, err: write(text)}
	}
}

// summarize renders one plain-text line per task.
func (m Model) summarize(tasks []domain.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		parts := []string{fmt.Sprintf("%s [%s]", task.Title, task.Status), string(task.Priority)}
		if task.Assignee.Name != "" {
			parts = append(parts, "@"+task.Assignee.Name)
		}
		if !task.EndDate.IsZero() {
			parts = append(parts, "due "+task.EndDate.Format(m.cfg.DateFormat))
		}
		parts = append(parts, fmt.Sprintf("%d%%", task.Progress))
		lines = append(lines, "- "+strings.Join(parts, " • "))
	}
	return strings.Join(lines, "\n")
}

// selectedTasks returns the selected tasks in collection order.
func (m Model) selectedTasks() []domain.Task {
	ids := m.board.Selected()
	out := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		if task, ok := m.board.Task(id); ok {
			out = append(out, task)
		}
	}
	return out
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		switch msg.String() {
		case "esc":
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.board.SetSearch("")
			m.mode = modeNone
			m.clampCursors()
			m.status = "search cleared"
			return m, nil
		case "enter":
			m.searchInput.Blur()
			m.mode = modeNone
			m.status = fmt.Sprintf("%d matches", len(m.board.Visible()))
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.board.SetSearch(m.searchInput.Value())
		m.clampCursors()
		return m, cmd

	case modeFilter:
		return m.handleFilterKey(msg)

	case modeStatusPicker:
		statuses := domain.Statuses()
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.status = "ready"
			return m, nil
		case "j", "down", "s":
			m.statusPickerIdx = wrapIndex(m.statusPickerIdx, 1, len(statuses))
			return m, nil
		case "k", "up":
			m.statusPickerIdx = wrapIndex(m.statusPickerIdx, -1, len(statuses))
			return m, nil
		case "enter":
			m.mode = modeNone
			return m.applyStatus(m.statusPickerTaskID, statuses[m.statusPickerIdx])
		}
		return m, nil

	case modeCreate:
		return m.handleCreateFormKey(msg)

	case modeNotifications:
		switch msg.String() {
		case "esc", "!":
			m.mode = modeNone
			m.status = "ready"
			return m, nil
		case "j", "down":
			m.notificationCursor = clamp(m.notificationCursor+1, 0, len(m.notifications)-1)
			return m, nil
		case "k", "up":
			m.notificationCursor = clamp(m.notificationCursor-1, 0, len(m.notifications)-1)
			return m, nil
		case "enter":
			if len(m.notifications) == 0 {
				return m, nil
			}
			id := m.notifications[m.notificationCursor].ID
			return m, func() tea.Msg {
				_, err := m.svc.MarkNotificationRead(m.context(), id)
				if err != nil {
					return notificationsMarkedMsg{err: err}
				}
				return notificationsMarkedMsg{count: 1}
			}
		case "a":
			return m, func() tea.Msg {
				n, err := m.svc.MarkAllNotificationsRead(m.context())
				return notificationsMarkedMsg{count: n, err: err}
			}
		}
		return m, nil
	}
	return m, nil
}

// handleFilterKey drives the filter picker.
func (m Model) handleFilterKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	categories := board.Categories()
	options := m.filterOptions()
	switch msg.String() {
	case "esc", "f", "enter":
		m.mode = modeNone
		m.clampCursors()
		m.status = fmt.Sprintf("%d of %d tasks shown", len(m.board.Visible()), m.board.Len())
		return m, nil
	case "h", "left", "shift+tab":
		m.filterCategory = wrapIndex(m.filterCategory, -1, len(categories))
		m.filterCursor = 0
	case "l", "right", "tab":
		m.filterCategory = wrapIndex(m.filterCategory, 1, len(categories))
		m.filterCursor = 0
	case "j", "down":
		m.filterCursor = clamp(m.filterCursor+1, 0, len(options)-1)
	case "k", "up":
		m.filterCursor = clamp(m.filterCursor-1, 0, len(options)-1)
	case " ", "space":
		if len(options) > 0 {
			m.board.ToggleFilterValue(categories[m.filterCategory], options[m.filterCursor])
			m.clampCursors()
		}
	case "c":
		m.board.ClearFilters()
		m.clampCursors()
		m.status = "filters cleared"
	}
	return m, nil
}

// filterOptions lists the values of the active filter category.
func (m Model) filterOptions() []string {
	categories := board.Categories()
	return board.FilterOptions(m.board.Tasks(), categories[clamp(m.filterCategory, 0, len(categories)-1)])
}

// startCreateForm opens an empty create form.
func (m *Model) startCreateForm() tea.Cmd {
	m.mode = modeCreate
	m.formErrors = nil
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", "", 200),
		newModalInput("", "assignee name", m.cfg.DisplayName, 80),
		newModalInput("", "High | Medium | Low", "", 16),
		newModalInput("", "To Do | In Progress | Review | Completed", "", 24),
		newModalInput("", "YYYY-MM-DD", "", 10),
		newModalInput("", "YYYY-MM-DD", "", 10),
		newModalInput("", "project", "", 80),
		newModalInput("", "markdown description", "", 2000),
	}
	m.status = "new task"
	return m.focusFormField(0)
}

// focusFormField focuses one create-form input.
func (m *Model) focusFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	m.formFocus = clamp(idx, 0, len(m.formInputs)-1)
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	return m.formInputs[m.formFocus].Focus()
}

// closeForm drops the create form.
func (m *Model) closeForm() {
	m.mode = modeNone
	m.formInputs = nil
	m.formErrors = nil
	m.formFocus = 0
}

// formInput converts the create form into a service input.
func (m Model) formInput() app.CreateTaskInput {
	value := func(idx int) string {
		if idx >= len(m.formInputs) {
			return ""
		}
		return strings.TrimSpace(m.formInputs[idx].Value())
	}
	return app.CreateTaskInput{
		Title:        value(createFieldTitle),
		AssigneeName: value(createFieldAssignee),
		Priority:     value(createFieldPriority),
		Status:       value(createFieldStatus),
		StartDate:    value(createFieldStart),
		EndDate:      value(createFieldEnd),
		Project:      value(createFieldProject),
		Description:  value(createFieldDescription),
	}
}

// handleCreateFormKey drives the create form.
func (m Model) handleCreateFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.status = "create cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusFormField(wrapIndex(m.formFocus, 1, len(m.formInputs)))
	case "shift+tab", "up":
		return m, m.focusFormField(wrapIndex(m.formFocus, -1, len(m.formInputs)))
	case "enter":
		if m.formFocus < len(m.formInputs)-1 {
			return m, m.focusFormField(m.formFocus + 1)
		}
		return m.submitCreateForm()
	case "ctrl+s":
		return m.submitCreateForm()
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	delete(m.formErrors, createFormFields[m.formFocus])
	return m, cmd
}

// submitCreateForm validates the form inline and then creates the task.
func (m Model) submitCreateForm() (tea.Model, tea.Cmd) {
	in := m.formInput()
	if err := in.Validate(); err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			m.formErrors = verr.Fields
			for idx, field := range createFormFields {
				if _, bad := verr.Fields[field]; bad {
					m.status = "fix the highlighted fields"
					return m, m.focusFormField(idx)
				}
			}
			m.status = "fix the highlighted fields"
			return m, nil
		}
		m.status = "create failed: " + err.Error()
		return m, nil
	}
	m.status = "saving..."
	return m, func() tea.Msg {
		task, err := m.svc.CreateTask(m.context(), in)
		return taskCreatedMsg{task: task, err: err}
	}
}

// newModalInput constructs one text input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.moveCursor(0, -1)
	case tea.MouseWheelDown:
		m.moveCursor(0, 1)
	}
	return m, nil
}

// handleMouseClick selects rows, sorts list columns and picks up kanban cards.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	switch m.board.ViewMode() {
	case domain.ViewModeList:
		if msg.Y == m.bodyTop() {
			if column, ok := m.listColumnAt(msg.X); ok && column.sort != board.SortNone {
				m.board.ToggleSort(column.sort)
				m.status = "sort: " + sortLabel(m.board.Sort())
			}
			return m, nil
		}
		if idx := m.listRowAt(msg.Y); idx >= 0 {
			m.listCursor = idx
		}
	case domain.ViewModeKanban:
		lane, row := m.kanbanHit(msg.X, msg.Y)
		if lane < 0 {
			return m, nil
		}
		m.kanbanCol = lane
		if row < 0 {
			m.clampCursors()
			return m, nil
		}
		m.kanbanRow = row
		task, ok := m.currentTask()
		if ok && m.board.DragStart(task.ID) {
			m.dragOver = lane
			m.mouseDragging = true
			m.status = "dragging " + truncate(task.Title, 32)
		}
	case domain.ViewModeFocus:
		if idx := m.focusRowAt(msg.Y); idx >= 0 {
			m.focusCursor = idx
		}
	}
	return m, nil
}

// handleMouseMotion tracks the lane under a dragged card.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDragging {
		return m, nil
	}
	if lane := m.kanbanLaneAt(msg.X); lane >= 0 {
		m.dragOverLane(lane)
	}
	return m, nil
}

// handleMouseRelease drops a dragged card on the lane under the pointer.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDragging {
		return m, nil
	}
	m.mouseDragging = false
	return m.dropOnLane(m.kanbanLaneAt(msg.X))
}

// currentTask returns the task under the cursor of the active view.
func (m Model) currentTask() (domain.Task, bool) {
	switch m.board.ViewMode() {
	case domain.ViewModeKanban:
		lanes := board.KanbanColumns(m.board.Visible())
		if m.kanbanCol < 0 || m.kanbanCol >= len(lanes) {
			return domain.Task{}, false
		}
		tasks := lanes[m.kanbanCol].Tasks
		if m.kanbanRow < 0 || m.kanbanRow >= len(tasks) {
			return domain.Task{}, false
		}
		return tasks[m.kanbanRow], true
	case domain.ViewModeFocus:
		queue := board.FocusQueue(m.board.Visible())
		if m.focusCursor < 0 || m.focusCursor >= len(queue) {
			return domain.Task{}, false
		}
		return queue[m.focusCursor], true
	default:
		visible := m.board.Visible()
		if m.listCursor < 0 || m.listCursor >= len(visible) {
			return domain.Task{}, false
		}
		return visible[m.listCursor], true
	}
}

// moveCursor moves the active view cursor by dx lanes and dy rows.
func (m *Model) moveCursor(dx, dy int) {
	switch m.board.ViewMode() {
	case domain.ViewModeKanban:
		if dx != 0 {
			m.kanbanCol = clamp(m.kanbanCol+dx, 0, len(domain.Statuses())-1)
		}
		m.kanbanRow += dy
	case domain.ViewModeFocus:
		m.focusCursor += dy
	default:
		m.listCursor += dy
	}
	m.clampCursors()
}

// clampCursors keeps every cursor inside its projection.
func (m *Model) clampCursors() {
	visible := m.board.Visible()
	m.listCursor = clamp(m.listCursor, 0, len(visible)-1)
	lanes := board.KanbanColumns(visible)
	m.kanbanCol = clamp(m.kanbanCol, 0, len(lanes)-1)
	m.kanbanRow = clamp(m.kanbanRow, 0, len(lanes[m.kanbanCol].Tasks)-1)
	m.focusCursor = clamp(m.focusCursor, 0, len(board.FocusQueue(visible))-1)
}

// focusTaskByID moves every cursor onto taskID when it is visible.
func (m *Model) focusTaskByID(taskID string) {
	visible := m.board.Visible()
	for idx, task := range visible {
		if task.ID == taskID {
			m.listCursor = idx
			break
		}
	}
	for laneIdx, lane := range board.KanbanColumns(visible) {
		for rowIdx, task := range lane.Tasks {
			if task.ID == taskID {
				m.kanbanCol = laneIdx
				m.kanbanRow = rowIdx
			}
		}
	}
	for idx, task := range board.FocusQueue(visible) {
		if task.ID == taskID {
			m.focusCursor = idx
			break
		}
	}
	m.clampCursors()
}

// nextSortColumn advances to the following sortable column, ascending.
func nextSortColumn(current board.SortState) board.SortState {
	columns := board.SortColumns()
	next := columns[0]
	for idx, column := range columns {
		if column == current.Column {
			if idx+1 >= len(columns) {
				return board.SortState{}
			}
			next = columns[idx+1]
			break
		}
	}
	return board.ToggleSort(board.SortState{}, next)
}

// sortLabel describes the active sort.
func sortLabel(state board.SortState) string {
	if state.Column == board.SortNone {
		return "none"
	}
	return string(state.Column) + " " + string(state.Direction)
}

// wrapIndex moves current by delta with wrap-around.
func wrapIndex(current, delta, total int) int {
	if total <= 0 {
		return 0
	}
	return ((current+delta)%total + total) % total
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
