package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/theme"
)

// layout constants shared by rendering and mouse hit testing.
const (
	listPrefixWidth = 4
	kanbanCardLines = 3
	footerLines     = 3
)

// listColumn describes one list-view column.
type listColumn struct {
	title string
	sort  board.SortColumn
	width int
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		return newView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
	}
	if !m.ready {
		return newView("loading...")
	}

	accent := lipgloss.Color(theme.Accent)
	muted := lipgloss.Color(theme.Muted)
	dim := lipgloss.Color(theme.Border)
	statusStyle := lipgloss.NewStyle().Foreground(muted)

	var body string
	switch m.board.ViewMode() {
	case domain.ViewModeKanban:
		body = m.renderKanban(accent, muted, dim)
	case domain.ViewModeFocus:
		body = m.renderFocus(accent, muted, dim)
	default:
		body = m.renderList(accent, muted)
	}

	sections := []string{m.renderHeader(accent, muted), m.renderToolbar(muted), "", body}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	footer := statusStyle.Render(m.status) + "\n" + lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(footer)))
	}
	full := content + "\n" + footer

	overlay := m.renderModeOverlay(accent, muted, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, dim, m.width-8)
	}
	if overlay != "" {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, height))
	}
	return newView(full)
}

// newView wraps content with the program's screen settings.
func newView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderHeader renders the title line with counters.
func (m Model) renderHeader(accent, muted color.Color) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("taskboard")
	meta := lipgloss.NewStyle().Foreground(muted)
	header := title + meta.Render("  ["+string(m.board.ViewMode())+"]")
	header += meta.Render(fmt.Sprintf("  %d/%d tasks", len(m.board.Visible()), m.board.Len()))
	if n := len(m.board.Selected()); n > 0 {
		header += meta.Render(fmt.Sprintf("  • %d selected", n))
	}
	if m.unread > 0 {
		header += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Warning)).Render(fmt.Sprintf("  • %d unread", m.unread))
	}
	if taskID, dragging := board.DraggingTaskID(m.board.Drag()); dragging {
		if task, ok := m.board.Task(taskID); ok {
			header += meta.Render("  • dragging " + truncate(task.Title, 24))
		}
	}
	if m.exporting {
		header += meta.Render("  • exporting")
	}
	return header
}

// renderToolbar renders the search, filter and sort summary.
func (m Model) renderToolbar(muted color.Color) string {
	style := lipgloss.NewStyle().Foreground(muted)
	search := "search: " + valueOr(m.board.Search(), "-")
	if m.mode == modeSearch {
		search = m.searchInput.View()
	}
	parts := []string{search, "filters: " + filterSummary(m.board.Filters())}
	if m.board.ViewMode() == domain.ViewModeList {
		parts = append(parts, "sort: "+sortLabel(m.board.Sort()))
	}
	return style.Render(strings.Join(parts, "  •  "))
}

// filterSummary lists active filter values per category.
func filterSummary(f board.Filter) string {
	if f.Empty() {
		return "none"
	}
	parts := make([]string, 0, len(board.Categories()))
	for _, category := range board.Categories() {
		if set := f.Set(category); len(set) > 0 {
			parts = append(parts, string(category)+"="+strings.Join(set.Sorted(), ","))
		}
	}
	return strings.Join(parts, "; ")
}

// listColumns returns the visible list columns sized for the terminal.
func (m Model) listColumns() []listColumn {
	columns := []listColumn{{title: "Title", sort: board.SortTitle}}
	if m.cfg.ShowAssignee {
		columns = append(columns, listColumn{title: "Assignee", sort: board.SortAssignee, width: 14})
	}
	columns = append(columns,
		listColumn{title: "Priority", sort: board.SortPriority, width: 8},
		listColumn{title: "Status", sort: board.SortStatus, width: 11},
		listColumn{title: "Project", sort: board.SortProject, width: 14},
		listColumn{title: "Start", sort: board.SortStart, width: 12},
		listColumn{title: "End", sort: board.SortEnd, width: 12},
	)
	if m.cfg.ShowProgress {
		columns = append(columns, listColumn{title: "Progress", sort: board.SortProgress, width: 8})
	}
	fixed := listPrefixWidth
	for _, column := range columns[1:] {
		fixed += column.width + 1
	}
	columns[0].width = max(16, m.width-fixed-1)
	return columns
}

// listColumnAt maps a screen x to a list column.
func (m Model) listColumnAt(x int) (listColumn, bool) {
	x -= listPrefixWidth
	if x < 0 {
		return listColumn{}, false
	}
	for _, column := range m.listColumns() {
		if x < column.width {
			return column, true
		}
		x -= column.width + 1
	}
	return listColumn{}, false
}

// listWindow is the number of task rows the list can show.
func (m Model) listWindow() int {
	if m.height <= 0 {
		return max(1, m.board.Len())
	}
	return max(1, m.height-m.bodyTop()-1-footerLines)
}

// listRowAt maps a screen y to a visible task index.
func (m Model) listRowAt(y int) int {
	visible := m.board.Visible()
	start, end := windowBounds(len(visible), m.listCursor, m.listWindow())
	idx := start + y - m.bodyTop() - 1
	if y <= m.bodyTop() || idx >= end {
		return -1
	}
	return idx
}

// renderList renders the list view.
func (m Model) renderList(accent, muted color.Color) string {
	columns := m.listColumns()
	current := m.board.Sort()
	headerCells := make([]string, 0, len(columns))
	for _, column := range columns {
		title := column.title
		if column.sort == current.Column {
			if current.Direction == board.Descending {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		headerCells = append(headerCells, pad(title, column.width))
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Header))
	lines := []string{strings.Repeat(" ", listPrefixWidth) + headerStyle.Render(strings.Join(headerCells, " "))}

	visible := m.board.Visible()
	if len(visible) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("    (no tasks match)"))
		return strings.Join(lines, "\n")
	}
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	start, end := windowBounds(len(visible), m.listCursor, m.listWindow())
	for idx := start; idx < end; idx++ {
		task := visible[idx]
		prefix := "  "
		if idx == m.listCursor {
			prefix = cursorStyle.Render("› ")
		}
		if m.board.IsSelected(task.ID) {
			prefix += "* "
		} else {
			prefix += "  "
		}
		cells := make([]string, 0, len(columns))
		for _, column := range columns {
			cells = append(cells, m.listCell(task, column))
		}
		row := strings.Join(cells, " ")
		if idx == m.listCursor {
			row = lipgloss.NewStyle().Bold(true).Render(row)
		}
		lines = append(lines, prefix+row)
	}
	return strings.Join(lines, "\n")
}

// listCell renders one padded list cell.
func (m Model) listCell(task domain.Task, column listColumn) string {
	switch column.sort {
	case board.SortTitle:
		return pad(task.Title, column.width)
	case board.SortAssignee:
		return pad(valueOr(task.Assignee.Name, "-"), column.width)
	case board.SortPriority:
		return colored(pad(string(task.Priority), column.width), theme.PriorityColor(task.Priority))
	case board.SortStatus:
		return colored(pad(string(task.Status), column.width), theme.StatusColor(task.Status))
	case board.SortProject:
		return pad(valueOr(task.Project, "-"), column.width)
	case board.SortStart:
		return pad(m.formatDate(task.StartDate), column.width)
	case board.SortEnd:
		return pad(m.formatDate(task.EndDate), column.width)
	case board.SortProgress:
		return pad(fmt.Sprintf("%d%%", task.Progress), column.width)
	default:
		return pad("", column.width)
	}
}

// laneSpan is the screen width reserved for one kanban lane.
func (m Model) laneSpan() int {
	if m.width <= 0 {
		return 30
	}
	return max(22, m.width/len(domain.Statuses()))
}

// lanesTop is the screen row of the first card inside every lane.
func (m Model) lanesTop() int {
	// border + lane title + blank line
	return m.bodyTop() + 3
}

// cardsPerLane is how many cards fit in one lane.
func (m Model) cardsPerLane() int {
	if m.height <= 0 {
		return max(1, m.board.Len())
	}
	inner := m.height - m.lanesTop() - 1 - footerLines
	return max(1, inner/kanbanCardLines)
}

// laneStart returns the first card index drawn in lane.
func (m Model) laneStart(lane, total int) int {
	if lane != m.kanbanCol {
		return 0
	}
	start, _ := windowBounds(total, m.kanbanRow, m.cardsPerLane())
	return start
}

// kanbanLaneAt maps a screen x to a lane index, or -1.
func (m Model) kanbanLaneAt(x int) int {
	if x < 0 {
		return -1
	}
	lane := x / m.laneSpan()
	if lane >= len(domain.Statuses()) {
		return -1
	}
	return lane
}

// kanbanHit maps a screen position to a lane and card row. row is -1 when the
// position is inside a lane but not on a card.
func (m Model) kanbanHit(x, y int) (int, int) {
	lane := m.kanbanLaneAt(x)
	if lane < 0 || y < m.bodyTop() {
		return -1, -1
	}
	rel := y - m.lanesTop()
	if rel < 0 {
		return lane, -1
	}
	tasks := board.KanbanColumns(m.board.Visible())[lane].Tasks
	row := m.laneStart(lane, len(tasks)) + rel/kanbanCardLines
	if row >= len(tasks) || rel/kanbanCardLines >= m.cardsPerLane() {
		return lane, -1
	}
	return lane, row
}

// renderKanban renders one lane per status.
func (m Model) renderKanban(accent, muted, dim color.Color) string {
	span := m.laneSpan()
	draggedID, dragging := board.DraggingTaskID(m.board.Drag())
	cardWidth := max(8, span-6)
	lanes := board.KanbanColumns(m.board.Visible())
	views := make([]string, 0, len(lanes))
	for laneIdx, lane := range lanes {
		laneColor := lipgloss.Color(theme.StatusColor(lane.Status))
		titleText := fmt.Sprintf("%s (%d)", lane.Status, len(lane.Tasks))
		if dragging && laneIdx == m.dragOver {
			titleText += " ↓ drop"
		}
		lines := []string{lipgloss.NewStyle().Bold(true).Foreground(laneColor).Render(titleText), ""}

		start := m.laneStart(laneIdx, len(lane.Tasks))
		end := min(len(lane.Tasks), start+m.cardsPerLane())
		if len(lane.Tasks) == 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("(empty)"))
		}
		for rowIdx := start; rowIdx < end; rowIdx++ {
			task := lane.Tasks[rowIdx]
			mark := " "
			switch {
			case dragging && task.ID == draggedID:
				mark = "⇢"
			case laneIdx == m.kanbanCol && rowIdx == m.kanbanRow:
				mark = "›"
			}
			if m.board.IsSelected(task.ID) {
				mark += "*"
			} else {
				mark += " "
			}
			title := mark + truncate(task.Title, cardWidth)
			meta := "  " + colored(string(task.Priority), theme.PriorityColor(task.Priority))
			if m.cfg.ShowAssignee && task.Assignee.Name != "" {
				meta += " • " + truncate(valueOr(task.Assignee.Avatar, task.Assignee.Name), 10)
			}
			if m.cfg.ShowProgress {
				meta += fmt.Sprintf(" • %d%%", task.Progress)
			}
			switch {
			case dragging && task.ID == draggedID:
				title = lipgloss.NewStyle().Reverse(true).Render(title)
			case laneIdx == m.kanbanCol && rowIdx == m.kanbanRow:
				title = lipgloss.NewStyle().Bold(true).Foreground(accent).Render(title)
			}
			lines = append(lines, title, meta, "")
		}

		borderColor := dim
		switch {
		case dragging && laneIdx == m.dragOver:
			borderColor = accent
		case !dragging && laneIdx == m.kanbanCol:
			borderColor = laneColor
		}
		content := strings.Join(lines, "\n")
		if m.height > 0 {
			content = fitLines(content, 2+m.cardsPerLane()*kanbanCardLines)
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			Width(span - 2).
			Render(content)
		views = append(views, lipgloss.PlaceHorizontal(span, lipgloss.Left, box))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// focusRowAt maps a screen y to a focus queue index.
func (m Model) focusRowAt(y int) int {
	queue := board.FocusQueue(m.board.Visible())
	rowsTop := m.bodyTop() + 2
	start, end := windowBounds(len(queue), m.focusCursor, m.listWindow()-2)
	idx := start + y - rowsTop
	if y < rowsTop || idx >= end {
		return -1
	}
	return idx
}

// renderFocus renders the focus queue with a detail pane.
func (m Model) renderFocus(accent, muted, dim color.Color) string {
	queue := board.FocusQueue(m.board.Visible())
	leftWidth := max(28, m.width*2/5)
	rightWidth := max(28, m.width-leftWidth-2)

	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(accent).Render(fmt.Sprintf("Focus queue (%d)", len(queue)))}
	if len(queue) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("nothing open, nice"))
	}
	start, end := windowBounds(len(queue), m.focusCursor, m.listWindow()-2)
	for idx := start; idx < end; idx++ {
		task := queue[idx]
		prefix := "  "
		if idx == m.focusCursor {
			prefix = "› "
		}
		badge := colored(statusBadge(task.Status), theme.StatusColor(task.Status))
		line := prefix + badge + " " + truncate(task.Title, max(4, leftWidth-12))
		if idx == m.focusCursor {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		lines = append(lines, line)
	}
	left := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(leftWidth).
		Render(strings.Join(lines, "\n"))

	detail := lipgloss.NewStyle().Foreground(muted).Render("select a task")
	if m.focusCursor >= 0 && m.focusCursor < len(queue) {
		detail = m.renderTaskDetail(queue[m.focusCursor], accent, muted, rightWidth-4)
	}
	right := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(rightWidth).
		Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// renderTaskDetail renders one task with its markdown description.
func (m Model) renderTaskDetail(task domain.Task, accent, muted color.Color, width int) string {
	hint := lipgloss.NewStyle().Foreground(muted)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(task.Title),
		colored(string(task.Status), theme.StatusColor(task.Status)) + " • " + colored(string(task.Priority), theme.PriorityColor(task.Priority)),
		hint.Render("assignee: " + valueOr(task.Assignee.Name, "-") + " • project: " + valueOr(task.Project, "-")),
		hint.Render("dates: " + m.formatDate(task.StartDate) + " → " + m.formatDate(task.EndDate)),
		hint.Render("progress: ") + progressBar(task.Progress, 20),
		hint.Render(fmt.Sprintf("subtasks: %d/%d", task.CompletedSubtasks, task.Subtasks)),
	}
	if task.TimeTracked != "" || task.TimeEstimated != "" {
		lines = append(lines, hint.Render("time: "+valueOr(task.TimeTracked, "-")+" of "+valueOr(task.TimeEstimated, "-")))
	}
	if desc := m.md.render(task.Description, width); desc != "" {
		lines = append(lines, "", desc)
	}
	return strings.Join(lines, "\n")
}

// renderModeOverlay renders the modal for the active input mode.
func (m Model) renderModeOverlay(accent, muted color.Color, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(clamp(maxWidth, 36, 72))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeStatusPicker:
		task, _ := m.board.Task(m.statusPickerTaskID)
		lines := []string{titleStyle.Render("Set status"), truncate(task.Title, 48), ""}
		for idx, status := range domain.Statuses() {
			prefix := "  "
			if idx == m.statusPickerIdx {
				prefix = "› "
			}
			label := colored(string(status), theme.StatusColor(status))
			if status == task.Status {
				label += hintStyle.Render(" (current)")
			}
			lines = append(lines, prefix+label)
		}
		lines = append(lines, "", hintStyle.Render("j/k choose • enter apply • esc cancel"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeFilter:
		categories := board.Categories()
		active := categories[clamp(m.filterCategory, 0, len(categories)-1)]
		tabs := make([]string, 0, len(categories))
		for _, category := range categories {
			label := string(category)
			if n := len(m.board.Filters().Set(category)); n > 0 {
				label += fmt.Sprintf("(%d)", n)
			}
			if category == active {
				label = titleStyle.Render("[" + label + "]")
			} else {
				label = hintStyle.Render(" " + label + " ")
			}
			tabs = append(tabs, label)
		}
		lines := []string{titleStyle.Render("Filters"), strings.Join(tabs, " "), ""}
		selected := m.board.Filters().Set(active)
		options := m.filterOptions()
		if len(options) == 0 {
			lines = append(lines, hintStyle.Render("(no values)"))
		}
		for idx, option := range options {
			prefix := "  "
			if idx == m.filterCursor {
				prefix = "› "
			}
			check := "[ ] "
			if selected.Has(option) {
				check = "[x] "
			}
			lines = append(lines, prefix+check+option)
		}
		lines = append(lines, "", hintStyle.Render("h/l category • j/k move • space toggle • c clear • esc done"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeCreate:
		labels := []string{"Title", "Assignee", "Priority", "Status", "Start", "End", "Project", "Description"}
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Danger))
		lines := []string{titleStyle.Render("New task"), ""}
		for idx, input := range m.formInputs {
			label := pad(labels[idx]+":", 13)
			if idx == m.formFocus {
				label = titleStyle.Render(label)
			} else {
				label = hintStyle.Render(label)
			}
			lines = append(lines, label+input.View())
			if msg, bad := m.formErrors[createFormFields[idx]]; bad {
				lines = append(lines, errStyle.Render("             "+labels[idx]+" "+msg))
			}
		}
		lines = append(lines, "", hintStyle.Render("tab/shift+tab move • enter next • ctrl+s save • esc cancel"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeNotifications:
		lines := []string{titleStyle.Render(fmt.Sprintf("Notifications (%d unread)", m.unread))}
		if len(m.notifications) == 0 {
			lines = append(lines, hintStyle.Render("(nothing yet)"))
		}
		start, end := windowBounds(len(m.notifications), m.notificationCursor, notificationListWindow)
		for idx := start; idx < end; idx++ {
			item := m.notifications[idx]
			prefix := "  "
			if idx == m.notificationCursor {
				prefix = "› "
			}
			marker := "  "
			if item.Unread() {
				marker = colored("● ", theme.Warning)
			}
			line := prefix + marker + formatTimestamp(item.CreatedAt) + "  " + truncate(item.Title, 40)
			lines = append(lines, line)
			if idx == m.notificationCursor && item.Body != "" {
				lines = append(lines, hintStyle.Render("      "+truncate(item.Body, 60)))
			}
		}
		lines = append(lines, "", hintStyle.Render("j/k move • enter mark read • a mark all • esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// renderHelpOverlay renders the full key reference.
func (m Model) renderHelpOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("taskboard help")
	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Workflows"),
		"1. tab or 1/2/3 switch list • kanban • focus",
		"2. s set status • g grab a card, h/l pick a lane, enter drop, esc cancel",
		"3. drag a kanban card with the mouse and release over a lane",
		"4. space select • A select all visible • B bulk action • esc clear",
		"5. / search titles • f filters • o/O sort (or click a list header)",
		"6. n new task • x export snapshot • y copy summary • ! notifications",
	}
	lines := []string{
		title,
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(muted).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(muted).Render("press ? or esc to close"),
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// bodyTop is the screen row where the active view starts.
func (m Model) bodyTop() int {
	// header + toolbar + spacer
	return 3
}

// formatDate renders a calendar date with the configured layout.
func (m Model) formatDate(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(m.cfg.DateFormat)
}

// formatTimestamp renders a notification time.
func formatTimestamp(at time.Time) string {
	if at.IsZero() {
		return "--:--"
	}
	return at.Local().Format("Jan 2 15:04")
}

// statusBadge returns a fixed-width status tag.
func statusBadge(status domain.Status) string {
	switch status {
	case domain.StatusInProgress:
		return "[IP]"
	case domain.StatusReview:
		return "[RV]"
	case domain.StatusCompleted:
		return "[OK]"
	default:
		return "[TD]"
	}
}

// progressBar renders pct as a bar of width cells.
func progressBar(pct, width int) string {
	pct = clamp(pct, 0, 100)
	filled := pct * width / 100
	bar := colored(strings.Repeat("█", filled), theme.Success) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d%%", bar, pct)
}

// colored renders s in one ANSI-256 color.
func colored(s, code string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(code)).Render(s)
}

// valueOr returns fallback for blank values.
func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	s = truncate(s, width)
	if n := utf8.RuneCountInString(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// windowBounds returns the [start, end) slice of total rows that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	if windowSize <= 0 || windowSize >= total {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	start := 0
	if selected >= windowSize {
		start = selected - windowSize + 1
	}
	return start, min(total, start+windowSize)
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
