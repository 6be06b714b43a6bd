package domain

import "strings"

// ViewMode selects which projection of the task collection is displayed.
type ViewMode string

// ViewMode values.
const (
	ViewModeList   ViewMode = "list"
	ViewModeKanban ViewMode = "kanban"
	ViewModeFocus  ViewMode = "focus"
)

// ViewModes returns every view mode in tab order.
func ViewModes() []ViewMode {
	return []ViewMode{ViewModeList, ViewModeKanban, ViewModeFocus}
}

// ParseViewMode is case-insensitive.
func ParseViewMode(raw string) (ViewMode, error) {
	mode := ViewMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case ViewModeList, ViewModeKanban, ViewModeFocus:
		return mode, nil
	default:
		return "", ErrInvalidViewMode
	}
}

// Next returns the following view mode, wrapping around.
func (v ViewMode) Next() ViewMode {
	modes := ViewModes()
	for idx, mode := range modes {
		if mode == v {
			return modes[(idx+1)%len(modes)]
		}
	}
	return ViewModeList
}
