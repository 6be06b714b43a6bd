// Package theme holds the ANSI-256 palette shared by the board UI and the palette tool.
package theme

import (
	"strconv"

	"github.com/evanschultz/taskboard/internal/domain"
)

// UI chrome colors.
const (
	Accent  = "62"
	Header  = "230"
	Muted   = "241"
	Border  = "238"
	Success = "42"
	Danger  = "203"
	Warning = "214"
)

// Swatch names one palette entry.
type Swatch struct {
	Name string
	ANSI string
}

// StatusColor returns the lane and badge color for status.
func StatusColor(status domain.Status) string {
	switch status {
	case domain.StatusToDo:
		return "244"
	case domain.StatusInProgress:
		return "39"
	case domain.StatusReview:
		return Warning
	case domain.StatusCompleted:
		return Success
	default:
		return Muted
	}
}

// PriorityColor returns the badge color for priority.
func PriorityColor(priority domain.Priority) string {
	switch priority {
	case domain.PriorityHigh:
		return Danger
	case domain.PriorityMedium:
		return Warning
	case domain.PriorityLow:
		return "78"
	default:
		return Muted
	}
}

// StatusSwatches lists status colors in board order.
func StatusSwatches() []Swatch {
	out := make([]Swatch, 0, 4)
	for _, status := range domain.Statuses() {
		out = append(out, Swatch{Name: string(status), ANSI: StatusColor(status)})
	}
	return out
}

// PrioritySwatches lists priority colors from High to Low.
func PrioritySwatches() []Swatch {
	out := make([]Swatch, 0, 3)
	for _, priority := range domain.Priorities() {
		out = append(out, Swatch{Name: string(priority), ANSI: PriorityColor(priority)})
	}
	return out
}

// ChromeSwatches lists the UI chrome colors.
func ChromeSwatches() []Swatch {
	return []Swatch{
		{Name: "Accent", ANSI: Accent},
		{Name: "Header", ANSI: Header},
		{Name: "Muted", ANSI: Muted},
		{Name: "Border", ANSI: Border},
		{Name: "Success", ANSI: Success},
		{Name: "Danger", ANSI: Danger},
		{Name: "Warning", ANSI: Warning},
	}
}

// ContrastText picks white or black text for a background code.
func ContrastText(code string) string {
	idx, err := strconv.Atoi(code)
	if err != nil {
		return "15"
	}
	switch {
	case idx < 16:
		switch idx {
		case 0, 1, 4, 5, 8:
			return "15"
		}
		return "0"
	case idx >= 232:
		if idx < 244 {
			return "15"
		}
		return "0"
	default:
		// Cube entries whose blue/green component is bright read better with black.
		cube := idx - 16
		r, g, b := cube/36, (cube/6)%6, cube%6
		if r*299+g*587+b*114 >= 2500 {
			return "0"
		}
		return "15"
	}
}
