package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidTitle     = errors.New("invalid title")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidViewMode  = errors.New("invalid view mode")
	ErrInvalidProgress  = errors.New("invalid progress")
	ErrInvalidSubtasks  = errors.New("invalid subtask counts")
	ErrInvalidDateRange = errors.New("end date before start date")
)
