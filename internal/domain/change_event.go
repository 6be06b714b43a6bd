package domain

import "time"

// ChangeOperation describes a persisted activity operation for a task.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate   ChangeOperation = "create"
	ChangeOperationStatus   ChangeOperation = "status"
	ChangeOperationProgress ChangeOperation = "progress"
	ChangeOperationImport   ChangeOperation = "import"
)

// ChangeEvent represents a single activity-log entry for a task.
type ChangeEvent struct {
	ID         int64
	TaskID     string
	Operation  ChangeOperation
	Actor      string
	Metadata   map[string]string
	OccurredAt time.Time
}
