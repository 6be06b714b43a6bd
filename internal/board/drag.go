package board

// DragState is either Idle or Dragging.
type DragState interface {
	isDragState()
}

// Idle means no card is being dragged.
type Idle struct{}

// Dragging carries the id of the card picked up by DragStart.
type Dragging struct {
	TaskID string
}

func (Idle) isDragState()     {}
func (Dragging) isDragState() {}

// DraggingTaskID returns the dragged task id, if any.
func DraggingTaskID(state DragState) (string, bool) {
	if d, ok := state.(Dragging); ok {
		return d.TaskID, true
	}
	return "", false
}
