package interfaces

import (
	"context"

	"github.com/regmon-lab/themis/pkg/domain/model"
)

// RemarkRepository defines the interface for TaskRemark data access.
// Remarks are append-only; there is no update or delete.
type RemarkRepository interface {
	// Add appends a remark to a task
	Add(ctx context.Context, remark *model.TaskRemark) (*model.TaskRemark, error)

	// ListByTask retrieves all remarks of a task, oldest first
	ListByTask(ctx context.Context, taskID int64) ([]*model.TaskRemark, error)
}

// EventRepository defines the interface for TransitionEvent data access
type EventRepository interface {
	// Record appends a transition event
	Record(ctx context.Context, event *model.TransitionEvent) error

	// ListByTask retrieves all events of a task, oldest first
	ListByTask(ctx context.Context, taskID int64) ([]*model.TransitionEvent, error)
}
