package interfaces

import (
	"context"

	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// TaskRepository defines the interface for Task data access
type TaskRepository interface {
	// Create creates a new task with auto-generated ID
	Create(ctx context.Context, task *model.Task) (*model.Task, error)

	// Get retrieves a task by ID
	Get(ctx context.Context, id int64) (*model.Task, error)

	// List retrieves tasks with optional filtering
	List(ctx context.Context, opts ...ListTaskOption) ([]*model.Task, error)

	// Update updates an existing task
	Update(ctx context.Context, task *model.Task) (*model.Task, error)

	// UpdateStatus applies the task update only if the stored status still
	// equals from (compare-and-set). A stale from yields ErrStatusConflict
	// and no mutation.
	UpdateStatus(ctx context.Context, task *model.Task, from types.TaskStatus) (*model.Task, error)

	// GetByPeriodKey retrieves the task generated for a (template, period)
	// pair. Returns nil, nil if no such task exists.
	GetByPeriodKey(ctx context.Context, templateID int64, periodKey string) (*model.Task, error)
}
