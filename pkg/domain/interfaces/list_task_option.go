package interfaces

import (
	"time"

	"github.com/regmon-lab/themis/pkg/domain/types"
)

// ListTaskOptions holds filter criteria for listing tasks
type ListTaskOptions struct {
	Status     *types.TaskStatus
	Department *types.DepartmentID
	DueOn      *time.Time
	DueBefore  *time.Time
	DueAfter   *time.Time
}

// ListTaskOption is a functional option for task listing
type ListTaskOption func(*ListTaskOptions)

// WithStatus filters tasks by status
func WithStatus(s types.TaskStatus) ListTaskOption {
	return func(o *ListTaskOptions) { o.Status = &s }
}

// WithDepartment filters tasks by owning department
func WithDepartment(d types.DepartmentID) ListTaskOption {
	return func(o *ListTaskOptions) { o.Department = &d }
}

// WithDueOn filters tasks due exactly on the given date
func WithDueOn(t time.Time) ListTaskOption {
	return func(o *ListTaskOptions) { o.DueOn = &t }
}

// WithDueBefore filters tasks due strictly before the given date
func WithDueBefore(t time.Time) ListTaskOption {
	return func(o *ListTaskOptions) { o.DueBefore = &t }
}

// WithDueAfter filters tasks due strictly after the given date
func WithDueAfter(t time.Time) ListTaskOption {
	return func(o *ListTaskOptions) { o.DueAfter = &t }
}

// Build applies all options and returns the resulting criteria
func Build(opts ...ListTaskOption) ListTaskOptions {
	var o ListTaskOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
