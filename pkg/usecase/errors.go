package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrTaskNotFound       = errors.New("task not found")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrUserNotFound       = errors.New("user not found")

	// Access control errors
	ErrAccessDenied = errors.New("access denied")

	// Workflow errors
	ErrInvalidTransition  = errors.New("transition not allowed from current status")
	ErrMissingDelayReason = errors.New("reason for delay is required for overdue submission")
	ErrTaskLocked         = errors.New("task is locked after final submission")
	ErrConflict           = errors.New("task was modified concurrently")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
)

// Context keys for error values
const (
	TaskIDKey     = "task_id"
	TemplateIDKey = "template_id"
	ActorKey      = "actor"
	ActionKey     = "action"
	StatusKey     = "status"
)
