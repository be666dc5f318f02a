package types

import "fmt"

// TaskAction represents a requested workflow transition on a task
type TaskAction string

const (
	// ActionSubmit moves a pending/revision task to approval by the
	// owning department
	ActionSubmit TaskAction = "submit"
	// ActionApprove advances the task one stage (department approval or
	// final compliance approval)
	ActionApprove TaskAction = "approve"
	// ActionSendBack returns a task awaiting approval to pending
	ActionSendBack TaskAction = "send_back"
	// ActionRequestRevision sends a task under compliance review (or a
	// submitted one, admin override) back to the department
	ActionRequestRevision TaskAction = "request_revision"
)

// AllTaskActions returns all valid task actions
func AllTaskActions() []TaskAction {
	return []TaskAction{
		ActionSubmit,
		ActionApprove,
		ActionSendBack,
		ActionRequestRevision,
	}
}

// IsValid checks if the task action is valid
func (a TaskAction) IsValid() bool {
	switch a {
	case ActionSubmit, ActionApprove, ActionSendBack, ActionRequestRevision:
		return true
	default:
		return false
	}
}

// String returns the string representation of the task action
func (a TaskAction) String() string {
	return string(a)
}

// ParseTaskAction parses a string into a TaskAction
func ParseTaskAction(s string) (TaskAction, error) {
	action := TaskAction(s)
	if !action.IsValid() {
		return "", fmt.Errorf("invalid task action: %s", s)
	}
	return action, nil
}
