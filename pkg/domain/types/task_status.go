package types

import "fmt"

// TaskStatus represents the workflow status of a compliance task
type TaskStatus string

const (
	TaskStatusPending      TaskStatus = "pending"
	TaskStatusToBeApproved TaskStatus = "to_be_approved"
	TaskStatusReview       TaskStatus = "review"
	TaskStatusSubmitted    TaskStatus = "submitted"
	TaskStatusRevision     TaskStatus = "revision"
)

// AllTaskStatuses returns all valid task statuses
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusPending,
		TaskStatusToBeApproved,
		TaskStatusReview,
		TaskStatusSubmitted,
		TaskStatusRevision,
	}
}

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending,
		TaskStatusToBeApproved,
		TaskStatusReview,
		TaskStatusSubmitted,
		TaskStatusRevision:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the normal workflow.
// A submitted task can still be forced back to revision by an admin.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusSubmitted
}

// String returns the string representation of the task status
func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus parses a string into a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}
