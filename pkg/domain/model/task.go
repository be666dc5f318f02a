package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// Task represents one dated, trackable instance of a compliance obligation
// moving through the approval workflow
type Task struct {
	ID   int64
	Name string

	// TemplateID links back to the originating template; 0 for tasks
	// created directly.
	TemplateID int64

	// PeriodKey identifies the (template, calendar period) pair a
	// generated task belongs to. Expansion skips templates whose key
	// already has a task, so re-running a batch creates no duplicates.
	PeriodKey string

	// DueDate is nil exactly while a board-meeting-based policy is still
	// waiting for the meeting date.
	DueDate *time.Time

	BoardMeetingDate *time.Time
	// BoardMeetingDateApplied is set once the meeting date has been
	// consumed to compute the final due date.
	BoardMeetingDateApplied bool

	Status       types.TaskStatus
	DepartmentID types.DepartmentID
	Priority     types.Priority

	RegulatorContact  string
	ComplianceContact string
	CircularDetails   string
	ReturnNumber      string

	// Opaque attachment handles managed by the file store
	CircularDocument      string
	InboundCommunication  string
	OutboundCommunication string
	DataDocument          string

	// ReasonForDelay is required when submitting documents past the due
	// date. Cleared on each successful submission on time.
	ReasonForDelay string

	DateOfReceipt *time.Time
	DateForwarded *time.Time

	CreatedBy types.UserID
	CreatedAt time.Time
	UpdatedBy types.UserID
	UpdatedAt time.Time
}

// Validate checks the task fields and the due-date invariant
func (t *Task) Validate() error {
	if t.Name == "" {
		return goerr.New("task name is required")
	}
	if !t.Status.IsValid() {
		return goerr.New("invalid task status", goerr.V("status", t.Status))
	}
	if err := t.DepartmentID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task department")
	}
	if !t.Priority.IsValid() {
		return goerr.New("invalid priority", goerr.V("priority", t.Priority))
	}
	if t.DueDate == nil && t.BoardMeetingDateApplied {
		return goerr.New("applied board meeting date must yield a due date",
			goerr.V("task", t.Name))
	}
	return nil
}

// IsOverdue reports whether the task's due date lies strictly before today.
// Tasks without a due date are never overdue.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	y1, m1, d1 := t.DueDate.Date()
	y2, m2, d2 := today.Date()
	due := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	now := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return due.Before(now)
}

// TaskRemark is a free-text note attached to a task. Remarks are
// append-only: never edited, never deleted.
type TaskRemark struct {
	ID        string
	TaskID    int64
	Author    types.UserID
	Text      string
	CreatedAt time.Time
}

// Validate checks the remark fields
func (r *TaskRemark) Validate() error {
	if r.TaskID == 0 {
		return goerr.New("remark must reference a task")
	}
	if r.Text == "" {
		return goerr.New("remark text is required", goerr.V("task_id", r.TaskID))
	}
	return nil
}
