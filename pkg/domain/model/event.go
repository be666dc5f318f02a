package model

import (
	"time"

	"github.com/regmon-lab/themis/pkg/domain/types"
)

// TransitionEvent records a single field change on a task. The lifecycle
// emits exactly one event per accepted transition, never per rejected one.
type TransitionEvent struct {
	ID        string
	TaskID    int64
	Field     string
	OldValue  string
	NewValue  string
	Actor     types.UserID
	Timestamp time.Time
}

// FieldStatus is the field name recorded for status transitions
const FieldStatus = "current_status"

// FieldBoardMeetingDate is the field name recorded when a board meeting
// date is applied to a task
const FieldBoardMeetingDate = "board_meeting_date"
