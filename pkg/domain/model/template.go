package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// Template represents a recurring compliance obligation definition that
// periodically spawns tasks
type Template struct {
	ID   int64
	Name string

	Policy              types.DueDatePolicy
	OffsetDays          int
	AlternateOffsetDays int                       // board_meeting_conditional only
	Operator            types.ConditionalOperator // board_meeting_conditional only

	Interval    types.RecurringInterval
	RepeatMonth time.Month // annual/halfyearly templates only

	DepartmentID types.DepartmentID
	Priority     types.Priority
	Active       bool

	// Contact and reference fields inherited by generated tasks
	RegulatorContact  string
	ComplianceContact string
	CircularDetails   string
	ReturnNumber      string
	CircularDocument  string // attachment handle

	CreatedBy types.UserID
	CreatedAt time.Time
	UpdatedBy types.UserID
	UpdatedAt time.Time
}

// Validate checks the template fields
func (t *Template) Validate() error {
	if t.Name == "" {
		return goerr.New("template name is required")
	}
	if !t.Policy.IsValid() {
		return goerr.New("invalid due date policy", goerr.V("policy", t.Policy))
	}
	if t.OffsetDays < 1 {
		return goerr.New("due date offset must be at least 1 day",
			goerr.V("offset_days", t.OffsetDays))
	}
	if t.Policy == types.DueDateBoardMeetingConditional {
		if !t.Operator.IsValid() {
			return goerr.New("conditional policy requires an operator",
				goerr.V("operator", t.Operator))
		}
		if t.AlternateOffsetDays == 0 {
			return goerr.New("conditional policy requires an alternate offset")
		}
	}
	if !t.Interval.IsValid() {
		return goerr.New("invalid recurring interval", goerr.V("interval", t.Interval))
	}
	if t.Interval.IsMonthBound() && (t.RepeatMonth < time.January || t.RepeatMonth > time.December) {
		return goerr.New("month-bound interval requires a repeat month",
			goerr.V("interval", t.Interval))
	}
	if err := t.DepartmentID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid template department")
	}
	if !t.Priority.IsValid() {
		return goerr.New("invalid priority", goerr.V("priority", t.Priority))
	}
	return nil
}
