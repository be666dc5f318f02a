package types

import "fmt"

// DueDatePolicy represents how a task's due date is derived
type DueDatePolicy string

const (
	// DueDateCalendar counts plain calendar days from the reference date
	DueDateCalendar DueDatePolicy = "calendar"
	// DueDateWorking counts only working days from the reference date
	DueDateWorking DueDatePolicy = "working"
	// DueDateBoardMeeting offsets from a board meeting date
	DueDateBoardMeeting DueDatePolicy = "board_meeting"
	// DueDateBoardMeetingConditional resolves the earlier/later of a fixed
	// offset and a board-meeting-relative offset
	DueDateBoardMeetingConditional DueDatePolicy = "board_meeting_conditional"
)

// AllDueDatePolicies returns all valid due date policies
func AllDueDatePolicies() []DueDatePolicy {
	return []DueDatePolicy{
		DueDateCalendar,
		DueDateWorking,
		DueDateBoardMeeting,
		DueDateBoardMeetingConditional,
	}
}

// IsValid checks if the due date policy is valid
func (p DueDatePolicy) IsValid() bool {
	switch p {
	case DueDateCalendar,
		DueDateWorking,
		DueDateBoardMeeting,
		DueDateBoardMeetingConditional:
		return true
	default:
		return false
	}
}

// IsBoardMeetingBased reports whether the policy needs a board meeting date
// before the final due date is known.
func (p DueDatePolicy) IsBoardMeetingBased() bool {
	return p == DueDateBoardMeeting || p == DueDateBoardMeetingConditional
}

// String returns the string representation of the due date policy
func (p DueDatePolicy) String() string {
	return string(p)
}

// ParseDueDatePolicy parses a string into a DueDatePolicy
func ParseDueDatePolicy(s string) (DueDatePolicy, error) {
	policy := DueDatePolicy(s)
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid due date policy: %s", s)
	}
	return policy, nil
}

// ConditionalOperator selects which of the primary and alternate due dates
// wins for the board_meeting_conditional policy
type ConditionalOperator string

const (
	OperatorEarlier ConditionalOperator = "earlier"
	OperatorLater   ConditionalOperator = "later"
)

// IsValid checks if the conditional operator is valid
func (o ConditionalOperator) IsValid() bool {
	return o == OperatorEarlier || o == OperatorLater
}

// String returns the string representation of the conditional operator
func (o ConditionalOperator) String() string {
	return string(o)
}

// ParseConditionalOperator parses a string into a ConditionalOperator
func ParseConditionalOperator(s string) (ConditionalOperator, error) {
	op := ConditionalOperator(s)
	if !op.IsValid() {
		return "", fmt.Errorf("invalid conditional operator: %s", s)
	}
	return op, nil
}
