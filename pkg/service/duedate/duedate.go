// Package duedate computes task due dates from a template's policy and
// offset relative to a reference date.
package duedate

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/service/clock"
)

var (
	// ErrMeetingDateRequired is returned when a board-meeting based
	// policy is computed without a meeting date.
	ErrMeetingDateRequired = errors.New("board meeting date is required")

	// ErrInvalidOperator is returned for an unknown conditional operator
	ErrInvalidOperator = errors.New("invalid conditional operator")

	// ErrInvalidPolicy is returned for an unknown due date policy
	ErrInvalidPolicy = errors.New("invalid due date policy")
)

// WorkingDayChecker reports whether a date is a working day
type WorkingDayChecker interface {
	IsWorkingDay(ctx context.Context, date time.Time) (bool, error)
}

// Calculator computes due dates against a working-day calendar
type Calculator struct {
	cal WorkingDayChecker
}

// New creates a Calculator over the given calendar
func New(cal WorkingDayChecker) *Calculator {
	return &Calculator{cal: cal}
}

// Compute returns the due date for the given policy, counting offsetDays
// from the reference date. The reference date itself counts as day one,
// so a calendar offset of 1 is due on the reference date. For the
// working policy only working days are counted, and the reference date
// counts only when it is itself a working day. For the board meeting
// policy the due date is the meeting date plus offsetDays, and meeting
// must not be nil.
func (c *Calculator) Compute(ctx context.Context, policy types.DueDatePolicy, offsetDays int, reference time.Time, meeting *time.Time) (time.Time, error) {
	reference = clock.DateOf(reference)

	switch policy {
	case types.DueDateCalendar, types.DueDateBoardMeetingConditional:
		return reference.AddDate(0, 0, offsetDays-1), nil

	case types.DueDateWorking:
		return c.addWorkingDays(ctx, reference, offsetDays)

	case types.DueDateBoardMeeting:
		if meeting == nil {
			return time.Time{}, goerr.Wrap(ErrMeetingDateRequired, "cannot compute due date",
				goerr.V("policy", policy))
		}
		return clock.DateOf(*meeting).AddDate(0, 0, offsetDays), nil

	default:
		return time.Time{}, goerr.Wrap(ErrInvalidPolicy, "cannot compute due date",
			goerr.V("policy", policy))
	}
}

func (c *Calculator) addWorkingDays(ctx context.Context, reference time.Time, days int) (time.Time, error) {
	current := reference

	counted := 0
	if ok, err := c.cal.IsWorkingDay(ctx, current); err != nil {
		return time.Time{}, err
	} else if ok {
		counted = 1
	}

	for counted < days {
		current = current.AddDate(0, 0, 1)
		ok, err := c.cal.IsWorkingDay(ctx, current)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			counted++
		}
	}

	return current, nil
}

// ResolveConditional picks between the primary due date and the board
// meeting date plus altOffsetDays: "earlier" takes the earlier of the
// two, "later" the later.
func (c *Calculator) ResolveConditional(primary, meeting time.Time, altOffsetDays int, op types.ConditionalOperator) (time.Time, error) {
	primary = clock.DateOf(primary)
	alternate := clock.DateOf(meeting).AddDate(0, 0, altOffsetDays)

	switch op {
	case types.OperatorEarlier:
		if alternate.Before(primary) {
			return alternate, nil
		}
		return primary, nil

	case types.OperatorLater:
		if alternate.After(primary) {
			return alternate, nil
		}
		return primary, nil

	default:
		return time.Time{}, goerr.Wrap(ErrInvalidOperator, "cannot resolve conditional due date",
			goerr.V("operator", op))
	}
}
