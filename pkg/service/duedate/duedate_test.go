package duedate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/repository/memory"
	"github.com/regmon-lab/themis/pkg/service/calendar"
	"github.com/regmon-lab/themis/pkg/service/duedate"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newCalculator(t *testing.T, holidays ...time.Time) *duedate.Calculator {
	t.Helper()

	repo := memory.New()
	ctx := context.Background()
	for _, h := range holidays {
		gt.NoError(t, repo.Holiday().Put(ctx, &model.PublicHoliday{Date: h, Label: "holiday"}))
	}

	return duedate.New(calendar.New(repo.Holiday()))
}

func TestCompute_Calendar(t *testing.T) {
	calc := newCalculator(t)
	ctx := context.Background()

	t.Run("reference date counts as day one", func(t *testing.T) {
		due, err := calc.Compute(ctx, types.DueDateCalendar, 5, date(2024, time.January, 1), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.January, 5))
	})

	t.Run("offset of one is due on the reference date", func(t *testing.T) {
		due, err := calc.Compute(ctx, types.DueDateCalendar, 1, date(2024, time.January, 1), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.January, 1))
	})

	t.Run("weekends and holidays are counted", func(t *testing.T) {
		// 2024-03-01 is a Friday
		due, err := calc.Compute(ctx, types.DueDateCalendar, 4, date(2024, time.March, 1), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.March, 4))
	})
}

func TestCompute_Working(t *testing.T) {
	ctx := context.Background()

	t.Run("weekend days are skipped", func(t *testing.T) {
		calc := newCalculator(t)
		// Friday counts as day one, Monday two, Tuesday three
		due, err := calc.Compute(ctx, types.DueDateWorking, 3, date(2024, time.March, 1), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.March, 5))
	})

	t.Run("holidays are skipped", func(t *testing.T) {
		calc := newCalculator(t, date(2024, time.March, 4)) // Monday
		due, err := calc.Compute(ctx, types.DueDateWorking, 3, date(2024, time.March, 1), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.March, 6))
	})

	t.Run("non-working reference date does not count", func(t *testing.T) {
		calc := newCalculator(t)
		// Saturday reference: the first counted day is Monday
		due, err := calc.Compute(ctx, types.DueDateWorking, 1, date(2024, time.March, 2), nil)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.March, 4))
	})
}

func TestCompute_BoardMeeting(t *testing.T) {
	calc := newCalculator(t)
	ctx := context.Background()

	t.Run("due date offsets from the meeting", func(t *testing.T) {
		meeting := date(2024, time.February, 1)
		due, err := calc.Compute(ctx, types.DueDateBoardMeeting, 10, date(2024, time.January, 1), &meeting)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.February, 11))
	})

	t.Run("missing meeting date fails", func(t *testing.T) {
		_, err := calc.Compute(ctx, types.DueDateBoardMeeting, 10, date(2024, time.January, 1), nil)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, duedate.ErrMeetingDateRequired))
	})
}

func TestResolveConditional(t *testing.T) {
	calc := newCalculator(t)

	primary := date(2024, time.February, 15)
	meeting := date(2024, time.February, 1)

	t.Run("earlier takes the alternate when it comes first", func(t *testing.T) {
		due, err := calc.ResolveConditional(primary, meeting, 10, types.OperatorEarlier)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.February, 11))
	})

	t.Run("later takes the primary when it comes last", func(t *testing.T) {
		due, err := calc.ResolveConditional(primary, meeting, 10, types.OperatorLater)
		gt.NoError(t, err).Required()
		gt.Value(t, due).Equal(date(2024, time.February, 15))
	})

	t.Run("unknown operator fails", func(t *testing.T) {
		_, err := calc.ResolveConditional(primary, meeting, 10, "sometime")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, duedate.ErrInvalidOperator))
	})
}
