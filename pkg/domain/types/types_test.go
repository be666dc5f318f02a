package types_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

func TestParseTaskStatus(t *testing.T) {
	for _, s := range types.AllTaskStatuses() {
		parsed, err := types.ParseTaskStatus(s.String())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(s)
	}

	_, err := types.ParseTaskStatus("done")
	gt.Error(t, err)
}

func TestParseRole(t *testing.T) {
	for _, r := range types.AllRoles() {
		parsed, err := types.ParseRole(r.String())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(r)
	}

	_, err := types.ParseRole("superuser")
	gt.Error(t, err)
}

func TestRoleScopes(t *testing.T) {
	gt.False(t, types.RoleComplianceAdmin.IsDepartmentScoped())
	gt.False(t, types.RoleComplianceViewer.IsDepartmentScoped())
	gt.True(t, types.RoleDepartmentUser.IsDepartmentScoped())
	gt.True(t, types.RoleChiefManager.IsDepartmentScoped())
	gt.True(t, types.RoleDGM.IsDepartmentScoped())

	gt.False(t, types.RoleDepartmentUser.IsApprover())
	gt.True(t, types.RoleChiefManager.IsApprover())
	gt.True(t, types.RoleDGM.IsApprover())
}

func TestDueDatePolicy(t *testing.T) {
	gt.False(t, types.DueDateCalendar.IsBoardMeetingBased())
	gt.False(t, types.DueDateWorking.IsBoardMeetingBased())
	gt.True(t, types.DueDateBoardMeeting.IsBoardMeetingBased())
	gt.True(t, types.DueDateBoardMeetingConditional.IsBoardMeetingBased())

	_, err := types.ParseDueDatePolicy("fiscal")
	gt.Error(t, err)
}

func TestPeriodKey(t *testing.T) {
	ref := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		interval types.RecurringInterval
		expect   string
	}{
		{types.IntervalDaily, "2024-06-10"},
		{types.IntervalWeekly, "2024-W24"},
		{types.IntervalFortnightly, "2024-F12"},
		{types.IntervalMonthly, "2024-06"},
		{types.IntervalQuarterly, "2024-Q2"},
		{types.IntervalHalfyearly, "2024-H1"},
		{types.IntervalAnnual, "2024"},
	}
	for _, tc := range cases {
		t.Run(tc.interval.String(), func(t *testing.T) {
			gt.Value(t, tc.interval.PeriodKey(ref)).Equal(tc.expect)
		})
	}

	t.Run("same period yields the same key", func(t *testing.T) {
		other := time.Date(2024, time.June, 28, 0, 0, 0, 0, time.UTC)
		gt.Value(t, types.IntervalMonthly.PeriodKey(ref)).Equal(types.IntervalMonthly.PeriodKey(other))
	})

	t.Run("different period yields a different key", func(t *testing.T) {
		other := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
		gt.Value(t, types.IntervalMonthly.PeriodKey(ref)).NotEqual(types.IntervalMonthly.PeriodKey(other))
	})
}

func TestIDValidate(t *testing.T) {
	gt.NoError(t, types.DepartmentID("credit-risk").Validate())
	gt.Error(t, types.DepartmentID("").Validate())
	gt.Error(t, types.DepartmentID("Credit Risk").Validate())
	gt.Error(t, types.DepartmentID("credit_risk").Validate())
}
