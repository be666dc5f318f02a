package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/repository/memory"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTask(dept types.DepartmentID, status types.TaskStatus, due *time.Time) *model.Task {
	return &model.Task{
		Name:         "quarterly return",
		Status:       status,
		DepartmentID: dept,
		Priority:     types.PriorityMedium,
		DueDate:      due,
		CreatedBy:    "system",
		UpdatedBy:    "system",
	}
}

func TestTaskList_Filters(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	seed := []*model.Task{
		newTask("credit", types.TaskStatusPending, date(2024, time.June, 5)),
		newTask("credit", types.TaskStatusSubmitted, date(2024, time.June, 10)),
		newTask("treasury", types.TaskStatusPending, date(2024, time.June, 15)),
		newTask("treasury", types.TaskStatusPending, nil),
	}
	for _, task := range seed {
		_, err := repo.Task().Create(ctx, task)
		gt.NoError(t, err).Required()
	}

	t.Run("by status", func(t *testing.T) {
		tasks, err := repo.Task().List(ctx, interfaces.WithStatus(types.TaskStatusPending))
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(3)
	})

	t.Run("by department", func(t *testing.T) {
		tasks, err := repo.Task().List(ctx, interfaces.WithDepartment("credit"))
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)
	})

	t.Run("due on a date", func(t *testing.T) {
		tasks, err := repo.Task().List(ctx, interfaces.WithDueOn(*date(2024, time.June, 10)))
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
		gt.Value(t, tasks[0].Status).Equal(types.TaskStatusSubmitted)
	})

	t.Run("due before excludes undated tasks", func(t *testing.T) {
		tasks, err := repo.Task().List(ctx, interfaces.WithDueBefore(*date(2024, time.June, 11)))
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)
	})

	t.Run("combined filters intersect", func(t *testing.T) {
		tasks, err := repo.Task().List(ctx,
			interfaces.WithDepartment("treasury"),
			interfaces.WithDueAfter(*date(2024, time.June, 10)),
		)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
	})
}

func TestTaskUpdateStatus_CAS(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	task, err := repo.Task().Create(ctx, newTask("credit", types.TaskStatusPending, nil))
	gt.NoError(t, err).Required()

	t.Run("matching precondition applies", func(t *testing.T) {
		updated := *task
		updated.Status = types.TaskStatusToBeApproved
		stored, err := repo.Task().UpdateStatus(ctx, &updated, types.TaskStatusPending)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.TaskStatusToBeApproved)
	})

	t.Run("stale precondition is refused without mutation", func(t *testing.T) {
		updated := *task
		updated.Status = types.TaskStatusReview
		_, err := repo.Task().UpdateStatus(ctx, &updated, types.TaskStatusPending)
		gt.True(t, errors.Is(err, interfaces.ErrStatusConflict))

		stored, err := repo.Task().Get(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.TaskStatusToBeApproved)
	})

	t.Run("unknown task", func(t *testing.T) {
		missing := *task
		missing.ID = 9999
		_, err := repo.Task().UpdateStatus(ctx, &missing, types.TaskStatusPending)
		gt.True(t, errors.Is(err, interfaces.ErrNotFound))
	})
}

func TestTaskGetByPeriodKey(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	seeded := newTask("credit", types.TaskStatusPending, nil)
	seeded.TemplateID = 7
	seeded.PeriodKey = "2024-06"
	_, err := repo.Task().Create(ctx, seeded)
	gt.NoError(t, err).Required()

	t.Run("existing pair", func(t *testing.T) {
		task, err := repo.Task().GetByPeriodKey(ctx, 7, "2024-06")
		gt.NoError(t, err).Required()
		gt.Value(t, task).NotNil()
	})

	t.Run("unknown pair yields no task and no error", func(t *testing.T) {
		task, err := repo.Task().GetByPeriodKey(ctx, 7, "2024-07")
		gt.NoError(t, err).Required()
		gt.Value(t, task).Nil()
	})
}

func TestDepartmentDelete_Protected(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	gt.NoError(t, repo.Department().Put(ctx, &model.Department{ID: "credit", Name: "Credit Risk"}))
	gt.NoError(t, repo.Department().Put(ctx, &model.Department{ID: "empty", Name: "Empty"}))

	_, err := repo.Task().Create(ctx, newTask("credit", types.TaskStatusPending, nil))
	gt.NoError(t, err).Required()

	t.Run("referenced department is protected", func(t *testing.T) {
		err := repo.Department().Delete(ctx, "credit")
		gt.True(t, errors.Is(err, interfaces.ErrProtected))

		_, err = repo.Department().Get(ctx, "credit")
		gt.NoError(t, err)
	})

	t.Run("unreferenced department goes away", func(t *testing.T) {
		gt.NoError(t, repo.Department().Delete(ctx, "empty"))

		_, err := repo.Department().Get(ctx, "empty")
		gt.True(t, errors.Is(err, interfaces.ErrNotFound))
	})
}

func TestUserGetByToken(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	gt.NoError(t, repo.User().Put(ctx, &model.User{
		ID: "alice", Role: types.RoleComplianceAdmin,
		Email: "alice@example.com", Active: true, APIToken: "tok-alice",
	}))
	gt.NoError(t, repo.User().Put(ctx, &model.User{
		ID: "bob", Role: types.RoleComplianceAdmin,
		Email: "bob@example.com", Active: false, APIToken: "tok-bob",
	}))

	t.Run("active token resolves", func(t *testing.T) {
		user, err := repo.User().GetByToken(ctx, "tok-alice")
		gt.NoError(t, err).Required()
		gt.Value(t, user).NotNil().Required()
		gt.Value(t, user.ID).Equal(types.UserID("alice"))
	})

	t.Run("inactive user does not resolve", func(t *testing.T) {
		user, err := repo.User().GetByToken(ctx, "tok-bob")
		gt.NoError(t, err).Required()
		gt.Value(t, user).Nil()
	})

	t.Run("empty token never matches", func(t *testing.T) {
		user, err := repo.User().GetByToken(ctx, "")
		gt.NoError(t, err).Required()
		gt.Value(t, user).Nil()
	})
}

func TestHolidayPut_ReplacesDate(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	day := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	gt.NoError(t, repo.Holiday().Put(ctx, &model.PublicHoliday{Date: day, Label: "founding day"}))
	gt.NoError(t, repo.Holiday().Put(ctx, &model.PublicHoliday{Date: day, Label: "foundation day"}))

	holidays, err := repo.Holiday().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, holidays).Length(1)
	gt.Value(t, holidays[0].Label).Equal("foundation day")
}
