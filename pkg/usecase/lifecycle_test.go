package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/repository/memory"
	"github.com/regmon-lab/themis/pkg/service/clock"
	"github.com/regmon-lab/themis/pkg/service/notify"
	"github.com/regmon-lab/themis/pkg/usecase"
)

var testToday = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

type lifecycleEnv struct {
	repo     *memory.Memory
	notifier *notify.Memory
	uc       *usecase.UseCases
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()

	repo := memory.New()
	notifier := notify.NewMemory()
	uc := usecase.New(repo,
		usecase.WithClock(clock.Fixed(testToday)),
		usecase.WithNotifier(notifier),
	)

	gt.NoError(t, repo.Department().Put(context.Background(), &model.Department{
		ID: "credit", Name: "Credit Risk",
	}))

	return &lifecycleEnv{repo: repo, notifier: notifier, uc: uc}
}

func (env *lifecycleEnv) seedTask(t *testing.T, status types.TaskStatus, due *time.Time) *model.Task {
	t.Helper()

	task, err := env.repo.Task().Create(context.Background(), &model.Task{
		Name:         "monthly return",
		Status:       status,
		DepartmentID: "credit",
		Priority:     types.PriorityMedium,
		DueDate:      due,
		CreatedBy:    "system",
		UpdatedBy:    "system",
	})
	gt.NoError(t, err).Required()
	return task
}

func futureDue() *time.Time {
	d := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	return &d
}

func pastDue() *time.Time {
	d := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestTransition_Submit(t *testing.T) {
	ctx := context.Background()
	deptUser := actorWith(types.RoleDepartmentUser, "credit")

	t.Run("pending to approval", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, futureDue())

		updated, err := env.uc.Lifecycle.Transition(ctx, deptUser, task.ID, types.ActionSubmit, "")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.TaskStatusToBeApproved)
		gt.Value(t, updated.DateOfReceipt).NotNil()

		events, err := env.repo.Event().ListByTask(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(events)).Equal(1)
		gt.Value(t, events[0].Field).Equal(model.FieldStatus)
		gt.Value(t, events[0].OldValue).Equal("pending")
		gt.Value(t, events[0].NewValue).Equal("to_be_approved")
	})

	t.Run("overdue submission requires a reason", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, pastDue())

		_, err := env.uc.Lifecycle.Transition(ctx, deptUser, task.ID, types.ActionSubmit, "")
		gt.True(t, errors.Is(err, usecase.ErrMissingDelayReason))

		// Rejected transitions leave no trace
		stored, err := env.repo.Task().Get(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.TaskStatusPending)

		events, err := env.repo.Event().ListByTask(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(events)).Equal(0)
	})

	t.Run("overdue submission with a reason succeeds", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, pastDue())

		updated, err := env.uc.Lifecycle.Transition(ctx, deptUser, task.ID, types.ActionSubmit, "regulator extension granted")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.TaskStatusToBeApproved)
		gt.Value(t, updated.ReasonForDelay).Equal("regulator extension granted")
	})

	t.Run("on-time submission clears a stale reason", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusRevision, futureDue())

		updated, err := env.uc.Lifecycle.Transition(ctx, deptUser, task.ID, types.ActionSubmit, "ignored")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.ReasonForDelay).Equal("")
	})
}

func TestTransition_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("viewer cannot submit", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, futureDue())

		viewer := actorWith(types.RoleComplianceViewer, "")
		_, err := env.uc.Lifecycle.Transition(ctx, viewer, task.ID, types.ActionSubmit, "")
		gt.True(t, errors.Is(err, usecase.ErrAccessDenied))
	})

	t.Run("other department is denied", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, futureDue())

		outsider := actorWith(types.RoleDepartmentUser, "treasury")
		_, err := env.uc.Lifecycle.Transition(ctx, outsider, task.ID, types.ActionSubmit, "")
		gt.True(t, errors.Is(err, usecase.ErrAccessDenied))
	})

	t.Run("department approver cannot finish the review stage", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusReview, futureDue())

		approver := actorWith(types.RoleChiefManager, "credit")
		_, err := env.uc.Lifecycle.Transition(ctx, approver, task.ID, types.ActionApprove, "")
		gt.True(t, errors.Is(err, usecase.ErrAccessDenied))
	})
}

func TestTransition_Workflow(t *testing.T) {
	ctx := context.Background()
	admin := actorWith(types.RoleComplianceAdmin, "")
	approver := actorWith(types.RoleDGM, "credit")

	t.Run("approve advances through review to submitted", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusToBeApproved, futureDue())

		reviewed, err := env.uc.Lifecycle.Transition(ctx, approver, task.ID, types.ActionApprove, "")
		gt.NoError(t, err).Required()
		gt.Value(t, reviewed.Status).Equal(types.TaskStatusReview)

		finished, err := env.uc.Lifecycle.Transition(ctx, admin, task.ID, types.ActionApprove, "")
		gt.NoError(t, err).Required()
		gt.Value(t, finished.Status).Equal(types.TaskStatusSubmitted)
		gt.Value(t, finished.DateForwarded).NotNil()
	})

	t.Run("send back returns to pending and clears receipt", func(t *testing.T) {
		env := newLifecycleEnv(t)
		receipt := testToday
		task, err := env.repo.Task().Create(ctx, &model.Task{
			Name:           "monthly return",
			Status:         types.TaskStatusToBeApproved,
			DepartmentID:   "credit",
			Priority:       types.PriorityMedium,
			DueDate:        futureDue(),
			DateOfReceipt:  &receipt,
			ReasonForDelay: "source system outage",
			CreatedBy:      "system",
			UpdatedBy:      "system",
		})
		gt.NoError(t, err).Required()

		updated, err := env.uc.Lifecycle.Transition(ctx, approver, task.ID, types.ActionSendBack, "")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.TaskStatusPending)
		gt.Value(t, updated.DateOfReceipt).Nil()
		gt.Value(t, updated.ReasonForDelay).Equal("")
	})

	t.Run("admin pulls a submitted task back to revision", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusSubmitted, futureDue())

		updated, err := env.uc.Lifecycle.Transition(ctx, admin, task.ID, types.ActionRequestRevision, "")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.TaskStatusRevision)
	})

	t.Run("illegal transition is rejected as such", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, futureDue())

		_, err := env.uc.Lifecycle.Transition(ctx, admin, task.ID, types.ActionApprove, "")
		gt.True(t, errors.Is(err, usecase.ErrInvalidTransition))
	})

	t.Run("unknown task", func(t *testing.T) {
		env := newLifecycleEnv(t)
		_, err := env.uc.Lifecycle.Transition(ctx, admin, 9999, types.ActionApprove, "")
		gt.True(t, errors.Is(err, usecase.ErrTaskNotFound))
	})
}

func TestTransition_Concurrency(t *testing.T) {
	ctx := context.Background()
	env := newLifecycleEnv(t)
	task := env.seedTask(t, types.TaskStatusToBeApproved, futureDue())
	approver := actorWith(types.RoleDGM, "credit")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = env.uc.Lifecycle.Transition(ctx, approver, task.ID, types.ActionApprove, "")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	gt.Number(t, succeeded).Equal(1)

	// Exactly one audit event for the one accepted transition
	events, err := env.repo.Event().ListByTask(ctx, task.ID)
	gt.NoError(t, err).Required()
	gt.Number(t, len(events)).Equal(1)
}

func TestUpdateStatus_StaleCAS(t *testing.T) {
	ctx := context.Background()
	env := newLifecycleEnv(t)
	task := env.seedTask(t, types.TaskStatusReview, futureDue())

	updated := *task
	updated.Status = types.TaskStatusSubmitted
	_, err := env.repo.Task().UpdateStatus(ctx, &updated, types.TaskStatusToBeApproved)
	gt.True(t, errors.Is(err, interfaces.ErrStatusConflict))
}

func TestSetBoardMeetingDate(t *testing.T) {
	ctx := context.Background()
	admin := actorWith(types.RoleComplianceAdmin, "")
	meeting := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	t.Run("meeting offset policy", func(t *testing.T) {
		env := newLifecycleEnv(t)
		tmpl, err := env.repo.Template().Create(ctx, &model.Template{
			Name:         "board resolution filing",
			Policy:       types.DueDateBoardMeeting,
			OffsetDays:   10,
			Interval:     types.IntervalQuarterly,
			DepartmentID: "credit",
			Priority:     types.PriorityHigh,
			Active:       true,
		})
		gt.NoError(t, err).Required()

		task, err := env.repo.Task().Create(ctx, &model.Task{
			Name:         tmpl.Name,
			TemplateID:   tmpl.ID,
			Status:       types.TaskStatusPending,
			DepartmentID: "credit",
			Priority:     types.PriorityHigh,
			CreatedBy:    "system",
			UpdatedBy:    "system",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, task.DueDate).Nil()

		updated, err := env.uc.Lifecycle.SetBoardMeetingDate(ctx, admin, task.ID, meeting)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.DueDate).NotNil()
		gt.Value(t, *updated.DueDate).Equal(time.Date(2024, time.July, 11, 0, 0, 0, 0, time.UTC))
		gt.True(t, updated.BoardMeetingDateApplied)

		events, err := env.repo.Event().ListByTask(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(events)).Equal(1)
		gt.Value(t, events[0].Field).Equal(model.FieldBoardMeetingDate)
	})

	t.Run("conditional earlier picks the closer date", func(t *testing.T) {
		env := newLifecycleEnv(t)
		tmpl, err := env.repo.Template().Create(ctx, &model.Template{
			Name:                "conditional filing",
			Policy:              types.DueDateBoardMeetingConditional,
			OffsetDays:          30,
			AlternateOffsetDays: 10,
			Operator:            types.OperatorEarlier,
			Interval:            types.IntervalQuarterly,
			DepartmentID:        "credit",
			Priority:            types.PriorityMedium,
			Active:              true,
		})
		gt.NoError(t, err).Required()

		task, err := env.repo.Task().Create(ctx, &model.Task{
			Name:         tmpl.Name,
			TemplateID:   tmpl.ID,
			Status:       types.TaskStatusPending,
			DepartmentID: "credit",
			Priority:     types.PriorityMedium,
			CreatedBy:    "system",
			UpdatedBy:    "system",
			CreatedAt:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		})
		gt.NoError(t, err).Required()

		updated, err := env.uc.Lifecycle.SetBoardMeetingDate(ctx, admin, task.ID, meeting)
		gt.NoError(t, err).Required()
		// Primary: 2024-06-01 + 29 = 2024-06-30, alternate: 2024-07-11
		gt.Value(t, *updated.DueDate).Equal(time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))
	})

	t.Run("non-admin is denied", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, nil)

		approver := actorWith(types.RoleDGM, "credit")
		_, err := env.uc.Lifecycle.SetBoardMeetingDate(ctx, approver, task.ID, meeting)
		gt.True(t, errors.Is(err, usecase.ErrAccessDenied))
	})

	t.Run("fixed policy task is rejected", func(t *testing.T) {
		env := newLifecycleEnv(t)
		tmpl, err := env.repo.Template().Create(ctx, &model.Template{
			Name:         "fixed filing",
			Policy:       types.DueDateCalendar,
			OffsetDays:   5,
			Interval:     types.IntervalMonthly,
			DepartmentID: "credit",
			Priority:     types.PriorityLow,
			Active:       true,
		})
		gt.NoError(t, err).Required()

		task, err := env.repo.Task().Create(ctx, &model.Task{
			Name:         tmpl.Name,
			TemplateID:   tmpl.ID,
			Status:       types.TaskStatusPending,
			DepartmentID: "credit",
			Priority:     types.PriorityLow,
			DueDate:      futureDue(),
			CreatedBy:    "system",
			UpdatedBy:    "system",
		})
		gt.NoError(t, err).Required()

		_, err = env.uc.Lifecycle.SetBoardMeetingDate(ctx, admin, task.ID, meeting)
		gt.True(t, errors.Is(err, usecase.ErrInvalidInput))
	})
}

func TestAddRemark(t *testing.T) {
	ctx := context.Background()

	t.Run("department user remarks on an open task", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, futureDue())

		deptUser := actorWith(types.RoleDepartmentUser, "credit")
		remark, err := env.uc.Lifecycle.AddRemark(ctx, deptUser, task.ID, "awaiting data from branch offices")
		gt.NoError(t, err).Required()
		gt.Value(t, remark.Author).Equal(types.UserID("u1"))

		remarks, err := env.repo.Remark().ListByTask(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(remarks)).Equal(1)
	})

	t.Run("viewer remarks on an open task", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, futureDue())

		viewer := actorWith(types.RoleComplianceViewer, "")
		remark, err := env.uc.Lifecycle.AddRemark(ctx, viewer, task.ID, "please attach the covering letter")
		gt.NoError(t, err).Required()
		gt.Value(t, remark.TaskID).Equal(task.ID)
	})

	t.Run("submitted task is locked", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusSubmitted, futureDue())

		admin := actorWith(types.RoleComplianceAdmin, "")
		_, err := env.uc.Lifecycle.AddRemark(ctx, admin, task.ID, "too late")
		gt.True(t, errors.Is(err, usecase.ErrTaskLocked))
	})

	t.Run("empty remark is rejected", func(t *testing.T) {
		env := newLifecycleEnv(t)
		task := env.seedTask(t, types.TaskStatusPending, futureDue())

		admin := actorWith(types.RoleComplianceAdmin, "")
		_, err := env.uc.Lifecycle.AddRemark(ctx, admin, task.ID, "")
		gt.True(t, errors.Is(err, usecase.ErrInvalidInput))
	})
}

func TestTransition_Notification(t *testing.T) {
	ctx := context.Background()
	env := newLifecycleEnv(t)

	gt.NoError(t, env.repo.User().Put(ctx, &model.User{
		ID: "cm1", Role: types.RoleChiefManager, DepartmentID: "credit",
		Email: "cm1@example.com", Active: true,
	}))

	task := env.seedTask(t, types.TaskStatusPending, futureDue())
	deptUser := actorWith(types.RoleDepartmentUser, "credit")

	_, err := env.uc.Lifecycle.Transition(ctx, deptUser, task.ID, types.ActionSubmit, "")
	gt.NoError(t, err).Required()

	// Delivery is asynchronous
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(env.notifier.Sent()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	sent := env.notifier.Sent()
	gt.Number(t, len(sent)).Equal(1)
	gt.Array(t, sent[0].To).Has("cm1@example.com")
}
