package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/repository/memory"
	"github.com/regmon-lab/themis/pkg/service/clock"
	"github.com/regmon-lab/themis/pkg/service/notify"
	"github.com/regmon-lab/themis/pkg/usecase"
)

type reminderEnv struct {
	repo     *memory.Memory
	notifier *notify.Memory
	uc       *usecase.UseCases
}

func newReminderEnv(t *testing.T) *reminderEnv {
	t.Helper()

	ctx := context.Background()
	repo := memory.New()
	notifier := notify.NewMemory()
	uc := usecase.New(repo,
		usecase.WithClock(clock.Fixed(testToday)),
		usecase.WithNotifier(notifier),
	)

	for _, dept := range []types.DepartmentID{"credit", "treasury"} {
		gt.NoError(t, repo.Department().Put(ctx, &model.Department{ID: dept, Name: string(dept)}))
		gt.NoError(t, repo.User().Put(ctx, &model.User{
			ID: types.UserID("user-" + dept), Role: types.RoleDepartmentUser,
			DepartmentID: dept, Email: string(dept) + "@example.com", Active: true,
		}))
	}
	gt.NoError(t, repo.User().Put(ctx, &model.User{
		ID: "admin", Role: types.RoleComplianceAdmin,
		Email: "admin@example.com", Active: true,
	}))

	return &reminderEnv{repo: repo, notifier: notifier, uc: uc}
}

func (env *reminderEnv) seedDueTask(t *testing.T, dept types.DepartmentID, status types.TaskStatus, due time.Time) {
	t.Helper()

	_, err := env.repo.Task().Create(context.Background(), &model.Task{
		Name:         "reporting obligation",
		Status:       status,
		DepartmentID: dept,
		Priority:     types.PriorityMedium,
		DueDate:      &due,
		CreatedBy:    "system",
		UpdatedBy:    "system",
	})
	gt.NoError(t, err).Required()
}

func TestDueToday(t *testing.T) {
	ctx := context.Background()
	env := newReminderEnv(t)
	today := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	env.seedDueTask(t, "credit", types.TaskStatusPending, today)
	env.seedDueTask(t, "treasury", types.TaskStatusRevision, today)
	// Finished work and other days stay out of the digest
	env.seedDueTask(t, "credit", types.TaskStatusSubmitted, today)
	env.seedDueTask(t, "credit", types.TaskStatusPending, today.AddDate(0, 0, 1))

	sent, err := env.uc.Reminders.DueToday(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, sent).Equal(2)

	digests := env.notifier.Sent()
	gt.Array(t, digests).Length(2)
	for _, msg := range digests {
		gt.Array(t, msg.To).Length(1)
	}
}

func TestDueToday_NothingDue(t *testing.T) {
	env := newReminderEnv(t)

	sent, err := env.uc.Reminders.DueToday(context.Background())
	gt.NoError(t, err).Required()
	gt.Number(t, sent).Equal(0)
	gt.Array(t, env.notifier.Sent()).Length(0)
}

func TestOverdue(t *testing.T) {
	ctx := context.Background()
	env := newReminderEnv(t)

	env.seedDueTask(t, "credit", types.TaskStatusPending, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	env.seedDueTask(t, "credit", types.TaskStatusToBeApproved, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC))
	// Due today is not overdue
	env.seedDueTask(t, "treasury", types.TaskStatusPending, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))

	sent, err := env.uc.Reminders.Overdue(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, sent).Equal(1)

	digests := env.notifier.Sent()
	gt.Array(t, digests).Length(1)
	gt.Array(t, digests[0].To).Has("credit@example.com")
}

func TestReviewPending(t *testing.T) {
	ctx := context.Background()
	env := newReminderEnv(t)

	env.seedDueTask(t, "credit", types.TaskStatusReview, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))
	env.seedDueTask(t, "treasury", types.TaskStatusReview, time.Date(2024, time.June, 18, 0, 0, 0, 0, time.UTC))
	env.seedDueTask(t, "credit", types.TaskStatusPending, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))

	sent, err := env.uc.Reminders.ReviewPending(ctx)
	gt.NoError(t, err).Required()
	gt.Number(t, sent).Equal(1)

	digests := env.notifier.Sent()
	gt.Array(t, digests).Length(1)
	gt.Array(t, digests[0].To).Has("admin@example.com")
}

func TestReviewPending_NoneWaiting(t *testing.T) {
	env := newReminderEnv(t)

	sent, err := env.uc.Reminders.ReviewPending(context.Background())
	gt.NoError(t, err).Required()
	gt.Number(t, sent).Equal(0)
	gt.Array(t, env.notifier.Sent()).Length(0)
}
