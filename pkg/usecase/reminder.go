package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/service/notify"
)

// ReminderUseCase sends the scheduled digest notifications: tasks due
// today, overdue tasks and tasks waiting for compliance review.
type ReminderUseCase struct {
	repo     interfaces.Repository
	clock    interfaces.Clock
	notifier interfaces.Notifier
}

// NewReminderUseCase creates the reminder use case
func NewReminderUseCase(repo interfaces.Repository, clk interfaces.Clock, notifier interfaces.Notifier) *ReminderUseCase {
	return &ReminderUseCase{
		repo:     repo,
		clock:    clk,
		notifier: notifier,
	}
}

// DueToday sends one digest per department listing its tasks due today.
// Returns the number of digests sent.
func (uc *ReminderUseCase) DueToday(ctx context.Context) (int, error) {
	today := uc.clock.Today()

	tasks, err := uc.repo.Task().List(ctx, interfaces.WithDueOn(today))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list tasks due today")
	}

	open := filterOpen(tasks)
	if len(open) == 0 {
		return 0, nil
	}

	return uc.sendPerDepartment(ctx, "Compliance tasks due today", open)
}

// Overdue sends one digest per department listing its open tasks past the
// due date. Returns the number of digests sent.
func (uc *ReminderUseCase) Overdue(ctx context.Context) (int, error) {
	today := uc.clock.Today()

	tasks, err := uc.repo.Task().List(ctx, interfaces.WithDueBefore(today))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list overdue tasks")
	}

	open := filterOpen(tasks)
	if len(open) == 0 {
		return 0, nil
	}

	return uc.sendPerDepartment(ctx, "Overdue compliance tasks", open)
}

// ReviewPending sends compliance admins a digest of tasks waiting for
// final review. Returns the number of digests sent.
func (uc *ReminderUseCase) ReviewPending(ctx context.Context) (int, error) {
	tasks, err := uc.repo.Task().List(ctx, interfaces.WithStatus(types.TaskStatusReview))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list tasks under review")
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	users, err := uc.repo.User().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list users")
	}

	var recipients []string
	for _, u := range users {
		if u.Active && u.Role == types.RoleComplianceAdmin {
			recipients = append(recipients, u.Email)
		}
	}

	msg := notify.Digest("Compliance tasks awaiting review", tasks, recipients)
	if err := uc.notifier.Send(ctx, msg); err != nil {
		return 0, goerr.Wrap(err, "failed to send review digest")
	}

	return 1, nil
}

func (uc *ReminderUseCase) sendPerDepartment(ctx context.Context, subject string, tasks []*model.Task) (int, error) {
	byDept := make(map[types.DepartmentID][]*model.Task)
	for _, t := range tasks {
		byDept[t.DepartmentID] = append(byDept[t.DepartmentID], t)
	}

	sent := 0
	for dept, deptTasks := range byDept {
		users, err := uc.repo.User().ListActiveByDepartment(ctx, dept, types.RoleDepartmentUser)
		if err != nil {
			return sent, goerr.Wrap(err, "failed to list department users", goerr.V("department", dept))
		}

		recipients := make([]string, 0, len(users))
		for _, u := range users {
			recipients = append(recipients, u.Email)
		}

		if err := uc.notifier.Send(ctx, notify.Digest(subject, deptTasks, recipients)); err != nil {
			return sent, goerr.Wrap(err, "failed to send digest", goerr.V("department", dept))
		}
		sent++
	}

	return sent, nil
}

// filterOpen drops tasks that already completed the workflow
func filterOpen(tasks []*model.Task) []*model.Task {
	open := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status != types.TaskStatusSubmitted {
			open = append(open, t)
		}
	}
	return open
}
