package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/service/clock"
	"github.com/regmon-lab/themis/pkg/service/duedate"
	"github.com/regmon-lab/themis/pkg/service/notify"
	"github.com/regmon-lab/themis/pkg/utils/async"
	"github.com/regmon-lab/themis/pkg/utils/errutil"
)

// LifecycleUseCase drives the task approval workflow: status transitions,
// board meeting date entry and remarks.
type LifecycleUseCase struct {
	repo     interfaces.Repository
	clock    interfaces.Clock
	notifier interfaces.Notifier
	audit    interfaces.AuditSink
	calc     *duedate.Calculator
}

// NewLifecycleUseCase creates the lifecycle use case
func NewLifecycleUseCase(repo interfaces.Repository, clk interfaces.Clock, notifier interfaces.Notifier, audit interfaces.AuditSink, calc *duedate.Calculator) *LifecycleUseCase {
	return &LifecycleUseCase{
		repo:     repo,
		clock:    clk,
		notifier: notifier,
		audit:    audit,
		calc:     calc,
	}
}

// nextStatus returns the target status of an action from the given status.
// The second return is false when the pair is not a legal transition.
func nextStatus(from types.TaskStatus, action types.TaskAction) (types.TaskStatus, bool) {
	switch {
	case from == types.TaskStatusPending && action == types.ActionSubmit:
		return types.TaskStatusToBeApproved, true
	case from == types.TaskStatusRevision && action == types.ActionSubmit:
		return types.TaskStatusToBeApproved, true
	case from == types.TaskStatusToBeApproved && action == types.ActionApprove:
		return types.TaskStatusReview, true
	case from == types.TaskStatusToBeApproved && action == types.ActionSendBack:
		return types.TaskStatusPending, true
	case from == types.TaskStatusReview && action == types.ActionApprove:
		return types.TaskStatusSubmitted, true
	case from == types.TaskStatusReview && action == types.ActionRequestRevision:
		return types.TaskStatusRevision, true
	case from == types.TaskStatusSubmitted && action == types.ActionRequestRevision:
		return types.TaskStatusRevision, true
	default:
		return "", false
	}
}

// Transition applies a workflow action to a task on behalf of the actor.
// The transition is rejected without side effects when the action is not
// legal from the current status, the actor lacks the capability, or an
// overdue submission carries no reason for delay. On acceptance exactly
// one audit event is recorded and a notification is dispatched
// asynchronously.
func (uc *LifecycleUseCase) Transition(ctx context.Context, actor model.Actor, taskID int64, action types.TaskAction, reasonForDelay string) (*model.Task, error) {
	if err := actor.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(ActorKey, actor.ID))
	}
	if !action.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown action",
			goerr.V(TaskIDKey, taskID), goerr.V(ActionKey, action))
	}

	task, err := uc.repo.Task().Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTaskNotFound, "cannot transition", goerr.V(TaskIDKey, taskID))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(TaskIDKey, taskID))
	}

	caps := CapabilitiesFor(actor, task)
	if !caps.CanView {
		return nil, goerr.Wrap(ErrAccessDenied, "task belongs to another department",
			goerr.V(TaskIDKey, taskID), goerr.V(ActorKey, actor.ID))
	}

	target, legal := nextStatus(task.Status, action)
	if !legal {
		return nil, goerr.Wrap(ErrInvalidTransition, "rejected",
			goerr.V(TaskIDKey, taskID), goerr.V(StatusKey, task.Status), goerr.V(ActionKey, action))
	}
	if !caps.Allows(action) {
		return nil, goerr.Wrap(ErrAccessDenied, "role cannot perform action",
			goerr.V(TaskIDKey, taskID), goerr.V(ActorKey, actor.ID), goerr.V(ActionKey, action))
	}

	today := uc.clock.Today()
	if action == types.ActionSubmit && task.IsOverdue(today) && reasonForDelay == "" {
		return nil, goerr.Wrap(ErrMissingDelayReason, "submission rejected",
			goerr.V(TaskIDKey, taskID), goerr.V("due_date", task.DueDate))
	}

	updated := *task
	updated.Status = target
	switch action {
	case types.ActionSubmit:
		updated.DateOfReceipt = &today
		if task.IsOverdue(today) {
			updated.ReasonForDelay = reasonForDelay
		} else {
			updated.ReasonForDelay = ""
		}
	case types.ActionSendBack, types.ActionRequestRevision:
		updated.DateOfReceipt = nil
		updated.ReasonForDelay = ""
	case types.ActionApprove:
		if target == types.TaskStatusSubmitted {
			updated.DateForwarded = &today
		}
	}
	updated.UpdatedBy = actor.ID
	updated.UpdatedAt = uc.clock.Now()

	stored, err := uc.repo.Task().UpdateStatus(ctx, &updated, task.Status)
	if err != nil {
		if errors.Is(err, interfaces.ErrStatusConflict) {
			return nil, goerr.Wrap(ErrConflict, "lost to concurrent transition",
				goerr.V(TaskIDKey, taskID), goerr.V(StatusKey, task.Status))
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTaskNotFound, "cannot transition", goerr.V(TaskIDKey, taskID))
		}
		return nil, goerr.Wrap(err, "failed to update task status", goerr.V(TaskIDKey, taskID))
	}

	uc.recordEvent(ctx, &model.TransitionEvent{
		TaskID:    stored.ID,
		Field:     model.FieldStatus,
		OldValue:  task.Status.String(),
		NewValue:  target.String(),
		Actor:     actor.ID,
		Timestamp: uc.clock.Now(),
	})

	uc.notifyTransition(ctx, stored, task.Status, target, actor)

	return stored, nil
}

// SetBoardMeetingDate applies the board meeting date to a task whose
// template policy depends on it, computing the final due date. Compliance
// admin only.
func (uc *LifecycleUseCase) SetBoardMeetingDate(ctx context.Context, actor model.Actor, taskID int64, meeting time.Time) (*model.Task, error) {
	if actor.Role != types.RoleComplianceAdmin {
		return nil, goerr.Wrap(ErrAccessDenied, "only compliance admin can set board meeting dates",
			goerr.V(TaskIDKey, taskID), goerr.V(ActorKey, actor.ID))
	}

	task, err := uc.repo.Task().Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTaskNotFound, "cannot set board meeting date", goerr.V(TaskIDKey, taskID))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(TaskIDKey, taskID))
	}
	if task.TemplateID == 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "task has no template", goerr.V(TaskIDKey, taskID))
	}

	tmpl, err := uc.repo.Template().Get(ctx, task.TemplateID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTemplateNotFound, "cannot set board meeting date",
				goerr.V(TaskIDKey, taskID), goerr.V(TemplateIDKey, task.TemplateID))
		}
		return nil, goerr.Wrap(err, "failed to get template", goerr.V(TemplateIDKey, task.TemplateID))
	}
	if !tmpl.Policy.IsBoardMeetingBased() {
		return nil, goerr.Wrap(ErrInvalidInput, "due date policy does not use board meeting dates",
			goerr.V(TaskIDKey, taskID), goerr.V("policy", tmpl.Policy))
	}

	meetingDate := clock.DateOf(meeting)

	var due time.Time
	switch tmpl.Policy {
	case types.DueDateBoardMeeting:
		due, err = uc.calc.Compute(ctx, tmpl.Policy, tmpl.OffsetDays, meetingDate, &meetingDate)
	case types.DueDateBoardMeetingConditional:
		// The primary due date counts from the task's creation date
		var primary time.Time
		primary, err = uc.calc.Compute(ctx, tmpl.Policy, tmpl.OffsetDays, task.CreatedAt, nil)
		if err == nil {
			due, err = uc.calc.ResolveConditional(primary, meetingDate, tmpl.AlternateOffsetDays, tmpl.Operator)
		}
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compute due date",
			goerr.V(TaskIDKey, taskID), goerr.V("policy", tmpl.Policy))
	}

	oldMeeting := ""
	if task.BoardMeetingDate != nil {
		oldMeeting = task.BoardMeetingDate.Format("2006-01-02")
	}

	updated := *task
	updated.DueDate = &due
	updated.BoardMeetingDate = &meetingDate
	updated.BoardMeetingDateApplied = true
	updated.UpdatedBy = actor.ID
	updated.UpdatedAt = uc.clock.Now()

	stored, err := uc.repo.Task().Update(ctx, &updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update task", goerr.V(TaskIDKey, taskID))
	}

	uc.recordEvent(ctx, &model.TransitionEvent{
		TaskID:    stored.ID,
		Field:     model.FieldBoardMeetingDate,
		OldValue:  oldMeeting,
		NewValue:  meetingDate.Format("2006-01-02"),
		Actor:     actor.ID,
		Timestamp: uc.clock.Now(),
	})

	return stored, nil
}

// AddRemark appends a free-text remark to a task. Any actor who can view
// the task may remark until the task reaches submitted.
func (uc *LifecycleUseCase) AddRemark(ctx context.Context, actor model.Actor, taskID int64, text string) (*model.TaskRemark, error) {
	task, err := uc.repo.Task().Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTaskNotFound, "cannot add remark", goerr.V(TaskIDKey, taskID))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(TaskIDKey, taskID))
	}

	caps := CapabilitiesFor(actor, task)
	if !caps.CanView {
		return nil, goerr.Wrap(ErrAccessDenied, "task belongs to another department",
			goerr.V(TaskIDKey, taskID), goerr.V(ActorKey, actor.ID))
	}
	if !caps.CanRemark {
		return nil, goerr.Wrap(ErrTaskLocked, "cannot add remark",
			goerr.V(TaskIDKey, taskID), goerr.V(StatusKey, task.Status))
	}

	remark := &model.TaskRemark{
		TaskID:    taskID,
		Author:    actor.ID,
		Text:      text,
		CreatedAt: uc.clock.Now(),
	}
	if err := remark.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(TaskIDKey, taskID))
	}

	created, err := uc.repo.Remark().Add(ctx, remark)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to add remark", goerr.V(TaskIDKey, taskID))
	}

	return created, nil
}

// recordEvent writes the audit event. Audit failures are logged, never
// propagated: the transition has already committed.
func (uc *LifecycleUseCase) recordEvent(ctx context.Context, event *model.TransitionEvent) {
	if err := uc.audit.Record(ctx, event); err != nil {
		_ = errutil.Handle(ctx, err, "failed to record transition event")
	}
}

func (uc *LifecycleUseCase) notifyTransition(ctx context.Context, task *model.Task, from, to types.TaskStatus, actor model.Actor) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		recipients, err := uc.recipientsFor(ctx, task, to)
		if err != nil {
			return err
		}

		return uc.notifier.Send(ctx, notify.Transition(task, from, to, actor, recipients))
	})
}

// recipientsFor resolves who should hear about a task arriving at the
// given status: approvers when awaiting approval, compliance admins when
// under review, the department users otherwise.
func (uc *LifecycleUseCase) recipientsFor(ctx context.Context, task *model.Task, to types.TaskStatus) ([]string, error) {
	switch to {
	case types.TaskStatusToBeApproved:
		var recipients []string
		for _, role := range []types.Role{types.RoleChiefManager, types.RoleDGM} {
			users, err := uc.repo.User().ListActiveByDepartment(ctx, task.DepartmentID, role)
			if err != nil {
				return nil, err
			}
			for _, u := range users {
				recipients = append(recipients, u.Email)
			}
		}
		return recipients, nil

	case types.TaskStatusReview, types.TaskStatusSubmitted:
		users, err := uc.repo.User().List(ctx)
		if err != nil {
			return nil, err
		}
		var recipients []string
		for _, u := range users {
			if u.Active && u.Role == types.RoleComplianceAdmin {
				recipients = append(recipients, u.Email)
			}
		}
		return recipients, nil

	default:
		users, err := uc.repo.User().ListActiveByDepartment(ctx, task.DepartmentID, types.RoleDepartmentUser)
		if err != nil {
			return nil, err
		}
		recipients := make([]string, 0, len(users))
		for _, u := range users {
			recipients = append(recipients, u.Email)
		}
		return recipients, nil
	}
}
