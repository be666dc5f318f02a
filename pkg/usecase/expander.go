package usecase

import (
	"context"
	"sync"
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
	"golang.org/x/sync/errgroup"
)

// SystemActor is recorded as the author of batch-generated entities
const SystemActor = types.UserID("system")

// defaultExpandConcurrency bounds parallel template expansion
const defaultExpandConcurrency = 4

// ExpandResult summarizes one expansion run
type ExpandResult struct {
	Interval types.RecurringInterval
	RunDate  time.Time
	Created  []*model.Task
	Skipped  int
	Failures []ExpandFailure
}

// ExpandFailure records one template that could not be expanded. A bad
// template never aborts the batch.
type ExpandFailure struct {
	TemplateID int64
	Name       string
	Reason     string
}

// ExpanderUseCase turns active recurring templates into concrete tasks
type ExpanderUseCase struct {
	repo     interfaces.Repository
	clock    interfaces.Clock
	notifier interfaces.Notifier
	audit    interfaces.AuditSink
	calc     *duedate.Calculator
}

// NewExpanderUseCase creates the expander use case
func NewExpanderUseCase(repo interfaces.Repository, clk interfaces.Clock, notifier interfaces.Notifier, audit interfaces.AuditSink, calc *duedate.Calculator) *ExpanderUseCase {
	return &ExpanderUseCase{
		repo:     repo,
		clock:    clk,
		notifier: notifier,
		audit:    audit,
		calc:     calc,
	}
}

// PopulateTasks expands all active templates of the interval into tasks
// for the period containing runDate (the current date when runDate is
// nil). The monthly run additionally picks up annual and halfyearly
// templates whose repeat month matches. Templates whose period already
// has a task are skipped, so re-running the same period is harmless.
func (uc *ExpanderUseCase) PopulateTasks(ctx context.Context, interval types.RecurringInterval, runDate *time.Time) (*ExpandResult, error) {
	if !interval.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown interval", goerr.V("interval", interval))
	}

	reference := uc.clock.Today()
	if runDate != nil {
		reference = clock.DateOf(*runDate)
	}

	templates, err := uc.repo.Template().FindActive(ctx, interval)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active templates", goerr.V("interval", interval))
	}

	if interval == types.IntervalMonthly {
		monthBound, err := uc.repo.Template().FindActiveByMonth(ctx, reference.Month())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list month-bound templates",
				goerr.V("month", reference.Month()))
		}
		templates = append(templates, monthBound...)
	}

	result := &ExpandResult{
		Interval: interval,
		RunDate:  reference,
	}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(defaultExpandConcurrency)

	for _, tmpl := range templates {
		eg.Go(func() error {
			task, err := uc.expandOne(egCtx, tmpl, reference)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				_ = errutil.Handle(egCtx, err, "failed to expand template")
				result.Failures = append(result.Failures, ExpandFailure{
					TemplateID: tmpl.ID,
					Name:       tmpl.Name,
					Reason:     err.Error(),
				})
			case task == nil:
				result.Skipped++
			default:
				result.Created = append(result.Created, task)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "expansion aborted", goerr.V("interval", interval))
	}

	for _, task := range result.Created {
		uc.notifyCreated(ctx, task)
	}

	return result, nil
}

// expandOne creates the task of a template for the period containing the
// reference date. Returns nil, nil when the period already has a task.
func (uc *ExpanderUseCase) expandOne(ctx context.Context, tmpl *model.Template, reference time.Time) (*model.Task, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid template", goerr.V(TemplateIDKey, tmpl.ID))
	}

	periodKey := tmpl.Interval.PeriodKey(reference)

	existing, err := uc.repo.Task().GetByPeriodKey(ctx, tmpl.ID, periodKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check period",
			goerr.V(TemplateIDKey, tmpl.ID), goerr.V("period_key", periodKey))
	}
	if existing != nil {
		return nil, nil
	}

	task := &model.Task{
		Name:              tmpl.Name,
		TemplateID:        tmpl.ID,
		PeriodKey:         periodKey,
		Status:            types.TaskStatusPending,
		DepartmentID:      tmpl.DepartmentID,
		Priority:          tmpl.Priority,
		RegulatorContact:  tmpl.RegulatorContact,
		ComplianceContact: tmpl.ComplianceContact,
		CircularDetails:   tmpl.CircularDetails,
		ReturnNumber:      tmpl.ReturnNumber,
		CircularDocument:  tmpl.CircularDocument,
		CreatedBy:         SystemActor,
		CreatedAt:         uc.clock.Now(),
		UpdatedBy:         SystemActor,
		UpdatedAt:         uc.clock.Now(),
	}

	// Board-meeting based tasks wait for the meeting date; everyone else
	// gets a due date right away.
	if !tmpl.Policy.IsBoardMeetingBased() {
		due, err := uc.calc.Compute(ctx, tmpl.Policy, tmpl.OffsetDays, reference, nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compute due date", goerr.V(TemplateIDKey, tmpl.ID))
		}
		task.DueDate = &due
	}

	created, err := uc.repo.Task().Create(ctx, task)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create task",
			goerr.V(TemplateIDKey, tmpl.ID), goerr.V("period_key", periodKey))
	}

	if err := uc.audit.Record(ctx, &model.TransitionEvent{
		TaskID:    created.ID,
		Field:     model.FieldStatus,
		OldValue:  "",
		NewValue:  types.TaskStatusPending.String(),
		Actor:     SystemActor,
		Timestamp: uc.clock.Now(),
	}); err != nil {
		_ = errutil.Handle(ctx, err, "failed to record creation event")
	}

	return created, nil
}

func (uc *ExpanderUseCase) notifyCreated(ctx context.Context, task *model.Task) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		users, err := uc.repo.User().ListActiveByDepartment(ctx, task.DepartmentID, types.RoleDepartmentUser)
		if err != nil {
			return err
		}

		recipients := make([]string, 0, len(users))
		for _, u := range users {
			recipients = append(recipients, u.Email)
		}

		return uc.notifier.Send(ctx, notify.TaskCreated(task, recipients))
	})
}
