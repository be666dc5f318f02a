package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// DocumentSlot names one of the attachment slots of a task
type DocumentSlot string

const (
	SlotCircular              DocumentSlot = "circular"
	SlotInboundCommunication  DocumentSlot = "inbound"
	SlotOutboundCommunication DocumentSlot = "outbound"
	SlotData                  DocumentSlot = "data"
)

// IsValid checks if the document slot is valid
func (s DocumentSlot) IsValid() bool {
	switch s {
	case SlotCircular, SlotInboundCommunication, SlotOutboundCommunication, SlotData:
		return true
	default:
		return false
	}
}

// TaskUseCase covers task CRUD and document attachments
type TaskUseCase struct {
	repo  interfaces.Repository
	clock interfaces.Clock
	files interfaces.FileStore
}

// NewTaskUseCase creates the task use case
func NewTaskUseCase(repo interfaces.Repository, clk interfaces.Clock, files interfaces.FileStore) *TaskUseCase {
	return &TaskUseCase{
		repo:  repo,
		clock: clk,
		files: files,
	}
}

// Create registers a task directly, outside of template expansion.
// Compliance admin only; the task starts in pending.
func (uc *TaskUseCase) Create(ctx context.Context, actor model.Actor, task *model.Task) (*model.Task, error) {
	if actor.Role != types.RoleComplianceAdmin {
		return nil, goerr.Wrap(ErrAccessDenied, "only compliance admin can create tasks",
			goerr.V(ActorKey, actor.ID))
	}

	if _, err := uc.repo.Department().Get(ctx, task.DepartmentID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrDepartmentNotFound, "cannot create task",
				goerr.V("department", task.DepartmentID))
		}
		return nil, goerr.Wrap(err, "failed to get department", goerr.V("department", task.DepartmentID))
	}

	created := *task
	created.Status = types.TaskStatusPending
	created.CreatedBy = actor.ID
	created.CreatedAt = uc.clock.Now()
	created.UpdatedBy = actor.ID
	created.UpdatedAt = uc.clock.Now()

	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error())
	}

	stored, err := uc.repo.Task().Create(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create task")
	}

	return stored, nil
}

// Get retrieves a task the actor may view
func (uc *TaskUseCase) Get(ctx context.Context, actor model.Actor, id int64) (*model.Task, error) {
	task, err := uc.repo.Task().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTaskNotFound, "cannot get task", goerr.V(TaskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(TaskIDKey, id))
	}

	if !CapabilitiesFor(actor, task).CanView {
		return nil, goerr.Wrap(ErrAccessDenied, "task belongs to another department",
			goerr.V(TaskIDKey, id), goerr.V(ActorKey, actor.ID))
	}

	return task, nil
}

// List retrieves tasks visible to the actor. Department-scoped actors
// only ever see their own department, whatever filter they pass.
func (uc *TaskUseCase) List(ctx context.Context, actor model.Actor, opts ...interfaces.ListTaskOption) ([]*model.Task, error) {
	if actor.Role.IsDepartmentScoped() {
		opts = append(opts, interfaces.WithDepartment(actor.DepartmentID))
	}

	tasks, err := uc.repo.Task().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V(ActorKey, actor.ID))
	}

	return tasks, nil
}

// AttachDocument stores the content and binds its handle to the slot.
// The actor needs edit capability on the task.
func (uc *TaskUseCase) AttachDocument(ctx context.Context, actor model.Actor, taskID int64, slot DocumentSlot, filename string, r io.Reader) (*model.Task, error) {
	if !slot.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown document slot",
			goerr.V(TaskIDKey, taskID), goerr.V("slot", slot))
	}

	task, err := uc.repo.Task().Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTaskNotFound, "cannot attach document", goerr.V(TaskIDKey, taskID))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(TaskIDKey, taskID))
	}

	caps := CapabilitiesFor(actor, task)
	if !caps.CanView {
		return nil, goerr.Wrap(ErrAccessDenied, "task belongs to another department",
			goerr.V(TaskIDKey, taskID), goerr.V(ActorKey, actor.ID))
	}
	if !caps.CanEdit {
		return nil, goerr.Wrap(ErrAccessDenied, "task is not editable in its current status",
			goerr.V(TaskIDKey, taskID), goerr.V(StatusKey, task.Status))
	}

	handle, err := uc.files.Put(ctx, filename, r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store document",
			goerr.V(TaskIDKey, taskID), goerr.V("filename", filename))
	}

	updated := *task
	switch slot {
	case SlotCircular:
		updated.CircularDocument = handle
	case SlotInboundCommunication:
		updated.InboundCommunication = handle
	case SlotOutboundCommunication:
		updated.OutboundCommunication = handle
	case SlotData:
		updated.DataDocument = handle
	}
	updated.UpdatedBy = actor.ID
	updated.UpdatedAt = uc.clock.Now()

	stored, err := uc.repo.Task().Update(ctx, &updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update task", goerr.V(TaskIDKey, taskID))
	}

	return stored, nil
}

// OpenDocument opens the content behind the slot of a task the actor may
// view. The caller must close the returned reader.
func (uc *TaskUseCase) OpenDocument(ctx context.Context, actor model.Actor, taskID int64, slot DocumentSlot) (io.ReadCloser, error) {
	task, err := uc.Get(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	var handle string
	switch slot {
	case SlotCircular:
		handle = task.CircularDocument
	case SlotInboundCommunication:
		handle = task.InboundCommunication
	case SlotOutboundCommunication:
		handle = task.OutboundCommunication
	case SlotData:
		handle = task.DataDocument
	default:
		return nil, goerr.Wrap(ErrInvalidInput, "unknown document slot",
			goerr.V(TaskIDKey, taskID), goerr.V("slot", slot))
	}
	if handle == "" {
		return nil, goerr.Wrap(ErrTaskNotFound, "no document in slot",
			goerr.V(TaskIDKey, taskID), goerr.V("slot", slot))
	}

	r, err := uc.files.Get(ctx, handle)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open document",
			goerr.V(TaskIDKey, taskID), goerr.V("slot", slot))
	}

	return r, nil
}

// ListRemarks retrieves the remarks of a task the actor may view
func (uc *TaskUseCase) ListRemarks(ctx context.Context, actor model.Actor, taskID int64) ([]*model.TaskRemark, error) {
	if _, err := uc.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}

	remarks, err := uc.repo.Remark().ListByTask(ctx, taskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list remarks", goerr.V(TaskIDKey, taskID))
	}
	return remarks, nil
}

// ListEvents retrieves the transition history of a task the actor may view
func (uc *TaskUseCase) ListEvents(ctx context.Context, actor model.Actor, taskID int64) ([]*model.TransitionEvent, error) {
	if _, err := uc.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}

	events, err := uc.repo.Event().ListByTask(ctx, taskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list events", goerr.V(TaskIDKey, taskID))
	}
	return events, nil
}
