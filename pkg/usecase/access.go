package usecase

import (
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// Capabilities is the answer to "what may this actor do to this task".
// It is computed from the actor's role and department and the task's
// current status, and never from ambient state.
type Capabilities struct {
	CanView   bool
	CanEdit   bool
	CanRemark bool
	Actions   []types.TaskAction
}

// Allows reports whether the action is among the permitted ones
func (c Capabilities) Allows(action types.TaskAction) bool {
	for _, a := range c.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// CapabilitiesFor computes the actor's capabilities on the task. Unknown
// roles and cross-department access get zero capabilities; denial is the
// default, not an error case.
func CapabilitiesFor(actor model.Actor, task *model.Task) Capabilities {
	switch actor.Role {
	case types.RoleComplianceAdmin:
		return adminCapabilities(task)

	case types.RoleComplianceViewer:
		return Capabilities{
			CanView:   true,
			CanRemark: task.Status != types.TaskStatusSubmitted,
		}

	case types.RoleDepartmentUser, types.RoleChiefManager, types.RoleDGM:
		if actor.DepartmentID != task.DepartmentID {
			return Capabilities{}
		}
		return departmentCapabilities(actor.Role, task)

	default:
		return Capabilities{}
	}
}

func adminCapabilities(task *model.Task) Capabilities {
	caps := Capabilities{
		CanView:   true,
		CanEdit:   true,
		CanRemark: task.Status != types.TaskStatusSubmitted,
	}

	switch task.Status {
	case types.TaskStatusReview:
		caps.Actions = []types.TaskAction{types.ActionApprove, types.ActionRequestRevision}
	case types.TaskStatusSubmitted:
		// Admin override: pull a finalized task back for correction
		caps.Actions = []types.TaskAction{types.ActionRequestRevision}
	}

	return caps
}

func departmentCapabilities(role types.Role, task *model.Task) Capabilities {
	editable := task.Status == types.TaskStatusPending || task.Status == types.TaskStatusRevision

	caps := Capabilities{
		CanView:   true,
		CanEdit:   editable,
		CanRemark: task.Status != types.TaskStatusSubmitted,
	}

	if editable {
		caps.Actions = append(caps.Actions, types.ActionSubmit)
	}
	if role.IsApprover() && task.Status == types.TaskStatusToBeApproved {
		caps.Actions = append(caps.Actions, types.ActionApprove, types.ActionSendBack)
	}

	return caps
}
