package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"github.com/regmon-lab/themis/pkg/usecase"
)

func taskInStatus(status types.TaskStatus) *model.Task {
	return &model.Task{
		ID:           1,
		Name:         "quarterly return",
		Status:       status,
		DepartmentID: "credit",
		Priority:     types.PriorityMedium,
	}
}

func actorWith(role types.Role, dept types.DepartmentID) model.Actor {
	return model.Actor{ID: "u1", Role: role, DepartmentID: dept}
}

func TestCapabilitiesFor_Admin(t *testing.T) {
	admin := actorWith(types.RoleComplianceAdmin, "")

	t.Run("views and edits everything", func(t *testing.T) {
		caps := usecase.CapabilitiesFor(admin, taskInStatus(types.TaskStatusPending))
		gt.True(t, caps.CanView)
		gt.True(t, caps.CanEdit)
		gt.False(t, caps.Allows(types.ActionSubmit))
	})

	t.Run("approves or requests revision under review", func(t *testing.T) {
		caps := usecase.CapabilitiesFor(admin, taskInStatus(types.TaskStatusReview))
		gt.True(t, caps.Allows(types.ActionApprove))
		gt.True(t, caps.Allows(types.ActionRequestRevision))
		gt.False(t, caps.Allows(types.ActionSendBack))
	})

	t.Run("can pull back a submitted task", func(t *testing.T) {
		caps := usecase.CapabilitiesFor(admin, taskInStatus(types.TaskStatusSubmitted))
		gt.True(t, caps.Allows(types.ActionRequestRevision))
		gt.False(t, caps.Allows(types.ActionApprove))
		gt.False(t, caps.CanRemark)
	})
}

func TestCapabilitiesFor_Viewer(t *testing.T) {
	viewer := actorWith(types.RoleComplianceViewer, "")

	for _, status := range types.AllTaskStatuses() {
		caps := usecase.CapabilitiesFor(viewer, taskInStatus(status))
		gt.True(t, caps.CanView)
		gt.False(t, caps.CanEdit)
		gt.Value(t, caps.CanRemark).Equal(status != types.TaskStatusSubmitted)
		gt.Number(t, len(caps.Actions)).Equal(0)
	}
}

func TestCapabilitiesFor_DepartmentUser(t *testing.T) {
	user := actorWith(types.RoleDepartmentUser, "credit")

	t.Run("submits while pending", func(t *testing.T) {
		caps := usecase.CapabilitiesFor(user, taskInStatus(types.TaskStatusPending))
		gt.True(t, caps.CanView)
		gt.True(t, caps.CanEdit)
		gt.True(t, caps.Allows(types.ActionSubmit))
	})

	t.Run("submits again from revision", func(t *testing.T) {
		caps := usecase.CapabilitiesFor(user, taskInStatus(types.TaskStatusRevision))
		gt.True(t, caps.Allows(types.ActionSubmit))
	})

	t.Run("cannot approve", func(t *testing.T) {
		caps := usecase.CapabilitiesFor(user, taskInStatus(types.TaskStatusToBeApproved))
		gt.True(t, caps.CanView)
		gt.False(t, caps.CanEdit)
		gt.False(t, caps.Allows(types.ActionApprove))
		gt.False(t, caps.Allows(types.ActionSendBack))
	})

	t.Run("other departments are invisible", func(t *testing.T) {
		other := actorWith(types.RoleDepartmentUser, "treasury")
		caps := usecase.CapabilitiesFor(other, taskInStatus(types.TaskStatusPending))
		gt.False(t, caps.CanView)
		gt.False(t, caps.CanEdit)
		gt.Number(t, len(caps.Actions)).Equal(0)
	})
}

func TestCapabilitiesFor_Approvers(t *testing.T) {
	for _, role := range []types.Role{types.RoleChiefManager, types.RoleDGM} {
		t.Run(role.String(), func(t *testing.T) {
			approver := actorWith(role, "credit")

			caps := usecase.CapabilitiesFor(approver, taskInStatus(types.TaskStatusToBeApproved))
			gt.True(t, caps.Allows(types.ActionApprove))
			gt.True(t, caps.Allows(types.ActionSendBack))

			caps = usecase.CapabilitiesFor(approver, taskInStatus(types.TaskStatusPending))
			gt.True(t, caps.Allows(types.ActionSubmit))

			caps = usecase.CapabilitiesFor(approver, taskInStatus(types.TaskStatusReview))
			gt.False(t, caps.Allows(types.ActionApprove))

			other := actorWith(role, "treasury")
			caps = usecase.CapabilitiesFor(other, taskInStatus(types.TaskStatusToBeApproved))
			gt.False(t, caps.CanView)
		})
	}
}

func TestCapabilitiesFor_UnknownRole(t *testing.T) {
	caps := usecase.CapabilitiesFor(model.Actor{ID: "x", Role: "auditor"}, taskInStatus(types.TaskStatusPending))
	gt.False(t, caps.CanView)
	gt.False(t, caps.CanEdit)
	gt.False(t, caps.CanRemark)
	gt.Number(t, len(caps.Actions)).Equal(0)
}
