package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// User represents an account that can act on tasks
type User struct {
	ID           types.UserID
	Role         types.Role
	DepartmentID types.DepartmentID // required for department-scoped roles
	Email        string
	Active       bool
	APIToken     string `masq:"secret"` // bearer token for the HTTP API
	LastLogin    *time.Time
}

// Validate checks the user fields
func (u *User) Validate() error {
	if err := u.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if !u.Role.IsValid() {
		return goerr.New("invalid role", goerr.V("user", u.ID), goerr.V("role", u.Role))
	}
	if u.Role.IsDepartmentScoped() {
		if err := u.DepartmentID.Validate(); err != nil {
			return goerr.Wrap(err, "department is required for department-scoped roles",
				goerr.V("user", u.ID), goerr.V("role", u.Role))
		}
	}
	return nil
}

// Actor returns the acting principal derived from the user. Every core
// operation takes an Actor explicitly instead of reading session state.
func (u *User) Actor() Actor {
	return Actor{
		ID:           u.ID,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

// Actor is the principal performing an operation: who they are, their role
// and their department
type Actor struct {
	ID           types.UserID
	Role         types.Role
	DepartmentID types.DepartmentID
}

// Validate checks the actor fields
func (a Actor) Validate() error {
	if err := a.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid actor ID")
	}
	if !a.Role.IsValid() {
		return goerr.New("invalid actor role", goerr.V("actor", a.ID), goerr.V("role", a.Role))
	}
	if a.Role.IsDepartmentScoped() && a.DepartmentID == "" {
		return goerr.New("department-scoped actor without department", goerr.V("actor", a.ID))
	}
	return nil
}
