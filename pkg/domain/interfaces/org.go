package interfaces

import (
	"context"

	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// DepartmentRepository defines the interface for Department data access
type DepartmentRepository interface {
	// Put creates or replaces a department
	Put(ctx context.Context, dept *model.Department) error

	// Get retrieves a department by ID
	Get(ctx context.Context, id types.DepartmentID) (*model.Department, error)

	// List retrieves all departments
	List(ctx context.Context) ([]*model.Department, error)

	// Delete removes a department. Fails if tasks or templates still
	// reference it (protected delete).
	Delete(ctx context.Context, id types.DepartmentID) error
}

// UserRepository defines the interface for User data access
type UserRepository interface {
	// Put creates or replaces a user
	Put(ctx context.Context, user *model.User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id types.UserID) (*model.User, error)

	// GetByToken retrieves an active user by API token.
	// Returns nil, nil if no user matches.
	GetByToken(ctx context.Context, token string) (*model.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*model.User, error)

	// ListActiveByDepartment retrieves active users of the given role in a
	// department. Used to build notification recipient lists.
	ListActiveByDepartment(ctx context.Context, dept types.DepartmentID, role types.Role) ([]*model.User, error)
}

// HolidayRepository defines the interface for PublicHoliday data access
type HolidayRepository interface {
	// Put registers a holiday, replacing any existing entry for the date
	Put(ctx context.Context, holiday *model.PublicHoliday) error

	// List retrieves all registered holidays
	List(ctx context.Context) ([]*model.PublicHoliday, error)
}
