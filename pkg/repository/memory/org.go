package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

type departmentRepository struct {
	mu          sync.RWMutex
	departments map[types.DepartmentID]*model.Department

	tasks     *taskRepository
	templates *templateRepository
}

func newDepartmentRepository(tasks *taskRepository, templates *templateRepository) *departmentRepository {
	return &departmentRepository{
		departments: make(map[types.DepartmentID]*model.Department),
		tasks:       tasks,
		templates:   templates,
	}
}

func (r *departmentRepository) Put(ctx context.Context, dept *model.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *dept
	r.departments[dept.ID] = &copied
	return nil
}

func (r *departmentRepository) Get(ctx context.Context, id types.DepartmentID) (*model.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dept, exists := r.departments[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "department not found", goerr.V("id", id))
	}

	copied := *dept
	return &copied, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	departments := make([]*model.Department, 0, len(r.departments))
	for _, dept := range r.departments {
		copied := *dept
		departments = append(departments, &copied)
	}

	sort.Slice(departments, func(i, j int) bool { return departments[i].ID < departments[j].ID })
	return departments, nil
}

func (r *departmentRepository) Delete(ctx context.Context, id types.DepartmentID) error {
	if r.tasks.hasDepartment(id) || r.templates.hasDepartment(id) {
		return goerr.Wrap(interfaces.ErrProtected, "department is referenced by tasks or templates",
			goerr.V("id", id))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.departments[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "department not found", goerr.V("id", id))
	}

	delete(r.departments, id)
	return nil
}

type userRepository struct {
	mu    sync.RWMutex
	users map[types.UserID]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.UserID]*model.User),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	copied.LastLogin = copyTime(u.LastLogin)
	return &copied
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("id", id))
	}

	return copyUser(user), nil
}

func (r *userRepository) GetByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Active && user.APIToken == token {
			return copyUser(user), nil
		}
	}

	return nil, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, copyUser(user))
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) ListActiveByDepartment(ctx context.Context, dept types.DepartmentID, role types.Role) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0)
	for _, user := range r.users {
		if user.Active && user.DepartmentID == dept && user.Role == role {
			users = append(users, copyUser(user))
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type holidayRepository struct {
	mu       sync.RWMutex
	holidays map[string]*model.PublicHoliday // keyed by date (YYYY-MM-DD)
}

func newHolidayRepository() *holidayRepository {
	return &holidayRepository{
		holidays: make(map[string]*model.PublicHoliday),
	}
}

func (r *holidayRepository) Put(ctx context.Context, holiday *model.PublicHoliday) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *holiday
	r.holidays[holiday.Date.Format("2006-01-02")] = &copied
	return nil
}

func (r *holidayRepository) List(ctx context.Context) ([]*model.PublicHoliday, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holidays := make([]*model.PublicHoliday, 0, len(r.holidays))
	for _, holiday := range r.holidays {
		copied := *holiday
		holidays = append(holidays, &copied)
	}

	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}
