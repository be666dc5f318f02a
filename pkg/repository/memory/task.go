package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

type taskRepository struct {
	mu     sync.RWMutex
	tasks  map[int64]*model.Task
	nextID int64
}

func newTaskRepository() *taskRepository {
	return &taskRepository{
		tasks:  make(map[int64]*model.Task),
		nextID: 1,
	}
}

// copyTask creates a deep copy of a task
func copyTask(t *model.Task) *model.Task {
	copied := *t
	copied.DueDate = copyTime(t.DueDate)
	copied.BoardMeetingDate = copyTime(t.BoardMeetingDate)
	copied.DateOfReceipt = copyTime(t.DateOfReceipt)
	copied.DateForwarded = copyTime(t.DateForwarded)
	return &copied
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyTask(task)
	created.ID = r.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	r.nextID++

	r.tasks[created.ID] = created
	return copyTask(created), nil
}

func (r *taskRepository) Get(ctx context.Context, id int64) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", id))
	}

	return copyTask(task), nil
}

func (r *taskRepository) List(ctx context.Context, opts ...interfaces.ListTaskOption) ([]*model.Task, error) {
	criteria := interfaces.Build(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if matchTask(task, criteria) {
			tasks = append(tasks, copyTask(task))
		}
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func matchTask(t *model.Task, c interfaces.ListTaskOptions) bool {
	if c.Status != nil && t.Status != *c.Status {
		return false
	}
	if c.Department != nil && t.DepartmentID != *c.Department {
		return false
	}
	if c.DueOn != nil && (t.DueDate == nil || !sameDate(*t.DueDate, *c.DueOn)) {
		return false
	}
	if c.DueBefore != nil && (t.DueDate == nil || !dateOf(*t.DueDate).Before(dateOf(*c.DueBefore))) {
		return false
	}
	if c.DueAfter != nil && (t.DueDate == nil || !dateOf(*t.DueDate).After(dateOf(*c.DueAfter))) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return dateOf(a).Equal(dateOf(b))
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.tasks[task.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", task.ID))
	}

	updated := copyTask(task)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.tasks[task.ID] = updated
	return copyTask(updated), nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, task *model.Task, from types.TaskStatus) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.tasks[task.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", task.ID))
	}

	if existing.Status != from {
		return nil, goerr.Wrap(interfaces.ErrStatusConflict, "task status changed concurrently",
			goerr.V("id", task.ID),
			goerr.V("expected", from),
			goerr.V("actual", existing.Status))
	}

	updated := copyTask(task)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.tasks[task.ID] = updated
	return copyTask(updated), nil
}

func (r *taskRepository) GetByPeriodKey(ctx context.Context, templateID int64, periodKey string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, task := range r.tasks {
		if task.TemplateID == templateID && task.PeriodKey == periodKey {
			return copyTask(task), nil
		}
	}

	return nil, nil
}

// hasDepartment reports whether any task references the department.
// Used by the department repository's protected delete.
func (r *taskRepository) hasDepartment(id types.DepartmentID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, task := range r.tasks {
		if task.DepartmentID == id {
			return true
		}
	}
	return false
}
