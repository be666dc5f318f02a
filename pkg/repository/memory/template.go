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

type templateRepository struct {
	mu        sync.RWMutex
	templates map[int64]*model.Template
	nextID    int64
}

func newTemplateRepository() *templateRepository {
	return &templateRepository{
		templates: make(map[int64]*model.Template),
		nextID:    1,
	}
}

func copyTemplate(t *model.Template) *model.Template {
	copied := *t
	return &copied
}

func (r *templateRepository) Create(ctx context.Context, tmpl *model.Template) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyTemplate(tmpl)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.templates[created.ID] = created
	return copyTemplate(created), nil
}

func (r *templateRepository) Get(ctx context.Context, id int64) (*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, exists := r.templates[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "template not found", goerr.V("id", id))
	}

	return copyTemplate(tmpl), nil
}

func (r *templateRepository) List(ctx context.Context) ([]*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]*model.Template, 0, len(r.templates))
	for _, tmpl := range r.templates {
		templates = append(templates, copyTemplate(tmpl))
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, tmpl *model.Template) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.templates[tmpl.ID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "template not found", goerr.V("id", tmpl.ID))
	}

	updated := copyTemplate(tmpl)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.templates[tmpl.ID] = updated
	return copyTemplate(updated), nil
}

func (r *templateRepository) FindActive(ctx context.Context, interval types.RecurringInterval) ([]*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]*model.Template, 0)
	for _, tmpl := range r.templates {
		if tmpl.Active && tmpl.Interval == interval {
			templates = append(templates, copyTemplate(tmpl))
		}
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (r *templateRepository) FindActiveByMonth(ctx context.Context, month time.Month) ([]*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]*model.Template, 0)
	for _, tmpl := range r.templates {
		if tmpl.Active && tmpl.Interval.IsMonthBound() && tmpl.RepeatMonth == month {
			templates = append(templates, copyTemplate(tmpl))
		}
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

// hasDepartment reports whether any template references the department
func (r *templateRepository) hasDepartment(id types.DepartmentID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tmpl := range r.templates {
		if tmpl.DepartmentID == id {
			return true
		}
	}
	return false
}
