package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// TemplateUseCase covers recurring template management. All mutations are
// compliance admin only.
type TemplateUseCase struct {
	repo  interfaces.Repository
	clock interfaces.Clock
}

// NewTemplateUseCase creates the template use case
func NewTemplateUseCase(repo interfaces.Repository, clk interfaces.Clock) *TemplateUseCase {
	return &TemplateUseCase{
		repo:  repo,
		clock: clk,
	}
}

// Create registers a recurring template
func (uc *TemplateUseCase) Create(ctx context.Context, actor model.Actor, tmpl *model.Template) (*model.Template, error) {
	if actor.Role != types.RoleComplianceAdmin {
		return nil, goerr.Wrap(ErrAccessDenied, "only compliance admin can manage templates",
			goerr.V(ActorKey, actor.ID))
	}

	if _, err := uc.repo.Department().Get(ctx, tmpl.DepartmentID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrDepartmentNotFound, "cannot create template",
				goerr.V("department", tmpl.DepartmentID))
		}
		return nil, goerr.Wrap(err, "failed to get department", goerr.V("department", tmpl.DepartmentID))
	}

	created := *tmpl
	created.CreatedBy = actor.ID
	created.UpdatedBy = actor.ID

	if err := created.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error())
	}

	stored, err := uc.repo.Template().Create(ctx, &created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create template")
	}

	return stored, nil
}

// Get retrieves a template visible to the actor
func (uc *TemplateUseCase) Get(ctx context.Context, actor model.Actor, id int64) (*model.Template, error) {
	tmpl, err := uc.repo.Template().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTemplateNotFound, "cannot get template", goerr.V(TemplateIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get template", goerr.V(TemplateIDKey, id))
	}

	if actor.Role.IsDepartmentScoped() && actor.DepartmentID != tmpl.DepartmentID {
		return nil, goerr.Wrap(ErrAccessDenied, "template belongs to another department",
			goerr.V(TemplateIDKey, id), goerr.V(ActorKey, actor.ID))
	}

	return tmpl, nil
}

// List retrieves templates visible to the actor. Department-scoped actors
// only see their own department's templates.
func (uc *TemplateUseCase) List(ctx context.Context, actor model.Actor) ([]*model.Template, error) {
	templates, err := uc.repo.Template().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list templates", goerr.V(ActorKey, actor.ID))
	}

	if !actor.Role.IsDepartmentScoped() {
		return templates, nil
	}

	visible := make([]*model.Template, 0, len(templates))
	for _, t := range templates {
		if t.DepartmentID == actor.DepartmentID {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

// Update replaces a template's definition
func (uc *TemplateUseCase) Update(ctx context.Context, actor model.Actor, tmpl *model.Template) (*model.Template, error) {
	if actor.Role != types.RoleComplianceAdmin {
		return nil, goerr.Wrap(ErrAccessDenied, "only compliance admin can manage templates",
			goerr.V(ActorKey, actor.ID))
	}

	updated := *tmpl
	updated.UpdatedBy = actor.ID

	if err := updated.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(TemplateIDKey, tmpl.ID))
	}

	stored, err := uc.repo.Template().Update(ctx, &updated)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTemplateNotFound, "cannot update template", goerr.V(TemplateIDKey, tmpl.ID))
		}
		return nil, goerr.Wrap(err, "failed to update template", goerr.V(TemplateIDKey, tmpl.ID))
	}

	return stored, nil
}

// Deactivate stops a template from spawning tasks. Existing tasks are
// untouched.
func (uc *TemplateUseCase) Deactivate(ctx context.Context, actor model.Actor, id int64) (*model.Template, error) {
	if actor.Role != types.RoleComplianceAdmin {
		return nil, goerr.Wrap(ErrAccessDenied, "only compliance admin can manage templates",
			goerr.V(ActorKey, actor.ID))
	}

	tmpl, err := uc.repo.Template().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTemplateNotFound, "cannot deactivate template", goerr.V(TemplateIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get template", goerr.V(TemplateIDKey, id))
	}

	updated := *tmpl
	updated.Active = false
	updated.UpdatedBy = actor.ID

	stored, err := uc.repo.Template().Update(ctx, &updated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to deactivate template", goerr.V(TemplateIDKey, id))
	}

	return stored, nil
}
