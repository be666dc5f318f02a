package interfaces

import (
	"context"
	"time"

	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
)

// TemplateRepository defines the interface for Template data access
type TemplateRepository interface {
	// Create creates a new template with auto-generated ID
	Create(ctx context.Context, tmpl *model.Template) (*model.Template, error)

	// Get retrieves a template by ID
	Get(ctx context.Context, id int64) (*model.Template, error)

	// List retrieves all templates
	List(ctx context.Context) ([]*model.Template, error)

	// Update updates an existing template
	Update(ctx context.Context, tmpl *model.Template) (*model.Template, error)

	// FindActive retrieves active templates with the given recurring interval
	FindActive(ctx context.Context, interval types.RecurringInterval) ([]*model.Template, error)

	// FindActiveByMonth retrieves active month-bound (annual/halfyearly)
	// templates whose repeat month matches
	FindActiveByMonth(ctx context.Context, month time.Month) ([]*model.Template, error)
}
