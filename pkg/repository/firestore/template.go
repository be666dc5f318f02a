package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type templateRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTemplateRepository(client *firestore.Client) *templateRepository {
	return &templateRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *templateRepository) templatesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_templates"
	}
	return "templates"
}

func (r *templateRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *templateRepository) Create(ctx context.Context, tmpl *model.Template) (*model.Template, error) {
	id, err := nextID(ctx, r.client, r.counterCollection(), "template_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next template ID")
	}

	now := time.Now().UTC()
	created := *tmpl
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.templatesCollection()).Doc(docID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create template", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *templateRepository) Get(ctx context.Context, id int64) (*model.Template, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.templatesCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "template not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get template", goerr.V("id", id))
	}

	var t model.Template
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode template", goerr.V("id", id))
	}

	return &t, nil
}

func (r *templateRepository) List(ctx context.Context) ([]*model.Template, error) {
	return r.query(ctx, r.client.Collection(r.templatesCollection()).Query)
}

func (r *templateRepository) Update(ctx context.Context, tmpl *model.Template) (*model.Template, error) {
	docID := fmt.Sprintf("%d", tmpl.ID)
	docRef := r.client.Collection(r.templatesCollection()).Doc(docID)

	updated := *tmpl
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "template not found", goerr.V("id", tmpl.ID))
			}
			return goerr.Wrap(err, "failed to get template", goerr.V("id", tmpl.ID))
		}

		var existing model.Template
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode template", goerr.V("id", tmpl.ID))
		}

		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *templateRepository) FindActive(ctx context.Context, interval types.RecurringInterval) ([]*model.Template, error) {
	query := r.client.Collection(r.templatesCollection()).
		Where("Active", "==", true).
		Where("Interval", "==", string(interval))
	return r.query(ctx, query)
}

func (r *templateRepository) FindActiveByMonth(ctx context.Context, month time.Month) ([]*model.Template, error) {
	query := r.client.Collection(r.templatesCollection()).
		Where("Active", "==", true).
		Where("RepeatMonth", "==", int(month)).
		Where("Interval", "in", []string{
			string(types.IntervalHalfyearly),
			string(types.IntervalAnnual),
		})
	return r.query(ctx, query)
}

func (r *templateRepository) query(ctx context.Context, query firestore.Query) ([]*model.Template, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	templates := make([]*model.Template, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate templates")
		}

		var t model.Template
		if err := docSnap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode template", goerr.V("doc_id", docSnap.Ref.ID))
		}

		templates = append(templates, &t)
	}

	return templates, nil
}

// hasDepartment reports whether any template references the department
func (r *templateRepository) hasDepartment(ctx context.Context, id types.DepartmentID) (bool, error) {
	iter := r.client.Collection(r.templatesCollection()).
		Where("DepartmentID", "==", string(id)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to query templates by department", goerr.V("id", id))
	}
	return true, nil
}
