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

type taskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTaskRepository(client *firestore.Client) *taskRepository {
	return &taskRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *taskRepository) tasksCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_tasks"
	}
	return "tasks"
}

func (r *taskRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	id, err := nextID(ctx, r.client, r.counterCollection(), "task_counter")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next task ID")
	}

	now := time.Now().UTC()
	created := *task
	created.ID = id
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.tasksCollection()).Doc(docID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create task", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *taskRepository) Get(ctx context.Context, id int64) (*model.Task, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.tasksCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V("id", id))
	}

	var t model.Task
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode task", goerr.V("id", id))
	}

	return &t, nil
}

func (r *taskRepository) List(ctx context.Context, opts ...interfaces.ListTaskOption) ([]*model.Task, error) {
	criteria := interfaces.Build(opts...)

	query := r.client.Collection(r.tasksCollection()).Query
	if criteria.Status != nil {
		query = query.Where("Status", "==", string(*criteria.Status))
	}
	if criteria.Department != nil {
		query = query.Where("DepartmentID", "==", string(*criteria.Department))
	}
	if criteria.DueOn != nil {
		query = query.Where("DueDate", "==", *criteria.DueOn)
	}
	if criteria.DueBefore != nil {
		query = query.Where("DueDate", "<", *criteria.DueBefore)
	}
	if criteria.DueAfter != nil {
		query = query.Where("DueDate", ">", *criteria.DueAfter)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	tasks := make([]*model.Task, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks")
		}

		var t model.Task
		if err := docSnap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", docSnap.Ref.ID))
		}

		tasks = append(tasks, &t)
	}

	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	docID := fmt.Sprintf("%d", task.ID)
	docRef := r.client.Collection(r.tasksCollection()).Doc(docID)

	updated := *task
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", task.ID))
			}
			return goerr.Wrap(err, "failed to get task", goerr.V("id", task.ID))
		}

		var existing model.Task
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode task", goerr.V("id", task.ID))
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

func (r *taskRepository) UpdateStatus(ctx context.Context, task *model.Task, from types.TaskStatus) (*model.Task, error) {
	docID := fmt.Sprintf("%d", task.ID)
	docRef := r.client.Collection(r.tasksCollection()).Doc(docID)

	updated := *task
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(interfaces.ErrNotFound, "task not found", goerr.V("id", task.ID))
			}
			return goerr.Wrap(err, "failed to get task", goerr.V("id", task.ID))
		}

		var existing model.Task
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode task", goerr.V("id", task.ID))
		}

		if existing.Status != from {
			return goerr.Wrap(interfaces.ErrStatusConflict, "task status changed concurrently",
				goerr.V("id", task.ID),
				goerr.V("expected", from),
				goerr.V("actual", existing.Status))
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

func (r *taskRepository) GetByPeriodKey(ctx context.Context, templateID int64, periodKey string) (*model.Task, error) {
	iter := r.client.Collection(r.tasksCollection()).
		Where("TemplateID", "==", templateID).
		Where("PeriodKey", "==", periodKey).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query task by period key",
			goerr.V("template_id", templateID), goerr.V("period_key", periodKey))
	}

	var t model.Task
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &t, nil
}

// hasDepartment reports whether any task references the department
func (r *taskRepository) hasDepartment(ctx context.Context, id types.DepartmentID) (bool, error) {
	iter := r.client.Collection(r.tasksCollection()).
		Where("DepartmentID", "==", string(id)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to query tasks by department", goerr.V("id", id))
	}
	return true, nil
}
