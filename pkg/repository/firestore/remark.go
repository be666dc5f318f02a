package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type remarkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRemarkRepository(client *firestore.Client) *remarkRepository {
	return &remarkRepository{client: client}
}

func (r *remarkRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_remarks"
	}
	return "remarks"
}

func (r *remarkRepository) Add(ctx context.Context, remark *model.TaskRemark) (*model.TaskRemark, error) {
	created := *remark
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.client.Collection(r.collection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to add remark",
			goerr.V("task_id", created.TaskID), goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *remarkRepository) ListByTask(ctx context.Context, taskID int64) ([]*model.TaskRemark, error) {
	iter := r.client.Collection(r.collection()).
		Where("TaskID", "==", taskID).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	remarks := make([]*model.TaskRemark, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate remarks", goerr.V("task_id", taskID))
		}

		var rm model.TaskRemark
		if err := docSnap.DataTo(&rm); err != nil {
			return nil, goerr.Wrap(err, "failed to decode remark", goerr.V("doc_id", docSnap.Ref.ID))
		}

		remarks = append(remarks, &rm)
	}

	return remarks, nil
}

type eventRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newEventRepository(client *firestore.Client) *eventRepository {
	return &eventRepository{client: client}
}

func (r *eventRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_events"
	}
	return "events"
}

func (r *eventRepository) Record(ctx context.Context, event *model.TransitionEvent) error {
	created := *event
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now().UTC()
	}

	if _, err := r.client.Collection(r.collection()).Doc(created.ID).Set(ctx, &created); err != nil {
		return goerr.Wrap(err, "failed to record event",
			goerr.V("task_id", created.TaskID), goerr.V("id", created.ID))
	}

	return nil
}

func (r *eventRepository) ListByTask(ctx context.Context, taskID int64) ([]*model.TransitionEvent, error) {
	iter := r.client.Collection(r.collection()).
		Where("TaskID", "==", taskID).
		OrderBy("Timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	events := make([]*model.TransitionEvent, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate events", goerr.V("task_id", taskID))
		}

		var ev model.TransitionEvent
		if err := docSnap.DataTo(&ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode event", goerr.V("doc_id", docSnap.Ref.ID))
		}

		events = append(events, &ev)
	}

	return events, nil
}
