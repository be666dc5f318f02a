// Package firestore provides the production repository backend on Google
// Cloud Firestore.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
)

type Firestore struct {
	client     *firestore.Client
	task       *taskRepository
	template   *templateRepository
	department *departmentRepository
	user       *userRepository
	holiday    *holidayRepository
	remark     *remarkRepository
	event      *eventRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests
// sharing a project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.task.collectionPrefix = prefix
		f.template.collectionPrefix = prefix
		f.department.collectionPrefix = prefix
		f.user.collectionPrefix = prefix
		f.holiday.collectionPrefix = prefix
		f.remark.collectionPrefix = prefix
		f.event.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	taskRepo := newTaskRepository(client)
	templateRepo := newTemplateRepository(client)

	f := &Firestore{
		client:     client,
		task:       taskRepo,
		template:   templateRepo,
		department: newDepartmentRepository(client, taskRepo, templateRepo),
		user:       newUserRepository(client),
		holiday:    newHolidayRepository(client),
		remark:     newRemarkRepository(client),
		event:      newEventRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Task() interfaces.TaskRepository {
	return f.task
}

func (f *Firestore) Template() interfaces.TemplateRepository {
	return f.template
}

func (f *Firestore) Department() interfaces.DepartmentRepository {
	return f.department
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Holiday() interfaces.HolidayRepository {
	return f.holiday
}

func (f *Firestore) Remark() interfaces.RemarkRepository {
	return f.remark
}

func (f *Firestore) Event() interfaces.EventRepository {
	return f.event
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
