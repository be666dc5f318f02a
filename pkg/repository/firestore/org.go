package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
	"github.com/regmon-lab/themis/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type departmentRepository struct {
	client           *firestore.Client
	collectionPrefix string

	tasks     *taskRepository
	templates *templateRepository
}

func newDepartmentRepository(client *firestore.Client, tasks *taskRepository, templates *templateRepository) *departmentRepository {
	return &departmentRepository{
		client:    client,
		tasks:     tasks,
		templates: templates,
	}
}

func (r *departmentRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_departments"
	}
	return "departments"
}

func (r *departmentRepository) Put(ctx context.Context, dept *model.Department) error {
	if _, err := r.client.Collection(r.collection()).Doc(dept.ID.String()).Set(ctx, dept); err != nil {
		return goerr.Wrap(err, "failed to put department", goerr.V("id", dept.ID))
	}
	return nil
}

func (r *departmentRepository) Get(ctx context.Context, id types.DepartmentID) (*model.Department, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "department not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get department", goerr.V("id", id))
	}

	var d model.Department
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode department", goerr.V("id", id))
	}

	return &d, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	iter := r.client.Collection(r.collection()).Documents(ctx)
	defer iter.Stop()

	departments := make([]*model.Department, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate departments")
		}

		var d model.Department
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode department", goerr.V("doc_id", docSnap.Ref.ID))
		}

		departments = append(departments, &d)
	}

	return departments, nil
}

func (r *departmentRepository) Delete(ctx context.Context, id types.DepartmentID) error {
	referenced, err := r.tasks.hasDepartment(ctx, id)
	if err != nil {
		return err
	}
	if !referenced {
		referenced, err = r.templates.hasDepartment(ctx, id)
		if err != nil {
			return err
		}
	}
	if referenced {
		return goerr.Wrap(interfaces.ErrProtected, "department is referenced by tasks or templates",
			goerr.V("id", id))
	}

	if _, err := r.client.Collection(r.collection()).Doc(id.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete department", goerr.V("id", id))
	}
	return nil
}

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{client: client}
}

func (r *userRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_users"
	}
	return "users"
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if _, err := r.client.Collection(r.collection()).Doc(user.ID.String()).Set(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("id", user.ID))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.User, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var u model.User
	if err := docSnap.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("id", id))
	}

	return &u, nil
}

func (r *userRepository) GetByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	iter := r.client.Collection(r.collection()).
		Where("APIToken", "==", token).
		Where("Active", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user by token")
	}

	var u model.User
	if err := docSnap.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	return r.query(ctx, r.client.Collection(r.collection()).Query)
}

func (r *userRepository) ListActiveByDepartment(ctx context.Context, dept types.DepartmentID, role types.Role) ([]*model.User, error) {
	query := r.client.Collection(r.collection()).
		Where("Active", "==", true).
		Where("DepartmentID", "==", string(dept)).
		Where("Role", "==", string(role))
	return r.query(ctx, query)
}

func (r *userRepository) query(ctx context.Context, query firestore.Query) ([]*model.User, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	users := make([]*model.User, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var u model.User
		if err := docSnap.DataTo(&u); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", docSnap.Ref.ID))
		}

		users = append(users, &u)
	}

	return users, nil
}

type holidayRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newHolidayRepository(client *firestore.Client) *holidayRepository {
	return &holidayRepository{client: client}
}

func (r *holidayRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_holidays"
	}
	return "holidays"
}

func (r *holidayRepository) Put(ctx context.Context, holiday *model.PublicHoliday) error {
	docID := holiday.Date.Format("2006-01-02")
	if _, err := r.client.Collection(r.collection()).Doc(docID).Set(ctx, holiday); err != nil {
		return goerr.Wrap(err, "failed to put holiday", goerr.V("date", docID))
	}
	return nil
}

func (r *holidayRepository) List(ctx context.Context) ([]*model.PublicHoliday, error) {
	iter := r.client.Collection(r.collection()).Documents(ctx)
	defer iter.Stop()

	holidays := make([]*model.PublicHoliday, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate holidays")
		}

		var h model.PublicHoliday
		if err := docSnap.DataTo(&h); err != nil {
			return nil, goerr.Wrap(err, "failed to decode holiday", goerr.V("doc_id", docSnap.Ref.ID))
		}

		holidays = append(holidays, &h)
	}

	return holidays, nil
}
