package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/regmon-lab/themis/pkg/domain/model"
)

type remarkRepository struct {
	mu      sync.RWMutex
	remarks map[int64][]*model.TaskRemark
}

func newRemarkRepository() *remarkRepository {
	return &remarkRepository{
		remarks: make(map[int64][]*model.TaskRemark),
	}
}

func (r *remarkRepository) Add(ctx context.Context, remark *model.TaskRemark) (*model.TaskRemark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *remark
	if copied.ID == "" {
		copied.ID = uuid.NewString()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}

	r.remarks[copied.TaskID] = append(r.remarks[copied.TaskID], &copied)

	result := copied
	return &result, nil
}

func (r *remarkRepository) ListByTask(ctx context.Context, taskID int64) ([]*model.TaskRemark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	remarks := make([]*model.TaskRemark, 0, len(r.remarks[taskID]))
	for _, remark := range r.remarks[taskID] {
		copied := *remark
		remarks = append(remarks, &copied)
	}

	return remarks, nil
}

type eventRepository struct {
	mu     sync.RWMutex
	events map[int64][]*model.TransitionEvent
}

func newEventRepository() *eventRepository {
	return &eventRepository{
		events: make(map[int64][]*model.TransitionEvent),
	}
}

func (r *eventRepository) Record(ctx context.Context, event *model.TransitionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	if copied.ID == "" {
		copied.ID = uuid.NewString()
	}
	if copied.Timestamp.IsZero() {
		copied.Timestamp = time.Now().UTC()
	}

	r.events[copied.TaskID] = append(r.events[copied.TaskID], &copied)
	return nil
}

func (r *eventRepository) ListByTask(ctx context.Context, taskID int64) ([]*model.TransitionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*model.TransitionEvent, 0, len(r.events[taskID]))
	for _, event := range r.events[taskID] {
		copied := *event
		events = append(events, &copied)
	}

	return events, nil
}
