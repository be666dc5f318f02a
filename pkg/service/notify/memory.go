package notify

import (
	"context"
	"sync"

	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/domain/model"
)

// Memory is an in-memory notifier that records sent notifications
type Memory struct {
	mu   sync.Mutex
	sent []*model.Notification
}

var _ interfaces.Notifier = &Memory{}

// NewMemory creates an in-memory notifier
func NewMemory() *Memory {
	return &Memory{}
}

func (n *Memory) Send(_ context.Context, msg *model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	copied := *msg
	n.sent = append(n.sent, &copied)
	return nil
}

// Sent returns the notifications recorded so far
func (n *Memory) Sent() []*model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]*model.Notification{}, n.sent...)
}

// Discard is a notifier that drops every notification
type Discard struct{}

var _ interfaces.Notifier = Discard{}

func (Discard) Send(context.Context, *model.Notification) error {
	return nil
}
