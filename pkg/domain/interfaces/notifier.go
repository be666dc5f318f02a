package interfaces

import (
	"context"

	"github.com/regmon-lab/themis/pkg/domain/model"
)

// Notifier delivers workflow notifications. Implementations are invoked
// asynchronously; errors are logged by the caller, never propagated to the
// transition result.
type Notifier interface {
	Send(ctx context.Context, msg *model.Notification) error
}

// AuditSink receives transition events. The core calls it exactly once per
// accepted transition, never per rejected one.
type AuditSink interface {
	Record(ctx context.Context, event *model.TransitionEvent) error
}
