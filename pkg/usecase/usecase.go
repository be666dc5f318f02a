package usecase

import (
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/service/calendar"
	"github.com/regmon-lab/themis/pkg/service/clock"
	"github.com/regmon-lab/themis/pkg/service/duedate"
	"github.com/regmon-lab/themis/pkg/service/filestore"
	"github.com/regmon-lab/themis/pkg/service/notify"
)

// UseCases bundles all application use cases over one repository
type UseCases struct {
	repo     interfaces.Repository
	clock    interfaces.Clock
	notifier interfaces.Notifier
	audit    interfaces.AuditSink
	files    interfaces.FileStore
	calc     *duedate.Calculator

	Tasks     *TaskUseCase
	Templates *TemplateUseCase
	Lifecycle *LifecycleUseCase
	Expander  *ExpanderUseCase
	Reminders *ReminderUseCase
}

// Option is a functional option for UseCases configuration
type Option func(*UseCases)

// WithClock replaces the system clock
func WithClock(clk interfaces.Clock) Option {
	return func(uc *UseCases) {
		uc.clock = clk
	}
}

// WithNotifier sets the notification delivery backend
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithAuditSink replaces the default event-repository audit sink
func WithAuditSink(sink interfaces.AuditSink) Option {
	return func(uc *UseCases) {
		uc.audit = sink
	}
}

// WithFileStore sets the document attachment backend
func WithFileStore(fs interfaces.FileStore) Option {
	return func(uc *UseCases) {
		uc.files = fs
	}
}

// WithCalculator replaces the due date calculator
func WithCalculator(calc *duedate.Calculator) Option {
	return func(uc *UseCases) {
		uc.calc = calc
	}
}

// New creates the use case bundle. Collaborators not supplied via options
// get working defaults: the system clock, a discarding notifier, the event
// repository as audit sink, an in-memory file store and a calculator over
// the holiday repository.
func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.clock == nil {
		uc.clock = clock.New()
	}
	if uc.notifier == nil {
		uc.notifier = notify.Discard{}
	}
	if uc.audit == nil {
		uc.audit = repo.Event()
	}
	if uc.files == nil {
		uc.files = filestore.NewMemory()
	}
	if uc.calc == nil {
		uc.calc = duedate.New(calendar.New(repo.Holiday(), calendar.WithClock(uc.clock)))
	}

	uc.Tasks = NewTaskUseCase(repo, uc.clock, uc.files)
	uc.Templates = NewTemplateUseCase(repo, uc.clock)
	uc.Lifecycle = NewLifecycleUseCase(repo, uc.clock, uc.notifier, uc.audit, uc.calc)
	uc.Expander = NewExpanderUseCase(repo, uc.clock, uc.notifier, uc.audit, uc.calc)
	uc.Reminders = NewReminderUseCase(repo, uc.clock, uc.notifier)

	return uc
}
