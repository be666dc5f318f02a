// Package calendar answers whether a date is a working day, combining the
// weekend rule with the registered public holidays.
package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/service/clock"
)

// DefaultCacheTTL is the default TTL for the holiday set cache
const DefaultCacheTTL = 5 * time.Minute

// Service resolves working days against the holiday repository. The
// holiday set is cached with a TTL so batch runs do not re-read it per
// date.
type Service struct {
	repo     interfaces.HolidayRepository
	clk      interfaces.Clock
	cacheTTL time.Duration

	mu        sync.RWMutex
	holidays  map[string]struct{}
	expiresAt time.Time
}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithCacheTTL sets the TTL for the holiday set cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = ttl
	}
}

// WithClock sets the time source used for cache expiry
func WithClock(clk interfaces.Clock) Option {
	return func(s *Service) {
		s.clk = clk
	}
}

// New creates a calendar service over the holiday repository
func New(repo interfaces.HolidayRepository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cacheTTL: DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.clk == nil {
		s.clk = clock.New()
	}

	return s
}

// IsWorkingDay reports whether the date is neither a weekend day nor a
// registered holiday.
func (s *Service) IsWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false, nil
	}

	holidays, err := s.holidaySet(ctx)
	if err != nil {
		return false, err
	}

	_, isHoliday := holidays[clock.DateOf(date).Format("2006-01-02")]
	return !isHoliday, nil
}

func (s *Service) holidaySet(ctx context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	if s.holidays != nil && s.clk.Now().Before(s.expiresAt) {
		holidays := s.holidays
		s.mu.RUnlock()
		return holidays, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check after acquiring the write lock
	if s.holidays != nil && s.clk.Now().Before(s.expiresAt) {
		return s.holidays, nil
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load holidays")
	}

	holidays := make(map[string]struct{}, len(list))
	for _, h := range list {
		holidays[clock.DateOf(h.Date).Format("2006-01-02")] = struct{}{}
	}

	s.holidays = holidays
	s.expiresAt = s.clk.Now().Add(s.cacheTTL)
	return holidays, nil
}
