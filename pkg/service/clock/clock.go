// Package clock provides injectable time sources.
package clock

import (
	"time"

	"github.com/regmon-lab/themis/pkg/domain/interfaces"
)

type realClock struct{}

// New returns a clock backed by the system time
func New() interfaces.Clock {
	return &realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func (realClock) Today() time.Time {
	return DateOf(time.Now().UTC())
}

type fixedClock struct {
	t time.Time
}

// Fixed returns a clock frozen at t, for tests and --run-date overrides
func Fixed(t time.Time) interfaces.Clock {
	return &fixedClock{t: t.UTC()}
}

func (c *fixedClock) Now() time.Time {
	return c.t
}

func (c *fixedClock) Today() time.Time {
	return DateOf(c.t)
}

// DateOf normalizes a timestamp to its civil date at UTC midnight
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
