package interfaces

import "time"

// Clock supplies the current time. It is injected so due-date computations
// are deterministic in tests; the core never reads a global clock.
type Clock interface {
	Now() time.Time

	// Today returns the current date normalized to UTC midnight
	Today() time.Time
}
