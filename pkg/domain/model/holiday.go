package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// PublicHoliday represents a registered non-working date
type PublicHoliday struct {
	Date  time.Time // normalized to UTC midnight, unique per date
	Label string
}

// Validate checks the holiday fields
func (h *PublicHoliday) Validate() error {
	if h.Date.IsZero() {
		return goerr.New("holiday date is required", goerr.V("label", h.Label))
	}
	if h.Label == "" {
		return goerr.New("holiday label is required", goerr.V("date", h.Date))
	}
	return nil
}
