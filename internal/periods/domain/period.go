package periods

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FiscalPeriod is a bounded accounting exercise used to scope financial
// reporting. Bounds are inclusive on both ends.
type FiscalPeriod struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// NewFiscalPeriod constructs a fiscal period with a fresh identity.
func NewFiscalPeriod(name string, start, end time.Time) (*FiscalPeriod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if start.IsZero() || end.IsZero() {
		return nil, ErrZeroDate
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}
	return &FiscalPeriod{
		ID:        uuid.NewString(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}, nil
}

// Contains reports whether t falls within the period bounds, inclusive.
func (p FiscalPeriod) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}

// FindPeriod resolves a period by id. The second return value is false when
// the id is empty or unknown.
func FindPeriod(periods []FiscalPeriod, id string) (FiscalPeriod, bool) {
	if id == "" {
		return FiscalPeriod{}, false
	}
	for _, p := range periods {
		if p.ID == id {
			return p, true
		}
	}
	return FiscalPeriod{}, false
}
