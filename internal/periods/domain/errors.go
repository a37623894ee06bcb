package periods

import "errors"

var (
	ErrEmptyName        = errors.New("periods: empty name")
	ErrEmptySubject     = errors.New("periods: empty subject")
	ErrZeroDate         = errors.New("periods: zero date")
	ErrInvalidDateRange = errors.New("periods: start date after end date")
	ErrNotFound         = errors.New("periods: not found")
)
