package finance

import "errors"

var (
	ErrNotFound          = errors.New("finance: record not found")
	ErrUnknownKind       = errors.New("finance: unknown record kind")
	ErrInvalidStatus     = errors.New("finance: status not valid for kind")
	ErrEmptyMemberID     = errors.New("finance: empty member id")
	ErrZeroRecordDate    = errors.New("finance: zero record date")
	ErrNonPositiveAmount = errors.New("finance: amount must be positive")
)
