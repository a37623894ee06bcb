package members

import "errors"

var (
	ErrEmptyName        = errors.New("members: empty name")
	ErrEmptyMemberID    = errors.New("members: empty member id")
	ErrEmptyDiscipline  = errors.New("members: empty discipline")
	ErrZeroActivityDate = errors.New("members: zero activity date")
	ErrInvalidResult    = errors.New("members: invalid activity result")
	ErrNotFound         = errors.New("members: not found")
)
