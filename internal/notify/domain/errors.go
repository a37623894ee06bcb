package notify

import "errors"

var (
	ErrEmptyName         = errors.New("notify: empty campaign name")
	ErrEmptyTemplate     = errors.New("notify: empty template")
	ErrInvalidAudience   = errors.New("notify: invalid audience")
	ErrInvalidTransition = errors.New("notify: invalid state transition")
	ErrNotFound          = errors.New("notify: campaign not found")
)
