package domain

import "errors"

var (
	// ErrUnknownField indicates a field name that does not exist for the
	// addressed level or form section.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue indicates a field value that could not be accepted.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoChildLevel indicates an attempt to nest under an intervention.
	ErrNoChildLevel = errors.New("level has no children")
)
