package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/planner/internal/validate"
)

var (
	// ErrInvalidPlan indicates a submitted plan tree with out-of-range values.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrInvalidEvent indicates a submitted event that fails the wizard rules.
	ErrInvalidEvent = errors.New("invalid event")
)

// ValidationError carries the field errors of a rejected event.
type ValidationError struct {
	Step   int
	Fields validate.Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, path := range e.Fields.Paths() {
		parts = append(parts, fmt.Sprintf("%s: %s", path, e.Fields[path]))
	}
	return fmt.Sprintf("%s (step %d): %s", ErrInvalidEvent, e.Step, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidEvent }
