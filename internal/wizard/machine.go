// Package wizard drives a multi-step form through an explicit transition
// table. Moving backward is always allowed; moving forward requires the
// current step's fields to validate; submitting from the last step
// requires every step to validate.
package wizard

import (
	"github.com/alexanderramin/planner/internal/validate"
)

// Notifier receives fire-and-forget signals from the machine.
type Notifier interface {
	ValidationFailed(step int, errs validate.Errors)
	Cancel()
}

// NopNotifier ignores all signals.
type NopNotifier struct{}

func (NopNotifier) ValidationFailed(int, validate.Errors) {}
func (NopNotifier) Cancel()                               {}

// Outcome reports what a navigation request did.
type Outcome int

const (
	Moved Outcome = iota
	Stayed
	Blocked
	Cancelled
	Ignored
	Submitted
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Stayed:
		return "stayed"
	case Blocked:
		return "blocked"
	case Cancelled:
		return "cancelled"
	case Ignored:
		return "ignored"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type direction int

const (
	dirBackward direction = iota
	dirSame
	dirForward
	dirSubmit
)

type guard int

const (
	guardNone guard = iota
	guardCurrentStep
	guardAllSteps
)

// transitions maps every kind of request to the validation it needs.
var transitions = map[direction]guard{
	dirBackward: guardNone,
	dirSame:     guardNone,
	dirForward:  guardCurrentStep,
	dirSubmit:   guardAllSteps,
}

func classify(current, target int) direction {
	switch {
	case target < current:
		return dirBackward
	case target == current:
		return dirSame
	default:
		return dirForward
	}
}

// Machine holds the current step and the field errors attached so far.
// It is not safe for concurrent use; callers serialise events the way a
// UI event loop does.
type Machine struct {
	validator *validate.Validator
	notify    Notifier
	last      int
	current   int
	furthest  int
	errs      validate.Errors
}

// New creates a machine positioned on step 1.
func New(v *validate.Validator, n Notifier) *Machine {
	if n == nil {
		n = NopNotifier{}
	}
	m := &Machine{validator: v, notify: n, last: len(v.Steps())}
	m.Reset()
	return m
}

// Reset returns the machine to step 1 with no errors.
func (m *Machine) Reset() {
	m.current = 1
	m.furthest = 1
	m.errs = validate.Errors{}
}

// Current returns the current step number.
func (m *Machine) Current() int { return m.current }

// Last returns the number of the final step.
func (m *Machine) Last() int { return m.last }

// IsLast reports whether the machine is on the final step.
func (m *Machine) IsLast() bool { return m.current == m.last }

// Furthest returns the highest step reached so far.
func (m *Machine) Furthest() int { return m.furthest }

// Step returns the declaration of the current step.
func (m *Machine) Step() validate.Step {
	s, _ := m.validator.Step(m.current)
	return s
}

// Errors returns a copy of the attached field errors.
func (m *Machine) Errors() validate.Errors { return m.errs.Clone() }

// GoToStep moves to target. Backward and same-step requests always
// succeed. Forward requests validate the current step only and stay put
// on failure. Targets outside the wizard are ignored.
func (m *Machine) GoToStep(target int, src validate.FieldSource) Outcome {
	if target < 1 || target > m.last {
		return Ignored
	}
	dir := classify(m.current, target)
	if !m.pass(transitions[dir], src) {
		return Blocked
	}
	if dir == dirSame {
		return Stayed
	}
	m.current = target
	if target > m.furthest {
		m.furthest = target
	}
	return Moved
}

// Next is GoToStep(current+1).
func (m *Machine) Next(src validate.FieldSource) Outcome {
	return m.GoToStep(m.current+1, src)
}

// Previous is GoToStep(current-1). On step 1 it asks the collaborator to
// close the wizard instead.
func (m *Machine) Previous(src validate.FieldSource) Outcome {
	if m.current == 1 {
		m.notify.Cancel()
		return Cancelled
	}
	return m.GoToStep(m.current-1, src)
}

// Submit validates every step and, when all pass, calls submit. It only
// acts on the last step. A submit error leaves the machine where it is so
// the caller can retry.
func (m *Machine) Submit(src validate.FieldSource, submit func() error) (Outcome, error) {
	if out, ok := m.CanSubmit(src); !ok {
		return out, nil
	}
	if err := submit(); err != nil {
		return Failed, err
	}
	return Submitted, nil
}

// CanSubmit runs the submission gate without submitting. It reports
// Ignored off the last step and Blocked when any step fails.
func (m *Machine) CanSubmit(src validate.FieldSource) (Outcome, bool) {
	if !m.IsLast() {
		return Ignored, false
	}
	if !m.pass(transitions[dirSubmit], src) {
		return Blocked, false
	}
	return Stayed, true
}

func (m *Machine) pass(g guard, src validate.FieldSource) bool {
	switch g {
	case guardCurrentStep:
		errs, ok := m.validator.ValidateStep(m.current, src, m.errs)
		m.errs = errs
		if !ok {
			m.notify.ValidationFailed(m.current, errs.Clone())
		}
		return ok
	case guardAllSteps:
		errs, first := m.validator.ValidateAll(src, m.errs)
		m.errs = errs
		if first != 0 {
			m.notify.ValidationFailed(first, errs.Clone())
			return false
		}
		return true
	default:
		return true
	}
}
