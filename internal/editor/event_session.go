package editor

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/assemble"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/validate"
	"github.com/alexanderramin/planner/internal/wizard"
	"golang.org/x/sync/singleflight"
)

// EventSession runs the event financing wizard over one form.
//
// The notifier may be called while the session lock is held and must not
// call back into the session.
type EventSession struct {
	source SnapshotSource
	submit Submitter
	notify Notifier
	loads  singleflight.Group

	mu         sync.Mutex
	machine    *wizard.Machine
	state      State
	loadErr    error
	form       domain.EventForm
	submitting bool
}

// NewEventSession creates a session using the standard event steps.
func NewEventSession(source SnapshotSource, submit Submitter, notify Notifier) *EventSession {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &EventSession{
		source:  source,
		submit:  submit,
		notify:  notify,
		machine: wizard.New(wizard.EventValidator(), notify),
	}
}

// Start begins the create flow from default values.
func (s *EventSession) Start(planID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = domain.NewEventForm(planID)
	s.machine.Reset()
	s.loadErr = nil
	s.state = StateReady
}

// Load fetches an existing event and positions the wizard on step 1.
func (s *EventSession) Load(ctx context.Context, eventID int64) error {
	s.mu.Lock()
	s.state = StateLoading
	s.loadErr = nil
	s.mu.Unlock()

	v, err := sharedLoad(ctx, &s.loads, strconv.FormatInt(eventID, 10), func(ctx context.Context) (any, error) {
		return s.source.EventSnapshot(ctx, eventID)
	})

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.loadErr = fmt.Errorf("loading event %d: %w", eventID, err)
		loadErr := s.loadErr
		s.mu.Unlock()
		s.notify.Failure(loadErr)
		return loadErr
	}
	s.form = assemble.RestoreEvent(*v.(*contract.EventPayload))
	s.machine.Reset()
	s.state = StateReady
	s.mu.Unlock()
	return nil
}

// State returns the load state and the load error, if any.
func (s *EventSession) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.loadErr
}

// Form returns the current form value.
func (s *EventSession) Form() domain.EventForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Edit replaces the form with fn applied to it.
func (s *EventSession) Edit(fn func(domain.EventForm) domain.EventForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotLoaded
	}
	s.form = fn(s.form)
	return nil
}

// Set writes one field path.
func (s *EventSession) Set(path, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotLoaded
	}
	f, err := s.form.Set(path, value)
	if err != nil {
		return err
	}
	s.form = f
	return nil
}

// Step returns the current step declaration.
func (s *EventSession) Step() validate.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Step()
}

// Steps returns every step declaration.
func (s *EventSession) Steps() []validate.Step {
	return wizard.EventSteps()
}

// Furthest returns the highest step reached since Start or Load.
func (s *EventSession) Furthest() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Furthest()
}

// IsLast reports whether the wizard is on the final step.
func (s *EventSession) IsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.IsLast()
}

// Errors returns the field errors attached so far.
func (s *EventSession) Errors() validate.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Errors()
}

// Next moves forward when the current step validates.
func (s *EventSession) Next() wizard.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Next(s.form)
}

// Previous moves back, or signals cancel on step 1.
func (s *EventSession) Previous() wizard.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Previous(s.form)
}

// GoToStep handles a click on a step indicator.
func (s *EventSession) GoToStep(n int) wizard.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.GoToStep(n, s.form)
}

// Totals recomputes the financing totals from the current rows.
func (s *EventSession) Totals() aggregate.EventTotals {
	return aggregate.Event(s.Form())
}

// Submitting reports whether a submit is in flight.
func (s *EventSession) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit validates every step and sends the assembled payload. It returns
// ErrNotSubmitted when the wizard is not on its last step or a step fails
// validation, and ErrSubmitInFlight while another submit is pending.
func (s *EventSession) Submit(ctx context.Context) (*contract.SaveResult, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return nil, ErrNotLoaded
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if out, ok := s.machine.CanSubmit(s.form); !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotSubmitted, out)
	}
	s.submitting = true
	form := s.form
	payload := assemble.Event(form)
	s.mu.Unlock()

	res, err := s.submit.SubmitEvent(ctx, payload, form.Attachments)

	s.mu.Lock()
	s.submitting = false
	if err == nil && res != nil && s.form.ID == nil {
		id := res.ID
		s.form.ID = &id
	}
	s.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("submitting event: %w", err)
		s.notify.Failure(err)
		return nil, err
	}
	s.notify.Success("Event saved")
	return res, nil
}
