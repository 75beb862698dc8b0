package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/assemble"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/db"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/repository"
	"github.com/alexanderramin/planner/internal/validate"
	"github.com/alexanderramin/planner/internal/wizard"
)

type eventService struct {
	events    repository.EventRepo
	uow       db.UnitOfWork
	validator *validate.Validator
	observer  UseCaseObserver
}

func NewEventService(events repository.EventRepo, uow db.UnitOfWork, observers ...UseCaseObserver) EventService {
	return &eventService{
		events:    events,
		uow:       uow,
		validator: wizard.EventValidator(),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *eventService) Get(ctx context.Context, eventID int64) (*contract.EventPayload, error) {
	return s.events.Load(ctx, eventID)
}

func (s *eventService) ListByPlan(ctx context.Context, planID int64) ([]contract.EventSummary, error) {
	return s.events.ListByPlan(ctx, planID)
}

// Save re-runs the wizard rules against the payload and recomputes the
// total cost before storing it.
func (s *eventService) Save(ctx context.Context, p contract.EventPayload, attachments []domain.Attachment) (res *contract.SaveResult, err error) {
	fields := map[string]any{
		"plan_id":     p.PlanID,
		"financing":   len(p.Financing) + len(p.Contributions),
		"dates":       len(p.Dates),
		"attachments": len(attachments),
	}
	defer observe(ctx, s.observer, "save-event", time.Now(), fields, &err)

	form := assemble.RestoreEvent(p)
	if errs, first := s.validator.ValidateAll(form, nil); first != 0 {
		return nil, &ValidationError{Step: first, Fields: errs}
	}
	p.TotalCost = aggregate.Total(form.Financing, form.Contributions)

	var eventID int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		id, err := repository.NewSQLiteEventRepo(tx).Save(ctx, p, attachments)
		eventID = id
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("saving event: %w", err)
	}
	fields["event_id"] = eventID
	return &contract.SaveResult{ID: eventID}, nil
}

func (s *eventService) Delete(ctx context.Context, eventID int64) (err error) {
	defer observe(ctx, s.observer, "delete-event", time.Now(), map[string]any{"event_id": eventID}, &err)
	return s.events.Delete(ctx, eventID)
}
