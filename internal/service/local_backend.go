package service

import (
	"context"

	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
)

// LocalBackend serves editor sessions from the local SQLite store.
type LocalBackend struct {
	plans  PlanService
	events EventService
}

func NewLocalBackend(plans PlanService, events EventService) *LocalBackend {
	return &LocalBackend{plans: plans, events: events}
}

func (b *LocalBackend) PlanSnapshot(ctx context.Context, planID int64) (*contract.PlanPayload, error) {
	return b.plans.Get(ctx, planID)
}

func (b *LocalBackend) EventSnapshot(ctx context.Context, eventID int64) (*contract.EventPayload, error) {
	return b.events.Get(ctx, eventID)
}

func (b *LocalBackend) SubmitPlan(ctx context.Context, p contract.PlanPayload) (*contract.SaveResult, error) {
	return b.plans.Save(ctx, p)
}

func (b *LocalBackend) SubmitEvent(ctx context.Context, p contract.EventPayload, attachments []domain.Attachment) (*contract.SaveResult, error) {
	return b.events.Save(ctx, p, attachments)
}

func (b *LocalBackend) ListPlans(ctx context.Context) ([]contract.PlanSummary, error) {
	return b.plans.List(ctx)
}
