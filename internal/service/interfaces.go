package service

import (
	"context"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
)

type PlanService interface {
	Create(ctx context.Context, title string) (int64, error)
	Get(ctx context.Context, planID int64) (*contract.PlanPayload, error)
	List(ctx context.Context) ([]contract.PlanSummary, error)
	Save(ctx context.Context, p contract.PlanPayload) (*contract.SaveResult, error)
	Budget(ctx context.Context, planID int64) (aggregate.PlanBudget, error)
	Delete(ctx context.Context, planID int64) error
}

type EventService interface {
	Get(ctx context.Context, eventID int64) (*contract.EventPayload, error)
	ListByPlan(ctx context.Context, planID int64) ([]contract.EventSummary, error)
	Save(ctx context.Context, p contract.EventPayload, attachments []domain.Attachment) (*contract.SaveResult, error)
	Delete(ctx context.Context, eventID int64) error
}
