package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
)

// ErrNotFound indicates the requested row does not exist or belongs to a
// different parent.
var ErrNotFound = errors.New("not found")

// PlanRepo persists strategic plans as area/strategy/intervention rows.
type PlanRepo interface {
	Create(ctx context.Context, title string) (int64, error)
	Load(ctx context.Context, planID int64) (*contract.PlanPayload, error)
	// Save applies a submitted tree: nodes without an ID are inserted,
	// nodes flagged deleted are soft-deleted, the rest are updated.
	Save(ctx context.Context, p contract.PlanPayload) (int64, error)
	List(ctx context.Context) ([]contract.PlanSummary, error)
	Delete(ctx context.Context, planID int64) error
}

// EventRepo persists events with their financing rows, dates and
// attachment metadata.
type EventRepo interface {
	Load(ctx context.Context, eventID int64) (*contract.EventPayload, error)
	Save(ctx context.Context, p contract.EventPayload, attachments []domain.Attachment) (int64, error)
	ListByPlan(ctx context.Context, planID int64) ([]contract.EventSummary, error)
	Delete(ctx context.Context, eventID int64) error
}
