package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/assemble"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/db"
	"github.com/alexanderramin/planner/internal/repository"
)

type planService struct {
	plans    repository.PlanRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPlanService(plans repository.PlanRepo, uow db.UnitOfWork, observers ...UseCaseObserver) PlanService {
	return &planService{plans: plans, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *planService) Create(ctx context.Context, title string) (id int64, err error) {
	defer observe(ctx, s.observer, "create-plan", time.Now(), map[string]any{"title": title}, &err)
	return s.plans.Create(ctx, title)
}

func (s *planService) Get(ctx context.Context, planID int64) (*contract.PlanPayload, error) {
	return s.plans.Load(ctx, planID)
}

func (s *planService) List(ctx context.Context) ([]contract.PlanSummary, error) {
	return s.plans.List(ctx)
}

func (s *planService) Save(ctx context.Context, p contract.PlanPayload) (res *contract.SaveResult, err error) {
	fields := map[string]any{"plan_id": p.PlanID, "areas": len(p.Areas)}
	defer observe(ctx, s.observer, "save-plan", time.Now(), fields, &err)

	if err = validatePlan(p); err != nil {
		return nil, err
	}
	var planID int64
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		id, err := repository.NewSQLitePlanRepo(tx).Save(ctx, p)
		planID = id
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("saving plan: %w", err)
	}
	fields["plan_id"] = planID
	return &contract.SaveResult{ID: planID}, nil
}

func (s *planService) Budget(ctx context.Context, planID int64) (aggregate.PlanBudget, error) {
	p, err := s.plans.Load(ctx, planID)
	if err != nil {
		return aggregate.PlanBudget{}, err
	}
	return aggregate.Budget(assemble.RestorePlan(*p)), nil
}

func (s *planService) Delete(ctx context.Context, planID int64) (err error) {
	defer observe(ctx, s.observer, "delete-plan", time.Now(), map[string]any{"plan_id": planID}, &err)
	return s.plans.Delete(ctx, planID)
}

// validatePlan checks the live nodes of a submitted tree. Deleted nodes
// are only removed, so their values are not checked.
func validatePlan(p contract.PlanPayload) error {
	for i, a := range p.Areas {
		if a.IsDeleted {
			continue
		}
		if a.Name == "" {
			return fmt.Errorf("%w: area %d has no name", ErrInvalidPlan, i)
		}
		for j, st := range a.Strategies {
			if st.IsDeleted {
				continue
			}
			if !finite(st.CompletionPct, st.AssignedBudget, st.ExecutedBudget) {
				return fmt.Errorf("%w: strategy %d.%d has a non-finite value", ErrInvalidPlan, i, j)
			}
			if st.CompletionPct < 0 || st.CompletionPct > 100 {
				return fmt.Errorf("%w: strategy %d.%d completion %.1f outside 0-100", ErrInvalidPlan, i, j, st.CompletionPct)
			}
			if st.AssignedBudget < 0 || st.ExecutedBudget < 0 {
				return fmt.Errorf("%w: strategy %d.%d has a negative budget", ErrInvalidPlan, i, j)
			}
		}
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
