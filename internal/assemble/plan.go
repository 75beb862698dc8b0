// Package assemble turns editor state into submission payloads and
// fetched payloads back into editor state.
package assemble

import (
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/tree"
)

// Plan builds the submission payload for a plan tree. Every node is
// emitted, soft-deleted ones included, so the backend can apply logical
// deletes. Levels follow tree depth: roots are areas, their children
// strategies, and grandchildren interventions. Editor-only state is
// dropped.
func Plan(planID int64, title string, forest []tree.Node[domain.PlanItem]) contract.PlanPayload {
	p := contract.PlanPayload{
		PlanID: planID,
		Title:  title,
		Areas:  make([]contract.AreaPayload, 0, len(forest)),
	}
	for _, a := range forest {
		area := contract.AreaPayload{
			ID:         cloneID(a.ID),
			Name:       a.Data.Name,
			Objective:  a.Data.Objective,
			IsDeleted:  a.Deleted,
			Strategies: make([]contract.StrategyPayload, 0, len(a.Children)),
		}
		for _, s := range a.Children {
			strategy := contract.StrategyPayload{
				ID:             cloneID(s.ID),
				Description:    s.Data.Description,
				CompletionPct:  s.Data.CompletionPct,
				AssignedBudget: s.Data.AssignedBudget,
				ExecutedBudget: s.Data.ExecutedBudget,
				IsDeleted:      s.Deleted,
				Interventions:  make([]contract.InterventionPayload, 0, len(s.Children)),
			}
			for _, i := range s.Children {
				strategy.Interventions = append(strategy.Interventions, contract.InterventionPayload{
					ID:        cloneID(i.ID),
					Name:      i.Data.Name,
					IsDeleted: i.Deleted,
				})
			}
			area.Strategies = append(area.Strategies, strategy)
		}
		p.Areas = append(p.Areas, area)
	}
	return p
}

// RestorePlan builds an editable tree from a fetched payload.
func RestorePlan(p contract.PlanPayload) []tree.Node[domain.PlanItem] {
	forest := make([]tree.Node[domain.PlanItem], 0, len(p.Areas))
	for _, a := range p.Areas {
		area := tree.Node[domain.PlanItem]{
			ID:      cloneID(a.ID),
			Data:    domain.NewArea(a.Name, a.Objective),
			Deleted: a.IsDeleted,
		}
		for _, s := range a.Strategies {
			item := domain.NewStrategy(s.Description)
			item.CompletionPct = s.CompletionPct
			item.AssignedBudget = s.AssignedBudget
			item.ExecutedBudget = s.ExecutedBudget
			strategy := tree.Node[domain.PlanItem]{
				ID:      cloneID(s.ID),
				Data:    item,
				Deleted: s.IsDeleted,
			}
			for _, i := range s.Interventions {
				strategy.Children = append(strategy.Children, tree.Node[domain.PlanItem]{
					ID:      cloneID(i.ID),
					Data:    domain.NewIntervention(i.Name),
					Deleted: i.IsDeleted,
				})
			}
			area.Children = append(area.Children, strategy)
		}
		forest = append(forest, area)
	}
	return forest
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
