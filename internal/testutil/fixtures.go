package testutil

import (
	"github.com/alexanderramin/planner/internal/contract"
)

// Plan options
type PlanOption func(*contract.PlanPayload)

// AreaOption configures an area added with WithArea.
type AreaOption func(*contract.AreaPayload)

func WithPlanID(id int64) PlanOption {
	return func(p *contract.PlanPayload) {
		p.PlanID = id
	}
}

func WithArea(name string, opts ...AreaOption) PlanOption {
	return func(p *contract.PlanPayload) {
		a := contract.AreaPayload{Name: name, Objective: name + " objective", Strategies: []contract.StrategyPayload{}}
		for _, opt := range opts {
			opt(&a)
		}
		p.Areas = append(p.Areas, a)
	}
}

// WithStrategy adds a strategy with the given budget and interventions.
func WithStrategy(description string, assigned, executed float64, interventions ...string) AreaOption {
	return func(a *contract.AreaPayload) {
		s := contract.StrategyPayload{
			Description:    description,
			AssignedBudget: assigned,
			ExecutedBudget: executed,
			Interventions:  []contract.InterventionPayload{},
		}
		for _, name := range interventions {
			s.Interventions = append(s.Interventions, contract.InterventionPayload{Name: name})
		}
		a.Strategies = append(a.Strategies, s)
	}
}

// NewTestPlan builds an unsaved plan payload.
func NewTestPlan(title string, opts ...PlanOption) contract.PlanPayload {
	p := contract.PlanPayload{Title: title, Areas: []contract.AreaPayload{}}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Event options
type EventOption func(*contract.EventPayload)

func WithFinancing(source string, amount float64) EventOption {
	return func(e *contract.EventPayload) {
		e.Financing = append(e.Financing, contract.FinancingPayload{Source: source, Amount: amount})
		e.TotalCost += amount
	}
}

func WithContribution(source string, amount float64) EventOption {
	return func(e *contract.EventPayload) {
		e.Contributions = append(e.Contributions, contract.FinancingPayload{Source: source, Amount: amount})
		e.TotalCost += amount
	}
}

func WithDates(dates ...string) EventOption {
	return func(e *contract.EventPayload) {
		for _, d := range dates {
			e.Dates = append(e.Dates, contract.DatePayload{Date: d})
		}
	}
}

// NewTestEvent builds an unsaved event payload with valid general fields.
func NewTestEvent(planID int64, name string, opts ...EventOption) contract.EventPayload {
	e := contract.EventPayload{
		PlanID:        planID,
		Name:          name,
		Responsible:   "Dean's office",
		Objective:     name + " objective",
		StartDate:     "2026-03-01",
		EndDate:       "2026-03-03",
		Financing:     []contract.FinancingPayload{},
		Contributions: []contract.FinancingPayload{},
		Dates:         []contract.DatePayload{},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
