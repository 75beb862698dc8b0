// Package aggregate computes derived totals from the rows and nodes that
// hold them. Nothing here is cached: every call recomputes from its input.
package aggregate

import (
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/planner/internal/collection"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/tree"
)

// Amounted is a row that carries a user-typed amount.
type Amounted interface {
	AmountText() string
}

// ParseAmount converts typed input to a number. Empty, unparsable, NaN and
// infinite input count as 0 so a half-typed amount never poisons a total.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Sum adds amounts, saturating at the largest finite float so a total
// stays representable however large its terms are.
func Sum(amounts ...float64) float64 {
	var sum float64
	for _, a := range amounts {
		sum = saturate(sum + a)
	}
	return sum
}

func saturate(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// Total sums the amount of every non-deleted row across all collections.
// Disabled rows still count: they remain part of the edited form.
func Total[T Amounted](collections ...collection.Collection[T]) float64 {
	var sum float64
	for _, c := range collections {
		sum = saturate(sum + collectionTotal(c))
	}
	return sum
}

func collectionTotal[T Amounted](c collection.Collection[T]) float64 {
	var sum float64
	for _, r := range c.Visible() {
		sum = saturate(sum + ParseAmount(r.Row.Fields.AmountText()))
	}
	return sum
}

// EventTotals breaks an event's cost down by funding section.
type EventTotals struct {
	Financing     float64
	Contributions float64
	Total         float64
}

// Event computes the totals shown on the financing step.
func Event(f domain.EventForm) EventTotals {
	t := EventTotals{
		Financing:     collectionTotal(f.Financing),
		Contributions: collectionTotal(f.Contributions),
	}
	t.Total = Total(f.Financing, f.Contributions)
	return t
}

// PlanBudget sums strategy budgets over the non-deleted part of a plan.
type PlanBudget struct {
	Assigned      float64
	Executed      float64
	Strategies    int
	Interventions int
}

// ExecutionRate is executed over assigned as a percentage, 0 when nothing
// was assigned.
func (b PlanBudget) ExecutionRate() float64 {
	if b.Assigned == 0 {
		return 0
	}
	return b.Executed / b.Assigned * 100
}

// Budget walks the plan and sums strategy budgets, skipping soft-deleted
// subtrees.
func Budget(forest []tree.Node[domain.PlanItem]) PlanBudget {
	var b PlanBudget
	tree.Walk(forest, func(_ tree.Path, n tree.Node[domain.PlanItem]) bool {
		if n.Deleted {
			return false
		}
		switch n.Data.Level {
		case domain.LevelStrategy:
			b.Strategies++
			b.Assigned += n.Data.AssignedBudget
			b.Executed += n.Data.ExecutedBudget
		case domain.LevelIntervention:
			b.Interventions++
		}
		return true
	})
	return b
}
