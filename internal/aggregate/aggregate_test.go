package aggregate

import (
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/alexanderramin/planner/internal/collection"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(amounts ...string) collection.Collection[domain.FinancingRow] {
	var c collection.Collection[domain.FinancingRow]
	for _, a := range amounts {
		c, _ = c.Append(domain.FinancingRow{Amount: a})
	}
	return c
}

func TestTotal_SkipsDeletedAndCoercesGarbage(t *testing.T) {
	pid := int64(3)
	c := collection.New(
		collection.Row[domain.FinancingRow]{Fields: domain.FinancingRow{Amount: "100.50"}},
		collection.Row[domain.FinancingRow]{Fields: domain.FinancingRow{Amount: "abc"}},
		collection.Row[domain.FinancingRow]{PersistedID: &pid, Fields: domain.FinancingRow{Amount: "49.5"}, Deleted: true},
	)

	assert.Equal(t, 100.5, Total(c))
}

func TestTotal_SaturatesInsteadOfOverflowing(t *testing.T) {
	assert.Equal(t, math.MaxFloat64, Total(rows("1e308", "1e308"), rows("1e308")))
	assert.Equal(t, -math.MaxFloat64, Total(rows("-1e308", "-1e308")))
	assert.Equal(t, math.MaxFloat64, Sum(1e308, 1e308, -1))
	assert.Equal(t, 3.5, Sum(1, 2.5))
	assert.Zero(t, Sum())
}

func TestParseAmount(t *testing.T) {
	tests := map[string]float64{
		"":        0,
		"  12 ":   12,
		"1e3":     1000,
		"NaN":     0,
		"Inf":     0,
		"-Inf":    0,
		"12,5":    0,
		"-3.25":   -3.25,
		"ten":     0,
		"0.10000": 0.1,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAmount(in), "input %q", in)
	}
}

func TestTotal_MatchesReferenceUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := rows()
	b := rows()
	next := int64(1)

	for i := 0; i < 300; i++ {
		target := &a
		if rng.Intn(2) == 0 {
			target = &b
		}
		switch rng.Intn(4) {
		case 0:
			*target, _ = target.Append(domain.FinancingRow{Amount: strconv.Itoa(rng.Intn(500))})
		case 1:
			id := next
			next++
			*target = collection.New(append(target.Rows(), collection.Row[domain.FinancingRow]{
				PersistedID: &id,
				Fields:      domain.FinancingRow{Amount: "x" + strconv.Itoa(i)},
			})...)
		case 2:
			if target.Len() > 0 {
				*target = target.RemoveAt(rng.Intn(target.Len()))
			}
		case 3:
			if target.Len() > 0 {
				amount := strconv.Itoa(rng.Intn(1000))
				*target = target.UpdateAt(rng.Intn(target.Len()), func(r domain.FinancingRow) domain.FinancingRow {
					r.Amount = amount
					return r
				})
			}
		}

		assert.Equal(t, reference(a)+reference(b), Total(a, b))
	}
}

func reference(c collection.Collection[domain.FinancingRow]) float64 {
	var sum float64
	for _, r := range c.Rows() {
		if r.Deleted {
			continue
		}
		v, err := strconv.ParseFloat(r.Fields.Amount, 64)
		if err != nil {
			continue
		}
		sum += v
	}
	return sum
}

func TestEvent_SplitsSections(t *testing.T) {
	f := domain.NewEventForm(1)
	f.Financing = rows("100", "25")
	f.Contributions = rows("10.5")

	got := Event(f)
	assert.Equal(t, 125.0, got.Financing)
	assert.Equal(t, 10.5, got.Contributions)
	assert.Equal(t, 135.5, got.Total)
}

func TestBudget_SkipsDeletedSubtrees(t *testing.T) {
	id := int64(1)
	strategy := func(assigned, executed float64) tree.Node[domain.PlanItem] {
		item := domain.NewStrategy("s")
		item.AssignedBudget = assigned
		item.ExecutedBudget = executed
		return tree.Node[domain.PlanItem]{ID: &id, Data: item, Children: []tree.Node[domain.PlanItem]{
			{Data: domain.NewIntervention("i")},
		}}
	}
	forest := []tree.Node[domain.PlanItem]{{
		ID:       &id,
		Data:     domain.NewArea("a", ""),
		Children: []tree.Node[domain.PlanItem]{strategy(1000, 250), strategy(500, 500)},
	}}
	forest = tree.DeleteNode(forest, tree.Path{0, 1})

	b := Budget(forest)
	require.Equal(t, 1, b.Strategies)
	assert.Equal(t, 1, b.Interventions)
	assert.Equal(t, 1000.0, b.Assigned)
	assert.Equal(t, 250.0, b.Executed)
	assert.Equal(t, 25.0, b.ExecutionRate())
	assert.Zero(t, PlanBudget{}.ExecutionRate())
}
