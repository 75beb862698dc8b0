package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepo_SaveAndLoad(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLitePlanRepo(database)
	events := NewSQLiteEventRepo(database)
	ctx := context.Background()

	planID, err := plans.Create(ctx, "2026")
	require.NoError(t, err)

	in := testutil.NewTestEvent(planID, "Science fair",
		testutil.WithFinancing("Faculty budget", 1500),
		testutil.WithContribution("Sponsor", 200.5),
		testutil.WithDates("2026-03-01", "2026-03-02"),
	)
	id, err := events.Save(ctx, in, []domain.Attachment{{Name: "budget.pdf", ContentType: "application/pdf"}})
	require.NoError(t, err)

	got, err := events.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Science fair", got.Name)
	assert.Equal(t, 1700.5, got.TotalCost)
	require.Len(t, got.Financing, 1)
	assert.Equal(t, "Faculty budget", got.Financing[0].Source)
	require.Len(t, got.Contributions, 1)
	assert.Equal(t, 200.5, got.Contributions[0].Amount)
	require.Len(t, got.Dates, 2)
	assert.NotNil(t, got.Dates[0].ID)
	assert.Equal(t, []string{"budget.pdf"}, got.Attachments)
	assert.Nil(t, got.InterventionID)
}

func TestEventRepo_SaveAppliesRemovals(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLitePlanRepo(database)
	events := NewSQLiteEventRepo(database)
	ctx := context.Background()

	planID, err := plans.Create(ctx, "2026")
	require.NoError(t, err)
	id, err := events.Save(ctx, testutil.NewTestEvent(planID, "Fair",
		testutil.WithFinancing("A", 10),
		testutil.WithFinancing("B", 20),
		testutil.WithDates("2026-03-01", "2026-03-02"),
	), nil)
	require.NoError(t, err)

	p, err := events.Load(ctx, id)
	require.NoError(t, err)

	p.RemovedFinancingIDs = []int64{*p.Financing[0].ID}
	p.Financing = p.Financing[1:]
	p.Financing[0].Amount = 25
	p.RemovedDateIDs = []int64{*p.Dates[1].ID}
	p.Dates = p.Dates[:1]
	p.TotalCost = 25

	_, err = events.Save(ctx, *p, nil)
	require.NoError(t, err)

	got, err := events.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Financing, 1)
	assert.Equal(t, "B", got.Financing[0].Source)
	assert.Equal(t, 25.0, got.Financing[0].Amount)
	require.Len(t, got.Dates, 1)
	assert.Equal(t, "2026-03-01", got.Dates[0].Date)

	// A retried submit with the same removals still succeeds.
	_, err = events.Save(ctx, *p, nil)
	require.NoError(t, err)
}

func TestEventRepo_UpdateUnknownRow(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLitePlanRepo(database)
	events := NewSQLiteEventRepo(database)
	ctx := context.Background()

	planID, err := plans.Create(ctx, "2026")
	require.NoError(t, err)
	id, err := events.Save(ctx, testutil.NewTestEvent(planID, "Fair", testutil.WithFinancing("A", 10)), nil)
	require.NoError(t, err)

	p, err := events.Load(ctx, id)
	require.NoError(t, err)
	// An institutional row cannot be updated as a contribution.
	p.Contributions = p.Financing
	p.Financing = nil
	_, err = events.Save(ctx, *p, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventRepo_ListAndDelete(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLitePlanRepo(database)
	events := NewSQLiteEventRepo(database)
	ctx := context.Background()

	planID, err := plans.Create(ctx, "2026")
	require.NoError(t, err)
	late := testutil.NewTestEvent(planID, "Late", testutil.WithFinancing("A", 5))
	late.StartDate = "2026-09-01"
	_, err = events.Save(ctx, late, nil)
	require.NoError(t, err)
	early, err := events.Save(ctx, testutil.NewTestEvent(planID, "Early"), nil)
	require.NoError(t, err)

	list, err := events.ListByPlan(ctx, planID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Early", list[0].Name)
	assert.Equal(t, 5.0, list[1].TotalCost)

	require.NoError(t, events.Delete(ctx, early))
	_, err = events.Load(ctx, early)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventRepo_DeletingPlanRemovesEvents(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLitePlanRepo(database)
	events := NewSQLiteEventRepo(database)
	ctx := context.Background()

	planID, err := plans.Create(ctx, "2026")
	require.NoError(t, err)
	id, err := events.Save(ctx, testutil.NewTestEvent(planID, "Fair", testutil.WithDates("2026-03-01")), nil)
	require.NoError(t, err)

	require.NoError(t, plans.Delete(ctx, planID))
	_, err = events.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
