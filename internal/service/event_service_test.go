package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/repository"
	"github.com/alexanderramin/planner/internal/testutil"
	"github.com/alexanderramin/planner/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	plans  PlanService
	events EventService
	planID int64
}

func newEventFixture(t *testing.T) eventFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	f := eventFixture{
		plans:  NewPlanService(repository.NewSQLitePlanRepo(database), uow),
		events: NewEventService(repository.NewSQLiteEventRepo(database), uow),
	}
	id, err := f.plans.Create(context.Background(), "2026")
	require.NoError(t, err)
	f.planID = id
	return f
}

func TestEventService_SaveRecomputesTotal(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	p := testutil.NewTestEvent(f.planID, "Fair",
		testutil.WithFinancing("Budget", 100),
		testutil.WithContribution("Sponsor", 0.5),
		testutil.WithDates("2026-03-02"),
	)
	p.TotalCost = 9999

	res, err := f.events.Save(ctx, p, nil)
	require.NoError(t, err)

	got, err := f.events.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.5, got.TotalCost)
}

func TestEventService_RejectsInvalidEvent(t *testing.T) {
	f := newEventFixture(t)

	p := testutil.NewTestEvent(f.planID, "Fair", testutil.WithDates("2026-04-01"))
	_, err := f.events.Save(context.Background(), p, nil)

	require.ErrorIs(t, err, ErrInvalidEvent)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, wizard.StepFinancing, verr.Step)
	assert.Contains(t, verr.Fields, domain.SectionFinancing)
	assert.Contains(t, verr.Fields, "dates.0.date", "date outside the event window")

	list, err := f.events.ListByPlan(context.Background(), f.planID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLocalBackend_EventSessionEditRemovesRows(t *testing.T) {
	f := newEventFixture(t)
	backend := NewLocalBackend(f.plans, f.events)
	ctx := context.Background()

	res, err := f.events.Save(ctx, testutil.NewTestEvent(f.planID, "Fair",
		testutil.WithFinancing("Budget", 100),
		testutil.WithFinancing("Dean", 50),
		testutil.WithDates("2026-03-01", "2026-03-02"),
	), nil)
	require.NoError(t, err)

	s := editor.NewEventSession(backend, backend, nil)
	require.NoError(t, s.Load(ctx, res.ID))
	require.NoError(t, s.Edit(func(form domain.EventForm) domain.EventForm {
		form.Financing = form.Financing.RemoveAt(1)
		form.Dates = form.Dates.SetDisabled(0, true)
		return form
	}))
	for s.Next() == wizard.Moved {
	}
	require.True(t, s.IsLast())

	_, err = s.Submit(ctx)
	require.NoError(t, err)

	got, err := f.events.Get(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, got.Financing, 1)
	assert.Equal(t, "Budget", got.Financing[0].Source)
	require.Len(t, got.Dates, 1)
	assert.Equal(t, "2026-03-02", got.Dates[0].Date)
	assert.Equal(t, 100.0, got.TotalCost)
}

func TestEventService_DeleteMissing(t *testing.T) {
	f := newEventFixture(t)
	err := f.events.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
