package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventForm_SetAndValue(t *testing.T) {
	f := NewEventForm(3)

	f, err := f.Set(EventName, " Science fair ")
	require.NoError(t, err)
	f, err = f.Set(RowPath(SectionFinancing, 0, RowAmount), "120.5")
	require.NoError(t, err)
	f, err = f.Set(RowPath(SectionDates, 0, RowDate), "2026-03-01")
	require.NoError(t, err)
	f, err = f.Set(EventIntervention, "44")
	require.NoError(t, err)

	v, ok := f.Value(EventName)
	assert.True(t, ok)
	assert.Equal(t, "Science fair", v)

	v, ok = f.Value("financing.0.amount")
	assert.True(t, ok)
	assert.Equal(t, "120.5", v)

	v, _ = f.Value("dates.0.date")
	assert.Equal(t, "2026-03-01", v)
	require.NotNil(t, f.InterventionID)
	assert.Equal(t, int64(44), *f.InterventionID)
}

func TestEventForm_UnknownPaths(t *testing.T) {
	f := NewEventForm(1)

	_, ok := f.Value("financing.7.amount")
	assert.False(t, ok)
	_, ok = f.Value("budget")
	assert.False(t, ok)

	_, err := f.Set("dates.0.amount", "1")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = f.Set("nope", "1")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = f.Set(EventIntervention, "x")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestEventForm_ActiveRowsSkipDeletedAndDisabled(t *testing.T) {
	f := NewEventForm(1)
	f.Dates, _ = f.Dates.Append(ExecutionDate{Date: "2026-01-02"})
	f.Dates = f.Dates.SetDisabled(0, true)

	assert.Equal(t, []int{1}, f.ActiveRows(SectionDates))
	assert.Equal(t, []int{0}, f.ActiveRows(SectionFinancing))
	assert.Empty(t, f.ActiveRows(SectionContributions))
	assert.Nil(t, f.ActiveRows("other"))
}
