package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanItem_SetFieldPerLevel(t *testing.T) {
	area := NewArea("Teaching", "")
	area, err := area.SetField(FieldObjective, "  Improve outcomes ")
	require.NoError(t, err)
	assert.Equal(t, "Improve outcomes", area.Objective)

	_, err = area.SetField(FieldCompletion, "10")
	assert.ErrorIs(t, err, ErrUnknownField, "areas have no completion")

	strategy := NewStrategy("Train staff")
	strategy, err = strategy.SetField(FieldAssignedBudget, "2500.75")
	require.NoError(t, err)
	assert.Equal(t, 2500.75, strategy.AssignedBudget)

	got, err := strategy.Get(FieldAssignedBudget)
	require.NoError(t, err)
	assert.Equal(t, "2500.75", got)
}

func TestPlanItem_SetFieldRejectsBadNumbers(t *testing.T) {
	strategy := NewStrategy("s")

	tests := []struct {
		field, value string
	}{
		{FieldCompletion, "abc"},
		{FieldCompletion, "101"},
		{FieldCompletion, "-1"},
		{FieldExecutedBudget, "-5"},
		{FieldAssignedBudget, ""},
		{FieldCompletion, "NaN"},
		{FieldAssignedBudget, "Inf"},
		{FieldExecutedBudget, "+Inf"},
	}
	for _, tt := range tests {
		out, err := strategy.SetField(tt.field, tt.value)
		assert.ErrorIs(t, err, ErrInvalidValue, "%s=%q", tt.field, tt.value)
		assert.Equal(t, strategy, out)
	}
}

func TestPlanItem_NewChild(t *testing.T) {
	child, err := NewArea("a", "").NewChild()
	require.NoError(t, err)
	assert.Equal(t, LevelStrategy, child.Level)

	child, err = child.NewChild()
	require.NoError(t, err)
	assert.Equal(t, LevelIntervention, child.Level)

	_, err = child.NewChild()
	assert.ErrorIs(t, err, ErrNoChildLevel)
}

func TestLevelAt(t *testing.T) {
	assert.Equal(t, LevelArea, LevelAt(0))
	assert.Equal(t, LevelIntervention, LevelAt(2))
	assert.Equal(t, Level(""), LevelAt(3))
}
