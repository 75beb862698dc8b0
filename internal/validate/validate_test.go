package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapSource is a FieldSource over a flat map with explicit row indices.
type mapSource struct {
	values map[string]string
	rows   map[string][]int
}

func (m mapSource) Value(path string) (string, bool) {
	v, ok := m.values[path]
	return v, ok
}

func (m mapSource) ActiveRows(section string) []int {
	return m.rows[section]
}

func testValidator() *Validator {
	v := New([]Step{
		{Number: 2, Name: "financing", FieldPaths: []string{"rows.*.amount"}},
		{Number: 1, Name: "general", FieldPaths: []string{"name", "start", "end"}},
	})
	v.Register("name", Required("Name"), MaxLength("Name", 10))
	v.Register("start", Required("Start"), Date("Start"))
	v.Register("end", Date("End"))
	v.RegisterCross("end", NotBefore("End", "start", "start"))
	v.Register("rows.*.amount", Required("Amount"))
	return v
}

func TestNew_OrdersSteps(t *testing.T) {
	steps := testValidator().Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].Number)
	assert.Equal(t, 2, steps[1].Number)
}

func TestExpand_UsesCurrentRows(t *testing.T) {
	src := mapSource{rows: map[string][]int{"rows": {0, 2, 5}}}
	step, _ := testValidator().Step(2)

	assert.Equal(t, []string{"rows.0.amount", "rows.2.amount", "rows.5.amount"}, Expand(step, src))

	src.rows["rows"] = nil
	assert.Empty(t, Expand(step, src))
}

func TestValidateStep_OnlyDeclaredPaths(t *testing.T) {
	v := testValidator()
	src := mapSource{
		values: map[string]string{"name": "", "start": "2026-02-01", "end": "2026-01-01"},
		rows:   map[string][]int{"rows": {0}},
	}

	errs, ok := v.ValidateStep(1, src, nil)
	require.False(t, ok)
	assert.Equal(t, []string{"end", "name"}, errs.Paths())
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "End must not be before start", errs["end"])
	assert.NotContains(t, errs, "rows.0.amount", "step 2 fields are not validated")
}

func TestValidateStep_KeepsOtherStepsErrors(t *testing.T) {
	v := testValidator()
	src := mapSource{
		values: map[string]string{"rows.0.amount": ""},
		rows:   map[string][]int{"rows": {0}},
	}

	errs, ok := v.ValidateStep(2, src, nil)
	require.False(t, ok)
	require.Contains(t, errs, "rows.0.amount")

	src.values["name"] = "Fair"
	src.values["start"] = "2026-01-01"
	errs, ok = v.ValidateStep(1, src, errs)
	require.True(t, ok)
	assert.Contains(t, errs, "rows.0.amount", "unrelated step error survives")
}

func TestValidateStep_ClearsFixedAndStaleRows(t *testing.T) {
	v := testValidator()
	src := mapSource{
		values: map[string]string{},
		rows:   map[string][]int{"rows": {0, 1}},
	}
	errs, _ := v.ValidateStep(2, src, Errors{"name": "Name is required"})
	require.Len(t, errs, 3)

	// Row 1 removed, row 0 fixed.
	src.rows["rows"] = []int{0}
	src.values["rows.0.amount"] = "10"
	out, ok := v.ValidateStep(2, src, errs)
	assert.True(t, ok)
	assert.Equal(t, Errors{"name": "Name is required"}, out)
	assert.Len(t, errs, 3, "input map untouched")
}

func TestValidateAll_ReportsFirstFailingStep(t *testing.T) {
	v := testValidator()
	src := mapSource{
		values: map[string]string{"name": "Fair", "start": "2026-01-01"},
		rows:   map[string][]int{"rows": {0}},
	}

	errs, first := v.ValidateAll(src, nil)
	assert.Equal(t, 2, first)
	assert.Equal(t, []string{"rows.0.amount"}, errs.Paths())

	src.values["rows.0.amount"] = "5"
	errs, first = v.ValidateAll(src, errs)
	assert.Zero(t, first)
	assert.Empty(t, errs)
}

func TestValidateStep_UnknownStepPasses(t *testing.T) {
	errs, ok := testValidator().ValidateStep(9, mapSource{}, Errors{"x": "y"})
	assert.True(t, ok)
	assert.Equal(t, Errors{"x": "y"}, errs)
}

func TestMatch(t *testing.T) {
	assert.True(t, Match("rows.*.amount", "rows.12.amount"))
	assert.False(t, Match("rows.*.amount", "rows.x.amount"))
	assert.False(t, Match("rows.*.amount", "rows.1.source"))
	assert.True(t, Match("name", "name"))
	assert.False(t, Match("name", "name.0"))
}

func TestRules(t *testing.T) {
	assert.Error(t, Required("X")("  "))
	assert.NoError(t, Required("X")("a"))
	assert.Error(t, MaxLength("X", 2)("abc"))
	assert.NoError(t, MaxLength("X", 3)("äöü"))
	assert.NoError(t, Date("X")(""))
	assert.Error(t, Date("X")("01/02/2026"))

	src := mapSource{values: map[string]string{"from": "2026-01-01", "to": "2026-01-31"}}
	between := Between("Day", "from", "to")
	assert.NoError(t, between(src, "2026-01-15"))
	assert.Error(t, between(src, "2026-02-01"))
	assert.NoError(t, between(mapSource{}, "2026-02-01"), "no bounds, no opinion")

	atLeast := AtLeastOne("rows", "add a row")
	assert.EqualError(t, atLeast(mapSource{}, ""), "add a row")
	assert.NoError(t, atLeast(mapSource{rows: map[string][]int{"rows": {3}}}, ""))

	combined := testValidator().FieldRule("name")
	require.NotNil(t, combined)
	assert.Error(t, combined("a very long name"))
	assert.Nil(t, testValidator().FieldRule("end.unknown"))
}
