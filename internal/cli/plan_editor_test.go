package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/teatest"
	"github.com/alexanderramin/planner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEditor loads a plan with one area, strategy and intervention
// into a plan editor.
func newTestEditor(t *testing.T) (*teatest.Driver, *App) {
	t.Helper()
	app := testApp(t)
	ctx := context.Background()

	res, err := app.Plans.Save(ctx, testutil.NewTestPlan("2026-2030",
		testutil.WithArea("Research", testutil.WithStrategy("Grants", 1000, 250, "Workshop")),
	))
	require.NoError(t, err)

	s := editor.NewPlanSession(app.Backend, app.Backend, nil)
	require.NoError(t, s.Load(ctx, res.ID))

	d := teatest.New(t, newPlanEditor(ctx, s), teatest.WithCmdTimeout(2*time.Second))
	d.DrainInit()
	return d, app
}

func editorOf(d *teatest.Driver) *planEditor {
	return d.Model.(*planEditor)
}

func TestPlanEditor_RendersTreeAndBudget(t *testing.T) {
	d, _ := newTestEditor(t)
	view := stripANSI(d.View())

	assert.Contains(t, view, "2026-2030")
	assert.Contains(t, view, "Research")
	assert.Contains(t, view, "Grants")
	assert.Contains(t, view, "Workshop")
	assert.Contains(t, view, "1,000.00")
	assert.Contains(t, view, "250.00")
	assert.Contains(t, view, "25%")
}

func TestPlanEditor_DeleteAndSave(t *testing.T) {
	d, app := newTestEditor(t)

	d.PressKey('d')
	view := stripANSI(d.View())
	assert.Contains(t, view, `Deleted area "Research"`)
	assert.Contains(t, view, "Empty plan")
	assert.Contains(t, view, "2026-2030 *")

	d.PressKey('s')
	view = stripANSI(d.View())
	assert.Contains(t, view, "Saved plan #1")
	assert.NotContains(t, view, "2026-2030 *")
	assert.False(t, editorOf(d).dirty)

	p, err := app.Plans.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, p.Areas)
}

func TestPlanEditor_SaveTwiceDoesNotDuplicateNewNodes(t *testing.T) {
	d, app := newTestEditor(t)

	d.PressKey('A')
	d.Type("Outreach")
	d.PressEnter()
	d.PressKey('s')
	d.PressKey('s')

	p, err := app.Plans.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, p.Areas, 2)
	assert.Equal(t, "Outreach", p.Areas[1].Name)
}

func TestPlanEditor_EditName(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressEnter()
	assert.Contains(t, stripANSI(d.View()), "name: Research")

	d.PressBackspace(len("Research"))
	d.Type("Science")
	d.PressEnter()

	view := stripANSI(d.View())
	assert.Contains(t, view, "Science")
	assert.NotContains(t, view, "Research")
	assert.Equal(t, modeBrowse, editorOf(d).mode)
	assert.True(t, editorOf(d).dirty)
}

func TestPlanEditor_RejectedValueKeepsInputOpen(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressDown()
	d.PressKey('e')
	d.PressTab()
	assert.Contains(t, stripANSI(d.View()), "completion: ")

	d.PressBackspace(5)
	d.Type("150")
	d.PressEnter()

	view := stripANSI(d.View())
	assert.Contains(t, view, "between 0 and 100")
	assert.Equal(t, modeEditField, editorOf(d).mode)

	d.PressEsc()
	assert.Equal(t, modeBrowse, editorOf(d).mode)
	assert.NotContains(t, stripANSI(d.View()), "between 0 and 100")
}

func TestPlanEditor_AddChildren(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressDown()
	d.PressKey('a')
	assert.Contains(t, stripANSI(d.View()), "new intervention: ")
	d.PressEnter()
	assert.Contains(t, stripANSI(d.View()), "enter a name")

	d.Type("Seminar")
	d.PressEnter()

	view := stripANSI(d.View())
	assert.Contains(t, view, "0.0.1 Seminar")
	assert.Equal(t, 3, editorOf(d).cursor)
}

func TestPlanEditor_InterventionHasNoChildren(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressDown()
	d.PressDown()
	d.PressKey('a')

	assert.Contains(t, stripANSI(d.View()), "an intervention cannot have children")
	assert.Equal(t, modeBrowse, editorOf(d).mode)
}

func TestPlanEditor_AddArea(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressKey('A')
	d.Type("Outreach")
	d.PressEnter()

	view := stripANSI(d.View())
	assert.Contains(t, view, "1 Outreach")
	assert.Equal(t, 3, editorOf(d).cursor)
}

func TestPlanEditor_FoldHidesChildren(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressSpace()
	view := stripANSI(d.View())
	assert.Contains(t, view, "Research")
	assert.NotContains(t, view, "Grants")

	d.PressDown()
	assert.Equal(t, 0, editorOf(d).cursor)

	d.PressSpace()
	assert.Contains(t, stripANSI(d.View()), "Grants")
}

func TestPlanEditor_CursorStaysInBounds(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressUp()
	assert.Equal(t, 0, editorOf(d).cursor)

	d.PressDown()
	d.PressDown()
	d.PressDown()
	assert.Equal(t, 2, editorOf(d).cursor)

	d.PressUp()
	assert.Equal(t, 1, editorOf(d).cursor)
}

func TestPlanEditor_Quit(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressKey('q')
	assert.True(t, d.Quitting)
}

func TestPlanEditor_CtrlCQuits(t *testing.T) {
	d, _ := newTestEditor(t)

	d.PressCtrlC()
	assert.True(t, d.Quitting)
}
