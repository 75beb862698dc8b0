package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/validate"
	"github.com/alexanderramin/planner/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type promptFunc func(s *editor.EventSession) wizardAction

// scriptedPrompter plays back one response per call and records the
// step each call was made on.
type scriptedPrompter struct {
	t      *testing.T
	script []promptFunc
	steps  []int
}

func (p *scriptedPrompter) PromptStep(_ context.Context, s *editor.EventSession, step validate.Step) (wizardAction, error) {
	p.steps = append(p.steps, step.Number)
	if len(p.script) == 0 {
		p.t.Fatalf("unexpected prompt on step %d", step.Number)
	}
	next := p.script[0]
	p.script = p.script[1:]
	return next(s), nil
}

func setAll(t *testing.T, values map[string]string) promptFunc {
	return func(s *editor.EventSession) wizardAction {
		for path, v := range values {
			require.NoError(t, s.Set(path, v))
		}
		return actionNext
	}
}

func advance(*editor.EventSession) wizardAction { return actionNext }

func generalValues(t *testing.T) promptFunc {
	return setAll(t, map[string]string{
		domain.EventName:        "Workshop",
		domain.EventResponsible: "Ana Torres",
		domain.EventObjective:   "Train regional staff",
		domain.EventStartDate:   "2026-03-01",
		domain.EventEndDate:     "2026-03-03",
	})
}

func financingValues(t *testing.T) promptFunc {
	return setAll(t, map[string]string{
		domain.RowPath(domain.SectionFinancing, 0, domain.RowSource): "Ministry",
		domain.RowPath(domain.SectionFinancing, 0, domain.RowAmount): "1200",
	})
}

func scheduleValues(t *testing.T) promptFunc {
	return setAll(t, map[string]string{
		domain.RowPath(domain.SectionDates, 0, domain.RowDate): "2026-03-02",
	})
}

func interactiveApp(t *testing.T, p stepPrompter) *App {
	app := testApp(t)
	mustExecute(t, app, "plan", "new", "2026-2030")
	app.IsInteractive = func() bool { return true }
	app.Prompter = p
	return app
}

func TestEventWizard_BlockedStepIsPromptedAgain(t *testing.T) {
	p := &scriptedPrompter{t: t}
	p.script = []promptFunc{generalValues(t), advance, financingValues(t), scheduleValues(t), advance}
	app := interactiveApp(t, p)

	out := mustExecute(t, app, "event", "new", "1")

	assert.Equal(t, []int{1, 2, 2, 3, 4}, p.steps)
	assert.Contains(t, out, "Step 2 has errors")
	assert.Contains(t, out, "Event saved")
	assert.Contains(t, out, "event #1")
}

func TestEventWizard_BlockedSubmitReturnsToInvalidStep(t *testing.T) {
	p := &scriptedPrompter{t: t}
	disableFinancing := func(s *editor.EventSession) wizardAction {
		require.NoError(t, editForm(s, func(f domain.EventForm) (domain.EventForm, error) {
			return applyRowOp(f, "financing.0", rowDisable)
		}))
		return actionNext
	}
	enableFinancing := func(s *editor.EventSession) wizardAction {
		require.NoError(t, editForm(s, func(f domain.EventForm) (domain.EventForm, error) {
			return applyRowOp(f, "financing.0", rowEnable)
		}))
		return actionNext
	}
	p.script = []promptFunc{
		generalValues(t), financingValues(t), scheduleValues(t), disableFinancing,
		enableFinancing, advance, advance,
	}
	app := interactiveApp(t, p)

	out := mustExecute(t, app, "event", "new", "1")

	assert.Equal(t, []int{1, 2, 3, 4, 2, 3, 4}, p.steps)
	assert.Contains(t, out, "Step 2 has errors")
	assert.Contains(t, out, "Event saved")
}

func TestEventWizard_BackOnFirstStepCancels(t *testing.T) {
	p := &scriptedPrompter{t: t}
	p.script = []promptFunc{func(*editor.EventSession) wizardAction { return actionBack }}
	app := interactiveApp(t, p)

	out := mustExecute(t, app, "event", "new", "1")

	assert.Equal(t, []int{1}, p.steps)
	assert.Contains(t, out, "Cancelled.")
	assert.NotContains(t, out, "Event saved")

	out = mustExecute(t, app, "event", "list", "1")
	assert.NotContains(t, out, "Workshop")
}

func TestEventWizard_BackKeepsEnteredValues(t *testing.T) {
	p := &scriptedPrompter{t: t}
	back := func(*editor.EventSession) wizardAction { return actionBack }
	p.script = []promptFunc{
		generalValues(t), back,
		func(s *editor.EventSession) wizardAction {
			v, _ := s.Form().Value(domain.EventName)
			assert.Equal(t, "Workshop", v)
			return actionNext
		},
		financingValues(t), scheduleValues(t),
		func(*editor.EventSession) wizardAction { return actionQuit },
	}
	app := interactiveApp(t, p)

	out := mustExecute(t, app, "event", "new", "1")

	assert.Equal(t, []int{1, 2, 1, 2, 3, 4}, p.steps)
	assert.Contains(t, out, "Cancelled.")
}

func TestEventWizard_EditFlagsSkipThePrompts(t *testing.T) {
	p := &scriptedPrompter{t: t}
	app := interactiveApp(t, p)
	file := writeFile(t, "event.yaml", workshopYAML)

	out := mustExecute(t, app, "event", "new", "1", "--file", file)

	assert.Empty(t, p.steps)
	assert.Contains(t, out, "Event saved")
}

func TestSubmitEventDirect_ReportsIncompleteStep(t *testing.T) {
	app := testApp(t)
	var buf bytes.Buffer
	s := editor.NewEventSession(app.Backend, app.Backend, newCLINotifier(&buf))
	s.Start(1)

	_, err := submitEventDirect(context.Background(), s)

	require.ErrorIs(t, err, editor.ErrNotSubmitted)
	assert.ErrorContains(t, err, "step 1")
	assert.Equal(t, wizard.StepGeneral, s.Step().Number)
}
