package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/repository"
	"github.com/alexanderramin/planner/internal/service"
	"github.com/alexanderramin/planner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// testApp wires the commands to an in-memory store.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	plans := service.NewPlanService(repository.NewSQLitePlanRepo(database), uow)
	events := service.NewEventService(repository.NewSQLiteEventRepo(database), uow)
	return &App{
		Plans:   plans,
		Events:  events,
		Backend: service.NewLocalBackend(plans, events),
	}
}

// executeCmd runs a fresh root command so flag state never leaks between
// calls. It returns the plain-text output.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stripANSI(buf.String()), err
}

func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, "planner %v\n%s", args, out)
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlanCommands_BuildEditAndPrune(t *testing.T) {
	app := testApp(t)

	out := mustExecute(t, app, "plan", "new", "2026-2030")
	assert.Contains(t, out, "Created plan 2026-2030 #1")

	out = mustExecute(t, app, "plan", "add", "1", "Research", "--objective", "Grow output")
	assert.Contains(t, out, "Added area Research at 0")

	out = mustExecute(t, app, "plan", "add", "1", "Grants", "--under", "0")
	assert.Contains(t, out, "Added strategy Grants at 0.0")

	out = mustExecute(t, app, "plan", "add", "1", "Workshop", "--under", "0.0")
	assert.Contains(t, out, "Added intervention Workshop at 0.0.0")

	mustExecute(t, app, "plan", "set", "1", "assigned_budget", "1000", "--path", "0.0")
	mustExecute(t, app, "plan", "set", "1", "executed_budget", "250", "--path", "0.0")
	out = mustExecute(t, app, "plan", "set", "1", "completion", "60", "--path", "0.0")
	assert.Contains(t, out, "Set completion at 0.0")

	out = mustExecute(t, app, "plan", "show", "1")
	assert.Contains(t, out, "2026-2030 (#1)")
	assert.Contains(t, out, "Research")
	assert.Contains(t, out, "Grants")
	assert.Contains(t, out, "Workshop")
	assert.Contains(t, out, "1,000.00")
	assert.Contains(t, out, "25%")

	_, err := executeCmd(t, app, "plan", "set", "1", "completion", "160", "--path", "0.0")
	assert.ErrorIs(t, err, domain.ErrInvalidValue)

	_, err = executeCmd(t, app, "plan", "add", "1", "Nested", "--under", "0.0.0")
	assert.ErrorIs(t, err, domain.ErrNoChildLevel)

	out = mustExecute(t, app, "plan", "rm", "1", "--path", "0")
	assert.Contains(t, out, "Removed area Research and 2 nested")

	out = mustExecute(t, app, "plan", "show", "1")
	assert.Contains(t, out, "No areas yet")
	assert.NotContains(t, out, "Grants")

	_, err = executeCmd(t, app, "plan", "rm", "1", "--path", "0")
	assert.Error(t, err)
}

func TestPlanCommands_ListAndDelete(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "plan", "new", "Alpha")
	mustExecute(t, app, "plan", "new", "Beta")
	mustExecute(t, app, "plan", "add", "2", "Outreach")

	out := mustExecute(t, app, "plan", "list")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")

	_, err := executeCmd(t, app, "plan", "delete", "1")
	assert.ErrorContains(t, err, "--yes")

	out = mustExecute(t, app, "plan", "delete", "1", "--yes")
	assert.Contains(t, out, "Deleted plan #1")

	out = mustExecute(t, app, "plan", "list")
	assert.NotContains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
}

func TestPlanCommands_RejectBadArguments(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "plan", "new", "Alpha")

	_, err := executeCmd(t, app, "plan", "show", "abc")
	assert.ErrorContains(t, err, `invalid plan id "abc"`)

	_, err = executeCmd(t, app, "plan", "set", "1", "name", "x", "--path", "0.x")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "plan", "set", "1", "name", "x", "--path", "3")
	assert.ErrorContains(t, err, "no plan node at 3")

	_, err = executeCmd(t, app, "plan", "edit", "1")
	assert.ErrorContains(t, err, "needs a terminal")
}

const workshopYAML = `name: Workshop
responsible: Ana Torres
objective: Train regional staff
location: Quito
start_date: 2026-03-01
end_date: 2026-03-03
financing:
  - source: Ministry
    amount: 1500.50
contributions:
  - source: Partner NGO
    amount: 250
dates:
  - date: 2026-03-02
    note: Day one
`

func TestEventCommands_CreateFromFileThenEdit(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "plan", "new", "2026-2030")
	file := writeFile(t, "event.yaml", workshopYAML)

	out := mustExecute(t, app, "event", "new", "1", "--file", file)
	assert.Contains(t, out, "Event saved")
	assert.Contains(t, out, "event #1")

	out = mustExecute(t, app, "event", "list", "1")
	assert.Contains(t, out, "Workshop")
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "1,750.50")

	out = mustExecute(t, app, "event", "show", "1")
	assert.Contains(t, out, "WORKSHOP (#1)")
	assert.Contains(t, out, "Ana Torres")
	assert.Contains(t, out, "Partner NGO")
	assert.Contains(t, out, "Total cost")

	out = mustExecute(t, app, "event", "edit", "1",
		"--remove", "contributions.0",
		"--set", "financing.0.amount=2000")
	assert.Contains(t, out, "Event saved")

	out = mustExecute(t, app, "event", "list", "1")
	assert.Contains(t, out, "2,000.00")

	out = mustExecute(t, app, "event", "show", "1")
	assert.NotContains(t, out, "Partner NGO")

	out = mustExecute(t, app, "event", "delete", "1")
	assert.Contains(t, out, "Deleted event #1")
	out = mustExecute(t, app, "event", "list", "1")
	assert.NotContains(t, out, "Workshop")
}

func TestEventCommands_InvalidEventIsNotSubmitted(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "plan", "new", "2026-2030")

	out, err := executeCmd(t, app, "event", "new", "1", "--set", "name=Workshop")
	require.ErrorIs(t, err, editor.ErrNotSubmitted)
	assert.Contains(t, out, "Step 1 has errors")
	assert.Contains(t, out, "responsible")

	out = mustExecute(t, app, "event", "list", "1")
	assert.NotContains(t, out, "Workshop")
}

func TestEventCommands_DisabledRowsAreNotSubmitted(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "plan", "new", "2026-2030")
	file := writeFile(t, "event.yaml", workshopYAML)

	_, err := executeCmd(t, app, "event", "new", "1", "--file", file, "--disable", "financing.0")
	require.ErrorIs(t, err, editor.ErrNotSubmitted)

	_, err = executeCmd(t, app, "event", "new", "1", "--file", file, "--remove", "budget.0")
	assert.ErrorContains(t, err, `unknown section "budget"`)

	_, err = executeCmd(t, app, "event", "new", "1", "--file", file, "--remove", "dates.5")
	assert.ErrorContains(t, err, "no row dates.5")
}

func TestEventCommands_AttachFiles(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "plan", "new", "2026-2030")
	file := writeFile(t, "event.yaml", workshopYAML)
	report := writeFile(t, "report.pdf", "%PDF-1.4")

	mustExecute(t, app, "event", "new", "1", "--file", file, "--attach", report)

	out := mustExecute(t, app, "event", "show", "1")
	assert.Contains(t, out, "report.pdf")

	_, err := executeCmd(t, app, "event", "new", "1", "--file", file, "--attach", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "attachment")
}
