package cli

import (
	"io"
	"os"

	"github.com/alexanderramin/planner/internal/cli/formatter"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// App holds the collaborators used by CLI commands.
type App struct {
	// Plans and Events serve the local store. Listing and hard deletes go
	// through them even when Backend is remote.
	Plans  service.PlanService
	Events service.EventService

	// Backend feeds and persists editor sessions: the local store or the
	// remote API.
	Backend editor.Backend

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool

	// Prompter drives the event wizard. Nil uses huh forms.
	Prompter stepPrompter

	// RunTUI runs a full-screen model. Nil uses tea.NewProgram.
	RunTUI func(m tea.Model) (tea.Model, error)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) prompter() stepPrompter {
	if a.Prompter != nil {
		return a.Prompter
	}
	return newHuhPrompter()
}

func (a *App) runTUI(m tea.Model) (tea.Model, error) {
	if a.RunTUI != nil {
		return a.RunTUI(m)
	}
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr)).Run()
}

// NewRootCmd creates the top-level "planner" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planner",
		Short:         "Strategic plan editor and event financing tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newEventCmd(app),
	)

	return root
}

// withSpinner shows a spinner on out while fn runs, in interactive mode only.
func withSpinner(app *App, out io.Writer, message string, fn func() error) error {
	if !app.interactive() {
		return fn()
	}
	stop := formatter.StartSpinner(out, message)
	defer stop()
	return fn()
}
