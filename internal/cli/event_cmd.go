package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/planner/internal/assemble"
	"github.com/alexanderramin/planner/internal/cli/formatter"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/spf13/cobra"
)

func newEventCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Record event financing and execution",
	}

	cmd.AddCommand(
		newEventNewCmd(app),
		newEventEditCmd(app),
		newEventShowCmd(app),
		newEventListCmd(app),
		newEventDeleteCmd(app),
	)

	return cmd
}

// eventEdits are the non-interactive edits shared by "event new" and
// "event edit".
type eventEdits struct {
	file     string
	sets     []string
	removes  []string
	disables []string
	enables  []string
	attach   []string
}

func (e *eventEdits) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&e.file, "file", "f", "", "YAML file with event fields and rows")
	cmd.Flags().StringArrayVar(&e.sets, "set", nil, "Set a field, e.g. --set financing.0.amount=1500")
	cmd.Flags().StringArrayVar(&e.removes, "remove", nil, "Remove a row, e.g. --remove dates.1")
	cmd.Flags().StringArrayVar(&e.disables, "disable", nil, "Exclude a row from submission")
	cmd.Flags().StringArrayVar(&e.enables, "enable", nil, "Include a disabled row again")
	cmd.Flags().StringArrayVar(&e.attach, "attach", nil, "Attach a file")
}

func (e *eventEdits) empty() bool {
	return e.file == "" && len(e.sets) == 0 && len(e.removes) == 0 &&
		len(e.disables) == 0 && len(e.enables) == 0 && len(e.attach) == 0
}

// apply writes the edits into the session in a fixed order: file, row
// operations, assignments, attachments.
func (e *eventEdits) apply(s *editor.EventSession) error {
	if e.file != "" {
		doc, err := readEventDoc(e.file)
		if err != nil {
			return err
		}
		if err := editForm(s, doc.apply); err != nil {
			return err
		}
	}

	ops := []struct {
		refs []string
		op   rowOp
	}{{e.removes, rowRemove}, {e.disables, rowDisable}, {e.enables, rowEnable}}
	for _, o := range ops {
		for _, ref := range o.refs {
			op := o.op
			if err := editForm(s, func(f domain.EventForm) (domain.EventForm, error) {
				return applyRowOp(f, ref, op)
			}); err != nil {
				return err
			}
		}
	}

	for _, a := range e.sets {
		path, value, err := parseAssignment(a)
		if err != nil {
			return err
		}
		if err := s.Set(path, value); err != nil {
			return err
		}
	}

	for _, p := range e.attach {
		att, err := newAttachment(p)
		if err != nil {
			return err
		}
		if err := s.Edit(func(f domain.EventForm) domain.EventForm {
			f.Attachments = append(f.Attachments, att)
			return f
		}); err != nil {
			return err
		}
	}
	return nil
}

// editForm is Session.Edit for edits that can fail. A failed edit leaves
// the form untouched.
func editForm(s *editor.EventSession, fn func(domain.EventForm) (domain.EventForm, error)) error {
	var editErr error
	err := s.Edit(func(f domain.EventForm) domain.EventForm {
		out, err := fn(f)
		if err != nil {
			editErr = err
			return f
		}
		return out
	})
	if err != nil {
		return err
	}
	return editErr
}

// finishEvent runs the wizard in a terminal without edit flags, and
// submits directly otherwise. Progress goes to errOut.
func finishEvent(ctx context.Context, app *App, out, errOut io.Writer, s *editor.EventSession, n *cliNotifier, edits *eventEdits) (*contract.SaveResult, error) {
	if err := edits.apply(s); err != nil {
		return nil, err
	}
	if app.interactive() && edits.empty() {
		return runEventWizard(ctx, out, s, n, app.prompter())
	}
	var res *contract.SaveResult
	err := withSpinner(app, errOut, "Saving event...", func() error {
		var err error
		res, err = submitEventDirect(ctx, s)
		return err
	})
	return res, err
}

func newEventNewCmd(app *App) *cobra.Command {
	var edits eventEdits

	cmd := &cobra.Command{
		Use:   "new <plan-id>",
		Short: "Record a new event for a plan",
		Long: "Record a new event for a plan.\n\n" +
			"In a terminal without flags this opens the step-by-step wizard.\n" +
			"Otherwise fields come from --file and --set and the event is\n" +
			"validated and submitted in one go.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID(args[0], "plan")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			n := newCLINotifier(out)
			s := editor.NewEventSession(app.Backend, app.Backend, n)
			s.Start(planID)

			res, err := finishEvent(cmd.Context(), app, out, cmd.ErrOrStderr(), s, n, &edits)
			if errors.Is(err, errWizardCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("event #%d", res.ID)))
			return nil
		},
	}

	edits.register(cmd)
	return cmd
}

func newEventEditCmd(app *App) *cobra.Command {
	var edits eventEdits

	cmd := &cobra.Command{
		Use:   "edit <event-id>",
		Short: "Edit a recorded event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "event")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			n := newCLINotifier(out)
			s := editor.NewEventSession(app.Backend, app.Backend, n)
			err = withSpinner(app, cmd.ErrOrStderr(), "Loading event...", func() error {
				return s.Load(ctx, id)
			})
			if err != nil {
				return err
			}

			_, err = finishEvent(ctx, app, out, cmd.ErrOrStderr(), s, n, &edits)
			if errors.Is(err, errWizardCancelled) {
				return nil
			}
			return err
		},
	}

	edits.register(cmd)
	return cmd
}

func newEventShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show an event with its financing totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "event")
			if err != nil {
				return err
			}
			p, err := app.Backend.EventSnapshot(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading event %d: %w", id, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEvent(assemble.RestoreEvent(*p), p.Attachments))
			return nil
		},
	}
}

func newEventListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <plan-id>",
		Short: "List the events of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID(args[0], "plan")
			if err != nil {
				return err
			}
			events, err := app.Events.ListByPlan(cmd.Context(), planID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventList(events))
			return nil
		},
	}
}

func newEventDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "event")
			if err != nil {
				return err
			}
			if err := app.Events.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted event #%d\n", formatter.StyleGreen.Render("✔"), id)
			return nil
		},
	}
}
