package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/planner/internal/cli/formatter"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/tree"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// planLister is implemented by backends that can list plans.
type planLister interface {
	ListPlans(ctx context.Context) ([]contract.PlanSummary, error)
}

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage strategic plans",
	}

	cmd.AddCommand(
		newPlanNewCmd(app),
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanAddCmd(app),
		newPlanSetCmd(app),
		newPlanRmCmd(app),
		newPlanEditCmd(app),
		newPlanDeleteCmd(app),
	)

	return cmd
}

// openPlan loads a plan into a fresh editing session.
func openPlan(ctx context.Context, app *App, out io.Writer, arg string) (*editor.PlanSession, error) {
	id, err := parseID(arg, "plan")
	if err != nil {
		return nil, err
	}
	s := editor.NewPlanSession(app.Backend, app.Backend, nil)
	err = withSpinner(app, out, "Loading plan...", func() error {
		return s.Load(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func submitPlan(ctx context.Context, app *App, out io.Writer, s *editor.PlanSession) (*contract.SaveResult, error) {
	var res *contract.SaveResult
	err := withSpinner(app, out, "Saving plan...", func() error {
		var err error
		res, err = s.Submit(ctx)
		return err
	})
	return res, err
}

func newPlanNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new <title>",
		Short: "Create an empty plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			s := editor.NewPlanSession(app.Backend, app.Backend, nil)
			s.Start(0, args[0])
			res, err := submitPlan(ctx, app, cmd.ErrOrStderr(), s)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Created plan %s %s\n",
				formatter.StyleGreen.Render("✔"), formatter.Bold(args[0]), formatter.Dim(fmt.Sprintf("#%d", res.ID)))
			return nil
		},
	}
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var plans []contract.PlanSummary
			var err error
			if l, ok := app.Backend.(planLister); ok {
				plans, err = l.ListPlans(cmd.Context())
			} else {
				plans, err = app.Plans.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanList(plans))
			return nil
		},
	}
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan tree with its budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s, err := openPlan(cmd.Context(), app, cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatPlan(s.PlanID(), s.Title(), s.Visible(), s.Budget()))
			return nil
		},
	}
}

func newPlanAddCmd(app *App) *cobra.Command {
	var under pathValue
	var objective string

	cmd := &cobra.Command{
		Use:   "add <plan-id> <label>",
		Short: "Add an area, or a child under --under",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			s, err := openPlan(ctx, app, cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}

			var path tree.Path
			if parent := under.Path(); parent != nil {
				if _, err := liveNode(s.Forest(), parent); err != nil {
					return err
				}
				path, err = s.AddChild(parent, args[1])
			} else {
				path, err = s.AddArea(args[1], objective)
			}
			if err != nil {
				return err
			}

			if _, err := submitPlan(ctx, app, cmd.ErrOrStderr(), s); err != nil {
				return err
			}
			n, _ := tree.Resolve(s.Forest(), path)
			fmt.Fprintf(out, "%s Added %s %s at %s\n",
				formatter.StyleGreen.Render("✔"), n.Data.Level, formatter.Bold(args[1]), path)
			return nil
		},
	}

	cmd.Flags().Var(&under, "under", "Path of the parent node (e.g. 0.1)")
	cmd.Flags().StringVar(&objective, "objective", "", "Objective of a new area")

	return cmd
}

func newPlanSetCmd(app *App) *cobra.Command {
	var at pathValue

	cmd := &cobra.Command{
		Use:   "set <plan-id> <field> <value>",
		Short: "Set a field of the node at --path",
		Long: "Set a field of the node at --path.\n\n" +
			"Areas: name, objective. Strategies: description, completion,\n" +
			"assigned_budget, executed_budget. Interventions: name.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			s, err := openPlan(ctx, app, cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}
			if _, err := liveNode(s.Forest(), at.Path()); err != nil {
				return err
			}
			if err := s.SetField(at.Path(), args[1], args[2]); err != nil {
				return err
			}
			if _, err := submitPlan(ctx, app, cmd.ErrOrStderr(), s); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Set %s at %s\n",
				formatter.StyleGreen.Render("✔"), formatter.Bold(args[1]), at.Path())
			return nil
		},
	}

	cmd.Flags().Var(&at, "path", "Path of the node to edit (e.g. 0.1)")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func newPlanRmCmd(app *App) *cobra.Command {
	var at pathValue

	cmd := &cobra.Command{
		Use:   "rm <plan-id>",
		Short: "Delete the node at --path and everything beneath it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			s, err := openPlan(ctx, app, cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}
			n, err := liveNode(s.Forest(), at.Path())
			if err != nil {
				return err
			}
			nested := len(tree.Visible(n.Children))
			if err := s.Delete(at.Path()); err != nil {
				return err
			}
			if _, err := submitPlan(ctx, app, cmd.ErrOrStderr(), s); err != nil {
				return err
			}
			msg := fmt.Sprintf("%s Removed %s %s", formatter.StyleGreen.Render("✔"), n.Data.Level, formatter.Bold(n.Data.Label()))
			if nested > 0 {
				msg += formatter.Dim(fmt.Sprintf(" and %d nested", nested))
			}
			fmt.Fprintln(out, msg)
			return nil
		},
	}

	cmd.Flags().Var(&at, "path", "Path of the node to delete (e.g. 0.1)")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func newPlanEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <plan-id>",
		Short: "Edit a plan tree interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("plan edit needs a terminal; use plan add, set or rm instead")
			}
			ctx := cmd.Context()
			s, err := openPlan(ctx, app, cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}
			final, err := app.runTUI(newPlanEditor(ctx, s))
			if err != nil {
				return err
			}
			if ed, ok := final.(*planEditor); ok && ed.dirty {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleYellow.Render("Unsaved changes were discarded."))
			}
			return nil
		},
	}
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Permanently delete a plan and its events from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "plan")
			if err != nil {
				return err
			}
			if !yes {
				if !app.interactive() {
					return errors.New("refusing to delete without --yes")
				}
				confirmed := false
				err := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete plan #%d and all its events?", id)).
						Value(&confirmed),
				)).WithTheme(plannerHuhTheme()).WithShowHelp(false).RunWithContext(cmd.Context())
				if err != nil && !errors.Is(err, huh.ErrUserAborted) {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
					return nil
				}
			}
			if err := app.Plans.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted plan #%d\n", formatter.StyleGreen.Render("✔"), id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}
