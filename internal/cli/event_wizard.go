package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/planner/internal/cli/formatter"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/validate"
	"github.com/alexanderramin/planner/internal/wizard"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var errWizardCancelled = errors.New("event wizard cancelled")

// wizardAction is the navigation chosen at the end of a step.
type wizardAction int

const (
	actionNext wizardAction = iota
	actionBack
	actionQuit
)

// stepPrompter collects input for one wizard step, writing it into the
// session, and returns where the user wants to go next.
type stepPrompter interface {
	PromptStep(ctx context.Context, s *editor.EventSession, step validate.Step) (wizardAction, error)
}

// runEventWizard drives the session with p until the event is saved or
// the user leaves. A blocked submit jumps back to the first invalid step.
func runEventWizard(ctx context.Context, out io.Writer, s *editor.EventSession, n *cliNotifier, p stepPrompter) (*contract.SaveResult, error) {
	for {
		step := s.Step()
		fmt.Fprintln(out, formatter.StepIndicator(s.Steps(), step.Number, s.Furthest()))

		action, err := p.PromptStep(ctx, s, step)
		if err != nil {
			return nil, err
		}

		switch action {
		case actionQuit:
			n.Cancel()
			return nil, errWizardCancelled
		case actionBack:
			if s.Previous() == wizard.Cancelled {
				return nil, errWizardCancelled
			}
		case actionNext:
			if !s.IsLast() {
				s.Next()
				continue
			}
			res, err := s.Submit(ctx)
			switch {
			case err == nil:
				return res, nil
			case errors.Is(err, editor.ErrNotSubmitted):
				if invalid := n.takeInvalidStep(); invalid > 0 {
					s.GoToStep(invalid)
				}
			case errors.Is(err, editor.ErrSubmitInFlight), errors.Is(err, editor.ErrNotLoaded):
				return nil, err
			}
			// A failed submit was reported by the notifier; stay and retry.
		}
	}
}

// submitEventDirect walks every step without prompting and submits.
func submitEventDirect(ctx context.Context, s *editor.EventSession) (*contract.SaveResult, error) {
	for !s.IsLast() {
		if out := s.Next(); out != wizard.Moved {
			step := s.Step()
			return nil, fmt.Errorf("%w: step %d (%s) is incomplete", editor.ErrNotSubmitted, step.Number, step.Title)
		}
	}
	return s.Submit(ctx)
}

func plannerHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// huhPrompter renders each wizard step as a huh form. Field validators
// come from the wizard rules so huh rejects bad input inline.
type huhPrompter struct {
	rules *validate.Validator
}

func newHuhPrompter() *huhPrompter {
	return &huhPrompter{rules: wizard.EventValidator()}
}

func (p *huhPrompter) run(ctx context.Context, groups ...*huh.Group) error {
	return huh.NewForm(groups...).WithTheme(plannerHuhTheme()).WithShowHelp(false).RunWithContext(ctx)
}

func (p *huhPrompter) input(title, pattern string, value *string) *huh.Input {
	in := huh.NewInput().Title(title).Value(value)
	if rule := p.rules.FieldRule(pattern); rule != nil {
		in = in.Validate(rule)
	}
	return in
}

// Menu choices shared by the row-editing steps.
const (
	choiceNext    = "next"
	choiceBack    = "back"
	choiceQuit    = "quit"
	choiceAdd     = "add"
	choiceAddAlt  = "add-alt"
	choiceRemove  = "remove"
	choiceToggle  = "toggle"
	choiceAttach  = "attach"
	choiceConfirm = "submit"
)

func navAction(choice string) (wizardAction, bool) {
	switch choice {
	case choiceNext, choiceConfirm:
		return actionNext, true
	case choiceBack:
		return actionBack, true
	case choiceQuit:
		return actionQuit, true
	}
	return 0, false
}

func (p *huhPrompter) PromptStep(ctx context.Context, s *editor.EventSession, step validate.Step) (wizardAction, error) {
	var (
		action wizardAction
		err    error
	)
	switch step.Number {
	case wizard.StepGeneral:
		action, err = p.general(ctx, s)
	case wizard.StepFinancing:
		action, err = p.financing(ctx, s)
	case wizard.StepSchedule:
		action, err = p.schedule(ctx, s)
	default:
		action, err = p.review(ctx, s)
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return actionQuit, nil
	}
	return action, err
}

func (p *huhPrompter) general(ctx context.Context, s *editor.EventSession) (wizardAction, error) {
	form := s.Form()
	fields := []struct {
		title, path string
		value       string
	}{
		{"Event name", domain.EventName, form.Name},
		{"Responsible", domain.EventResponsible, form.Responsible},
		{"Objective", domain.EventObjective, form.Objective},
		{"Location", domain.EventLocation, form.Location},
		{"Start date (YYYY-MM-DD)", domain.EventStartDate, form.StartDate},
		{"End date (YYYY-MM-DD)", domain.EventEndDate, form.EndDate},
	}
	inputs := make([]huh.Field, 0, len(fields))
	for i := range fields {
		inputs = append(inputs, p.input(fields[i].title, fields[i].path, &fields[i].value))
	}

	choice := choiceNext
	nav := huh.NewSelect[string]().Title("Continue").Options(
		huh.NewOption("Next", choiceNext),
		huh.NewOption("Cancel", choiceBack),
	).Value(&choice)

	if err := p.run(ctx, huh.NewGroup(inputs...), huh.NewGroup(nav)); err != nil {
		return actionQuit, err
	}
	for _, f := range fields {
		if err := s.Set(f.path, f.value); err != nil {
			return actionQuit, err
		}
	}
	action, _ := navAction(choice)
	return action, nil
}

// financing loops over row edits until the user navigates away.
func (p *huhPrompter) financing(ctx context.Context, s *editor.EventSession) (wizardAction, error) {
	for {
		form := s.Form()
		var groups []*huh.Group
		bindings := map[string]*string{}
		for _, section := range []string{domain.SectionFinancing, domain.SectionContributions} {
			rows := form.Financing
			label := "Institutional"
			if section == domain.SectionContributions {
				rows = form.Contributions
				label = "Contribution"
			}
			for _, r := range rows.Visible() {
				if r.Row.Disabled {
					continue
				}
				src := domain.RowPath(section, r.Index, domain.RowSource)
				amt := domain.RowPath(section, r.Index, domain.RowAmount)
				sv, av := r.Row.Fields.Source, r.Row.Fields.Amount
				bindings[src], bindings[amt] = &sv, &av
				groups = append(groups, huh.NewGroup(
					p.input(fmt.Sprintf("%s #%d source", label, r.Index), section+".*."+domain.RowSource, &sv),
					p.input(fmt.Sprintf("%s #%d amount", label, r.Index), section+".*."+domain.RowAmount, &av),
				))
			}
		}

		totals := s.Totals()
		choice := choiceNext
		groups = append(groups, huh.NewGroup(
			huh.NewNote().Title("Totals").Description(formatter.FormatTotals(totals)),
			huh.NewSelect[string]().Title("Continue").Options(
				huh.NewOption("Next", choiceNext),
				huh.NewOption("Add institutional row", choiceAdd),
				huh.NewOption("Add contribution", choiceAddAlt),
				huh.NewOption("Remove a row", choiceRemove),
				huh.NewOption("Enable or disable a row", choiceToggle),
				huh.NewOption("Back", choiceBack),
			).Value(&choice),
		))

		if err := p.run(ctx, groups...); err != nil {
			return actionQuit, err
		}
		for path, v := range bindings {
			if err := s.Set(path, *v); err != nil {
				return actionQuit, err
			}
		}

		if action, ok := navAction(choice); ok {
			return action, nil
		}
		if err := p.editRows(ctx, s, choice, domain.SectionFinancing, domain.SectionContributions); err != nil {
			return actionQuit, err
		}
	}
}

func (p *huhPrompter) schedule(ctx context.Context, s *editor.EventSession) (wizardAction, error) {
	for {
		form := s.Form()
		var groups []*huh.Group
		bindings := map[string]*string{}
		for _, r := range form.Dates.Visible() {
			if r.Row.Disabled {
				continue
			}
			dp := domain.RowPath(domain.SectionDates, r.Index, domain.RowDate)
			np := domain.RowPath(domain.SectionDates, r.Index, domain.RowNote)
			dv, nv := r.Row.Fields.Date, r.Row.Fields.Note
			bindings[dp], bindings[np] = &dv, &nv
			groups = append(groups, huh.NewGroup(
				p.input(fmt.Sprintf("Date #%d (YYYY-MM-DD)", r.Index), "dates.*."+domain.RowDate, &dv),
				huh.NewInput().Title(fmt.Sprintf("Note #%d", r.Index)).Value(&nv),
			))
		}

		choice := choiceNext
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().Title("Continue").Options(
				huh.NewOption("Next", choiceNext),
				huh.NewOption("Add a date", choiceAdd),
				huh.NewOption("Remove a date", choiceRemove),
				huh.NewOption("Enable or disable a date", choiceToggle),
				huh.NewOption("Back", choiceBack),
			).Value(&choice),
		))

		if err := p.run(ctx, groups...); err != nil {
			return actionQuit, err
		}
		for path, v := range bindings {
			if err := s.Set(path, *v); err != nil {
				return actionQuit, err
			}
		}

		if action, ok := navAction(choice); ok {
			return action, nil
		}
		if err := p.editRows(ctx, s, choice, domain.SectionDates, ""); err != nil {
			return actionQuit, err
		}
	}
}

// editRows applies an add, remove or toggle choice. alt is the section
// used by choiceAddAlt.
func (p *huhPrompter) editRows(ctx context.Context, s *editor.EventSession, choice, section, alt string) error {
	switch choice {
	case choiceAdd, choiceAddAlt:
		target := section
		if choice == choiceAddAlt {
			target = alt
		}
		return s.Edit(func(f domain.EventForm) domain.EventForm {
			switch target {
			case domain.SectionFinancing:
				f.Financing, _ = f.Financing.Append(domain.FinancingRow{})
			case domain.SectionContributions:
				f.Contributions, _ = f.Contributions.Append(domain.FinancingRow{})
			case domain.SectionDates:
				f.Dates, _ = f.Dates.Append(domain.ExecutionDate{})
			}
			return f
		})
	}

	options := rowOptions(s.Form(), section, alt, choice == choiceToggle)
	if len(options) == 0 {
		return nil
	}
	var ref string
	err := p.run(ctx, huh.NewGroup(
		huh.NewSelect[string]().Title("Which row?").Options(options...).Value(&ref),
	))
	if err != nil {
		return err
	}

	op := rowRemove
	if choice == choiceToggle {
		op = rowEnable
		if isRowEnabled(s.Form(), ref) {
			op = rowDisable
		}
	}
	return editForm(s, func(f domain.EventForm) (domain.EventForm, error) {
		return applyRowOp(f, ref, op)
	})
}

func rowOptions(f domain.EventForm, section, alt string, includeDisabled bool) []huh.Option[string] {
	var out []huh.Option[string]
	for _, sec := range []string{section, alt} {
		switch sec {
		case domain.SectionFinancing, domain.SectionContributions:
			rows := f.Financing
			if sec == domain.SectionContributions {
				rows = f.Contributions
			}
			for _, r := range rows.Visible() {
				if r.Row.Disabled && !includeDisabled {
					continue
				}
				label := fmt.Sprintf("%s.%d  %s %s", sec, r.Index, r.Row.Fields.Source, r.Row.Fields.Amount)
				out = append(out, huh.NewOption(disabledSuffix(label, r.Row.Disabled), fmt.Sprintf("%s.%d", sec, r.Index)))
			}
		case domain.SectionDates:
			for _, r := range f.Dates.Visible() {
				if r.Row.Disabled && !includeDisabled {
					continue
				}
				label := fmt.Sprintf("dates.%d  %s %s", r.Index, r.Row.Fields.Date, r.Row.Fields.Note)
				out = append(out, huh.NewOption(disabledSuffix(label, r.Row.Disabled), fmt.Sprintf("dates.%d", r.Index)))
			}
		}
	}
	return out
}

func disabledSuffix(label string, disabled bool) string {
	label = strings.TrimSpace(label)
	if disabled {
		return label + " (disabled)"
	}
	return label
}

func isRowEnabled(f domain.EventForm, ref string) bool {
	section, _, _ := strings.Cut(ref, ".")
	for _, idx := range f.ActiveRows(section) {
		if fmt.Sprintf("%s.%d", section, idx) == ref {
			return true
		}
	}
	return false
}

func (p *huhPrompter) review(ctx context.Context, s *editor.EventSession) (wizardAction, error) {
	for {
		form := s.Form()
		choice := choiceConfirm
		err := p.run(ctx, huh.NewGroup(
			huh.NewNote().Title("Review").Description(formatter.FormatEvent(form, nil)),
			huh.NewSelect[string]().Title("Ready?").Options(
				huh.NewOption("Submit", choiceConfirm),
				huh.NewOption("Attach a file", choiceAttach),
				huh.NewOption("Back", choiceBack),
				huh.NewOption("Quit without saving", choiceQuit),
			).Value(&choice),
		))
		if err != nil {
			return actionQuit, err
		}
		if action, ok := navAction(choice); ok {
			return action, nil
		}

		var path string
		err = p.run(ctx, huh.NewGroup(
			huh.NewInput().Title("File path").Value(&path).Validate(func(v string) error {
				_, err := newAttachment(strings.TrimSpace(v))
				return err
			}),
		))
		if err != nil {
			return actionQuit, err
		}
		a, err := newAttachment(strings.TrimSpace(path))
		if err != nil {
			return actionQuit, err
		}
		if err := s.Edit(func(f domain.EventForm) domain.EventForm {
			f.Attachments = append(f.Attachments, a)
			return f
		}); err != nil {
			return actionQuit, err
		}
	}
}
