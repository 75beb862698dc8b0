package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/collection"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/validate"
)

// StepIndicator renders the wizard progress line, e.g.
// "✔ General › ● Financing › ○ Execution dates › ○ Review". Steps up to
// furthest count as visited even after moving back.
func StepIndicator(steps []validate.Step, current, furthest int) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		label := fmt.Sprintf("%d %s", s.Number, s.Title)
		switch {
		case s.Number == current:
			parts[i] = StyleYellowBold.Render("● " + label)
		case s.Number <= furthest:
			parts[i] = StyleGreen.Render("✔ " + label)
		default:
			parts[i] = StyleDim.Render("○ " + label)
		}
	}
	return strings.Join(parts, Dim(" › "))
}

// FormatErrors lists field errors in path order.
func FormatErrors(errs validate.Errors) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range errs.Paths() {
		b.WriteString(StyleRed.Render("✖ "+p) + Dim(": ") + errs[p] + "\n")
	}
	return b.String()
}

// FormatFinancingRows renders a financing section as a table. Disabled
// rows are kept and marked so they can be re-enabled.
func FormatFinancingRows(rows collection.Collection[domain.FinancingRow]) string {
	visible := rows.Visible()
	if len(visible) == 0 {
		return Dim("  none") + "\n"
	}
	out := make([][]string, len(visible))
	for i, r := range visible {
		amount := r.Row.Fields.Amount
		if amount != "" {
			amount = FormatAmount(aggregate.ParseAmount(amount))
		}
		out[i] = []string{
			strconv.Itoa(r.Index),
			OrDash(r.Row.Fields.Source),
			OrDash(amount),
			rowState(r.Row.Disabled),
		}
	}
	return RenderTable([]string{"#", "SOURCE", "AMOUNT", ""}, out, 2)
}

// FormatDateRows renders the execution dates.
func FormatDateRows(rows collection.Collection[domain.ExecutionDate]) string {
	visible := rows.Visible()
	if len(visible) == 0 {
		return Dim("  none") + "\n"
	}
	out := make([][]string, len(visible))
	for i, r := range visible {
		out[i] = []string{
			strconv.Itoa(r.Index),
			OrDash(r.Row.Fields.Date),
			OrDash(r.Row.Fields.Note),
			rowState(r.Row.Disabled),
		}
	}
	return RenderTable([]string{"#", "DATE", "NOTE", ""}, out)
}

func rowState(disabled bool) string {
	if disabled {
		return StyleDim.Render("disabled")
	}
	return ""
}

// FormatTotals renders the financing totals block.
func FormatTotals(t aggregate.EventTotals) string {
	rows := [][]string{
		{"Institutional", FormatAmount(t.Financing)},
		{"Contributions", FormatAmount(t.Contributions)},
		{Bold("Total cost"), Bold(FormatAmount(t.Total))},
	}
	return RenderTable([]string{"SECTION", "AMOUNT"}, rows, 1)
}

// FormatEvent renders a full event record. stored lists attachment names
// already held by the backend.
func FormatEvent(form domain.EventForm, stored []string) string {
	var b strings.Builder
	heading := form.Name
	if heading == "" {
		heading = "New event"
	}
	if form.ID != nil {
		heading = fmt.Sprintf("%s (#%d)", heading, *form.ID)
	}
	b.WriteString(Header(heading))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim(fmt.Sprintf("%-12s", label)), OrDash(value)))
	}
	field("Responsible", form.Responsible)
	field("Objective", form.Objective)
	field("Location", form.Location)
	field("Window", strings.Trim(form.StartDate+" → "+form.EndDate, " →"))
	if form.InterventionID != nil {
		field("Intervention", "#"+strconv.FormatInt(*form.InterventionID, 10))
	}

	b.WriteString("\n" + Bold("Institutional financing") + "\n")
	b.WriteString(FormatFinancingRows(form.Financing))
	b.WriteString("\n" + Bold("External contributions") + "\n")
	b.WriteString(FormatFinancingRows(form.Contributions))
	b.WriteString("\n" + Bold("Execution dates") + "\n")
	b.WriteString(FormatDateRows(form.Dates))

	names := append([]string(nil), stored...)
	for _, a := range form.Attachments {
		names = append(names, a.Name+Dim(" (pending upload)"))
	}
	if len(names) > 0 {
		b.WriteString("\n" + Bold("Attachments") + "\n")
		for _, n := range names {
			b.WriteString("  " + n + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(FormatTotals(aggregate.Event(form)))
	return b.String()
}

// FormatEventList renders the events of a plan.
func FormatEventList(events []contract.EventSummary) string {
	if len(events) == 0 {
		return Dim("No events recorded for this plan.") + "\n"
	}
	rows := make([][]string, len(events))
	for i, e := range events {
		rows[i] = []string{
			StyleDim.Render("#" + strconv.FormatInt(e.ID, 10)),
			e.Name,
			OrDash(e.StartDate),
			FormatAmount(e.TotalCost),
		}
	}
	return RenderTable([]string{"ID", "EVENT", "START", "TOTAL"}, rows, 3)
}
