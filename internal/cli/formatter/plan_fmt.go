package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/tree"
)

// PlanTreeItems maps visible plan rows to tree rows. cursor is the index
// of the selected row, or -1.
func PlanTreeItems(rows []tree.VisibleNode[domain.PlanItem], cursor int) []TreeItem {
	items := make([]TreeItem, len(rows))
	for i, r := range rows {
		item := r.Node.Data
		items[i] = TreeItem{
			Title:     item.Label(),
			Path:      r.Path.String(),
			Level:     r.Depth,
			IsLast:    r.Last,
			Selected:  i == cursor,
			Collapsed: !item.Expanded && len(r.Node.Children) > 0,
			Detail:    planItemDetail(item),
		}
		if item.Level == domain.LevelStrategy {
			items[i].Done = item.CompletionPct >= 100
		}
	}
	return items
}

func planItemDetail(item domain.PlanItem) string {
	switch item.Level {
	case domain.LevelStrategy:
		return fmt.Sprintf("%s · %s / %s", FormatPercent(item.CompletionPct),
			FormatAmount(item.ExecutedBudget), FormatAmount(item.AssignedBudget))
	case domain.LevelArea:
		if item.Objective != "" {
			return Truncate(item.Objective, 32)
		}
	}
	return ""
}

// FormatBudget renders the budget summary line block of a plan.
func FormatBudget(b aggregate.PlanBudget) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s  %s\n", Dim("Assigned "), Bold(FormatAmount(b.Assigned))))
	sb.WriteString(fmt.Sprintf("%s  %s\n", Dim("Executed "), Bold(FormatAmount(b.Executed))))
	sb.WriteString(fmt.Sprintf("%s  %s\n", Dim("Execution"), RenderProgress(b.ExecutionRate(), 20)))
	sb.WriteString(Dim(fmt.Sprintf("%d strategies · %d interventions", b.Strategies, b.Interventions)))
	return sb.String()
}

// FormatPlan renders a plan with its tree and budget summary.
func FormatPlan(planID int64, title string, rows []tree.VisibleNode[domain.PlanItem], budget aggregate.PlanBudget) string {
	var b strings.Builder
	heading := title
	if heading == "" {
		heading = "Untitled plan"
	}
	if planID > 0 {
		heading = fmt.Sprintf("%s (#%d)", heading, planID)
	}
	b.WriteString(Header(heading))
	b.WriteString("\n\n")

	if len(rows) == 0 {
		b.WriteString(Dim("No areas yet. Add one with: planner plan add <plan-id> --area <name>"))
		b.WriteString("\n")
	} else {
		b.WriteString(RenderTree(PlanTreeItems(rows, -1)))
	}
	b.WriteString("\n")
	b.WriteString(RenderBox("Budget", FormatBudget(budget)))
	b.WriteString("\n")
	return b.String()
}

// FormatPlanList renders the plan listing.
func FormatPlanList(plans []contract.PlanSummary) string {
	if len(plans) == 0 {
		return Dim("No plans yet. Create one with: planner plan new <title>") + "\n"
	}
	rows := make([][]string, len(plans))
	for i, p := range plans {
		rows[i] = []string{
			StyleDim.Render("#" + strconv.FormatInt(p.PlanID, 10)),
			p.Title,
			strconv.Itoa(p.AreaCount),
		}
	}
	return RenderTable([]string{"ID", "TITLE", "AREAS"}, rows, 2)
}
