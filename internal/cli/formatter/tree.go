package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one row of a plan tree display.
type TreeItem struct {
	Title     string
	Path      string // dotted data-tree path; "" hides the label
	Level     int
	IsLast    bool
	Done      bool
	Selected  bool
	Collapsed bool
	Detail    string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "

	cursorMark = "› "
	foldMark   = "▸ "
)

// RenderTree renders items as an indented tree using box-drawing
// connectors. Completed items get a green ✔, the selected row gets a
// cursor and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		if title == "" {
			title = Dim("(untitled)")
		}
		if item.Path != "" {
			title = StyleDim.Render(item.Path+" ") + title
		}

		marker := "  "
		if item.Selected {
			marker = StyleYellowBold.Render(cursorMark)
			title = StyleYellowBold.Render(title)
		}
		status := ""
		if item.Collapsed {
			status = StyleDim.Render(foldMark)
		}
		if item.Done {
			status += StyleGreen.Render("✔ ")
		}

		content := marker + prefix + status + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge == "" {
			b.WriteString(li.content + "\n")
			continue
		}
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
	}
	return b.String()
}
