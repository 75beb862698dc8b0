package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/planner/internal/cli/formatter"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/editor"
	"github.com/alexanderramin/planner/internal/tree"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type editorMode int

const (
	modeBrowse editorMode = iota
	modeEditField
	modeAddNode
)

type editorKeys struct {
	Up       key.Binding
	Down     key.Binding
	Fold     key.Binding
	Edit     key.Binding
	AddChild key.Binding
	AddArea  key.Binding
	Delete   key.Binding
	Save     key.Binding
	Quit     key.Binding

	Commit    key.Binding
	NextField key.Binding
	Cancel    key.Binding
}

func newEditorKeys() editorKeys {
	return editorKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Fold:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "fold")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit")),
		AddChild: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		AddArea:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add area")),
		Delete:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Save:     key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),

		Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// planSavedMsg reports the result of a background save.
type planSavedMsg struct {
	id  int64
	err error
}

// planEditor is the full-screen tree editor. Edits go straight to the
// session; nothing reaches the backend until the user saves.
type planEditor struct {
	ctx   context.Context
	s     *editor.PlanSession
	keys  editorKeys
	help  help.Model
	input textinput.Model

	mode   editorMode
	cursor int
	// target is the node being edited, or the parent of the node being
	// added (nil for a new area).
	target tree.Path
	field  int

	dirty  bool
	saving bool
	status string
	err    error
}

func newPlanEditor(ctx context.Context, s *editor.PlanSession) *planEditor {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Cursor.SetMode(cursor.CursorStatic)
	return &planEditor{
		ctx:   ctx,
		s:     s,
		keys:  newEditorKeys(),
		help:  help.New(),
		input: ti,
	}
}

func (m *planEditor) Init() tea.Cmd { return nil }

// rows is the visible tree with collapsed subtrees folded away.
func (m *planEditor) rows() []tree.VisibleNode[domain.PlanItem] {
	all := m.s.Visible()
	out := make([]tree.VisibleNode[domain.PlanItem], 0, len(all))
	foldDepth := -1
	for _, r := range all {
		if foldDepth >= 0 && r.Depth > foldDepth {
			continue
		}
		foldDepth = -1
		out = append(out, r)
		if !r.Node.Data.Expanded && len(r.Node.Children) > 0 {
			foldDepth = r.Depth
		}
	}
	return out
}

func (m *planEditor) selected() (tree.VisibleNode[domain.PlanItem], bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return tree.VisibleNode[domain.PlanItem]{}, false
	}
	return rows[m.cursor], true
}

func (m *planEditor) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *planEditor) moveTo(path tree.Path) {
	for i, r := range m.rows() {
		if r.Path.String() == path.String() {
			m.cursor = i
			return
		}
	}
}

func (m *planEditor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case planSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.dirty = false
		m.status = fmt.Sprintf("Saved plan #%d", msg.id)
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *planEditor) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Fold):
		if row, ok := m.selected(); ok {
			m.s.ToggleExpanded(row.Path)
		}

	case key.Matches(msg, m.keys.Edit):
		if row, ok := m.selected(); ok {
			m.beginEdit(row.Path, 0)
		}

	case key.Matches(msg, m.keys.AddChild):
		row, ok := m.selected()
		if !ok {
			m.beginAdd(nil)
			break
		}
		if row.Node.Data.Level.Child() == "" {
			m.err = fmt.Errorf("an intervention cannot have children")
			break
		}
		m.beginAdd(row.Path)

	case key.Matches(msg, m.keys.AddArea):
		m.beginAdd(nil)

	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selected(); ok {
			if err := m.s.Delete(row.Path); err != nil {
				m.err = err
				break
			}
			m.dirty = true
			m.status = fmt.Sprintf("Deleted %s %q", row.Node.Data.Level, row.Node.Data.Label())
			if parent := row.Path.Parent(); parent != nil {
				m.moveTo(parent)
			}
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.Save):
		if m.saving {
			break
		}
		m.saving = true
		m.status = "Saving..."
		return m, m.save()
	}
	return m, nil
}

// save submits the tree and reloads it so new nodes pick up their IDs.
func (m *planEditor) save() tea.Cmd {
	ctx, s := m.ctx, m.s
	return func() tea.Msg {
		res, err := s.Submit(ctx)
		if err != nil {
			return planSavedMsg{err: err}
		}
		if err := s.Load(ctx, res.ID); err != nil {
			return planSavedMsg{err: err}
		}
		return planSavedMsg{id: res.ID}
	}
}

func (m *planEditor) fieldsAt(path tree.Path) []string {
	n, ok := tree.Resolve(m.s.Forest(), path)
	if !ok {
		return nil
	}
	return n.Data.Level.Fields()
}

func (m *planEditor) beginEdit(path tree.Path, field int) {
	n, ok := tree.Resolve(m.s.Forest(), path)
	fields := m.fieldsAt(path)
	if !ok || len(fields) == 0 {
		return
	}
	field %= len(fields)
	value, _ := n.Data.Get(fields[field])

	m.mode = modeEditField
	m.target = path
	m.field = field
	m.input.Prompt = fields[field] + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *planEditor) beginAdd(parent tree.Path) {
	level := domain.LevelAt(len(parent))
	m.mode = modeAddNode
	m.target = parent
	m.input.Prompt = fmt.Sprintf("new %s: ", level)
	m.input.SetValue("")
	m.input.Focus()
}

func (m *planEditor) endInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
}

func (m *planEditor) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), msg.Type == tea.KeyCtrlC:
		m.endInput()
		m.err = nil
		return m, nil

	case key.Matches(msg, m.keys.Commit), m.mode == modeEditField && key.Matches(msg, m.keys.NextField):
		if !m.commit() {
			return m, nil
		}
		if m.mode == modeEditField && key.Matches(msg, m.keys.NextField) {
			m.beginEdit(m.target, m.field+1)
			return m, nil
		}
		m.endInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commit applies the input. It reports false when the value is rejected,
// leaving the input open with the error shown.
func (m *planEditor) commit() bool {
	value := m.input.Value()
	switch m.mode {
	case modeEditField:
		fields := m.fieldsAt(m.target)
		if len(fields) == 0 {
			return true
		}
		if err := m.s.SetField(m.target, fields[m.field], value); err != nil {
			m.err = err
			return false
		}
		m.err = nil
		m.dirty = true

	case modeAddNode:
		if strings.TrimSpace(value) == "" {
			m.err = fmt.Errorf("enter a name")
			return false
		}
		var (
			path tree.Path
			err  error
		)
		if m.target == nil {
			path, err = m.s.AddArea(value, "")
		} else {
			if n, ok := tree.Resolve(m.s.Forest(), m.target); ok && !n.Data.Expanded {
				m.s.ToggleExpanded(m.target)
			}
			path, err = m.s.AddChild(m.target, value)
		}
		if err != nil {
			m.err = err
			return false
		}
		m.err = nil
		m.dirty = true
		if path != nil {
			m.moveTo(path)
		}
	}
	return true
}

func (m *planEditor) helpKeys() []key.Binding {
	if m.mode == modeBrowse {
		return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Edit, m.keys.AddChild, m.keys.AddArea,
			m.keys.Delete, m.keys.Fold, m.keys.Save, m.keys.Quit}
	}
	if m.mode == modeEditField {
		return []key.Binding{m.keys.Commit, m.keys.NextField, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Commit, m.keys.Cancel}
}

func (m *planEditor) View() string {
	var b strings.Builder

	title := m.s.Title()
	if title == "" {
		title = "Untitled plan"
	}
	if m.dirty {
		title += " *"
	}
	b.WriteString(formatter.Header(title))
	b.WriteString("\n\n")

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString(formatter.Dim("Empty plan. Press A to add an area."))
		b.WriteString("\n")
	} else {
		b.WriteString(formatter.RenderTree(formatter.PlanTreeItems(rows, m.cursor)))
	}

	if row, ok := m.selected(); ok {
		b.WriteString("\n" + selectedLine(row.Node.Data) + "\n")
	}

	budget := m.s.Budget()
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s  %s %s  %s\n",
		formatter.Dim("assigned"), formatter.FormatAmount(budget.Assigned),
		formatter.Dim("executed"), formatter.FormatAmount(budget.Executed),
		formatter.RenderProgress(budget.ExecutionRate(), 12)))

	if m.mode != modeBrowse {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + formatter.StyleRed.Render("✖ "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + formatter.StyleGreen.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

// selectedLine describes the node under the cursor.
func selectedLine(item domain.PlanItem) string {
	line := formatter.LevelBadge(item.Level) + " " + formatter.Bold(formatter.OrDash(item.Label()))
	if item.Level == domain.LevelStrategy {
		line += "  " + formatter.CompletionStyle(item.CompletionPct).Render(formatter.FormatPercent(item.CompletionPct))
	}
	return line
}
