package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Level identifies the depth of a node in a strategic plan tree.
type Level string

const (
	LevelArea         Level = "area"
	LevelStrategy     Level = "strategy"
	LevelIntervention Level = "intervention"
)

// Child returns the level nested directly under l, or "" for leaves.
func (l Level) Child() Level {
	switch l {
	case LevelArea:
		return LevelStrategy
	case LevelStrategy:
		return LevelIntervention
	default:
		return ""
	}
}

// LevelAt returns the level for a node at the given depth (0 = area).
func LevelAt(depth int) Level {
	switch depth {
	case 0:
		return LevelArea
	case 1:
		return LevelStrategy
	case 2:
		return LevelIntervention
	default:
		return ""
	}
}

// Editable field names, shared by the CLI, the TUI and SetField.
const (
	FieldName           = "name"
	FieldObjective      = "objective"
	FieldDescription    = "description"
	FieldCompletion     = "completion"
	FieldAssignedBudget = "assigned_budget"
	FieldExecutedBudget = "executed_budget"
)

var levelFields = map[Level][]string{
	LevelArea:         {FieldName, FieldObjective},
	LevelStrategy:     {FieldDescription, FieldCompletion, FieldAssignedBudget, FieldExecutedBudget},
	LevelIntervention: {FieldName},
}

// Fields returns the editable fields for a level in display order.
func (l Level) Fields() []string {
	return levelFields[l]
}

// PlanItem is the payload of a plan tree node. Only the fields belonging
// to Level are meaningful.
type PlanItem struct {
	Level Level

	// Area and intervention.
	Name string
	// Area.
	Objective string

	// Strategy.
	Description    string
	CompletionPct  float64
	AssignedBudget float64
	ExecutedBudget float64

	// Expanded is editor state only and never leaves the process.
	Expanded bool
}

// NewArea returns an empty area item.
func NewArea(name, objective string) PlanItem {
	return PlanItem{Level: LevelArea, Name: name, Objective: objective, Expanded: true}
}

// NewStrategy returns an empty strategy item.
func NewStrategy(description string) PlanItem {
	return PlanItem{Level: LevelStrategy, Description: description, Expanded: true}
}

// NewIntervention returns an empty intervention item.
func NewIntervention(name string) PlanItem {
	return PlanItem{Level: LevelIntervention, Name: name}
}

// NewChild returns a blank item one level below p.
func (p PlanItem) NewChild() (PlanItem, error) {
	switch p.Level.Child() {
	case LevelStrategy:
		return NewStrategy(""), nil
	case LevelIntervention:
		return NewIntervention(""), nil
	default:
		return PlanItem{}, fmt.Errorf("%s: %w", p.Level, ErrNoChildLevel)
	}
}

// Label is the text shown for the item in lists and trees.
func (p PlanItem) Label() string {
	if p.Level == LevelStrategy {
		return p.Description
	}
	return p.Name
}

// Get returns the string form of a field.
func (p PlanItem) Get(field string) (string, error) {
	if !p.hasField(field) {
		return "", fmt.Errorf("%s.%s: %w", p.Level, field, ErrUnknownField)
	}
	switch field {
	case FieldName:
		return p.Name, nil
	case FieldObjective:
		return p.Objective, nil
	case FieldDescription:
		return p.Description, nil
	case FieldCompletion:
		return formatNumber(p.CompletionPct), nil
	case FieldAssignedBudget:
		return formatNumber(p.AssignedBudget), nil
	default:
		return formatNumber(p.ExecutedBudget), nil
	}
}

// SetField returns a copy of p with field set from its string form.
func (p PlanItem) SetField(field, value string) (PlanItem, error) {
	if !p.hasField(field) {
		return p, fmt.Errorf("%s.%s: %w", p.Level, field, ErrUnknownField)
	}
	switch field {
	case FieldName:
		p.Name = strings.TrimSpace(value)
	case FieldObjective:
		p.Objective = strings.TrimSpace(value)
	case FieldDescription:
		p.Description = strings.TrimSpace(value)
	case FieldCompletion:
		v, err := parseNumber(field, value)
		if err != nil {
			return p, err
		}
		if v < 0 || v > 100 {
			return p, fmt.Errorf("%s must be between 0 and 100: %w", field, ErrInvalidValue)
		}
		p.CompletionPct = v
	case FieldAssignedBudget, FieldExecutedBudget:
		v, err := parseNumber(field, value)
		if err != nil {
			return p, err
		}
		if v < 0 {
			return p, fmt.Errorf("%s must not be negative: %w", field, ErrInvalidValue)
		}
		if field == FieldAssignedBudget {
			p.AssignedBudget = v
		} else {
			p.ExecutedBudget = v
		}
	}
	return p, nil
}

func (p PlanItem) hasField(field string) bool {
	for _, f := range levelFields[p.Level] {
		if f == field {
			return true
		}
	}
	return false
}

func parseNumber(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a number: %w", field, value, ErrInvalidValue)
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
