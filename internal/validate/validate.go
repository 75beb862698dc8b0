// Package validate runs field-path scoped validation for wizard steps.
//
// A step declares field path patterns. A "*" segment stands for every
// active row of a repeated section, so "financing.*.amount" expands to
// "financing.0.amount", "financing.2.amount", ... from the form's current
// rows rather than from a fixed count. Validation results are plain data
// (Errors); a failing field is never reported as a Go error.
package validate

import (
	"sort"
	"strconv"
	"strings"
)

// FieldSource is the form state a validator reads.
type FieldSource interface {
	// Value returns the value at a concrete path.
	Value(path string) (string, bool)
	// ActiveRows returns the indices of rows in a repeated section that
	// take part in validation and submission.
	ActiveRows(section string) []int
}

// Rule checks a single value. It has the same shape as huh field
// validators so the interactive wizard can reuse it.
type Rule func(value string) error

// CrossRule checks a value against other fields of the form.
type CrossRule func(src FieldSource, value string) error

// Step declares the fields that gate leaving a wizard step.
type Step struct {
	Number     int      `yaml:"number"`
	Name       string   `yaml:"name"`
	Title      string   `yaml:"title"`
	FieldPaths []string `yaml:"fields"`
}

// Errors maps concrete field paths to messages.
type Errors map[string]string

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Paths returns the failing paths in sorted order.
func (e Errors) Paths() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validator holds step declarations and the rules registered per pattern.
type Validator struct {
	steps []Step
	rules map[string][]Rule
	cross map[string][]CrossRule
}

// New creates a Validator for the given steps. Steps are ordered by
// Number.
func New(steps []Step) *Validator {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	return &Validator{
		steps: sorted,
		rules: make(map[string][]Rule),
		cross: make(map[string][]CrossRule),
	}
}

// Register attaches rules to a path pattern.
func (v *Validator) Register(pattern string, rules ...Rule) *Validator {
	v.rules[pattern] = append(v.rules[pattern], rules...)
	return v
}

// RegisterCross attaches rules that need the rest of the form.
func (v *Validator) RegisterCross(pattern string, rules ...CrossRule) *Validator {
	v.cross[pattern] = append(v.cross[pattern], rules...)
	return v
}

// Steps returns the declared steps in order.
func (v *Validator) Steps() []Step {
	out := make([]Step, len(v.steps))
	copy(out, v.steps)
	return out
}

// Step returns the step with the given number.
func (v *Validator) Step(number int) (Step, bool) {
	for _, s := range v.steps {
		if s.Number == number {
			return s, true
		}
	}
	return Step{}, false
}

// FieldRule combines the single-value rules of a pattern into one
// function, or nil when the pattern has none.
func (v *Validator) FieldRule(pattern string) func(string) error {
	rules := v.rules[pattern]
	if len(rules) == 0 {
		return nil
	}
	return func(value string) error {
		for _, r := range rules {
			if err := r(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// Expand resolves a step's patterns to concrete paths for the current
// form.
func Expand(step Step, src FieldSource) []string {
	var out []string
	for _, pattern := range step.FieldPaths {
		out = append(out, expandPattern(pattern, src)...)
	}
	return out
}

func expandPattern(pattern string, src FieldSource) []string {
	parts := strings.Split(pattern, ".")
	star := -1
	for i, p := range parts {
		if p == "*" {
			star = i
			break
		}
	}
	if star <= 0 {
		return []string{pattern}
	}
	section := strings.Join(parts[:star], ".")
	var out []string
	for _, idx := range src.ActiveRows(section) {
		concrete := make([]string, len(parts))
		copy(concrete, parts)
		concrete[star] = strconv.Itoa(idx)
		out = append(out, strings.Join(concrete, "."))
	}
	return out
}

// Match reports whether a concrete path matches a pattern.
func Match(pattern, path string) bool {
	pp := strings.Split(pattern, ".")
	cp := strings.Split(path, ".")
	if len(pp) != len(cp) {
		return false
	}
	for i := range pp {
		if pp[i] == "*" {
			if _, err := strconv.Atoi(cp[i]); err != nil {
				return false
			}
			continue
		}
		if pp[i] != cp[i] {
			return false
		}
	}
	return true
}

// ValidateStep validates only the fields declared for step and returns
// the updated error set with ok reporting success. Errors for paths that
// belong to other steps are carried over untouched; stale errors under
// this step's patterns (for rows since removed) are cleared. The input
// map is not modified. An unknown step validates trivially.
func (v *Validator) ValidateStep(number int, src FieldSource, errs Errors) (Errors, bool) {
	out := errs.Clone()
	step, found := v.Step(number)
	if !found {
		return out, true
	}

	for path := range out {
		for _, pattern := range step.FieldPaths {
			if Match(pattern, path) {
				delete(out, path)
				break
			}
		}
	}

	ok := true
	for _, pattern := range step.FieldPaths {
		for _, path := range expandPattern(pattern, src) {
			if msg := v.check(pattern, path, src); msg != "" {
				out[path] = msg
				ok = false
			}
		}
	}
	return out, ok
}

// ValidateAll validates every step and returns the number of the first
// failing step, or 0 when all pass.
func (v *Validator) ValidateAll(src FieldSource, errs Errors) (Errors, int) {
	out := errs
	first := 0
	for _, s := range v.steps {
		var ok bool
		out, ok = v.ValidateStep(s.Number, src, out)
		if !ok && first == 0 {
			first = s.Number
		}
	}
	if out == nil {
		out = Errors{}
	}
	return out, first
}

func (v *Validator) check(pattern, path string, src FieldSource) string {
	value, _ := src.Value(path)
	for _, r := range v.rules[pattern] {
		if err := r(value); err != nil {
			return err.Error()
		}
	}
	for _, r := range v.cross[pattern] {
		if err := r(src, value); err != nil {
			return err.Error()
		}
	}
	return ""
}
