package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexanderramin/planner/internal/collection"
	"github.com/alexanderramin/planner/internal/domain"
	"gopkg.in/yaml.v3"
)

// eventDoc is the YAML shape accepted by "event new --file" and
// "event edit --file".
type eventDoc struct {
	Name           scalarText     `yaml:"name"`
	Responsible    scalarText     `yaml:"responsible"`
	Objective      scalarText     `yaml:"objective"`
	Location       scalarText     `yaml:"location"`
	StartDate      scalarText     `yaml:"start_date"`
	EndDate        scalarText     `yaml:"end_date"`
	InterventionID *int64         `yaml:"intervention_id"`
	Financing      []financingDoc `yaml:"financing"`
	Contributions  []financingDoc `yaml:"contributions"`
	Dates          []dateDoc      `yaml:"dates"`
	Attachments    []string       `yaml:"attachments"`
}

type financingDoc struct {
	Source scalarText `yaml:"source"`
	Amount scalarText `yaml:"amount"`
}

type dateDoc struct {
	Date scalarText `yaml:"date"`
	Note scalarText `yaml:"note"`
}

// scalarText keeps a YAML scalar exactly as written, so 2026-03-01 stays
// a date string and 1500.50 keeps its digits for the wizard rules.
type scalarText string

func (s *scalarText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a plain value", node.Line)
	}
	*s = scalarText(node.Value)
	return nil
}

func (s scalarText) String() string {
	return strings.TrimSpace(string(s))
}

func readEventDoc(path string) (eventDoc, error) {
	var doc eventDoc
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("reading event file: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing event file %s: %w", path, err)
	}
	return doc, nil
}

// apply merges the document into f. Blank scalars keep the current value;
// rows are appended after dropping blank placeholder rows.
func (d eventDoc) apply(f domain.EventForm) (domain.EventForm, error) {
	scalars := []struct {
		path  string
		value scalarText
	}{
		{domain.EventName, d.Name},
		{domain.EventResponsible, d.Responsible},
		{domain.EventObjective, d.Objective},
		{domain.EventLocation, d.Location},
		{domain.EventStartDate, d.StartDate},
		{domain.EventEndDate, d.EndDate},
	}
	var err error
	for _, s := range scalars {
		if s.value.String() == "" {
			continue
		}
		if f, err = f.Set(s.path, s.value.String()); err != nil {
			return f, err
		}
	}
	if d.InterventionID != nil {
		id := *d.InterventionID
		f.InterventionID = &id
	}

	if len(d.Financing) > 0 {
		f.Financing = appendFinancing(dropBlankFinancing(f.Financing), d.Financing)
	}
	if len(d.Contributions) > 0 {
		f.Contributions = appendFinancing(dropBlankFinancing(f.Contributions), d.Contributions)
	}
	if len(d.Dates) > 0 {
		dates := f.Dates
		for _, r := range dates.Visible() {
			if !r.Row.Persisted() && r.Row.Fields == (domain.ExecutionDate{}) {
				dates = dates.RemoveRow(r.Row.RowID)
			}
		}
		for _, dd := range d.Dates {
			dates, _ = dates.Append(domain.ExecutionDate{Date: dd.Date.String(), Note: dd.Note.String()})
		}
		f.Dates = dates
	}

	for _, p := range d.Attachments {
		a, err := newAttachment(p)
		if err != nil {
			return f, err
		}
		f.Attachments = append(f.Attachments, a)
	}
	return f, nil
}

func dropBlankFinancing(c collection.Collection[domain.FinancingRow]) collection.Collection[domain.FinancingRow] {
	for _, r := range c.Visible() {
		if !r.Row.Persisted() && r.Row.Fields == (domain.FinancingRow{}) {
			c = c.RemoveRow(r.Row.RowID)
		}
	}
	return c
}

func appendFinancing(c collection.Collection[domain.FinancingRow], rows []financingDoc) collection.Collection[domain.FinancingRow] {
	for _, r := range rows {
		c, _ = c.Append(domain.FinancingRow{Source: r.Source.String(), Amount: r.Amount.String()})
	}
	return c
}

// newAttachment describes a local file for upload. The file must exist.
func newAttachment(path string) (domain.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("attachment: %w", err)
	}
	if info.IsDir() {
		return domain.Attachment{}, fmt.Errorf("attachment %s is a directory", path)
	}
	return domain.Attachment{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Path:        path,
	}, nil
}

// rowOp is an edit on one repeated row, addressed as "section.N".
type rowOp int

const (
	rowRemove rowOp = iota
	rowDisable
	rowEnable
)

func applyRowOp(f domain.EventForm, ref string, op rowOp) (domain.EventForm, error) {
	section, idxText, ok := strings.Cut(ref, ".")
	idx, err := strconv.Atoi(idxText)
	if !ok || err != nil || idx < 0 {
		return f, fmt.Errorf("invalid row %q, want section.N such as financing.0", ref)
	}

	var n int
	switch section {
	case domain.SectionFinancing:
		n = f.Financing.Len()
		f.Financing = financingOp(f.Financing, idx, op)
	case domain.SectionContributions:
		n = f.Contributions.Len()
		f.Contributions = financingOp(f.Contributions, idx, op)
	case domain.SectionDates:
		n = f.Dates.Len()
		switch op {
		case rowRemove:
			f.Dates = f.Dates.RemoveAt(idx)
		default:
			f.Dates = f.Dates.SetDisabled(idx, op == rowDisable)
		}
	default:
		return f, fmt.Errorf("unknown section %q", section)
	}
	if idx >= n {
		return f, fmt.Errorf("no row %s", ref)
	}
	return f, nil
}

func financingOp(c collection.Collection[domain.FinancingRow], idx int, op rowOp) collection.Collection[domain.FinancingRow] {
	if op == rowRemove {
		return c.RemoveAt(idx)
	}
	return c.SetDisabled(idx, op == rowDisable)
}

// parseAssignment splits "path=value".
func parseAssignment(s string) (string, string, error) {
	path, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return "", "", fmt.Errorf("invalid assignment %q, want path=value", s)
	}
	return strings.TrimSpace(path), value, nil
}
