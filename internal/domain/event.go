package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/planner/internal/collection"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Repeated sections of the event form, used as the first segment of a
// field path such as "financing.0.amount".
const (
	SectionFinancing     = "financing"
	SectionContributions = "contributions"
	SectionDates         = "dates"
)

// Scalar event form fields.
const (
	EventName         = "name"
	EventResponsible  = "responsible"
	EventObjective    = "objective"
	EventLocation     = "location"
	EventStartDate    = "start_date"
	EventEndDate      = "end_date"
	EventIntervention = "intervention_id"
	RowSource         = "source"
	RowAmount         = "amount"
	RowDate           = "date"
	RowNote           = "note"
)

// FinancingRow is a single financing contribution. Amount is kept as typed
// so partially entered values survive until submission.
type FinancingRow struct {
	Source string
	Amount string
}

// AmountText exposes the raw amount to the aggregator.
func (f FinancingRow) AmountText() string {
	return f.Amount
}

// ExecutionDate is a day on which the event is held.
type ExecutionDate struct {
	Date string
	Note string
}

// Attachment is a local file to upload with the event.
type Attachment struct {
	Name        string
	ContentType string
	Path        string
}

// EventForm is the full state of the event financing and tracking wizard.
type EventForm struct {
	ID             *int64
	PlanID         int64
	InterventionID *int64

	Name        string
	Responsible string
	Objective   string
	Location    string
	StartDate   string
	EndDate     string

	// Institutional financing and external contributions.
	Financing     collection.Collection[FinancingRow]
	Contributions collection.Collection[FinancingRow]
	Dates         collection.Collection[ExecutionDate]

	Attachments []Attachment
}

// NewEventForm returns the defaults used by the create flow: one empty
// financing row and one execution date.
func NewEventForm(planID int64) EventForm {
	f := EventForm{PlanID: planID}
	f.Financing, _ = f.Financing.Append(FinancingRow{})
	f.Dates, _ = f.Dates.Append(ExecutionDate{})
	return f
}

// Value returns the current value at a field path.
func (f EventForm) Value(path string) (string, bool) {
	section, idx, field, repeated := splitPath(path)
	if !repeated {
		switch path {
		case EventName:
			return f.Name, true
		case EventResponsible:
			return f.Responsible, true
		case EventObjective:
			return f.Objective, true
		case EventLocation:
			return f.Location, true
		case EventStartDate:
			return f.StartDate, true
		case EventEndDate:
			return f.EndDate, true
		case EventIntervention:
			if f.InterventionID == nil {
				return "", true
			}
			return strconv.FormatInt(*f.InterventionID, 10), true
		}
		return "", false
	}

	switch section {
	case SectionFinancing, SectionContributions:
		row, ok := f.financingSection(section).At(idx)
		if !ok {
			return "", false
		}
		switch field {
		case RowSource:
			return row.Fields.Source, true
		case RowAmount:
			return row.Fields.Amount, true
		}
	case SectionDates:
		row, ok := f.Dates.At(idx)
		if !ok {
			return "", false
		}
		switch field {
		case RowDate:
			return row.Fields.Date, true
		case RowNote:
			return row.Fields.Note, true
		}
	}
	return "", false
}

// ActiveRows returns the indices of rows in a repeated section that will
// be submitted.
func (f EventForm) ActiveRows(section string) []int {
	switch section {
	case SectionFinancing, SectionContributions:
		return f.financingSection(section).Active()
	case SectionDates:
		return f.Dates.Active()
	}
	return nil
}

// Set returns a copy of f with the value at path replaced.
func (f EventForm) Set(path, value string) (EventForm, error) {
	section, idx, field, repeated := splitPath(path)
	if !repeated {
		v := strings.TrimSpace(value)
		switch path {
		case EventName:
			f.Name = v
		case EventResponsible:
			f.Responsible = v
		case EventObjective:
			f.Objective = v
		case EventLocation:
			f.Location = v
		case EventStartDate:
			f.StartDate = v
		case EventEndDate:
			f.EndDate = v
		case EventIntervention:
			if v == "" {
				f.InterventionID = nil
				break
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return f, fmt.Errorf("%s: %q: %w", path, value, ErrInvalidValue)
			}
			f.InterventionID = &n
		default:
			return f, fmt.Errorf("%s: %w", path, ErrUnknownField)
		}
		return f, nil
	}

	switch section {
	case SectionFinancing, SectionContributions:
		if field != RowSource && field != RowAmount {
			return f, fmt.Errorf("%s: %w", path, ErrUnknownField)
		}
		rows := f.financingSection(section).UpdateAt(idx, func(r FinancingRow) FinancingRow {
			if field == RowSource {
				r.Source = strings.TrimSpace(value)
			} else {
				r.Amount = strings.TrimSpace(value)
			}
			return r
		})
		if section == SectionFinancing {
			f.Financing = rows
		} else {
			f.Contributions = rows
		}
	case SectionDates:
		if field != RowDate && field != RowNote {
			return f, fmt.Errorf("%s: %w", path, ErrUnknownField)
		}
		f.Dates = f.Dates.UpdateAt(idx, func(d ExecutionDate) ExecutionDate {
			if field == RowDate {
				d.Date = strings.TrimSpace(value)
			} else {
				d.Note = strings.TrimSpace(value)
			}
			return d
		})
	default:
		return f, fmt.Errorf("%s: %w", path, ErrUnknownField)
	}
	return f, nil
}

func (f EventForm) financingSection(section string) collection.Collection[FinancingRow] {
	if section == SectionContributions {
		return f.Contributions
	}
	return f.Financing
}

// RowPath builds the field path for a repeated row field.
func RowPath(section string, idx int, field string) string {
	return section + "." + strconv.Itoa(idx) + "." + field
}

// splitPath breaks "section.N.field" apart. repeated is false for scalar
// paths.
func splitPath(path string) (section string, idx int, field string, repeated bool) {
	parts := strings.Split(path, ".")
	if len(parts) != 3 {
		return "", 0, "", false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, "", false
	}
	return parts[0], n, parts[2], true
}
