package wizard

import (
	_ "embed"
	"fmt"

	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/validate"
	"gopkg.in/yaml.v3"
)

// Step numbers of the event wizard. The order here must match steps.yaml.
const (
	StepGeneral   = 1
	StepFinancing = 2
	StepSchedule  = 3
	StepReview    = 4
)

//go:embed steps.yaml
var eventStepsYAML []byte

type stepsDoc struct {
	Steps []validate.Step `yaml:"steps"`
}

// ParseSteps decodes a step declaration document.
func ParseSteps(data []byte) ([]validate.Step, error) {
	var doc stepsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding step declarations: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("step declarations: no steps")
	}
	for i, s := range doc.Steps {
		if s.Number != i+1 {
			return nil, fmt.Errorf("steps[%d]: number %d out of sequence", i, s.Number)
		}
	}
	return doc.Steps, nil
}

// EventSteps returns the embedded event wizard steps.
func EventSteps() []validate.Step {
	steps, err := ParseSteps(eventStepsYAML)
	if err != nil {
		panic(err)
	}
	return steps
}

// EventValidator wires the field rules of the event wizard.
func EventValidator() *validate.Validator {
	v := validate.New(EventSteps())

	v.Register(domain.EventName, validate.Required("Event name"), validate.MaxLength("Event name", 200))
	v.Register(domain.EventResponsible, validate.Required("Responsible"))
	v.Register(domain.EventObjective, validate.Required("Objective"), validate.MaxLength("Objective", 2000))
	v.Register(domain.EventLocation, validate.MaxLength("Location", 200))
	v.Register(domain.EventStartDate, validate.Required("Start date"), validate.Date("Start date"))
	v.Register(domain.EventEndDate, validate.Required("End date"), validate.Date("End date"))
	v.RegisterCross(domain.EventEndDate, validate.NotBefore("End date", domain.EventStartDate, "the start date"))

	v.RegisterCross(domain.SectionFinancing,
		validate.AtLeastOne(domain.SectionFinancing, "Add at least one institutional financing row"))
	for _, section := range []string{domain.SectionFinancing, domain.SectionContributions} {
		v.Register(section+".*."+domain.RowSource, validate.Required("Source"))
		// Amounts are only required; unparsable input counts as 0 in totals.
		v.Register(section+".*."+domain.RowAmount, validate.Required("Amount"))
	}

	v.RegisterCross(domain.SectionDates,
		validate.AtLeastOne(domain.SectionDates, "Enable at least one execution date"))
	v.Register("dates.*."+domain.RowDate, validate.Required("Date"), validate.Date("Date"))
	v.RegisterCross("dates.*."+domain.RowDate,
		validate.Between("Date", domain.EventStartDate, domain.EventEndDate))

	return v
}
