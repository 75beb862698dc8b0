package assemble

import (
	"strconv"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/collection"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
)

// Event builds the submission payload for the event wizard. Disabled and
// soft-deleted rows are left out; the persisted IDs among them are listed
// in the Removed* fields. Row IDs used only by the editor are dropped.
// TotalCost is the sum of the submitted rows. Incomplete optional fields
// never make assembly fail.
func Event(f domain.EventForm) contract.EventPayload {
	p := contract.EventPayload{
		ID:             cloneID(f.ID),
		PlanID:         f.PlanID,
		InterventionID: cloneID(f.InterventionID),
		Name:           f.Name,
		Responsible:    f.Responsible,
		Objective:      f.Objective,
		Location:       f.Location,
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
	}
	p.Financing, p.RemovedFinancingIDs = financing(f.Financing)
	p.Contributions, p.RemovedContributionIDs = financing(f.Contributions)
	p.TotalCost = payloadTotal(p.Financing, p.Contributions)
	p.Dates, p.RemovedDateIDs = dates(f.Dates)
	for _, a := range f.Attachments {
		p.Attachments = append(p.Attachments, a.Name)
	}
	return p
}

func financing(c collection.Collection[domain.FinancingRow]) ([]contract.FinancingPayload, []int64) {
	out := make([]contract.FinancingPayload, 0, c.Len())
	var removed []int64
	for _, r := range c.Rows() {
		if r.Deleted || r.Disabled {
			if r.Persisted() {
				removed = append(removed, *r.PersistedID)
			}
			continue
		}
		out = append(out, contract.FinancingPayload{
			ID:     cloneID(r.PersistedID),
			Source: r.Fields.Source,
			Amount: aggregate.ParseAmount(r.Fields.Amount),
		})
	}
	return out, removed
}

func payloadTotal(sections ...[]contract.FinancingPayload) float64 {
	var amounts []float64
	for _, rows := range sections {
		for _, r := range rows {
			amounts = append(amounts, r.Amount)
		}
	}
	return aggregate.Sum(amounts...)
}

func dates(c collection.Collection[domain.ExecutionDate]) ([]contract.DatePayload, []int64) {
	out := make([]contract.DatePayload, 0, c.Len())
	var removed []int64
	for _, r := range c.Rows() {
		if r.Deleted || r.Disabled {
			if r.Persisted() {
				removed = append(removed, *r.PersistedID)
			}
			continue
		}
		out = append(out, contract.DatePayload{
			ID:   cloneID(r.PersistedID),
			Date: r.Fields.Date,
			Note: r.Fields.Note,
		})
	}
	return out, removed
}

// RestoreEvent builds an editable form from a fetched payload.
func RestoreEvent(p contract.EventPayload) domain.EventForm {
	f := domain.EventForm{
		ID:             cloneID(p.ID),
		PlanID:         p.PlanID,
		InterventionID: cloneID(p.InterventionID),
		Name:           p.Name,
		Responsible:    p.Responsible,
		Objective:      p.Objective,
		Location:       p.Location,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Financing:      restoreFinancing(p.Financing),
		Contributions:  restoreFinancing(p.Contributions),
	}
	rows := make([]collection.Row[domain.ExecutionDate], 0, len(p.Dates))
	for _, d := range p.Dates {
		rows = append(rows, collection.Row[domain.ExecutionDate]{
			PersistedID: cloneID(d.ID),
			Fields:      domain.ExecutionDate{Date: d.Date, Note: d.Note},
		})
	}
	f.Dates = collection.New(rows...)
	return f
}

func restoreFinancing(in []contract.FinancingPayload) collection.Collection[domain.FinancingRow] {
	rows := make([]collection.Row[domain.FinancingRow], 0, len(in))
	for _, r := range in {
		rows = append(rows, collection.Row[domain.FinancingRow]{
			PersistedID: cloneID(r.ID),
			Fields: domain.FinancingRow{
				Source: r.Source,
				Amount: strconv.FormatFloat(r.Amount, 'f', -1, 64),
			},
		})
	}
	return collection.New(rows...)
}
