package contract

// EventPayload is the wire shape of an event financing/tracking record.
//
// Submitted payloads never contain disabled or soft-deleted rows. Persisted
// rows the user removed or disabled are reported by ID in the Removed*
// lists instead.
type EventPayload struct {
	ID             *int64 `json:"id"`
	PlanID         int64  `json:"plan_id"`
	InterventionID *int64 `json:"intervention_id"`

	Name        string `json:"name"`
	Responsible string `json:"responsible"`
	Objective   string `json:"objective"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`

	Financing     []FinancingPayload `json:"financing"`
	Contributions []FinancingPayload `json:"contributions"`
	Dates         []DatePayload      `json:"dates"`

	RemovedFinancingIDs    []int64 `json:"removed_financing_ids,omitempty"`
	RemovedContributionIDs []int64 `json:"removed_contribution_ids,omitempty"`
	RemovedDateIDs         []int64 `json:"removed_date_ids,omitempty"`

	TotalCost   float64  `json:"total_cost"`
	Attachments []string `json:"attachments,omitempty"`
}

type FinancingPayload struct {
	ID     *int64  `json:"id"`
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
}

type DatePayload struct {
	ID   *int64 `json:"id"`
	Date string `json:"date"`
	Note string `json:"note,omitempty"`
}

// EventSummary is a row of the event listing.
type EventSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	StartDate string  `json:"start_date"`
	TotalCost float64 `json:"total_cost"`
}

// SaveResult is returned by the backend after a successful submit.
type SaveResult struct {
	ID int64 `json:"id"`
}
