package contract

// PlanPayload is the wire shape of a strategic plan, both as fetched and
// as submitted. Submitted payloads include soft-deleted nodes so the
// backend can apply logical deletes; a nil ID means "create".
type PlanPayload struct {
	PlanID int64         `json:"plan_id"`
	Title  string        `json:"title,omitempty"`
	Areas  []AreaPayload `json:"areas"`
}

type AreaPayload struct {
	ID         *int64            `json:"id"`
	Name       string            `json:"name"`
	Objective  string            `json:"objective"`
	IsDeleted  bool              `json:"is_deleted"`
	Strategies []StrategyPayload `json:"strategies"`
}

type StrategyPayload struct {
	ID             *int64                `json:"id"`
	Description    string                `json:"description"`
	CompletionPct  float64               `json:"completion_pct"`
	AssignedBudget float64               `json:"assigned_budget"`
	ExecutedBudget float64               `json:"executed_budget"`
	IsDeleted      bool                  `json:"is_deleted"`
	Interventions  []InterventionPayload `json:"interventions"`
}

type InterventionPayload struct {
	ID        *int64 `json:"id"`
	Name      string `json:"name"`
	IsDeleted bool   `json:"is_deleted"`
}

// PlanSummary is a row of the plan listing.
type PlanSummary struct {
	PlanID    int64  `json:"plan_id"`
	Title     string `json:"title"`
	AreaCount int    `json:"area_count"`
}
