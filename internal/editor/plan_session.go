package editor

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/alexanderramin/planner/internal/aggregate"
	"github.com/alexanderramin/planner/internal/assemble"
	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/tree"
	"golang.org/x/sync/singleflight"
)

// PlanSession edits one strategic plan tree.
type PlanSession struct {
	source SnapshotSource
	submit Submitter
	notify Notifier
	loads  singleflight.Group

	mu         sync.Mutex
	state      State
	loadErr    error
	planID     int64
	title      string
	forest     []tree.Node[domain.PlanItem]
	submitting bool
}

// NewPlanSession creates an empty session.
func NewPlanSession(source SnapshotSource, submit Submitter, notify Notifier) *PlanSession {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &PlanSession{source: source, submit: submit, notify: notify}
}

// Load fetches the plan snapshot. The session reports StateLoading until
// the fetch resolves; concurrent loads of the same plan share one fetch.
// A failed fetch leaves the session in StateFailed with no tree.
func (s *PlanSession) Load(ctx context.Context, planID int64) error {
	s.mu.Lock()
	s.state = StateLoading
	s.loadErr = nil
	s.mu.Unlock()

	v, err := sharedLoad(ctx, &s.loads, strconv.FormatInt(planID, 10), func(ctx context.Context) (any, error) {
		return s.source.PlanSnapshot(ctx, planID)
	})

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.loadErr = fmt.Errorf("loading plan %d: %w", planID, err)
		s.forest = nil
		loadErr := s.loadErr
		s.mu.Unlock()
		s.notify.Failure(loadErr)
		return loadErr
	}
	snap := v.(*contract.PlanPayload)
	s.planID = planID
	s.title = snap.Title
	s.forest = assemble.RestorePlan(*snap)
	s.state = StateReady
	s.mu.Unlock()
	return nil
}

// Start begins the create flow with an empty tree.
func (s *PlanSession) Start(planID int64, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planID = planID
	s.title = title
	s.forest = nil
	s.loadErr = nil
	s.state = StateReady
}

// State returns the load state and the load error, if any.
func (s *PlanSession) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.loadErr
}

// PlanID returns the identifier of the loaded plan.
func (s *PlanSession) PlanID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planID
}

// Title returns the plan title.
func (s *PlanSession) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Forest returns the current tree. The slice is shared; treat it as
// read-only.
func (s *PlanSession) Forest() []tree.Node[domain.PlanItem] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest
}

// Visible returns the rows to render.
func (s *PlanSession) Visible() []tree.VisibleNode[domain.PlanItem] {
	return tree.Visible(s.Forest())
}

// SetField edits one field of the node at path. A stale path is ignored.
func (s *PlanSession) SetField(path tree.Path, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotLoaded
	}
	out, err := tree.TryUpdate(s.forest, path, func(item domain.PlanItem) (domain.PlanItem, error) {
		return item.SetField(field, value)
	})
	if err != nil {
		return err
	}
	s.forest = out
	return nil
}

// ToggleExpanded flips the editor-only expanded flag of the node at path.
func (s *PlanSession) ToggleExpanded(path tree.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forest = tree.Update(s.forest, path, func(item domain.PlanItem) domain.PlanItem {
		item.Expanded = !item.Expanded
		return item
	})
}

// Delete removes the node at path, cascading to its subtree.
func (s *PlanSession) Delete(path tree.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotLoaded
	}
	s.forest = tree.DeleteNode(s.forest, path)
	return nil
}

// AddArea appends a new area and returns its path.
func (s *PlanSession) AddArea(name, objective string) (tree.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, ErrNotLoaded
	}
	var p tree.Path
	s.forest, p = tree.Insert(s.forest, nil, domain.NewArea(name, objective))
	return p, nil
}

// AddChild appends a new node one level below parent, labelled with the
// level's primary field. A stale or deleted parent yields a nil path.
func (s *PlanSession) AddChild(parent tree.Path, label string) (tree.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, ErrNotLoaded
	}
	node, ok := tree.Resolve(s.forest, parent)
	if !ok || node.Deleted {
		return nil, nil
	}
	child, err := node.Data.NewChild()
	if err != nil {
		return nil, err
	}
	if child.Level == domain.LevelStrategy {
		child.Description = label
	} else {
		child.Name = label
	}
	var p tree.Path
	s.forest, p = tree.Insert(s.forest, parent, child)
	return p, nil
}

// Budget recomputes the plan budget from the current tree.
func (s *PlanSession) Budget() aggregate.PlanBudget {
	return aggregate.Budget(s.Forest())
}

// Submitting reports whether a submit is in flight; UIs disable the
// submit control while it is true.
func (s *PlanSession) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit sends the assembled tree to the backend. A second call while one
// is pending fails with ErrSubmitInFlight. Failures are reported to the
// notifier and can be retried by calling Submit again.
func (s *PlanSession) Submit(ctx context.Context) (*contract.SaveResult, error) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return nil, ErrNotLoaded
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.submitting = true
	payload := assemble.Plan(s.planID, s.title, s.forest)
	s.mu.Unlock()

	res, err := s.submit.SubmitPlan(ctx, payload)

	s.mu.Lock()
	s.submitting = false
	if err == nil && res != nil && s.planID == 0 {
		s.planID = res.ID
	}
	s.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("submitting plan: %w", err)
		s.notify.Failure(err)
		return nil, err
	}
	s.notify.Success("Plan saved")
	return res, nil
}
