// Package editor holds editing sessions for plans and events: it loads a
// snapshot, applies copy-on-write edits, and guards submission.
package editor

import (
	"context"
	"errors"

	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
	"github.com/alexanderramin/planner/internal/validate"
	"github.com/alexanderramin/planner/internal/wizard"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotLoaded indicates an operation on a session without a snapshot.
	ErrNotLoaded = errors.New("editor has no loaded snapshot")

	// ErrSubmitInFlight indicates a second submit while one is pending.
	ErrSubmitInFlight = errors.New("submit already in progress")

	// ErrNotSubmitted indicates the wizard did not reach submission, for
	// example because a step failed validation.
	ErrNotSubmitted = errors.New("event was not submitted")
)

// SnapshotSource fetches the initial editor state.
type SnapshotSource interface {
	PlanSnapshot(ctx context.Context, planID int64) (*contract.PlanPayload, error)
	EventSnapshot(ctx context.Context, eventID int64) (*contract.EventPayload, error)
}

// Submitter persists assembled payloads.
type Submitter interface {
	SubmitPlan(ctx context.Context, p contract.PlanPayload) (*contract.SaveResult, error)
	SubmitEvent(ctx context.Context, p contract.EventPayload, attachments []domain.Attachment) (*contract.SaveResult, error)
}

// Backend is a collaborator that can both fetch and persist.
type Backend interface {
	SnapshotSource
	Submitter
}

// Notifier receives fire-and-forget user notifications. Implementations
// must not block.
type Notifier interface {
	wizard.Notifier
	Success(message string)
	Failure(err error)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) ValidationFailed(int, validate.Errors) {}
func (NopNotifier) Cancel()                               {}
func (NopNotifier) Success(string)                        {}
func (NopNotifier) Failure(error)                         {}

// State is the load state of a session.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// sharedLoad runs fetch once per key for all concurrent callers. The fetch
// is detached from the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx is done.
func sharedLoad(ctx context.Context, g *singleflight.Group, key string, fetch func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) {
		return fetch(detached)
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
