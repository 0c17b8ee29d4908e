package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the slice of the application store the engine needs.
type Store interface {
	GetStatus(ctx context.Context, applicationID uuid.UUID) (Status, error)
	SetStatus(ctx context.Context, applicationID uuid.UUID, s Status) error
}

// ConditionalStore is implemented by stores that can apply a status write
// only while the stored status still equals from. applied is false when
// another writer got there first.
type ConditionalStore interface {
	SetStatusIf(ctx context.Context, applicationID uuid.UUID, from, to Status) (applied bool, err error)
}

// Change describes one applied transition.
type Change struct {
	ApplicationID uuid.UUID `json:"application_id"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	Actor         string    `json:"actor"`
	At            time.Time `json:"at"`
}

// Notifier is told about every applied transition. Failures are logged and
// never undo the transition.
type Notifier interface {
	StatusChanged(ctx context.Context, c Change) error
}

// Engine validates and applies status transitions. Automated screening and
// recruiter actions go through the same Transition call.
type Engine struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

// NewEngine returns an Engine. notifier may be nil.
func NewEngine(store Store, notifier Notifier) *Engine {
	return &Engine{store: store, notifier: notifier, now: time.Now}
}

// Transition moves the application to requested. It returns an
// *IllegalTransitionError when the state machine forbids the edge; the stored
// status is left untouched in that case. With a ConditionalStore a write
// that loses a race with another transition is reported the same way.
func (e *Engine) Transition(ctx context.Context, applicationID uuid.UUID, requested Status, actor string) (*Change, error) {
	current, err := e.store.GetStatus(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(current, requested); err != nil {
		return nil, err
	}
	if err := e.write(ctx, applicationID, current, requested); err != nil {
		return nil, err
	}

	change := &Change{
		ApplicationID: applicationID,
		From:          current,
		To:            requested,
		Actor:         actor,
		At:            e.now().UTC(),
	}
	if e.notifier != nil {
		if err := e.notifier.StatusChanged(ctx, *change); err != nil {
			slog.Warn("status change notification failed", "application_id", applicationID, "err", err)
		}
	}
	return change, nil
}

func (e *Engine) write(ctx context.Context, applicationID uuid.UUID, from, to Status) error {
	cs, ok := e.store.(ConditionalStore)
	if !ok {
		if err := e.store.SetStatus(ctx, applicationID, to); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		return nil
	}

	applied, err := cs.SetStatusIf(ctx, applicationID, from, to)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if !applied {
		actual, err := e.store.GetStatus(ctx, applicationID)
		if err != nil {
			actual = from
		}
		return &IllegalTransitionError{From: actual, To: to}
	}
	return nil
}
