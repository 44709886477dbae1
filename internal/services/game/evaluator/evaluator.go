// Package evaluator tracks objective progress by reacting to gameplay
// events.
//
// One Evaluator serves one objective kind. It subscribes a single dispatch
// method to the event types its kind cares about; on every event it opens
// its own transactional scope, walks the vault's active links of its kind,
// and applies the kind's matching policy. A failure while processing one
// objective is logged and skipped so the remaining objectives still
// progress, mirroring the bus's per-handler isolation one level down.
package evaluator

import (
	"context"
	"fmt"
	"log"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/event"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/storage"
)

// DwellerCounter supplies the live dweller population of a vault, used by
// reach objectives that track absolute milestones.
type DwellerCounter interface {
	CountDwellers(ctx context.Context, vaultID string) (int, error)
}

// RewardGranter pays out a completed objective. A grant failure never
// reverts the completion; the player-visible done state outlives payout
// bookkeeping problems.
type RewardGranter interface {
	GrantObjectiveReward(ctx context.Context, vaultID string, obj objective.Objective, link objective.ProgressLink) error
}

// LinkStore opens the transactional scope evaluators work in. The full
// objective store satisfies it.
type LinkStore interface {
	Begin(ctx context.Context) (storage.Tx, error)
}

// Policy owns the matching semantics for one objective kind.
type Policy interface {
	// Kind is the catalog objective kind this policy serves.
	Kind() objective.Kind
	// Events lists the event types the evaluator subscribes to.
	Events() []event.Type
	// Matches reports whether env advances obj.
	Matches(obj objective.Objective, env event.Envelope) bool
	// Amount extracts the progress delta from the event payload.
	Amount(env event.Envelope) int
}

// AbsolutePolicy marks a policy whose progress is replaced rather than
// incremented: each firing stores a fresh snapshot value.
type AbsolutePolicy interface {
	Policy
	// Value computes the snapshot progress value for one event.
	Value(ctx context.Context, dwellers DwellerCounter, env event.Envelope) (int, error)
}

// Evaluator binds one policy to the bus and the objective store.
type Evaluator struct {
	policy   Policy
	store    LinkStore
	dwellers DwellerCounter
	rewards  RewardGranter
	bus      *event.Bus

	logf func(format string, args ...any)
}

// New constructs an evaluator and subscribes it to every event type its
// policy declares.
func New(policy Policy, store LinkStore, dwellers DwellerCounter, rewards RewardGranter, bus *event.Bus) *Evaluator {
	e := &Evaluator{
		policy:   policy,
		store:    store,
		dwellers: dwellers,
		rewards:  rewards,
		bus:      bus,
		logf:     log.Printf,
	}
	for _, eventType := range policy.Events() {
		bus.Subscribe(eventType, e)
	}
	return e
}

// Kind returns the objective kind this evaluator serves.
func (e *Evaluator) Kind() objective.Kind {
	return e.policy.Kind()
}

// Close unsubscribes the evaluator from every event type it registered.
func (e *Evaluator) Close() {
	for _, eventType := range e.policy.Events() {
		e.bus.Unsubscribe(eventType, e)
	}
}

// HandleEvent processes one event against the vault's active objectives of
// this evaluator's kind inside a fresh transactional scope.
func (e *Evaluator) HandleEvent(ctx context.Context, env event.Envelope) error {
	if env.VaultID == "" {
		return nil
	}
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s evaluation: %w", e.Kind(), err)
	}

	active, err := tx.ListActiveLinks(ctx, env.VaultID, e.Kind())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("load active %s objectives for vault %s: %w", e.Kind(), env.VaultID, err)
	}

	for _, candidate := range active {
		if err := e.evaluate(ctx, tx, candidate, env); err != nil {
			// One broken objective must not stall its siblings.
			e.logf("evaluator %s: objective %s vault %s: %v", e.Kind(), candidate.Objective.ID, env.VaultID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s evaluation for vault %s: %w", e.Kind(), env.VaultID, err)
	}
	return nil
}

func (e *Evaluator) evaluate(ctx context.Context, tx storage.Tx, candidate storage.ActiveLink, env event.Envelope) error {
	if !e.policy.Matches(candidate.Objective, env) {
		return nil
	}

	amount := e.policy.Amount(env)
	absolute := false
	if ap, ok := e.policy.(AbsolutePolicy); ok {
		value, err := ap.Value(ctx, e.dwellers, env)
		if err != nil {
			return fmt.Errorf("compute snapshot value: %w", err)
		}
		amount = value
		absolute = true
	}

	return e.applyProgress(ctx, tx, candidate, amount, absolute)
}

// applyProgress is the shared progress-update routine: clamp toward the
// target, flip completion exactly once, announce it, pay it out.
func (e *Evaluator) applyProgress(ctx context.Context, tx storage.Tx, candidate storage.ActiveLink, amount int, absolute bool) error {
	obj := candidate.Objective
	link := candidate.Link
	if link.IsCompleted {
		return nil
	}

	target := obj.TargetAmount
	if target < 1 {
		target = 1
	}

	newProgress := link.Progress + amount
	if absolute {
		newProgress = amount
	}
	if newProgress > target {
		newProgress = target
	}
	if newProgress < 0 {
		newProgress = 0
	}

	// Resync total in case the catalog target changed since assignment.
	link.Total = target
	link.Progress = newProgress

	if newProgress >= target {
		link.IsCompleted = true
		e.bus.Emit(ctx, event.Envelope{
			Type:    event.TypeObjectiveCompleted,
			VaultID: link.VaultID,
			Payload: event.ObjectiveCompleted{ObjectiveID: obj.ID, Challenge: obj.Challenge},
		})
		if e.rewards != nil {
			if err := e.rewards.GrantObjectiveReward(ctx, link.VaultID, obj, link); err != nil {
				// Completion is retained; payout can be reconciled later.
				e.logf("evaluator %s: grant reward for objective %s vault %s: %v", e.Kind(), obj.ID, link.VaultID, err)
			}
		}
	}

	if err := tx.UpdateLink(ctx, link); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	return nil
}
