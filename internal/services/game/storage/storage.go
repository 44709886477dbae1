// Package storage defines the persistence boundary for the objective
// catalog and per-vault progress links.
package storage

import (
	"context"
	"errors"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = errors.New("record not found")

// ActiveLink pairs one incomplete progress link with its catalog objective,
// the unit evaluators iterate over.
type ActiveLink struct {
	Link      objective.ProgressLink
	Objective objective.Objective
}

// Tx is one evaluator invocation's transactional scope. Each evaluator
// opens its own Tx per event, so two evaluators handling the same emit
// never share one.
type Tx interface {
	// ListActiveLinks returns every incomplete link for the vault whose
	// objective is of the given kind, joined to its catalog objective.
	ListActiveLinks(ctx context.Context, vaultID string, kind objective.Kind) ([]ActiveLink, error)
	// UpdateLink persists new progress/completion state for one link.
	UpdateLink(ctx context.Context, link objective.ProgressLink) error
	Commit() error
	Rollback() error
}

// ObjectiveStore owns catalog templates and progress links.
type ObjectiveStore interface {
	// Begin opens a transactional scope for one evaluator invocation.
	Begin(ctx context.Context) (Tx, error)

	PutObjective(ctx context.Context, obj objective.Objective) error
	GetObjective(ctx context.Context, id string) (objective.Objective, error)
	ListObjectivesByCategory(ctx context.Context, category objective.Category) ([]objective.Objective, error)

	ListLinksByVault(ctx context.Context, vaultID string) ([]objective.ProgressLink, error)
	PutLink(ctx context.Context, link objective.ProgressLink) error
	DeleteLinksByCategory(ctx context.Context, vaultID string, category objective.Category) error
}
