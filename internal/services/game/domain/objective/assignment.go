package objective

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ElderEvil/vaultkeeper/internal/platform/random"
)

// Assignment caps per time-boxed category.
const (
	DailyAssignmentCap  = 5
	WeeklyAssignmentCap = 3
)

var (
	// ErrAssignmentStoreNotConfigured indicates missing persistence wiring.
	ErrAssignmentStoreNotConfigured = errors.New("assignment store is not configured")
	// ErrVaultIDRequired indicates a vault identifier is required.
	ErrVaultIDRequired = errors.New("vault id is required")
)

// AssignmentStore is the persistence boundary for assignment decisions.
type AssignmentStore interface {
	ListObjectivesByCategory(ctx context.Context, category Category) ([]Objective, error)
	ListLinksByVault(ctx context.Context, vaultID string) ([]ProgressLink, error)
	PutLink(ctx context.Context, link ProgressLink) error
	DeleteLinksByCategory(ctx context.Context, vaultID string, category Category) error
}

// AssignmentService selects which catalog objectives become active
// progress links for a vault.
type AssignmentService struct {
	store AssignmentStore

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAssignmentService constructs an assignment service. A nil rng is
// replaced with a crypto-seeded generator.
func NewAssignmentService(store AssignmentStore, rng *rand.Rand) *AssignmentService {
	if rng == nil {
		var err error
		rng, err = random.NewRand()
		if err != nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	return &AssignmentService{store: store, rng: rng}
}

// Assign links unassigned catalog objectives of category to the vault.
// Daily and weekly categories sample randomly up to their cap; the
// achievement category assigns everything unassigned. Objectives already
// linked to the vault are never linked twice.
func (s *AssignmentService) Assign(ctx context.Context, vaultID string, category Category) ([]ProgressLink, error) {
	if s == nil || s.store == nil {
		return nil, ErrAssignmentStoreNotConfigured
	}
	if vaultID == "" {
		return nil, ErrVaultIDRequired
	}

	catalog, err := s.store.ListObjectivesByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list %s objectives: %w", category, err)
	}
	existing, err := s.store.ListLinksByVault(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("list links for vault %s: %w", vaultID, err)
	}
	assigned := make(map[string]struct{}, len(existing))
	for _, link := range existing {
		assigned[link.ObjectiveID] = struct{}{}
	}

	var candidates []Objective
	for _, obj := range catalog {
		if !obj.FullySpecified() {
			continue
		}
		if _, already := assigned[obj.ID]; already {
			continue
		}
		candidates = append(candidates, obj)
	}

	selected := s.sample(candidates, assignmentCap(category))

	links := make([]ProgressLink, 0, len(selected))
	for _, obj := range selected {
		total := obj.TargetAmount
		if total < 1 {
			total = 1
		}
		link := ProgressLink{
			VaultID:     vaultID,
			ObjectiveID: obj.ID,
			Progress:    0,
			Total:       total,
			IsCompleted: false,
		}
		if err := s.store.PutLink(ctx, link); err != nil {
			return links, fmt.Errorf("link objective %s to vault %s: %w", obj.ID, vaultID, err)
		}
		links = append(links, link)
	}
	return links, nil
}

// Refresh replaces a time-boxed category's links for the vault: it deletes
// every existing link in that category, then re-runs assignment. This is
// the sole deletion path for progress links.
func (s *AssignmentService) Refresh(ctx context.Context, vaultID string, category Category) ([]ProgressLink, error) {
	if s == nil || s.store == nil {
		return nil, ErrAssignmentStoreNotConfigured
	}
	if vaultID == "" {
		return nil, ErrVaultIDRequired
	}
	if err := s.store.DeleteLinksByCategory(ctx, vaultID, category); err != nil {
		return nil, fmt.Errorf("delete %s links for vault %s: %w", category, vaultID, err)
	}
	return s.Assign(ctx, vaultID, category)
}

// sample returns up to limit objectives chosen uniformly at random. A limit
// of zero or less means "take everything". Fewer candidates than the limit
// means all of them are taken.
func (s *AssignmentService) sample(candidates []Objective, limit int) []Objective {
	if limit <= 0 || len(candidates) <= limit {
		return candidates
	}
	s.mu.Lock()
	order := s.rng.Perm(len(candidates))
	s.mu.Unlock()
	selected := make([]Objective, 0, limit)
	for _, idx := range order[:limit] {
		selected = append(selected, candidates[idx])
	}
	return selected
}

func assignmentCap(category Category) int {
	switch category {
	case CategoryDaily:
		return DailyAssignmentCap
	case CategoryWeekly:
		return WeeklyAssignmentCap
	default:
		return 0
	}
}
