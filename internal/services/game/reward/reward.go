// Package reward pays out completed objectives.
package reward

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/criteria"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
)

// ErrCrediterNotConfigured is returned when the granter has no resource
// backend to credit against.
var ErrCrediterNotConfigured = errors.New("reward: resource crediter is not configured")

// ResourceCrediter adds to a vault's resource balance. The vault storage
// layer satisfies it.
type ResourceCrediter interface {
	AddResource(ctx context.Context, vaultID, resourceType string, amount int) error
}

// ResourceGranter parses an objective's reward text and credits the
// vault's resource balance. It satisfies the evaluator's RewardGranter
// interface.
type ResourceGranter struct {
	crediter ResourceCrediter
}

// NewResourceGranter constructs a granter backed by the given crediter.
func NewResourceGranter(crediter ResourceCrediter) *ResourceGranter {
	return &ResourceGranter{crediter: crediter}
}

// GrantObjectiveReward credits the reward described by obj.Reward to the
// vault. An empty reward grants nothing and succeeds.
func (g *ResourceGranter) GrantObjectiveReward(ctx context.Context, vaultID string, obj objective.Objective, _ objective.ProgressLink) error {
	if strings.TrimSpace(obj.Reward) == "" {
		return nil
	}
	amount, resourceType, err := ParseReward(obj.Reward)
	if err != nil {
		return fmt.Errorf("objective %s: %w", obj.ID, err)
	}
	if g == nil || g.crediter == nil {
		return ErrCrediterNotConfigured
	}
	if err := g.crediter.AddResource(ctx, vaultID, resourceType, amount); err != nil {
		return fmt.Errorf("credit %d %s to vault %s: %w", amount, resourceType, vaultID, err)
	}
	return nil
}

// ParseReward splits reward text of the form "<amount> <resource>" into a
// positive amount and a canonical resource token. "500 caps" and
// "500 Bottle Caps" both yield (500, "caps").
func ParseReward(text string) (int, string, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return 0, "", fmt.Errorf("reward: malformed reward text %q", text)
	}
	amount, err := strconv.Atoi(fields[0])
	if err != nil || amount <= 0 {
		return 0, "", fmt.Errorf("reward: invalid amount in reward text %q", text)
	}
	resourceType, ok := criteria.NormalizeResourceType(strings.Join(fields[1:], " "))
	if !ok {
		return 0, "", fmt.Errorf("reward: unknown resource in reward text %q", text)
	}
	return amount, resourceType, nil
}
