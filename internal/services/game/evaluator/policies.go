package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/criteria"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/event"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
)

// Policies returns one policy per objective kind, in registration order.
// The kind set is closed; new kinds are added here, not discovered at
// runtime.
func Policies() []Policy {
	return []Policy{
		collectPolicy{},
		buildPolicy{},
		trainPolicy{},
		assignPolicy{},
		assignCorrectPolicy{},
		reachPolicy{},
		expeditionPolicy{},
		levelUpPolicy{},
	}
}

// collectPolicy matches resource and item collection against the
// objective's resource_type/item_type criteria.
type collectPolicy struct{}

func (collectPolicy) Kind() objective.Kind { return objective.KindCollect }

func (collectPolicy) Events() []event.Type {
	return []event.Type{event.TypeResourceCollected, event.TypeItemCollected}
}

func (collectPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	switch payload := env.Payload.(type) {
	case event.ResourceCollected:
		target := obj.TargetEntity[criteria.KeyResourceType]
		if criteria.IsWildcard(target) {
			// An objective targeting a specific item does not progress on
			// resource collection.
			return criteria.IsWildcard(obj.TargetEntity[criteria.KeyItemType])
		}
		return sameToken(target, payload.ResourceType, criteria.NormalizeResourceType)
	case event.ItemCollected:
		target := obj.TargetEntity[criteria.KeyItemType]
		if criteria.IsWildcard(target) {
			return criteria.IsWildcard(obj.TargetEntity[criteria.KeyResourceType])
		}
		return sameToken(target, payload.ItemType, criteria.NormalizeItemType)
	default:
		return false
	}
}

func (collectPolicy) Amount(env event.Envelope) int {
	switch payload := env.Payload.(type) {
	case event.ResourceCollected:
		return defaultAmount(payload.Amount)
	case event.ItemCollected:
		return defaultAmount(payload.Amount)
	default:
		return 1
	}
}

// buildPolicy matches room construction and upgrades against the
// objective's room_type criteria.
type buildPolicy struct{}

func (buildPolicy) Kind() objective.Kind { return objective.KindBuild }

func (buildPolicy) Events() []event.Type {
	return []event.Type{event.TypeRoomBuilt, event.TypeRoomUpgraded}
}

func (buildPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	var roomType string
	switch payload := env.Payload.(type) {
	case event.RoomBuilt:
		roomType = payload.RoomType
	case event.RoomUpgraded:
		roomType = payload.RoomType
	default:
		return false
	}
	target := obj.TargetEntity[criteria.KeyRoomType]
	if criteria.IsWildcard(target) {
		return true
	}
	return sameToken(target, roomType, criteria.NormalizeRoomType)
}

func (buildPolicy) Amount(env event.Envelope) int { return 1 }

// trainPolicy matches completed training sessions against the objective's
// stat criteria.
type trainPolicy struct{}

func (trainPolicy) Kind() objective.Kind { return objective.KindTrain }

func (trainPolicy) Events() []event.Type {
	return []event.Type{event.TypeDwellerTrained}
}

func (trainPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	payload, ok := env.Payload.(event.DwellerTrained)
	if !ok {
		return false
	}
	target := obj.TargetEntity[criteria.KeyStat]
	if criteria.IsWildcard(target) {
		return true
	}
	return normalizeStat(target) == normalizeStat(payload.StatTrained)
}

func (trainPolicy) Amount(env event.Envelope) int { return 1 }

// assignPolicy matches room assignments against the objective's room_type
// criteria.
type assignPolicy struct{}

func (assignPolicy) Kind() objective.Kind { return objective.KindAssign }

func (assignPolicy) Events() []event.Type {
	return []event.Type{event.TypeDwellerAssigned}
}

func (assignPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	payload, ok := env.Payload.(event.DwellerAssigned)
	if !ok {
		return false
	}
	target := obj.TargetEntity[criteria.KeyRoomType]
	if criteria.IsWildcard(target) {
		return true
	}
	return sameToken(target, payload.RoomType, criteria.NormalizeRoomType)
}

func (assignPolicy) Amount(env event.Envelope) int { return 1 }

// assignCorrectPolicy matches only assignments flagged as stat-correct.
type assignCorrectPolicy struct{}

func (assignCorrectPolicy) Kind() objective.Kind { return objective.KindAssignCorrect }

func (assignCorrectPolicy) Events() []event.Type {
	return []event.Type{event.TypeDwellerAssignedCorrectly}
}

func (assignCorrectPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	payload, ok := env.Payload.(event.DwellerAssignedCorrectly)
	return ok && payload.IsCorrect
}

func (assignCorrectPolicy) Amount(env event.Envelope) int { return 1 }

// reachPolicy tracks absolute milestones: vault population or dweller
// level. Progress is replaced with a fresh snapshot on each firing rather
// than incremented.
type reachPolicy struct{}

func (reachPolicy) Kind() objective.Kind { return objective.KindReach }

func (reachPolicy) Events() []event.Type {
	return []event.Type{event.TypeDwellerLeveledUp, event.TypeDwellerAssigned}
}

func (reachPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	switch obj.TargetEntity[criteria.KeyReachType] {
	case criteria.ReachDwellerCount, criteria.ReachPopulation:
		return env.Type == event.TypeDwellerAssigned
	case criteria.ReachLevel:
		return env.Type == event.TypeDwellerLeveledUp
	default:
		// Missing or unknown reach_type never matches.
		return false
	}
}

func (reachPolicy) Amount(env event.Envelope) int { return 0 }

func (reachPolicy) Value(ctx context.Context, dwellers DwellerCounter, env event.Envelope) (int, error) {
	if env.Type == event.TypeDwellerLeveledUp {
		payload, ok := env.Payload.(event.DwellerLeveledUp)
		if !ok {
			return 0, nil
		}
		return payload.Level, nil
	}
	if dwellers == nil {
		return 0, fmt.Errorf("dweller counter is not configured")
	}
	count, err := dwellers.CountDwellers(ctx, env.VaultID)
	if err != nil {
		return 0, fmt.Errorf("count dwellers for vault %s: %w", env.VaultID, err)
	}
	return count, nil
}

// expeditionPolicy matches completed quests against the objective's
// quest_type criteria.
type expeditionPolicy struct{}

func (expeditionPolicy) Kind() objective.Kind { return objective.KindExpedition }

func (expeditionPolicy) Events() []event.Type {
	return []event.Type{event.TypeQuestCompleted}
}

func (expeditionPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	payload, ok := env.Payload.(event.QuestCompleted)
	if !ok {
		return false
	}
	target := obj.TargetEntity[criteria.KeyQuestType]
	if criteria.IsWildcard(target) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(target), strings.TrimSpace(payload.QuestType))
}

func (expeditionPolicy) Amount(env event.Envelope) int { return 1 }

// levelUpPolicy matches dwellers reaching the objective's minimum level.
type levelUpPolicy struct{}

func (levelUpPolicy) Kind() objective.Kind { return objective.KindLevelUp }

func (levelUpPolicy) Events() []event.Type {
	return []event.Type{event.TypeDwellerLeveledUp}
}

func (levelUpPolicy) Matches(obj objective.Objective, env event.Envelope) bool {
	payload, ok := env.Payload.(event.DwellerLeveledUp)
	if !ok {
		return false
	}
	minLevel := parseIntDefault(obj.TargetEntity[criteria.KeyMinLevel], 1)
	return payload.Level >= minLevel
}

func (levelUpPolicy) Amount(env event.Envelope) int { return 1 }

func sameToken(target, observed string, normalize func(string) (string, bool)) bool {
	targetToken, ok := normalize(target)
	if !ok {
		return false
	}
	observedToken, ok := normalize(observed)
	if !ok {
		return false
	}
	return targetToken == observedToken
}

func normalizeStat(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func defaultAmount(amount int) int {
	if amount <= 0 {
		return 1
	}
	return amount
}

func parseIntDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
