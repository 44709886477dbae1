// Package notifier turns objective completions into inbox notifications
// for the vault's owner.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/event"
	notifications "github.com/ElderEvil/vaultkeeper/internal/services/notifications/domain"
	vault "github.com/ElderEvil/vaultkeeper/internal/services/vault/domain"
)

// TopicObjectiveCompleted is the inbox topic for completion notifications.
const TopicObjectiveCompleted = "objective.completed"

const source = "game"

// VaultResolver looks up the vault that completed an objective.
type VaultResolver interface {
	GetVault(ctx context.Context, vaultID string) (vault.Vault, error)
}

// IntentCreator records one notification intent. The notifications
// domain service satisfies it.
type IntentCreator interface {
	CreateIntent(ctx context.Context, input notifications.CreateIntentInput) (notifications.Notification, error)
}

// Notifier subscribes to objective completions and writes a dedupe-keyed
// notification for the owning user. Restarted processes replaying a
// completion land on the same dedupe key and create nothing new.
type Notifier struct {
	vaults  VaultResolver
	intents IntentCreator
	bus     *event.Bus

	logf func(format string, args ...any)
}

// New constructs a notifier and subscribes it to completion events.
func New(vaults VaultResolver, intents IntentCreator, bus *event.Bus) *Notifier {
	n := &Notifier{
		vaults:  vaults,
		intents: intents,
		bus:     bus,
		logf:    log.Printf,
	}
	if bus != nil {
		bus.Subscribe(event.TypeObjectiveCompleted, n)
	}
	return n
}

// Close unsubscribes the notifier from the bus.
func (n *Notifier) Close() {
	if n == nil || n.bus == nil {
		return
	}
	n.bus.Unsubscribe(event.TypeObjectiveCompleted, n)
}

// HandleEvent resolves the vault owner and records the completion intent.
func (n *Notifier) HandleEvent(ctx context.Context, env event.Envelope) error {
	if n == nil || n.vaults == nil || n.intents == nil {
		return fmt.Errorf("notifier is not configured")
	}
	payload, ok := env.Payload.(event.ObjectiveCompleted)
	if !ok || payload.ObjectiveID == "" {
		return fmt.Errorf("completion event for vault %s carries no objective id", env.VaultID)
	}

	owner, err := n.vaults.GetVault(ctx, env.VaultID)
	if err != nil {
		return fmt.Errorf("resolve owner of vault %s: %w", env.VaultID, err)
	}

	body, err := json.Marshal(struct {
		VaultID     string `json:"vault_id"`
		ObjectiveID string `json:"objective_id"`
		Challenge   string `json:"challenge,omitempty"`
	}{
		VaultID:     env.VaultID,
		ObjectiveID: payload.ObjectiveID,
		Challenge:   payload.Challenge,
	})
	if err != nil {
		return fmt.Errorf("encode completion payload: %w", err)
	}

	_, err = n.intents.CreateIntent(ctx, notifications.CreateIntentInput{
		RecipientUserID: owner.OwnerUserID,
		Topic:           TopicObjectiveCompleted,
		PayloadJSON:     string(body),
		DedupeKey:       fmt.Sprintf("%s:%s:%s", TopicObjectiveCompleted, env.VaultID, payload.ObjectiveID),
		Source:          source,
	})
	if err != nil {
		return fmt.Errorf("create completion notification for vault %s objective %s: %w", env.VaultID, payload.ObjectiveID, err)
	}
	return nil
}
