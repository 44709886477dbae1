// Package app wires the objective-tracking runtime: stores, event bus,
// evaluators, assignment, rewards and completion notifications.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ElderEvil/vaultkeeper/internal/platform/random"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/event"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/evaluator"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/notifier"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/reward"
	gamesqlite "github.com/ElderEvil/vaultkeeper/internal/services/game/storage/sqlite"
	notifdomain "github.com/ElderEvil/vaultkeeper/internal/services/notifications/domain"
	notifsqlite "github.com/ElderEvil/vaultkeeper/internal/services/notifications/storage/sqlite"
	vaultdomain "github.com/ElderEvil/vaultkeeper/internal/services/vault/domain"
	vaultsqlite "github.com/ElderEvil/vaultkeeper/internal/services/vault/storage/sqlite"
)

// Config holds the storage paths for one runtime.
type Config struct {
	GameDBPath          string
	VaultDBPath         string
	NotificationsDBPath string
}

// Runtime is the composition root for objective tracking. It owns the
// stores and the bus, constructs every service on top of them and tears
// the whole thing down in reverse order.
type Runtime struct {
	Bus *event.Bus

	Objectives    *gamesqlite.Store
	Vaults        *vaultsqlite.Store
	Notifications *notifsqlite.Store

	VaultService        *vaultdomain.Service
	NotificationService *notifdomain.Service
	Assignments         *objective.AssignmentService
	Manager             *evaluator.Manager
	Notifier            *notifier.Notifier
}

// NewRuntime opens the stores and wires every component. The evaluator
// manager is initialized before return; events emitted afterwards are
// tracked.
func NewRuntime(cfg Config) (*Runtime, error) {
	objectives, err := gamesqlite.Open(cfg.GameDBPath)
	if err != nil {
		return nil, fmt.Errorf("open objective store: %w", err)
	}
	vaults, err := vaultsqlite.Open(cfg.VaultDBPath)
	if err != nil {
		_ = objectives.Close()
		return nil, fmt.Errorf("open vault store: %w", err)
	}
	notifications, err := notifsqlite.Open(cfg.NotificationsDBPath)
	if err != nil {
		_ = objectives.Close()
		_ = vaults.Close()
		return nil, fmt.Errorf("open notification store: %w", err)
	}

	rng, err := random.NewRand()
	if err != nil {
		_ = objectives.Close()
		_ = vaults.Close()
		_ = notifications.Close()
		return nil, fmt.Errorf("seed assignment rng: %w", err)
	}

	bus := event.NewBus()
	notificationService := notifdomain.NewService(notifications, nil, nil)

	rt := &Runtime{
		Bus:                 bus,
		Objectives:          objectives,
		Vaults:              vaults,
		Notifications:       notifications,
		VaultService:        vaultdomain.NewService(vaults, bus, nil, nil),
		NotificationService: notificationService,
		Assignments:         objective.NewAssignmentService(objectives, rng),
		Manager:             evaluator.NewManager(bus, objectives, vaults, reward.NewResourceGranter(vaults)),
		Notifier:            notifier.New(vaults, notificationService, bus),
	}
	rt.Manager.Initialize()
	return rt, nil
}

// Close shuts the runtime down: subscriptions first, stores last.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.Manager != nil {
		r.Manager.Shutdown()
	}
	if r.Notifier != nil {
		r.Notifier.Close()
	}
	if r.Bus != nil {
		r.Bus.Clear()
	}
	var errs []error
	if r.Objectives != nil {
		errs = append(errs, r.Objectives.Close())
	}
	if r.Vaults != nil {
		errs = append(errs, r.Vaults.Close())
	}
	if r.Notifications != nil {
		errs = append(errs, r.Notifications.Close())
	}
	return errors.Join(errs...)
}

// Run builds a runtime and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	rt, err := NewRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Printf("runtime close: %v", err)
		}
	}()

	log.Printf("objective tracking running: %d evaluators", len(rt.Manager.Evaluators()))
	<-ctx.Done()
	return nil
}
