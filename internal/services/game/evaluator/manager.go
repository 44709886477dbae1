package evaluator

import (
	"sync"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/event"
)

// Manager owns the lifecycle of every evaluator. The application's
// composition root constructs exactly one and calls Initialize at startup
// and Shutdown on the way out; tests construct their own isolated
// instances.
type Manager struct {
	bus      *event.Bus
	store    LinkStore
	dwellers DwellerCounter
	rewards  RewardGranter

	mu          sync.Mutex
	evaluators  []*Evaluator
	initialized bool
}

// NewManager constructs an uninitialized manager.
func NewManager(bus *event.Bus, store LinkStore, dwellers DwellerCounter, rewards RewardGranter) *Manager {
	return &Manager{
		bus:      bus,
		store:    store,
		dwellers: dwellers,
		rewards:  rewards,
	}
}

// Initialize constructs every evaluator and wires its subscriptions.
// Calling it again after the first call is a no-op.
func (m *Manager) Initialize() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return
	}
	for _, policy := range Policies() {
		m.evaluators = append(m.evaluators, New(policy, m.store, m.dwellers, m.rewards, m.bus))
	}
	m.initialized = true
}

// Shutdown unsubscribes every evaluator and allows a clean re-initialize.
func (m *Manager) Shutdown() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.evaluators {
		e.Close()
	}
	m.evaluators = nil
	m.initialized = false
}

// Evaluators returns a snapshot of the current evaluator list.
func (m *Manager) Evaluators() []*Evaluator {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Evaluator, len(m.evaluators))
	copy(out, m.evaluators)
	return out
}

// Initialized reports whether Initialize has run.
func (m *Manager) Initialized() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}
