package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ElderEvil/vaultkeeper/internal/platform/id"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/criteria"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/event"
)

var (
	// ErrNotFound indicates a vault, dweller or room record was not found.
	ErrNotFound = errors.New("vault record not found")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("vault store is not configured")
	// ErrOwnerUserIDRequired indicates vault ownership is required.
	ErrOwnerUserIDRequired = errors.New("owner user id is required")
	// ErrVaultIDRequired indicates a vault identifier is required.
	ErrVaultIDRequired = errors.New("vault id is required")
	// ErrAmountInvalid indicates a collection amount must be positive.
	ErrAmountInvalid = errors.New("amount must be positive")
	// ErrUnknownResourceType indicates a resource token outside the vocabulary.
	ErrUnknownResourceType = errors.New("unknown resource type")
	// ErrUnknownItemType indicates an item token outside the vocabulary.
	ErrUnknownItemType = errors.New("unknown item type")
	// ErrUnknownRoomType indicates a room token outside the vocabulary.
	ErrUnknownRoomType = errors.New("unknown room type")
	// ErrUnknownStat indicates a stat token outside the attribute set.
	ErrUnknownStat = errors.New("unknown stat")
	// ErrQuestTypeRequired indicates a quest type is required.
	ErrQuestTypeRequired = errors.New("quest type is required")
	// ErrWrongVault indicates a record belongs to a different vault.
	ErrWrongVault = errors.New("record belongs to a different vault")
)

// Store is the domain persistence boundary for vault state.
type Store interface {
	PutVault(ctx context.Context, vault Vault) error
	GetVault(ctx context.Context, vaultID string) (Vault, error)
	PutDweller(ctx context.Context, dweller Dweller) error
	GetDweller(ctx context.Context, dwellerID string) (Dweller, error)
	CountDwellers(ctx context.Context, vaultID string) (int, error)
	PutRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, roomID string) (Room, error)
	AddResource(ctx context.Context, vaultID, resourceType string, amount int) error
	GetResource(ctx context.Context, vaultID, resourceType string) (int, error)
	AddItem(ctx context.Context, vaultID, itemType string, amount int) error
}

// Service orchestrates vault gameplay. Each operation persists its state
// change and then emits the matching event; emission failures are the
// bus's concern, not the caller's.
type Service struct {
	store Store
	bus   *event.Bus
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs vault gameplay use-cases.
func NewService(store Store, bus *event.Bus, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		bus:   bus,
		clock: clock,
		newID: newID,
	}
}

// CreateVault registers a new shelter for the given owner.
func (s *Service) CreateVault(ctx context.Context, ownerUserID, name string) (Vault, error) {
	if s == nil || s.store == nil {
		return Vault{}, ErrStoreNotConfigured
	}
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Vault{}, ErrOwnerUserIDRequired
	}
	vaultID, err := s.newID()
	if err != nil {
		return Vault{}, err
	}
	vault := Vault{
		ID:          vaultID,
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(name),
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.store.PutVault(ctx, vault); err != nil {
		return Vault{}, fmt.Errorf("put vault: %w", err)
	}
	return vault, nil
}

// AddDweller registers a level-one dweller in the vault.
func (s *Service) AddDweller(ctx context.Context, vaultID, name string, special Special) (Dweller, error) {
	if s == nil || s.store == nil {
		return Dweller{}, ErrStoreNotConfigured
	}
	if _, err := s.store.GetVault(ctx, vaultID); err != nil {
		return Dweller{}, fmt.Errorf("get vault %s: %w", vaultID, err)
	}
	dwellerID, err := s.newID()
	if err != nil {
		return Dweller{}, err
	}
	dweller := Dweller{
		ID:      dwellerID,
		VaultID: vaultID,
		Name:    strings.TrimSpace(name),
		Level:   1,
		Special: special,
	}
	if err := s.store.PutDweller(ctx, dweller); err != nil {
		return Dweller{}, fmt.Errorf("put dweller: %w", err)
	}
	return dweller, nil
}

// CollectResource credits a resource gain and announces it.
func (s *Service) CollectResource(ctx context.Context, vaultID, resourceType string, amount int) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	if strings.TrimSpace(vaultID) == "" {
		return ErrVaultIDRequired
	}
	if amount <= 0 {
		return ErrAmountInvalid
	}
	token, ok := criteria.NormalizeResourceType(resourceType)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownResourceType, resourceType)
	}
	if err := s.store.AddResource(ctx, vaultID, token, amount); err != nil {
		return fmt.Errorf("add resource %s to vault %s: %w", token, vaultID, err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeResourceCollected,
		VaultID: vaultID,
		Payload: event.ResourceCollected{ResourceType: token, Amount: amount},
	})
	return nil
}

// CollectItem records an item gain and announces it.
func (s *Service) CollectItem(ctx context.Context, vaultID, itemType string, amount int) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	if strings.TrimSpace(vaultID) == "" {
		return ErrVaultIDRequired
	}
	if amount <= 0 {
		return ErrAmountInvalid
	}
	token, ok := criteria.NormalizeItemType(itemType)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItemType, itemType)
	}
	if err := s.store.AddItem(ctx, vaultID, token, amount); err != nil {
		return fmt.Errorf("add item %s to vault %s: %w", token, vaultID, err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeItemCollected,
		VaultID: vaultID,
		Payload: event.ItemCollected{ItemType: token, Amount: amount},
	})
	return nil
}

// BuildRoom constructs a level-one room and announces it.
func (s *Service) BuildRoom(ctx context.Context, vaultID, roomType string) (Room, error) {
	if s == nil || s.store == nil {
		return Room{}, ErrStoreNotConfigured
	}
	if _, err := s.store.GetVault(ctx, vaultID); err != nil {
		return Room{}, fmt.Errorf("get vault %s: %w", vaultID, err)
	}
	token, ok := criteria.NormalizeRoomType(roomType)
	if !ok {
		return Room{}, fmt.Errorf("%w: %q", ErrUnknownRoomType, roomType)
	}
	roomID, err := s.newID()
	if err != nil {
		return Room{}, err
	}
	room := Room{
		ID:      roomID,
		VaultID: vaultID,
		Type:    token,
		Level:   1,
	}
	if err := s.store.PutRoom(ctx, room); err != nil {
		return Room{}, fmt.Errorf("put room: %w", err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeRoomBuilt,
		VaultID: vaultID,
		Payload: event.RoomBuilt{RoomType: token},
	})
	return room, nil
}

// UpgradeRoom raises a room one level and announces it.
func (s *Service) UpgradeRoom(ctx context.Context, vaultID, roomID string) (Room, error) {
	if s == nil || s.store == nil {
		return Room{}, ErrStoreNotConfigured
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, fmt.Errorf("get room %s: %w", roomID, err)
	}
	if room.VaultID != vaultID {
		return Room{}, ErrWrongVault
	}
	room.Level++
	if err := s.store.PutRoom(ctx, room); err != nil {
		return Room{}, fmt.Errorf("put room: %w", err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeRoomUpgraded,
		VaultID: vaultID,
		Payload: event.RoomUpgraded{RoomType: room.Type, Level: room.Level},
	})
	return room, nil
}

// TrainDweller raises one stat by a point and announces the completed
// session.
func (s *Service) TrainDweller(ctx context.Context, vaultID, dwellerID, stat string) (Dweller, error) {
	if s == nil || s.store == nil {
		return Dweller{}, ErrStoreNotConfigured
	}
	stat = strings.ToLower(strings.TrimSpace(stat))
	if !validStat(stat) {
		return Dweller{}, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	dweller, err := s.store.GetDweller(ctx, dwellerID)
	if err != nil {
		return Dweller{}, fmt.Errorf("get dweller %s: %w", dwellerID, err)
	}
	if dweller.VaultID != vaultID {
		return Dweller{}, ErrWrongVault
	}
	dweller.Special = dweller.Special.Add(stat, 1)
	if err := s.store.PutDweller(ctx, dweller); err != nil {
		return Dweller{}, fmt.Errorf("put dweller: %w", err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeDwellerTrained,
		VaultID: vaultID,
		Payload: event.DwellerTrained{DwellerID: dweller.ID, StatTrained: stat},
	})
	return dweller, nil
}

// AssignDweller places a dweller into a room and announces the
// assignment. An assignment to a room whose governing stat is the
// dweller's strongest additionally counts as correct.
func (s *Service) AssignDweller(ctx context.Context, vaultID, dwellerID, roomID string) (Dweller, error) {
	if s == nil || s.store == nil {
		return Dweller{}, ErrStoreNotConfigured
	}
	dweller, err := s.store.GetDweller(ctx, dwellerID)
	if err != nil {
		return Dweller{}, fmt.Errorf("get dweller %s: %w", dwellerID, err)
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return Dweller{}, fmt.Errorf("get room %s: %w", roomID, err)
	}
	if dweller.VaultID != vaultID || room.VaultID != vaultID {
		return Dweller{}, ErrWrongVault
	}
	dweller.RoomID = room.ID
	if err := s.store.PutDweller(ctx, dweller); err != nil {
		return Dweller{}, fmt.Errorf("put dweller: %w", err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeDwellerAssigned,
		VaultID: vaultID,
		Payload: event.DwellerAssigned{DwellerID: dweller.ID, RoomType: room.Type},
	})
	correct := false
	if stat, ok := GoverningStat(room.Type); ok {
		correct = stat == dweller.Special.Highest()
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeDwellerAssignedCorrectly,
		VaultID: vaultID,
		Payload: event.DwellerAssignedCorrectly{DwellerID: dweller.ID, RoomType: room.Type, IsCorrect: correct},
	})
	return dweller, nil
}

// LevelUpDweller raises a dweller one level and announces it.
func (s *Service) LevelUpDweller(ctx context.Context, vaultID, dwellerID string) (Dweller, error) {
	if s == nil || s.store == nil {
		return Dweller{}, ErrStoreNotConfigured
	}
	dweller, err := s.store.GetDweller(ctx, dwellerID)
	if err != nil {
		return Dweller{}, fmt.Errorf("get dweller %s: %w", dwellerID, err)
	}
	if dweller.VaultID != vaultID {
		return Dweller{}, ErrWrongVault
	}
	dweller.Level++
	if err := s.store.PutDweller(ctx, dweller); err != nil {
		return Dweller{}, fmt.Errorf("put dweller: %w", err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeDwellerLeveledUp,
		VaultID: vaultID,
		Payload: event.DwellerLeveledUp{DwellerID: dweller.ID, Level: dweller.Level},
	})
	return dweller, nil
}

// CompleteQuest announces a finished wasteland quest.
func (s *Service) CompleteQuest(ctx context.Context, vaultID, questType string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	questType = strings.TrimSpace(questType)
	if questType == "" {
		return ErrQuestTypeRequired
	}
	if _, err := s.store.GetVault(ctx, vaultID); err != nil {
		return fmt.Errorf("get vault %s: %w", vaultID, err)
	}
	s.emit(ctx, event.Envelope{
		Type:    event.TypeQuestCompleted,
		VaultID: vaultID,
		Payload: event.QuestCompleted{QuestType: questType},
	})
	return nil
}

func (s *Service) emit(ctx context.Context, env event.Envelope) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(ctx, env)
}

func validStat(stat string) bool {
	for _, known := range Stats() {
		if stat == known {
			return true
		}
	}
	return false
}
