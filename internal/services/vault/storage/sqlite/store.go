// Package sqlite provides SQLite-backed persistence for vault state:
// vaults, dwellers, rooms and resource balances.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/ElderEvil/vaultkeeper/internal/platform/storage/sqlitemigrate"
	"github.com/ElderEvil/vaultkeeper/internal/services/vault/domain"
	"github.com/ElderEvil/vaultkeeper/internal/services/vault/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for vault state. It satisfies
// the vault domain Store, the evaluator's dweller counter and the reward
// granter's resource crediter.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a vault SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutVault upserts one vault record.
func (s *Store) PutVault(ctx context.Context, vault domain.Vault) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(vault.ID) == "" {
		return fmt.Errorf("vault id is required")
	}
	now := toMillis(time.Now())
	createdAt := toMillis(vault.CreatedAt)
	if vault.CreatedAt.IsZero() {
		createdAt = now
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO vaults (id, owner_user_id, name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    owner_user_id = excluded.owner_user_id,
    name = excluded.name,
    updated_at = excluded.updated_at
`, vault.ID, vault.OwnerUserID, vault.Name, createdAt, now)
	if err != nil {
		return fmt.Errorf("put vault %s: %w", vault.ID, err)
	}
	return nil
}

// GetVault loads one vault by id.
func (s *Store) GetVault(ctx context.Context, vaultID string) (domain.Vault, error) {
	if err := ctx.Err(); err != nil {
		return domain.Vault{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Vault{}, fmt.Errorf("storage is not configured")
	}
	var (
		vault     domain.Vault
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, owner_user_id, name, created_at
FROM vaults
WHERE id = ?
`, vaultID).Scan(&vault.ID, &vault.OwnerUserID, &vault.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Vault{}, domain.ErrNotFound
		}
		return domain.Vault{}, fmt.Errorf("get vault %s: %w", vaultID, err)
	}
	vault.CreatedAt = time.UnixMilli(createdAt).UTC()
	return vault, nil
}

// PutDweller upserts one dweller record.
func (s *Store) PutDweller(ctx context.Context, dweller domain.Dweller) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(dweller.ID) == "" {
		return fmt.Errorf("dweller id is required")
	}
	now := toMillis(time.Now())
	sp := dweller.Special
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO dwellers (id, vault_id, name, level, room_id,
    strength, perception, endurance, charisma, intelligence, agility, luck,
    created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    vault_id = excluded.vault_id,
    name = excluded.name,
    level = excluded.level,
    room_id = excluded.room_id,
    strength = excluded.strength,
    perception = excluded.perception,
    endurance = excluded.endurance,
    charisma = excluded.charisma,
    intelligence = excluded.intelligence,
    agility = excluded.agility,
    luck = excluded.luck,
    updated_at = excluded.updated_at
`, dweller.ID, dweller.VaultID, dweller.Name, dweller.Level, dweller.RoomID,
		sp.Strength, sp.Perception, sp.Endurance, sp.Charisma, sp.Intelligence, sp.Agility, sp.Luck,
		now, now)
	if err != nil {
		return fmt.Errorf("put dweller %s: %w", dweller.ID, err)
	}
	return nil
}

// GetDweller loads one dweller by id.
func (s *Store) GetDweller(ctx context.Context, dwellerID string) (domain.Dweller, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dweller{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Dweller{}, fmt.Errorf("storage is not configured")
	}
	var dweller domain.Dweller
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, vault_id, name, level, room_id,
       strength, perception, endurance, charisma, intelligence, agility, luck
FROM dwellers
WHERE id = ?
`, dwellerID).Scan(&dweller.ID, &dweller.VaultID, &dweller.Name, &dweller.Level, &dweller.RoomID,
		&dweller.Special.Strength, &dweller.Special.Perception, &dweller.Special.Endurance,
		&dweller.Special.Charisma, &dweller.Special.Intelligence, &dweller.Special.Agility,
		&dweller.Special.Luck)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Dweller{}, domain.ErrNotFound
		}
		return domain.Dweller{}, fmt.Errorf("get dweller %s: %w", dwellerID, err)
	}
	return dweller, nil
}

// CountDwellers returns the live dweller population of one vault.
func (s *Store) CountDwellers(ctx context.Context, vaultID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(*) FROM dwellers WHERE vault_id = ?
`, vaultID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count dwellers for vault %s: %w", vaultID, err)
	}
	return count, nil
}

// PutRoom upserts one room record.
func (s *Store) PutRoom(ctx context.Context, room domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(room.ID) == "" {
		return fmt.Errorf("room id is required")
	}
	now := toMillis(time.Now())
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO rooms (id, vault_id, room_type, level, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    vault_id = excluded.vault_id,
    room_type = excluded.room_type,
    level = excluded.level,
    updated_at = excluded.updated_at
`, room.ID, room.VaultID, room.Type, room.Level, now, now)
	if err != nil {
		return fmt.Errorf("put room %s: %w", room.ID, err)
	}
	return nil
}

// GetRoom loads one room by id.
func (s *Store) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Room{}, fmt.Errorf("storage is not configured")
	}
	var room domain.Room
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT id, vault_id, room_type, level
FROM rooms
WHERE id = ?
`, roomID).Scan(&room.ID, &room.VaultID, &room.Type, &room.Level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, fmt.Errorf("get room %s: %w", roomID, err)
	}
	return room, nil
}

// AddResource credits amount to one vault resource balance.
func (s *Store) AddResource(ctx context.Context, vaultID, resourceType string, amount int) error {
	return s.addBalance(ctx, "vault_resources", "resource_type", vaultID, resourceType, amount)
}

// GetResource returns one vault resource balance, zero when absent.
func (s *Store) GetResource(ctx context.Context, vaultID, resourceType string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var amount int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT amount FROM vault_resources WHERE vault_id = ? AND resource_type = ?
`, vaultID, resourceType).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get resource %s for vault %s: %w", resourceType, vaultID, err)
	}
	return amount, nil
}

// AddItem credits amount to one vault item count.
func (s *Store) AddItem(ctx context.Context, vaultID, itemType string, amount int) error {
	return s.addBalance(ctx, "vault_items", "item_type", vaultID, itemType, amount)
}

func (s *Store) addBalance(ctx context.Context, table, typeColumn, vaultID, typeToken string, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(vaultID) == "" {
		return fmt.Errorf("vault id is required")
	}
	if strings.TrimSpace(typeToken) == "" {
		return fmt.Errorf("%s is required", typeColumn)
	}
	now := toMillis(time.Now())
	query := fmt.Sprintf(`
INSERT INTO %s (vault_id, %s, amount, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(vault_id, %s) DO UPDATE SET
    amount = amount + excluded.amount,
    updated_at = excluded.updated_at
`, table, typeColumn, typeColumn)
	_, err := s.sqlDB.ExecContext(ctx, query, vaultID, typeToken, amount, now)
	if err != nil {
		return fmt.Errorf("add %s %s for vault %s: %w", typeColumn, typeToken, vaultID, err)
	}
	return nil
}
