// Package sqlite provides SQLite-backed persistence for the objective
// catalog and progress links.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/ElderEvil/vaultkeeper/internal/platform/storage/sqlitemigrate"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/storage"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for objective state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens an objective SQLite store at the provided path.
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

// PutObjective upserts one catalog objective template.
func (s *Store) PutObjective(ctx context.Context, obj objective.Objective) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(obj.ID) == "" {
		return fmt.Errorf("objective id is required")
	}
	criteria, err := encodeTargetEntity(obj.TargetEntity)
	if err != nil {
		return err
	}
	now := toMillis(time.Now())
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO objectives (id, challenge, reward, category, kind, target_entity, target_amount, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    challenge = excluded.challenge,
    reward = excluded.reward,
    category = excluded.category,
    kind = excluded.kind,
    target_entity = excluded.target_entity,
    target_amount = excluded.target_amount,
    updated_at = excluded.updated_at
`, obj.ID, obj.Challenge, obj.Reward, string(obj.Category), string(obj.Kind), criteria, obj.TargetAmount, now, now)
	if err != nil {
		return fmt.Errorf("put objective %s: %w", obj.ID, err)
	}
	return nil
}

// GetObjective loads one catalog objective by id.
func (s *Store) GetObjective(ctx context.Context, id string) (objective.Objective, error) {
	if err := ctx.Err(); err != nil {
		return objective.Objective{}, err
	}
	if s == nil || s.sqlDB == nil {
		return objective.Objective{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, challenge, reward, category, kind, target_entity, target_amount
FROM objectives
WHERE id = ?
`, id)
	obj, err := scanObjective(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return objective.Objective{}, storage.ErrNotFound
		}
		return objective.Objective{}, fmt.Errorf("get objective %s: %w", id, err)
	}
	return obj, nil
}

// ListObjectivesByCategory lists catalog objectives in one category.
func (s *Store) ListObjectivesByCategory(ctx context.Context, category objective.Category) ([]objective.Objective, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, challenge, reward, category, kind, target_entity, target_amount
FROM objectives
WHERE category = ?
ORDER BY id
`, string(category))
	if err != nil {
		return nil, fmt.Errorf("list %s objectives: %w", category, err)
	}
	defer rows.Close()

	var out []objective.Objective
	for rows.Next() {
		obj, err := scanObjective(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objectives: %w", err)
	}
	return out, nil
}

// ListLinksByVault lists every progress link for one vault.
func (s *Store) ListLinksByVault(ctx context.Context, vaultID string) ([]objective.ProgressLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT vault_id, objective_id, progress, total, is_completed
FROM objective_links
WHERE vault_id = ?
ORDER BY objective_id
`, vaultID)
	if err != nil {
		return nil, fmt.Errorf("list links for vault %s: %w", vaultID, err)
	}
	defer rows.Close()

	var out []objective.ProgressLink
	for rows.Next() {
		link, err := scanLink(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return out, nil
}

// PutLink upserts one progress link.
func (s *Store) PutLink(ctx context.Context, link objective.ProgressLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return putLinkExec(ctx, s.sqlDB, link)
}

// DeleteLinksByCategory removes every link of one category for a vault.
// This backs the assignment service's refresh path.
func (s *Store) DeleteLinksByCategory(ctx context.Context, vaultID string, category objective.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM objective_links
WHERE vault_id = ?
  AND objective_id IN (SELECT id FROM objectives WHERE category = ?)
`, vaultID, string(category))
	if err != nil {
		return fmt.Errorf("delete %s links for vault %s: %w", category, vaultID, err)
	}
	return nil
}

// Begin opens one evaluator invocation's transactional scope.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin objective tx: %w", err)
	}
	return &tx{sqlTx: sqlTx}, nil
}

type tx struct {
	sqlTx *sql.Tx
}

func (t *tx) ListActiveLinks(ctx context.Context, vaultID string, kind objective.Kind) ([]storage.ActiveLink, error) {
	rows, err := t.sqlTx.QueryContext(ctx, `
SELECT l.vault_id, l.objective_id, l.progress, l.total, l.is_completed,
       o.id, o.challenge, o.reward, o.category, o.kind, o.target_entity, o.target_amount
FROM objective_links l
JOIN objectives o ON o.id = l.objective_id
WHERE l.vault_id = ?
  AND o.kind = ?
  AND l.is_completed = 0
ORDER BY l.objective_id
`, vaultID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list active %s links for vault %s: %w", kind, vaultID, err)
	}
	defer rows.Close()

	var out []storage.ActiveLink
	for rows.Next() {
		var (
			link        objective.ProgressLink
			obj         objective.Objective
			isCompleted int
			category    string
			objKind     string
			criteria    string
		)
		if err := rows.Scan(
			&link.VaultID, &link.ObjectiveID, &link.Progress, &link.Total, &isCompleted,
			&obj.ID, &obj.Challenge, &obj.Reward, &category, &objKind, &criteria, &obj.TargetAmount,
		); err != nil {
			return nil, fmt.Errorf("scan active link: %w", err)
		}
		link.IsCompleted = isCompleted != 0
		obj.Category = objective.Category(category)
		obj.Kind = objective.Kind(objKind)
		target, err := decodeTargetEntity(criteria)
		if err != nil {
			return nil, err
		}
		obj.TargetEntity = target
		out = append(out, storage.ActiveLink{Link: link, Objective: obj})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active links: %w", err)
	}
	return out, nil
}

func (t *tx) UpdateLink(ctx context.Context, link objective.ProgressLink) error {
	return putLinkExec(ctx, t.sqlTx, link)
}

func (t *tx) Commit() error {
	if err := t.sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit objective tx: %w", err)
	}
	return nil
}

func (t *tx) Rollback() error {
	if err := t.sqlTx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback objective tx: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putLinkExec(ctx context.Context, db execer, link objective.ProgressLink) error {
	if strings.TrimSpace(link.VaultID) == "" {
		return fmt.Errorf("vault id is required")
	}
	if strings.TrimSpace(link.ObjectiveID) == "" {
		return fmt.Errorf("objective id is required")
	}
	now := toMillis(time.Now())
	completed := 0
	if link.IsCompleted {
		completed = 1
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO objective_links (vault_id, objective_id, progress, total, is_completed, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(vault_id, objective_id) DO UPDATE SET
    progress = excluded.progress,
    total = excluded.total,
    is_completed = excluded.is_completed,
    updated_at = excluded.updated_at
`, link.VaultID, link.ObjectiveID, link.Progress, link.Total, completed, now, now)
	if err != nil {
		return fmt.Errorf("put link %s/%s: %w", link.VaultID, link.ObjectiveID, err)
	}
	return nil
}

func scanObjective(scan func(dest ...any) error) (objective.Objective, error) {
	var (
		obj      objective.Objective
		category string
		kind     string
		criteria string
	)
	if err := scan(&obj.ID, &obj.Challenge, &obj.Reward, &category, &kind, &criteria, &obj.TargetAmount); err != nil {
		return objective.Objective{}, err
	}
	obj.Category = objective.Category(category)
	obj.Kind = objective.Kind(kind)
	target, err := decodeTargetEntity(criteria)
	if err != nil {
		return objective.Objective{}, err
	}
	obj.TargetEntity = target
	return obj, nil
}

func scanLink(scan func(dest ...any) error) (objective.ProgressLink, error) {
	var (
		link        objective.ProgressLink
		isCompleted int
	)
	if err := scan(&link.VaultID, &link.ObjectiveID, &link.Progress, &link.Total, &isCompleted); err != nil {
		return objective.ProgressLink{}, err
	}
	link.IsCompleted = isCompleted != 0
	return link, nil
}

func encodeTargetEntity(target map[string]string) (string, error) {
	if len(target) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(target)
	if err != nil {
		return "", fmt.Errorf("encode target entity: %w", err)
	}
	return string(encoded), nil
}

func decodeTargetEntity(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" || raw == "{}" {
		return nil, nil
	}
	var target map[string]string
	if err := json.Unmarshal([]byte(raw), &target); err != nil {
		return nil, fmt.Errorf("decode target entity: %w", err)
	}
	return target, nil
}
