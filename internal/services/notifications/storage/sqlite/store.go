// Package sqlite provides SQLite-backed persistence for the notification
// inbox.
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
	"github.com/ElderEvil/vaultkeeper/internal/services/notifications/domain"
	"github.com/ElderEvil/vaultkeeper/internal/services/notifications/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for notification state. It
// satisfies the notification domain Store.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a notification SQLite store at the provided path.
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

// PutNotification inserts one notification record. A duplicate
// recipient+dedupe key pair returns domain.ErrConflict.
func (s *Store) PutNotification(ctx context.Context, notification domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(notification.ID) == "" {
		return fmt.Errorf("notification id is required")
	}
	var readAt any
	if notification.ReadAt != nil {
		readAt = toMillis(*notification.ReadAt)
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notifications (id, recipient_user_id, topic, payload_json, dedupe_key, source, created_at, read_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, notification.ID, notification.RecipientUserID, notification.Topic, notification.PayloadJSON,
		notification.DedupeKey, notification.Source, toMillis(notification.CreatedAt), readAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("put notification %s: %w", notification.ID, err)
	}
	return nil
}

// GetNotificationByRecipientAndDedupeKey loads one notification by its
// recipient-scoped dedupe key.
func (s *Store) GetNotificationByRecipientAndDedupeKey(ctx context.Context, recipientUserID, dedupeKey string) (domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Notification{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Notification{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, recipient_user_id, topic, payload_json, dedupe_key, source, created_at, read_at
FROM notifications
WHERE recipient_user_id = ? AND dedupe_key = ? AND dedupe_key != ''
`, recipientUserID, dedupeKey)
	notification, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, fmt.Errorf("get notification by dedupe key: %w", err)
	}
	return notification, nil
}

// ListNotificationsByRecipient lists inbox notifications newest first.
func (s *Store) ListNotificationsByRecipient(ctx context.Context, recipientUserID string, limit int) ([]domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, recipient_user_id, topic, payload_json, dedupe_key, source, created_at, read_at
FROM notifications
WHERE recipient_user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, recipientUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", recipientUserID, err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		notification, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// CountUnreadNotificationsByRecipient counts unread inbox notifications.
func (s *Store) CountUnreadNotificationsByRecipient(ctx context.Context, recipientUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(*) FROM notifications
WHERE recipient_user_id = ? AND read_at IS NULL
`, recipientUserID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications for %s: %w", recipientUserID, err)
	}
	return count, nil
}

// MarkNotificationRead stamps one recipient notification as read and
// returns the updated record. Marking an already-read notification keeps
// the original timestamp.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientUserID, notificationID string, readAt time.Time) (domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Notification{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Notification{}, fmt.Errorf("storage is not configured")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications
SET read_at = ?
WHERE recipient_user_id = ? AND id = ? AND read_at IS NULL
`, toMillis(readAt), recipientUserID, notificationID)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification %s read: %w", notificationID, err)
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, recipient_user_id, topic, payload_json, dedupe_key, source, created_at, read_at
FROM notifications
WHERE recipient_user_id = ? AND id = ?
`, recipientUserID, notificationID)
	notification, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, fmt.Errorf("get notification %s: %w", notificationID, err)
	}
	return notification, nil
}

func scanNotification(scan func(dest ...any) error) (domain.Notification, error) {
	var (
		notification domain.Notification
		createdAt    int64
		readAt       sql.NullInt64
	)
	if err := scan(
		&notification.ID, &notification.RecipientUserID, &notification.Topic,
		&notification.PayloadJSON, &notification.DedupeKey, &notification.Source,
		&createdAt, &readAt,
	); err != nil {
		return domain.Notification{}, err
	}
	notification.CreatedAt = time.UnixMilli(createdAt).UTC()
	if readAt.Valid {
		t := time.UnixMilli(readAt.Int64).UTC()
		notification.ReadAt = &t
	}
	return notification, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
