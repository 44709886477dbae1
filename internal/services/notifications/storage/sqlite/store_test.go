package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ElderEvil/vaultkeeper/internal/services/notifications/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "notifications.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func testNotification(id string, createdAt time.Time) domain.Notification {
	return domain.Notification{
		ID:              id,
		RecipientUserID: "user-1",
		Topic:           "objective.completed",
		PayloadJSON:     `{"objective_id":"obj-1"}`,
		Source:          "game",
		CreatedAt:       createdAt,
	}
}

func TestPutAndLookupByDedupeKey(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	notification := testNotification("notif-1", time.Date(2287, 10, 23, 9, 0, 0, 0, time.UTC))
	notification.DedupeKey = "objective.completed:vault-1:obj-1"
	if err := store.PutNotification(ctx, notification); err != nil {
		t.Fatalf("put notification: %v", err)
	}

	got, err := store.GetNotificationByRecipientAndDedupeKey(ctx, "user-1", notification.DedupeKey)
	if err != nil {
		t.Fatalf("get by dedupe key: %v", err)
	}
	if got.ID != "notif-1" || got.Topic != "objective.completed" {
		t.Fatalf("unexpected record %+v", got)
	}

	if _, err := store.GetNotificationByRecipientAndDedupeKey(ctx, "user-1", "other"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateDedupeKeyConflicts(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	first := testNotification("notif-1", time.Now())
	first.DedupeKey = "key-1"
	if err := store.PutNotification(ctx, first); err != nil {
		t.Fatalf("put notification: %v", err)
	}

	second := testNotification("notif-2", time.Now())
	second.DedupeKey = "key-1"
	if err := store.PutNotification(ctx, second); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestEmptyDedupeKeysNeverConflict(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.PutNotification(ctx, testNotification(fmt.Sprintf("notif-%d", i), time.Now())); err != nil {
			t.Fatalf("put notification %d: %v", i, err)
		}
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2287, 10, 23, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := store.PutNotification(ctx, testNotification(fmt.Sprintf("notif-%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("put notification %d: %v", i, err)
		}
	}

	got, err := store.ListNotificationsByRecipient(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].ID != "notif-2" || got[1].ID != "notif-1" {
		t.Fatalf("expected newest first, got %s then %s", got[0].ID, got[1].ID)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutNotification(ctx, testNotification("notif-1", time.Now())); err != nil {
		t.Fatalf("put notification: %v", err)
	}

	firstRead := time.Date(2287, 10, 23, 10, 0, 0, 0, time.UTC)
	marked, err := store.MarkNotificationRead(ctx, "user-1", "notif-1", firstRead)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if marked.ReadAt == nil || !marked.ReadAt.Equal(firstRead) {
		t.Fatalf("expected read at %v, got %v", firstRead, marked.ReadAt)
	}

	again, err := store.MarkNotificationRead(ctx, "user-1", "notif-1", firstRead.Add(time.Hour))
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if !again.ReadAt.Equal(firstRead) {
		t.Fatalf("expected original read timestamp preserved, got %v", again.ReadAt)
	}

	unread, err := store.CountUnreadNotificationsByRecipient(ctx, "user-1")
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}

	if _, err := store.MarkNotificationRead(ctx, "user-1", "missing", firstRead); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
