package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu            sync.Mutex
	notifications map[string]Notification
	putErr        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{notifications: make(map[string]Notification)}
}

func (s *fakeStore) GetNotificationByRecipientAndDedupeKey(_ context.Context, recipientUserID, dedupeKey string) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.RecipientUserID == recipientUserID && n.DedupeKey == dedupeKey && dedupeKey != "" {
			return n, nil
		}
	}
	return Notification{}, ErrNotFound
}

func (s *fakeStore) PutNotification(_ context.Context, notification Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.notifications[notification.ID] = notification
	return nil
}

func (s *fakeStore) ListNotificationsByRecipient(_ context.Context, recipientUserID string, limit int) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Notification
	for _, n := range s.notifications {
		if n.RecipientUserID == recipientUserID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) CountUnreadNotificationsByRecipient(_ context.Context, recipientUserID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.RecipientUserID == recipientUserID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) MarkNotificationRead(_ context.Context, recipientUserID, notificationID string, readAt time.Time) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.RecipientUserID != recipientUserID {
		return Notification{}, ErrNotFound
	}
	if n.ReadAt == nil {
		n.ReadAt = &readAt
		s.notifications[notificationID] = n
	}
	return n, nil
}

func sequentialIDs() func() (string, error) {
	next := 0
	return func() (string, error) {
		next++
		return fmt.Sprintf("notif-%d", next), nil
	}
}

func newTestService(store Store) *Service {
	base := time.Date(2287, 10, 23, 9, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return NewService(store, clock, sequentialIDs())
}

func TestCreateIntentValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore())
	ctx := context.Background()

	if _, err := svc.CreateIntent(ctx, CreateIntentInput{Topic: "objective.completed"}); !errors.Is(err, ErrRecipientUserIDRequired) {
		t.Fatalf("expected ErrRecipientUserIDRequired, got %v", err)
	}
	if _, err := svc.CreateIntent(ctx, CreateIntentInput{RecipientUserID: "user-1"}); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("expected ErrTopicRequired, got %v", err)
	}
}

func TestCreateIntentDedupesByKey(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	input := CreateIntentInput{
		RecipientUserID: "user-1",
		Topic:           "objective.completed",
		DedupeKey:       "objective.completed:vault-1:obj-1",
	}
	first, err := svc.CreateIntent(ctx, input)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	second, err := svc.CreateIntent(ctx, input)
	if err != nil {
		t.Fatalf("create intent again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected dedupe to return existing %s, got %s", first.ID, second.ID)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(store.notifications))
	}
}

func TestCreateIntentConflictReturnsWinner(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	winner := Notification{
		ID:              "notif-existing",
		RecipientUserID: "user-1",
		Topic:           "objective.completed",
		DedupeKey:       "key-1",
	}
	store.notifications[winner.ID] = winner

	svc := newTestService(&conflictingStore{fakeStore: store, winner: winner})
	got, err := svc.CreateIntent(context.Background(), CreateIntentInput{
		RecipientUserID: "user-1",
		Topic:           "objective.completed",
		DedupeKey:       "key-1",
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if got.ID != winner.ID {
		t.Fatalf("expected conflicting write to surface winner %s, got %s", winner.ID, got.ID)
	}
}

// conflictingStore simulates a concurrent writer winning the dedupe race:
// the first lookup misses, the put conflicts, the retry lookup hits.
type conflictingStore struct {
	*fakeStore
	winner  Notification
	misses  int
	putSeen bool
}

func (s *conflictingStore) GetNotificationByRecipientAndDedupeKey(ctx context.Context, recipientUserID, dedupeKey string) (Notification, error) {
	if !s.putSeen {
		s.misses++
		return Notification{}, ErrNotFound
	}
	return s.winner, nil
}

func (s *conflictingStore) PutNotification(context.Context, Notification) error {
	s.putSeen = true
	return ErrConflict
}

func TestListInboxClampsLimit(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateIntent(ctx, CreateIntentInput{
			RecipientUserID: "user-1",
			Topic:           "objective.completed",
		}); err != nil {
			t.Fatalf("create intent: %v", err)
		}
	}

	got, err := svc.ListInbox(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("list inbox: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	if _, err := svc.ListInbox(ctx, " ", 10); !errors.Is(err, ErrRecipientUserIDRequired) {
		t.Fatalf("expected ErrRecipientUserIDRequired, got %v", err)
	}
}

func TestMarkReadAndCountUnread(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.CreateIntent(ctx, CreateIntentInput{
		RecipientUserID: "user-1",
		Topic:           "objective.completed",
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	unread, err := svc.CountUnread(ctx, "user-1")
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}

	marked, err := svc.MarkRead(ctx, "user-1", created.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if marked.ReadAt == nil {
		t.Fatal("expected read timestamp")
	}

	unread, err = svc.CountUnread(ctx, "user-1")
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}

	if _, err := svc.MarkRead(ctx, "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
