package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ElderEvil/vaultkeeper/internal/services/game/domain/objective"
	"github.com/ElderEvil/vaultkeeper/internal/services/game/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "game.db"))
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

func testObjective(id string, kind objective.Kind) objective.Objective {
	return objective.Objective{
		ID:           id,
		Challenge:    "Collect 100 caps",
		Reward:       "50 caps",
		Category:     objective.CategoryDaily,
		Kind:         kind,
		TargetEntity: map[string]string{"resource_type": "caps"},
		TargetAmount: 100,
	}
}

func TestPutGetObjectiveRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	want := testObjective("obj-1", objective.KindCollect)
	if err := store.PutObjective(ctx, want); err != nil {
		t.Fatalf("put objective: %v", err)
	}

	got, err := store.GetObjective(ctx, "obj-1")
	if err != nil {
		t.Fatalf("get objective: %v", err)
	}
	if got.Challenge != want.Challenge || got.Kind != want.Kind || got.TargetAmount != want.TargetAmount {
		t.Fatalf("objective mismatch: got %+v", got)
	}
	if got.TargetEntity["resource_type"] != "caps" {
		t.Fatalf("expected criteria to survive the round trip, got %v", got.TargetEntity)
	}
}

func TestGetObjectiveNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.GetObjective(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListObjectivesByCategory(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	daily := testObjective("obj-daily", objective.KindCollect)
	weekly := testObjective("obj-weekly", objective.KindBuild)
	weekly.Category = objective.CategoryWeekly
	for _, obj := range []objective.Objective{daily, weekly} {
		if err := store.PutObjective(ctx, obj); err != nil {
			t.Fatalf("put objective %s: %v", obj.ID, err)
		}
	}

	got, err := store.ListObjectivesByCategory(ctx, objective.CategoryDaily)
	if err != nil {
		t.Fatalf("list daily objectives: %v", err)
	}
	if len(got) != 1 || got[0].ID != "obj-daily" {
		t.Fatalf("expected only the daily objective, got %+v", got)
	}
}

func TestLinkLifecycle(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.PutObjective(ctx, testObjective("obj-1", objective.KindCollect)); err != nil {
		t.Fatalf("put objective: %v", err)
	}
	link := objective.ProgressLink{VaultID: "vault-1", ObjectiveID: "obj-1", Progress: 0, Total: 100}
	if err := store.PutLink(ctx, link); err != nil {
		t.Fatalf("put link: %v", err)
	}

	links, err := store.ListLinksByVault(ctx, "vault-1")
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 1 || links[0].ObjectiveID != "obj-1" {
		t.Fatalf("expected one link, got %+v", links)
	}

	if err := store.DeleteLinksByCategory(ctx, "vault-1", objective.CategoryDaily); err != nil {
		t.Fatalf("delete daily links: %v", err)
	}
	links, err = store.ListLinksByVault(ctx, "vault-1")
	if err != nil {
		t.Fatalf("list links after delete: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("expected no links after category delete, got %+v", links)
	}
}

func TestListActiveLinksFiltersKindAndCompletion(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	collect := testObjective("obj-collect", objective.KindCollect)
	build := testObjective("obj-build", objective.KindBuild)
	done := testObjective("obj-done", objective.KindCollect)
	for _, obj := range []objective.Objective{collect, build, done} {
		if err := store.PutObjective(ctx, obj); err != nil {
			t.Fatalf("put objective %s: %v", obj.ID, err)
		}
	}
	links := []objective.ProgressLink{
		{VaultID: "vault-1", ObjectiveID: "obj-collect", Total: 100},
		{VaultID: "vault-1", ObjectiveID: "obj-build", Total: 100},
		{VaultID: "vault-1", ObjectiveID: "obj-done", Progress: 100, Total: 100, IsCompleted: true},
		{VaultID: "vault-2", ObjectiveID: "obj-collect", Total: 100},
	}
	for _, link := range links {
		if err := store.PutLink(ctx, link); err != nil {
			t.Fatalf("put link %s/%s: %v", link.VaultID, link.ObjectiveID, err)
		}
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	active, err := tx.ListActiveLinks(ctx, "vault-1", objective.KindCollect)
	if err != nil {
		t.Fatalf("list active links: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected one active collect link, got %d", len(active))
	}
	if active[0].Link.ObjectiveID != "obj-collect" {
		t.Fatalf("expected the incomplete collect link, got %+v", active[0].Link)
	}
	if active[0].Objective.Kind != objective.KindCollect {
		t.Fatalf("expected joined objective, got %+v", active[0].Objective)
	}
}

func TestTxCommitPersistsLinkUpdate(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.PutObjective(ctx, testObjective("obj-1", objective.KindCollect)); err != nil {
		t.Fatalf("put objective: %v", err)
	}
	if err := store.PutLink(ctx, objective.ProgressLink{VaultID: "vault-1", ObjectiveID: "obj-1", Total: 100}); err != nil {
		t.Fatalf("put link: %v", err)
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	updated := objective.ProgressLink{VaultID: "vault-1", ObjectiveID: "obj-1", Progress: 50, Total: 100}
	if err := tx.UpdateLink(ctx, updated); err != nil {
		t.Fatalf("update link: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	links, err := store.ListLinksByVault(ctx, "vault-1")
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 1 || links[0].Progress != 50 {
		t.Fatalf("expected committed progress 50, got %+v", links)
	}
}

func TestTxRollbackDiscardsLinkUpdate(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.PutObjective(ctx, testObjective("obj-1", objective.KindCollect)); err != nil {
		t.Fatalf("put objective: %v", err)
	}
	if err := store.PutLink(ctx, objective.ProgressLink{VaultID: "vault-1", ObjectiveID: "obj-1", Total: 100}); err != nil {
		t.Fatalf("put link: %v", err)
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	if err := tx.UpdateLink(ctx, objective.ProgressLink{VaultID: "vault-1", ObjectiveID: "obj-1", Progress: 99, Total: 100}); err != nil {
		t.Fatalf("update link: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	links, err := store.ListLinksByVault(ctx, "vault-1")
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 1 || links[0].Progress != 0 {
		t.Fatalf("expected rollback to discard progress, got %+v", links)
	}
}
