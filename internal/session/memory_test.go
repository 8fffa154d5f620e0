package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/esportlife/site/internal/domain"
	"github.com/esportlife/site/internal/session"
)

var _ domain.SessionStore = (*session.MemoryStore)(nil)

func TestMemoryStore_CreateLookupDelete(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()
	ctx := context.Background()

	sess, err := store.Create(ctx, 42, "Ana")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := store.Lookup(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.UserID != 42 || got.DisplayName != "Ana" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Lookup(ctx, sess.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()

	if err := store.Delete(context.Background(), "does-not-exist"); err != nil {
		t.Fatalf("Delete unknown token: %v", err)
	}
}

func TestMemoryStore_LookupUnknown(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()

	if _, err := store.Lookup(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := session.NewMemoryStore(time.Minute, 0)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	sess, err := store.Create(ctx, 1, "Ana")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	now = now.Add(59 * time.Second)
	if _, err := store.Lookup(ctx, sess.Token); err != nil {
		t.Fatalf("expected session to be live before TTL, got %v", err)
	}

	now = now.Add(time.Second)
	if _, err := store.Lookup(ctx, sess.Token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session to be evicted on lookup, %d left", store.Len())
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := session.NewMemoryStore(time.Minute, 0)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	for i := 0; i < 5; i++ {
		if _, err := store.Create(ctx, int64(i), "user"); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	now = now.Add(30 * time.Second)
	fresh, err := store.Create(ctx, 99, "fresh")
	if err != nil {
		t.Fatalf("Create fresh: %v", err)
	}

	now = now.Add(45 * time.Second)
	if removed := store.Sweep(); removed != 5 {
		t.Fatalf("expected 5 sessions swept, got %d", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session left, got %d", store.Len())
	}
	if _, err := store.Lookup(ctx, fresh.Token); err != nil {
		t.Fatalf("fresh session should survive the sweep: %v", err)
	}
}

func TestMemoryStore_BackgroundSweeper(t *testing.T) {
	store := session.NewMemoryStore(time.Millisecond, 5*time.Millisecond)
	defer store.Close()

	if _, err := store.Create(context.Background(), 1, "Ana"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("background sweeper did not remove the expired session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, time.Hour)
	if err := store.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, 0)
	defer store.Close()
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := store.Create(ctx, int64(i), fmt.Sprintf("user-%d", i))
			if err != nil {
				errs <- err
				return
			}
			got, err := store.Lookup(ctx, sess.Token)
			if err != nil {
				errs <- err
				return
			}
			if got.UserID != int64(i) {
				errs <- fmt.Errorf("session %d resolved to user %d", i, got.UserID)
				return
			}
			if err := store.Delete(ctx, sess.Token); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
