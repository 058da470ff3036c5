package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreCreateGetDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "backend-token", "user-42")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a generated session id")
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "backend-token" || got.UserID != "user-42" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(context.Background(), "no-such-session"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDeleteStale(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "tok", "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Nothing is older than an hour yet.
	n, err := store.DeleteStale(ctx, time.Hour)
	if err != nil {
		t.Fatalf("delete stale: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 stale sessions, got %d", n)
	}

	// Everything is older than zero idle time.
	n, err = store.DeleteStale(ctx, -time.Second)
	if err != nil {
		t.Fatalf("delete stale: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 stale session, got %d", n)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Fatal("empty context should carry no session")
	}
	if _, ok := TokenFromContext(ctx); ok {
		t.Fatal("empty context should carry no token")
	}

	ctx = NewContext(ctx, Session{ID: "s1", Token: "tok", UserID: "u1"})
	sess, ok := FromContext(ctx)
	if !ok || sess.ID != "s1" {
		t.Fatalf("expected session s1, got %+v (ok=%v)", sess, ok)
	}
	tok, ok := TokenFromContext(ctx)
	if !ok || tok != "tok" {
		t.Fatalf("expected token, got %q (ok=%v)", tok, ok)
	}

	// Session without a token reads back as no credential.
	ctx = NewContext(context.Background(), Session{ID: "s2"})
	if _, ok := TokenFromContext(ctx); ok {
		t.Fatal("tokenless session should not yield a token")
	}
}
