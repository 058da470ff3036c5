package cache

import (
	"testing"
	"time"
)

func TestLRUGetSetDelete(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %d (ok=%v)", v, ok)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch a so b becomes the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[string](10, -time.Second) // already expired on insert
	c.Set("a", "x")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}

	if n := c.CleanExpired(); n != 0 {
		// Get already removed it.
		t.Fatalf("expected nothing left to clean, got %d", n)
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("history:s1:1", 1)
	c.Set("history:s1:2", 2)
	c.Set("history:s2:1", 3)
	c.Set("balance:s1", 4)

	if n := c.DeletePrefix("history:s1:"); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if _, ok := c.Get("history:s1:1"); ok {
		t.Fatal("expected history:s1:1 gone")
	}
	if _, ok := c.Get("history:s2:1"); !ok {
		t.Fatal("expected other session untouched")
	}
	if _, ok := c.Get("balance:s1"); !ok {
		t.Fatal("expected balance key untouched")
	}
}
