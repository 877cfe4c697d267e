package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLRU(size int, ttl time.Duration) (*LRU[string], *clock) {
	c := &clock{t: time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)}
	lru := NewLRU[string](size, ttl)
	lru.now = c.now
	return lru, c
}

func TestLRU_GetSet(t *testing.T) {
	lru, _ := newTestLRU(2, time.Minute)

	if _, ok := lru.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	lru.Set("a", "1")
	lru.Set("b", "2")
	if v, ok := lru.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	// a was used last, so b is evicted
	lru.Set("c", "3")
	if _, ok := lru.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if lru.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", lru.Len())
	}

	lru.Set("a", "updated")
	if v, _ := lru.Get("a"); v != "updated" {
		t.Fatalf("expected overwrite, got %q", v)
	}

	stats := lru.Stats()
	if stats.Hits != 2 || stats.Misses != 2 || stats.Entries != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestLRU_Expiry(t *testing.T) {
	lru, clk := newTestLRU(10, time.Minute)
	lru.Set("a", "1")
	lru.Set("b", "2")

	clk.t = clk.t.Add(30 * time.Second)
	lru.Set("c", "3")

	clk.t = clk.t.Add(45 * time.Second)
	if _, ok := lru.Get("a"); ok {
		t.Fatal("expected a to have expired")
	}
	if n := lru.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", n)
	}
	if _, ok := lru.Get("c"); !ok {
		t.Fatal("c should still be live")
	}
}

func TestLRU_GetOrCompute(t *testing.T) {
	lru, _ := newTestLRU(4, time.Minute)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "view", nil
	}

	for i := 0; i < 3; i++ {
		v, err := lru.GetOrCompute("k", compute)
		if err != nil || v != "view" {
			t.Fatalf("GetOrCompute = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}

	boom := errors.New("no data")
	if _, err := lru.GetOrCompute("bad", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, ok := lru.Get("bad"); ok {
		t.Fatal("errors must not be cached")
	}
}

func TestLRU_DeleteAndPurge(t *testing.T) {
	lru, _ := newTestLRU(4, 0)
	lru.Set("a", "1")
	lru.Set("b", "2")
	lru.Delete("a")
	if _, ok := lru.Get("a"); ok {
		t.Fatal("expected a to be deleted")
	}
	lru.Purge()
	if lru.Len() != 0 {
		t.Fatalf("Len() after Purge = %d", lru.Len())
	}
}

func TestManager_Run(t *testing.T) {
	lru, clk := newTestLRU(4, time.Minute)
	lru.Set("a", "1")
	clk.t = clk.t.Add(2 * time.Minute)

	m := NewManager(nil)
	m.Register(lru)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
