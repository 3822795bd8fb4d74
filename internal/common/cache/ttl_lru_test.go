package cache

import (
	"testing"
	"time"
)

func TestTTLLRUCache(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		c := NewTTLLRUCache[int](0, time.Second)
		if c != nil {
			t.Fatal("expected nil cache")
		}
		c.Set("a", 1)
		if _, ok := c.Get("a"); ok {
			t.Error("nil cache must miss")
		}
		if c.Len() != 0 {
			t.Error("nil cache must be empty")
		}
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		c := NewTTLLRUCache[string](2, time.Minute)
		c.Set("a", "A")
		c.Set("b", "B")
		if _, ok := c.Get("a"); !ok {
			t.Fatal("expected hit for a")
		}
		c.Set("c", "C")

		if _, ok := c.Get("b"); ok {
			t.Error("b should be evicted")
		}
		if v, ok := c.Get("a"); !ok || v != "A" {
			t.Errorf("unexpected a: %q %v", v, ok)
		}
		if c.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", c.Len())
		}
	})

	t.Run("expires", func(t *testing.T) {
		c := NewTTLLRUCache[int](4, time.Second)
		now := time.Unix(1000, 0)
		c.now = func() time.Time { return now }

		c.Set("a", 1)
		if v, ok := c.Get("a"); !ok || v != 1 {
			t.Fatalf("unexpected: %d %v", v, ok)
		}
		now = now.Add(2 * time.Second)
		if _, ok := c.Get("a"); ok {
			t.Error("expected expiry")
		}
		if c.Len() != 0 {
			t.Error("expired entry should be removed")
		}
	})

	t.Run("purge", func(t *testing.T) {
		c := NewTTLLRUCache[int](4, time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Purge()
		if c.Len() != 0 {
			t.Errorf("expected empty, got %d", c.Len())
		}
		c.Set("c", 3)
		if v, ok := c.Get("c"); !ok || v != 3 {
			t.Error("cache must be usable after purge")
		}
	})
}
