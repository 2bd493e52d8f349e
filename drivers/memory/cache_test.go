package memory

import (
	"context"
	"testing"
	"time"

	"github.com/pumped-fn/kernel/component"
)

func TestCacheGetSetMiss(t *testing.T) {
	c := NewCache(0)
	ctx := context.Background()

	res, err := c.Get(ctx, "missing", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.Hit {
		t.Fatalf("expected miss on empty cache")
	}

	if err := c.Set(ctx, "k", 42, component.CacheOptions{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	res, err = c.Get(ctx, "k", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !res.Hit || res.Value != 42 {
		t.Fatalf("got %+v, want hit with value 42", res)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(0)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute).UnixMilli()
	if err := c.Set(ctx, "k", "v", component.CacheOptions{ExpiryMS: past}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	res, err := c.Get(ctx, "k", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.Hit {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestCacheVersionMismatch(t *testing.T) {
	c := NewCache(0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v1", component.CacheOptions{Version: "a"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if res, _ := c.Get(ctx, "k", "b"); res.Hit {
		t.Fatalf("expected version mismatch to miss")
	}
	if res, _ := c.Get(ctx, "k", "a"); !res.Hit {
		t.Fatalf("expected matching version to hit")
	}
}

func TestCacheDisable(t *testing.T) {
	c := NewCache(0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", component.CacheOptions{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c.Disable()

	if res, _ := c.Get(ctx, "k", ""); res.Hit {
		t.Fatalf("expected disabled cache to always miss")
	}
	if err := c.Set(ctx, "k2", "v2", component.CacheOptions{}); err != nil {
		t.Fatalf("Set while disabled: %v", err)
	}
	c.Enable()
	if res, _ := c.Get(ctx, "k2", ""); res.Hit {
		t.Fatalf("Set while disabled must not have stored anything")
	}
}

func TestCacheKeysGlob(t *testing.T) {
	c := NewCache(0)
	ctx := context.Background()

	for _, k := range []string{"user:1", "user:2", "order:1"} {
		if err := c.Set(ctx, k, k, component.CacheOptions{}); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	keys, err := c.Keys(ctx, "user:*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}

	count, err := c.Count(ctx, "*")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("got count %d, want 3", count)
	}
}

func TestCacheDelete(t *testing.T) {
	c := NewCache(0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", component.CacheOptions{}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	value, hadValue, err := c.Delete(ctx, "k")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !hadValue || value != "v" {
		t.Fatalf("got (%v, %v), want (v, true)", value, hadValue)
	}

	_, hadValue, err = c.Delete(ctx, "k")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if hadValue {
		t.Fatalf("expected second delete to report no prior value")
	}
}

func TestCacheRenewable(t *testing.T) {
	c := NewCache(0)
	ctx := context.Background()

	calls := 0
	producer := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	expiry := time.Now().Add(30 * time.Millisecond).UnixMilli()
	if err := c.Set(ctx, "k", 1, component.CacheOptions{ExpiryMS: expiry, Renewable: true, Producer: producer}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	res, err := c.Get(ctx, "k", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !res.Hit {
		t.Fatalf("expected renewable entry to have rearmed itself")
	}
}
