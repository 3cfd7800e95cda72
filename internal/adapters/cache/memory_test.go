package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryGetOrComputeCachesWithinTTL(t *testing.T) {
	c := NewMemory()
	now := time.Now()
	c.nowFn = func() time.Time { return now }

	calls := 0
	compute := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.GetOrCompute(context.Background(), "overview", 30*time.Second, compute)
	if err != nil || v.(int) != 1 {
		t.Fatalf("v=%v err=%v", v, err)
	}

	now = now.Add(10 * time.Second)
	v, _ = c.GetOrCompute(context.Background(), "overview", 30*time.Second, compute)
	if v.(int) != 1 || calls != 1 {
		t.Fatalf("cached value expected, v=%v calls=%d", v, calls)
	}

	now = now.Add(21 * time.Second)
	v, _ = c.GetOrCompute(context.Background(), "overview", 30*time.Second, compute)
	if v.(int) != 2 || calls != 2 {
		t.Fatalf("recompute expected after expiry, v=%v calls=%d", v, calls)
	}
}

func TestMemoryComputeErrorNotCached(t *testing.T) {
	c := NewMemory()
	boom := errors.New("boom")
	if _, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	v, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("v=%v err=%v", v, err)
	}
}

func TestMemoryClear(t *testing.T) {
	c := NewMemory()
	calls := 0
	compute := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}
	c.GetOrCompute(context.Background(), "k", time.Minute, compute)
	if err := c.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.GetOrCompute(context.Background(), "k", time.Minute, compute)
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestMemoryKeysIndependent(t *testing.T) {
	c := NewMemory()
	c.GetOrCompute(context.Background(), "a", time.Minute, func(context.Context) (any, error) { return "a", nil })
	v, _ := c.GetOrCompute(context.Background(), "b", time.Minute, func(context.Context) (any, error) { return "b", nil })
	if v != "b" {
		t.Fatalf("v = %v", v)
	}
}
