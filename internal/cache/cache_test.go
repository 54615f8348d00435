package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	c := New[string, int](100)
	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.Capacity() != 100 {
		t.Errorf("expected capacity 100, got %d", c.Capacity())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 42, 1)

	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = %d, %v; want 42, true", val, ok)
	}
	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected nonexistent key to not exist")
	}

	c.Set("key1", 43, 3)
	if c.Cost() != 3 {
		t.Errorf("Cost() after replace = %d, want 3", c.Cost())
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c := New[string, int](10)
	loads := 0

	load := func() (int, int, error) {
		loads++
		return 100, 1, nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("key1", load)
		if err != nil || v != 100 {
			t.Fatalf("GetOrLoad = %d, %v; want 100, nil", v, err)
		}
	}
	if loads != 1 {
		t.Errorf("load called %d times, want 1", loads)
	}
}

func TestCacheGetOrLoadError(t *testing.T) {
	c := New[string, int](10)
	errBroken := errors.New("broken file")

	_, err := c.GetOrLoad("bad", func() (int, int, error) { return 0, 0, errBroken })
	if !errors.Is(err, errBroken) {
		t.Errorf("GetOrLoad error = %v, want %v", err, errBroken)
	}
	if c.Len() != 0 {
		t.Error("failed load should not be cached")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[string, int](10)
	c.Set("key1", 42, 2)

	if !c.Delete("key1") {
		t.Error("expected Delete to return true for existing key")
	}
	if c.Cost() != 0 {
		t.Errorf("Cost() after delete = %d, want 0", c.Cost())
	}
	if c.Delete("key1") {
		t.Error("expected Delete to return false for missing key")
	}
}

func TestCacheEviction(t *testing.T) {
	c := New[string, int](100)

	for i := 0; i < 4; i++ {
		c.Set(strconv.Itoa(i), i, 25)
	}
	c.Get("0") // refresh the oldest

	c.Set("new", 100, 25)

	if c.Cost() > 75 {
		t.Errorf("Cost() = %d after eviction, want <= 75", c.Cost())
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("expected new entry to exist")
	}
	if _, ok := c.Get("0"); !ok {
		t.Error("recently used entry should survive")
	}
	if _, ok := c.Get("1"); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestCacheOversizedEntryKept(t *testing.T) {
	c := New[string, int](10)
	c.Set("a", 1, 5)
	c.Set("huge", 2, 50)

	if _, ok := c.Get("huge"); !ok {
		t.Error("entry just set should never be evicted by its own Set")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("older entry should be evicted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New[string, int](10)
	c.Set("key1", 1, 1)
	c.Set("key2", 2, 1)
	c.Clear()

	if c.Len() != 0 || c.Cost() != 0 {
		t.Errorf("after Clear: len=%d cost=%d", c.Len(), c.Cost())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](1000)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(base*100+j, j, 1)
				c.Get(base*100 + j)
				_, _ = c.GetOrLoad(j, func() (int, int, error) { return j, 1, nil })
			}
		}(i)
	}
	wg.Wait()

	if c.Cost() > 1000 {
		t.Errorf("Cost() = %d exceeds soft limit", c.Cost())
	}
}
