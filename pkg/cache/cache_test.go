package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New[string]()
	c.Set("greeting", "hello", time.Minute)

	got, ok := c.Get("greeting")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestGetMissing(t *testing.T) {
	c := New[int]()
	if _, ok := c.Get("nope"); ok {
		t.Error("expected cache miss for absent key")
	}
}

func TestExpiry(t *testing.T) {
	c := New[string]()
	c.Set("short", "lived", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDelete(t *testing.T) {
	c := New[string]()
	c.Set("key", "value", time.Minute)
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDeletePrefix(t *testing.T) {
	c := New[int]()
	c.Set("rooms:list", 1, time.Minute)
	c.Set("rooms:count", 2, time.Minute)
	c.Set("users:list", 3, time.Minute)

	c.DeletePrefix("rooms:")

	if _, ok := c.Get("rooms:list"); ok {
		t.Error("expected rooms:list to be removed")
	}
	if _, ok := c.Get("rooms:count"); ok {
		t.Error("expected rooms:count to be removed")
	}
	if _, ok := c.Get("users:list"); !ok {
		t.Error("expected users:list to survive")
	}
}

func TestClear(t *testing.T) {
	c := New[string]()
	c.Set("a", "1", time.Minute)
	c.Set("b", "2", time.Minute)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Error("expected empty cache after clear")
	}
}

func TestZeroValueOnMiss(t *testing.T) {
	c := New[[]string]()
	got, ok := c.Get("absent")
	if ok {
		t.Fatal("expected miss")
	}
	if got != nil {
		t.Errorf("expected nil slice on miss, got %v", got)
	}
}
