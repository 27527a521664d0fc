package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("user-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("user-1") {
		t.Error("request over the limit should be denied")
	}
}

func TestAllowEmptyKeyNeverLimited(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if !l.Allow("") {
			t.Fatal("empty key should never be limited")
		}
	}
}

func TestAllowIsolatesKeys(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("user-1") {
		t.Fatal("first request for user-1 should pass")
	}
	if !l.Allow("user-2") {
		t.Error("user-2 should have an independent budget")
	}
	if l.Allow("user-1") {
		t.Error("user-1 should be over budget")
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("user-1") {
		t.Fatal("first request should pass")
	}
	if l.Allow("user-1") {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("user-1") {
		t.Error("request after the window should pass")
	}
}

func TestAllowStrictSeparateBudget(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Stop()

	// The strict budget is tracked apart from the general one.
	for i := 0; i < 2; i++ {
		if !l.AllowStrict("10.0.0.1", 2, time.Minute) {
			t.Fatalf("strict request %d should be allowed", i+1)
		}
	}
	if l.AllowStrict("10.0.0.1", 2, time.Minute) {
		t.Error("strict request over the limit should be denied")
	}
	if !l.Allow("10.0.0.1") {
		t.Error("general budget should be untouched by strict checks")
	}
}
