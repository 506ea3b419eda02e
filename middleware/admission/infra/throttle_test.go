package infra

import "testing"

func TestThrottle_NilAllowsEverything(t *testing.T) {
	var th *Throttle
	if !th.Allow() {
		t.Fatalf("expected nil throttle to allow")
	}
	if NewThrottle(0, 0) != nil {
		t.Fatalf("expected NewThrottle with zero params to return nil")
	}
}

func TestThrottle_BurstExhaustion(t *testing.T) {
	// rps baixíssimo: só o burst inicial passa
	th := NewThrottle(0.01, 2)

	if !th.Allow() || !th.Allow() {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if th.Allow() {
		t.Fatalf("expected third immediate Allow to be false")
	}
}
