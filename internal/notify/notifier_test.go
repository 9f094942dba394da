package notify

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestShow_AutoDismiss(t *testing.T) {
	n := New()
	n.Success("Order created successfully!", 20*time.Millisecond)

	if c := n.Current(); c == nil || c.Kind != KindSuccess {
		t.Fatalf("expected success notice, got %+v", c)
	}
	waitFor(t, func() bool { return n.Current() == nil })
}

func TestShow_ReplaceRestartsTimer(t *testing.T) {
	n := New()
	n.Success("first", 20*time.Millisecond)
	n.Success("second", time.Hour)

	time.Sleep(60 * time.Millisecond)
	if c := n.Current(); c == nil || c.Message != "second" {
		t.Fatalf("first timer must not clear the second notice, got %+v", c)
	}
}

func TestError_Sticky(t *testing.T) {
	n := New()
	n.Error("Failed to create order")
	time.Sleep(20 * time.Millisecond)
	if n.Current() == nil {
		t.Fatal("error notices stay until dismissed")
	}
	n.Dismiss()
	if n.Current() != nil {
		t.Fatal("expected dismissed")
	}
}

func TestClose_IgnoresLateCalls(t *testing.T) {
	n := New()
	n.Success("saved", 10*time.Millisecond)
	n.Close()

	n.Success("after close", time.Hour)
	time.Sleep(30 * time.Millisecond)
	if n.Current() != nil {
		t.Fatal("closed notifier must stay empty")
	}
}
