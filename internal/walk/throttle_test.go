package walk

import (
	"testing"
	"time"
)

func TestThrottleBecomesDue(t *testing.T) {
	th := NewThrottle(20*time.Millisecond, 0)
	defer th.Stop()

	if th.Due() {
		t.Fatal("throttle should not be due before the first tick")
	}

	deadline := time.Now().Add(2 * time.Second)
	for !th.Due() {
		if time.Now().After(deadline) {
			t.Fatal("throttle never became due")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Due clears the flag; an immediate re-check must miss.
	if th.Due() {
		t.Fatal("flag should be cleared after a successful Due")
	}
}

func TestThrottleRunIfDue(t *testing.T) {
	th := NewThrottle(10*time.Millisecond, 0)
	defer th.Stop()

	ran := 0
	deadline := time.Now().Add(2 * time.Second)
	for ran == 0 {
		if time.Now().After(deadline) {
			t.Fatal("callback never ran")
		}
		th.RunIfDue(func() { ran++ })
		time.Sleep(2 * time.Millisecond)
	}
	if ran != 1 {
		t.Fatalf("ran %d times, want 1", ran)
	}
}

func TestThrottleInitialDelay(t *testing.T) {
	th := NewThrottle(10*time.Millisecond, 500*time.Millisecond)
	defer th.Stop()

	time.Sleep(50 * time.Millisecond)
	if th.Due() {
		t.Fatal("throttle fired during the initial delay")
	}
}

func TestThrottleStop(t *testing.T) {
	th := NewThrottle(10*time.Millisecond, 0)
	th.Stop()

	// One tick may race the stop; absorb it, then the timer must be silent.
	time.Sleep(30 * time.Millisecond)
	th.Due()
	time.Sleep(50 * time.Millisecond)
	if th.Due() {
		t.Fatal("stopped throttle should never become due")
	}
}
