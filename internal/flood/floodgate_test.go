package flood

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestFloodgate(limit int) (*Floodgate, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	fg := New(limit)
	fg.now = clock.Now
	return fg, clock
}

func TestFloodgate_Allow_AllowsNormalUsage(t *testing.T) {
	fg, _ := newTestFloodgate(3)

	for i := 0; i < 3; i++ {
		if !fg.Allow("recommend", "user1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if fg.Allow("recommend", "user1") {
		t.Error("4th request should be blocked")
	}
}

func TestFloodgate_Allow_SlidingWindow(t *testing.T) {
	fg, clock := newTestFloodgate(2)

	fg.Allow("recommend", "user1")
	clock.Advance(30 * time.Second)
	fg.Allow("recommend", "user1")

	if fg.Allow("recommend", "user1") {
		t.Error("Third request within the window should be blocked")
	}

	// First request leaves the window, second is still in it
	clock.Advance(31 * time.Second)
	if !fg.Allow("recommend", "user1") {
		t.Error("Request after the oldest one expired should be allowed")
	}
	if fg.Allow("recommend", "user1") {
		t.Error("Window should be full again")
	}
}

func TestFloodgate_Allow_RejectedAttemptsNotCounted(t *testing.T) {
	fg, clock := newTestFloodgate(1)

	fg.Allow("recommend", "user1")
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Second)
		fg.Allow("recommend", "user1")
	}

	clock.Advance(11 * time.Second)
	if !fg.Allow("recommend", "user1") {
		t.Error("Blocked attempts must not extend the window")
	}
}

func TestFloodgate_Allow_PerUserPerOperation(t *testing.T) {
	fg, _ := newTestFloodgate(1)

	if !fg.Allow("recommend", "user1") || !fg.Allow("submit", "user1") || !fg.Allow("recommend", "user2") {
		t.Fatal("Separate users and operations should have separate limits")
	}

	if fg.Allow("recommend", "user1") || fg.Allow("submit", "user1") || fg.Allow("recommend", "user2") {
		t.Error("Every pair should now be at its limit")
	}

	if fg.Size() != 3 {
		t.Errorf("Expected 3 tracked entries, got %d", fg.Size())
	}
}

func TestFloodgate_EdgeCases(t *testing.T) {
	t.Run("Zero limit", func(t *testing.T) {
		fg, _ := newTestFloodgate(0)
		if fg.Allow("recommend", "user1") {
			t.Error("Request should be blocked with zero limit")
		}
	})

	t.Run("Empty identifiers", func(t *testing.T) {
		fg, _ := newTestFloodgate(1)
		if !fg.Allow("", "") {
			t.Error("Should allow request with empty identifiers")
		}
		if fg.Allow("", "") {
			t.Error("Second request with empty identifiers should be blocked")
		}
	})
}

func TestFloodgate_Cleanup(t *testing.T) {
	fg, clock := newTestFloodgate(1)

	fg.Allow("recommend", "idle")
	clock.Advance(idleTimeout / 2)
	fg.Allow("recommend", "active")
	clock.Advance(idleTimeout/2 + time.Second)

	fg.performCleanup()

	if fg.Size() != 1 {
		t.Errorf("Expected only the active entry to remain, got %d", fg.Size())
	}
	if !fg.Allow("recommend", "idle") {
		t.Error("Dropped entry should start with a fresh window")
	}
}

func TestFloodgate_RunStopsWithContext(t *testing.T) {
	fg := New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- fg.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}

func TestFloodgate_ConcurrentAccess(t *testing.T) {
	fg := New(10)

	var wg sync.WaitGroup
	allowed := make(chan bool, 50)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				allowed <- fg.Allow("recommend", "user1")
			}
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 10 {
		t.Errorf("Expected exactly 10 allowed requests, got %d", count)
	}
}
