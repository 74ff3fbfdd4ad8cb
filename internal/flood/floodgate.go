// Package flood throttles expensive requests per user with a sliding one-minute window.
package flood

import (
	"context"
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window requests are counted in
	windowDuration = time.Minute
	// cleanupInterval is how often idle entries are dropped
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long an entry may go unused before it is dropped
	idleTimeout = 10 * time.Minute
)

// Floodgate limits how often one user may run one kind of operation.
type Floodgate struct {
	limitPerMinute int
	entries        map[string]*entry // Key: "operation:userID"
	mutex          sync.Mutex
	now            func() time.Time
}

type entry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// New creates a floodgate allowing limitPerMinute operations per user and window.
func New(limitPerMinute int) *Floodgate {
	return &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*entry),
		now:            time.Now,
	}
}

// Allow records an attempt of operation by userID and reports whether it is within the limit.
// Rejected attempts are not counted.
func (fg *Floodgate) Allow(operation, userID string) bool {
	key := operation + ":" + userID
	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	e, exists := fg.entries[key]
	if !exists {
		e = &entry{timestamps: make([]time.Time, 0, fg.limitPerMinute)}
		fg.entries[key] = e
	}
	e.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	e.timestamps = valid

	if len(e.timestamps) >= fg.limitPerMinute {
		return false
	}

	e.timestamps = append(e.timestamps, now)
	return true
}

// Run drops idle entries until ctx is done.
func (fg *Floodgate) Run(ctx context.Context) error {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fg.performCleanup()
		}
	}
}

func (fg *Floodgate) performCleanup() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := fg.now().Add(-idleTimeout)
	for key, e := range fg.entries {
		if e.lastSeen.Before(cutoff) {
			delete(fg.entries, key)
		}
	}
}

// Size returns the number of tracked user and operation pairs.
func (fg *Floodgate) Size() int {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()
	return len(fg.entries)
}
