// Package store remembers playlist submissions using a Bloom filter and an LRU cache.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Ledger is a bounded, thread-safe set of submission fingerprints. The Bloom filter
// answers most misses; the LRU cache holds the authoritative keys and evicts the oldest.
type Ledger struct {
	bloom             *bloom.BloomFilter
	keys              *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	capacity          int
	falsePositiveRate float64
}

// NewLedger creates a ledger holding at most capacity fingerprints.
func NewLedger(capacity int, falsePositiveRate float64) *Ledger {
	if capacity <= 0 {
		panic("ledger capacity must be positive")
	}

	keys, err := lru.New[string, struct{}](capacity)
	if err != nil {
		panic(err)
	}

	return &Ledger{
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		keys:              keys,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}
}

// Has reports whether the fingerprint was recorded and not yet evicted.
func (l *Ledger) Has(key string) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if !l.bloom.TestString(key) {
		return false
	}

	return l.keys.Contains(key)
}

// Add records a fingerprint, evicting the oldest one when full.
func (l *Ledger) Add(key string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.bloom.AddString(key)
	l.keys.Add(key, struct{}{})
}

// Size returns the number of fingerprints currently held.
func (l *Ledger) Size() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.keys.Len()
}

// Clear forgets every fingerprint.
func (l *Ledger) Clear() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	// Bloom filters cannot delete, so a fresh one is built
	l.bloom = bloom.NewWithEstimates(uint(l.capacity), l.falsePositiveRate)
	l.keys.Purge()
}
