// MIT License
//
// Copyright (c) 2025-2026 The swrcache authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package warmup provides hot key tracking and batch revalidation for caches.
package warmup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/offlinekit/swrcache/connectivity"
	"github.com/offlinekit/swrcache/internal/syncmap"
)

// Config controls key prefetch behavior on application start and on
// reconnection after an offline period.
//
// Hot keys are tracked using a bounded frequency map. A warm-up cycle
// revalidates:
//   - Explicit WarmKeys, plus
//   - The top N hot keys (MaxHotKeys) whose hit counts are at least MinHits.
//
// The algorithm is O(n) with respect to tracked keys and is invoked only on
// warm-up cycles, never on the read path.
type Config struct {
	// MaxHotKeys bounds the number of hot keys considered per cycle.
	MaxHotKeys int
	// MinHits is the minimum access count for a key to be considered hot.
	MinHits uint64
	// Concurrency controls the number of concurrent revalidations.
	Concurrency int
	// Timeout bounds the per-key revalidation duration.
	Timeout time.Duration
	// WarmKeys lists keys that are always revalidated, regardless of hit
	// counts.
	WarmKeys []string
}

// Normalize returns a configuration with defaults applied.
func (c Config) Normalize() Config {
	config := c
	if config.MaxHotKeys <= 0 {
		config.MaxHotKeys = 100
	}

	if config.MinHits == 0 {
		config.MinHits = 1
	}

	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}

	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	return config
}

// Tracker records key access frequency for warm-up decisions.
type Tracker struct {
	mu      sync.Mutex
	maxKeys int
	counts  map[string]uint64
}

// NewTracker constructs a Tracker with the provided key cap.
func NewTracker(maxKeys int) *Tracker {
	if maxKeys <= 0 {
		maxKeys = 100
	}
	return &Tracker{
		maxKeys: maxKeys,
		counts:  make(map[string]uint64),
	}
}

// Record increments the hit count for a key. When the tracked set exceeds
// the cap, the coldest key is evicted.
func (t *Tracker) Record(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[key]++
	if len(t.counts) <= t.maxKeys {
		return
	}

	var minKey string
	var minCount uint64
	first := true
	for k, count := range t.counts {
		if first || count < minCount {
			minKey = k
			minCount = count
			first = false
		}
	}
	if minKey != "" {
		delete(t.counts, minKey)
	}
}

// TopKeys returns the most frequently accessed keys, hottest first. Ties
// break on key order for determinism.
func (t *Tracker) TopKeys(limit int, minHits uint64) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 {
		return nil
	}

	type keyCount struct {
		key   string
		count uint64
	}

	entries := make([]keyCount, 0, len(t.counts))
	for k, count := range t.counts {
		if count < minHits {
			continue
		}
		entries = append(entries, keyCount{key: k, count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].key < entries[j].key
		}
		return entries[i].count > entries[j].count
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.key)
	}
	return keys
}

// RevalidateFunc refreshes the value behind one key from its authoritative
// source.
type RevalidateFunc func(ctx context.Context) error

// Warmer runs batch revalidations over registered keys. Queries register
// their refresh function on start and deregister on stop; Warm revalidates
// the explicit warm keys plus the tracker's current hot set with bounded
// concurrency.
type Warmer struct {
	config  Config
	tracker *Tracker
	targets *syncmap.Map[string, RevalidateFunc]
}

// NewWarmer constructs a Warmer backed by the given tracker. A nil tracker
// limits warm-up cycles to the explicit WarmKeys.
func NewWarmer(config Config, tracker *Tracker) *Warmer {
	return &Warmer{
		config:  config.Normalize(),
		tracker: tracker,
		targets: syncmap.New[string, RevalidateFunc](),
	}
}

// Register makes a key eligible for warm-up cycles.
func (w *Warmer) Register(key string, fn RevalidateFunc) {
	w.targets.Set(key, fn)
}

// Deregister removes a key from warm-up cycles.
func (w *Warmer) Deregister(key string) {
	w.targets.Delete(key)
}

// Watch ties warm-up cycles to a connectivity monitor: one cycle runs
// immediately when the monitor is online, and another on every
// offline-to-online transition. Cycles run on their own goroutine so
// monitor callbacks are never blocked by revalidation. The returned
// function cancels the subscription.
func (w *Warmer) Watch(monitor connectivity.Monitor) (cancel func()) {
	if monitor.IsOnline() {
		go w.Warm(context.Background())
	}
	return monitor.Subscribe(func(online bool) {
		if online {
			go w.Warm(context.Background())
		}
	})
}

// Warm revalidates the warm set and returns the number of keys refreshed
// successfully. Keys without a registered revalidation function are
// skipped. Individual failures do not abort the cycle.
func (w *Warmer) Warm(ctx context.Context) int {
	keys := w.warmSet()
	if len(keys) == 0 {
		return 0
	}

	var refreshed int
	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, w.config.Concurrency)

	for _, key := range keys {
		fn, ok := w.targets.Get(key)
		if !ok {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(fn RevalidateFunc) {
			defer wg.Done()
			defer func() { <-sem }()

			keyCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
			defer cancel()
			if err := fn(keyCtx); err != nil {
				return
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
		}(fn)
	}

	wg.Wait()
	return refreshed
}

// warmSet merges the explicit warm keys with the tracker's hot keys,
// preserving order and deduplicating.
func (w *Warmer) warmSet() []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0, len(w.config.WarmKeys))
	for _, key := range w.config.WarmKeys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	if w.tracker != nil {
		for _, key := range w.tracker.TopKeys(w.config.MaxHotKeys, w.config.MinHits) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}
