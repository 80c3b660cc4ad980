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

package swrcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/offlinekit/swrcache/internal/validation"
)

// QueryState is the consumer-visible snapshot of one query.
//
// Err and Data can be set at the same time: a failed revalidation keeps the
// previously cached value. Consumers should render Err alongside
// still-available data and reserve a dedicated error state for Found ==
// false.
type QueryState[T any] struct {
	// Data is the current value. Meaningful only when Found is true.
	Data T
	// Found reports whether Data holds a cached or fetched value.
	Found bool
	// IsLoading reports an in-flight fetch.
	IsLoading bool
	// Err is the most recent fetch error, nil after a successful fetch.
	Err error
	// IsOffline mirrors the connectivity signal.
	IsOffline bool
	// IsStale marks data served from cache while the network was
	// unavailable.
	IsStale bool
	// LastFetched is the write time of the value backing Data.
	LastFetched time.Time
}

// Query converts a fetch operation plus a logical cache key into a stateful,
// cache-first, offline-aware view of one remote value.
//
// Reads serve the cached value synchronously when one exists and revalidate
// over the network as allowed by connectivity. Refresh always bypasses the
// cache read. Invalidate drops the cached entry without fetching; the next
// Start or Refresh fetches again.
//
// A fetch in flight when Invalidate is called is discarded when it
// completes: an invalidated entry is never resurrected by a stale success.
type Query[T any] struct {
	store   Store
	key     string
	fetcher Fetcher[T]
	config  queryConfig
	inst    *instrumentation

	mu         sync.Mutex
	state      QueryState[T]
	generation uint64
	subs       map[int]func(QueryState[T])
	nextSub    int

	group   singleflight.Group
	started *atomic.Bool
	stopSig chan struct{}
	unwatch func()
}

// NewQuery creates a query for the given cache key backed by the given
// fetcher.
//
// Parameters:
//   - store: The cache store values are read from and written through.
//   - key: The logical cache key. Callers namespace keys by convention; the
//     preset constructors encode the common conventions.
//   - fetcher: The authoritative source used on miss and refresh.
//   - opts: Optional settings customizing freshness, offline behavior and
//     fetch protections.
//
// Returns an error when the configuration is invalid.
func NewQuery[T any](store Store, key string, fetcher Fetcher[T], opts ...QueryOption) (*Query[T], error) {
	config := newQueryConfig(opts)

	policy := newFetchPolicy(config.rateLimit, config.circuitBreaker, config.retry)
	if err := validation.
		New(validation.FailFast()).
		AddAssertion(store != nil, "store is required").
		AddValidator(validation.NewEmptyStringValidator("key", key)).
		AddAssertion(fetcher != nil, "fetcher is required").
		AddAssertion(config.ttl >= 0, "ttl is invalid").
		AddAssertion(config.refreshInterval >= 0, "refreshInterval is invalid").
		AddAssertion(config.monitor != nil, "monitor is required").
		Validate(); err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	return &Query[T]{
		store:   store,
		key:     key,
		fetcher: applyFetchPolicy(policy, fetcher),
		config:  config,
		inst:    newInstrumentation(config.traceConfig, config.metricConfig),
		subs:    make(map[int]func(QueryState[T])),
		started: new(atomic.Bool),
	}, nil
}

// Key returns the logical cache key the query reads and writes.
func (q *Query[T]) Key() string {
	return q.key
}

// Start performs the initial read and launches the background refresh
// ticker when one is configured. The cached value, when present, is visible
// through State before any network activity; the initial fetch, when
// allowed, completes before Start returns.
func (q *Query[T]) Start(ctx context.Context) error {
	if q.started.Swap(true) {
		return nil
	}

	q.mu.Lock()
	q.stopSig = make(chan struct{})
	stopSig := q.stopSig
	q.mu.Unlock()

	q.unwatch = q.config.monitor.Subscribe(q.onConnectivity)

	if q.config.warmer != nil {
		q.config.warmer.Register(q.key, func(ctx context.Context) error {
			return q.Refresh(ctx)
		})
	}

	err := q.read(ctx, false)

	if q.config.refreshInterval > 0 {
		go q.refreshLoop(stopSig)
	}
	return err
}

// Stop terminates the background ticker and the connectivity subscription.
// An in-flight fetch is not aborted; it runs to completion and its result
// still lands unless the query was invalidated.
func (q *Query[T]) Stop() {
	if !q.started.Swap(false) {
		return
	}
	q.mu.Lock()
	if q.stopSig != nil {
		close(q.stopSig)
		q.stopSig = nil
	}
	q.mu.Unlock()
	if q.unwatch != nil {
		q.unwatch()
	}
	if q.config.warmer != nil {
		q.config.warmer.Deregister(q.key)
	}
}

// State returns a snapshot of the query.
func (q *Query[T]) State() QueryState[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe registers fn to be called with a state snapshot after every
// transition. The returned function cancels the subscription.
func (q *Query[T]) Subscribe(fn func(QueryState[T])) (cancel func()) {
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

// Refresh bypasses the cache read and fetches from the authoritative
// source, overwriting the cached entry on success. Concurrent refreshes on
// one query are coalesced into a single fetch.
func (q *Query[T]) Refresh(ctx context.Context) error {
	if !q.started.Load() {
		return ErrQueryNotStarted
	}

	q.mu.Lock()
	gen := q.generation
	q.mu.Unlock()
	return q.fetch(ctx, gen)
}

// Invalidate deletes the cached entry and resets the in-memory state. It
// does not fetch; the next Start or Refresh will.
func (q *Query[T]) Invalidate(ctx context.Context) {
	q.mu.Lock()
	q.generation++
	q.state = QueryState[T]{IsOffline: q.state.IsOffline}
	snapshot := q.state
	q.mu.Unlock()

	q.store.Delete(ctx, q.key)
	q.notify(snapshot)
}

// read is the mount path: cache first, then network as connectivity allows.
func (q *Query[T]) read(ctx context.Context, force bool) error {
	q.mu.Lock()
	gen := q.generation
	q.mu.Unlock()

	hit := false
	if !force {
		var value T
		if q.store.Get(ctx, q.key, &value, WithReadVersion(q.config.version)) {
			lastFetched, _ := q.store.LastFetched(ctx, q.key)
			if q.config.tracker != nil {
				q.config.tracker.Record(q.key)
			}
			hit = true

			q.mu.Lock()
			q.state.Data = value
			q.state.Found = true
			q.state.IsStale = false
			q.state.LastFetched = lastFetched
			snapshot := q.state
			q.mu.Unlock()
			q.notify(snapshot)
		}
	}

	offline := !q.config.monitor.IsOnline()
	if offline && hit && q.config.enableOffline {
		q.mu.Lock()
		q.state.IsOffline = true
		q.state.IsStale = true
		snapshot := q.state
		q.mu.Unlock()
		q.notify(snapshot)
		return nil
	}

	return q.fetch(ctx, gen)
}

// fetch performs one deduplicated network fetch and writes the result
// through the store. Results fetched under an older generation are
// discarded.
func (q *Query[T]) fetch(ctx context.Context, gen uint64) error {
	_, err, _ := q.group.Do(q.key, func() (any, error) {
		fetchCtx, end := q.inst.start(ctx, "fetch", q.store.Namespace())

		q.mu.Lock()
		q.state.IsLoading = true
		snapshot := q.state
		q.mu.Unlock()
		q.notify(snapshot)

		value, fetchErr := q.fetcher.Fetch(fetchCtx)

		q.mu.Lock()
		q.state.IsLoading = false

		if q.generation != gen {
			snapshot = q.state
			q.mu.Unlock()
			q.notify(snapshot)
			end(ErrInvalidated)
			return nil, ErrInvalidated
		}

		if fetchErr != nil {
			q.state.Err = fetchErr
			if q.state.Found && !q.config.monitor.IsOnline() {
				// failed revalidation while offline: the served value is stale.
				// A failed revalidation while online does not retroactively
				// mark fresh data stale.
				q.state.IsStale = true
			}
			snapshot = q.state
			q.mu.Unlock()
			q.notify(snapshot)

			q.config.logger.Warnf("swrcache query key=%s: fetch failed: %v", q.key, fetchErr)
			end(fetchErr)
			return nil, fetchErr
		}

		setOpts := []SetOption{WithTTL(q.config.ttl)}
		if q.config.compress {
			setOpts = append(setOpts, WithCompression())
		}
		if q.config.version != "" {
			setOpts = append(setOpts, WithVersion(q.config.version))
		}
		q.store.Set(ctx, q.key, value, setOpts...)

		q.state.Data = value
		q.state.Found = true
		q.state.Err = nil
		q.state.IsStale = false
		q.state.LastFetched = time.Now()
		snapshot = q.state
		q.mu.Unlock()
		q.notify(snapshot)

		end(nil)
		return value, nil
	})
	return err
}

// onConnectivity reacts to online/offline transitions. Going offline with a
// cached value marks it stale; coming back online triggers exactly one
// automatic revalidation when the served value is stale.
func (q *Query[T]) onConnectivity(online bool) {
	if !online {
		q.mu.Lock()
		q.state.IsOffline = true
		if q.state.Found && q.config.enableOffline {
			q.state.IsStale = true
		}
		snapshot := q.state
		q.mu.Unlock()
		q.notify(snapshot)
		return
	}

	q.mu.Lock()
	q.state.IsOffline = false
	revalidate := q.state.IsStale
	gen := q.generation
	snapshot := q.state
	q.mu.Unlock()
	q.notify(snapshot)

	if revalidate && q.started.Load() {
		go func() {
			if err := q.fetch(context.Background(), gen); err != nil {
				q.config.logger.Warnf("swrcache query key=%s: revalidation after reconnect failed: %v", q.key, err)
			}
		}()
	}
}

func (q *Query[T]) refreshLoop(stopSig <-chan struct{}) {
	ticker := time.NewTicker(q.config.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopSig:
			return
		case <-ticker.C:
			if !q.config.monitor.IsOnline() {
				continue
			}
			q.mu.Lock()
			gen := q.generation
			q.mu.Unlock()
			if err := q.fetch(context.Background(), gen); err != nil {
				q.config.logger.Warnf("swrcache query key=%s: background refresh failed: %v", q.key, err)
			}
		}
	}
}

func (q *Query[T]) notify(snapshot QueryState[T]) {
	q.mu.Lock()
	subs := make([]func(QueryState[T]), 0, len(q.subs))
	for _, fn := range q.subs {
		subs = append(subs, fn)
	}
	q.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
