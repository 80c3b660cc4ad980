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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/offlinekit/swrcache/connectivity"
	"github.com/offlinekit/swrcache/storage/memory"
)

type countingFetcher struct {
	mu    sync.Mutex
	calls int
	value payload
	err   error
	gate  chan struct{}
}

func (c *countingFetcher) Fetch(_ context.Context) (payload, error) {
	c.mu.Lock()
	c.calls++
	value := c.value
	err := c.err
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return payload{}, err
	}
	return value, nil
}

func (c *countingFetcher) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *countingFetcher) set(value payload, err error) {
	c.mu.Lock()
	c.value = value
	c.err = err
	c.mu.Unlock()
}

func TestQueryInitialFetchPopulatesCache(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice", Age: 30}}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	state := query.State()
	require.True(t, state.Found)
	require.Equal(t, "alice", state.Data.Name)
	require.NoError(t, state.Err)
	require.False(t, state.IsStale)
	require.False(t, state.LastFetched.IsZero())
	require.Equal(t, 1, fetcher.callCount())

	// the fetched value landed in the cache
	var cached payload
	require.True(t, store.Get(ctx, "users", &cached))
	require.Equal(t, "alice", cached.Name)
}

func TestQueryServesCacheBeforeRevalidating(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	require.True(t, store.Set(ctx, "users", payload{Name: "cached"}))

	fetcher := &countingFetcher{value: payload{Name: "remote"}}
	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)

	var sawCached bool
	cancel := query.Subscribe(func(state QueryState[payload]) {
		if state.Found && state.Data.Name == "cached" {
			sawCached = true
		}
	})
	defer cancel()

	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	// the cached value was visible before the network answered,
	// then revalidation replaced it
	require.True(t, sawCached)
	require.Equal(t, "remote", query.State().Data.Name)
	require.Equal(t, 1, fetcher.callCount())
}

func TestQueryOfflineServesCacheWithoutFetching(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	require.True(t, store.Set(ctx, "users", payload{Name: "cached"}))

	monitor := connectivity.NewStatic(false)
	fetcher := &countingFetcher{value: payload{Name: "remote"}}
	query, err := NewQuery[payload](store, "users", fetcher, WithMonitor(monitor))
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	state := query.State()
	require.True(t, state.Found)
	require.Equal(t, "cached", state.Data.Name)
	require.True(t, state.IsOffline)
	require.True(t, state.IsStale)
	require.Equal(t, 0, fetcher.callCount())
}

func TestQueryOfflineMissStillFetches(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())

	monitor := connectivity.NewStatic(false)
	fetcher := &countingFetcher{err: errors.New("network unreachable")}
	query, err := NewQuery[payload](store, "users", fetcher, WithMonitor(monitor))
	require.NoError(t, err)

	// nothing cached, so the fetch is attempted even offline
	require.Error(t, query.Start(ctx))
	defer query.Stop()

	state := query.State()
	require.False(t, state.Found)
	require.Error(t, state.Err)
	require.Equal(t, 1, fetcher.callCount())
}

func TestQueryOfflineDisabledFetchesAnyway(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	require.True(t, store.Set(ctx, "static", payload{Name: "cached"}))

	monitor := connectivity.NewStatic(false)
	fetcher := &countingFetcher{value: payload{Name: "remote"}}
	query, err := NewQuery[payload](store, "static", fetcher,
		WithMonitor(monitor),
		WithOfflineDisabled())
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	require.Equal(t, 1, fetcher.callCount())
	require.Equal(t, "remote", query.State().Data.Name)
}

func TestQueryFetchFailureKeepsCachedData(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	require.True(t, store.Set(ctx, "users", payload{Name: "cached"}))

	fetcher := &countingFetcher{err: errors.New("boom")}
	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)
	require.Error(t, query.Start(ctx))
	defer query.Stop()

	state := query.State()
	require.True(t, state.Found)
	require.Equal(t, "cached", state.Data.Name)
	require.Error(t, state.Err)
}

func TestQueryRefresh(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "v1"}}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()
	require.Equal(t, 1, fetcher.callCount())

	fetcher.set(payload{Name: "v2"}, nil)
	require.NoError(t, query.Refresh(ctx))

	require.Equal(t, 2, fetcher.callCount())
	require.Equal(t, "v2", query.State().Data.Name)

	var cached payload
	require.True(t, store.Get(ctx, "users", &cached))
	require.Equal(t, "v2", cached.Name)
}

func TestQueryRefreshBeforeStart(t *testing.T) {
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)
	require.ErrorIs(t, query.Refresh(context.Background()), ErrQueryNotStarted)
}

func TestQueryRefreshClearsError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{err: errors.New("boom")}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)
	require.Error(t, query.Start(ctx))
	defer query.Stop()
	require.Error(t, query.State().Err)

	fetcher.set(payload{Name: "recovered"}, nil)
	require.NoError(t, query.Refresh(ctx))

	state := query.State()
	require.NoError(t, state.Err)
	require.Equal(t, "recovered", state.Data.Name)
}

func TestQueryInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice"}}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	query.Invalidate(ctx)

	// the state reset and the cache entry is gone; no automatic refetch
	state := query.State()
	require.False(t, state.Found)
	require.False(t, store.Has(ctx, "users"))
	require.Equal(t, 1, fetcher.callCount())
}

func TestQueryInvalidateDiscardsInFlightFetch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())

	gate := make(chan struct{})
	fetcher := &countingFetcher{value: payload{Name: "stale-success"}, gate: gate}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)

	// run Start in the background; its initial fetch blocks on the gate
	done := make(chan error, 1)
	go func() { done <- query.Start(ctx) }()

	require.Eventually(t, func() bool {
		return fetcher.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	query.Invalidate(ctx)
	close(gate)

	require.ErrorIs(t, <-done, ErrInvalidated)
	defer query.Stop()

	// the invalidated entry was not resurrected
	state := query.State()
	require.False(t, state.Found)
	require.False(t, store.Has(ctx, "users"))
}

func TestQueryReconnectRevalidates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	require.True(t, store.Set(ctx, "users", payload{Name: "cached"}))

	monitor := connectivity.NewStatic(false)
	fetcher := &countingFetcher{value: payload{Name: "fresh"}}
	query, err := NewQuery[payload](store, "users", fetcher, WithMonitor(monitor))
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	require.True(t, query.State().IsStale)
	require.Equal(t, 0, fetcher.callCount())

	monitor.SetOnline(true)

	require.Eventually(t, func() bool {
		state := query.State()
		return !state.IsStale && state.Data.Name == "fresh"
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, fetcher.callCount())
	require.False(t, query.State().IsOffline)
}

func TestQueryGoingOfflineMarksDataStale(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())

	monitor := connectivity.NewStatic(true)
	fetcher := &countingFetcher{value: payload{Name: "alice"}}
	query, err := NewQuery[payload](store, "users", fetcher, WithMonitor(monitor))
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	monitor.SetOnline(false)

	state := query.State()
	require.True(t, state.IsOffline)
	require.True(t, state.IsStale)
	require.Equal(t, "alice", state.Data.Name)
}

func TestQueryBackgroundRefresh(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice"}}

	query, err := NewQuery[payload](store, "users", fetcher,
		WithRefreshInterval(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	require.Eventually(t, func() bool {
		return fetcher.callCount() >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestQueryRestart(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice"}}

	query, err := NewQuery[payload](store, "users", fetcher,
		WithRefreshInterval(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, query.Start(ctx))
	query.Stop()
	require.NoError(t, query.Start(ctx))

	calls := fetcher.callCount()
	require.Eventually(t, func() bool {
		return fetcher.callCount() >= calls+2
	}, time.Second, 10*time.Millisecond)

	query.Stop()
	require.NotPanics(t, query.Stop)
}

func TestQueryBackgroundRefreshSkipsOfflineTicks(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	require.True(t, store.Set(ctx, "users", payload{Name: "cached"}))

	monitor := connectivity.NewStatic(false)
	fetcher := &countingFetcher{value: payload{Name: "remote"}}
	query, err := NewQuery[payload](store, "users", fetcher,
		WithMonitor(monitor),
		WithRefreshInterval(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 0, fetcher.callCount())
}

func TestQueryVersionedWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice"}}

	query, err := NewQuery[payload](store, "profile", fetcher, WithQueryVersion("v2"))
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	// the entry is readable under v2 only
	require.True(t, store.Has(ctx, "profile", WithReadVersion("v2")))
	require.False(t, store.Has(ctx, "profile", WithReadVersion("v1")))
}

func TestQuerySchemaBumpInvalidatesOldEntries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	require.True(t, store.Set(ctx, "profile", payload{Name: "old"}, WithVersion("v1")))

	monitor := connectivity.NewStatic(false)
	fetcher := &countingFetcher{err: errors.New("offline")}
	query, err := NewQuery[payload](store, "profile", fetcher,
		WithMonitor(monitor),
		WithQueryVersion("v2"))
	require.NoError(t, err)

	// the v1 entry does not satisfy a v2 query, so the fetch is attempted
	// and fails offline; no stale-schema data leaks through
	require.Error(t, query.Start(ctx))
	defer query.Stop()
	require.False(t, query.State().Found)
}

func TestQuerySubscribe(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice"}}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)

	var mu sync.Mutex
	var transitions []QueryState[payload]
	cancel := query.Subscribe(func(state QueryState[payload]) {
		mu.Lock()
		transitions = append(transitions, state)
		mu.Unlock()
	})

	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	mu.Lock()
	require.NotEmpty(t, transitions)
	final := transitions[len(transitions)-1]
	mu.Unlock()
	require.True(t, final.Found)

	cancel()
	seen := len(transitions)
	require.NoError(t, query.Refresh(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, transitions, seen)
}

func TestQueryValidation(t *testing.T) {
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{}

	_, err := NewQuery[payload](nil, "users", fetcher)
	require.Error(t, err)

	_, err = NewQuery[payload](store, "", fetcher)
	require.Error(t, err)

	_, err = NewQuery[payload](store, "users", nil)
	require.Error(t, err)

	_, err = NewQuery[payload](store, "users", fetcher, WithQueryTTL(-time.Second))
	require.Error(t, err)

	_, err = NewQuery[payload](store, "users", fetcher,
		WithFetchRateLimit(RateLimitConfig{RequestsPerSecond: -1}))
	require.Error(t, err)
}

func TestQueryStartIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice"}}

	query, err := NewQuery[payload](store, "users", fetcher)
	require.NoError(t, err)
	require.NoError(t, query.Start(ctx))
	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	require.Equal(t, 1, fetcher.callCount())
}
