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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/travisjeffery/go-dynaport"

	"github.com/offlinekit/swrcache"
	"github.com/offlinekit/swrcache/admin"
	"github.com/offlinekit/swrcache/connectivity"
	"github.com/offlinekit/swrcache/log"
	"github.com/offlinekit/swrcache/storage/bolt"
	"github.com/offlinekit/swrcache/warmup"
)

// User is the record type served by the fake user service below.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func main() {
	ctx := context.Background()
	logger := log.DefaultLogger

	// open a bolt-backed store under a temporary directory
	dir, err := os.MkdirTemp("", "swrcache-example")
	if err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	backend, err := bolt.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}

	config := swrcache.NewConfig(backend,
		swrcache.WithNamespace("example"),
		swrcache.WithLogger(logger))

	store, err := swrcache.NewStore(config)
	if err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}

	if err := store.Start(ctx); err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}

	// the monitor stands in for a real connectivity signal; flip it to
	// simulate going offline
	monitor := connectivity.NewStatic(true)
	tracker := warmup.NewTracker(100)

	// hot keys registered with the warmer get revalidated whenever
	// connectivity comes back
	warmer := warmup.NewWarmer(warmup.Config{}, tracker)
	unwatch := warmer.Watch(monitor)
	defer unwatch()

	// a query wraps one remote value: cache-first reads, revalidation when
	// online, cached serving when not
	calls := 0
	userQuery, err := swrcache.NewUserQuery(store, "user1", "profile", "v1",
		swrcache.FetcherFunc[*User](func(context.Context) (*User, error) {
			calls++
			return &User{ID: "user1", Name: "Ada", Age: 36}, nil
		}),
		swrcache.WithMonitor(monitor),
		swrcache.WithTracker(tracker),
		swrcache.WithWarmer(warmer),
		swrcache.WithQueryLogger(logger))
	if err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}

	if err := userQuery.Start(ctx); err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}
	defer userQuery.Stop()

	state := userQuery.State()
	logger.Infof("online read: user=%s fetcher calls=%d", state.Data.Name, calls)

	// go offline: the cached value keeps serving, marked stale, and the
	// fetcher stays untouched
	monitor.SetOnline(false)

	offlineQuery, err := swrcache.NewUserQuery(store, "user1", "profile", "v1",
		swrcache.FetcherFunc[*User](func(context.Context) (*User, error) {
			calls++
			return nil, fmt.Errorf("network unreachable")
		}),
		swrcache.WithMonitor(monitor),
		swrcache.WithQueryLogger(logger))
	if err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}

	if err := offlineQuery.Start(ctx); err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}
	defer offlineQuery.Stop()

	state = offlineQuery.State()
	logger.Infof("offline read: user=%s stale=%v fetcher calls=%d", state.Data.Name, state.IsStale, calls)

	// expose diagnostics over HTTP
	ports := dynaport.Get(1)
	server := admin.NewServer(admin.Config{
		ListenAddr: fmt.Sprintf("127.0.0.1:%d", ports[0]),
	}, swrcache.NewAdminProvider(config, store, tracker), logger)

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Start(startCtx); err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}
	defer server.Shutdown(ctx)

	stats := store.Stats(ctx)
	logger.Infof("store stats: items=%d bytes=%d usage=%.2f%%", stats.TotalItems, stats.TotalBytes, stats.UsagePercentage)

	if err := store.Stop(ctx); err != nil {
		logger.Fatal(err)
		os.Exit(1)
	}
}
