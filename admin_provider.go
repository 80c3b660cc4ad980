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

	"github.com/offlinekit/swrcache/admin"
	"github.com/offlinekit/swrcache/warmup"
)

// NewAdminProvider adapts a store into the snapshot source consumed by
// admin.Server. The tracker is optional; when present, the snapshot carries
// the current hot key list.
func NewAdminProvider(config *Config, store Store, tracker *warmup.Tracker) admin.SnapshotProvider {
	return &adminProvider{
		config:  config,
		store:   store,
		tracker: tracker,
	}
}

type adminProvider struct {
	config  *Config
	store   Store
	tracker *warmup.Tracker
}

func (x *adminProvider) SnapshotStore(ctx context.Context) (admin.StoreSnapshot, error) {
	if x.store == nil {
		return admin.StoreSnapshot{}, errors.New("store is not set")
	}

	stats := x.store.Stats(ctx)
	var hotKeys []string
	if x.tracker != nil {
		hotKeys = x.tracker.TopKeys(10, 1)
	}

	return admin.StoreSnapshot{
		Namespace:        x.store.Namespace(),
		Capacity:         x.config.Capacity(),
		CleanupThreshold: x.config.CleanupThreshold(),
		TotalItems:       stats.TotalItems,
		ValidItems:       stats.ValidItems,
		ExpiredItems:     stats.ExpiredItems,
		TotalBytes:       stats.TotalBytes,
		UsagePercentage:  stats.UsagePercentage,
		HotKeys:          hotKeys,
	}, nil
}

func (x *adminProvider) InvalidatePattern(ctx context.Context, pattern string) (admin.InvalidationResult, error) {
	if x.store == nil {
		return admin.InvalidationResult{}, errors.New("store is not set")
	}

	removed := x.store.ClearPattern(ctx, pattern)
	return admin.InvalidationResult{
		Pattern: pattern,
		Removed: removed,
	}, nil
}
