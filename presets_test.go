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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinekit/swrcache/storage/memory"
)

func TestNewAPIQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "feed"}}

	query, err := NewAPIQuery[payload](store, "/v1/tasks/today", fetcher)
	require.NoError(t, err)
	require.Equal(t, "api_v1_tasks_today", query.Key())

	require.NoError(t, query.Start(ctx))
	defer query.Stop()
	require.True(t, store.Has(ctx, "api_v1_tasks_today"))
}

func TestNewUserQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "alice"}}

	query, err := NewUserQuery[payload](store, "42", "profile", "v7", fetcher)
	require.NoError(t, err)
	require.Equal(t, "user_42_profile", query.Key())

	require.NoError(t, query.Start(ctx))
	defer query.Stop()

	// writes carry the data version
	require.True(t, store.Has(ctx, "user_42_profile", WithReadVersion("v7")))
	require.False(t, store.Has(ctx, "user_42_profile", WithReadVersion("v6")))
}

func TestNewStaticQuery(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{value: payload{Name: "countries"}}

	query, err := NewStaticQuery[payload](store, "countries", fetcher)
	require.NoError(t, err)
	require.Equal(t, "static_countries", query.Key())

	require.NoError(t, query.Start(ctx))
	defer query.Stop()
	require.True(t, store.Has(ctx, "static_countries"))
}

func TestPresetOptionsOverridable(t *testing.T) {
	store := newTestStore(t, memory.New())
	fetcher := &countingFetcher{}

	// caller-supplied options win over the preset defaults
	query, err := NewAPIQuery[payload](store, "/v1/feed", fetcher, WithQueryTTL(0))
	require.NoError(t, err)
	assert.Equal(t, "api_v1_feed", query.Key())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "v1_tasks_today", slugify("/v1/tasks/today/"))
	assert.Equal(t, "search_q_cats", slugify("/search?q=cats"))
	assert.Equal(t, "plain", slugify("plain"))
	assert.Equal(t, "a_b", slugify("A B"))
}
