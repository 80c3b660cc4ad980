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
	"fmt"
	"strings"
	"time"
)

const (
	// APIQueryTTL is the freshness window applied by NewAPIQuery.
	APIQueryTTL = 15 * time.Minute
	// UserQueryTTL is the freshness window applied by NewUserQuery.
	UserQueryTTL = 30 * time.Minute
	// StaticQueryTTL is the freshness window applied by NewStaticQuery.
	StaticQueryTTL = 24 * time.Hour
)

// NewAPIQuery creates a query for a generic API endpoint. The cache key is
// derived from the endpoint path, so two queries for the same endpoint share
// one cache entry.
func NewAPIQuery[T any](store Store, endpoint string, fetcher Fetcher[T], opts ...QueryOption) (*Query[T], error) {
	key := fmt.Sprintf("api_%s", slugify(endpoint))
	opts = append([]QueryOption{WithQueryTTL(APIQueryTTL)}, opts...)
	return NewQuery(store, key, fetcher, opts...)
}

// NewUserQuery creates a query for per-user data of the given kind. The
// dataVersion participates in version matching: bumping it invalidates
// entries written under the previous schema on next read.
func NewUserQuery[T any](store Store, userID string, kind string, dataVersion string, fetcher Fetcher[T], opts ...QueryOption) (*Query[T], error) {
	key := fmt.Sprintf("user_%s_%s", userID, kind)
	opts = append([]QueryOption{
		WithQueryTTL(UserQueryTTL),
		WithQueryVersion(dataVersion),
	}, opts...)
	return NewQuery(store, key, fetcher, opts...)
}

// NewStaticQuery creates a query for rarely changing reference data. Entries
// are compressed and kept for a day; offline handling is disabled since
// well within TTL the cached copy is authoritative either way.
func NewStaticQuery[T any](store Store, kind string, fetcher Fetcher[T], opts ...QueryOption) (*Query[T], error) {
	key := fmt.Sprintf("static_%s", kind)
	opts = append([]QueryOption{
		WithQueryTTL(StaticQueryTTL),
		WithQueryCompression(),
		WithOfflineDisabled(),
	}, opts...)
	return NewQuery(store, key, fetcher, opts...)
}

// slugify flattens an endpoint path into a key-safe token.
func slugify(endpoint string) string {
	slug := strings.TrimFunc(endpoint, func(r rune) bool {
		return r == '/' || r == ' '
	})
	slug = strings.ToLower(slug)
	replacer := strings.NewReplacer("/", "_", "?", "_", "&", "_", "=", "_", " ", "_", ":", "_")
	return replacer.Replace(slug)
}
