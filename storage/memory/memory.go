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

// Package memory provides a map-backed storage backend. It is not durable;
// it exists for tests and for running against an unavailable filesystem.
// The optional quota makes it possible to exercise quota-exceeded paths
// deterministically.
package memory

import (
	"strings"
	"sync"

	"github.com/offlinekit/swrcache/storage"
)

// Backend stores records in memory.
type Backend struct {
	mu       sync.RWMutex
	data     map[string][]byte
	quota    int64
	used     int64
	closed   bool
	failNext error
}

var _ storage.Backend = (*Backend)(nil)

// Option configures a memory Backend.
type Option func(*Backend)

// WithQuota bounds the total bytes of stored values. Writes that would
// exceed the quota fail with storage.ErrQuotaExceeded.
func WithQuota(quota int64) Option {
	return func(b *Backend) {
		b.quota = quota
	}
}

// New creates an empty memory Backend.
func New(opts ...Option) *Backend {
	backend := &Backend{
		data: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(backend)
	}
	return backend
}

// FailNext makes the next operation return err. Test hook.
func (b *Backend) FailNext(err error) {
	b.mu.Lock()
	b.failNext = err
	b.mu.Unlock()
}

func (b *Backend) takeFault() error {
	err := b.failNext
	b.failNext = nil
	return err
}

// Read implements storage.Backend.
func (b *Backend) Read(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, false, storage.ErrClosed
	}
	if err := b.takeFault(); err != nil {
		return nil, false, err
	}

	value, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Write implements storage.Backend.
func (b *Backend) Write(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return storage.ErrClosed
	}
	if err := b.takeFault(); err != nil {
		return err
	}

	previous := int64(len(b.data[key]))
	if b.quota > 0 && b.used-previous+int64(len(value)) > b.quota {
		return storage.ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	b.used += int64(len(value)) - previous
	b.data[key] = stored
	return nil
}

// Remove implements storage.Backend.
func (b *Backend) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return storage.ErrClosed
	}
	if err := b.takeFault(); err != nil {
		return err
	}

	b.used -= int64(len(b.data[key]))
	delete(b.data, key)
	return nil
}

// Scan implements storage.Backend.
func (b *Backend) Scan(prefix string, fn func(key string, value []byte) bool) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return storage.ErrClosed
	}

	// snapshot so fn may mutate the backend
	type record struct {
		key   string
		value []byte
	}
	records := make([]record, 0, len(b.data))
	for key, value := range b.data {
		if strings.HasPrefix(key, prefix) {
			out := make([]byte, len(value))
			copy(out, value)
			records = append(records, record{key: key, value: out})
		}
	}
	b.mu.RUnlock()

	for _, rec := range records {
		if !fn(rec.key, rec.value) {
			return nil
		}
	}
	return nil
}

// Close implements storage.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.data = nil
	b.mu.Unlock()
	return nil
}
