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

// Package bolt provides a bbolt-backed storage backend. All cache records
// live in a single bucket of a single file, which keeps each Write/Remove an
// atomic transaction.
package bolt

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/offlinekit/swrcache/storage"
)

var bucketName = []byte("swrcache")

// Backend stores records in a bbolt database file.
type Backend struct {
	db     *bbolt.DB
	closed atomic.Bool
}

var _ storage.Backend = (*Backend)(nil)

// Open opens (or creates) the database file at path.
func Open(path string) (*Backend, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create storage bucket: %w", err)
	}

	return &Backend{db: db}, nil
}

// Read implements storage.Backend.
func (b *Backend) Read(key string) ([]byte, bool, error) {
	if b.closed.Load() {
		return nil, false, storage.ErrClosed
	}

	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		stored := tx.Bucket(bucketName).Get([]byte(key))
		if stored != nil {
			value = make([]byte, len(stored))
			copy(value, stored)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

// Write implements storage.Backend.
func (b *Backend) Write(key string, value []byte) error {
	if b.closed.Load() {
		return storage.ErrClosed
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

// Remove implements storage.Backend.
func (b *Backend) Remove(key string) error {
	if b.closed.Load() {
		return storage.ErrClosed
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Scan implements storage.Backend.
func (b *Backend) Scan(prefix string, fn func(key string, value []byte) bool) error {
	if b.closed.Load() {
		return storage.ErrClosed
	}

	return b.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketName).Cursor()
		search := []byte(prefix)
		for k, v := cursor.Seek(search); k != nil && bytes.HasPrefix(k, search); k, v = cursor.Next() {
			value := make([]byte, len(v))
			copy(value, v)
			if !fn(string(k), value) {
				return nil
			}
		}
		return nil
	})
}

// Close implements storage.Backend.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}
