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

// Package storage defines the byte-store primitive the cache is built on.
//
// Implementations must be byte-for-byte transparent: Read must return exactly
// the bytes previously passed to Write for the same key. Each Write and
// Remove is individually atomic; compound sequences of operations are not,
// and two processes sharing one backend race last-write-wins.
package storage

import "errors"

var (
	// ErrQuotaExceeded is returned by Write when the backend cannot accept
	// the record without exceeding its storage quota.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")

	// ErrClosed is returned when the backend has been closed.
	ErrClosed = errors.New("storage: backend closed")
)

// Backend is a minimal durable byte store.
type Backend interface {
	// Read returns the bytes stored under key and reports whether the key
	// exists.
	Read(key string) ([]byte, bool, error)

	// Write stores value under key, replacing any previous value.
	Write(key string, value []byte) error

	// Remove deletes the record stored under key. Removing an absent key is
	// not an error.
	Remove(key string) error

	// Scan iterates over every record whose key starts with prefix, in
	// unspecified order, until fn returns false.
	Scan(prefix string, fn func(key string, value []byte) bool) error

	// Close releases the backend's resources.
	Close() error
}
