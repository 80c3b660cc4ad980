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

import "time"

// SetOption customizes a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	ttl      time.Duration
	compress bool
	version  string
}

func newSetOptions(opts []SetOption) setOptions {
	options := setOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithTTL sets the entry's time to live. A zero or absent TTL means the
// entry never expires by time, only by eviction or explicit deletion.
func WithTTL(ttl time.Duration) SetOption {
	return func(options *setOptions) {
		options.ttl = ttl
	}
}

// WithCompression runs the payload through the store's codec before storage.
func WithCompression() SetOption {
	return func(options *setOptions) {
		options.compress = true
	}
}

// WithVersion tags the entry with a schema version. A later read requesting
// a different version treats the entry as a miss and deletes it.
func WithVersion(version string) SetOption {
	return func(options *setOptions) {
		options.version = version
	}
}

// ReadOption customizes a single Get or Has call.
type ReadOption func(*readOptions)

type readOptions struct {
	version string
}

func newReadOptions(opts []ReadOption) readOptions {
	options := readOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithReadVersion requests entries tagged with the given schema version.
// Entries stored under any other version are misses and are deleted.
func WithReadVersion(version string) ReadOption {
	return func(options *readOptions) {
		options.version = version
	}
}
