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
	"encoding/json"
	"time"
)

// envelope is the persisted record shape. The payload and its metadata are
// written as one record in one backend operation, so the payload and its
// stored-at time cannot desynchronize.
//
// Data holds the JSON-serialized payload, possibly transformed by the codec
// named in Codec. An empty Codec means the payload bytes are plain JSON; the
// reader never has to guess from the bytes.
type envelope struct {
	Data     []byte `json:"data"`
	StoredAt int64  `json:"storedAt"`
	TTL      int64  `json:"ttl,omitempty"`
	Codec    string `json:"codec,omitempty"`
	Version  string `json:"version,omitempty"`
}

// newEnvelope builds an envelope stamped at now.
func newEnvelope(data []byte, ttl time.Duration, codecName, version string, now time.Time) *envelope {
	return &envelope{
		Data:     data,
		StoredAt: now.UnixMilli(),
		TTL:      ttl.Milliseconds(),
		Codec:    codecName,
		Version:  version,
	}
}

// storedAt returns the write time of the envelope.
func (e *envelope) storedAt() time.Time {
	return time.UnixMilli(e.StoredAt)
}

// isExpired reports whether the entry's TTL has elapsed at now.
// An absent TTL never expires by time.
func (e *envelope) isExpired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.storedAt()) >= time.Duration(e.TTL)*time.Millisecond
}

// matchesVersion reports whether a read requesting the given version may use
// this entry. A mismatch is treated as a miss by the store, which lets
// callers invalidate on schema changes without wiping the cache.
func (e *envelope) matchesVersion(version string) bool {
	return e.Version == version
}

func (e *envelope) marshal() ([]byte, error) {
	return json.Marshal(e)
}

func decodeEnvelope(record []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(record, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
