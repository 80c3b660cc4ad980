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

package admin

// StoreSnapshot is the admin-facing JSON payload describing the cache store
// at a single point in time.
//
// It combines configuration (namespace, capacity, cleanup threshold) with
// runtime sizing and entry counts. Counts are sampled at request time by a
// full namespace scan, so the endpoint is meant for diagnostics rather than
// high-frequency polling. HotKeys is present only when a tracker is wired
// and lists the hottest keys first.
type StoreSnapshot struct {
	Namespace        string   `json:"namespace"`
	Capacity         int64    `json:"capacity"`
	CleanupThreshold float64  `json:"cleanup_threshold"`
	TotalItems       int      `json:"total_items"`
	ValidItems       int      `json:"valid_items"`
	ExpiredItems     int      `json:"expired_items"`
	TotalBytes       int64    `json:"total_bytes"`
	UsagePercentage  float64  `json:"usage_percentage"`
	HotKeys          []string `json:"hot_keys,omitempty"`
}

// InvalidationResult reports the outcome of an explicit invalidation
// request.
type InvalidationResult struct {
	Pattern string `json:"pattern"`
	Removed bool   `json:"removed"`
}
