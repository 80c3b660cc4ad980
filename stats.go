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

// Stats aggregates the state of every entry under the store's namespace.
// Computing it scans the whole namespace; it is a diagnostic operation, not
// a hot-path one.
type Stats struct {
	// TotalItems counts every record under the namespace, including expired
	// and corrupt ones.
	TotalItems int `json:"total_items"`
	// ValidItems counts records that are parseable and not expired.
	ValidItems int `json:"valid_items"`
	// ExpiredItems counts records whose TTL has elapsed.
	ExpiredItems int `json:"expired_items"`
	// TotalBytes is the serialized size of every record under the namespace.
	TotalBytes int64 `json:"total_bytes"`
	// UsagePercentage is TotalBytes relative to the capacity budget.
	UsagePercentage float64 `json:"usage_percentage"`
}
