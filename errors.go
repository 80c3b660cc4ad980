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

import "errors"

var (
	// ErrFetcherRateLimited is returned when a fetch is rejected by the
	// query's rate limiter.
	ErrFetcherRateLimited = errors.New("swrcache: fetcher rate limited")

	// ErrFetcherCircuitOpen is returned when a fetch is rejected because the
	// query's circuit breaker is open.
	ErrFetcherCircuitOpen = errors.New("swrcache: fetcher circuit open")

	// ErrQueryNotStarted is returned by query operations that require Start
	// to have been called.
	ErrQueryNotStarted = errors.New("swrcache: query not started")

	// ErrInvalidated is returned by Refresh when the fetched result was
	// discarded because the query was invalidated while the fetch was in
	// flight.
	ErrInvalidated = errors.New("swrcache: query invalidated during fetch")
)
