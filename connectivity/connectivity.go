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

// Package connectivity defines the online/offline signal queries subscribe
// to. The cache never decides connectivity itself; it reacts to whatever
// monitor the caller wires in.
package connectivity

import (
	"context"
	"sync"
	"time"
)

// Monitor reports the current connectivity state and notifies subscribers on
// transitions.
type Monitor interface {
	// IsOnline reports the last known connectivity state.
	IsOnline() bool

	// Subscribe registers fn to be called on every online/offline
	// transition. The returned function cancels the subscription.
	Subscribe(fn func(online bool)) (cancel func())
}

// Static is a Monitor whose state is set programmatically. It is the default
// monitor (always online) and the control knob in tests.
type Static struct {
	mu      sync.Mutex
	online  bool
	subs    map[int]func(online bool)
	nextSub int
}

var _ Monitor = (*Static)(nil)

// NewStatic creates a Static monitor with the given initial state.
func NewStatic(online bool) *Static {
	return &Static{
		online: online,
		subs:   make(map[int]func(online bool)),
	}
}

// IsOnline implements Monitor.
func (s *Static) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline updates the state and notifies subscribers when it changed.
// Callbacks run synchronously on the calling goroutine.
func (s *Static) SetOnline(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	subs := make([]func(online bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe implements Monitor.
func (s *Static) Subscribe(fn func(online bool)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// CheckFunc probes connectivity once. Implementations typically issue a
// cheap request against a well known endpoint.
type CheckFunc func(ctx context.Context) bool

// Probe is a Monitor that polls a CheckFunc on a fixed interval.
type Probe struct {
	state    *Static
	check    CheckFunc
	interval time.Duration
	timeout  time.Duration
	stopSig  chan struct{}
	stopOnce sync.Once
}

var _ Monitor = (*Probe)(nil)

// NewProbe creates a Probe polling check every interval. The initial state
// is online; the first poll corrects it.
func NewProbe(check CheckFunc, interval time.Duration) *Probe {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Probe{
		state:    NewStatic(true),
		check:    check,
		interval: interval,
		timeout:  interval,
		stopSig:  make(chan struct{}),
	}
}

// Start begins polling until Stop is called.
func (p *Probe) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopSig:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
				p.state.SetOnline(p.check(checkCtx))
				cancel()
			}
		}
	}()
}

// Stop terminates polling. The last known state remains readable.
func (p *Probe) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopSig)
	})
}

// IsOnline implements Monitor.
func (p *Probe) IsOnline() bool {
	return p.state.IsOnline()
}

// Subscribe implements Monitor.
func (p *Probe) Subscribe(fn func(online bool)) (cancel func()) {
	return p.state.Subscribe(fn)
}
