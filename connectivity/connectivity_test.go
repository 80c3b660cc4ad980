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

package connectivity

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	monitor := NewStatic(true)
	require.True(t, monitor.IsOnline())

	var transitions []bool
	cancel := monitor.Subscribe(func(online bool) {
		transitions = append(transitions, online)
	})

	monitor.SetOnline(false)
	monitor.SetOnline(false) // no transition, no callback
	monitor.SetOnline(true)

	require.True(t, monitor.IsOnline())
	assert.Equal(t, []bool{false, true}, transitions)

	cancel()
	monitor.SetOnline(false)
	assert.Equal(t, []bool{false, true}, transitions)
}

func TestProbe(t *testing.T) {
	var online atomic.Bool
	online.Store(false)

	probe := NewProbe(func(context.Context) bool {
		return online.Load()
	}, 10*time.Millisecond)

	// initial state is online until the first poll corrects it
	require.True(t, probe.IsOnline())

	probe.Start(context.Background())
	defer probe.Stop()

	require.Eventually(t, func() bool {
		return !probe.IsOnline()
	}, time.Second, 5*time.Millisecond)

	transition := make(chan bool, 1)
	cancel := probe.Subscribe(func(state bool) {
		select {
		case transition <- state:
		default:
		}
	})
	defer cancel()

	online.Store(true)
	select {
	case state := <-transition:
		require.True(t, state)
	case <-time.After(time.Second):
		t.Fatal("probe never reported the transition back online")
	}
}

func TestProbeStopIdempotent(t *testing.T) {
	probe := NewProbe(func(context.Context) bool { return true }, 10*time.Millisecond)
	probe.Start(context.Background())
	probe.Stop()
	probe.Stop()
}
