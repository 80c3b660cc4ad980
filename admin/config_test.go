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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigNormalize(t *testing.T) {
	config := Config{}.Normalize()

	assert.Equal(t, defaultAdminBasePath, config.BasePath)
	assert.Equal(t, 5*time.Second, config.ReadTimeout)
	assert.Equal(t, 10*time.Second, config.WriteTimeout)
	assert.Equal(t, 30*time.Second, config.IdleTimeout)
}

func TestConfigNormalizeTrimsBasePath(t *testing.T) {
	config := Config{BasePath: "diag/cache/"}.Normalize()
	assert.Equal(t, "/diag/cache", config.BasePath)
}

func TestConfigNormalizeKeepsExplicitTimeouts(t *testing.T) {
	config := Config{
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
		IdleTimeout:  3 * time.Second,
	}.Normalize()

	assert.Equal(t, time.Second, config.ReadTimeout)
	assert.Equal(t, 2*time.Second, config.WriteTimeout)
	assert.Equal(t, 3*time.Second, config.IdleTimeout)
}
