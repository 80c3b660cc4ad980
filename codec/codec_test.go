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

package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthrough(t *testing.T) {
	assert.Equal(t, "passthrough", Passthrough.Name())

	payload := []byte(`{"name":"alice"}`)
	encoded, err := Passthrough.Encode(payload)
	require.NoError(t, err)
	assert.Equal(t, payload, encoded)

	decoded, err := Passthrough.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestZstdRoundTrip(t *testing.T) {
	zstdCodec, err := Zstd()
	require.NoError(t, err)
	assert.Equal(t, "zstd", zstdCodec.Name())

	payload := bytes.Repeat([]byte(`{"name":"alice","age":30}`), 100)
	encoded, err := zstdCodec.Encode(payload)
	require.NoError(t, err)
	// repetitive JSON compresses well
	assert.Less(t, len(encoded), len(payload))

	decoded, err := zstdCodec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestZstdDecodeGarbage(t *testing.T) {
	zstdCodec, err := Zstd()
	require.NoError(t, err)

	_, err = zstdCodec.Decode([]byte("definitely not zstd"))
	require.Error(t, err)
}

func TestZstdEmptyPayload(t *testing.T) {
	zstdCodec, err := Zstd()
	require.NoError(t, err)

	encoded, err := zstdCodec.Encode(nil)
	require.NoError(t, err)

	decoded, err := zstdCodec.Decode(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
