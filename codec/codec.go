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

// Package codec defines the reversible payload transform applied to cache
// payloads before they reach the storage backend. Whether a stored payload
// went through a codec is recorded on the envelope, never guessed from the
// bytes themselves.
package codec

import (
	"github.com/klauspost/compress/zstd"
)

// Codec is a reversible byte transform. Implementations must guarantee that
// Decode(Encode(p)) returns bytes equal to p for every input.
type Codec interface {
	// Name identifies the codec in logs and diagnostics.
	Name() string
	// Encode transforms the payload for storage.
	Encode(payload []byte) ([]byte, error)
	// Decode reverses Encode.
	Decode(payload []byte) ([]byte, error)
}

// Passthrough is a Codec that stores payloads untouched.
var Passthrough Codec = passthrough{}

type passthrough struct{}

func (passthrough) Name() string                          { return "passthrough" }
func (passthrough) Encode(payload []byte) ([]byte, error) { return payload, nil }
func (passthrough) Decode(payload []byte) ([]byte, error) { return payload, nil }

// zstdCodec compresses payloads with zstd. The encoder and decoder are
// stateless with respect to individual payloads and safe for concurrent use.
type zstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ Codec = (*zstdCodec)(nil)

// Zstd creates a zstd-backed Codec.
func Zstd() (Codec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &zstdCodec{
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Name implements Codec.
func (c *zstdCodec) Name() string { return "zstd" }

// Encode implements Codec.
func (c *zstdCodec) Encode(payload []byte) ([]byte, error) {
	return c.encoder.EncodeAll(payload, make([]byte, 0, len(payload))), nil
}

// Decode implements Codec.
func (c *zstdCodec) Decode(payload []byte) ([]byte, error) {
	return c.decoder.DecodeAll(payload, nil)
}
