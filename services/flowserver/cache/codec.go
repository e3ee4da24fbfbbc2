// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// codec serializes cached values for the persistent stores:
// msgpack for compactness, zstd because graph results repeat themselves.
//
// Values round-trip as generic JSON kinds (map[string]any, []any, scalars).
// Typed structs come back as maps keyed by their msgpack tags, so any struct
// cached here must carry msgpack tags matching its json wire names or the
// second read of a key returns a differently keyed shape than the first.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{encoder: enc, decoder: dec}, nil
}

func (c *codec) encode(value any) ([]byte, error) {
	packed, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}
	return c.encoder.EncodeAll(packed, nil), nil
}

func (c *codec) decode(data []byte) (any, error) {
	packed, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	var value any
	if err := msgpack.Unmarshal(packed, &value); err != nil {
		return nil, fmt.Errorf("msgpack decode: %w", err)
	}
	return value, nil
}
