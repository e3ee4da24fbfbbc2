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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "langflow:cache:"

// RedisStore shares cached results across processes. It is the natural
// backing store when the distributed task backend is in use, so workers and
// the API server see one cache.
type RedisStore struct {
	client *redis.Client
	codec  *codec
	ttl    time.Duration
}

// NewRedisStore creates a store over an existing client. A zero ttl keeps
// entries until explicit invalidation or Redis-side eviction.
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("client must not be nil")
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client, codec: c, ttl: ttl}, nil
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

// Get returns the stored value, treating missing keys as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (any, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	value, err := s.codec.decode(raw)
	if err != nil {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under key. Redis serializes writes per key, so the last
// SET wins cleanly.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := s.codec.encode(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(key), raw, s.ttl).Err()
}

// Delete removes the entry for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKey(key)).Err()
}

var _ Store = (*RedisStore)(nil)
