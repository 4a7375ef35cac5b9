// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spoolstore

import (
	"context"
	"fmt"
)

// ListPusher abstracts the minimal Redis surface a RedisSpool needs: a
// durable list used as a FIFO. Implementations may wrap
// github.com/redis/go-redis/v9's Cmdable or any equivalent.
type ListPusher interface {
	RPush(ctx context.Context, key string, value []byte) error
	LIndex(ctx context.Context, key string, index int64) ([]byte, error)
	LPop(ctx context.Context, key string) error
	LLen(ctx context.Context, key string) (int64, error)

	// LTrim keeps only the elements in [start, stop] (Redis index
	// semantics: negative indices count from the tail), dropping the
	// rest. RedisSpool uses it to enforce drop-oldest once the backlog
	// exceeds maxEntries, the same way LTRIM key -N -1 keeps only the
	// newest N elements of a Redis list.
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// RedisSpool is a Redis-list-backed FIFO: RPush to enqueue, LIndex(0) to
// peek the oldest entry, LPop to commit it. Multiple rlogd processes
// could in principle share one key, but this dispatcher only ever has
// one writer and one reader (itself), so no fencing token is needed —
// unlike the rate limiter's idempotent commit adapter, replay here is
// always safe because Peek/Commit never race with a second consumer.
//
// Push enforces the same drop-oldest bound the ring queue and the file
// spool do: once the list holds more than maxEntries
// entries, it is trimmed down to the newest maxEntries via LTRIM.
type RedisSpool struct {
	client     ListPusher
	key        string
	maxEntries int64 // 0 means unbounded
}

// NewRedisSpool returns a spool that stores its backlog under key,
// trimming it down to the newest maxEntries entries after every Push.
// maxEntries <= 0 means unbounded.
func NewRedisSpool(client ListPusher, key string, maxEntries int) *RedisSpool {
	if key == "" {
		key = "rlog:spool"
	}
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &RedisSpool{client: client, key: key, maxEntries: int64(maxEntries)}
}

func (r *RedisSpool) Push(ctx context.Context, line []byte) error {
	if err := r.client.RPush(ctx, r.key, line); err != nil {
		return fmt.Errorf("spoolstore: redis rpush %s: %w", r.key, err)
	}
	if r.maxEntries > 0 {
		if err := r.client.LTrim(ctx, r.key, -r.maxEntries, -1); err != nil {
			return fmt.Errorf("spoolstore: redis ltrim %s: %w", r.key, err)
		}
	}
	return nil
}

func (r *RedisSpool) Peek(ctx context.Context) ([]byte, bool, error) {
	line, err := r.client.LIndex(ctx, r.key, 0)
	if err != nil {
		return nil, false, fmt.Errorf("spoolstore: redis lindex %s: %w", r.key, err)
	}
	if line == nil {
		return nil, false, nil
	}
	return line, true, nil
}

func (r *RedisSpool) Commit(ctx context.Context) error {
	if err := r.client.LPop(ctx, r.key); err != nil {
		return fmt.Errorf("spoolstore: redis lpop %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisSpool) Len(ctx context.Context) (int, error) {
	n, err := r.client.LLen(ctx, r.key)
	if err != nil {
		return 0, fmt.Errorf("spoolstore: redis llen %s: %w", r.key, err)
	}
	return int(n), nil
}
