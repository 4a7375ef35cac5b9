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

	redis "github.com/redis/go-redis/v9"
)

// LoggingListPusher is a dependency-free demo ListPusher: it keeps the
// backlog in-process and prints every operation, so BuildSpool("redis",
// ...) works without a live Redis instance. Not for production use.
type LoggingListPusher struct {
	lines [][]byte
}

func (p *LoggingListPusher) RPush(_ context.Context, key string, value []byte) error {
	p.lines = append(p.lines, append([]byte(nil), value...))
	fmt.Printf("[redis-spool-demo] RPUSH %s len=%d\n", key, len(value))
	return nil
}

func (p *LoggingListPusher) LIndex(_ context.Context, key string, index int64) ([]byte, error) {
	if index != 0 || len(p.lines) == 0 {
		return nil, nil
	}
	return p.lines[0], nil
}

func (p *LoggingListPusher) LPop(_ context.Context, key string) error {
	if len(p.lines) == 0 {
		return nil
	}
	p.lines = p.lines[1:]
	fmt.Printf("[redis-spool-demo] LPOP %s\n", key)
	return nil
}

func (p *LoggingListPusher) LLen(_ context.Context, key string) (int64, error) {
	return int64(len(p.lines)), nil
}

func (p *LoggingListPusher) LTrim(_ context.Context, key string, start, stop int64) error {
	n := int64(len(p.lines))
	lo := normalizeListIndex(start, n)
	hi := normalizeListIndex(stop, n)
	if lo > hi || lo >= n {
		p.lines = nil
		return nil
	}
	if hi >= n {
		hi = n - 1
	}
	p.lines = p.lines[lo : hi+1]
	fmt.Printf("[redis-spool-demo] LTRIM %s %d %d\n", key, start, stop)
	return nil
}

// normalizeListIndex turns a Redis-style (possibly negative) list index
// into a non-negative offset into a slice of length n, the same index
// arithmetic LTRIM applies server-side.
func normalizeListIndex(idx, n int64) int64 {
	if idx < 0 {
		idx += n
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// GoRedisListPusher wraps a github.com/redis/go-redis/v9 client as a
// ListPusher. Use NewGoRedisListPusher to construct it with an address
// like "127.0.0.1:6379".
type GoRedisListPusher struct{ c *redis.Client }

func NewGoRedisListPusher(addr string) *GoRedisListPusher {
	return &GoRedisListPusher{c: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *GoRedisListPusher) RPush(ctx context.Context, key string, value []byte) error {
	return g.c.RPush(ctx, key, value).Err()
}

func (g *GoRedisListPusher) LIndex(ctx context.Context, key string, index int64) ([]byte, error) {
	v, err := g.c.LIndex(ctx, key, index).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (g *GoRedisListPusher) LPop(ctx context.Context, key string) error {
	err := g.c.LPop(ctx, key).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

func (g *GoRedisListPusher) LLen(ctx context.Context, key string) (int64, error) {
	return g.c.LLen(ctx, key).Result()
}

func (g *GoRedisListPusher) LTrim(ctx context.Context, key string, start, stop int64) error {
	return g.c.LTrim(ctx, key, start, stop).Err()
}
