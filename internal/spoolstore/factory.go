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
	"fmt"

	"rlogd/pkg/rlog"
)

// Options holds the knobs needed to build any of the supported spool
// backends.
type Options struct {
	// FilePath is the backing file for the "file" backend.
	FilePath string

	// MaxEntries bounds the spool backlog; 0 means unbounded.
	// Applies to both the "file" backend (drop-oldest once the in-memory
	// backlog is full) and the "redis" backend (LTRIM down to the newest
	// MaxEntries entries after every push).
	MaxEntries int

	// RedisAddr, when non-empty, selects a real go-redis client for the
	// "redis" backend; otherwise a dependency-free logging client is used.
	RedisAddr string

	// RedisKey names the Redis list used as the backlog. Defaults to
	// "rlog:spool".
	RedisKey string
}

// BuildSpool constructs an rlog.Spool for the demo based on a string
// selector, mirroring persistence.BuildPersister's adapter-name switch.
// Supported backends:
//   - "none" (default): no durability, overflow is simply discarded
//   - "file": append-only JSONL file FIFO
//   - "redis": Redis-list FIFO, using a real client when RedisAddr is set
//     and a logging demo client otherwise
func BuildSpool(backend string, opts Options) (rlog.Spool, error) {
	switch backend {
	case "", "none":
		return nil, nil
	case "file":
		if opts.FilePath == "" {
			return nil, fmt.Errorf("spoolstore: file backend requires FilePath")
		}
		return NewFileSpool(opts.FilePath, opts.MaxEntries)
	case "redis":
		var client ListPusher
		if opts.RedisAddr != "" {
			client = NewGoRedisListPusher(opts.RedisAddr)
		} else {
			client = &LoggingListPusher{}
		}
		return NewRedisSpool(client, opts.RedisKey, opts.MaxEntries), nil
	default:
		return nil, fmt.Errorf("spoolstore: unknown backend %q", backend)
	}
}
