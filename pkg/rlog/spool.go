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

package rlog

import "context"

// Spool is the disk-backed overflow path a Server falls back to when no
// sink is live (dlog in the original source). It is a durable FIFO with
// peek-then-commit semantics: a dispatcher must not advance the cursor
// until a line has actually been handed off successfully, so a crash
// between peek and commit just re-delivers the same line next time.
//
// Implementations live in internal/spoolstore; this package only depends
// on the interface so the core dispatcher never imports a concrete
// storage backend.
type Spool interface {
	// Push appends line to the spool. It must not block the caller on a
	// remote round-trip for more than a bounded, best-effort duration —
	// callers are the dispatcher's own goroutine.
	Push(ctx context.Context, line []byte) error

	// Peek returns the oldest un-committed line without removing it, and
	// ok=false if the spool is empty.
	Peek(ctx context.Context) (line []byte, ok bool, err error)

	// Commit discards the oldest un-committed line, the one Peek returns.
	// Calling it on an empty spool is a no-op.
	Commit(ctx context.Context) error

	// Len reports the number of un-committed lines currently held.
	Len(ctx context.Context) (int, error)
}

// noopSpool silently discards everything. It is the zero-value fallback
// used when a Server is configured with a nil Config.Spool, matching the
// original's RLOG_DLOG_ENABLE=0 build-time switch re-expressed as a
// runtime default instead of a compile flag.
type noopSpool struct{}

func (noopSpool) Push(context.Context, []byte) error        { return nil }
func (noopSpool) Peek(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (noopSpool) Commit(context.Context) error              { return nil }
func (noopSpool) Len(context.Context) (int, error)          { return 0, nil }

// drainSpoolToSinks forwards as many spooled lines as possible to live
// sinks, stopping at the first send failure so the cursor only advances
// past lines that were actually delivered. It mirrors dump_dlog_to_remote.
func drainSpoolToSinks(ctx context.Context, spool Spool, sinks *sinkRegistry) (sent int, err error) {
	for {
		line, ok, perr := spool.Peek(ctx)
		if perr != nil {
			return sent, perr
		}
		if !ok {
			return sent, nil
		}
		if !sinks.sendAll(ctx, line) {
			return sent, nil
		}
		if err := spool.Commit(ctx); err != nil {
			return sent, err
		}
		sent++
	}
}
