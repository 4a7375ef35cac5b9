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

// Package spoolstore provides durable backends for rlog.Spool: an
// append-only file FIFO and a Redis-list-backed FIFO, selected through
// BuildSpool the same way the rate-limiter demo selects a persistence
// adapter by name.
package spoolstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileSpool is a durable, append-only JSONL FIFO. Lines are appended to
// disk as they're pushed and also kept in an in-memory backlog of
// uncommitted lines, so Peek/Commit never re-read from disk on the hot
// path. It is safe for concurrent use.
type FileSpool struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string

	maxEntries int // 0 means unbounded

	backlog       [][]byte // uncommitted lines, oldest first
	droppedOnFull uint64
}

type spoolEntry struct {
	Line []byte `json:"line"`
}

// NewFileSpool opens (or creates) path in append mode and replays every
// entry still in the file into the in-memory backlog. Commit is not
// recorded on disk, so lines committed since the last Compact are still in
// the file and are replayed again after a restart. maxEntries bounds
// the backlog (spool_max_entries in the original's dlog contract); 0
// means unbounded. Once replay brings the backlog over the cap, the
// oldest entries are dropped immediately, matching the drop-oldest policy
// Push enforces going forward.
func NewFileSpool(path string, maxEntries int) (*FileSpool, error) {
	var backlog [][]byte

	if existing, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(existing)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1<<20)
		for scanner.Scan() {
			var e spoolEntry
			if err := json.Unmarshal(scanner.Bytes(), &e); err == nil {
				backlog = append(backlog, e.Line)
			}
		}
		scanErr := scanner.Err()
		existing.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("spoolstore: replay %s: %w", path, scanErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("spoolstore: open %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("spoolstore: open %s: %w", path, err)
	}

	s := &FileSpool{f: f, w: bufio.NewWriterSize(f, 64*1024), path: path, maxEntries: maxEntries, backlog: backlog}
	if maxEntries > 0 && len(s.backlog) > maxEntries {
		s.droppedOnFull += uint64(len(s.backlog) - maxEntries)
		s.backlog = s.backlog[len(s.backlog)-maxEntries:]
	}
	return s, nil
}

// Push appends line to the backing file and the in-memory backlog,
// drop-oldest once the backlog reaches maxEntries — the same bound the
// ring queue enforces upstream. The bound applies to the in-memory
// backlog only: every line is still appended to the file, which keeps
// growing until Compact rewrites it.
func (s *FileSpool) Push(_ context.Context, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := append([]byte(nil), line...)
	enc := json.NewEncoder(s.w)
	if err := enc.Encode(spoolEntry{Line: cp}); err != nil {
		return fmt.Errorf("spoolstore: encode: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("spoolstore: flush: %w", err)
	}
	s.backlog = append(s.backlog, cp)
	if s.maxEntries > 0 && len(s.backlog) > s.maxEntries {
		s.backlog = s.backlog[1:]
		s.droppedOnFull++
	}
	return nil
}

// DroppedCount reports how many entries have been discarded to the
// drop-oldest policy since this FileSpool was opened.
func (s *FileSpool) DroppedCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.droppedOnFull
}

// Peek returns the oldest uncommitted line.
func (s *FileSpool) Peek(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.backlog) == 0 {
		return nil, false, nil
	}
	return s.backlog[0], true, nil
}

// Commit drops the oldest line from the in-memory backlog. The on-disk
// file is compacted lazily (see Compact) rather than rewritten on every
// commit, trading disk space for write amplification the same way the
// original fixed-size dlog partition traded memory for simplicity.
func (s *FileSpool) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.backlog) == 0 {
		return nil
	}
	s.backlog = s.backlog[1:]
	return nil
}

func (s *FileSpool) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.backlog), nil
}

// Compact rewrites the backing file to hold only the still-uncommitted
// backlog, reclaiming space used by already-delivered lines. Callers
// should invoke this periodically rather than on every Commit.
func (s *FileSpool) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".compact"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("spoolstore: compact create: %w", err)
	}
	w := bufio.NewWriterSize(f, 64*1024)
	enc := json.NewEncoder(w)
	for _, line := range s.backlog {
		if err := enc.Encode(spoolEntry{Line: line}); err != nil {
			f.Close()
			return fmt.Errorf("spoolstore: compact encode: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("spoolstore: compact flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("spoolstore: compact close: %w", err)
	}

	_ = s.w.Flush()
	_ = s.f.Close()
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("spoolstore: compact rename: %w", err)
	}

	newF, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("spoolstore: reopen after compact: %w", err)
	}
	s.f = newF
	s.w = bufio.NewWriterSize(newF, 64*1024)
	return nil
}

// Close flushes and closes the underlying file.
func (s *FileSpool) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.w.Flush()
	return s.f.Close()
}
