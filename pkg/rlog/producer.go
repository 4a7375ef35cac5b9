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

import "fmt"

// Producer is a named submission handle bound to one Server. The name is
// stamped on every record as the "proc" field — the Go-native replacement
// for the original's per-thread name lookup, since goroutines carry no
// comparable identity. Obtain one per logical component (e.g. one per
// subsystem or request handler) and reuse it; a Producer is safe for
// concurrent use by multiple goroutines.
type Producer struct {
	server *Server
	name   string
}

// Producer returns a handle that stamps every record it submits with
// name. Calling it repeatedly with the same name is cheap and returns
// independent handles that all write into the same underlying queue.
func (s *Server) Producer(name string) *Producer {
	return &Producer{server: s, name: truncate(name, MaxProcSize)}
}

// Log submits msg at severity sev. Records less severe than the server's
// configured MinSeverity filter are dropped before they ever reach the
// queue. It never blocks: the record is copied into the bounded queue and
// the dispatcher is woken, matching the original's rlog() — fire-and-forget
// from the caller's perspective.
func (p *Producer) Log(sev Severity, msg string) {
	p.submit(sev, msg)
}

// Logf formats according to format and a, then submits the result at
// severity sev (rlogf() in the original source).
func (p *Producer) Logf(sev Severity, format string, a ...any) {
	p.submit(sev, fmt.Sprintf(format, a...))
}

func (p *Producer) submit(sev Severity, msg string) {
	s := p.server
	if sev > s.minSeverity {
		return
	}
	rec := newRecord(s.clock.Now(), sev, p.name, msg)
	if s.queue.put(rec) {
		s.observeQueueDrop()
	}
	s.wake()
}
