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

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Config assembles everything NewServer needs to build a dispatcher. The
// zero value is valid except where noted; withDefaults fills in the rest.
type Config struct {
	// Format selects RFC3164 or RFC5424 rendering. Defaults to RFC3164.
	Format Format

	// Hostname is embedded in every rendered line. Defaults to os.Hostname().
	Hostname string

	// QueueSize is the in-memory ring queue capacity. Defaults to
	// DefaultQueueSize.
	QueueSize int

	// MaxSinks caps how many sinks may be installed. Defaults to
	// DefaultMaxSinks.
	MaxSinks int

	// Spool is the durable overflow path used when no sink is live.
	// Defaults to a no-op spool that discards every line pushed to it if
	// left nil — callers that need durability must supply one from
	// internal/spoolstore.
	Spool Spool

	// HeartbeatInterval, if positive, makes the dispatcher emit a DEBUG
	// record on its own behalf once every HeartbeatInterval/pollInterval
	// idle poll ticks (at least one) — ticks on which a sink was live and
	// no new record woke the loop. Zero disables heartbeats.
	HeartbeatInterval time.Duration

	// MinSeverity filters out any record less severe (numerically
	// greater) than the given level before it ever reaches the queue.
	// nil means no filtering — every severity from Emergency through
	// Debug is accepted, matching the original's RLOG_FILTER_OFF build
	// default. A pointer distinguishes "unset" from "filter at
	// Emergency", which the zero value of Severity cannot.
	MinSeverity *Severity

	// Debug, when set, makes the dispatcher periodically log queue
	// stats through the standard logger (rlog_print_dbg_stats in the
	// original, gated there by a _RLOG_DBG_ build flag).
	Debug bool

	// Logger receives startup/shutdown/diagnostic text. Defaults to
	// log.Default() if left nil.
	Logger *log.Logger

	// Metrics enables Prometheus instrumentation scoped to this Server's
	// own registry (see metrics.go); no package-level registry is ever
	// touched.
	Metrics bool

	// MetricsNamespace prefixes every exported metric name. Defaults to
	// "rlog".
	MetricsNamespace string
}

func (c Config) validate() error {
	if !c.Format.valid() {
		return &ConfigError{Op: "rlog_set_format", Err: ErrInvalidFormat}
	}
	if c.QueueSize < 0 {
		return &ConfigError{Op: "rlog_init", Err: ErrQueueSize}
	}
	if c.MaxSinks < 0 {
		return &ConfigError{Op: "rlog_init", Err: ErrTooManySinks}
	}
	if c.MinSeverity != nil && *c.MinSeverity > Debug {
		return &ConfigError{Op: "rlog_init", Err: ErrInvalidSeverity}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.MaxSinks == 0 {
		c.MaxSinks = DefaultMaxSinks
	}
	if c.Hostname == "" {
		if h, err := os.Hostname(); err == nil {
			c.Hostname = h
		} else {
			c.Hostname = "localhost"
		}
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = "rlog"
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// String renders a human-readable summary; the dispatcher includes it in
// its startup log line.
func (c Config) String() string {
	return fmt.Sprintf("format=%s hostname=%s queue_size=%d max_sinks=%d heartbeat=%s metrics=%t",
		c.Format, c.Hostname, c.QueueSize, c.MaxSinks, c.HeartbeatInterval, c.Metrics)
}
