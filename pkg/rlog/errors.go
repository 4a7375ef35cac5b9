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
	"errors"
	"fmt"
)

// Sentinel errors for the configuration-error taxonomy (spec §7):
// invalid format value, missing sink callback, too many sinks, invalid
// name. They are returned by NewServer, InstallSink and the pre-Start
// setters; ErrServerRunning is the one returned once Start has been called.
var (
	ErrNilSink         = errors.New("rlog: sink must not be nil")
	ErrTooManySinks    = errors.New("rlog: too many sinks installed")
	ErrSinkInstalled   = errors.New("rlog: sink already installed")
	ErrInvalidFormat   = errors.New("rlog: invalid wire format")
	ErrInvalidName     = errors.New("rlog: invalid device name")
	ErrServerRunning   = errors.New("rlog: server already running")
	ErrQueueSize       = errors.New("rlog: queue size must be positive")
	ErrInvalidSeverity = errors.New("rlog: invalid minimum severity filter")

	// ErrFormatOverflow is returned by formatLine when a rendered line would
	// exceed maxRenderedSize. The dispatcher drops the record and counts it
	// rather than truncating mid-line.
	ErrFormatOverflow = errors.New("rlog: formatted line too large")
)

// ConfigError wraps a configuration-time failure with the operation that
// produced it, so callers can log "install_interface: too many sinks"
// the way the original's DBG_PRINTF call sites did.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rlog: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
