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
	"strings"
)

// Format selects the wire representation a Server renders records with.
type Format int

const (
	RFC3164 Format = iota
	RFC5424
)

func (f Format) String() string {
	switch f {
	case RFC3164:
		return "RFC3164"
	case RFC5424:
		return "RFC5424"
	default:
		return "unknown"
	}
}

func (f Format) valid() bool {
	return f == RFC3164 || f == RFC5424
}

// maxRenderedSize bounds a single formatted line (MSG_MAX_SIZE_CHAR in the
// original: the message budget plus 80 bytes of header/timestamp/host
// overhead).
const maxRenderedSize = MaxMessageSize + 80

// sanitizeToken replaces spaces with underscores, matching the original's
// in-place substitution on proc and the device hostname before emission.
func sanitizeToken(s string) string {
	if !strings.ContainsRune(s, ' ') {
		return s
	}
	return strings.ReplaceAll(s, " ", "_")
}

// formatLine renders r as one CRLF-terminated syslog line in the given
// format. It returns ErrFormatOverflow if the rendered line would exceed
// maxRenderedSize — the fixed bound that keeps one misbehaving producer
// from amplifying memory pressure downstream.
func formatLine(format Format, hostname string, r Record) ([]byte, error) {
	host := sanitizeToken(hostname)
	proc := sanitizeToken(r.Proc)

	var line string
	switch format {
	case RFC3164:
		ts := r.Timestamp.Format("Jan 02 15:04:05")
		if proc != "" {
			line = fmt.Sprintf("<%d>%s %s %s: %s\r\n", r.Priority, ts, host, proc, r.Msg)
		} else {
			line = fmt.Sprintf("<%d>%s %s -: %s\r\n", r.Priority, ts, host, r.Msg)
		}
	case RFC5424:
		ts := r.Timestamp.Format("2006-01-02T15:04:05")
		if proc != "" {
			line = fmt.Sprintf("<%d>1 %s %s %s - - %s\r\n", r.Priority, ts, host, proc, r.Msg)
		} else {
			line = fmt.Sprintf("<%d>1 %s %s - - - %s\r\n", r.Priority, ts, host, r.Msg)
		}
	default:
		return nil, ErrInvalidFormat
	}

	if len(line) > maxRenderedSize {
		return nil, ErrFormatOverflow
	}
	return []byte(line), nil
}
