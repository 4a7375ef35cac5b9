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

// Package sinks provides concrete rlog.Sink transports: a console writer
// and the UDP/TCP syslog transports the original source ships under
// com/udp and com/tcp.
package sinks

import (
	"context"
	"io"
	"os"
)

// StdoutSink writes every line to an io.Writer (os.Stdout by default).
// It is always considered live, matching the original's rlog_stdout —
// "stdout does not need to be initialized" and "stdout is always
// available".
type StdoutSink struct {
	w io.Writer
}

// NewStdoutSink returns a sink that writes to os.Stdout.
func NewStdoutSink() *StdoutSink {
	return &StdoutSink{w: os.Stdout}
}

// NewStdoutSinkTo returns a sink that writes to an arbitrary writer, for
// tests or for redirecting into a log file.
func NewStdoutSinkTo(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

func (s *StdoutSink) Init(context.Context) error { return nil }

func (s *StdoutSink) Poll(context.Context) bool { return true }

func (s *StdoutSink) Send(_ context.Context, line []byte) bool {
	_, err := s.w.Write(line)
	return err == nil
}
