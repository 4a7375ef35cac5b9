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

package sinks

import (
	"context"
	"testing"
)

type fakeSink struct {
	initErr    error
	live       bool
	sendOK     bool
	sent       [][]byte
	deinitDone bool
}

func (f *fakeSink) Init(context.Context) error { return f.initErr }
func (f *fakeSink) Poll(context.Context) bool  { return f.live }
func (f *fakeSink) Send(_ context.Context, line []byte) bool {
	f.sent = append(f.sent, append([]byte(nil), line...))
	return f.sendOK
}
func (f *fakeSink) Deinit(context.Context) { f.deinitDone = true }

func TestFrameOctetCounted(t *testing.T) {
	got := FrameOctetCounted([]byte("hello"))
	if string(got) != "5 hello" {
		t.Errorf("FrameOctetCounted() = %q, want %q", got, "5 hello")
	}
}

func TestRFC6587Framer_SendAppliesFraming(t *testing.T) {
	inner := &fakeSink{sendOK: true}
	f := RFC6587Framer{Sink: inner}

	if !f.Send(context.Background(), []byte("hi")) {
		t.Fatalf("Send() = false, want true")
	}
	if len(inner.sent) != 1 {
		t.Fatalf("inner.sent has %d entries, want 1", len(inner.sent))
	}
	if string(inner.sent[0]) != "2 hi" {
		t.Errorf("inner received %q, want %q", inner.sent[0], "2 hi")
	}
}

func TestRFC6587Framer_SendPropagatesFailure(t *testing.T) {
	inner := &fakeSink{sendOK: false}
	f := RFC6587Framer{Sink: inner}

	if f.Send(context.Background(), []byte("hi")) {
		t.Errorf("Send() = true, want false when the wrapped sink fails")
	}
}

func TestRFC6587Framer_DeinitForwardsToDeiniter(t *testing.T) {
	inner := &fakeSink{}
	f := RFC6587Framer{Sink: inner}

	f.Deinit(context.Background())

	if !inner.deinitDone {
		t.Errorf("Deinit() did not forward to the wrapped sink's Deinit")
	}
}

type noDeinitSink struct{}

func (noDeinitSink) Init(context.Context) error        { return nil }
func (noDeinitSink) Poll(context.Context) bool         { return true }
func (noDeinitSink) Send(context.Context, []byte) bool { return true }

func TestRFC6587Framer_DeinitNoopWithoutDeiniter(t *testing.T) {
	f := RFC6587Framer{Sink: noDeinitSink{}}
	f.Deinit(context.Background())
}
