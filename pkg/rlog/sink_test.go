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
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeSink is a minimal in-memory Sink used across the test suite. It is
// safe for concurrent use since the dispatcher's background goroutine and
// a test's assertions may touch it at the same time.
type fakeSink struct {
	mu sync.Mutex

	initErr  error
	live     bool
	sendOK   bool
	sent     [][]byte
	deinited bool
}

func (f *fakeSink) Init(context.Context) error { return f.initErr }

func (f *fakeSink) Poll(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

func (f *fakeSink) Send(_ context.Context, line []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sendOK {
		return false
	}
	cp := append([]byte(nil), line...)
	f.sent = append(f.sent, cp)
	return true
}

func (f *fakeSink) Deinit(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deinited = true
}

func (f *fakeSink) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSink) lines() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestSinkRegistry_InstallRejectsNil(t *testing.T) {
	r := newSinkRegistry(2)
	if err := r.install(context.Background(), nil); !errors.Is(err, ErrNilSink) {
		t.Errorf("install(nil) error = %v, want wrapping ErrNilSink", err)
	}
}

func TestSinkRegistry_InstallRejectsOverLimit(t *testing.T) {
	r := newSinkRegistry(1)
	if err := r.install(context.Background(), &fakeSink{sendOK: true}); err != nil {
		t.Fatalf("install() #1 error = %v", err)
	}
	err := r.install(context.Background(), &fakeSink{sendOK: true})
	if !errors.Is(err, ErrTooManySinks) {
		t.Errorf("install() #2 error = %v, want wrapping ErrTooManySinks", err)
	}
}

func TestSinkRegistry_InstallRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	r := newSinkRegistry(2)
	s := &fakeSink{sendOK: true}
	if err := r.install(ctx, s); err != nil {
		t.Fatalf("install() #1 error = %v", err)
	}
	if err := r.install(ctx, s); !errors.Is(err, ErrSinkInstalled) {
		t.Errorf("install() of same sink twice error = %v, want wrapping ErrSinkInstalled", err)
	}
	if r.count() != 1 {
		t.Errorf("count() = %d after rejected duplicate install, want 1", r.count())
	}
}

func TestSinkRegistry_InstallPropagatesInitError(t *testing.T) {
	r := newSinkRegistry(2)
	wantErr := errors.New("boom")
	err := r.install(context.Background(), &fakeSink{initErr: wantErr})
	if !errors.Is(err, wantErr) {
		t.Errorf("install() error = %v, want wrapping %v", err, wantErr)
	}
}

func TestSinkRegistry_PollAndSend(t *testing.T) {
	ctx := context.Background()
	up := &fakeSink{live: true, sendOK: true}
	down := &fakeSink{live: false, sendOK: true}

	r := newSinkRegistry(2)
	if err := r.install(ctx, up); err != nil {
		t.Fatalf("install(up) error = %v", err)
	}
	if err := r.install(ctx, down); err != nil {
		t.Fatalf("install(down) error = %v", err)
	}

	if !r.pollAll(ctx) {
		t.Fatalf("pollAll() = false, want true (one sink is live)")
	}

	if !r.sendAll(ctx, []byte("hello")) {
		t.Errorf("sendAll() = false, want true")
	}
	if len(up.sent) != 1 {
		t.Errorf("up.sent = %d messages, want 1", len(up.sent))
	}
	if len(down.sent) != 0 {
		t.Errorf("down.sent = %d messages, want 0 (sink was not live)", len(down.sent))
	}
}

func TestSinkRegistry_SendAllFalseWhenNoneLive(t *testing.T) {
	ctx := context.Background()
	r := newSinkRegistry(1)
	s := &fakeSink{live: false, sendOK: true}
	if err := r.install(ctx, s); err != nil {
		t.Fatalf("install() error = %v", err)
	}
	r.pollAll(ctx)
	if r.sendAll(ctx, []byte("x")) {
		t.Errorf("sendAll() = true, want false (no live sinks)")
	}
}

func TestSinkRegistry_DeinitAll(t *testing.T) {
	ctx := context.Background()
	r := newSinkRegistry(1)
	s := &fakeSink{}
	if err := r.install(ctx, s); err != nil {
		t.Fatalf("install() error = %v", err)
	}
	r.deinitAll(ctx)
	if !s.deinited {
		t.Errorf("deinitAll() did not call Deinit on installed sink")
	}
}
