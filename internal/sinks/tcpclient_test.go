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
	"net"
	"testing"
	"time"
)

func TestTCPClientSink_ConnectsAndSends(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer listener.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		received <- string(buf[:n])
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	s := NewTCPClientSink("127.0.0.1", port)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer s.Deinit(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for !s.Poll(ctx) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !s.Poll(ctx) {
		t.Fatalf("Poll() never became true, reconnect loop did not connect")
	}

	if !s.Send(ctx, []byte("hello tcp")) {
		t.Fatalf("Send() = false, want true")
	}

	select {
	case got := <-received:
		if got != "hello tcp" {
			t.Errorf("server received %q, want %q", got, "hello tcp")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to receive the line")
	}
}

func TestTCPClientSink_PollFalseWithNoServer(t *testing.T) {
	s := NewTCPClientSink("127.0.0.1", 1)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer s.Deinit(ctx)

	if s.Poll(ctx) {
		t.Errorf("Poll() = true with no listening server, want false")
	}
	if s.Send(ctx, []byte("x")) {
		t.Errorf("Send() = true with no connection, want false")
	}
}

func TestNewTCPClientSink_DefaultsPort(t *testing.T) {
	s := NewTCPClientSink("127.0.0.1", 0)
	if s.port != TCPClientDefaultPort {
		t.Errorf("port = %d, want %d", s.port, TCPClientDefaultPort)
	}
}
