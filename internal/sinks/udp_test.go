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

func TestUDPSink_SendDeliversDatagram(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	defer listener.Close()

	port := listener.LocalAddr().(*net.UDPAddr).Port
	u := NewUDPSink("127.0.0.1", port)
	ctx := context.Background()

	if err := u.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer u.Deinit(ctx)

	if !u.Poll(ctx) {
		t.Fatalf("Poll() = false after Init, want true")
	}
	if !u.Send(ctx, []byte("hello udp")) {
		t.Fatalf("Send() = false, want true")
	}

	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 256)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP() error = %v", err)
	}
	if got := string(buf[:n]); got != "hello udp" {
		t.Errorf("received %q, want %q", got, "hello udp")
	}
}

func TestUDPSink_PollFalseBeforeInit(t *testing.T) {
	u := NewUDPSink("127.0.0.1", 19999)
	if u.Poll(context.Background()) {
		t.Errorf("Poll() = true before Init, want false")
	}
}

func TestUDPSink_SendFalseAfterDeinit(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	defer listener.Close()

	port := listener.LocalAddr().(*net.UDPAddr).Port
	u := NewUDPSink("127.0.0.1", port)
	ctx := context.Background()
	if err := u.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	u.Deinit(ctx)

	if u.Send(ctx, []byte("x")) {
		t.Errorf("Send() = true after Deinit, want false")
	}
}

func TestNewUDPSink_DefaultsPort(t *testing.T) {
	u := NewUDPSink("127.0.0.1", 0)
	if u.port != UDPDefaultPort {
		t.Errorf("port = %d, want %d", u.port, UDPDefaultPort)
	}
}
