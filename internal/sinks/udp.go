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
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// UDPDefaultPort is RLOG_UDP_DEFAULT_PORT in the original source.
const UDPDefaultPort = 514

// UDPSink sends one connectionless UDP datagram per line to a fixed
// remote address. Grounded on com/udp/udpip.c: a single pre-resolved
// destination socket, non-blocking send, no retry on failure.
type UDPSink struct {
	addr string
	port int

	mu   sync.Mutex
	conn *net.UDPConn
}

// NewUDPSink returns a sink configured to send to addr:port. If port is
// 0, UDPDefaultPort is used.
func NewUDPSink(addr string, port int) *UDPSink {
	if port == 0 {
		port = UDPDefaultPort
	}
	return &UDPSink{addr: addr, port: port}
}

func (u *UDPSink) Init(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", u.addr, u.port))
	if err != nil {
		return fmt.Errorf("sinks: resolve udp addr %s:%d: %w", u.addr, u.port, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("sinks: dial udp %s:%d: %w", u.addr, u.port, err)
	}
	if err := tuneReuseAddr(conn); err != nil {
		conn.Close()
		return fmt.Errorf("sinks: tune udp socket: %w", err)
	}
	u.conn = conn
	return nil
}

func (u *UDPSink) Poll(context.Context) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.conn != nil
}

func (u *UDPSink) Send(_ context.Context, line []byte) bool {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return false
	}
	conn.SetWriteDeadline(time.Now().Add(500 * time.Millisecond))
	_, err := conn.Write(line)
	return err == nil
}

func (u *UDPSink) Deinit(context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn != nil {
		u.conn.Close()
		u.conn = nil
	}
}

// tuneReuseAddr applies SO_REUSEADDR to conn's underlying file descriptor,
// the same tuning the original's TCP server socket performs before bind.
// It is harmless (and mostly redundant) on an already-connected UDP
// socket, but keeps every transport here going through the same
// syscall.RawConn path for consistency.
func tuneReuseAddr(conn interface {
	SyscallConn() (syscall.RawConn, error)
}) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = rc.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
