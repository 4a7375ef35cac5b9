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
	"time"
)

// TCPClientDefaultPort is the fixed port the original's TCP client
// transport dials (1514 in com/tcp/client.c).
const TCPClientDefaultPort = 1514

const tcpReconnectInterval = time.Second

// TCPClientSink dials a single remote syslog collector and reconnects in
// the background whenever the connection drops, mirroring the original's
// tcpcli_thread reconnect loop (a Go goroutine standing in for the OS
// thread).
type TCPClientSink struct {
	addr string
	port int

	mu     sync.Mutex
	conn   net.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTCPClientSink returns a sink that dials addr:port. If port is 0,
// TCPClientDefaultPort is used.
func NewTCPClientSink(addr string, port int) *TCPClientSink {
	if port == 0 {
		port = TCPClientDefaultPort
	}
	return &TCPClientSink{addr: addr, port: port}
}

func (s *TCPClientSink) Init(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.reconnectLoop(loopCtx)
	return nil
}

func (s *TCPClientSink) reconnectLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tcpReconnectInterval)
	defer ticker.Stop()

	s.tryConnect()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			connected := s.conn != nil
			s.mu.Unlock()
			if !connected {
				s.tryConnect()
			}
		}
	}
}

func (s *TCPClientSink) tryConnect() {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", s.addr, s.port), tcpReconnectInterval)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *TCPClientSink) Poll(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *TCPClientSink) Send(_ context.Context, line []byte) bool {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return false
	}

	conn.SetWriteDeadline(time.Now().Add(500 * time.Millisecond))
	if _, err := conn.Write(line); err != nil {
		s.mu.Lock()
		if s.conn == conn {
			conn.Close()
			s.conn = nil
		}
		s.mu.Unlock()
		return false
	}
	return true
}

func (s *TCPClientSink) Deinit(context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	if conn != nil {
		conn.Close()
	}
}
