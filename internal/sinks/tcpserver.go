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

	"golang.org/x/sys/unix"
)

// TCPServerDefaultPort is RLOG_DEFAULT_TCPIP_PORT in the original source
// ("monitoring client" transport).
const TCPServerDefaultPort = 8888

// TCPServerMaxClients caps how many monitoring clients may be connected
// at once (RLOG_TCPIP_MAX_CLI in the original source).
const TCPServerMaxClients = 2

// TCPServerSink listens on a fixed port and fans every line out to every
// currently connected client, dropping clients on write failure.
// Grounded on com/tcp/server.c's accept loop and per-client socket
// bookkeeping.
type TCPServerSink struct {
	port int

	mu       sync.Mutex
	listener net.Listener
	clients  []net.Conn
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewTCPServerSink returns a sink listening on port. If port is 0,
// TCPServerDefaultPort is used.
func NewTCPServerSink(port int) *TCPServerSink {
	if port == 0 {
		port = TCPServerDefaultPort
	}
	return &TCPServerSink{port: port}
}

func (s *TCPServerSink) Init(context.Context) error {
	lc := net.ListenConfig{
		Control: func(_, _ string, rc syscall.RawConn) error {
			var sockErr error
			err := rc.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	listener, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("sinks: listen tcp :%d: %w", s.port, err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.listener = listener
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(loopCtx)
	return nil
}

func (s *TCPServerSink) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				continue
			}
		}

		s.mu.Lock()
		if len(s.clients) >= TCPServerMaxClients {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.clients = append(s.clients, conn)
		s.mu.Unlock()
	}
}

func (s *TCPServerSink) Poll(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients) > 0
}

func (s *TCPServerSink) Send(_ context.Context, line []byte) bool {
	s.mu.Lock()
	clients := append([]net.Conn(nil), s.clients...)
	s.mu.Unlock()

	sent := 0
	var dead []net.Conn
	for _, c := range clients {
		if _, err := c.Write(line); err != nil {
			dead = append(dead, c)
			continue
		}
		sent++
	}

	if len(dead) > 0 {
		s.mu.Lock()
		s.clients = removeConns(s.clients, dead)
		s.mu.Unlock()
		for _, c := range dead {
			c.Close()
		}
	}

	return sent > 0
}

func removeConns(all, dead []net.Conn) []net.Conn {
	deadSet := make(map[net.Conn]struct{}, len(dead))
	for _, c := range dead {
		deadSet[c] = struct{}{}
	}
	out := all[:0:0]
	for _, c := range all {
		if _, isDead := deadSet[c]; !isDead {
			out = append(out, c)
		}
	}
	return out
}

func (s *TCPServerSink) Deinit(context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	listener := s.listener
	clients := s.clients
	s.clients = nil
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	for _, c := range clients {
		c.Close()
	}
}
