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

	"rlogd/pkg/rlog"
)

// FrameOctetCounted wraps line in RFC 6587 octet-counting framing
// (MSG-LEN SP SYSLOG-MSG), the delimiter scheme stream transports use so
// a reader never has to guess where one message ends and the next
// begins. The original source's com/rfc6587/rfc6587.c instead just
// appends a trailing CRLF; that only works because its messages never
// contain an embedded CRLF. Octet-counting removes that assumption.
func FrameOctetCounted(line []byte) []byte {
	return []byte(fmt.Sprintf("%d %s", len(line), line))
}

// RFC6587Framer wraps an existing rlog.Sink so every line it sends is
// framed with FrameOctetCounted first, additional to (not instead of) the
// CRLF terminator the formatter already appended. It composes with
// TCPClientSink/TCPServerSink rather than duplicating their connection
// handling.
type RFC6587Framer struct {
	rlog.Sink
}

func (f RFC6587Framer) Send(ctx context.Context, line []byte) bool {
	return f.Sink.Send(ctx, FrameOctetCounted(line))
}

// Deinit forwards to the wrapped sink's Deinit if it provides one, so
// wrapping a Deiniter sink in RFC6587Framer doesn't silently drop teardown.
func (f RFC6587Framer) Deinit(ctx context.Context) {
	if d, ok := f.Sink.(rlog.Deiniter); ok {
		d.Deinit(ctx)
	}
}
