/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"net"

	libbuf "github.com/nabbar/pktserver/buffer"
	libcon "github.com/nabbar/pktserver/conn"
	libconlmt "github.com/nabbar/pktserver/connlimit"
	libdsp "github.com/nabbar/pktserver/dispatch"
	liblog "github.com/nabbar/pktserver/logger"
)

// server is the concrete protocol.Handler this composition root embeds a
// protocol.Base with (spec §4.5/§12): it has no wire logic of its own,
// only the admission policy and the dispatcher hookup that every protocol
// built on the framework needs.
type server struct {
	dispatcher *libdsp.Dispatcher
	connLimit  *libconlmt.Limiter
	log        liblog.Logger
}

// ValidateConnection enforces C8's per-endpoint concurrent connection cap
// before the receive loop ever starts, and arranges for OnClosed to fire
// exactly once when the session's context is cancelled.
func (s *server) ValidateConnection(sender *libcon.Session) bool {
	endpoint := endpointOf(sender)

	if !s.connLimit.IsAllowed(endpoint) {
		s.log.Warn("connection rejected by connection limiter", liblog.Fields{"endpoint": endpoint})
		return false
	}

	go func() {
		<-sender.Context().Done()
		s.connLimit.OnClosed(endpoint)
	}()

	return true
}

// ProcessMessage is the abstract per-packet handler (spec §4.5 step 2): it
// hands the lease to the dispatcher (C7), which owns deserialize, policy
// enforcement, invocation, and any reply framing.
func (s *server) ProcessMessage(sender *libcon.Session, lease *libbuf.Lease) {
	if err := s.dispatcher.Dispatch(context.Background(), sender, lease); err != nil {
		s.log.Error("dispatch failed", err, liblog.Fields{
			"endpoint": endpointOf(sender),
			"session":  sender.ID().String(),
		})
	}
}

// OnPostProcess has nothing to add beyond protocol.Base's own bookkeeping
// for this composition root; an embedder with session-level telemetry
// would hook in here.
func (s *server) OnPostProcess(sender *libcon.Session, lease *libbuf.Lease) {}

// OnConnectionError logs errors raised during accept (spec §4.5 step 4).
func (s *server) OnConnectionError(sender *libcon.Session, err error) {
	s.log.Error("connection error", err, liblog.Fields{"endpoint": endpointOf(sender)})
}

// endpointOf mirrors dispatch's own endpoint derivation so the connection
// limiter, the rate limiter, and this handler all key on the same string:
// the remote host, without its port.
func endpointOf(sender *libcon.Session) string {
	if sender == nil {
		return ""
	}
	if addr := sender.RemoteAddr(); addr != nil {
		if host, _, err := net.SplitHostPort(addr.String()); err == nil {
			return host
		}
		return addr.String()
	}
	return ""
}
