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

package protocol

import (
	"context"

	libatm "github.com/nabbar/pktserver/atomic"
	libbuf "github.com/nabbar/pktserver/buffer"
	libcon "github.com/nabbar/pktserver/conn"
	liberr "github.com/nabbar/pktserver/errors"
)

// Handler is implemented by the concrete protocol embedding a Base. It
// supplies the parts the base lifecycle cannot: connection-level admission
// policy, the abstract per-packet handler, error routing, and the
// post-processing hook (spec §4.5).
type Handler interface {
	// ValidateConnection decides whether an accepted socket may proceed
	// past on_accept. Returning false closes the connection immediately.
	ValidateConnection(sender *libcon.Session) bool
	// ProcessMessage is the concrete protocol's abstract per-packet
	// handler; it typically delegates into the dispatcher (C7).
	ProcessMessage(sender *libcon.Session, lease *libbuf.Lease)
	// OnPostProcess runs after every message, before the keep-open check.
	OnPostProcess(sender *libcon.Session, lease *libbuf.Lease)
	// OnConnectionError routes any error raised during accept.
	OnConnectionError(sender *libcon.Session, err error)
}

// Snapshot is the read-only view returned by Base.Snapshot.
type Snapshot struct {
	IsListening   bool
	TotalErrors   uint64
	TotalMessages uint64
}

// Base is the reusable connection-lifecycle object a concrete protocol
// embeds (spec §4.5). Its three state flags and two counters are lock-free;
// disposal is one-shot.
type Base struct {
	handler  Handler
	keepOpen bool

	accepting *libatm.Flag
	disposed  *libatm.Flag

	totalErrors *libatm.Counter
	totalMsgs   *libatm.Counter
}

// New returns a Base wired to handler. keepOpen mirrors the
// keep_connection_open setting: when false, every post-processed message
// closes its connection (a request/response protocol); when true,
// connections stay open across messages (a persistent session protocol).
func New(handler Handler, keepOpen bool) *Base {
	return &Base{
		handler:     handler,
		keepOpen:    keepOpen,
		accepting:   libatm.NewFlag(true),
		disposed:    libatm.NewFlag(false),
		totalErrors: libatm.NewCounter(),
		totalMsgs:   libatm.NewCounter(),
	}
}

// OnAccept implements spec §4.5's on_accept: if not accepting, it returns
// immediately; if ctx is already cancelled, it fails with ErrorCancelled;
// if the handler rejects the connection, it closes the session and returns
// ErrorConnectionRejected; otherwise it subscribes the packet callback and
// starts the channel's receive loop on its own goroutine.
func (b *Base) OnAccept(ctx context.Context, sender *libcon.Session) liberr.Error {
	if !b.accepting.IsSet() {
		return nil
	}

	select {
	case <-ctx.Done():
		b.totalErrors.Inc()
		b.handler.OnConnectionError(sender, ctx.Err())
		return ErrorCancelled.Error(ctx.Err())
	default:
	}

	if !b.handler.ValidateConnection(sender) {
		sender.Close()
		return ErrorConnectionRejected.Error(nil)
	}

	sender.SetPacketCached(b.onPacket)
	go sender.Run()

	return nil
}

// onPacket is the Session cached-packet callback: it invokes the concrete
// protocol's ProcessMessage, recovering a panic into total_errors rather
// than taking the receive goroutine down with it, then runs
// PostProcessMessage.
func (b *Base) onPacket(sender *libcon.Session, lease *libbuf.Lease) {
	defer func() {
		if r := recover(); r != nil {
			b.totalErrors.Inc()
		}
	}()

	b.handler.ProcessMessage(sender, lease)
	b.PostProcessMessage(sender, lease)
}

// PostProcessMessage implements spec §4.5's post_process_message: it
// increments total_messages, invokes the handler's OnPostProcess, and
// closes the connection unless keep_connection_open is set.
func (b *Base) PostProcessMessage(sender *libcon.Session, lease *libbuf.Lease) {
	b.totalMsgs.Inc()
	b.handler.OnPostProcess(sender, lease)
	if !b.keepOpen {
		sender.Close()
	}
}

// SetConnectionAcceptance atomically toggles whether OnAccept admits new
// connections, used for maintenance-mode drains.
func (b *Base) SetConnectionAcceptance(accept bool) {
	b.accepting.SetTo(accept)
}

// Snapshot returns the current acceptance state and counters.
func (b *Base) Snapshot() Snapshot {
	return Snapshot{
		IsListening:   b.accepting.IsSet(),
		TotalErrors:   b.totalErrors.Load(),
		TotalMessages: b.totalMsgs.Load(),
	}
}

// Dispose performs one-shot cleanup: the first caller to win the 0→1 CAS
// stops acceptance; subsequent calls are no-ops.
func (b *Base) Dispose() {
	if !b.disposed.CompareAndSet(false, true) {
		return
	}
	b.accepting.Clear()
}

// IsDisposed reports whether Dispose has already run.
func (b *Base) IsDisposed() bool {
	return b.disposed.IsSet()
}
