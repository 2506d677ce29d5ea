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

package conn

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	libatm "github.com/nabbar/pktserver/atomic"
	libbuf "github.com/nabbar/pktserver/buffer"
)

// CachedHandler is the single subscriber notified on every lease pushed into
// a Session's incoming queue (spec §4.4 step 5, "cached callback").
type CachedHandler func(sender *Session, lease *libbuf.Lease)

// Session owns one accepted socket: its receive state machine, its bounded
// incoming queue of buffer leases, and the framed send path. A Session is
// created by the listener's accept loop at accept time, handed to the
// protocol base (C5), and destroyed when the receive loop reaches
// StateDisconnected.
type Session struct {
	id   uuid.UUID
	sock net.Conn
	pool libbuf.Pool

	stackAllocLimit int

	incoming    chan *libbuf.Lease
	incomingCap int

	state        atomic.Uint32
	disconnected *libatm.Flag

	startedAt    time.Time
	lastPingAt   atomic.Int64 // unix nanoseconds

	ctx    context.Context
	cancel context.CancelFunc

	cbMu sync.RWMutex
	cb   CachedHandler

	errTotal atomic.Uint64
}

// Options configures a new Session.
type Options struct {
	// IncomingCapacity bounds the incoming FIFO. When it is full the receive
	// loop blocks until a lease is popped or the Session is cancelled;
	// InjectIncoming instead fails with ErrorQueueFull.
	IncomingCapacity int
	// StackAllocLimit is the send-path threshold: Send frames payloads at or
	// under it in a freshly allocated slice and rents a pool lease for
	// larger ones.
	StackAllocLimit int
}

// New wraps an accepted socket into a Session. parent is the caller's
// cancellation context; the Session derives its own linked context from it
// so that cancelling parent unblocks any in-flight receive.
func New(parent context.Context, sock net.Conn, pool libbuf.Pool, opts Options) *Session {
	if opts.IncomingCapacity <= 0 {
		opts.IncomingCapacity = 256
	}
	if opts.StackAllocLimit <= 0 {
		opts.StackAllocLimit = 512
	}

	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		id:              uuid.New(),
		sock:            sock,
		pool:            pool,
		stackAllocLimit: opts.StackAllocLimit,
		incoming:        make(chan *libbuf.Lease, opts.IncomingCapacity),
		incomingCap:     opts.IncomingCapacity,
		disconnected:    libatm.NewFlag(false),
		startedAt:       time.Now(),
		ctx:             ctx,
		cancel:          cancel,
	}
	s.state.Store(uint32(StateIdle))
	s.lastPingAt.Store(s.startedAt.UnixNano())

	// Cancelling the linked context closes the socket, which unblocks Run's
	// in-flight read.
	context.AfterFunc(ctx, s.disconnect)

	return s
}

// ID returns the session's UUID, assigned at accept time for logging and
// metrics correlation.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the receive loop's current logical state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// StartedAt returns when the Session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// LastPingAt returns the timestamp of the most recently completed receive.
func (s *Session) LastPingAt() time.Time {
	return time.Unix(0, s.lastPingAt.Load())
}

// IsDisconnected reports whether the receive loop has fired Disconnected.
func (s *Session) IsDisconnected() bool {
	return s.disconnected.IsSet()
}

// Context returns the Session's linked cancellation context.
func (s *Session) Context() context.Context {
	return s.ctx
}

// RemoteAddr returns the underlying socket's remote address, used by the
// connection limiter (C8), rate limiter (C9), and dispatcher (C7) to key
// per-endpoint state.
func (s *Session) RemoteAddr() net.Addr {
	return s.sock.RemoteAddr()
}

// setState stores the receive loop's logical state.
func (s *Session) setState(st State) {
	s.state.Store(uint32(st))
}

// touch records the timestamp of a completed receive.
func (s *Session) touch() {
	s.lastPingAt.Store(time.Now().UnixNano())
}

// Close tears down the Session from outside the receive loop: it cancels
// the linked context and closes the socket, which in turn unblocks Run's
// in-flight read and lets it fire Disconnected through its own deferred
// cleanup. Safe to call multiple times and concurrently with Run.
func (s *Session) Close() {
	s.disconnect()
}

// disconnect transitions to Disconnected exactly once, cancels the linked
// context, and half-closes the socket in both directions (spec §4.4 step 6).
func (s *Session) disconnect() {
	if !s.disconnected.CompareAndSet(false, true) {
		return
	}
	s.setState(StateDisconnected)
	s.cancel()
	_ = s.sock.Close()
}

// SetPacketCached subscribes handler to the cached-packet event, replacing
// any previously set handler.
func (s *Session) SetPacketCached(handler CachedHandler) {
	s.cbMu.Lock()
	s.cb = handler
	s.cbMu.Unlock()
}

// RemovePacketCached unsubscribes the current cached-packet handler, if any.
func (s *Session) RemovePacketCached() {
	s.cbMu.Lock()
	s.cb = nil
	s.cbMu.Unlock()
}

func (s *Session) notify(lease *libbuf.Lease) {
	s.cbMu.RLock()
	cb := s.cb
	s.cbMu.RUnlock()
	if cb != nil {
		cb(s, lease)
	}
}

// errs mirrors the protocol base's total_errors counter for I/O faults
// observed by this Session's receive/send paths.
func (s *Session) errs() uint64 {
	return s.errTotal.Load()
}

func (s *Session) recordErr() {
	s.errTotal.Add(1)
}
