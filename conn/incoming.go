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
	liberr "github.com/nabbar/pktserver/errors"
	libbuf "github.com/nabbar/pktserver/buffer"
)

// pushIncoming blocks until lease is queued or the Session's context is
// cancelled, giving the incoming queue's bounded capacity natural
// backpressure on the socket read loop (spec §4.4 step 5).
func (s *Session) pushIncoming(lease *libbuf.Lease) error {
	select {
	case s.incoming <- lease:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// PopIncoming performs a non-blocking pop from the incoming queue, returning
// ok=false if it is currently empty (spec §4.4 "pop_incoming").
func (s *Session) PopIncoming() (lease *libbuf.Lease, ok bool) {
	select {
	case lease, ok = <-s.incoming:
		return lease, ok
	default:
		return nil, false
	}
}

// InjectIncoming copies data into a fresh lease and pushes it onto the
// incoming queue without touching the socket, for tests and simulated
// ingress (spec §4.4 "inject_incoming"). Returns ErrorQueueFull if the
// queue is at capacity.
func (s *Session) InjectIncoming(data []byte) liberr.Error {
	lease, err := s.pool.CopyFrom(data)
	if err != nil {
		return err
	}

	select {
	case s.incoming <- lease:
		return nil
	default:
		lease.Release()
		return ErrorQueueFull.Error(nil)
	}
}
