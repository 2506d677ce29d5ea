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
	"encoding/binary"
	"errors"
	"io"

	libsiz "github.com/nabbar/pktserver/size"
)

// Run drives the receive state machine (spec §4.4) until the peer closes
// the socket, a fatal I/O error occurs, or the Session's context is
// cancelled. It is meant to run on its own goroutine, one per accepted
// connection, and always ends by firing Disconnected exactly once.
func (s *Session) Run() {
	defer s.disconnect()

	var hdr [lengthPrefixSize]byte

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.setState(StateReadingHeader)
		if _, err := io.ReadFull(s.sock, hdr[:]); err != nil {
			if !errors.Is(err, io.EOF) {
				s.recordErr()
			}
			return
		}

		l := int(binary.LittleEndian.Uint16(hdr[:]))
		if l < lengthPrefixSize || l > int(s.pool.MaxBufferSize()) {
			s.recordErr()
			return
		}
		bodyLen := l - lengthPrefixSize

		s.setState(StateReadingBody)
		lease, err := s.pool.Rent(libsiz.Size(bodyLen))
		if err != nil {
			s.recordErr()
			return
		}

		if bodyLen > 0 {
			if _, err := io.ReadFull(s.sock, lease.Bytes()); err != nil {
				lease.Release()
				// A short read here means the peer closed mid-frame:
				// IncompletePacket (spec §4.4 "failure semantics").
				s.recordErr()
				return
			}
		}

		s.touch()
		if perr := s.pushIncoming(lease); perr != nil {
			lease.Release()
			return
		}
		s.notify(lease)
		s.setState(StateIdle)
	}
}
