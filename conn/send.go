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
	"encoding/binary"
	"io"

	liberr "github.com/nabbar/pktserver/errors"
	libsiz "github.com/nabbar/pktserver/size"
)

// Send writes one framed packet: a 2-byte little-endian length prefix
// (including itself) followed by data. Payloads at or under the Session's
// StackAllocLimit are framed in a freshly allocated slice; larger payloads
// rent a lease from the pool. A partial write is always retried to completion or
// surfaced as ErrorIoError (spec §4.4 "send").
func (s *Session) Send(data []byte) liberr.Error {
	if len(data) > maxFrameLength-lengthPrefixSize {
		return ErrorPacketTooLarge.Error(nil)
	}

	l := uint16(len(data) + lengthPrefixSize)

	if len(data) <= s.stackAllocLimit {
		var hdr [lengthPrefixSize]byte
		binary.LittleEndian.PutUint16(hdr[:], l)

		frame := make([]byte, 0, int(l))
		frame = append(frame, hdr[:]...)
		frame = append(frame, data...)

		if _, err := writeFull(s.sock, frame); err != nil {
			s.recordErr()
			return ErrorIoError.Error(err)
		}
		return nil
	}

	lease, err := s.pool.Rent(libsiz.Size(l))
	if err != nil {
		return err
	}
	defer lease.Release()

	buf := lease.Bytes()
	binary.LittleEndian.PutUint16(buf[:lengthPrefixSize], l)
	copy(buf[lengthPrefixSize:], data)

	if _, werr := writeFull(s.sock, buf); werr != nil {
		s.recordErr()
		return ErrorIoError.Error(werr)
	}
	return nil
}

// SendAsync is the cancellation-aware variant of Send: it fails fast with
// ErrorConnectionClosed if ctx is already done before attempting the write.
// Go's net.Conn has no native in-flight write cancellation; a caller that
// needs a hard cutoff should arrange for ctx's cancellation to also close
// the underlying socket.
func (s *Session) SendAsync(ctx context.Context, data []byte) liberr.Error {
	select {
	case <-ctx.Done():
		return ErrorConnectionClosed.Error(ctx.Err())
	default:
	}
	return s.Send(data)
}

// writeFull retries partial writes until buf is fully written or a write
// returns an error (including a zero-byte write with no error, which
// signals a closed peer).
func writeFull(w io.Writer, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
