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

package packet

import (
	"encoding/binary"

	liberr "github.com/nabbar/pktserver/errors"
)

// Header is the decoded form of a packet's fixed 9-byte header, without its
// payload. Used by the dispatcher to pick the magic/opcode/flags apart
// before a full Packet value is built.
type Header struct {
	Magic     uint32
	Opcode    uint16
	Flags     Flags
	Priority  Priority
	Transport uint8
}

// ParseHeader decodes the fixed 9-byte header from the front of b. b must
// contain at least HeaderSize bytes; any remainder is the payload.
func ParseHeader(b []byte) (Header, liberr.Error) {
	if len(b) < HeaderSize {
		return Header{}, ErrorShortHeader.Error(nil)
	}

	return Header{
		Magic:     binary.LittleEndian.Uint32(b[0:4]),
		Opcode:    binary.LittleEndian.Uint16(b[4:6]),
		Flags:     Flags(b[6]),
		Priority:  Priority(b[7]),
		Transport: b[8],
	}, nil
}

// Parse decodes a full Packet (header + payload) from b.
func Parse(b []byte) (Packet, liberr.Error) {
	h, err := ParseHeader(b)
	if err != nil {
		return Packet{}, err
	}

	return New(h.Magic, h.Opcode, h.Flags, h.Priority, h.Transport, b[HeaderSize:]), nil
}

// Serialize writes the 9-byte header followed by the payload.
func Serialize(p Packet) []byte {
	out := make([]byte, HeaderSize+len(p.payload))

	binary.LittleEndian.PutUint32(out[0:4], p.magic)
	binary.LittleEndian.PutUint16(out[4:6], p.opcode)
	out[6] = byte(p.flags)
	out[7] = byte(p.priority)
	out[8] = p.transport

	copy(out[HeaderSize:], p.payload)
	return out
}
