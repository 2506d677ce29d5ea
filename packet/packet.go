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

// HeaderSize is the fixed wire size, in bytes, of a packet header: magic(4)
// + opcode(2) + flags(1) + priority(1) + transport(1).
const HeaderSize = 9

// Packet is an immutable value: magic identifies the registered packet type
// to the catalog, opcode selects the handler, flags/priority/transport are
// carried verbatim, and payload is the raw application body. Any transform
// (compress/decompress/encrypt/decrypt, flag change) returns a new Packet.
type Packet struct {
	magic     uint32
	opcode    uint16
	flags     Flags
	priority  Priority
	transport uint8
	payload   []byte
}

// New builds a Packet, copying payload so the caller's slice may be reused
// or mutated freely afterward.
func New(magic uint32, opcode uint16, flags Flags, priority Priority, transport uint8, payload []byte) Packet {
	p := make([]byte, len(payload))
	copy(p, payload)

	return Packet{
		magic:     magic,
		opcode:    opcode,
		flags:     flags,
		priority:  priority,
		transport: transport,
		payload:   p,
	}
}

func (p Packet) Magic() uint32      { return p.magic }
func (p Packet) Opcode() uint16     { return p.opcode }
func (p Packet) Flags() Flags       { return p.flags }
func (p Packet) Priority() Priority { return p.priority }
func (p Packet) Transport() uint8   { return p.transport }

// Payload returns the packet's payload bytes. Callers must not mutate the
// returned slice; use WithPayload to derive a new Packet instead.
func (p Packet) Payload() []byte { return p.payload }

// WithFlags returns a copy of p with its flags replaced.
func (p Packet) WithFlags(f Flags) Packet {
	n := p
	n.flags = f
	return n
}

// WithPayload returns a copy of p with its payload replaced by a copy of
// the given bytes. Used by transformers (compress/encrypt) to yield a new
// immutable value rather than mutating the packet in place.
func (p Packet) WithPayload(payload []byte) Packet {
	n := p
	n.payload = make([]byte, len(payload))
	copy(n.payload, payload)
	return n
}
