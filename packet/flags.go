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

// Flags is the packet header's bitset field. Unknown bits are preserved
// verbatim by the codec for forward compatibility; the core never asserts
// that a Flags value only carries known bits.
type Flags uint8

const (
	FlagNone       Flags = 0
	FlagCompressed Flags = 1 << 1
	FlagEncrypted  Flags = 1 << 2
	FlagFragmented Flags = 1 << 3
	FlagReliable   Flags = 1 << 4
	FlagUnreliable Flags = 1 << 5
	FlagAcked      Flags = 1 << 6
	FlagSystem     Flags = 1 << 7
)

// Has reports whether the given bit (or combination of bits) is set.
func (f Flags) Has(bit Flags) bool {
	return f&bit == bit
}

// Set returns a new Flags value with bit set, leaving f untouched.
func (f Flags) Set(bit Flags) Flags {
	return f | bit
}

// Clear returns a new Flags value with bit cleared, leaving f untouched.
func (f Flags) Clear(bit Flags) Flags {
	return f &^ bit
}

// Priority is the packet header's priority field. Urgent outranks High
// outranks Medium outranks Low outranks Normal; the core itself never
// reorders on this value, it is carried for an embedder's own outbound
// scheduler (spec §9 Open Question decision).
type Priority uint8

const (
	PriorityNormal Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

// Less reports whether p is strictly lower priority than other.
func (p Priority) Less(other Priority) bool {
	return p < other
}
