/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package atomic

import (
	"sync/atomic"
)

// Flag is a 0/1 state toggle with one-shot CAS semantics, matching the
// accept/dispose/keep-open flags of a protocol lifecycle state machine.
type Flag struct {
	v atomic.Uint32
}

// NewFlag returns a Flag initialized to set (true) or cleared (false).
func NewFlag(set bool) *Flag {
	f := &Flag{}
	if set {
		f.v.Store(1)
	}
	return f
}

// IsSet reads the flag with acquire semantics.
func (f *Flag) IsSet() bool {
	return f.v.Load() == 1
}

// Set stores true with release semantics.
func (f *Flag) Set() {
	f.v.Store(1)
}

// Clear stores false with release semantics.
func (f *Flag) Clear() {
	f.v.Store(0)
}

// SetTo stores the given boolean.
func (f *Flag) SetTo(set bool) {
	if set {
		f.v.Store(1)
	} else {
		f.v.Store(0)
	}
}

// CompareAndSet performs a one-shot CAS transition, returning true exactly
// once for the caller that wins the race (used for one-shot disposal and
// idempotent single-runner triggers).
func (f *Flag) CompareAndSet(old, new bool) bool {
	var o, n uint32
	if old {
		o = 1
	}
	if new {
		n = 1
	}
	return f.v.CompareAndSwap(o, n)
}

// Counter is an unsigned 64-bit monotonic counter incremented with fetch_add,
// matching protocol.total_errors / total_messages and limiter attempt/
// rejection/cleanup tallies.
type Counter struct {
	v atomic.Uint64
}

// NewCounter returns a Counter starting at 0.
func NewCounter() *Counter {
	return &Counter{}
}

// Add increments the counter by delta and returns the new value.
func (c *Counter) Add(delta uint64) uint64 {
	return c.v.Add(delta)
}

// Inc increments the counter by one and returns the new value.
func (c *Counter) Inc() uint64 {
	return c.v.Add(1)
}

// Load returns the current value.
func (c *Counter) Load() uint64 {
	return c.v.Load()
}

// Store sets the counter to an explicit value (used when resetting metrics).
func (c *Counter) Store(val uint64) {
	c.v.Store(val)
}
