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

package buffer

import (
	liberr "github.com/nabbar/pktserver/errors"
	libatm "github.com/nabbar/pktserver/atomic"
	libsiz "github.com/nabbar/pktserver/size"
)

// Lease is a scoped handle over a pool-owned byte region of exact length L.
// It is single-owner: Release returns the backing bucket array to its
// originating pool and is idempotent, but callers must call it exactly once
// on the success path (a deferred Release is the normal usage).
type Lease struct {
	pool     *pkgPool
	bucket   libsiz.Size
	backing  []byte
	length   int
	released *libatm.Flag
}

// Bytes returns the leased region, trimmed to the exact rented/copied
// length. The slice aliases the pool's backing array and must not be used
// after Release.
func (l *Lease) Bytes() []byte {
	if l == nil {
		return nil
	}
	return l.backing[:l.length]
}

// Len returns the exact length of the leased region.
func (l *Lease) Len() int {
	if l == nil {
		return 0
	}
	return l.length
}

// Grow returns a new Lease of at least minSize, copying the current
// contents into the front of the new region, and releases the receiver.
// Used by the connection channel's receive loop when an announced frame
// length exceeds the current receive buffer (spec §4.4 step 3).
func (l *Lease) Grow(minSize int) (*Lease, liberr.Error) {
	n, err := l.pool.Rent(libsiz.Size(minSize))
	if err != nil {
		return nil, err
	}
	copy(n.backing, l.backing[:l.length])
	l.Release()
	return n, nil
}

// Release returns the backing array to its originating bucket pool. It is
// safe to call multiple times: only the first call has any effect.
func (l *Lease) Release() {
	if l == nil || l.pool == nil {
		return
	}
	if !l.released.CompareAndSet(false, true) {
		return
	}
	l.pool.release(l.bucket, l.backing)
}
