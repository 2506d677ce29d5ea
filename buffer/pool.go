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
	"sort"
	"sync"

	libatm "github.com/nabbar/pktserver/atomic"
	liberr "github.com/nabbar/pktserver/errors"
	libsiz "github.com/nabbar/pktserver/size"
)

// Pool rents and returns byte regions of bucketed sizes. Buckets exist to
// avoid fragmentation under heavy connection churn and keep per-size
// allocation amortized O(1); a request above MaxBufferSize fails with
// ErrorInvalidSize.
type Pool interface {
	// Rent returns a Lease over a region of at least minSize bytes.
	Rent(minSize libsiz.Size) (*Lease, liberr.Error)
	// CopyFrom rents a region sized to len(data) and copies data into it.
	CopyFrom(data []byte) (*Lease, liberr.Error)
	// MaxBufferSize is the hard cap a pooled buffer may reach.
	MaxBufferSize() libsiz.Size
}

// pkgPool is the concrete Pool: one sync.Pool per bucket size, selected by
// the smallest bucket that fits the request.
type pkgPool struct {
	max     libsiz.Size
	buckets []libsiz.Size
	pools   map[libsiz.Size]*sync.Pool
}

// New builds a Pool with the given hard cap and bucket sizes. Buckets are
// sorted ascending; the largest bucket should normally equal maxBufferSize.
// Construction fails if no buckets are given.
func New(maxBufferSize libsiz.Size, buckets ...libsiz.Size) (Pool, liberr.Error) {
	if len(buckets) == 0 {
		return nil, ErrorZeroBuckets.Error(nil)
	}

	b := make([]libsiz.Size, len(buckets))
	copy(b, buckets)
	sort.Slice(b, func(i, j int) bool { return b[i] < b[j] })

	p := &pkgPool{
		max:     maxBufferSize,
		buckets: b,
		pools:   make(map[libsiz.Size]*sync.Pool, len(b)),
	}

	for _, sz := range b {
		sz := sz
		p.pools[sz] = &sync.Pool{
			New: func() interface{} {
				return make([]byte, sz)
			},
		}
	}

	return p, nil
}

// DefaultBuckets returns a standard power-of-two bucket ladder from 256B up
// to and including max, used by the composition root when the embedder
// does not supply an explicit bucket list.
func DefaultBuckets(max libsiz.Size) []libsiz.Size {
	res := make([]libsiz.Size, 0, 16)
	for sz := libsiz.Size(256); sz < max; sz <<= 1 {
		res = append(res, sz)
	}
	res = append(res, max)
	return res
}

func (p *pkgPool) MaxBufferSize() libsiz.Size {
	return p.max
}

// bucketFor returns the smallest configured bucket able to hold minSize.
func (p *pkgPool) bucketFor(minSize libsiz.Size) (libsiz.Size, bool) {
	for _, sz := range p.buckets {
		if sz >= minSize {
			return sz, true
		}
	}
	return 0, false
}

func (p *pkgPool) Rent(minSize libsiz.Size) (*Lease, liberr.Error) {
	if minSize > p.max {
		return nil, ErrorInvalidSize.Error(nil)
	}

	bucket, ok := p.bucketFor(minSize)
	if !ok {
		return nil, ErrorInvalidSize.Error(nil)
	}

	raw := p.pools[bucket].Get().([]byte)
	if libsiz.Size(len(raw)) < bucket {
		raw = make([]byte, bucket)
	}

	return &Lease{
		pool:     p,
		bucket:   bucket,
		backing:  raw,
		length:   int(minSize),
		released: libatm.NewFlag(false),
	}, nil
}

func (p *pkgPool) CopyFrom(data []byte) (*Lease, liberr.Error) {
	l, err := p.Rent(libsiz.Size(len(data)))
	if err != nil {
		return nil, err
	}
	copy(l.backing, data)
	return l, nil
}

func (p *pkgPool) release(bucket libsiz.Size, backing []byte) {
	if sp, ok := p.pools[bucket]; ok {
		sp.Put(backing)
	}
}
