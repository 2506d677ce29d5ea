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

package pktcat

import (
	liberr "github.com/nabbar/pktserver/errors"
	libpkt "github.com/nabbar/pktserver/packet"
)

// Builder accumulates packet type registrations and freezes them into a
// Catalog. A Builder is not safe for concurrent use; build the catalog
// once, at startup, on a single goroutine.
type Builder struct {
	entries map[uint32]entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[uint32]entry)}
}

// Register adds one packet type to the builder. If deserialize is nil, the
// default header+payload parser (packet.Parse) is used. Returns
// ErrorDuplicateMagic if magic was already registered by a prior call.
func (b *Builder) Register(typeName string, magic uint32, deserialize Deserializer, transformers Transformers) liberr.Error {
	if _, exists := b.entries[magic]; exists {
		return ErrorDuplicateMagic.Error(nil)
	}

	if deserialize == nil {
		deserialize = func(body []byte) (libpkt.Packet, liberr.Error) {
			return libpkt.Parse(body)
		}
	}

	b.entries[magic] = entry{
		typeName:     typeName,
		deserialize:  deserialize,
		transformers: transformers,
	}

	return nil
}

// Build freezes the builder's registrations into an immutable Catalog. The
// returned Catalog shares no mutable state with the Builder; further
// Register calls on b have no effect on a Catalog already built.
func (b *Builder) Build() (*Catalog, liberr.Error) {
	frozen := make(map[uint32]entry, len(b.entries))
	for k, v := range b.entries {
		frozen[k] = v
	}
	return &Catalog{byMagic: frozen}, nil
}
