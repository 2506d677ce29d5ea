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

// Deserializer turns the raw frame body (9-byte header + payload) into a
// Packet value. The default, used when a type registers no custom
// deserializer, is simply packet.Parse.
type Deserializer func(body []byte) (libpkt.Packet, liberr.Error)

// CompressFunc/DecompressFunc/EncryptFunc/DecryptFunc are the four
// transformer legs for one packet type. Encrypt/Decrypt take the session-
// supplied key material per call (spec §9: no key store in the core).
type CompressFunc func(p libpkt.Packet) (libpkt.Packet, liberr.Error)
type DecompressFunc func(p libpkt.Packet) (libpkt.Packet, liberr.Error)
type EncryptFunc func(p libpkt.Packet, key []byte) (libpkt.Packet, liberr.Error)
type DecryptFunc func(p libpkt.Packet, key []byte) (libpkt.Packet, liberr.Error)

// Transformers is the transform set for one packet type. Any leg may be
// nil; the dispatcher surfaces a nil leg at call time as
// ErrorTransformNotSupported rather than at catalog build time, per spec
// §4.3 ("still registered for deserialization... transformer lookup...
// returns absent").
type Transformers struct {
	Compress   CompressFunc
	Decompress DecompressFunc
	Encrypt    EncryptFunc
	Decrypt    DecryptFunc
}

type entry struct {
	typeName     string
	deserialize  Deserializer
	transformers Transformers
}

// Catalog is the frozen, concurrency-safe magic-to-deserializer and
// magic-to-transformer map built by a Builder.
type Catalog struct {
	byMagic map[uint32]entry
}

// TryDeserialize reads the magic number from the front of body, looks up
// its registered deserializer, and invokes it. Returns ErrorUnknownMagic if
// no type is registered for the magic.
func (c *Catalog) TryDeserialize(body []byte) (libpkt.Packet, liberr.Error) {
	h, err := libpkt.ParseHeader(body)
	if err != nil {
		return libpkt.Packet{}, err
	}

	e, ok := c.byMagic[h.Magic]
	if !ok {
		return libpkt.Packet{}, ErrorUnknownMagic.Error(nil)
	}

	return e.deserialize(body)
}

// TransformersFor returns the registered transformer set for the packet
// type identified by magic, and whether one was registered at all.
func (c *Catalog) TransformersFor(magic uint32) (Transformers, bool) {
	e, ok := c.byMagic[magic]
	if !ok {
		return Transformers{}, false
	}
	return e.transformers, true
}

// Compress applies the type's Compress leg, or ErrorTransformNotSupported
// if none is registered.
func (c *Catalog) Compress(p libpkt.Packet) (libpkt.Packet, liberr.Error) {
	t, ok := c.TransformersFor(p.Magic())
	if !ok || t.Compress == nil {
		return libpkt.Packet{}, ErrorTransformNotSupported.Error(nil)
	}
	return t.Compress(p)
}

// Decompress applies the type's Decompress leg, or
// ErrorTransformNotSupported if none is registered.
func (c *Catalog) Decompress(p libpkt.Packet) (libpkt.Packet, liberr.Error) {
	t, ok := c.TransformersFor(p.Magic())
	if !ok || t.Decompress == nil {
		return libpkt.Packet{}, ErrorTransformNotSupported.Error(nil)
	}
	return t.Decompress(p)
}

// Encrypt applies the type's Encrypt leg, or ErrorTransformNotSupported if
// none is registered.
func (c *Catalog) Encrypt(p libpkt.Packet, key []byte) (libpkt.Packet, liberr.Error) {
	t, ok := c.TransformersFor(p.Magic())
	if !ok || t.Encrypt == nil {
		return libpkt.Packet{}, ErrorTransformNotSupported.Error(nil)
	}
	return t.Encrypt(p, key)
}

// Decrypt applies the type's Decrypt leg, or ErrorTransformNotSupported if
// none is registered.
func (c *Catalog) Decrypt(p libpkt.Packet, key []byte) (libpkt.Packet, liberr.Error) {
	t, ok := c.TransformersFor(p.Magic())
	if !ok || t.Decrypt == nil {
		return libpkt.Packet{}, ErrorTransformNotSupported.Error(nil)
	}
	return t.Decrypt(p, key)
}
