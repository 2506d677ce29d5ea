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
	"bytes"
	"crypto/rand"
	"io"

	"github.com/pierrec/lz4/v4"

	libcry "github.com/nabbar/pktserver/crypt"
	liberr "github.com/nabbar/pktserver/errors"
	libpkt "github.com/nabbar/pktserver/packet"
)

// LZ4Compress is the reference CompressFunc: it LZ4-compresses the packet
// payload and sets the Compressed flag bit. LZ4 itself is treated as an
// opaque compress/decompress pair (spec §1); match-finder/hash-table
// internals are the library's concern, not this package's.
func LZ4Compress(p libpkt.Packet) (libpkt.Packet, liberr.Error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)

	if _, err := w.Write(p.Payload()); err != nil {
		return libpkt.Packet{}, ErrorCompressFailed.Error(err)
	}
	if err := w.Close(); err != nil {
		return libpkt.Packet{}, ErrorCompressFailed.Error(err)
	}

	return p.WithPayload(buf.Bytes()).WithFlags(p.Flags().Set(libpkt.FlagCompressed)), nil
}

// LZ4Decompress is the mirror DecompressFunc: it inflates the payload and
// clears the Compressed flag bit.
func LZ4Decompress(p libpkt.Packet) (libpkt.Packet, liberr.Error) {
	r := lz4.NewReader(bytes.NewReader(p.Payload()))

	out, err := io.ReadAll(r)
	if err != nil {
		return libpkt.Packet{}, ErrorCompressFailed.Error(err)
	}

	return p.WithPayload(out).WithFlags(p.Flags().Clear(libpkt.FlagCompressed)), nil
}

// AEADEncrypt returns an EncryptFunc for the given algorithm. Each call
// generates a fresh random nonce, prepends it to the ciphertext, and sets
// the Encrypted flag; no nonce or key is retained across calls (spec §9:
// no process-wide mutable cipher state).
func AEADEncrypt(algo libcry.Algorithm) EncryptFunc {
	return func(p libpkt.Packet, key []byte) (libpkt.Packet, liberr.Error) {
		nonce := make([]byte, 12)
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return libpkt.Packet{}, ErrorAuthenticationFailed.Error(err)
		}

		c, err := libcry.NewAlgo(algo, key, nonce)
		if err != nil {
			return libpkt.Packet{}, err
		}

		sealed := c.Encode(p.Payload())
		out := make([]byte, 0, len(nonce)+len(sealed))
		out = append(out, nonce...)
		out = append(out, sealed...)

		return p.WithPayload(out).WithFlags(p.Flags().Set(libpkt.FlagEncrypted)), nil
	}
}

// AEADDecrypt returns the mirror DecryptFunc: it splits the leading 12-byte
// nonce off the payload, authenticates and decrypts the remainder, and
// clears the Encrypted flag. Authentication failure surfaces as
// ErrorAuthenticationFailed (spec §7 AuthenticationFailed).
func AEADDecrypt(algo libcry.Algorithm) DecryptFunc {
	return func(p libpkt.Packet, key []byte) (libpkt.Packet, liberr.Error) {
		payload := p.Payload()
		if len(payload) < 12 {
			return libpkt.Packet{}, ErrorAuthenticationFailed.Error(nil)
		}

		nonce := payload[:12]
		ciphertext := payload[12:]

		c, err := libcry.NewAlgo(algo, key, nonce)
		if err != nil {
			return libpkt.Packet{}, err
		}

		plain, derr := c.Decode(ciphertext)
		if derr != nil {
			return libpkt.Packet{}, ErrorAuthenticationFailed.Error(derr)
		}

		return p.WithPayload(plain).WithFlags(p.Flags().Clear(libpkt.FlagEncrypted)), nil
	}
}
