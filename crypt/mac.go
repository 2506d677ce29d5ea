/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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
 */

package crypt

import (
	"crypto/subtle"

	"golang.org/x/crypto/poly1305"

	liberr "github.com/nabbar/pktserver/errors"
)

// MAC is the detached authentication collaborator: compute produces a tag
// over a message under a one-time 32-byte key, verify checks a tag without
// ever decrypting. Used when a packet type's policy calls for authentication
// without AEAD encryption.
type MAC interface {
	Compute(key [32]byte, message []byte) [16]byte
	Verify(key [32]byte, message []byte, tag [16]byte) bool
}

type poly1305MAC struct{}

// NewMAC returns the poly1305-backed MAC collaborator.
func NewMAC() MAC {
	return poly1305MAC{}
}

func (poly1305MAC) Compute(key [32]byte, message []byte) [16]byte {
	var tag [16]byte
	poly1305.Sum(&tag, message, &key)
	return tag
}

func (poly1305MAC) Verify(key [32]byte, message []byte, tag [16]byte) bool {
	got := poly1305MAC{}.Compute(key, message)
	return subtle.ConstantTimeCompare(got[:], tag[:]) == 1
}

// VerifyOrError wraps Verify with the package's error taxonomy, for callers
// that want a liberr.Error rather than a bare bool.
func VerifyOrError(m MAC, key [32]byte, message []byte, tag [16]byte) liberr.Error {
	if !m.Verify(key, message, tag) {
		return MAC_VERIFY.Error(nil)
	}
	return nil
}
