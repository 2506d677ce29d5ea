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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	liberr "github.com/nabbar/pktserver/errors"
)

// Algorithm selects the AEAD backend a Crypt instance wraps. Every backend is
// stateless and keyed per call: no process-wide key or nonce is ever held,
// the key lifecycle (derivation, rotation, storage) is the caller's concern.
type Algorithm uint8

const (
	AlgorithmAESGCM Algorithm = iota
	AlgorithmChaCha20Poly1305
)

// GenKeyByte returns a fresh random 32-byte key and 12-byte nonce suitable
// for either backend. The caller owns the lifecycle of the returned material.
func GenKeyByte() ([]byte, []byte, liberr.Error) {
	key := make([]byte, 32)
	nonce := make([]byte, 12)

	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, nil, BYTE_KEYGEN.Error(err)
	}

	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, BYTE_NONCEGEN.Error(err)
	}

	return key, nonce, nil
}

// newAESGCM builds an AES-GCM Crypt backend from the given key and nonce.
// NewAlgo uses it for every algorithm other than AlgorithmChaCha20Poly1305.
func newAESGCM(key, nonce []byte) (Crypt, liberr.Error) {
	blk, err := aes.NewCipher(key)
	if err != nil {
		return nil, AES_BLOCK.Error(err)
	}

	gcm, err := cipher.NewGCM(blk)
	if err != nil {
		return nil, AES_GCM.Error(err)
	}

	n := make([]byte, gcm.NonceSize())
	copy(n, nonce)

	return &crt{a: gcm, n: n}, nil
}

func newChaCha20(key, nonce []byte) (Crypt, liberr.Error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, CHACHA_INIT.Error(err)
	}

	n := make([]byte, aead.NonceSize())
	copy(n, nonce)

	return &crt{a: aead, n: n}, nil
}

// NewAlgo builds a Crypt backend for the given algorithm, key and nonce. The
// key/nonce are copied into the returned instance; no package-level mutable
// state is retained, so every session/connection carries its own instance.
func NewAlgo(algo Algorithm, key, nonce []byte) (Crypt, liberr.Error) {
	if len(key) < 1 || len(nonce) < 1 {
		return nil, EMPTY_PARAMS.Error(nil)
	}

	switch algo {
	case AlgorithmChaCha20Poly1305:
		return newChaCha20(key, nonce)
	default:
		return newAESGCM(key, nonce)
	}
}
