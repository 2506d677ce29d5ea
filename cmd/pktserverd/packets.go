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

package main

import (
	liberr "github.com/nabbar/pktserver/errors"
	libcry "github.com/nabbar/pktserver/crypt"
	libcat "github.com/nabbar/pktserver/pktcat"
)

// magicStandard identifies the one packet type this composition root ships
// with: a generic envelope whose handler is selected purely by opcode. A
// deployment that needs more than one wire family registers more magics
// the same way, before Build.
const magicStandard uint32 = 0x50474B31 // "PGK1"

// buildPacketCatalog wires the catalog transform legs from pktcat's ready
// LZ4 and AEAD helpers (C3), rather than hand-rolling compress/encrypt —
// the dispatcher (C7) only ever calls through these four funcs.
func buildPacketCatalog() (*libcat.Catalog, liberr.Error) {
	b := libcat.NewBuilder()

	if err := b.Register("standard", magicStandard, nil, libcat.Transformers{
		Compress:   libcat.LZ4Compress,
		Decompress: libcat.LZ4Decompress,
		Encrypt:    libcat.AEADEncrypt(libcry.AlgorithmAESGCM),
		Decrypt:    libcat.AEADDecrypt(libcry.AlgorithmAESGCM),
	}); err != nil {
		return nil, err
	}

	return b.Build()
}
