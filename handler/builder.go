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

package handler

import (
	liberr "github.com/nabbar/pktserver/errors"
)

// Builder accumulates opcode registrations and freezes them into a Catalog.
// A Builder is not safe for concurrent use; build the catalog once, at
// startup, on a single goroutine — the same construction-time discipline as
// pktcat.Builder (C3).
type Builder struct {
	entries map[uint16]entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[uint16]entry)}
}

// Register adds one opcode binding. Duplicate opcode on the same Builder is
// a hard configuration error (spec §4.6 step 4), returned as
// ErrorDuplicateOpcode rather than deferred to Build.
func (b *Builder) Register(meta Metadata, invoke InvokeFunc) liberr.Error {
	if _, exists := b.entries[meta.Opcode]; exists {
		return ErrorDuplicateOpcode.Error(nil)
	}
	b.entries[meta.Opcode] = entry{invoke: invoke, metadata: meta}
	return nil
}

// RegisterController checks c against the Controller marker (spec §4.6
// step 1) and registers every binding under it. A nil Controller fails with
// ErrorMissingControllerMarker.
func (b *Builder) RegisterController(c Controller, bindings ...Binding) liberr.Error {
	if c == nil {
		return ErrorMissingControllerMarker.Error(nil)
	}
	for _, bind := range bindings {
		if err := b.Register(bind.Metadata, bind.Invoke); err != nil {
			return err
		}
	}
	return nil
}

// Build freezes the builder's registrations into an immutable Catalog.
func (b *Builder) Build() *Catalog {
	frozen := make(map[uint16]entry, len(b.entries))
	for k, v := range b.entries {
		frozen[k] = v
	}
	return &Catalog{byOpcode: frozen}
}
