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
	"context"
	"time"

	libcon "github.com/nabbar/pktserver/conn"
	liberr "github.com/nabbar/pktserver/errors"
	libpkt "github.com/nabbar/pktserver/packet"
)

// Context is the argument bundle passed to every compiled invoker,
// corresponding to spec §4.6 step 3's extracted Packet/Connection/
// CancellationToken triple.
type Context struct {
	Packet     libpkt.Packet
	Connection *libcon.Session
	Ctx        context.Context
}

// InvokeFunc is the uniform compiled invoker: it takes the packet context
// and returns an optional reply value. A nil, nil return corresponds to the
// void/Future<void> case in spec §4.6 step 3; a non-nil value is wrapped
// and sent back as a reply packet by the dispatcher (C7).
type InvokeFunc func(ctx *Context) (reply any, err liberr.Error)

// Metadata is the policy attribute bundle attached to one opcode (spec
// §4.6 step 5). Zero values mean "no requirement": zero Timeout means no
// deadline, empty Permission means no permission check, zero
// ConcurrencyLimit means unlimited concurrency.
type Metadata struct {
	Opcode           uint16
	Timeout          time.Duration
	Permission       string
	RequireEncrypted bool
	RateLimitKey     string
	ConcurrencyLimit int
}

// Controller is the marker interface a concrete controller type implements,
// normally by embedding ControllerBase. It exists to give
// Builder.RegisterController something to type-check against, the build-
// time stand-in for spec §4.6 step 1's runtime "PacketController marker"
// check.
type Controller interface {
	PacketController()
}

// ControllerBase is embedded by concrete controllers to satisfy Controller.
type ControllerBase struct{}

// PacketController implements Controller.
func (ControllerBase) PacketController() {}

// Binding pairs one opcode's metadata with its compiled invoker, the unit
// RegisterController accepts per method.
type Binding struct {
	Metadata Metadata
	Invoke   InvokeFunc
}

type entry struct {
	invoke   InvokeFunc
	metadata Metadata
}

// Catalog is the frozen opcode-to-invoker map built by a Builder.
type Catalog struct {
	byOpcode map[uint16]entry
}

// Lookup returns the invoker and metadata registered for opcode.
func (c *Catalog) Lookup(opcode uint16) (InvokeFunc, Metadata, bool) {
	e, ok := c.byOpcode[opcode]
	if !ok {
		return nil, Metadata{}, false
	}
	return e.invoke, e.metadata, true
}
