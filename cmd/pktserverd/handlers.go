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
	"time"

	liberr "github.com/nabbar/pktserver/errors"
	libhdl "github.com/nabbar/pktserver/handler"
	libpkt "github.com/nabbar/pktserver/packet"
)

const (
	opcodePing uint16 = 1
	opcodePong uint16 = 2
)

// pingController is the one controller this composition root ships: a
// liveness probe any client can call without permission or encryption,
// proving the full C1-C9 pipeline (frame, deserialize, dispatch, reframe)
// round-trips before an embedder adds its own opcodes.
type pingController struct {
	libhdl.ControllerBase
}

func (pingController) bindings() []libhdl.Binding {
	return []libhdl.Binding{
		{
			Metadata: libhdl.Metadata{
				Opcode:  opcodePing,
				Timeout: 5 * time.Second,
			},
			Invoke: invokePing,
		},
	}
}

// invokePing answers Ping with Pong, carrying the request's payload back
// unchanged so a client can correlate replies.
func invokePing(ctx *libhdl.Context) (reply any, err liberr.Error) {
	pkt := ctx.Packet
	return libpkt.New(pkt.Magic(), opcodePong, libpkt.FlagNone, pkt.Priority(), pkt.Transport(), pkt.Payload()), nil
}

// buildHandlerCatalog compiles every controller into the immutable Catalog
// the dispatcher (C7) looks opcodes up in (spec §4.6).
func buildHandlerCatalog() (*libhdl.Catalog, liberr.Error) {
	b := libhdl.NewBuilder()

	ctrl := pingController{}
	if err := b.RegisterController(ctrl, ctrl.bindings()...); err != nil {
		return nil, err
	}

	return b.Build(), nil
}
