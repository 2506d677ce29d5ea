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
	"context"
	"errors"
	"net"

	libbuf "github.com/nabbar/pktserver/buffer"
	libcon "github.com/nabbar/pktserver/conn"
	liblog "github.com/nabbar/pktserver/logger"
	libproto "github.com/nabbar/pktserver/protocol"
)

// listen accepts connections on addr until ctx is cancelled, wrapping each
// one into a Session (C4) and handing it to base.OnAccept (spec §4.5). It
// blocks for the life of the listener; the caller runs it on its own
// goroutine and cancels ctx to shut down.
func listen(ctx context.Context, addr string, pool libbuf.Pool, sessOpts libcon.Options, base *libproto.Base, log liblog.Logger) error {
	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return ErrorListenFailed.Error(err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	log.Info("listening", liblog.Fields{"addr": addr})

	for {
		sock, aerr := ln.Accept()
		if aerr != nil {
			if ctx.Err() != nil || errors.Is(aerr, net.ErrClosed) {
				return nil
			}
			log.Warn("accept failed", liblog.Fields{"error": aerr.Error()})
			continue
		}

		sess := libcon.New(ctx, sock, pool, sessOpts)
		if oerr := base.OnAccept(ctx, sess); oerr != nil {
			log.Warn("connection not accepted", liblog.Fields{
				"endpoint": sock.RemoteAddr().String(),
				"error":    oerr.Error(),
			})
		}
	}
}
