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

package protocol_test

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libcon "github.com/nabbar/pktserver/conn"
	libproto "github.com/nabbar/pktserver/protocol"
)

var _ = Describe("Base", func() {
	var (
		client, server net.Conn
		sess           *libcon.Session
		handler        *fakeHandler
		base           *libproto.Base
	)

	BeforeEach(func() {
		client, server = net.Pipe()
		sess = libcon.New(testCtx, server, newTestPool(), libcon.Options{
			IncomingCapacity: 4,
			StackAllocLimit:  256,
		})
		handler = &fakeHandler{validate: true}
		base = libproto.New(handler, false)
	})

	AfterEach(func() {
		_ = client.Close()
	})

	It("starts the receive loop and routes one packet through the handler", func() {
		Expect(base.OnAccept(testCtx, sess)).To(BeNil())

		payload := []byte("msg")
		frame := make([]byte, 2+len(payload))
		binary.LittleEndian.PutUint16(frame[:2], uint16(len(payload)+2))
		copy(frame[2:], payload)

		_, err := client.Write(frame)
		Expect(err).ToNot(HaveOccurred())

		Eventually(handler.processedCount, time.Second).Should(Equal(1))
		Eventually(func() uint64 { return base.Snapshot().TotalMessages }, time.Second).Should(Equal(uint64(1)))
	})

	It("closes the connection after post-processing when keep_connection_open is false", func() {
		Expect(base.OnAccept(testCtx, sess)).To(BeNil())

		payload := []byte("x")
		frame := make([]byte, 2+len(payload))
		binary.LittleEndian.PutUint16(frame[:2], uint16(len(payload)+2))
		copy(frame[2:], payload)
		_, _ = client.Write(frame)

		Eventually(sess.IsDisconnected, time.Second).Should(BeTrue())
	})

	It("rejects connections when validation fails", func() {
		handler.validate = false
		err := base.OnAccept(testCtx, sess)
		Expect(err).ToNot(BeNil())
		Eventually(sess.IsDisconnected, time.Second).Should(BeTrue())
	})

	It("returns immediately without error when not accepting", func() {
		base.SetConnectionAcceptance(false)
		Expect(base.OnAccept(testCtx, sess)).To(BeNil())
		Expect(sess.IsDisconnected()).To(BeFalse())
	})

	It("fails fast on an already-cancelled context", func() {
		ctx, cancel := context.WithCancel(testCtx)
		cancel()
		err := base.OnAccept(ctx, sess)
		Expect(err).ToNot(BeNil())
		Expect(base.Snapshot().TotalErrors).To(Equal(uint64(1)))
	})

	It("disposes exactly once, stopping further acceptance", func() {
		base.Dispose()
		Expect(base.IsDisposed()).To(BeTrue())
		Expect(base.Snapshot().IsListening).To(BeFalse())

		base.Dispose() // no-op, must not panic
		Expect(base.IsDisposed()).To(BeTrue())
	})
})
