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

package connlimit_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libcl "github.com/nabbar/pktserver/connlimit"
)

var _ = Describe("Limiter", func() {
	It("rejects a configuration with a non-positive field", func() {
		opts := libcl.Options{MaxPerEndpoint: 0, InactivityThreshold: time.Minute, CleanupInterval: time.Minute}
		_, err := libcl.New(opts, nil)
		Expect(err).ToNot(BeNil())
	})

	It("admits up to MaxPerEndpoint and then rejects", func() {
		l, err := libcl.New(libcl.Options{
			MaxPerEndpoint:      2,
			InactivityThreshold: time.Minute,
			CleanupInterval:     time.Minute,
		}, nil)
		Expect(err).To(BeNil())

		Expect(l.IsAllowed("10.0.0.1")).To(BeTrue())
		Expect(l.IsAllowed("10.0.0.1")).To(BeTrue())
		Expect(l.IsAllowed("10.0.0.1")).To(BeFalse())
	})

	It("readmits after OnClosed frees a slot", func() {
		l, err := libcl.New(libcl.Options{
			MaxPerEndpoint:      1,
			InactivityThreshold: time.Minute,
			CleanupInterval:     time.Minute,
		}, nil)
		Expect(err).To(BeNil())

		Expect(l.IsAllowed("10.0.0.2")).To(BeTrue())
		Expect(l.IsAllowed("10.0.0.2")).To(BeFalse())

		l.OnClosed("10.0.0.2")
		Expect(l.IsAllowed("10.0.0.2")).To(BeTrue())
	})

	It("tracks independent endpoints separately", func() {
		l, err := libcl.New(libcl.Options{
			MaxPerEndpoint:      1,
			InactivityThreshold: time.Minute,
			CleanupInterval:     time.Minute,
		}, nil)
		Expect(err).To(BeNil())

		Expect(l.IsAllowed("10.0.0.3")).To(BeTrue())
		Expect(l.IsAllowed("10.0.0.4")).To(BeTrue())
	})

	It("reports endpoints ordered by current connection count", func() {
		l, err := libcl.New(libcl.Options{
			MaxPerEndpoint:      5,
			InactivityThreshold: time.Minute,
			CleanupInterval:     time.Minute,
		}, nil)
		Expect(err).To(BeNil())

		Expect(l.IsAllowed("10.0.0.5")).To(BeTrue())
		Expect(l.IsAllowed("10.0.0.6")).To(BeTrue())
		Expect(l.IsAllowed("10.0.0.6")).To(BeTrue())

		report := l.GenerateReport(1)
		Expect(report).To(HaveLen(1))
		Expect(report[0].Endpoint).To(Equal("10.0.0.6"))
		Expect(report[0].CurrentConns).To(Equal(int32(2)))
	})

	It("reclaims idle entries past the inactivity threshold via the background sweep", func() {
		l, err := libcl.New(libcl.Options{
			MaxPerEndpoint:      1,
			InactivityThreshold: time.Millisecond,
			CleanupInterval:     5 * time.Millisecond,
		}, nil)
		Expect(err).To(BeNil())

		Expect(l.IsAllowed("10.0.0.7")).To(BeTrue())
		l.OnClosed("10.0.0.7")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		l.StartCleanup(ctx)
		defer l.Stop()

		Eventually(func() int {
			return len(l.GenerateReport(0))
		}, time.Second, 5*time.Millisecond).Should(Equal(0))
	})
})
