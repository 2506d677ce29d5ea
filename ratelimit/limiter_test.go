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

package ratelimit_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	librl "github.com/nabbar/pktserver/ratelimit"
)

var _ = Describe("Limiter", func() {
	It("rejects a configuration with a non-positive field", func() {
		_, err := librl.New(librl.Options{Default: librl.Level{MaxAllowedRequests: 0, TimeWindow: time.Second, LockoutDuration: time.Second}}, nil)
		Expect(err).ToNot(BeNil())
	})

	It("admits up to MaxAllowedRequests within the window and then denies", func() {
		l, err := librl.New(librl.Options{Default: librl.Level{
			MaxAllowedRequests: 3,
			TimeWindow:         time.Minute,
			LockoutDuration:    time.Minute,
		}}, nil)
		Expect(err).To(BeNil())

		Expect(l.Allow("10.0.0.1", "")).To(BeTrue())
		Expect(l.Allow("10.0.0.1", "")).To(BeTrue())
		Expect(l.Allow("10.0.0.1", "")).To(BeTrue())
		Expect(l.Allow("10.0.0.1", "")).To(BeFalse())
	})

	It("tracks independent endpoints and levels separately", func() {
		l, err := librl.New(librl.Options{Default: librl.Level{
			MaxAllowedRequests: 1,
			TimeWindow:         time.Minute,
			LockoutDuration:    time.Minute,
		}}, nil)
		Expect(err).To(BeNil())

		Expect(l.Allow("10.0.0.2", "")).To(BeTrue())
		Expect(l.Allow("10.0.0.3", "")).To(BeTrue())
		Expect(l.Allow("10.0.0.2", "other-level")).To(BeTrue())
	})

	It("applies a per-level override distinct from the default", func() {
		l, err := librl.New(librl.Options{
			Default: librl.Level{MaxAllowedRequests: 1, TimeWindow: time.Minute, LockoutDuration: time.Minute},
			Levels: map[string]librl.Level{
				"burst": {MaxAllowedRequests: 5, TimeWindow: time.Minute, LockoutDuration: time.Minute},
			},
		}, nil)
		Expect(err).To(BeNil())

		for i := 0; i < 5; i++ {
			Expect(l.Allow("10.0.0.4", "burst")).To(BeTrue())
		}
		Expect(l.Allow("10.0.0.4", "burst")).To(BeFalse())

		Expect(l.Allow("10.0.0.4", "")).To(BeTrue())
		Expect(l.Allow("10.0.0.4", "")).To(BeFalse())
	})

	It("checks a batch of endpoints and collects per-endpoint verdicts", func() {
		l, err := librl.New(librl.Options{Default: librl.Level{
			MaxAllowedRequests: 1,
			TimeWindow:         time.Minute,
			LockoutDuration:    time.Minute,
		}}, nil)
		Expect(err).To(BeNil())

		res := l.AllowBatch([]string{"10.0.0.5", "10.0.0.6"}, "")
		Expect(res["10.0.0.5"]).To(BeTrue())
		Expect(res["10.0.0.6"]).To(BeTrue())
	})

	It("reproduces the literal sliding-window scenario from the spec", func() {
		l, err := librl.New(librl.Options{Default: librl.Level{
			MaxAllowedRequests: 3,
			TimeWindow:         80 * time.Millisecond,
			LockoutDuration:    160 * time.Millisecond,
		}}, nil)
		Expect(err).To(BeNil())

		Expect(l.Allow("A", "")).To(BeTrue())
		Expect(l.Allow("A", "")).To(BeTrue())
		Expect(l.Allow("A", "")).To(BeTrue())
		Expect(l.Allow("A", "")).To(BeFalse())

		Eventually(func() bool { return l.Allow("A", "") }, "100ms", "5ms").Should(BeFalse())

		Eventually(func() bool { return l.Allow("A", "") }, "400ms", "10ms").Should(BeTrue())
	})

	It("reclaims idle windows via the channel-driven cleanup consumer", func() {
		l, err := librl.New(librl.Options{Default: librl.Level{
			MaxAllowedRequests: 1,
			TimeWindow:         time.Millisecond,
			LockoutDuration:    time.Millisecond,
		}}, nil)
		Expect(err).To(BeNil())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		l.StartCleanup(ctx)
		defer l.Dispose()

		Expect(l.Allow("10.0.0.7", "")).To(BeTrue())
		time.Sleep(5 * time.Millisecond)

		l.TriggerCleanup()
		Eventually(func() bool { return l.Allow("10.0.0.7", "") }, "200ms", "5ms").Should(BeTrue())
	})

	It("disposes cooperatively and is idempotent", func() {
		l, err := librl.New(librl.Options{Default: librl.Level{
			MaxAllowedRequests: 1,
			TimeWindow:         time.Minute,
			LockoutDuration:    time.Minute,
		}}, nil)
		Expect(err).To(BeNil())

		l.StartCleanup(context.Background())
		Expect(l.Dispose()).To(BeNil())
		Expect(l.Dispose()).To(BeNil())
	})
})
