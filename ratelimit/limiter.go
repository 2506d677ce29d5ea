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

package ratelimit

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	libatm "github.com/nabbar/pktserver/atomic"
)

// entryKey identifies one sliding window: an endpoint under one rate-limit
// level (the handler attribute's RateLimitKey). Two handlers on the same
// endpoint with different levels track independent windows.
type entryKey struct {
	endpoint string
	level    string
}

// entry is the immutable per-window record. Allow never mutates an entry in
// place; it builds a replacement and installs it with the map's
// CompareAndSwap, the same "immutable record replacement under CAS"
// discipline connlimit uses for C8.
type entry struct {
	timestamps   []time.Time
	blockedUntil time.Time
}

func (e *entry) idle(now time.Time) bool {
	return len(e.timestamps) == 0 && !e.blockedUntil.After(now)
}

// Limiter enforces a sliding-window request rate per (endpoint, level),
// with lockout once a window overflows, and a channel-driven background
// sweep that reclaims windows that have gone idle.
type Limiter struct {
	opts Options

	byKey libatm.MapTyped[entryKey, *entry]

	allowed prometheus.Counter
	denied  prometheus.Counter
	locked  prometheus.Counter
	cleaned prometheus.Counter

	running *libatm.Flag
	trigger chan struct{}

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// New validates opts and returns a ready Limiter. reg may be nil, in which
// case no Prometheus collectors are registered.
func New(opts Options, reg prometheus.Registerer) (*Limiter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	l := &Limiter{
		opts:    opts,
		byKey:   libatm.NewMapTyped[entryKey, *entry](),
		allowed: prometheus.NewCounter(prometheus.CounterOpts{Name: "pktserver_ratelimit_allowed_total"}),
		denied:  prometheus.NewCounter(prometheus.CounterOpts{Name: "pktserver_ratelimit_denied_total"}),
		locked:  prometheus.NewCounter(prometheus.CounterOpts{Name: "pktserver_ratelimit_lockouts_total"}),
		cleaned: prometheus.NewCounter(prometheus.CounterOpts{Name: "pktserver_ratelimit_cleaned_entries_total"}),
		running: libatm.NewFlag(false),
		trigger: make(chan struct{}, 1),
	}

	if reg != nil {
		reg.MustRegister(l.allowed, l.denied, l.locked, l.cleaned)
	}

	return l, nil
}

// Allow reports whether one more request from endpoint, at the given
// rate-limit level, is admitted under its sliding window. It satisfies the
// dispatch.RateLimiter interface consumed by C7 step 8.
func (l *Limiter) Allow(endpoint string, level string) bool {
	key := entryKey{endpoint: endpoint, level: level}
	lvl := l.opts.levelFor(level)
	now := time.Now()

	for i := 0; i < MaxCasRetries; i++ {
		old, loaded := l.byKey.Load(key)

		if !loaded {
			next := &entry{timestamps: []time.Time{now}}
			if _, loaded := l.byKey.LoadOrStore(key, next); !loaded {
				l.allowed.Inc()
				l.maybeTriggerCleanup()
				return true
			}
			continue
		}

		if old.blockedUntil.After(now) {
			l.denied.Inc()
			return false
		}

		kept := make([]time.Time, 0, len(old.timestamps)+1)
		for _, t := range old.timestamps {
			if now.Sub(t) <= lvl.TimeWindow {
				kept = append(kept, t)
			}
		}

		if len(kept) >= lvl.MaxAllowedRequests {
			next := &entry{timestamps: kept, blockedUntil: now.Add(lvl.LockoutDuration)}
			if l.byKey.CompareAndSwap(key, old, next) {
				l.denied.Inc()
				l.locked.Inc()
				return false
			}
			continue
		}

		kept = append(kept, now)
		next := &entry{timestamps: kept}
		if l.byKey.CompareAndSwap(key, old, next) {
			l.allowed.Inc()
			return true
		}
	}

	l.denied.Inc()
	return false
}

// AllowBatch runs Allow for every endpoint at the given level, collecting
// the per-endpoint verdict into a map (spec §4.9's check_limits).
func (l *Limiter) AllowBatch(endpoints []string, level string) map[string]bool {
	out := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		out[ep] = l.Allow(ep, level)
	}
	return out
}

// maybeTriggerCleanup enqueues a cleanup request once the tracked-entry
// count crosses ten times the default level's allowance (spec §4.9's
// trigger heuristic). The channel send is non-blocking: a pending trigger
// already queued makes this a no-op, so only one sweep is ever in flight.
func (l *Limiter) maybeTriggerCleanup() {
	threshold := l.opts.Default.MaxAllowedRequests * 10
	n := 0
	l.byKey.Range(func(entryKey, *entry) bool {
		n++
		return n <= threshold
	})
	if n > threshold {
		l.TriggerCleanup()
	}
}

// TriggerCleanup enqueues a manual cleanup sweep. Idempotent: if a sweep is
// already queued or running, this is a no-op.
func (l *Limiter) TriggerCleanup() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

// StartCleanup launches the channel-driven cleanup consumer. It returns
// immediately; call Dispose to end it.
func (l *Limiter) StartCleanup(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)

		for {
			select {
			case <-ctx.Done():
				return
			case <-l.trigger:
				l.sweep(ctx)
			}
		}
	}()
}

// sweep scans tracked windows in batches of CleanupBatchSize, yielding
// control between batches, and removes any window that has gone idle
// (empty queue, expired lockout). Guarded by running so at most one sweep
// executes at a time.
func (l *Limiter) sweep(ctx context.Context) {
	if !l.running.CompareAndSet(false, true) {
		return
	}
	defer l.running.Clear()

	now := time.Now()
	scanned := 0

	l.byKey.Range(func(k entryKey, v *entry) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		scanned++
		if scanned%CleanupBatchSize == 0 {
			runtime.Gosched()
		}

		if v.idle(now) {
			if l.byKey.CompareAndDelete(k, v) {
				l.cleaned.Inc()
			}
		}

		return true
	})
}

// Dispose cooperatively stops the cleanup consumer: it cancels the
// consumer's context and waits up to Options.DisposeTimeout (default
// DefaultDisposeTimeout) for it to drain. Safe to call more than once.
func (l *Limiter) Dispose() error {
	var err error

	l.stopOnce.Do(func() {
		if l.cancel == nil {
			return
		}
		l.cancel()

		if l.done == nil {
			return
		}

		select {
		case <-l.done:
		case <-time.After(l.opts.disposeTimeout()):
			err = ErrorDisposeTimeout.Error(nil)
		}
	})

	return err
}
