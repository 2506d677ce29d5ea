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

package connlimit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	libatm "github.com/nabbar/pktserver/atomic"
)

// entry is the immutable per-endpoint record. Updates never mutate an
// existing entry in place; IsAllowed/OnClosed build a replacement entry and
// install it with the map's CompareAndSwap, the same "immutable record
// replacement under CAS" discipline the spec requires for limiter maps.
type entry struct {
	current    int32
	lastSeen   time.Time
	today      time.Time
	totalToday int32
}

// Report is one row of Limiter.GenerateReport's top-N snapshot.
type Report struct {
	Endpoint          string
	CurrentConns      int32
	TotalConnsToday   int32
	LastConnectionAge time.Duration
}

// Limiter caps concurrent connections per endpoint and reclaims idle
// entries in the background. The hot path (IsAllowed/OnClosed) never takes
// a lock: it resolves to a bounded compare-and-swap loop over a
// sync.Map-backed atomic.MapTyped.
type Limiter struct {
	opts Options

	byEndpoint libatm.MapTyped[string, *entry]

	attempts prometheus.Counter
	rejects  prometheus.Counter
	cleaned  prometheus.Counter

	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// New validates opts and returns a ready Limiter. reg may be nil, in which
// case no Prometheus collectors are registered (the limiter still works;
// only /metrics visibility is lost).
func New(opts Options, reg prometheus.Registerer) (*Limiter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	l := &Limiter{
		opts:       opts,
		byEndpoint: libatm.NewMapTyped[string, *entry](),
		attempts:   prometheus.NewCounter(prometheus.CounterOpts{Name: "pktserver_connlimit_attempts_total"}),
		rejects:    prometheus.NewCounter(prometheus.CounterOpts{Name: "pktserver_connlimit_rejections_total"}),
		cleaned:    prometheus.NewCounter(prometheus.CounterOpts{Name: "pktserver_connlimit_cleaned_entries_total"}),
	}

	if reg != nil {
		reg.MustRegister(l.attempts, l.rejects, l.cleaned)
	}

	return l, nil
}

// IsAllowed atomically admits or rejects a new connection from endpoint. On
// CAS exhaustion it fails safe by rejecting and does not return an error to
// the caller: the caller only needs to know whether to proceed.
func (l *Limiter) IsAllowed(endpoint string) bool {
	l.attempts.Inc()

	now := time.Now()
	today := truncateToDay(now)

	for i := 0; i < MaxCasRetries; i++ {
		old, loaded := l.byEndpoint.Load(endpoint)

		if !loaded {
			next := &entry{current: 1, lastSeen: now, today: today, totalToday: 1}
			if _, loaded := l.byEndpoint.LoadOrStore(endpoint, next); !loaded {
				return true
			}
			continue
		}

		if old.current >= int32(l.opts.MaxPerEndpoint) {
			l.rejects.Inc()
			return false
		}

		totalToday := old.totalToday + 1
		if today.After(old.today) {
			totalToday = 1
		}

		next := &entry{
			current:    old.current + 1,
			lastSeen:   now,
			today:      today,
			totalToday: totalToday,
		}

		if l.byEndpoint.CompareAndSwap(endpoint, old, next) {
			return true
		}
	}

	l.rejects.Inc()
	return false
}

// OnClosed records that one connection from endpoint has ended.
func (l *Limiter) OnClosed(endpoint string) {
	now := time.Now()

	for i := 0; i < MaxCasRetries; i++ {
		old, loaded := l.byEndpoint.Load(endpoint)
		if !loaded {
			return
		}

		current := old.current - 1
		if current < 0 {
			current = 0
		}

		next := &entry{
			current:    current,
			lastSeen:   now,
			today:      old.today,
			totalToday: old.totalToday,
		}

		if l.byEndpoint.CompareAndSwap(endpoint, old, next) {
			return
		}
	}
}

// GenerateReport returns the top-N endpoints by current connection count.
func (l *Limiter) GenerateReport(top int) []Report {
	rows := make([]Report, 0)
	now := time.Now()

	l.byEndpoint.Range(func(k string, v *entry) bool {
		rows = append(rows, Report{
			Endpoint:          k,
			CurrentConns:      v.current,
			TotalConnsToday:   v.totalToday,
			LastConnectionAge: now.Sub(v.lastSeen),
		})
		return true
	})

	sort.Slice(rows, func(i, j int) bool { return rows[i].CurrentConns > rows[j].CurrentConns })

	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}
	return rows
}

// StartCleanup launches the background sweep on opts.CleanupInterval. It
// returns immediately; call Stop to end it.
func (l *Limiter) StartCleanup(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)

		ticker := time.NewTicker(l.opts.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweepOnce(time.Now())
			}
		}
	}()
}

// Stop cancels the background sweep and waits for it to exit. Safe to call
// more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
		if l.done != nil {
			<-l.done
		}
	})
}

// sweepOnce scans at most MaxCleanupKeysPerRun entries and removes any that
// are both idle (current == 0) and past the inactivity threshold.
func (l *Limiter) sweepOnce(now time.Time) {
	scanned := 0

	l.byEndpoint.Range(func(k string, v *entry) bool {
		scanned++
		if scanned > MaxCleanupKeysPerRun {
			return false
		}

		if v.current <= 0 && now.Sub(v.lastSeen) > l.opts.InactivityThreshold {
			if l.byEndpoint.CompareAndDelete(k, v) {
				l.cleaned.Inc()
			}
		}

		return true
	})
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
