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
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxCasRetries bounds the compare-and-swap retry loop used by Allow.
// Exhausting the budget fails safe (reject the request).
const MaxCasRetries = 100

// CleanupBatchSize bounds how many endpoint entries the background sweep
// inspects before yielding control back to the scheduler.
const CleanupBatchSize = 100

// DefaultDisposeTimeout bounds how long Dispose waits for the cleanup
// consumer to drain before giving up.
const DefaultDisposeTimeout = 5 * time.Second

var validate = validator.New()

// Level holds the three tunable thresholds of one sliding window: how many
// requests are allowed, over what window, and how long a violator is
// locked out once the window overflows.
type Level struct {
	MaxAllowedRequests int           `validate:"required,gt=0"`
	TimeWindow         time.Duration `validate:"required,gt=0"`
	LockoutDuration    time.Duration `validate:"required,gt=0"`
}

// Options configures a Limiter. Default is applied to any rate-limit key
// not present in Levels, so handlers whose attribute bundle names a level
// absent from this map still fall back to a validated configuration
// (spec §6's "per-level variants for per-method tuning").
type Options struct {
	Default Level `validate:"required"`
	Levels  map[string]Level `validate:"omitempty,dive"`

	// DisposeTimeout bounds Dispose's wait for the cleanup consumer to
	// drain. Zero means DefaultDisposeTimeout.
	DisposeTimeout time.Duration `validate:"omitempty,gt=0"`
}

// Validate checks Options against its struct tags, returning the first
// validation failure wrapped as ErrorInvalidConfig.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return ErrorInvalidConfig.Error(err)
	}
	return nil
}

func (o Options) levelFor(key string) Level {
	if key != "" {
		if lvl, ok := o.Levels[key]; ok {
			return lvl
		}
	}
	return o.Default
}

func (o Options) disposeTimeout() time.Duration {
	if o.DisposeTimeout > 0 {
		return o.DisposeTimeout
	}
	return DefaultDisposeTimeout
}
