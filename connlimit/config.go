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
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxCasRetries bounds the compare-and-swap retry loop used by
// IsAllowed/OnClosed. Exhausting the budget fails safe (reject admission).
const MaxCasRetries = 100

// MaxCleanupKeysPerRun bounds how many endpoint entries one background sweep
// inspects, keeping a single run's latency predictable regardless of how
// many distinct endpoints have ever connected.
const MaxCleanupKeysPerRun = 1000

var validate = validator.New()

// Options configures a Limiter. Every field is validated at construction
// (spec §9's "all validated at construction").
type Options struct {
	MaxPerEndpoint      int           `validate:"required,gt=0"`
	InactivityThreshold time.Duration `validate:"required,gt=0"`
	CleanupInterval     time.Duration `validate:"required,gt=0"`
}

// Validate checks Options against its struct tags, returning the first
// validation failure wrapped as ErrorInvalidConfig.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return ErrorInvalidConfig.Error(err)
	}
	return nil
}
