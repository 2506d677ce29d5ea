/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package size

import (
	"fmt"
	"math"
)

// toFloat converts any of the numeric kinds accepted by Mul/Div/Add into a
// float64 operand; unsupported kinds are treated as 0.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case Size:
		return float64(n)
	default:
		return 0
	}
}

// saturate clamps a float64 byte count into the Size range, rounding
// fractional results up (ceil) and flooring negatives at zero.
func saturate(f float64) (Size, bool) {
	if f <= 0 {
		return SizeNul, false
	}
	if f >= float64(math.MaxUint64) {
		return Size(math.MaxUint64), true
	}
	return Size(math.Ceil(f)), false
}

// Mul multiplies the size in place by factor, saturating at MaxUint64.
func (s *Size) Mul(factor interface{}) {
	_ = s.MulErr(factor)
}

// MulErr multiplies the size in place by factor, returning an error if the
// result saturated at MaxUint64.
func (s *Size) MulErr(factor interface{}) error {
	f := toFloat(factor)
	res, overflow := saturate(float64(*s) * f)
	*s = res
	if overflow {
		return fmt.Errorf("size: multiplication overflow, result capped to max size")
	}
	return nil
}

// Div divides the size in place by divisor, ceiling fractional results.
func (s *Size) Div(divisor interface{}) {
	_ = s.DivErr(divisor)
}

// DivErr divides the size in place by divisor, returning an error for a
// zero or negative divisor (the size is left unchanged in that case).
func (s *Size) DivErr(divisor interface{}) error {
	d := toFloat(divisor)
	if d <= 0 {
		return fmt.Errorf("size: invalid diviser %v", divisor)
	}
	res, _ := saturate(float64(*s) / d)
	*s = res
	return nil
}

// Add increments the size in place, saturating at MaxUint64.
func (s *Size) Add(delta interface{}) {
	_ = s.AddErr(delta)
}

// AddErr increments the size in place, returning an error if the result
// overflowed and was capped to MaxUint64.
func (s *Size) AddErr(delta interface{}) error {
	d := toFloat(delta)
	res, overflow := saturate(float64(*s) + d)
	*s = res
	if overflow {
		return fmt.Errorf("size: addition overflow, result capped to max size")
	}
	return nil
}

// Int64 returns the size as an int64, saturating at MaxInt64.
func (s Size) Int64() int64 {
	if s > Size(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(s)
}

// Uint64 returns the size as a uint64.
func (s Size) Uint64() uint64 {
	return uint64(s)
}

// ParseInt64 builds a Size from an int64, flooring negative values at zero.
func ParseInt64(i int64) Size {
	if i < 0 {
		return SizeNul
	}
	return Size(i)
}
