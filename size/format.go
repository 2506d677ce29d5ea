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
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffixes []string
	mul      Size
}{
	{[]string{"PB", "P"}, SizePeta},
	{[]string{"TB", "T"}, SizeTera},
	{[]string{"GB", "G"}, SizeGiga},
	{[]string{"MB", "M"}, SizeMega},
	{[]string{"KB", "K"}, SizeKilo},
	{[]string{"B"}, SizeUnit},
}

// String renders the size with the largest unit that keeps the mantissa >= 1.
func (s Size) String() string {
	f := float64(s)
	for _, u := range sizeUnits {
		if u.mul == SizeUnit {
			continue
		}
		if f >= float64(u.mul) {
			return fmt.Sprintf("%.2f%s", f/float64(u.mul), u.suffixes[0])
		}
	}
	return fmt.Sprintf("%dB", uint64(s))
}

var parseRegexp = regexp.MustCompile(`^\s*([0-9]*\.?[0-9]+)\s*([a-zA-Z]*)\s*$`)

// Parse reads a human size string ("100MB", "1.5GB", "512") into a Size.
func Parse(in string) (Size, error) {
	m := parseRegexp.FindStringSubmatch(in)
	if m == nil {
		return SizeNul, fmt.Errorf("size: invalid format %q", in)
	}

	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return SizeNul, fmt.Errorf("size: invalid number %q: %w", m[1], err)
	}

	suffix := strings.ToUpper(strings.TrimSpace(m[2]))
	if suffix == "" {
		res, _ := saturate(val)
		return res, nil
	}

	for _, u := range sizeUnits {
		for _, sfx := range u.suffixes {
			if suffix == sfx {
				res, _ := saturate(val * float64(u.mul))
				return res, nil
			}
		}
	}

	return SizeNul, fmt.Errorf("size: unknown unit %q in %q", m[2], in)
}

// ViperDecoderHook adapts Parse into a mapstructure decode hook so viper can
// populate a Size field directly from a string config value.
func ViperDecoderHook() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Size(0)) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			return Parse(data.(string))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return ParseInt64(reflect.ValueOf(data).Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return Size(reflect.ValueOf(data).Uint()), nil
		default:
			return data, nil
		}
	}
}
