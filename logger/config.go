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

package logger

import (
	"github.com/go-playground/validator/v10"
)

// Output names the log destination.
type Output string

const (
	OutputStdout Output = "stdout"
	OutputStderr Output = "stderr"
	OutputFile   Output = "file"
)

var validate = validator.New()

// Options configures a Logger, validated at construction per the ambient
// configuration convention (§10.3).
type Options struct {
	Level Level `validate:"-"`
	// Output selects the destination; defaults to OutputStderr when empty.
	Output Output `validate:"omitempty,oneof=stdout stderr file"`
	// FilePath is required when Output is OutputFile.
	FilePath string `validate:"required_if=Output file"`
	// WithCaller adds the calling file:line to every entry.
	WithCaller bool `validate:"-"`
	// JSON switches the formatter from text to JSON.
	JSON bool `validate:"-"`
}

// Validate checks Options against its struct tags, returning the first
// validation failure wrapped as ErrorInvalidConfig.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return ErrorInvalidConfig.Error(err)
	}
	return nil
}
