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

package dispatch

import (
	"fmt"

	liberr "github.com/nabbar/pktserver/errors"
)

const pkgName = "pktserver/dispatch"

const (
	ErrorInvalidInput liberr.CodeError = iota + liberr.MinPkgDispatch
	ErrorUnknownOpcode
	ErrorForbidden
	ErrorEncryptionPolicyViolation
	ErrorRateLimited
	ErrorBusy
	ErrorTimeout
)

func init() {
	if liberr.ExistInMapMessage(ErrorInvalidInput) {
		panic(fmt.Errorf("error code collision with package %s", pkgName))
	}
	liberr.RegisterIdFctMessage(ErrorInvalidInput, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorInvalidInput:
		return "packet rejected before catalog lookup (e.g. fragmented flag set)"
	case ErrorUnknownOpcode:
		return "no handler registered for this packet's opcode"
	case ErrorForbidden:
		return "connection's authority level does not satisfy the handler's permission requirement"
	case ErrorEncryptionPolicyViolation:
		return "packet's encrypted-transport state does not match the handler's requirement"
	case ErrorRateLimited:
		return "request rejected by the rate limiter"
	case ErrorBusy:
		return "concurrency limit reached for this opcode"
	case ErrorTimeout:
		return "handler invocation exceeded its configured timeout"
	}

	return liberr.NullMessage
}
