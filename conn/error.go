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

package conn

import (
	"fmt"

	liberr "github.com/nabbar/pktserver/errors"
)

const pkgName = "pktserver/conn"

const (
	ErrorInvalidFrame liberr.CodeError = iota + liberr.MinPkgConnection
	ErrorIncompletePacket
	ErrorPacketTooLarge
	ErrorConnectionClosed
	ErrorQueueFull
	ErrorIoError
)

func init() {
	if liberr.ExistInMapMessage(ErrorInvalidFrame) {
		panic(fmt.Errorf("error code collision with package %s", pkgName))
	}
	liberr.RegisterIdFctMessage(ErrorInvalidFrame, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorInvalidFrame:
		return "frame length outside [2, max_buffer_size]"
	case ErrorIncompletePacket:
		return "peer closed before announced frame length was fully read"
	case ErrorPacketTooLarge:
		return "payload exceeds the maximum frame length encodable in the 2-byte length prefix"
	case ErrorConnectionClosed:
		return "operation attempted on a disconnected channel"
	case ErrorQueueFull:
		return "incoming queue is at capacity"
	case ErrorIoError:
		return "transport I/O error"
	}

	return liberr.NullMessage
}
