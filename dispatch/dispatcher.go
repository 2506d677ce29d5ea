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
	"context"
	"net"

	"golang.org/x/sync/semaphore"

	libatm "github.com/nabbar/pktserver/atomic"
	libbuf "github.com/nabbar/pktserver/buffer"
	libcon "github.com/nabbar/pktserver/conn"
	liberr "github.com/nabbar/pktserver/errors"
	libhdl "github.com/nabbar/pktserver/handler"
	libpkt "github.com/nabbar/pktserver/packet"
	libcat "github.com/nabbar/pktserver/pktcat"
)

// RateLimiter is the narrow interface the dispatcher needs from the request
// limiter (C9). Defined here rather than importing the ratelimit package
// directly, so the dispatcher compiles and tests against any conforming
// implementation, including a test double, before C9 exists.
type RateLimiter interface {
	Allow(endpoint string, key string) bool
}

// Options configures a Dispatcher.
type Options struct {
	// Catalog is the packet catalog (C3) used to deserialize incoming
	// frames and to mirror compress/encrypt any reply.
	Catalog *libcat.Catalog
	// Handlers is the compiled handler catalog (C6).
	Handlers *libhdl.Catalog
	// RateLimiter is consulted when a handler's Metadata.RateLimitKey is
	// non-empty. A nil RateLimiter disables rate limiting entirely.
	RateLimiter RateLimiter
	// SessionKey resolves the symmetric key material for an encrypted
	// packet's session. A nil func means no key material is ever
	// supplied, so AEAD transforms always fail authentication.
	SessionKey func(sender *libcon.Session) []byte
	// PermissionOf resolves the connection's current authority level,
	// compared against a handler's Metadata.Permission. A nil func means
	// every permission check fails closed.
	PermissionOf func(sender *libcon.Session) string
}

// Dispatcher drives the pipeline described in spec §4.7: deserialize,
// reject fragments, decompress/decrypt, look up the handler, enforce
// permission/encryption/rate-limit/concurrency policy, invoke with a
// timeout, and frame any reply back through the catalog's transform chain.
type Dispatcher struct {
	catalog      *libcat.Catalog
	handlers     *libhdl.Catalog
	rateLimiter  RateLimiter
	sessionKey   func(sender *libcon.Session) []byte
	permissionOf func(sender *libcon.Session) string

	sem libatm.MapTyped[semKey, *semaphore.Weighted]
}

// semKey identifies one concurrency gate: a remote endpoint and an opcode.
type semKey struct {
	endpoint string
	opcode   uint16
}

// New builds a Dispatcher from opts. Catalog and Handlers are required;
// the remaining fields degrade gracefully when left nil (see Options).
func New(opts Options) *Dispatcher {
	return &Dispatcher{
		catalog:      opts.Catalog,
		handlers:     opts.Handlers,
		rateLimiter:  opts.RateLimiter,
		sessionKey:   opts.SessionKey,
		permissionOf: opts.PermissionOf,
		sem:          libatm.NewMapTyped[semKey, *semaphore.Weighted](),
	}
}

// Dispatch runs one buffer lease through the full pipeline. It always
// releases lease exactly once, regardless of outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, sender *libcon.Session, lease *libbuf.Lease) liberr.Error {
	defer lease.Release()

	pkt, err := d.catalog.TryDeserialize(lease.Bytes())
	if err != nil {
		return err
	}

	// Reassembly is out of scope for this pipeline (spec §4.7 Open
	// Question, locked): a fragment is rejected before catalog lookup
	// rather than silently dispatched as a complete packet.
	if pkt.Flags().Has(libpkt.FlagFragmented) {
		return ErrorInvalidInput.Error(nil)
	}

	arrivedCompressed := pkt.Flags().Has(libpkt.FlagCompressed)
	arrivedEncrypted := pkt.Flags().Has(libpkt.FlagEncrypted)

	if arrivedCompressed {
		if pkt, err = d.catalog.Decompress(pkt); err != nil {
			return err
		}
	}

	var key []byte
	if arrivedEncrypted {
		if d.sessionKey != nil {
			key = d.sessionKey(sender)
		}
		if pkt, err = d.catalog.Decrypt(pkt, key); err != nil {
			return err
		}
	}

	invoke, meta, ok := d.handlers.Lookup(pkt.Opcode())
	if !ok {
		return ErrorUnknownOpcode.Error(nil)
	}

	if meta.Permission != "" {
		if d.permissionOf == nil || d.permissionOf(sender) != meta.Permission {
			return ErrorForbidden.Error(nil)
		}
	}

	if meta.RequireEncrypted && !arrivedEncrypted {
		return ErrorEncryptionPolicyViolation.Error(nil)
	}

	if meta.RateLimitKey != "" && d.rateLimiter != nil {
		if !d.rateLimiter.Allow(endpointOf(sender), meta.RateLimitKey) {
			return ErrorRateLimited.Error(nil)
		}
	}

	callCtx := ctx
	if meta.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, meta.Timeout)
		defer cancel()
	}

	if meta.ConcurrencyLimit > 0 {
		sem := d.semaphoreFor(endpointOf(sender), pkt.Opcode(), meta.ConcurrencyLimit)
		if !sem.TryAcquire(1) {
			// No configured timeout means a caller wants a fast-fail, not a
			// wait: report Busy immediately rather than blocking forever.
			if meta.Timeout <= 0 {
				return ErrorBusy.Error(nil)
			}
			if aerr := sem.Acquire(callCtx, 1); aerr != nil {
				return ErrorBusy.Error(aerr)
			}
		}
		defer sem.Release(1)
	}

	reply, herr := invoke(&libhdl.Context{Packet: pkt, Connection: sender, Ctx: callCtx})
	if herr != nil {
		return herr
	}
	if callCtx.Err() != nil {
		return ErrorTimeout.Error(callCtx.Err())
	}

	if reply == nil {
		return nil
	}

	replyPkt, ok := reply.(libpkt.Packet)
	if !ok {
		return nil
	}

	if arrivedCompressed {
		if replyPkt, err = d.catalog.Compress(replyPkt); err != nil {
			return err
		}
	}
	if arrivedEncrypted {
		if replyPkt, err = d.catalog.Encrypt(replyPkt, key); err != nil {
			return err
		}
	}

	return sender.Send(libpkt.Serialize(replyPkt))
}

// semaphoreFor lazily creates the per-(endpoint, opcode) concurrency limiter
// the first time that endpoint dispatches that opcode with a non-zero
// ConcurrencyLimit.
func (d *Dispatcher) semaphoreFor(endpoint string, opcode uint16, limit int) *semaphore.Weighted {
	key := semKey{endpoint: endpoint, opcode: opcode}
	if sem, ok := d.sem.Load(key); ok {
		return sem
	}
	sem, _ := d.sem.LoadOrStore(key, semaphore.NewWeighted(int64(limit)))
	return sem
}

// endpointOf derives the rate limiter's per-endpoint key from the
// session's remote address: the remote host, without its port.
func endpointOf(sender *libcon.Session) string {
	if sender == nil {
		return ""
	}
	if addr := sender.RemoteAddr(); addr != nil {
		if host, _, err := net.SplitHostPort(addr.String()); err == nil {
			return host
		}
		return addr.String()
	}
	return ""
}
