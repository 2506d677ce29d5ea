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

// Command pktserverd is the composition root for the packet server
// framework (spec §12): it wires the buffer pool (C1), the packet and
// handler catalogs (C3/C6), the dispatcher (C7), the connection and rate
// limiters (C8/C9), and the protocol base (C5) into one runnable TCP
// listener, driven by a cobra/viper CLI in the same shape every other
// nabbar-golib command uses.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	spfcbr "github.com/spf13/cobra"
	spfvpr "github.com/spf13/viper"

	libbuf "github.com/nabbar/pktserver/buffer"
	libcbr "github.com/nabbar/pktserver/cobra"
	libcfg "github.com/nabbar/pktserver/config"
	libconlmt "github.com/nabbar/pktserver/connlimit"
	libdsp "github.com/nabbar/pktserver/dispatch"
	liblog "github.com/nabbar/pktserver/logger"
	libmet "github.com/nabbar/pktserver/metrics"
	libproto "github.com/nabbar/pktserver/protocol"
	libratlmt "github.com/nabbar/pktserver/ratelimit"
	libsiz "github.com/nabbar/pktserver/size"
	libver "github.com/nabbar/pktserver/version"
)

// buildDate, buildHash and buildRelease are meant to be overridden at link
// time with -ldflags "-X main.buildHash=... -X main.buildRelease=...";
// they fall back to placeholders for a plain `go build`.
var (
	buildDate    = "2026-01-01T00:00:00Z"
	buildHash    = "dev"
	buildRelease = "dev"
)

func main() {
	var (
		configFile string
		verbose    int
		log        liblog.Logger
		vpr        *spfvpr.Viper
	)

	log, _ = liblog.New(liblog.Options{Level: liblog.InfoLevel, Output: liblog.OutputStderr})
	vpr = spfvpr.New()

	app := libcbr.New()
	app.SetVersion(libver.NewVersion(
		libver.License_MIT,
		"pktserverd",
		"Packet server framework composition root: length-prefixed TCP framing, opcode dispatch, connection and rate limiting.",
		buildDate,
		buildHash,
		buildRelease,
		"nabbar",
		"pktsrv",
		struct{}{},
		0,
	))
	app.SetLogger(func() liblog.Logger { return log })
	app.SetViper(func() *spfvpr.Viper { return vpr })
	app.Init()

	_ = app.SetFlagConfig(true, &configFile)
	app.SetFlagVerbose(true, &verbose)
	app.AddCommandCompletion()
	app.AddCommandPrintErrorCode(func(item, value string) {
		os.Stdout.WriteString(item + ": " + value + "\n")
	})

	app.Cobra().RunE = func(cmd *spfcbr.Command, args []string) error {
		return run(configFile, verbose, log)
	}

	if err := app.Execute(); err != nil {
		log.Error("command failed", err)
		os.Exit(1)
	}
}

// run assembles every component from cfg and serves until the process
// receives SIGINT/SIGTERM.
func run(configFile string, verbose int, log liblog.Logger) error {
	cfg, err := libcfg.Load(configFile)
	if err != nil {
		return ErrorStartupFailed.Error(err)
	}

	if verbose > 0 {
		cfg.Logger.Level = liblog.DebugLevel
	}
	if l, lerr := liblog.New(cfg.Logger); lerr == nil {
		log = l
	}

	reg := libmet.New()

	pool, perr := libbuf.New(cfg.Buffer.MaxSize(), buildBuckets(cfg)...)
	if perr != nil {
		return ErrorStartupFailed.Error(perr)
	}

	packetCatalog, pcerr := buildPacketCatalog()
	if pcerr != nil {
		return ErrorStartupFailed.Error(pcerr)
	}

	handlerCatalog, hcerr := buildHandlerCatalog()
	if hcerr != nil {
		return ErrorStartupFailed.Error(hcerr)
	}

	connLimiter, clerr := libconlmt.New(cfg.ConnLimit, reg)
	if clerr != nil {
		return ErrorStartupFailed.Error(clerr)
	}

	rateLimiter, rlerr := libratlmt.New(cfg.RateLimit, reg)
	if rlerr != nil {
		return ErrorStartupFailed.Error(rlerr)
	}

	dispatcher := libdsp.New(libdsp.Options{
		Catalog:     packetCatalog,
		Handlers:    handlerCatalog,
		RateLimiter: rateLimiter,
	})

	srv := &server{dispatcher: dispatcher, connLimit: connLimiter, log: log}
	base := libproto.New(srv, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connLimiter.StartCleanup(ctx)
	rateLimiter.StartCleanup(ctx)
	defer connLimiter.Stop()
	defer func() { _ = rateLimiter.Dispose() }()
	defer base.Dispose()

	return listen(ctx, cfg.Listen, pool, cfg.Session.Options(), base, log)
}

// buildBuckets returns the configured bucket ladder, falling back to
// buffer.DefaultBuckets when the operator left bucket_sizes_bytes unset.
func buildBuckets(cfg *libcfg.Config) []libsiz.Size {
	if b := cfg.Buffer.Buckets(); len(b) > 0 {
		return b
	}
	return libbuf.DefaultBuckets(cfg.Buffer.MaxSize())
}
