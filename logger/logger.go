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
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the collaborator interface consumed throughout C1-C9 (spec
// §6): leveled messages plus an error variant carrying the triggering
// cause. fields is variadic so call sites that have nothing structured to
// attach aren't forced to pass an empty map.
type Logger interface {
	Trace(message string, fields ...Fields)
	Debug(message string, fields ...Fields)
	Info(message string, fields ...Fields)
	Warn(message string, fields ...Fields)
	Error(message string, err error, fields ...Fields)

	// SetLevel changes the minimal level of message this Logger emits.
	SetLevel(lvl Level)
	// GetLevel returns the minimal level of message this Logger emits.
	GetLevel() Level
	// With returns a child Logger that merges extra into every entry's
	// fields, leaving the receiver untouched.
	With(extra Fields) Logger
}

type lgr struct {
	log    *logrus.Logger
	fields Fields
}

// New builds a Logger from opts. Output defaults to OutputStderr. Level is
// applied as given; an unset Level is its zero value, PanicLevel.
func New(opts Options) (Logger, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetLevel(opts.Level.Logrus())

	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetReportCaller(opts.WithCaller)

	switch opts.Output {
	case OutputFile:
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, ErrorOpenFile.Error(err)
		}
		l.SetOutput(f)
	case OutputStdout:
		l.SetOutput(os.Stdout)
	default:
		l.SetOutput(os.Stderr)
	}

	return &lgr{log: l, fields: Fields{}}, nil
}

func (o *lgr) entry() *logrus.Entry {
	if len(o.fields) == 0 {
		return logrus.NewEntry(o.log)
	}
	return o.log.WithFields(o.fields.toLogrus())
}

func (o *lgr) withCallFields(extra []Fields) *logrus.Entry {
	e := o.entry()
	for _, f := range extra {
		if len(f) > 0 {
			e = e.WithFields(f.toLogrus())
		}
	}
	return e
}

func (o *lgr) Trace(message string, fields ...Fields) {
	o.withCallFields(fields).Trace(message)
}

func (o *lgr) Debug(message string, fields ...Fields) {
	o.withCallFields(fields).Debug(message)
}

func (o *lgr) Info(message string, fields ...Fields) {
	o.withCallFields(fields).Info(message)
}

func (o *lgr) Warn(message string, fields ...Fields) {
	o.withCallFields(fields).Warn(message)
}

func (o *lgr) Error(message string, err error, fields ...Fields) {
	e := o.withCallFields(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(message)
}

func (o *lgr) SetLevel(lvl Level) {
	o.log.SetLevel(lvl.Logrus())
}

func (o *lgr) GetLevel() Level {
	switch o.log.GetLevel() {
	case logrus.PanicLevel:
		return PanicLevel
	case logrus.FatalLevel:
		return FatalLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.InfoLevel:
		return InfoLevel
	case logrus.DebugLevel:
		return DebugLevel
	case logrus.TraceLevel:
		return TraceLevel
	}
	return InfoLevel
}

func (o *lgr) With(extra Fields) Logger {
	return &lgr{log: o.log, fields: o.fields.Merge(extra)}
}
