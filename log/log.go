// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the small logging seam used throughout symidx,
// mirroring how github.com/saferwall/pe threads an Options.Logger through
// its File type and wraps it in a *log.Helper.
package log

import "github.com/sirupsen/logrus"

// Logger is the interface a caller-supplied logger must satisfy. Any
// structured logger can be adapted to it; NewLogrusLogger wraps the
// default.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Helper wraps a Logger so call sites don't need to nil-check it.
// A nil *Helper is valid and every method is then a no-op.
type Helper struct {
	l Logger
}

// NewHelper wraps logger in a Helper. logger may be nil.
func NewHelper(logger Logger) *Helper {
	return &Helper{l: logger}
}

func (h *Helper) Debugf(format string, args ...interface{}) {
	if h == nil || h.l == nil {
		return
	}
	h.l.Debugf(format, args...)
}

func (h *Helper) Infof(format string, args ...interface{}) {
	if h == nil || h.l == nil {
		return
	}
	h.l.Infof(format, args...)
}

func (h *Helper) Warnf(format string, args ...interface{}) {
	if h == nil || h.l == nil {
		return
	}
	h.l.Warnf(format, args...)
}

func (h *Helper) Errorf(format string, args ...interface{}) {
	if h == nil || h.l == nil {
		return
	}
	h.l.Errorf(format, args...)
}

// logrusLogger adapts *logrus.Logger to the Logger interface.
type logrusLogger struct {
	entry *logrus.Logger
}

// NewLogrusLogger returns the default concrete Logger used by the CLI,
// backed by github.com/sirupsen/logrus.
func NewLogrusLogger() Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusLogger{entry: l}
}

func (a *logrusLogger) Debugf(format string, args ...interface{}) { a.entry.Debugf(format, args...) }
func (a *logrusLogger) Infof(format string, args ...interface{})  { a.entry.Infof(format, args...) }
func (a *logrusLogger) Warnf(format string, args ...interface{})  { a.entry.Warnf(format, args...) }
func (a *logrusLogger) Errorf(format string, args ...interface{}) { a.entry.Errorf(format, args...) }
