/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logging provides structured logging functionality to shelfcache
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/trickstercache/shelfcache/pkg/observability/logging/options"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-stack/stack"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the interface for the shelfcache structured logger
type Logger interface {
	Debug(event string, detail Pairs)
	Info(event string, detail Pairs)
	Warn(event string, detail Pairs)
	Error(event string, detail Pairs)
	// WarnOnce sends a "WARN" event only once per key. Returns true if
	// this invocation was the first, and thus sent to the Logger
	WarnOnce(key string, event string, detail Pairs) bool
	Level() string
	Close()
}

// Pairs represents a key=value pair that helps to describe a log event
type Pairs map[string]any

func mapToArray(event string, detail Pairs) []any {
	a := make([]any, 0, (len(detail)*2)+2)
	// the event description is the first Pair in the output order (after prefixes)
	a = append(a, "event", event)
	for k, v := range detail {
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		a = append(a, k, v)
	}
	return a
}

type goKitLogger struct {
	logger log.Logger
	closer io.Closer
	level  string

	onceMutex      sync.Mutex
	onceRanEntries map[string]bool
}

// NoopLogger returns a Logger that discards all events
func NoopLogger() Logger {
	return &goKitLogger{
		logger:         log.NewNopLogger(),
		level:          "none",
		onceRanEntries: make(map[string]bool),
	}
}

// ConsoleLogger returns a Logger that prints log events to the Console
func ConsoleLogger(logLevel string) Logger {
	return StreamLogger(os.Stdout, logLevel)
}

// StreamLogger returns a Logger that writes logfmt events to w
func StreamLogger(w io.Writer, logLevel string) Logger {
	return newLogger(w, logLevel)
}

// New returns a Logger for the provided logging configuration. The
// returned Logger will write to files distinguished from other Loggers by the
// instance id.
func New(o *options.Options, instanceID int) Logger {
	if o == nil {
		o = options.New()
	}
	if o.LogFile == "" {
		return ConsoleLogger(o.LogLevel)
	}
	logFile := o.LogFile
	if instanceID > 0 {
		logFile = strings.Replace(logFile, ".log", "."+strconv.Itoa(instanceID)+".log", 1)
	}
	return newLogger(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    256,  // megabytes
		MaxBackups: 80,   // 256 megs @ 80 backups is 20GB of Logs
		MaxAge:     7,    // days
		Compress:   true, // Compress Rolled Backups
	}, o.LogLevel)
}

func newLogger(wr io.Writer, logLevel string) *goKitLogger {
	l := &goKitLogger{
		onceRanEntries: make(map[string]bool),
		level:          strings.ToLower(logLevel),
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(wr))
	logger = log.With(logger,
		"time", log.DefaultTimestampUTC,
		"app", "shelfcache",
		"caller", log.Valuer(func() any {
			return pkgCaller{stack.Caller(5)}
		}),
	)

	// wrap logger depending on log level
	switch l.level {
	case "debug":
		logger = level.NewFilter(logger, level.AllowDebug())
	case "info":
		logger = level.NewFilter(logger, level.AllowInfo())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	case "none":
		logger = level.NewFilter(logger, level.AllowNone())
	default:
		l.level = "info"
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	l.logger = logger

	if c, ok := wr.(io.Closer); ok && c != nil && wr != os.Stdout && wr != os.Stderr {
		l.closer = c
	}
	return l
}

// Debug sends a "DEBUG" event to the Logger
func (l *goKitLogger) Debug(event string, detail Pairs) {
	level.Debug(l.logger).Log(mapToArray(event, detail)...)
}

// Info sends an "INFO" event to the Logger
func (l *goKitLogger) Info(event string, detail Pairs) {
	level.Info(l.logger).Log(mapToArray(event, detail)...)
}

// Warn sends a "WARN" event to the Logger
func (l *goKitLogger) Warn(event string, detail Pairs) {
	level.Warn(l.logger).Log(mapToArray(event, detail)...)
}

// Error sends an "ERROR" event to the Logger
func (l *goKitLogger) Error(event string, detail Pairs) {
	level.Error(l.logger).Log(mapToArray(event, detail)...)
}

func (l *goKitLogger) WarnOnce(key string, event string, detail Pairs) bool {
	l.onceMutex.Lock()
	defer l.onceMutex.Unlock()
	key = "warn." + key
	if _, ok := l.onceRanEntries[key]; !ok {
		l.onceRanEntries[key] = true
		l.Warn(event, detail)
		return true
	}
	return false
}

// Level returns the configured Log Level
func (l *goKitLogger) Level() string {
	return l.level
}

// Close closes any opened file handles that were used for logging.
func (l *goKitLogger) Close() {
	if l.closer != nil {
		l.closer.Close()
	}
}

// pkgCaller wraps a stack.Call to make the default string output include the
// package path.
type pkgCaller struct {
	c stack.Call
}

// String returns a path from the call stack that is relative to the root of the project
func (pc pkgCaller) String() string {
	return strings.TrimPrefix(fmt.Sprintf("%+v", pc.c), "github.com/trickstercache/shelfcache/")
}
