// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logging defines the logging capability used by reqx and
// adapters connecting it to log/slog and zerolog.
package logging

import (
	"fmt"
	"strings"
)

// A Level is the severity of a log message.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Notice
	Warning
	Error
	Critical
)

var levelNames = []string{
	"trace",
	"debug",
	"info",
	"notice",
	"warning",
	"error",
	"critical",
}

// String returns the lower case name of the level.
func (l Level) String() string {
	if l < Trace || l > Critical {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a level name to a Level. "warn" is accepted as
// an alias for "warning".
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warn" {
		return Warning, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return Info, fmt.Errorf("reqx/logging: unknown level %q", s)
}

// Standard metadata keys.
const (
	RequestIDKey = "request_id"
	MethodKey    = "method"
	URLKey       = "url"
	StatusKey    = "status"
	StateKey     = "state"
	DurationKey  = "duration_ms"
	CacheKey     = "cache_key"
	ErrorKey     = "error"
)

// A Logger receives log messages. Metadata may be nil.
//
// Implementations must be safe for concurrent use.
type Logger interface {
	Log(level Level, message string, metadata map[string]string)
}

// The LoggerFunc type is an adapter to allow the use of ordinary
// functions as loggers.
type LoggerFunc func(level Level, message string, metadata map[string]string)

// Log calls f(level, message, metadata).
func (f LoggerFunc) Log(level Level, message string, metadata map[string]string) {
	f(level, message, metadata)
}

type nop struct{}

func (nop) Log(Level, string, map[string]string) {}

// Nop is a Logger which discards everything.
var Nop Logger = nop{}

// MinLevel returns a Logger which passes to l only messages at level
// min or above.
func MinLevel(l Logger, min Level) Logger {
	return LoggerFunc(func(level Level, message string, metadata map[string]string) {
		if level >= min {
			l.Log(level, message, metadata)
		}
	})
}
