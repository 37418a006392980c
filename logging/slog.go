// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"context"
	"log/slog"
	"sort"
)

// Levels without a slog counterpart.
const (
	SlogTrace    = slog.Level(-8)
	SlogNotice   = slog.Level(2)
	SlogCritical = slog.Level(12)
)

// SlogLevel returns the slog level corresponding to l.
func SlogLevel(l Level) slog.Level {
	switch l {
	case Trace:
		return SlogTrace
	case Debug:
		return slog.LevelDebug
	case Notice:
		return SlogNotice
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	case Critical:
		return SlogCritical
	default:
		return slog.LevelInfo
	}
}

type slogLogger struct {
	l *slog.Logger
}

// NewSlog returns a Logger writing to l. Metadata entries become
// string attributes, sorted by key.
func NewSlog(l *slog.Logger) Logger {
	return slogLogger{l: l}
}

func (s slogLogger) Log(level Level, message string, metadata map[string]string) {
	ctx := context.Background()
	sl := SlogLevel(level)
	if !s.l.Enabled(ctx, sl) {
		return
	}
	s.l.LogAttrs(ctx, sl, message, attrs(metadata)...)
}

func attrs(metadata map[string]string) []slog.Attr {
	if len(metadata) == 0 {
		return nil
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]slog.Attr, len(keys))
	for i, k := range keys {
		out[i] = slog.String(k, metadata[k])
	}
	return out
}

// ReplaceLevelNames is a slog.HandlerOptions.ReplaceAttr function which
// prints the levels TRACE, NOTICE and CRITICAL by name.
func ReplaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok {
		switch level {
		case SlogTrace:
			a.Value = slog.StringValue("TRACE")
		case SlogNotice:
			a.Value = slog.StringValue("NOTICE")
		case SlogCritical:
			a.Value = slog.StringValue("CRITICAL")
		}
	}
	return a
}
