// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"sort"

	"github.com/rs/zerolog"
)

type zerologLogger struct {
	l zerolog.Logger
}

// NewZerolog returns a Logger writing to l.
//
// Notice messages are logged at info level with notice=true, and
// critical messages at error level with critical=true, so a critical
// message never terminates the program as zerolog's fatal level
// would.
func NewZerolog(l zerolog.Logger) Logger {
	return zerologLogger{l: l}
}

func (z zerologLogger) Log(level Level, message string, metadata map[string]string) {
	var e *zerolog.Event
	switch level {
	case Trace:
		e = z.l.Trace()
	case Debug:
		e = z.l.Debug()
	case Notice:
		e = z.l.Info().Bool("notice", true)
	case Warning:
		e = z.l.Warn()
	case Error:
		e = z.l.Error()
	case Critical:
		e = z.l.Error().Bool("critical", true)
	default:
		e = z.l.Info()
	}
	if e == nil {
		return
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e = e.Str(k, metadata[k])
	}
	e.Msg(message)
}
