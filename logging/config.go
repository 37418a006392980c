// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// A Format selects the output encoding of New.
type Format string

const (
	// FormatJSON writes one zerolog JSON object per line.
	FormatJSON Format = "json"
	// FormatConsole writes human readable zerolog console output.
	FormatConsole Format = "console"
	// FormatText writes slog key=value text.
	FormatText Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatJSON, FormatConsole, FormatText:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("reqx/logging: unknown format %q", s)
	}
}

// Config configures New.
type Config struct {
	// Level is the minimum level logged.
	Level Level
	// Format is the output encoding. The zero value means FormatJSON.
	Format Format
	// Output receives the log lines. If nil, os.Stderr is used.
	Output io.Writer
}

// New returns a Logger built from cfg.
func New(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case FormatText:
		h := slog.NewTextHandler(out, &slog.HandlerOptions{
			Level:       SlogLevel(cfg.Level),
			ReplaceAttr: ReplaceLevelNames,
		})
		return NewSlog(slog.New(h))
	case FormatConsole:
		w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: !isTerminal(out)}
		return MinLevel(NewZerolog(zerolog.New(w).With().Timestamp().Logger()), cfg.Level)
	default:
		return MinLevel(NewZerolog(zerolog.New(out).With().Timestamp().Logger()), cfg.Level)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
