package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the stderr logger. Verbosity 0 logs warnings and errors,
// 1 adds per-file stats, 2 or more adds every altered field.
func newLogger(w io.Writer, format string, verbosity int) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 2:
		level = zerolog.TraceLevel
		// Trace events must also pass the package-wide level.
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case verbosity == 1:
		level = zerolog.DebugLevel
	}

	// Files may be fixed concurrently.
	w = zerolog.SyncWriter(w)

	var out io.Writer
	switch format {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	case "json":
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
