package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a console logger scoped to the caller. Nothing here
// touches the zerolog global logger.
func NewLogger(w io.Writer, debug bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func ComponentLogger(base zerolog.Logger, op string) zerolog.Logger {
	return base.With().Str("op", op).Logger()
}
