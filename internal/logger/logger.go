package logger

import (
	"io"
	"time"

	"github.com/alexanderramin/redtally/internal/config"
	"github.com/rs/zerolog"
)

// New builds the process logger. Console output is used when cfg asks for
// it, or when cfg leaves the format open and w is a terminal; JSON otherwise.
// An invalid level falls back to info.
func New(cfg config.LogConfig, w io.Writer, isTerminal bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	console := cfg.Format == "console" || (cfg.Format == "" && isTerminal)
	if console {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal}
		return zerolog.New(output).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
