package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Logger zerolog.Logger

// Init configures the global logger. format "json" writes JSON lines;
// anything else writes the console format.
func Init(level, format string) {
	InitWriter(os.Stdout, level, format)
}

// InitWriter is Init with an explicit output
func InitWriter(out io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	Logger = zerolog.New(out).With().
		Timestamp().
		Logger().
		Level(lvl)

	// Set as global logger
	log.Logger = Logger
}

// WithComponent returns the global logger tagged with a component name
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
