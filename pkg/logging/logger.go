// Package logging provides structured logging for the toolindex system using
// zerolog. It supports human-readable console output during development and
// structured JSON output for production environments.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("tool", "langchain").Msg("Scoring tool")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	logging.Ctx(ctx).Debug().Msg("Using logger from context")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger zerolog.Logger

	// Nop is a logger that discards all output.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = createDefaultLogger()
}

// createDefaultLogger creates a logger with default settings.
func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr

	if isTerminal(os.Stderr) && os.Getenv("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := envLevel()
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // Also update zerolog's global logger
}

// New creates a new logger with the given writer.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// envLevel reads the log level from the LOG_LEVEL environment variable.
func envLevel() zerolog.Level {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if level, err := zerolog.ParseLevel(env); err == nil {
			return level
		}
	}
	return zerolog.InfoLevel
}

// isTerminal reports whether the file is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Package-level convenience helpers using the default logger.

// Debug starts a debug-level event on the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts an info-level event on the default logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a warn-level event on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts an error-level event on the default logger.
func Error() *zerolog.Event { return defaultLogger.Error() }
