// Package logging configures the global zerolog logger. The TUI owns the
// terminal, so log output goes to a rotating file only.
package logging

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogFile   = "mariner.log"
	defaultMaxSizeMB = 20
	defaultBackups   = 3
	defaultMaxAge    = 14
)

// Setup sets the global log level and routes output to a rotating log file
// under dir. When dir is empty, the current working directory is used.
func Setup(level, dir string) {
	applyLevel(level)

	path := defaultLogFile
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err == nil {
			path = filepath.Join(dir, defaultLogFile)
		}
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultBackups,
		MaxAge:     defaultMaxAge,
		Compress:   true,
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

func applyLevel(level string) {
	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
