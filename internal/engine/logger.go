package engine

import (
	"io"
	"os"
	"strings"

	"github.com/tochemey/goakt/v3/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config log level to the actor system level. Unknown names mean info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarningLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger builds the logger shared by the actor system and the world.
// It writes to stdout and, when file is set, to a size-rotated log file.
// The returned closer releases the file and is never nil.
func NewLogger(level, file string) (log.Logger, io.Closer) {
	writers := []io.Writer{os.Stdout}
	var closer io.Closer = nopCloser{}
	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		writers = append(writers, rotating)
		closer = rotating
	}
	return log.New(ParseLevel(level), writers...), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
