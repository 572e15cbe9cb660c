// Package logger wraps zerolog behind a small key-value API. This is the
// diagnostic side channel: best-effort, written to stderr, and never part of
// the wire protocol.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger.
var Log *Logger

type Logger struct {
	z zerolog.Logger
}

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	Log = &Logger{z: zerolog.New(output).With().Timestamp().Logger()}
}

// Setup reconfigures the global logger. level is one of debug/info/warn/
// error (case-insensitive, default info); format is "json" or "console".
func Setup(level string, format string) {
	var lvl zerolog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = zerolog.DebugLevel
	case "WARN":
		lvl = zerolog.WarnLevel
	case "ERROR":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var z zerolog.Logger
	if strings.ToLower(format) == "json" {
		z = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		z = zerolog.New(output).With().Timestamp().Logger()
	}
	Log = &Logger{z: z}
}

func (l *Logger) Debug(msg string, args ...interface{}) { emit(l.z.Debug(), msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { emit(l.z.Info(), msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { emit(l.z.Warn(), msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { emit(l.z.Error(), msg, args...) }

func emit(e *zerolog.Event, msg string, args ...interface{}) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}
