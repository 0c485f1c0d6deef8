// Package log provides a leveled, structured logger shared by every service of
// the tally node. It wraps zerolog and exposes printf-style (suffix f) and
// key/value (suffix w) helpers so call sites do not depend on zerolog directly.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// invalidCharMarker is what zerolog writes for any invalid UTF-8 sequence.
var invalidCharMarker = []byte(`\ufffd`)

var (
	log   zerolog.Logger
	level = LogLevelInfo

	// panicOnInvalidChars makes the logger panic when a log line contains
	// invalid UTF-8. Useful in tests to catch raw bytes being logged with %s.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"

	logTestWriter     io.Writer
	logTestWriterName = "log_test_writer"
)

func init() {
	Init(LogLevelError, "stderr", nil)
}

type invalidCharChecker struct{}

func (*invalidCharChecker) Write(p []byte) (int, error) {
	if bytes.Contains(p, invalidCharMarker) {
		panic(fmt.Sprintf("log line contains invalid chars: %q", p))
	}
	return len(p), nil
}

// errorLevelWriter only forwards warnings and errors.
type errorLevelWriter struct {
	io.Writer
}

func (w *errorLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Init configures the global logger. The level is one of debug, info, warn or
// error. The output can be stdout, stderr or a file path. If errorOutput is not
// nil, warnings and errors are also written there.
func Init(logLevel, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	if output != logTestWriterName {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339Nano}
	}
	outputs := []io.Writer{out}
	if errorOutput != nil {
		outputs = append(outputs, &errorLevelWriter{zerolog.ConsoleWriter{
			Out:        errorOutput,
			TimeFormat: time.RFC3339Nano,
			NoColor:    true,
		}})
	}
	if panicOnInvalidChars {
		outputs = append(outputs, &invalidCharChecker{})
	}
	if len(outputs) > 1 {
		out = zerolog.MultiLevelWriter(outputs...)
	}

	// skip our own helper frames so the caller field points to the call site
	log = zerolog.New(out).With().Timestamp().CallerWithSkipFrameCount(3).Logger()

	switch logLevel {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", logLevel))
	}
	level = logLevel
}

// Level returns the current log level.
func Level() string {
	return level
}

// Logger returns the underlying zerolog logger.
func Logger() *zerolog.Logger {
	return &log
}

func Debug(args ...any) {
	log.Debug().Msg(fmt.Sprint(args...))
}

func Info(args ...any) {
	log.Info().Msg(fmt.Sprint(args...))
}

func Warn(args ...any) {
	log.Warn().Msg(fmt.Sprint(args...))
}

func Error(args ...any) {
	log.Error().Msg(fmt.Sprint(args...))
}

func Fatal(args ...any) {
	log.Fatal().Msg(fmt.Sprint(args...))
}

func Debugf(template string, args ...any) {
	log.Debug().Msgf(template, args...)
}

func Infof(template string, args ...any) {
	log.Info().Msgf(template, args...)
}

func Warnf(template string, args ...any) {
	log.Warn().Msgf(template, args...)
}

func Errorf(template string, args ...any) {
	log.Error().Msgf(template, args...)
}

func Fatalf(template string, args ...any) {
	log.Fatal().Msgf(template, args...)
}

// Debugw logs a message with key/value pairs.
func Debugw(msg string, keyvalues ...any) {
	log.Debug().Fields(keyvalues).Msg(msg)
}

// Infow logs a message with key/value pairs.
func Infow(msg string, keyvalues ...any) {
	log.Info().Fields(keyvalues).Msg(msg)
}

// Warnw logs a message with key/value pairs.
func Warnw(msg string, keyvalues ...any) {
	log.Warn().Fields(keyvalues).Msg(msg)
}

// Errorw logs an error together with a message and optional key/value pairs.
func Errorw(err error, msg string, keyvalues ...any) {
	log.Error().Err(err).Fields(keyvalues).Msg(msg)
}
