package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Leveled logger used by the wishes service.
// - Init(level, format) picks the threshold and the slog handler (text|json)
// - Debugf/Infof/Warnf/Errorf/Fatalf keep printf-style call sites short

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// slog has no fatal level; render it above error.
const slogFatal = slog.LevelError + 4

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	format           = "text"
	level            = LevelInfo
	logger           = newSlog(out, format)
)

func newSlog(w io.Writer, f string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lv, ok := a.Value.Any().(slog.Level); ok && lv == slogFatal {
					a.Value = slog.StringValue("FATAL")
				}
			}
			return a
		},
	}
	if f == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal)
// and, optionally, the output format ("text" or "json"). Default level is Info.
func Init(l string, formats ...string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
	if len(formats) > 0 {
		f := strings.ToLower(strings.TrimSpace(formats[0]))
		if f != "json" {
			f = "text"
		}
		format = f
		logger = newSlog(out, format)
	}
}

// SetOutput redirects log output. Mostly useful in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger = newSlog(out, format)
}

func parseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func emit(l Level, sl slog.Level, msg string) {
	mu.RLock()
	lg, threshold := logger, level
	mu.RUnlock()
	if l < threshold {
		return
	}
	lg.Log(context.Background(), sl, msg)
}

func Debugf(format string, v ...interface{}) {
	emit(LevelDebug, slog.LevelDebug, fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	emit(LevelInfo, slog.LevelInfo, fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	emit(LevelWarn, slog.LevelWarn, fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	emit(LevelError, slog.LevelError, fmt.Sprintf(format, v...))
}

func Fatalf(format string, v ...interface{}) {
	mu.RLock()
	lg := logger
	mu.RUnlock()
	lg.Log(context.Background(), slogFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	emit(LevelInfo, slog.LevelInfo, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
