package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	alog "github.com/apex/log"
)

// colors.
const (
	none   = 0
	red    = 31
	green  = 32
	yellow = 33
	blue   = 34
	gray   = 37
)

// Colors mapping.
var Colors = [...]int{
	alog.DebugLevel: gray,
	alog.InfoLevel:  blue,
	alog.WarnLevel:  yellow,
	alog.ErrorLevel: red,
	alog.FatalLevel: red,
}

// Strings mapping.
var Strings = [...]string{
	alog.DebugLevel: "DEBUG",
	alog.InfoLevel:  "INFO",
	alog.WarnLevel:  "WARN",
	alog.ErrorLevel: "ERROR",
	alog.FatalLevel: "FATAL",
}

// LogHandler writes one line per entry: level, timestamp, message and
// the entry's fields. Colors are only emitted when Color is set.
type LogHandler struct {
	mu     sync.Mutex
	Writer io.Writer
	Color  bool
}

func (h *LogHandler) HandleLog(e *alog.Entry) error {
	color := none
	if h.Color {
		color = Colors[e.Level]
	}
	level := Strings[e.Level]
	names := e.Fields.Names()
	ts := e.Timestamp.UTC().Format(time.RFC3339Nano)

	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(h.Writer, "\033[%dm%6s\033[0m %s %-25s", color, level, ts, e.Message)

	for _, name := range names {
		fmt.Fprintf(h.Writer, " \033[%dm%s\033[0m=%v", color, name, e.Fields.Get(name))
	}

	fmt.Fprintln(h.Writer)

	return nil
}

var (
	logg Logger = alog.Log
)

// InitLogger routes all logging to stderr at the given level
// (debug, info, warn, error, fatal). Unknown levels fall back to info.
func InitLogger(level string) Logger {
	return NewLogger(os.Stderr, level)
}

func NewLogger(w io.Writer, level string) Logger {
	handler := &LogHandler{Writer: w}
	if f, ok := w.(*os.File); ok {
		handler.Color = isTTY(f.Fd())
	}
	alog.SetHandler(handler)

	lvl, err := alog.ParseLevel(level)
	if err != nil {
		lvl = alog.InfoLevel
	}
	alog.SetLevel(lvl)

	logg = alog.Log
	return logg
}

// This generic logging interface hides
// an apex logger or another impl
type Logger interface {
	Debug(arg string)
	Debugf(format string, args ...interface{})
	Info(arg string)
	Infof(format string, args ...interface{})
	Warn(arg string)
	Warnf(format string, args ...interface{})
	Error(arg string)
	Errorf(format string, args ...interface{})

	// Log and terminate process (unrecoverable)
	Fatal(arg string)

	// Log with fmt.Printf-like formatting and terminate process (unrecoverable)
	Fatalf(format string, args ...interface{})

	// Set key/value context for further logging with the returned logger
	WithField(key string, value interface{}) *alog.Entry

	// Set key/value context for further logging with the returned logger
	WithFields(keyValues alog.Fielder) *alog.Entry

	// Return a logger with the specified error set, to be included in a subsequent normal logging call
	WithError(err error) *alog.Entry
}

func Log() Logger {
	return logg
}

func Error(msg string, err error) {
	logg.WithError(err).Error(msg)
}

func Warn(arg string) {
	logg.Warn(arg)
}

func Warnf(msg string, args ...interface{}) {
	logg.Warnf(msg, args...)
}

func Info(arg string) {
	logg.Info(arg)
}

func Infof(msg string, args ...interface{}) {
	logg.Infof(msg, args...)
}

func Debug(arg string) {
	logg.Debug(arg)
}

func Debugf(msg string, args ...interface{}) {
	logg.Debugf(msg, args...)
}

func IsDebug() bool {
	return alog.Log.(*alog.Logger).Level == alog.DebugLevel
}
