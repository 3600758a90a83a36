package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a printf-style logger with one entry per level.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry

	info  func(format string, args ...interface{})
	warn  func(format string, args ...interface{})
	error func(format string, args ...interface{})
	debug func(format string, args ...interface{})
}

func New() *Logger {
	return NewWithOptions(os.Stdout, "info", false)
}

// NewWithOptions builds a logger writing to out at the given level. Unknown
// levels fall back to info.
func NewWithOptions(out io.Writer, level string, jsonFormat bool) *Logger {
	base := logrus.New()
	base.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	if jsonFormat {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return fromEntry(base, logrus.NewEntry(base))
}

func fromEntry(base *logrus.Logger, entry *logrus.Entry) *Logger {
	return &Logger{
		base:  base,
		entry: entry,
		info:  entry.Infof,
		warn:  entry.Warnf,
		error: entry.Errorf,
		debug: entry.Debugf,
	}
}

// With returns a child logger that attaches key=value to every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	return fromEntry(l.base, l.entry.WithField(key, value))
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.info(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.warn(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.error(format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.debug(format, v...)
}
