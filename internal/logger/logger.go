package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the process logger from LOG_LEVEL and LOG_FORMAT
func New(debug bool) *logrus.Logger {
	return NewWithOutput(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), debug)
}

// NewWithOutput builds a logger writing to w. debug overrides level.
func NewWithOutput(w io.Writer, level, format string, debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		l.SetLevel(logrus.TraceLevel)
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	if debug && l.GetLevel() < logrus.DebugLevel {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
