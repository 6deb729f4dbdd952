// Package logging provides the logger used across the server. It uses
// logrus under the hood.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
}

type logger struct {
	*logrus.Logger
}

func New(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}
	return &logger{Logger: l}
}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return New(io.Discard, logrus.PanicLevel)
}

// ParseVerbosity maps a config verbosity string to a logrus level. Numeric
// verbosities 0..5 are accepted as silent..trace.
func ParseVerbosity(v string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "silent":
		return logrus.PanicLevel, nil
	case "1", "error":
		return logrus.ErrorLevel, nil
	case "2", "warn", "warning":
		return logrus.WarnLevel, nil
	case "", "3", "info":
		return logrus.InfoLevel, nil
	case "4", "debug":
		return logrus.DebugLevel, nil
	case "5", "trace":
		return logrus.TraceLevel, nil
	}
	return 0, fmt.Errorf("unknown verbosity %q", v)
}
