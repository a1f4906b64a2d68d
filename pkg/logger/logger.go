package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Configure sets the level and formatter of the process logger.
// Production emits one JSON object per line; other environments get coloured text.
func Configure(level string, production bool) {
	if production {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Base returns the process logger
func Base() *logrus.Logger {
	return base
}

// WithField returns an entry carrying a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return base.WithField(key, value)
}

// WithFields returns an entry carrying the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return base.WithFields(fields)
}
