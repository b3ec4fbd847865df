// Package logutils configures the process-wide logrus logger.
package logutils

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

// SetLoggerLevel sets the standard logger level, defaulting to info on bad input.
func SetLoggerLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// Setup switches the standard logger to one-line JSON output with the
// timestamp rendered in loc.
func Setup(level string, loc *time.Location) {
	SetLoggerLevel(level)
	log.SetFormatter(NewJSONFormatter(loc))
}

// New returns a standalone JSON logger writing to w.
func New(w io.Writer, loc *time.Location) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(NewJSONFormatter(loc))
	return l
}

// NewJSONFormatter returns the formatter used across the service: keys ts, level, msg.
func NewJSONFormatter(loc *time.Location) logrus.Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &locationFormatter{
		loc: loc,
		inner: &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
				logrus.FieldKeyMsg:  "msg",
			},
		},
	}
}

type locationFormatter struct {
	loc   *time.Location
	inner logrus.Formatter
}

func (f *locationFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.inner.Format(e)
}
