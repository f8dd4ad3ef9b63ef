// Package definition holds the default building blocks a host program
// gets for free if it does not supply its own: a logrus-backed logger
// and a prometheus-backed metrics sink.
package definition

import (
	"github.com/sirupsen/logrus"

	"github.com/rfsouza/uasn/pkg/uasn/types"
)

// DefaultLogger is the logger used if a host program does not provide
// its own. It satisfies types.Logger on top of logrus.
type DefaultLogger struct {
	entry *logrus.Logger
}

// NewDefaultLogger returns a DefaultLogger at info level, text output.
func NewDefaultLogger() *DefaultLogger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return &DefaultLogger{entry: l}
}

// ToggleDebug raises or lowers the logger to debug level.
func (l *DefaultLogger) ToggleDebug(enabled bool) {
	if enabled {
		l.entry.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.SetLevel(logrus.InfoLevel)
	}
}

func (l *DefaultLogger) Debugf(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *DefaultLogger) Infof(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *DefaultLogger) Warnf(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *DefaultLogger) Errorf(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

var _ types.Logger = (*DefaultLogger)(nil)
