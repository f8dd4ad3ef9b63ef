package types

// Logger is the leveled logging contract used throughout the module,
// satisfied by definition.DefaultLogger (logrus-backed) or any logger a
// host program wants to inject.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}
