package util

import (
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerOnce   sync.Once
)

// InitLogger wires the process-wide logger once; later calls are no-ops, so
// the CLI setup and the server setup cannot fight over it.
func InitLogger(logLevel, logFile string, debugToConsole bool) {
	loggerOnce.Do(func() {
		globalLogger = NewLogger(logLevel, logFile, debugToConsole)
	})
}

// The Log helpers below are what fetch internals and handlers call; they are
// safe before InitLogger and in tests, where an uninitialized logger simply
// drops the message.

func LogDebug(msg string) {
	if l := globalLogger; l != nil {
		l.Debug(msg)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := globalLogger; l != nil {
		l.Debugf(format, args...)
	}
}

func LogInfo(msg string) {
	if l := globalLogger; l != nil {
		l.Info(msg)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := globalLogger; l != nil {
		l.Infof(format, args...)
	}
}

func LogWarn(msg string) {
	if l := globalLogger; l != nil {
		l.Warn(msg)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := globalLogger; l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string) {
	if l := globalLogger; l != nil {
		l.Error(msg)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := globalLogger; l != nil {
		l.Errorf(format, args...)
	}
}
