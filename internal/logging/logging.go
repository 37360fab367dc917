// Package logging holds the process-wide zap logger used by spgo.
// It is a no-op logger until the application installs one.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the current logger. Never nil.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the logger. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l.Named("spgo"))
}
