package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// Testing installs a global logger that records every entry, down to TRACE.
//
// It returns the recording hook along with a function that restores the previous logger.
func Testing(t *testing.T) (*test.Hook, func()) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.Level = logrus.TraceLevel

	origLog := Log
	Log = newWrapper(logger)

	return hook, func() {
		Log = origLog
	}
}
