package logger

import (
	"github.com/sirupsen/logrus"
)

// logWrapper sends every message through a logrus entry carrying the accumulated context.
type logWrapper struct {
	entry *logrus.Entry
}

func newWrapper(l *logrus.Logger) Logger {
	return &logWrapper{entry: logrus.NewEntry(l)}
}

func (lw *logWrapper) log(level logrus.Level, msg string, ctx []Ctx) {
	entry := lw.entry
	for _, c := range ctx {
		entry = entry.WithFields(logrus.Fields(c))
	}

	entry.Log(level, msg)
}

func (lw *logWrapper) Error(msg string, ctx ...Ctx) { lw.log(logrus.ErrorLevel, msg, ctx) }
func (lw *logWrapper) Warn(msg string, ctx ...Ctx)  { lw.log(logrus.WarnLevel, msg, ctx) }
func (lw *logWrapper) Info(msg string, ctx ...Ctx)  { lw.log(logrus.InfoLevel, msg, ctx) }
func (lw *logWrapper) Debug(msg string, ctx ...Ctx) { lw.log(logrus.DebugLevel, msg, ctx) }
func (lw *logWrapper) Trace(msg string, ctx ...Ctx) { lw.log(logrus.TraceLevel, msg, ctx) }

func (lw *logWrapper) AddContext(ctx Ctx) Logger {
	return &logWrapper{entry: lw.entry.WithFields(logrus.Fields(ctx))}
}
