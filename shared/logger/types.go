package logger

import (
	"github.com/sirupsen/logrus"
)

// Ctx is the logging context.
type Ctx logrus.Fields

// Log contains the logger used by all the logging functions.
var Log Logger

// Logger logs messages with optional context. Nothing in the backend panics or exits through it.
type Logger interface {
	Error(msg string, ctx ...Ctx)
	Warn(msg string, ctx ...Ctx)
	Info(msg string, ctx ...Ctx)
	Debug(msg string, ctx ...Ctx)
	Trace(msg string, ctx ...Ctx)
	AddContext(ctx Ctx) Logger
}
