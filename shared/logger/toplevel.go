package logger

// The functions below log through Log, the logger installed by InitLogger.

// Trace logs msg at the TRACE level.
func Trace(msg string, ctx ...Ctx) { Log.Trace(msg, ctx...) }

// Debug logs msg at the DEBUG level.
func Debug(msg string, ctx ...Ctx) { Log.Debug(msg, ctx...) }

// Info logs msg at the INFO level.
func Info(msg string, ctx ...Ctx) { Log.Info(msg, ctx...) }

// Warn logs msg at the WARNING level.
func Warn(msg string, ctx ...Ctx) { Log.Warn(msg, ctx...) }

// Error logs msg at the ERROR level.
func Error(msg string, ctx ...Ctx) { Log.Error(msg, ctx...) }

// AddContext returns a logger adding ctx to everything it logs.
func AddContext(ctx Ctx) Logger {
	return Log.AddContext(ctx)
}
