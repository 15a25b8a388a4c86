package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	lWriter "github.com/sirupsen/logrus/hooks/writer"
	"golang.org/x/term"
)

// Nothing is logged until InitLogger runs.
func init() {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	Log = newWrapper(discard)
}

// shownLevels returns the levels written out: errors and warnings always,
// info when verbose, everything when debugging.
func shownLevels(verbose bool, debug bool) []logrus.Level {
	switch {
	case debug:
		return logrus.AllLevels
	case verbose:
		return logrus.AllLevels[:logrus.InfoLevel+1]
	default:
		return logrus.AllLevels[:logrus.WarnLevel+1]
	}
}

// InitLogger sends log entries to stderr, and to filepath when set.
func InitLogger(filepath string, verbose bool, debug bool) error {
	out := []io.Writer{os.Stderr}
	if filepath != "" {
		f, err := os.OpenFile(filepath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return err
		}

		out = append(out, f)
	}

	l := logrus.New()
	l.SetLevel(logrus.TraceLevel)
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: term.IsTerminal(int(os.Stderr.Fd()))})

	// The hook filters levels, the logger keeps them all.
	l.AddHook(&lWriter.Hook{Writer: io.MultiWriter(out...), LogLevels: shownLevels(verbose, debug)})

	Log = newWrapper(l)

	return nil
}
