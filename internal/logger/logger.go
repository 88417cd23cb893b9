// Package logger builds the application logger. Verbose mode drops the
// level to Debug so users can follow the query pipeline on stderr.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr. The default level is Warn:
// a CLI should stay quiet unless something needs attention.
func New(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// UseJSON switches the logger to JSON output, one object per line.
// Meant for runs whose stderr is collected by a log shipper; the
// "log.format" config key selects it.
func UseJSON(log *logrus.Logger) {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// Discard returns a logger that swallows everything. Useful where a
// component requires a logger but output is unwanted.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
