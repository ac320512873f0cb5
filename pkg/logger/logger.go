// Package logger configures the shared logrus logger used by the importer,
// the migration workers and the API server.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init sets the log level and, when filename is non-empty, mirrors output
// to a file in addition to stdout.
func Init(level string, filename string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	return nil
}

// L returns the shared logger.
func L() *logrus.Logger {
	return log
}
