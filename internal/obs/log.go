// Package obs wires the structured logger shared by the CLI and the HTTP
// server: text formatting for terminal use, JSON formatting when
// --format json is active so log shape matches output shape.
package obs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger writing to stderr. jsonFormat selects the
// JSONFormatter; otherwise a plain TextFormatter is used.
func New(jsonFormat bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log
}

// WarnSkippedFile logs a per-file I/O or parse failure: the file is
// skipped and the operation continues.
func WarnSkippedFile(log *logrus.Logger, path string, err error) {
	log.WithFields(logrus.Fields{"file": path, "error": err}).Warn("skipping file")
}
