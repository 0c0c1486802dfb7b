// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger for the given level and mode.
// In stdio mode stdout carries the MCP protocol, so logs always go to stderr
// and are silenced below warn unless debug is requested.
func Setup(level string, stdio bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	var out io.Writer = os.Stdout
	if stdio {
		out = os.Stderr
		if lvl < logrus.DebugLevel && lvl > logrus.WarnLevel {
			lvl = logrus.WarnLevel
		}
	}
	logrus.SetOutput(out)
	logrus.SetLevel(lvl)
}
