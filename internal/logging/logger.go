// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type SetupParams struct {
	LogLevel      string
	LogFormatJSON bool
	// Output defaults to stdout.
	Output io.Writer
}

func Setup(params SetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.Output == nil {
		params.Output = os.Stdout
	}
	logrus.SetOutput(params.Output)
}

// GetLevel maps a level name to a logrus level. Unknown names map to InfoLevel.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
