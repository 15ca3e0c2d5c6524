// Package logging configures logrus for the terminal app. The curses UI owns the screen, so
// log output goes to a rotated file and, optionally, to an in-app log pane.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	LogFileName string
	LogLevel    string
	// LogToStderr mirrors the file output to stderr; only useful before the UI starts
	LogToStderr bool
	// UILines, when set, receives every formatted entry for the log pane
	UILines chan<- string
}

// Setup builds the application logger. The returned closer flushes the rotated file.
func Setup(params Params) (*logrus.Logger, io.Closer) {
	logger := logrus.New()
	logger.SetLevel(GetLevel(params.LogLevel))
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	if params.UILines != nil {
		logger.AddHook(NewUIHook(params.UILines))
	}

	if params.LogFileName == "" {
		// nowhere to write besides the pane
		logger.SetOutput(io.Discard)
		if params.LogToStderr {
			logger.SetOutput(os.Stderr)
		}
		return logger, nopCloser{}
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}
	if err := os.MkdirAll(filepath.Dir(params.LogFileName), 0o755); err != nil {
		logger.SetOutput(os.Stderr)
		logger.Errorf("Logging: cannot create log dir: %v", err)
		return logger, nopCloser{}
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    50, // megabytes
		LocalTime:  true,
		Compress:   true,
		MaxBackups: 5,
	}

	if params.LogToStderr {
		logger.SetOutput(io.MultiWriter(os.Stderr, lumberJackLogger))
	} else {
		logger.SetOutput(lumberJackLogger)
	}
	return logger, lumberJackLogger
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
