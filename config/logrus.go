package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(levelFromEnv(os.Getenv("LOG_LEVEL")))
	logg.SetOutput(os.Stdout)
}

func levelFromEnv(v string) logrus.Level {
	if strings.TrimSpace(v) == "" {
		return logrus.ErrorLevel
	}
	level, err := logrus.ParseLevel(v)
	if err != nil {
		return logrus.ErrorLevel
	}
	return level
}

// NewFileLogger returns a JSON logger appending to path.
// Used as the last-resort sink when the store itself cannot take an error row.
func NewFileLogger(path string) (*logrus.Logger, func() error, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.ErrorLevel)
	l.SetOutput(file)
	return l, file.Close, nil
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	if data != nil {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
			"data":     data,
		}).Error(err.Error())
	} else {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
		}).Error(err.Error())
	}
}

func LogWarning(logger *logrus.Logger, moduleName string, funcName string, message string, fields logrus.Fields) {
	entry := logger.WithFields(logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Warn(message)
}
