// Package logger provides leveled logging for psychmag on top of go-logging.
package logger

import (
	"os"
	"strings"

	"github.com/op/go-logging"
)

const (
	module     = "psychmag"
	timeFormat = "2006/01/02 15:04:05"
)

var logger = logging.MustGetLogger(module)

// InitLogger configures the stderr backend with the given level name
// (DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL). Unknown names fall back to INFO.
func InitLogger(levelName string) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(
		backend,
		logging.MustStringFormatter(`%{time:`+timeFormat+`} %{level:.4s} %{message}`),
	)

	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(ParseLevel(levelName), module)
	logger.SetBackend(leveled)
}

// ParseLevel maps a level name to a go-logging level.
func ParseLevel(name string) logging.Level {
	level, err := logging.LogLevel(strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return logging.INFO
	}
	return level
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}

// Fatalf logs at CRITICAL and exits the process.
func Fatalf(format string, args ...any) {
	logger.Fatalf(format, args...)
}
