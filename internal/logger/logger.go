package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = newLogger()

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableTimestamp: true,
	})
	log.SetLevel(level())
	return log
}

// DEBUG=1 wins over LOG_LEVEL
func level() logrus.Level {
	if os.Getenv("DEBUG") == "1" {
		return logrus.DebugLevel
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		return lvl
	}
	return logrus.InfoLevel
}

// Scope returns an entry tagged with the component name.
func Scope(name string) *logrus.Entry {
	return Log.WithField("scope", name)
}
