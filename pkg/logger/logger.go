package logger

import (
	"fmt"
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

	if os.Getenv("DEBUG") == "1" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	// LOG_LEVEL wins over DEBUG
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	return log
}

// Scope returns an entry tagged with the component name.
func Scope(name string) *logrus.Entry {
	return Log.WithField("scope", name)
}

// ToFile sends all log output to path, used while the tui owns the terminal.
// The returned func restores stderr and closes the file.
func ToFile(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Log.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	Log.SetOutput(f)
	return func() {
		Log.SetOutput(os.Stderr)
		Log.SetFormatter(&logrus.TextFormatter{
			ForceColors:      true,
			DisableTimestamp: true,
		})
		_ = f.Close()
	}, nil
}
