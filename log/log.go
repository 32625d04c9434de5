package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetLogging sets log using in this application
func SetLogging() {
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}
