package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger はアプリ共通のloggerを作る。
// prodはJSON、それ以外は人が読むテキスト形式。
func NewLogger(cfg Config) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if cfg.GoEnv == "prod" {
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}

	return l
}
