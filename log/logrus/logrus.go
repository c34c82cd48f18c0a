package logrus

import (
	"github.com/rich/nebulex"
	"github.com/sirupsen/logrus"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ nebulex.Logger = LogrusLogger{}

func (l LogrusLogger) Debug(msg string, f nebulex.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f nebulex.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f nebulex.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f nebulex.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
