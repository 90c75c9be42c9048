// Package logger configures logrus and carries a request-scoped logger
// through context.Context.
package logger

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKeyLog struct{}

// New returns a logger writing JSON in production and text otherwise.
// Unknown levels fall back to info.
func New(level string, production bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if production {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// WithLogger stores l in ctx
func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLog{}, l)
}

// FromContext returns the request logger, or the standard logger when none is set
func FromContext(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}
