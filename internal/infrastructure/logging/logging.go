// Package logging builds the process logger and carries request-scoped fields
// through context.Context.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

type Options struct {
	Level  string // logrus level name
	Format string // "json" or "text"
	Output io.Writer
}

// New configures a logger; an unknown level falls back to info.
func New(opts Options) *logrus.Logger {
	l := logrus.New()
	Apply(l, opts)
	return l
}

// Apply configures an existing logger, typically logrus.StandardLogger().
func Apply(l *logrus.Logger, opts Options) {
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}
	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if opts.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
}

// WithEntry stores e in ctx.
func WithEntry(ctx context.Context, e *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// FromContext returns the request entry, or a bare entry on the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if e, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok && e != nil {
			return e
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
