package bootstrap

import (
	"time"

	"github.com/kbukum/factorygirl/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger      *logger.Logger
	version     string
	stopTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithVersion overrides the version reported in logs and the summary.
func WithVersion(v string) Option {
	return func(o *appOptions) {
		o.version = v
	}
}

// WithStopTimeout bounds how long components get to stop.
func WithStopTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.stopTimeout = &d
	}
}
