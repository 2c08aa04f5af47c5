package sink

import (
	"time"

	"github.com/apex/log"
)

type options interface {
	SetBufferedChan(cap int)
	SetTimeout(t time.Duration)
	SetLogger(logger log.Interface)
}

type Option func(options)

func WithBufferedChan(cap int) Option {
	return func(o options) {
		o.SetBufferedChan(cap)
	}
}

// WithTimeout drops an item, with a warning, when the output channel stays
// busy for longer than timeout. A negative timeout blocks instead.
func WithTimeout(timeout time.Duration) Option {
	return func(o options) {
		o.SetTimeout(timeout)
	}
}

func WithLogger(logger log.Interface) Option {
	return func(o options) {
		o.SetLogger(logger)
	}
}
