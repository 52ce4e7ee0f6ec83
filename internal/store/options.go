package store

import "time"

// Clock returns the current time. Stores stamp CreatedAt and UpdatedAt with it.
type Clock func() time.Time

type options struct {
	now Clock
}

// Option configures a store.
type Option func(*options)

// WithClock overrides the time source used for link timestamps.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.now = clock
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
