package service

import "time"

type options struct {
	now          func() time.Time
	maxCardCount int
}

// Option customizes a service.
type Option func(*options)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMaxCardCount caps the number of cards a single set may request.
func WithMaxCardCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxCardCount = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now, maxCardCount: DefaultMaxCardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
