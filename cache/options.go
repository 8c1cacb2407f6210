package cache

import "time"

const (
	DefaultCapacity = 512
	DefaultTTL      = 5 * time.Minute
)

type Options struct {
	Capacity int
	TTL      time.Duration
	Now      func() time.Time
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{Capacity: DefaultCapacity, TTL: DefaultTTL, Now: time.Now}
}

func WithCapacity(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Capacity = n
		}
	}
}

func WithTTL(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.TTL = d
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}
