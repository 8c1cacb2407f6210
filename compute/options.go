package compute

import (
	"time"

	"github.com/labstack/gommon/log"

	"github.com/adeilh/go-cirrus/cache"
	"github.com/adeilh/go-cirrus/httpx"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultPollBudget   = 60
)

type Options struct {
	BaseURL       string
	Signer        httpx.RequestSigner
	Timeout       time.Duration
	Transport     *httpx.Client
	CacheCapacity int
	CacheTTL      time.Duration
	Clock         func() time.Time
	Logger        *log.Logger
	PollInterval  time.Duration
	PollBudget    int
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Timeout:      10 * time.Second,
		PollInterval: DefaultPollInterval,
		PollBudget:   DefaultPollBudget,
	}
}

func (o Options) cacheOptions() []cache.Option {
	var opts []cache.Option
	if o.CacheCapacity > 0 {
		opts = append(opts, cache.WithCapacity(o.CacheCapacity))
	}
	if o.CacheTTL > 0 {
		opts = append(opts, cache.WithTTL(o.CacheTTL))
	}
	if o.Clock != nil {
		opts = append(opts, cache.WithClock(o.Clock))
	}
	return opts
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		if url != "" {
			o.BaseURL = url
		}
	}
}

func WithSigner(s httpx.RequestSigner) Option {
	return func(o *Options) {
		if s != nil {
			o.Signer = s
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithTransport supplies a prebuilt HTTP collaborator; BaseURL, Signer, and
// Timeout are ignored when set.
func WithTransport(c *httpx.Client) Option {
	return func(o *Options) {
		if c != nil {
			o.Transport = c
		}
	}
}

func WithCacheCapacity(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.CacheCapacity = n
		}
	}
}

func WithCacheTTL(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.CacheTTL = d
		}
	}
}

// WithClock overrides the cache time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.PollInterval = d
		}
	}
}

func WithPollBudget(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.PollBudget = n
		}
	}
}
