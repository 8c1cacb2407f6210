// Package compute is the client for the provisioning service: packages,
// datasets, and machines. Package and dataset catalogs change slowly and are
// served through a partitioned read-through cache; machines are always
// fetched live.
package compute

import (
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/adeilh/go-cirrus/cache"
	"github.com/adeilh/go-cirrus/httpx"
)

var (
	ErrBaseURLRequired = errors.New("compute: base URL or transport is required")
	ErrTenantRequired  = errors.New("compute: tenant is required")
	ErrNameRequired    = errors.New("compute: resource name is required")
	ErrMachineRequired = errors.New("compute: machine id is required")
	ErrPackageRequired = errors.New("compute: package is required")
	ErrDatasetRequired = errors.New("compute: dataset is required")
	ErrStateRequired   = errors.New("compute: target state is required")
)

// Client wraps the provisioning service. The client exclusively owns its
// caches for its lifetime; discarding the client discards them.
type Client struct {
	http         *httpx.Client
	packages     *cache.Partitioned[Package]
	datasets     *cache.Partitioned[Dataset]
	log          *log.Logger
	pollInterval time.Duration
	pollBudget   int
}

// NewClient builds a compute client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	transport := cfg.Transport
	if transport == nil {
		if cfg.BaseURL == "" {
			return nil, ErrBaseURLRequired
		}
		transport = httpx.NewClient(
			httpx.WithBaseURL(cfg.BaseURL),
			httpx.WithSigner(cfg.Signer),
			httpx.WithClientTimeout(cfg.Timeout),
		)
	}

	packages, err := cache.NewPartitioned[Package](cfg.cacheOptions()...)
	if err != nil {
		return nil, err
	}
	datasets, err := cache.NewPartitioned[Dataset](cfg.cacheOptions()...)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New("compute")
		logger.SetLevel(log.OFF)
	}

	return &Client{
		http:         transport,
		packages:     packages,
		datasets:     datasets,
		log:          logger,
		pollInterval: cfg.PollInterval,
		pollBudget:   cfg.PollBudget,
	}, nil
}
