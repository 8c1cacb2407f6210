// Package account is the client for the directory service: the account
// record and its SSH keys. Both change rarely and are served through a plain
// TTL cache; unlike the compute catalogs, backend errors are never cached
// and are re-fetched on every call.
package account

import (
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/adeilh/go-cirrus/cache"
	"github.com/adeilh/go-cirrus/httpx"
)

var (
	ErrBaseURLRequired = errors.New("account: base URL or transport is required")
	ErrLoginRequired   = errors.New("account: login is required")
	ErrKeyNameRequired = errors.New("account: key name is required")
	ErrKeyDataRequired = errors.New("account: key material is required")
)

// accountRecord is the cache name for the singleton account entry; backends
// reject '*' in key names, so it cannot collide with a real SSH key.
const accountRecord = "*account*"

// Client wraps the directory service. The client exclusively owns its
// caches for its lifetime.
type Client struct {
	http     *httpx.Client
	accounts *cache.TTL[Account]
	keys     *cache.TTL[SSHKey]
	log      *log.Logger
}

// NewClient builds an account client.
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

	accounts, err := cache.NewTTL[Account](cfg.cacheOptions()...)
	if err != nil {
		return nil, err
	}
	keys, err := cache.NewTTL[SSHKey](cfg.cacheOptions()...)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New("account")
		logger.SetLevel(log.OFF)
	}

	return &Client{http: transport, accounts: accounts, keys: keys, log: logger}, nil
}

// Account is the directory record for a login.
type Account struct {
	Login     string    `json:"login"`
	UUID      string    `json:"uuid"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountUpdate carries the mutable account fields.
type AccountUpdate struct {
	Email     string `json:"email,omitempty"`
	Company   string `json:"company,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// SSHKey is a named public key registered on an account.
type SSHKey struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Key         string `json:"key"`
}
