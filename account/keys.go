package account

import (
	"context"

	"github.com/adeilh/go-cirrus/apierr"
	"github.com/adeilh/go-cirrus/cache"
	"github.com/adeilh/go-cirrus/httpx"
)

// ListKeys returns the SSH keys registered on login's account.
func (c *Client) ListKeys(ctx context.Context, login string) ([]SSHKey, error) {
	if login == "" {
		return nil, ErrLoginRequired
	}

	key := cache.Key{Tenant: login, Name: cache.ListResource}
	if res, ok := c.keys.Get(key); ok {
		if list, found := res.List(); found {
			c.log.Debugf("key list cache hit login=%s", login)
			return list, nil
		}
	}

	var out []SSHKey
	_, err := c.http.Get(ctx, httpx.Path(login, "keys"), &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, terr
	}

	c.keys.Put(key, cache.ListResult(out))
	return out, nil
}

// GetKey returns one SSH key by name. Lookup failures are not cached; every
// error is re-fetched.
func (c *Client) GetKey(ctx context.Context, login, name string) (*SSHKey, error) {
	if login == "" {
		return nil, ErrLoginRequired
	}
	if name == "" {
		return nil, ErrKeyNameRequired
	}

	key := cache.Key{Tenant: login, Name: name}
	if res, ok := c.keys.Get(key); ok {
		if k, found := res.Single(); found {
			c.log.Debugf("key cache hit login=%s name=%s", login, name)
			return &k, nil
		}
	}

	var out SSHKey
	_, err := c.http.Get(ctx, httpx.Path(login, "keys", name), &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, terr
	}

	c.keys.Put(key, cache.SingleResult(out))
	return &out, nil
}

// CreateKey registers a new SSH key. The created record is cached under its
// own name, but a previously cached key list is deliberately left alone: it
// stays stale until its TTL lapses.
func (c *Client) CreateKey(ctx context.Context, login string, in SSHKey) (*SSHKey, error) {
	if login == "" {
		return nil, ErrLoginRequired
	}
	if in.Name == "" {
		return nil, ErrKeyNameRequired
	}
	if in.Key == "" {
		return nil, ErrKeyDataRequired
	}

	var out SSHKey
	_, err := c.http.Post(ctx, httpx.Path(login, "keys"), in, &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, terr
	}

	c.keys.Put(cache.Key{Tenant: login, Name: out.Name}, cache.SingleResult(out))
	return &out, nil
}

// DeleteKey removes an SSH key and purges its cache entry. Only the
// single-resource entry is invalidated.
func (c *Client) DeleteKey(ctx context.Context, login, name string) error {
	if login == "" {
		return ErrLoginRequired
	}
	if name == "" {
		return ErrKeyNameRequired
	}

	_, err := c.http.Delete(ctx, httpx.Path(login, "keys", name), nil)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return terr
	}

	c.keys.Purge(cache.Key{Tenant: login, Name: name})
	c.log.Debugf("key purged from cache login=%s name=%s", login, name)
	return nil
}
