package account

import (
	"context"

	"github.com/adeilh/go-cirrus/apierr"
	"github.com/adeilh/go-cirrus/cache"
	"github.com/adeilh/go-cirrus/httpx"
)

// GetAccount returns the account record for login.
func (c *Client) GetAccount(ctx context.Context, login string) (*Account, error) {
	if login == "" {
		return nil, ErrLoginRequired
	}

	key := cache.Key{Tenant: login, Name: accountRecord}
	if res, ok := c.accounts.Get(key); ok {
		if acct, found := res.Single(); found {
			c.log.Debugf("account cache hit login=%s", login)
			return &acct, nil
		}
	}

	var out Account
	_, err := c.http.Get(ctx, httpx.Path(login), &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, terr
	}

	c.accounts.Put(key, cache.SingleResult(out))
	return &out, nil
}

// UpdateAccount applies upd and refreshes the cached record with the
// backend's response.
func (c *Client) UpdateAccount(ctx context.Context, login string, upd AccountUpdate) (*Account, error) {
	if login == "" {
		return nil, ErrLoginRequired
	}

	var out Account
	_, err := c.http.Put(ctx, httpx.Path(login), upd, &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, terr
	}

	c.accounts.Put(cache.Key{Tenant: login, Name: accountRecord}, cache.SingleResult(out))
	return &out, nil
}
