package compute

import (
	"context"

	"github.com/adeilh/go-cirrus/apierr"
	"github.com/adeilh/go-cirrus/cache"
	"github.com/adeilh/go-cirrus/httpx"
)

// ListPackages returns the packages visible to tenant: shared packages plus
// the tenant's private ones, as one list.
func (c *Client) ListPackages(ctx context.Context, tenant string) ([]Package, error) {
	if tenant == "" {
		return nil, ErrTenantRequired
	}

	if res, ok := c.packages.Get(tenant, cache.ListResource); ok {
		c.log.Debugf("package list cache hit tenant=%s", tenant)
		if err := res.Err(); err != nil {
			return nil, err
		}
		list, _ := res.List()
		return list, nil
	}

	var out []Package
	_, err := c.http.Get(ctx, httpx.Path(tenant, "packages"), &out)
	if err != nil {
		terr, backend := apierr.TranslateErr(err)
		if backend {
			c.log.Warnf("package list failed tenant=%s: %v", tenant, terr)
			c.packages.Put(tenant, cache.ListResource, cache.ErrorResult[Package](terr))
		}
		return nil, terr
	}

	c.packages.Put(tenant, cache.ListResource, cache.ListResult(out))
	return out, nil
}

// GetPackage returns one package by name.
func (c *Client) GetPackage(ctx context.Context, tenant, name string) (*Package, error) {
	if tenant == "" {
		return nil, ErrTenantRequired
	}
	if name == "" {
		return nil, ErrNameRequired
	}

	if res, ok := c.packages.Get(tenant, name); ok {
		if err := res.Err(); err != nil {
			return nil, err
		}
		if pkg, found := res.Single(); found {
			c.log.Debugf("package cache hit tenant=%s name=%s", tenant, name)
			return &pkg, nil
		}
	}

	var out Package
	_, err := c.http.Get(ctx, httpx.Path(tenant, "packages", name), &out)
	if err != nil {
		terr, backend := apierr.TranslateErr(err)
		if backend {
			c.log.Warnf("package fetch failed tenant=%s name=%s: %v", tenant, name, terr)
			c.packages.Put(tenant, name, cache.ErrorResult[Package](terr))
		}
		return nil, terr
	}

	c.packages.Put(tenant, name, cache.SingleResult(out))
	return &out, nil
}
