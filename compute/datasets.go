package compute

import (
	"context"

	"github.com/adeilh/go-cirrus/apierr"
	"github.com/adeilh/go-cirrus/cache"
	"github.com/adeilh/go-cirrus/httpx"
)

// ListDatasets returns the datasets visible to tenant: public images plus
// the tenant's custom ones, as one list.
func (c *Client) ListDatasets(ctx context.Context, tenant string) ([]Dataset, error) {
	if tenant == "" {
		return nil, ErrTenantRequired
	}

	if res, ok := c.datasets.Get(tenant, cache.ListResource); ok {
		c.log.Debugf("dataset list cache hit tenant=%s", tenant)
		if err := res.Err(); err != nil {
			return nil, err
		}
		list, _ := res.List()
		return list, nil
	}

	var out []Dataset
	_, err := c.http.Get(ctx, httpx.Path(tenant, "datasets"), &out)
	if err != nil {
		terr, backend := apierr.TranslateErr(err)
		if backend {
			c.log.Warnf("dataset list failed tenant=%s: %v", tenant, terr)
			c.datasets.Put(tenant, cache.ListResource, cache.ErrorResult[Dataset](terr))
		}
		return nil, terr
	}

	c.datasets.Put(tenant, cache.ListResource, cache.ListResult(out))
	return out, nil
}

// GetDataset returns one dataset by name.
func (c *Client) GetDataset(ctx context.Context, tenant, name string) (*Dataset, error) {
	if tenant == "" {
		return nil, ErrTenantRequired
	}
	if name == "" {
		return nil, ErrNameRequired
	}

	if res, ok := c.datasets.Get(tenant, name); ok {
		if err := res.Err(); err != nil {
			return nil, err
		}
		if ds, found := res.Single(); found {
			c.log.Debugf("dataset cache hit tenant=%s name=%s", tenant, name)
			return &ds, nil
		}
	}

	var out Dataset
	_, err := c.http.Get(ctx, httpx.Path(tenant, "datasets", name), &out)
	if err != nil {
		terr, backend := apierr.TranslateErr(err)
		if backend {
			c.log.Warnf("dataset fetch failed tenant=%s name=%s: %v", tenant, name, terr)
			c.datasets.Put(tenant, name, cache.ErrorResult[Dataset](terr))
		}
		return nil, terr
	}

	c.datasets.Put(tenant, name, cache.SingleResult(out))
	return &out, nil
}

// DeleteDataset removes a tenant-owned custom dataset. On success the
// tenant-partition cache entry for the dataset is purged; shared entries and
// the cached list are left alone.
func (c *Client) DeleteDataset(ctx context.Context, tenant, name string) error {
	if tenant == "" {
		return ErrTenantRequired
	}
	if name == "" {
		return ErrNameRequired
	}

	_, err := c.http.Delete(ctx, httpx.Path(tenant, "datasets", name), nil)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return terr
	}

	c.datasets.Purge(tenant, name)
	c.log.Debugf("dataset purged from cache tenant=%s name=%s", tenant, name)
	return nil
}
