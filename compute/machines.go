package compute

import (
	"context"

	"github.com/adeilh/go-cirrus/apierr"
	"github.com/adeilh/go-cirrus/httpx"
)

// CreateMachine provisions a machine and returns the created record plus the
// transition identifier for follow-up polling. The machine usually comes
// back in state provisioning; use WaitForMachineState to block until it
// settles.
func (c *Client) CreateMachine(ctx context.Context, tenant string, in CreateMachineInput) (*Machine, string, error) {
	if tenant == "" {
		return nil, "", ErrTenantRequired
	}
	if in.Package == "" {
		return nil, "", ErrPackageRequired
	}
	if in.Dataset == "" {
		return nil, "", ErrDatasetRequired
	}

	var out Machine
	resp, err := c.http.Post(ctx, httpx.Path(tenant, "machines"), in, &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, "", terr
	}
	return &out, httpx.TransitionID(resp), nil
}

// GetMachine fetches a machine's current record. Never cached.
func (c *Client) GetMachine(ctx context.Context, tenant, id string) (*Machine, error) {
	if tenant == "" {
		return nil, ErrTenantRequired
	}
	if id == "" {
		return nil, ErrMachineRequired
	}

	var out Machine
	_, err := c.http.Get(ctx, httpx.Path(tenant, "machines", id), &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, terr
	}
	return &out, nil
}

// ListMachines lists the tenant's machines.
func (c *Client) ListMachines(ctx context.Context, tenant string) ([]Machine, error) {
	if tenant == "" {
		return nil, ErrTenantRequired
	}

	var out []Machine
	_, err := c.http.Get(ctx, httpx.Path(tenant, "machines"), &out)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return nil, terr
	}
	return out, nil
}

// DeleteMachine destroys a machine and returns the transition identifier.
func (c *Client) DeleteMachine(ctx context.Context, tenant, id string) (string, error) {
	if tenant == "" {
		return "", ErrTenantRequired
	}
	if id == "" {
		return "", ErrMachineRequired
	}

	resp, err := c.http.Delete(ctx, httpx.Path(tenant, "machines", id), nil)
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return "", terr
	}
	return httpx.TransitionID(resp), nil
}

// StartMachine boots a stopped machine.
func (c *Client) StartMachine(ctx context.Context, tenant, id string) (string, error) {
	return c.machineAction(ctx, tenant, id, "start", nil)
}

// StopMachine shuts a machine down.
func (c *Client) StopMachine(ctx context.Context, tenant, id string) (string, error) {
	return c.machineAction(ctx, tenant, id, "stop", nil)
}

// RebootMachine restarts a running machine.
func (c *Client) RebootMachine(ctx context.Context, tenant, id string) (string, error) {
	return c.machineAction(ctx, tenant, id, "reboot", nil)
}

// ResizeMachine moves a machine onto a different package.
func (c *Client) ResizeMachine(ctx context.Context, tenant, id, pkg string) (string, error) {
	if pkg == "" {
		return "", ErrPackageRequired
	}
	return c.machineAction(ctx, tenant, id, "resize", map[string]string{"package": pkg})
}

func (c *Client) machineAction(ctx context.Context, tenant, id, action string, params map[string]string) (string, error) {
	if tenant == "" {
		return "", ErrTenantRequired
	}
	if id == "" {
		return "", ErrMachineRequired
	}

	query := map[string]string{"action": action}
	for k, v := range params {
		query[k] = v
	}

	resp, err := c.http.Post(ctx, httpx.Path(tenant, "machines", id), nil, nil, httpx.WithQuery(query))
	if err != nil {
		terr, _ := apierr.TranslateErr(err)
		return "", terr
	}
	return httpx.TransitionID(resp), nil
}
