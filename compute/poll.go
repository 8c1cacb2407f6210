package compute

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adeilh/go-cirrus/apierr"
)

// WaitForMachineState polls GetMachine at a fixed interval until the machine
// reaches any of the given states. The poll budget is bounded: exhausting it
// yields a RetriesExceededError, and a machine that lands in the failed
// state aborts the wait early unless failed is itself a target. No backoff
// is applied between polls.
func (c *Client) WaitForMachineState(ctx context.Context, tenant, id string, states ...string) (*Machine, error) {
	if len(states) == 0 {
		return nil, ErrStateRequired
	}

	for attempt := 0; attempt < c.pollBudget; attempt++ {
		m, err := c.GetMachine(ctx, tenant, id)
		if err != nil {
			return nil, err
		}
		for _, want := range states {
			if m.State == want {
				return m, nil
			}
		}
		if m.State == StateFailed {
			return nil, apierr.New(apierr.KindInternal, "MachineFailedError",
				fmt.Sprintf("machine %s entered failed state", id))
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, apierr.New(apierr.KindInternal, "RetriesExceededError",
		fmt.Sprintf("machine %s did not reach state %q after %d polls", id, strings.Join(states, "|"), c.pollBudget))
}
