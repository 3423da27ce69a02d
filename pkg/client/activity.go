package client

import (
	"context"
	"log"

	"github.com/cenkalti/backoff/v4"

	"github.com/gameforge/nodecore/pkg/types"
)

// PostActivity delivers a batch of activity events to the remote.
// Delivery is documented as at-least-once (SPEC_FULL.md §7): the client
// retries the HTTP call itself with bounded exponential backoff before
// giving up and returning the error for the caller's own local buffering.
func (c *Client) PostActivity(ctx context.Context, batch []types.ApiActivity) error {
	if len(batch) == 0 {
		return nil
	}

	log.Printf("client: sending %d activity events to remote", len(batch))

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)

	return backoff.Retry(func() error {
		_, err := c.doRequest(ctx, "POST", "/activity", batch, nil)
		return err
	}, policy)
}
