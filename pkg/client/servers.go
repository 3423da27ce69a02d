package client

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/pkg/types"
)

// FetchAllServers requests pages until the remote reports
// current_page >= last_page, concatenating results in remote order
// (SPEC_FULL.md §8, pagination-completeness property).
func (c *Client) FetchAllServers(ctx context.Context) ([]types.RawServer, error) {
	log.Printf("client: fetching all servers from remote")

	var servers []types.RawServer
	page := 1
	for {
		log.Printf("client: fetching page %d of servers", page)

		var resp types.ServerPage
		if _, err := c.doRequest(ctx, "GET", fmt.Sprintf("/servers?page=%d", page), nil, &resp); err != nil {
			return nil, err
		}

		servers = append(servers, resp.Data...)

		if resp.Meta.CurrentPage >= resp.Meta.LastPage {
			break
		}
		page++
	}

	log.Printf("client: fetched %d servers from remote", len(servers))
	return servers, nil
}

// FetchServer retrieves a single server record by UUID.
func (c *Client) FetchServer(ctx context.Context, id uuid.UUID) (*types.RawServer, error) {
	var server types.RawServer
	if _, err := c.doRequest(ctx, "GET", "/servers/"+id.String(), nil, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

// FetchInstallScript retrieves the install payload for a server.
func (c *Client) FetchInstallScript(ctx context.Context, id uuid.UUID) (*types.InstallationScript, error) {
	var script types.InstallationScript
	if _, err := c.doRequest(ctx, "GET", "/servers/"+id.String()+"/install", nil, &script); err != nil {
		return nil, err
	}
	return &script, nil
}

// PostInstallStatus reports the outcome of an install/reinstall run.
func (c *Client) PostInstallStatus(ctx context.Context, id uuid.UUID, successful, reinstalled bool) error {
	body := map[string]bool{"successful": successful, "reinstalled": reinstalled}
	_, err := c.doRequest(ctx, "POST", "/servers/"+id.String()+"/install", body, nil)
	return err
}

// PostTransferStatus reports the outcome of an incoming server transfer.
func (c *Client) PostTransferStatus(ctx context.Context, id uuid.UUID, successful bool) error {
	outcome := "failure"
	if successful {
		outcome = "success"
	}
	_, err := c.doRequest(ctx, "POST", "/servers/"+id.String()+"/transfer/"+outcome, nil, nil)
	return err
}
