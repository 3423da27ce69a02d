package client

import (
	"context"
	"fmt"

	"github.com/gameforge/nodecore/pkg/types"
)

// ErrSFTPNotFound is returned by FetchSFTPAuth when the remote has no user
// matching the given credentials.
var ErrSFTPNotFound = fmt.Errorf("client: sftp user not found")

// FetchSFTPAuth validates SFTP credentials against the remote and returns
// the owning server/user UUIDs and granted permissions.
func (c *Client) FetchSFTPAuth(ctx context.Context, kind types.AuthenticationType, username, password string) (*types.SFTPAuthResponse, error) {
	body := map[string]string{
		"type":     string(kind),
		"username": username,
		"password": password,
	}

	var resp types.SFTPAuthResponse
	_, err := c.doRequest(ctx, "POST", "/sftp/auth", body, &resp)
	if nf, ok := err.(*NotFoundError); ok {
		_ = nf
		return nil, ErrSFTPNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
