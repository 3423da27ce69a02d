package client

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/pkg/types"
)

// PostBackupStatus reports the result of a backup creation.
func (c *Client) PostBackupStatus(ctx context.Context, id uuid.UUID, status types.RawServerBackup) error {
	log.Printf("client: setting backup status for %s", id)
	_, err := c.doRequest(ctx, "POST", "/backups/"+id.String(), status, nil)
	return err
}

// PostBackupRestoreStatus reports the result of a backup restore.
func (c *Client) PostBackupRestoreStatus(ctx context.Context, id uuid.UUID, successful bool) error {
	log.Printf("client: setting backup restore status for %s", id)
	body := map[string]bool{"successful": successful}
	_, err := c.doRequest(ctx, "POST", "/backups/"+id.String()+"/restore", body, nil)
	return err
}

// BackupUploadURLs requests presigned upload URLs for a multi-part backup
// upload of the given size.
func (c *Client) BackupUploadURLs(ctx context.Context, id uuid.UUID, size uint64) (*types.BackupUploadURLs, error) {
	log.Printf("client: getting backup upload urls for %s", id)

	body := map[string]uint64{"size": size}
	var resp types.BackupUploadURLs
	if _, err := c.doRequest(ctx, "POST", "/backups/"+id.String()+"/upload-urls", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
