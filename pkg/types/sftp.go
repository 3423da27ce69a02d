package types

import "github.com/google/uuid"

// AuthenticationType distinguishes SFTP password auth from public-key auth.
type AuthenticationType string

const (
	AuthPassword  AuthenticationType = "password"
	AuthPublicKey AuthenticationType = "public_key"
)

// Permissions is the set of filesystem permission strings the remote grants
// an SFTP user for a given server.
type Permissions []string

// SFTPAuthResponse is returned by Client.FetchSFTPAuth on success.
type SFTPAuthResponse struct {
	Server      uuid.UUID
	User        uuid.UUID
	Permissions Permissions
}
