package types

import (
	"time"

	"github.com/google/uuid"
)

// ApiActivity is a single audit event queued for at-least-once delivery to
// the remote via Client.PostActivity.
type ApiActivity struct {
	Server   uuid.UUID              `json:"server,omitempty"`
	Event    string                 `json:"event"`
	Actor    string                 `json:"actor,omitempty"`
	Metadata map[string]any         `json:"metadata,omitempty"`
	Time     time.Time              `json:"timestamp"`
}
