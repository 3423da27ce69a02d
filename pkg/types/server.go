// Package types holds the wire and domain types shared between the remote
// client, the manager, and the server lifecycle packages.
package types

import "github.com/google/uuid"

// Settings describes a server's immutable-per-boot identity and resource
// limits, as reported by the remote.
type Settings struct {
	UUID        uuid.UUID `json:"uuid"`
	Image       string    `json:"image"`
	Mounts      []Mount   `json:"mounts,omitempty"`
	Limits      Limits    `json:"limits"`
	Environment map[string]string `json:"environment,omitempty"`
}

// Mount is a single bind-mount requested for the server's container.
type Mount struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	ReadOnly    bool   `json:"read_only"`
}

// Limits holds resource caps enforced by the container runtime.
type Limits struct {
	MemoryMB int64 `json:"memory_mb"`
	CPUCount int   `json:"cpu_count"`
	DiskMB   int64 `json:"disk_mb"`
	IOWeight int   `json:"io_weight,omitempty"`
}

// ProcessConfiguration describes how to start, stop, and recognize the
// readiness of a server's process.
type ProcessConfiguration struct {
	Startup           string   `json:"startup"`
	StopSignal        string   `json:"stop_signal"`
	StopCommand       string   `json:"stop_command,omitempty"`
	StartupTimeoutSec int      `json:"startup_timeout_seconds"`
	StopTimeoutSec    int      `json:"stop_timeout_seconds"`
	RunningPatterns   []string `json:"running_patterns,omitempty"`
}

// RawServer is the authoritative server record as reported by the remote.
type RawServer struct {
	Settings             Settings             `json:"settings"`
	ProcessConfiguration ProcessConfiguration `json:"process_configuration"`
	StartOnCompletion    *bool                `json:"start_on_completion,omitempty"`
	Suspended            bool                 `json:"suspended"`
}

// InstallationScript is the install payload for a server, fetched from the
// remote once per install/reinstall.
type InstallationScript struct {
	ContainerImage string `json:"container_image"`
	Entrypoint     string `json:"entrypoint"`
	Script         string `json:"script"`
	Privileged     bool   `json:"privileged"`
}
