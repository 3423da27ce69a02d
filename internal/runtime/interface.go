// Package runtime defines the narrow container-runtime boundary this
// module consumes (SPEC_FULL.md §1, GLOSSARY "Runtime"): create, attach, start,
// stop, exec, destroy, stats-stream. Container-runtime internals are
// explicitly out of this module's scope; CLIRuntime is one concrete
// CLI-driven adapter, grounded on the teacher's podman client.
package runtime

import (
	"context"
	"io"
)

// ContainerConfig describes the container to create for a server.
type ContainerConfig struct {
	Name        string
	Image       string
	Labels      map[string]string
	Env         map[string]string
	MemoryMB    int64
	CPUs        int
	NetworkMode string
	Mounts      []Mount
}

// Mount is a single bind mount into the container.
type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// ContainerInfo is a snapshot of a container's observed state.
type ContainerInfo struct {
	ID      string
	Name    string
	Running bool
	ExitCode int
}

// Stats is one point-in-time resource usage sample.
type Stats struct {
	CPUPercent  float64
	MemoryBytes uint64
	MemoryLimit uint64
}

// ExecConfig describes a one-shot command to run inside a container.
type ExecConfig struct {
	Command []string
	Env     map[string]string
	Stdin   io.Reader
}

// ExecResult is the outcome of a Runtime.Exec call.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runtime is the container-runtime boundary a Server drives its lifecycle
// through (SPEC_FULL.md §4.5, §9).
type Runtime interface {
	// Create provisions (but does not start) a container for cfg.
	Create(ctx context.Context, cfg ContainerConfig) (string, error)
	// Attach returns the current observed state of a named container, or
	// ok=false if no such container exists.
	Attach(ctx context.Context, name string) (ContainerInfo, bool, error)
	// Start starts an existing container.
	Start(ctx context.Context, name string) error
	// Stop signals a container to stop, escalating to a kill after timeout.
	Stop(ctx context.Context, name string, signal string, timeout int) error
	// Exec runs a one-shot command inside a running container.
	Exec(ctx context.Context, name string, cfg ExecConfig) (ExecResult, error)
	// Destroy force-stops and removes a container.
	Destroy(ctx context.Context, name string) error
	// StatsStream streams resource usage samples until ctx is cancelled.
	StatsStream(ctx context.Context, name string) (<-chan Stats, error)
}
