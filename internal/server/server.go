// Package server implements the Server object and its lifecycle state
// machine (SPEC_FULL.md §4.5).
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/internal/filesystem"
	"github.com/gameforge/nodecore/internal/runtime"
	"github.com/gameforge/nodecore/pkg/types"
)

// Errors returned by Start (SPEC_FULL.md §4.5). All three are non-fatal:
// callers return them to the caller as-is rather than treating them as
// daemon faults.
var (
	// ErrAlreadyRunning is returned when Start is called on a server that
	// is already Running or Starting; the call is a no-op.
	ErrAlreadyRunning = errors.New("server: already running")
	// ErrContainerCreate is returned when the runtime fails to provision
	// a server's container for a reason other than a failed image pull.
	ErrContainerCreate = errors.New("server: container create failed")
	// ErrImagePullFailed is returned when container creation fails
	// because the configured image could not be pulled.
	ErrImagePullFailed = errors.New("server: image pull failed")
)

// Server owns one tenant's sandboxed filesystem, process configuration, and
// lifecycle state. All state transitions are serialized through its
// internal mutex; no external caller may mutate state directly, following
// the per-entity mutex coordinator in the teacher's internal/sandbox/router.go.
type Server struct {
	UUID uuid.UUID

	Settings  types.Settings
	Process   types.ProcessConfiguration
	Filesystem *filesystem.Sandbox

	suspended atomic.Bool

	mu    sync.Mutex
	state types.ServerState

	containerName string
}

// New constructs a Server from a remote record. The filesystem is attached
// separately by the manager.
func New(settings types.Settings, process types.ProcessConfiguration, root string) *Server {
	id := settings.UUID
	return &Server{
		UUID:          id,
		Settings:      settings,
		Process:       process,
		Filesystem:    filesystem.New(root),
		containerName: "nodecore-" + id.String(),
	}
}

// State returns a consistent snapshot of the current lifecycle state.
func (s *Server) State() types.ServerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Server) setState(next types.ServerState) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// Suspended reports whether the server is currently suspended.
func (s *Server) Suspended() bool { return s.suspended.Load() }

// Suspend prevents new starts and skips reconciliation until Unsuspend.
func (s *Server) Suspend() { s.suspended.Store(true) }

// Unsuspend clears the suspension flag.
func (s *Server) Unsuspend() { s.suspended.Store(false) }

// LogDaemon emits a daemon-audience console line, used by backup restore
// progress reporting (SPEC_FULL.md §4.4).
func (s *Server) LogDaemon(message string) {
	log.Printf("server %s: %s", s.UUID, message)
}

// AttachContainer reattaches to an existing container's observed state
// without starting anything. Idempotent: a missing container is not an
// error, matching Manager's unconditional per-server boot call.
func (s *Server) AttachContainer(ctx context.Context, rt runtime.Runtime) error {
	info, ok, err := rt.Attach(ctx, s.containerName)
	if err != nil {
		return fmt.Errorf("server %s: attach container: %w", s.UUID, err)
	}
	if !ok {
		return nil
	}

	if info.Running {
		s.setState(types.StateRunning)
	}
	return nil
}

// Start creates the container if missing and starts it, transitioning
// Offline -> Starting (SPEC_FULL.md §4.5). It returns once the start call
// completes, not once the process reports ready.
func (s *Server) Start(ctx context.Context, rt runtime.Runtime) error {
	s.mu.Lock()
	if s.suspended.Load() {
		s.mu.Unlock()
		return fmt.Errorf("server %s: suspended", s.UUID)
	}
	if s.state == types.StateRunning || s.state == types.StateStarting {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.state = types.StateStarting
	s.mu.Unlock()

	_, ok, err := rt.Attach(ctx, s.containerName)
	if err != nil {
		s.setState(types.StateOffline)
		return fmt.Errorf("server %s: start: %w", s.UUID, err)
	}
	if !ok {
		if _, err := rt.Create(ctx, s.containerConfig()); err != nil {
			s.setState(types.StateOffline)
			if isImagePullFailure(err) {
				return fmt.Errorf("server %s: %w: %v", s.UUID, ErrImagePullFailed, err)
			}
			return fmt.Errorf("server %s: %w: %v", s.UUID, ErrContainerCreate, err)
		}
	}

	if err := rt.Start(ctx, s.containerName); err != nil {
		s.setState(types.StateOffline)
		return fmt.Errorf("server %s: start container: %w", s.UUID, err)
	}

	return nil
}

// isImagePullFailure reports whether a container-create error surfaced a
// docker/podman image-pull failure rather than some other create error,
// by matching the CLI's own wording in the stderr it wraps into err.
func isImagePullFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{"pull access denied", "manifest unknown", "unable to find image", "no such image"} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func (s *Server) containerConfig() runtime.ContainerConfig {
	mounts := make([]runtime.Mount, 0, len(s.Settings.Mounts))
	for _, m := range s.Settings.Mounts {
		mounts = append(mounts, runtime.Mount{Source: m.Source, Target: m.Target, ReadOnly: m.ReadOnly})
	}

	return runtime.ContainerConfig{
		Name:        s.containerName,
		Image:       s.Settings.Image,
		Labels:      map[string]string{"nodecore.server": s.UUID.String()},
		Env:         s.Settings.Environment,
		MemoryMB:    s.Settings.Limits.MemoryMB,
		CPUs:        s.Settings.Limits.CPUCount,
		NetworkMode: "bridge",
		Mounts:      mounts,
	}
}

// Stop sends the configured stop signal and waits for the container to
// exit or be killed after the configured timeout.
func (s *Server) Stop(ctx context.Context, rt runtime.Runtime) error {
	s.setState(types.StateStopping)

	signal := s.Process.StopSignal
	if signal == "" {
		signal = "SIGTERM"
	}

	if err := rt.Stop(ctx, s.containerName, signal, s.Process.StopTimeoutSec); err != nil {
		return fmt.Errorf("server %s: stop: %w", s.UUID, err)
	}

	s.setState(types.StateOffline)
	return nil
}

// Kill unconditionally force-stops the container.
func (s *Server) Kill(ctx context.Context, rt runtime.Runtime) error {
	s.setState(types.StateStopping)
	if err := rt.Stop(ctx, s.containerName, "SIGKILL", 0); err != nil {
		return fmt.Errorf("server %s: kill: %w", s.UUID, err)
	}
	s.setState(types.StateOffline)
	return nil
}

// Restart stops then starts the server.
func (s *Server) Restart(ctx context.Context, rt runtime.Runtime) error {
	if err := s.Stop(ctx, rt); err != nil {
		return err
	}
	return s.Start(ctx, rt)
}

// Destroy marks the server suspended and removes the container. The
// sandbox holds no open handle, so the filesystem needs no release here.
// Terminal: no further lifecycle transitions are valid after this returns.
func (s *Server) Destroy(ctx context.Context, rt runtime.Runtime) error {
	s.suspended.Store(true)
	if err := rt.Destroy(ctx, s.containerName); err != nil {
		return fmt.Errorf("server %s: destroy: %w", s.UUID, err)
	}
	s.setState(types.StateOffline)
	return nil
}
