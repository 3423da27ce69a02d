package server

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/internal/runtime"
	"github.com/gameforge/nodecore/pkg/types"
)

type fakeRuntime struct {
	containers map[string]runtime.ContainerInfo
	startCalls int
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{containers: map[string]runtime.ContainerInfo{}}
}

func (f *fakeRuntime) Create(ctx context.Context, cfg runtime.ContainerConfig) (string, error) {
	f.containers[cfg.Name] = runtime.ContainerInfo{ID: "id-" + cfg.Name, Name: cfg.Name}
	return "id-" + cfg.Name, nil
}

func (f *fakeRuntime) Attach(ctx context.Context, name string) (runtime.ContainerInfo, bool, error) {
	info, ok := f.containers[name]
	return info, ok, nil
}

func (f *fakeRuntime) Start(ctx context.Context, name string) error {
	f.startCalls++
	info := f.containers[name]
	info.Running = true
	f.containers[name] = info
	return nil
}

func (f *fakeRuntime) Stop(ctx context.Context, name, signal string, timeout int) error {
	info := f.containers[name]
	info.Running = false
	f.containers[name] = info
	return nil
}

func (f *fakeRuntime) Exec(ctx context.Context, name string, cfg runtime.ExecConfig) (runtime.ExecResult, error) {
	return runtime.ExecResult{}, nil
}

func (f *fakeRuntime) Destroy(ctx context.Context, name string) error {
	delete(f.containers, name)
	return nil
}

func (f *fakeRuntime) StatsStream(ctx context.Context, name string) (<-chan runtime.Stats, error) {
	ch := make(chan runtime.Stats)
	close(ch)
	return ch, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	settings := types.Settings{UUID: uuid.New(), Image: "game:latest"}
	process := types.ProcessConfiguration{StopSignal: "SIGTERM", StopTimeoutSec: 30}
	return New(settings, process, t.TempDir())
}

func TestStartTransitionsOfflineToStarting(t *testing.T) {
	s := newTestServer(t)
	rt := newFakeRuntime()

	if s.State() != types.StateOffline {
		t.Fatalf("initial state = %v, want Offline", s.State())
	}

	if err := s.Start(context.Background(), rt); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if rt.startCalls != 1 {
		t.Fatalf("startCalls = %d, want 1", rt.startCalls)
	}
	if s.State() != types.StateStarting {
		t.Fatalf("state after Start = %v, want Starting", s.State())
	}
}

func TestStartIsIdempotentWhenAlreadyRunning(t *testing.T) {
	s := newTestServer(t)
	rt := newFakeRuntime()

	if err := s.Start(context.Background(), rt); err != nil {
		t.Fatal(err)
	}
	s.setState(types.StateRunning)

	err := s.Start(context.Background(), rt)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start: err = %v, want ErrAlreadyRunning", err)
	}
	if rt.startCalls != 1 {
		t.Fatalf("startCalls = %d, want 1 (no duplicate start)", rt.startCalls)
	}
}

func TestSuspendedServerRefusesStart(t *testing.T) {
	s := newTestServer(t)
	rt := newFakeRuntime()
	s.Suspend()

	if err := s.Start(context.Background(), rt); err == nil {
		t.Fatal("expected suspended server to refuse start")
	}
}

func TestStopTransitionsToOffline(t *testing.T) {
	s := newTestServer(t)
	rt := newFakeRuntime()

	if err := s.Start(context.Background(), rt); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(context.Background(), rt); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.State() != types.StateOffline {
		t.Fatalf("state after stop = %v, want Offline", s.State())
	}
}
