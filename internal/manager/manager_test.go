package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/internal/config"
	"github.com/gameforge/nodecore/internal/runtime"
	"github.com/gameforge/nodecore/pkg/types"
)

type countingRuntime struct {
	mu         sync.Mutex
	starts     int32
	inFlight   int32
	maxInFlight int32
}

func (r *countingRuntime) Create(ctx context.Context, cfg runtime.ContainerConfig) (string, error) {
	return "id", nil
}

func (r *countingRuntime) Attach(ctx context.Context, name string) (runtime.ContainerInfo, bool, error) {
	return runtime.ContainerInfo{}, false, nil
}

func (r *countingRuntime) Start(ctx context.Context, name string) error {
	cur := atomic.AddInt32(&r.inFlight, 1)
	r.mu.Lock()
	if cur > r.maxInFlight {
		r.maxInFlight = cur
	}
	r.mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	atomic.AddInt32(&r.starts, 1)
	atomic.AddInt32(&r.inFlight, -1)
	return nil
}

func (r *countingRuntime) Stop(ctx context.Context, name, signal string, timeout int) error { return nil }
func (r *countingRuntime) Exec(ctx context.Context, name string, cfg runtime.ExecConfig) (runtime.ExecResult, error) {
	return runtime.ExecResult{}, nil
}
func (r *countingRuntime) Destroy(ctx context.Context, name string) error { return nil }
func (r *countingRuntime) StatsStream(ctx context.Context, name string) (<-chan runtime.Stats, error) {
	ch := make(chan runtime.Stats)
	close(ch)
	return ch, nil
}

func testConfig(t *testing.T) config.Config {
	root := t.TempDir()
	return config.Config{
		RootDirectory:      root,
		BackupDirectory:    root + "/backups",
		ArchivePoolSize:    2,
		BootServersPerPage: 2,
		CheckpointInterval: time.Hour,
		BootGracePeriod:    0,
	}
}

func makeRecords(n int) []types.RawServer {
	records := make([]types.RawServer, n)
	for i := range records {
		records[i] = types.RawServer{Settings: types.Settings{UUID: uuid.New(), Image: "game:latest"}}
	}
	return records
}

func TestBootFanOutRespectsSemaphore(t *testing.T) {
	cfg := testConfig(t)
	rt := &countingRuntime{}
	records := makeRecords(5)

	states := make(map[uuid.UUID]types.ServerState, len(records))
	for _, r := range records {
		states[r.Settings.UUID] = types.StateRunning
	}
	if err := writeCheckpoint(cfg.RootDirectory, states); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	m := New(cfg, rt, records)
	defer m.Close()

	deadline := time.After(2 * time.Second)
	for {
		if atomic.LoadInt32(&rt.starts) == 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("starts = %d after deadline, want 5", rt.starts)
		case <-time.After(10 * time.Millisecond):
		}
	}

	if rt.maxInFlight > int32(cfg.BootServersPerPage) {
		t.Fatalf("maxInFlight = %d, want <= %d", rt.maxInFlight, cfg.BootServersPerPage)
	}
}

func TestCreateAndDeleteServer(t *testing.T) {
	cfg := testConfig(t)
	rt := &countingRuntime{}
	m := New(cfg, rt, nil)
	defer m.Close()

	record := types.RawServer{Settings: types.Settings{UUID: uuid.New(), Image: "game:latest"}}
	srv, err := m.CreateServer(record, false)
	if err != nil {
		t.Fatalf("CreateServer: %v", err)
	}
	if len(m.GetServers()) != 1 {
		t.Fatalf("expected 1 server after create, got %d", len(m.GetServers()))
	}

	m.DeleteServer(srv)
	time.Sleep(10 * time.Millisecond)
	if len(m.GetServers()) != 0 {
		t.Fatalf("expected 0 servers after delete, got %d", len(m.GetServers()))
	}
}
