// Package manager implements the Manager (SPEC_FULL.md §4.6): fleet
// loading on boot, bounded-parallelism boot reconciliation, periodic
// crash-safe state checkpointing, and server create/delete.
package manager

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/internal/backup"
	"github.com/gameforge/nodecore/internal/config"
	"github.com/gameforge/nodecore/internal/runtime"
	"github.com/gameforge/nodecore/internal/server"
	"github.com/gameforge/nodecore/internal/workerpool"
	"github.com/gameforge/nodecore/pkg/types"
)

// Manager owns the fleet of servers on this host, plus the shared blocking
// worker pool and Backup Engine every server's archive/backup work runs on
// (SPEC_FULL.md §4.4, §4.6).
type Manager struct {
	cfg     config.Config
	runtime runtime.Runtime

	mu      sync.RWMutex
	servers []*server.Server

	archivePool *workerpool.Pool
	Backups     *backup.Engine

	stop chan struct{}
	done chan struct{}
}

// New constructs a Manager from the given config, runtime, and the
// remote's authoritative server records, and begins boot reconciliation
// and periodic checkpointing in the background (SPEC_FULL.md §4.6).
func New(cfg config.Config, rt runtime.Runtime, records []types.RawServer) *Manager {
	previousStates := loadCheckpoint(cfg.RootDirectory)

	pool := workerpool.New(cfg.ArchivePoolSize)
	backups, err := backup.New(cfg.BackupDirectory, pool)
	if err != nil {
		log.Printf("manager: backup engine unavailable: %v", err)
	}

	m := &Manager{
		cfg:         cfg,
		runtime:     rt,
		archivePool: pool,
		Backups:     backups,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	var sem chan struct{}
	if cfg.BootServersPerPage > 0 {
		sem = make(chan struct{}, cfg.BootServersPerPage)
	}

	for _, record := range records {
		root := m.sandboxRoot(record.Settings.UUID)
		srv := server.New(record.Settings, record.ProcessConfiguration, root)
		if err := srv.Filesystem.Attach(); err != nil {
			log.Printf("manager: server %s: attach filesystem: %v", srv.UUID, err)
		}

		previous := previousStates[srv.UUID]
		m.servers = append(m.servers, srv)

		if sem != nil {
			go m.reconcile(srv, previous, sem)
		}
	}

	go m.checkpointLoop()

	return m
}

// reconcile attaches a server's container, waits out the grace period so
// container-attach stream callbacks can settle the live state, and starts
// the server if its last observed state was active and it is not already
// running (SPEC_FULL.md §4.6 point 3), bounded by sem.
func (m *Manager) reconcile(srv *server.Server, previous types.ServerState, sem chan struct{}) {
	ctx := context.Background()

	log.Printf("manager: restoring server %s state %s", srv.UUID, previous)

	if err := srv.AttachContainer(ctx, m.runtime); err != nil {
		log.Printf("manager: server %s: attach container: %v", srv.UUID, err)
	}

	time.Sleep(m.cfg.BootGracePeriod)

	if previous.IsActive() && !srv.State().IsActive() {
		sem <- struct{}{}
		defer func() { <-sem }()

		if err := srv.Start(ctx, m.runtime); err != nil {
			log.Printf("manager: server %s: boot start failed: %v", srv.UUID, err)
		}
	}
}

// checkpointLoop rewrites the state checkpoint on a fixed interval until
// Close is called (SPEC_FULL.md §4.6 point 4, §8 checkpoint-validity).
func (m *Manager) checkpointLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			snapshot := m.stateSnapshot()
			if err := writeCheckpoint(m.cfg.RootDirectory, snapshot); err != nil {
				log.Printf("manager: checkpoint write failed: %v", err)
			}
		}
	}
}

func (m *Manager) stateSnapshot() map[uuid.UUID]types.ServerState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[uuid.UUID]types.ServerState, len(m.servers))
	for _, s := range m.servers {
		snapshot[s.UUID] = s.State()
	}
	return snapshot
}

// GetServers returns a snapshot slice of the current fleet. Safe for
// concurrent callers; mutating the returned slice does not affect the
// Manager.
func (m *Manager) GetServers() []*server.Server {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*server.Server, len(m.servers))
	copy(out, m.servers)
	return out
}

// GetServer looks up a server by UUID.
func (m *Manager) GetServer(id uuid.UUID) (*server.Server, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.servers {
		if s.UUID == id {
			return s, true
		}
	}
	return nil, false
}

// CreateServer builds a new Server from a remote record, provisions its
// sandbox, and appends it to the fleet (SPEC_FULL.md §4.6). When install
// is true and the record sets StartOnCompletion, it starts the server in
// the background; no installation script is run here.
func (m *Manager) CreateServer(record types.RawServer, install bool) (*server.Server, error) {
	root := m.sandboxRoot(record.Settings.UUID)
	srv := server.New(record.Settings, record.ProcessConfiguration, root)

	if err := srv.Filesystem.Setup(); err != nil {
		return nil, err
	}

	if install {
		go m.installAndMaybeStart(srv, record.StartOnCompletion)
	}

	m.mu.Lock()
	m.servers = append(m.servers, srv)
	m.mu.Unlock()

	return srv, nil
}

func (m *Manager) installAndMaybeStart(srv *server.Server, startOnCompletion *bool) {
	// Installation script execution is driven by the (out-of-scope) local
	// HTTP API via runtime.Exec against the install image; this daemon
	// only owns the resulting start-on-completion handoff.
	if startOnCompletion != nil && *startOnCompletion {
		if err := srv.Start(context.Background(), m.runtime); err != nil {
			log.Printf("manager: server %s: failed to start on install completion: %v", srv.UUID, err)
		}
	}
}

// DeleteServer removes a server from the fleet and tears it down in the
// background after marking it suspended so no concurrent reconciliation
// restarts it (SPEC_FULL.md §4.6).
func (m *Manager) DeleteServer(srv *server.Server) {
	m.mu.Lock()
	idx := -1
	for i, s := range m.servers {
		if s == srv {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.mu.Unlock()
		return
	}
	m.servers = append(m.servers[:idx], m.servers[idx+1:]...)
	m.mu.Unlock()

	srv.Suspend()
	go func() {
		if err := srv.Destroy(context.Background(), m.runtime); err != nil {
			log.Printf("manager: server %s: destroy failed: %v", srv.UUID, err)
		}
	}()
}

// Close stops the checkpoint loop, drains the archive worker pool, and
// waits for the checkpoint writer to exit.
func (m *Manager) Close() {
	close(m.stop)
	<-m.done
	m.archivePool.Stop()
}

func (m *Manager) sandboxRoot(id uuid.UUID) string {
	return m.cfg.RootDirectory + "/servers/" + id.String()
}
