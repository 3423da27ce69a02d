package manager

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/pkg/types"
)

const checkpointFileName = "states.json"

// loadCheckpoint reads the last-observed server states from disk. A
// missing or corrupt file is treated as empty, matching the original's
// unwrap_or_default fallback (SPEC_FULL.md §4.6, §7).
func loadCheckpoint(rootDirectory string) map[uuid.UUID]types.ServerState {
	path := filepath.Join(rootDirectory, checkpointFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return map[uuid.UUID]types.ServerState{}
	}

	var states map[uuid.UUID]types.ServerState
	if err := json.Unmarshal(data, &states); err != nil {
		log.Printf("checkpoint: %s is corrupt, treating as empty: %v", path, err)
		return map[uuid.UUID]types.ServerState{}
	}
	return states
}

// writeCheckpoint truncates and rewrites the checkpoint file in place,
// flushing and fsyncing before returning, so a crash never leaves a
// partially-written file (SPEC_FULL.md §3, §8).
func writeCheckpoint(rootDirectory string, states map[uuid.UUID]types.ServerState) error {
	path := filepath.Join(rootDirectory, checkpointFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(states); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}
