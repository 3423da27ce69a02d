package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/gameforge/nodecore/internal/filesystem"
	"github.com/gameforge/nodecore/internal/workerpool"
)

type noopLogger struct{ lines []string }

func (l *noopLogger) LogDaemon(msg string) { l.lines = append(l.lines, msg) }

func TestCreateRestoreRoundTrip(t *testing.T) {
	srcRoot := t.TempDir()
	src := filesystem.New(srcRoot)
	if err := src.Setup(); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(srcRoot, "plugins"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcRoot, "server.properties"), []byte("motd=hi\n"), 0o640); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcRoot, "plugins", "a.jar"), []byte("jarbytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	pool := workerpool.New(2)
	defer pool.Stop()

	backupDir := t.TempDir()
	engine, err := New(backupDir, pool)
	if err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	status, err := engine.Create(id, src, 6)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !status.Successful || status.Checksum == "" {
		t.Fatalf("unexpected status: %+v", status)
	}

	backups, err := engine.List()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, b := range backups {
		if b.UUID == id {
			found = true
		}
	}
	if !found {
		t.Fatal("created backup not found in List()")
	}

	dstRoot := t.TempDir()
	dst := filesystem.New(dstRoot)
	if err := dst.Setup(); err != nil {
		t.Fatal(err)
	}

	logger := &noopLogger{}
	if err := engine.Restore(id, dst, logger); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dstRoot, "server.properties"))
	if err != nil {
		t.Fatalf("restored file missing: %v", err)
	}
	if string(data) != "motd=hi\n" {
		t.Fatalf("restored content mismatch: %q", data)
	}

	jarData, err := os.ReadFile(filepath.Join(dstRoot, "plugins", "a.jar"))
	if err != nil {
		t.Fatalf("restored nested file missing: %v", err)
	}
	if string(jarData) != "jarbytes" {
		t.Fatalf("restored nested content mismatch: %q", jarData)
	}
	if len(logger.lines) == 0 {
		t.Fatal("expected restore progress lines")
	}

	if err := engine.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := engine.Delete(id); err != nil {
		t.Fatalf("Delete should be idempotent: %v", err)
	}
}
