package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gameforge/nodecore/pkg/types"
)

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	root := t.TempDir()
	sb := New(root)
	if err := sb.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return sb
}

func TestSafePathRejectsEscape(t *testing.T) {
	sb := newTestSandbox(t)

	if _, ok := sb.SafePath("../../etc/passwd"); ok {
		t.Fatal("expected escape to be rejected")
	}
}

func TestSafePathRejectsSymlinkEscape(t *testing.T) {
	sb := newTestSandbox(t)

	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(sb.Root(), "link")); err != nil {
		t.Fatal(err)
	}

	if _, ok := sb.SafePath("link/secret"); ok {
		t.Fatal("expected symlink escape to be rejected")
	}
}

func TestSafePathRejectsMultiHopSymlinkEscape(t *testing.T) {
	sb := newTestSandbox(t)

	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// link1 -> link2 -> outside. link1's target string ("<root>/link2")
	// looks safe on its own; only fully re-walking link2 reveals the escape.
	if err := os.Symlink(outside, filepath.Join(sb.Root(), "link2")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(sb.Root(), "link2"), filepath.Join(sb.Root(), "link1")); err != nil {
		t.Fatal(err)
	}

	if _, ok := sb.SafePath("link1/secret"); ok {
		t.Fatal("expected multi-hop symlink escape to be rejected")
	}
}

func TestSafePathFollowsMultiHopSymlinkChainInsideSandbox(t *testing.T) {
	sb := newTestSandbox(t)

	if err := os.Mkdir(filepath.Join(sb.Root(), "real"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sb.Root(), "real", "data.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(sb.Root(), "real"), filepath.Join(sb.Root(), "link2")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(sb.Root(), "link2"), filepath.Join(sb.Root(), "link1")); err != nil {
		t.Fatal(err)
	}

	resolved, ok := sb.SafePath("link1/data.txt")
	if !ok {
		t.Fatal("expected multi-hop symlink chain fully inside the sandbox to resolve")
	}
	want := filepath.Join(sb.Root(), "real", "data.txt")
	if resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
}

func TestSafePathRejectsCyclicSymlinkFarm(t *testing.T) {
	sb := newTestSandbox(t)

	if err := os.Symlink(filepath.Join(sb.Root(), "b"), filepath.Join(sb.Root(), "a")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(sb.Root(), "a"), filepath.Join(sb.Root(), "b")); err != nil {
		t.Fatal(err)
	}

	if _, ok := sb.SafePath("a/file"); ok {
		t.Fatal("expected cyclic symlink farm to be rejected, not loop forever")
	}
}

func TestSafePathAllowsNonexistentLeaf(t *testing.T) {
	sb := newTestSandbox(t)

	resolved, ok := sb.SafePath("new-file.txt")
	if !ok {
		t.Fatal("expected nonexistent leaf to resolve for create")
	}
	if filepath.Dir(resolved) != sb.Root() {
		t.Fatalf("resolved parent = %q, want %q", filepath.Dir(resolved), sb.Root())
	}
}

func TestListDirectoryOrdering(t *testing.T) {
	sb := newTestSandbox(t)

	os.Mkdir(filepath.Join(sb.Root(), "zzz-dir"), 0o755)
	os.WriteFile(filepath.Join(sb.Root(), "aaa-file.txt"), []byte("x"), 0o644)
	os.Mkdir(filepath.Join(sb.Root(), "aaa-dir"), 0o755)

	entries, err := sb.ListDirectory("")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if !entries[0].IsDir || !entries[1].IsDir {
		t.Fatal("expected the two directories first")
	}
	if entries[0].Name != "aaa-dir" || entries[1].Name != "zzz-dir" {
		t.Fatalf("directories not sorted lexicographically: %v", entries)
	}
	if entries[2].Name != "aaa-file.txt" {
		t.Fatalf("expected file last, got %v", entries[2])
	}
}

func TestRenamePathRejectsRoot(t *testing.T) {
	sb := newTestSandbox(t)
	os.WriteFile(filepath.Join(sb.Root(), "a.txt"), []byte("x"), 0o644)

	if err := sb.RenamePath("", "a.txt"); err == nil {
		t.Fatal("expected rename from root to be rejected")
	}
}

func TestRenamePathRejectsExistingDestination(t *testing.T) {
	sb := newTestSandbox(t)
	os.WriteFile(filepath.Join(sb.Root(), "a.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(sb.Root(), "b.txt"), []byte("y"), 0o644)

	if err := sb.RenamePath("a.txt", "b.txt"); err == nil {
		t.Fatal("expected rename onto existing destination to be rejected")
	}
}

func TestRenameBulkCountsOnlySuccesses(t *testing.T) {
	sb := newTestSandbox(t)
	os.WriteFile(filepath.Join(sb.Root(), "a.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(sb.Root(), "b.txt"), []byte("y"), 0o644)

	renamed := sb.RenameBulk("", []types.RenameFile{
		{From: "a.txt", To: "a2.txt"},
		{From: "b.txt", To: "../../etc/passwd"},
	})
	if renamed != 1 {
		t.Fatalf("renamed = %d, want 1", renamed)
	}
}
