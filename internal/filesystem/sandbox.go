// Package filesystem implements the Safe Filesystem (SPEC_FULL.md §4.2):
// symlink-safe path resolution confined to a per-server sandbox root, an
// ignore-pattern engine, an atomic writer, directory listing, and rename.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// Sandbox confines all filesystem operations for one server to its root
// directory. It is opened once when the server attaches and reused for the
// server's lifetime.
type Sandbox struct {
	root   string
	ignore *ignoreSet
}

// New creates a Sandbox rooted at root. The root directory is not created;
// call Setup for a brand-new server.
func New(root string) *Sandbox {
	return &Sandbox{root: filepath.Clean(root)}
}

// Root returns the sandbox's absolute root path.
func (s *Sandbox) Root() string { return s.root }

// Setup creates the sandbox root directory if missing, matching
// Manager.CreateServer's call to filesystem.Setup (SPEC_FULL.md §4.6).
func (s *Sandbox) Setup() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	return s.loadIgnore()
}

// Attach prepares an existing sandbox for use (loads the ignore set). It is
// idempotent, matching Manager's per-server boot reconciliation which calls
// it unconditionally for every server.
func (s *Sandbox) Attach() error {
	return s.loadIgnore()
}

// SafePath resolves a virtual, user-supplied path against the sandbox root.
// It rejects any path that, after resolving every symlink it passes
// through, would land outside the root. The parent of a non-existent leaf
// is still required to resolve inside the sandbox, so callers can use this
// to validate paths for files they are about to create.
func (s *Sandbox) SafePath(rel string) (string, bool) {
	joined := filepath.Join(s.root, rel)
	resolved, ok := s.resolve(joined)
	if ok {
		return resolved, true
	}

	// Leaf may not exist yet: resolve the parent instead and re-attach
	// the (unresolved) leaf name, matching SPEC_FULL.md §4.2's
	// create-path carve-out. An existing leaf that failed to resolve (for
	// example a symlink pointing outside the root) is rejected here.
	if _, err := os.Lstat(joined); !os.IsNotExist(err) {
		return "", false
	}
	parent, leaf := filepath.Split(joined)
	parentResolved, ok := s.resolve(parent)
	if !ok {
		return "", false
	}
	return filepath.Join(parentResolved, leaf), true
}

// IsSafePath reports whether abs (an already-absolute path) lies within the
// sandbox after resolution. A single method serves both goroutine and
// worker-pool callers — see DESIGN.md Open Question 1.
func (s *Sandbox) IsSafePath(abs string) bool {
	resolved, ok := s.resolve(abs)
	if ok {
		return resolved == abs || strings.HasPrefix(resolved, s.root+string(filepath.Separator))
	}
	return false
}

// maxSymlinkDepth bounds the recursive re-walk of a symlink chain, the
// same way the kernel bounds ELOOP, so a cyclic symlink farm fails closed
// instead of recursing forever.
const maxSymlinkDepth = 40

// resolve walks path component by component from the sandbox root,
// following symlinks relative to the sandbox (never the real filesystem
// root), and fails closed the moment any component would escape.
func (s *Sandbox) resolve(path string) (string, bool) {
	return s.resolveDepth(path, 0)
}

func (s *Sandbox) resolveDepth(path string, depth int) (string, bool) {
	if depth > maxSymlinkDepth {
		return "", false
	}
	cleaned := filepath.Clean(path)
	rel, err := filepath.Rel(s.root, cleaned)
	if err != nil {
		return "", false
	}
	if rel == "." {
		return s.root, true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	current := s.root
	parts := strings.Split(rel, string(filepath.Separator))
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		next := filepath.Join(current, part)

		info, err := os.Lstat(next)
		if err != nil {
			if os.IsNotExist(err) && i == len(parts)-1 {
				// A missing leaf is accepted: for a create-path only
				// its parent has to resolve inside the sandbox.
				current = next
				break
			}
			return "", false
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(next)
			if err != nil {
				return "", false
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(current, target)
			}
			resolvedTarget, ok := s.withinRoot(target)
			if !ok {
				return "", false
			}

			// The target's string form lying inside the root is not
			// enough: it may itself be a symlink (or a chain of them)
			// escaping the sandbox, so walk it from scratch rather than
			// trusting it as terminal.
			final, ok := s.resolveDepth(resolvedTarget, depth+1)
			if !ok {
				return "", false
			}
			current = final
			continue
		}

		current = next
	}

	if !strings.HasPrefix(current, s.root) {
		return "", false
	}
	return current, true
}

// withinRoot confirms a symlink target's string form lies within the
// sandbox root. This is only a cheap pre-filter; the caller still walks
// the target from scratch to catch further symlinks in the chain.
func (s *Sandbox) withinRoot(target string) (string, bool) {
	cleaned := filepath.Clean(target)
	if cleaned == s.root || strings.HasPrefix(cleaned, s.root+string(filepath.Separator)) {
		return cleaned, true
	}
	return "", false
}
