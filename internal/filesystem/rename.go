package filesystem

import (
	"fmt"
	"os"

	"github.com/gameforge/nodecore/pkg/types"
)

// ErrInvalidRename is returned when a rename request violates one of the
// invariants in SPEC_FULL.md §4.2 / §8 (not root, not identical, source
// must exist, destination must not exist, neither side ignored).
var ErrInvalidRename = fmt.Errorf("filesystem: invalid rename")

// RenamePath renames the sandbox-relative path from to to, enforcing every
// invariant original_source/.../files/rename.rs checks before delegating
// to the filesystem: both endpoints safe, neither equal to the sandbox
// root, source exists, destination absent, neither side ignored.
func (s *Sandbox) RenamePath(from, to string) error {
	fromAbs, ok := s.SafePath(from)
	if !ok || fromAbs == s.root {
		return ErrInvalidRename
	}
	toAbs, ok := s.SafePath(to)
	if !ok || toAbs == s.root {
		return ErrInvalidRename
	}
	if fromAbs == toAbs {
		return ErrInvalidRename
	}

	info, err := os.Lstat(fromAbs)
	if err != nil {
		return ErrInvalidRename
	}

	if _, err := os.Lstat(toAbs); err == nil {
		return ErrInvalidRename
	}

	if s.IsIgnored(from, info.IsDir()) || s.IsIgnored(to, info.IsDir()) {
		return ErrInvalidRename
	}

	return os.Rename(fromAbs, toAbs)
}

// RenameBulk applies RenamePath to every pair in files under the given
// sandbox-relative root, skipping any entry that fails its invariants, and
// reports how many succeeded (SPEC_FULL.md §8 scenario 3).
func (s *Sandbox) RenameBulk(root string, files []types.RenameFile) (renamed int) {
	for _, f := range files {
		from := joinVirtual(root, f.From)
		to := joinVirtual(root, f.To)
		if err := s.RenamePath(from, to); err == nil {
			renamed++
		}
	}
	return renamed
}

func joinVirtual(root, rel string) string {
	if root == "" {
		return rel
	}
	return root + "/" + rel
}
