package filesystem

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gameforge/nodecore/pkg/types"
)

// ListDirectory enumerates the directory at rel (sandbox-relative),
// skipping ignored entries, and returns them directories-first then
// lexicographically (SPEC_FULL.md §4.2, §8 listing-order property).
func (s *Sandbox) ListDirectory(rel string) ([]types.EntryInfo, error) {
	abs, ok := s.SafePath(rel)
	if !ok {
		return nil, os.ErrNotExist
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	out := make([]types.EntryInfo, 0, len(entries))
	for _, e := range entries {
		entryRel := filepath.Join(rel, e.Name())
		if s.IsIgnored(entryRel, e.IsDir()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		out = append(out, types.EntryInfo{
			Name:    e.Name(),
			IsDir:   e.IsDir(),
			Size:    info.Size(),
			Mode:    uint32(info.Mode().Perm()),
			ModTime: info.ModTime(),
			Symlink: info.Mode()&os.ModeSymlink != 0,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})

	return out, nil
}
