package backup

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gameforge/nodecore/internal/filesystem"
)

// walkSandbox recursively visits every entry under the sandbox root,
// honoring the same walker discipline as the original's ignore::WalkBuilder
// configuration: symlinks are never followed, hidden files are included,
// and .pteroignore is consulted for every path (SPEC_FULL.md §4.4).
func walkSandbox(sandbox *filesystem.Sandbox, visit func(rel string, info os.FileInfo) error) error {
	root := sandbox.Root()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if sandbox.IsIgnored(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// The backup walker only archives regular files and directories.
		// Symlinks are neither followed nor archived, matching the
		// original's follow_links(false) behavior by never descending into
		// or copying link targets; devices, fifos and sockets are skipped.
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		return visit(rel, info)
	})
}
