package backup

import (
	"archive/tar"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/gameforge/nodecore/internal/filesystem"
)

// DaemonLogger receives progress lines during restore, matching the
// original's log_daemon calls into the server's console stream.
type DaemonLogger interface {
	LogDaemon(message string)
}

// Restore extracts a backup's tar.gz into sandbox, replaying directory
// modes (best-effort chown) and file modes/mtimes (SPEC_FULL.md §4.4).
// Runs on the blocking worker pool.
func (e *Engine) Restore(id uuid.UUID, sandbox *filesystem.Sandbox, logger DaemonLogger) error {
	return e.pool.Submit(func() error {
		f, err := os.Open(e.path(id))
		if err != nil {
			return fmt.Errorf("backup: open archive: %w", err)
		}
		defer f.Close()

		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("backup: open gzip stream: %w", err)
		}
		defer gz.Close()

		tr := tar.NewReader(gz)

		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			if filepath.IsAbs(hdr.Name) {
				continue
			}

			abs, ok := sandbox.SafePath(hdr.Name)
			if !ok {
				continue
			}

			switch hdr.Typeflag {
			case tar.TypeDir:
				mode := os.FileMode(hdr.Mode).Perm()
				if mode == 0 {
					mode = 0o755
				}
				if err := os.MkdirAll(abs, mode); err != nil {
					return err
				}
				os.Chmod(abs, mode)
				if hdr.Uid != 0 || hdr.Gid != 0 {
					// best-effort; uid/gid mapping may differ on restore host
					if err := os.Chown(abs, hdr.Uid, hdr.Gid); err != nil && logger != nil {
						logger.LogDaemon(fmt.Sprintf("could not restore owner of %s: %v", hdr.Name, err))
					}
				}

			case tar.TypeReg:
				if logger != nil {
					logger.LogDaemon(fmt.Sprintf("restoring %s", hdr.Name))
				}

				mode := os.FileMode(hdr.Mode).Perm()
				if mode == 0 {
					mode = 0o644
				}
				mtime := hdr.ModTime
				w, err := filesystem.NewWriter(abs, &mode, &mtime)
				if err != nil {
					return err
				}
				if _, err := io.Copy(w, tr); err != nil {
					w.Abort()
					return err
				}
				if err := w.Close(); err != nil {
					return err
				}
				if hdr.Uid != 0 || hdr.Gid != 0 {
					if err := os.Chown(abs, hdr.Uid, hdr.Gid); err != nil && logger != nil {
						logger.LogDaemon(fmt.Sprintf("could not restore owner of %s: %v", hdr.Name, err))
					}
				}

			default:
				log.Printf("backup: skipping unsupported tar entry type for %s", hdr.Name)
			}
		}
	})
}
