// Package backup implements the Backup Engine (SPEC_FULL.md §4.4):
// tar+gzip snapshot creation with a post-hoc SHA-1 checksum, restore with
// permission/mtime replay, download headers, listing, and deletion.
package backup

import (
	"archive/tar"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/gameforge/nodecore/internal/filesystem"
	"github.com/gameforge/nodecore/internal/workerpool"
	"github.com/gameforge/nodecore/pkg/types"
)

// Engine creates, restores, lists, and deletes backups for a single backup
// directory.
type Engine struct {
	dir  string
	pool *workerpool.Pool
}

// New builds an Engine rooted at dir (created if missing).
func New(dir string, pool *workerpool.Pool) (*Engine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create backup dir: %w", err)
	}
	return &Engine{dir: dir, pool: pool}, nil
}

func (e *Engine) path(id uuid.UUID) string {
	return filepath.Join(e.dir, id.String()+".tar.gz")
}

// Create walks sandbox, ignore-filtered, into a new tar.gz archive, then
// streams the finished file through SHA-1 for the status checksum
// (SPEC_FULL.md §4.4, §8 checksum law). Runs on the blocking worker pool.
func (e *Engine) Create(id uuid.UUID, sandbox *filesystem.Sandbox, level int) (types.RawServerBackup, error) {
	var result types.RawServerBackup

	err := e.pool.Submit(func() error {
		dest := e.path(id)

		file, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("backup: create archive: %w", err)
		}

		gz, err := gzip.NewWriterLevel(file, level)
		if err != nil {
			file.Close()
			return err
		}
		tw := tar.NewWriter(gz)

		walkErr := walkSandbox(sandbox, func(rel string, info os.FileInfo) error {
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = filepath.ToSlash(rel)

			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				abs := filepath.Join(sandbox.Root(), rel)
				f, err := os.Open(abs)
				if err != nil {
					return err
				}
				_, err = io.Copy(tw, f)
				f.Close()
				if err != nil {
					return err
				}
			}
			return nil
		})

		closeErr := closeAll(tw, gz, file)
		if walkErr != nil {
			os.Remove(dest)
			return walkErr
		}
		if closeErr != nil {
			os.Remove(dest)
			return closeErr
		}

		checksum, size, err := sha1Sum(dest)
		if err != nil {
			return err
		}

		result = types.RawServerBackup{
			Checksum:     checksum,
			ChecksumType: "sha1",
			Size:         size,
			Successful:   true,
		}
		return nil
	})

	return result, err
}

func closeAll(tw *tar.Writer, gz *gzip.Writer, file *os.File) error {
	if err := tw.Close(); err != nil {
		gz.Close()
		file.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func sha1Sum(path string) (string, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha1.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), uint64(size), nil
}

// List enumerates the backup directory and returns the UUID of every file
// whose name (with ".tar.gz" stripped) parses as one (SPEC_FULL.md §4.4).
func (e *Engine) List() ([]types.BackupInfo, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, err
	}

	var out []types.BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".tar.gz")
		if name == entry.Name() {
			continue
		}
		id, err := uuid.Parse(name)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, types.BackupInfo{UUID: id, Size: info.Size()})
	}
	return out, nil
}

// Delete removes a backup if present; idempotent (SPEC_FULL.md §8).
func (e *Engine) Delete(id uuid.UUID) error {
	err := os.Remove(e.path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DownloadHeaders returns the HTTP headers for a backup download response
// and the open file to stream, per SPEC_FULL.md §4.4.
func (e *Engine) DownloadHeaders(id uuid.UUID) (*os.File, map[string]string, error) {
	path := e.path(id)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%s.tar.gz", id),
		"Content-Type":        "application/gzip",
		"Content-Length":      fmt.Sprintf("%d", info.Size()),
	}
	return f, headers, nil
}
