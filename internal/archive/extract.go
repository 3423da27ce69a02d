package archive

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/gameforge/nodecore/internal/filesystem"
	"github.com/gameforge/nodecore/internal/workerpool"
)

// Extract decodes reader according to the archive's detected type and
// writes it into destination, honoring the sandbox's ignore rules. A
// TypeNone archive is a single compressed file whose decoded stream is
// copied to one file. Every type runs on pool to avoid stalling the
// caller's scheduler loop (SPEC_FULL.md §4.3).
func (a *Archive) Extract(pool *workerpool.Pool, destination *filesystem.Sandbox, destRel string, reader io.Reader) error {
	switch a.Type {
	case TypeNone:
		return pool.Submit(func() error { return a.extractRaw(destination, destRel, reader) })
	case TypeTar:
		return pool.Submit(func() error { return a.extractTar(destination, destRel, reader) })
	case TypeZip:
		return pool.Submit(func() error { return a.extractZip(destination, destRel) })
	default:
		return nil
	}
}

func (a *Archive) extractRaw(destination *filesystem.Sandbox, destRel string, reader io.Reader) error {
	name := stem(filepath.Base(a.path))
	target := filepath.Join(destRel, name)

	abs, ok := destination.SafePath(target)
	if !ok {
		return os.ErrPermission
	}

	w, err := filesystem.NewWriter(abs, nil, nil)
	if err != nil {
		return err
	}
	if _, err := w.ReadFrom(reader); err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}

func (a *Archive) extractTar(destination *filesystem.Sandbox, destRel string, reader io.Reader) error {
	tr := tar.NewReader(reader)

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

		entryRel := filepath.Join(destRel, hdr.Name)
		isDir := hdr.Typeflag == tar.TypeDir
		if destination.IsIgnored(entryRel, isDir) {
			continue
		}

		abs, ok := destination.SafePath(entryRel)
		if !ok {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			mode := os.FileMode(hdr.Mode).Perm()
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
		default:
			// symlinks, devices, fifos: ignored, matching the original.
		}
	}
}

func (a *Archive) extractZip(destination *filesystem.Sandbox, destRel string) error {
	zr, err := zip.OpenReader(a.path)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, entry := range zr.File {
		name := entry.Name
		if filepath.IsAbs(name) {
			continue
		}

		entryRel := filepath.Join(destRel, name)
		isDir := entry.FileInfo().IsDir()
		if destination.IsIgnored(entryRel, isDir) {
			continue
		}

		abs, ok := destination.SafePath(entryRel)
		if !ok {
			continue
		}

		if isDir {
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return err
			}
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return err
		}

		mode := entry.Mode().Perm()
		w, err := filesystem.NewWriter(abs, &mode, nil)
		if err != nil {
			rc.Close()
			return err
		}
		if _, err := io.Copy(w, rc); err != nil {
			w.Abort()
			rc.Close()
			return err
		}
		rc.Close()
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
