package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

// Writer is an atomic file write: bytes land in a temporary file in the
// destination's directory, and only Close renames it into place. A reader
// of the destination path never observes a partial write.
type Writer struct {
	dest    string
	tmp     *os.File
	mode    os.FileMode
	mtime   time.Time
	hasMode bool
	hasTime bool
	closed  bool
}

// NewWriter opens an atomic writer for destPath (already resolved and
// confirmed safe by the caller via Sandbox.SafePath). mode and mtime are
// optional best-effort metadata applied on Close, used by archive
// extraction and backup restore to replay the archived entry's permissions.
func NewWriter(destPath string, mode *os.FileMode, mtime *time.Time) (*Writer, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".nodecore-tmp-*")
	if err != nil {
		return nil, err
	}

	w := &Writer{dest: destPath, tmp: tmp}
	if mode != nil {
		w.mode, w.hasMode = *mode, true
	}
	if mtime != nil {
		w.mtime, w.hasTime = *mtime, true
	}
	return w, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

// ReadFrom streams src into the temp file, for callers extracting archive
// entries directly from a decompressed stream.
func (w *Writer) ReadFrom(src io.Reader) (int64, error) {
	return io.Copy(w.tmp, src)
}

// Close flushes, applies mode/mtime best-effort, and atomically renames the
// temp file into place. On any failure before the rename, the destination
// is left untouched and the temp file is removed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.tmp.Sync(); err != nil {
		os.Remove(w.tmp.Name())
		w.tmp.Close()
		return err
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return err
	}

	if w.hasMode {
		os.Chmod(w.tmp.Name(), w.mode)
	}
	if w.hasTime {
		os.Chtimes(w.tmp.Name(), w.mtime, w.mtime)
	}

	if err := os.Rename(w.tmp.Name(), w.dest); err != nil {
		os.Remove(w.tmp.Name())
		return err
	}
	return nil
}

// Abort discards the write without touching the destination.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}
