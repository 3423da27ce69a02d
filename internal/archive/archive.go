package archive

import (
	"bufio"
	"compress/bzip2"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Archive is a transient value wrapping an on-disk file together with its
// inferred compression and container format (SPEC_FULL.md §4.3). It lives
// only for the duration of one extract or size-estimate call.
type Archive struct {
	Compression Compression
	Type        Type

	path   string
	header [16]byte
	file   *os.File
}

// Open reads the first 16 bytes of path and infers its compression and
// container format. The caller must call Close when done.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}

	a := &Archive{path: path, file: file}
	if _, err := io.ReadFull(file, a.header[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("archive: read header of %s: %w", path, err)
	}

	a.Compression = detectCompression(a.header[:])
	a.Type = detectType(filepath.Base(path))
	return a, nil
}

// Close releases the underlying file handle.
func (a *Archive) Close() error { return a.file.Close() }

// EstimatedSize reads the archive's uncompressed size from its container
// metadata without decompressing the body, per the per-format rules in
// SPEC_FULL.md §4.3. The boolean is false when the format does not carry a
// recoverable size (xz, bzip2, or malformed headers).
func (a *Archive) EstimatedSize() (uint64, bool) {
	switch a.Compression {
	case CompressionNone:
		info, err := a.file.Stat()
		if err != nil {
			return 0, false
		}
		return uint64(info.Size()), true

	case CompressionGzip:
		info, err := a.file.Stat()
		if err != nil || info.Size() < 4 {
			return 0, false
		}
		var buf [4]byte
		if _, err := a.file.ReadAt(buf[:], info.Size()-4); err != nil {
			return 0, false
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), true

	case CompressionLz4:
		if a.header[4]&0x08 == 0 {
			return 0, false
		}
		return binary.LittleEndian.Uint64(a.header[5:13]), true

	case CompressionZstd:
		fhd := a.header[4]
		fcsFlag := fhd & 0x03
		singleSegment := fhd&0x20 != 0

		if fcsFlag == 0 && !singleSegment {
			return 0, false
		}

		switch fcsFlag {
		case 0:
			return uint64(a.header[5]), true
		case 1:
			return uint64(binary.LittleEndian.Uint16(a.header[5:7])), true
		case 2:
			return uint64(binary.LittleEndian.Uint32(a.header[5:9])), true
		case 3:
			return binary.LittleEndian.Uint64(a.header[5:13]), true
		default:
			return 0, false
		}

	default:
		return 0, false
	}
}

// Reader seeks the underlying file to the start and wraps it in the
// streaming decoder matching the detected compression.
func (a *Archive) Reader() (io.Reader, error) {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	buffered := bufio.NewReader(a.file)

	switch a.Compression {
	case CompressionNone:
		return buffered, nil
	case CompressionGzip:
		return gzip.NewReader(buffered)
	case CompressionXz:
		return xz.NewReader(buffered)
	case CompressionBzip2:
		return bzip2.NewReader(buffered), nil
	case CompressionLz4:
		return lz4.NewReader(buffered), nil
	case CompressionZstd:
		dec, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	default:
		return buffered, nil
	}
}
