// Package archive implements the Archive Engine (SPEC_FULL.md §4.3):
// compression/format inference from magic bytes and extension, streaming
// size estimation, and ignore-aware extraction onto a sandbox.
package archive

import (
	"bytes"
	"strings"
)

// Compression is the detected compression codec of an archive file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
	CompressionLz4
	CompressionZstd
)

// Type is the detected container format of an archive file.
type Type int

const (
	TypeNone Type = iota
	TypeTar
	TypeZip
)

var (
	magicGzip  = []byte{0x1F, 0x8B}
	magicBzip2 = []byte{0x42, 0x5A, 0x68}
	magicXz    = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	magicLz4   = []byte{0x04, 0x22, 0x4D, 0x18}
	magicZstd  = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// detectCompression inspects the first bytes of a file for a known magic
// number (SPEC_FULL.md §4.3).
func detectCompression(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, magicZstd):
		return CompressionZstd
	case bytes.HasPrefix(header, magicLz4):
		return CompressionLz4
	case bytes.HasPrefix(header, magicXz):
		return CompressionXz
	case bytes.HasPrefix(header, magicBzip2):
		return CompressionBzip2
	case bytes.HasPrefix(header, magicGzip):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// detectType infers the archive container format from the file name.
func detectType(name string) Type {
	switch {
	case strings.HasSuffix(name, ".tar"):
		return TypeTar
	case strings.HasSuffix(name, ".zip"):
		return TypeZip
	}

	stem := strings.TrimSuffix(name, extOf(name))
	if strings.HasSuffix(stem, ".tar") {
		return TypeTar
	}
	return TypeNone
}

func extOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

// stem returns the file name with its final extension removed, matching
// path.file_stem() in the original source.
func stem(name string) string {
	ext := extOf(name)
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
