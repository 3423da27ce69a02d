package archive

import "testing"

func TestDetectCompressionMagicBytes(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Compression
	}{
		{"gzip", []byte{0x1F, 0x8B, 0x08, 0x00}, CompressionGzip},
		{"bzip2", []byte{0x42, 0x5A, 0x68, 0x39}, CompressionBzip2},
		{"xz", []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, CompressionXz},
		{"lz4", []byte{0x04, 0x22, 0x4D, 0x18, 0x60}, CompressionLz4},
		{"zstd", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}, CompressionZstd},
		{"none", []byte{0x00, 0x01, 0x02, 0x03}, CompressionNone},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := detectCompression(c.header); got != c.want {
				t.Errorf("detectCompression(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestDetectTypeFromExtension(t *testing.T) {
	cases := []struct {
		name string
		want Type
	}{
		{"backup.tar", TypeTar},
		{"backup.zip", TypeZip},
		{"backup.tar.gz", TypeTar},
		{"backup.txt", TypeNone},
		{"backup.tar.zst", TypeTar},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := detectType(c.name); got != c.want {
				t.Errorf("detectType(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestZstdEstimatedSizeSingleByteFrame(t *testing.T) {
	a := &Archive{Compression: CompressionZstd}
	// Frame header descriptor 0x20: single_segment set, fcs_flag=0 -> 1 byte size.
	copy(a.header[:], []byte{0x28, 0xB5, 0x2F, 0xFD, 0x20, 0x2A})

	size, ok := a.EstimatedSize()
	if !ok {
		t.Fatal("expected a size")
	}
	if size != 0x2A {
		t.Errorf("size = %d, want 42", size)
	}
}

func TestLz4EstimatedSizeRequiresContentSizeFlag(t *testing.T) {
	a := &Archive{Compression: CompressionLz4}
	copy(a.header[:], []byte{0x04, 0x22, 0x4D, 0x18, 0x00})

	if _, ok := a.EstimatedSize(); ok {
		t.Fatal("expected no size without the content-size flag")
	}
}
