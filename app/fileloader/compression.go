package fileloader

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression format of a file
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of CompressionType
func (ct CompressionType) String() string {
	switch ct {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

// Magic byte signatures for compression detection
var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68} // "BZh"
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression reads the first bytes of a file and identifies its
// compression by magic number, not by extension.
func DetectCompression(path string) (CompressionType, error) {
	f, err := os.Open(path)
	if err != nil {
		return CompressionNone, err
	}
	defer f.Close()

	// XZ has the longest magic (6 bytes)
	header := make([]byte, 6)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return CompressionNone, err
	}
	return detectCompressionMagic(header[:n]), nil
}

// detectCompressionMagic matches header bytes against the known signatures.
func detectCompressionMagic(header []byte) CompressionType {
	if bytes.HasPrefix(header, gzipMagic) {
		return CompressionGzip
	}
	if bytes.HasPrefix(header, bzip2Magic) {
		return CompressionBzip2
	}
	if bytes.HasPrefix(header, xzMagic) {
		return CompressionXZ
	}
	return CompressionNone
}

// OpenDecompressed opens path and returns a reader over its decompressed
// content. The caller must close the returned reader.
func OpenDecompressed(path string, compression CompressionType) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch compression {
	case CompressionNone:
		return f, nil

	case CompressionGzip:
		gzReader, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return &decompressingReadCloser{reader: gzReader, file: f}, nil

	case CompressionBzip2:
		return &decompressingReadCloser{reader: bzip2.NewReader(f), file: f}, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		return &decompressingReadCloser{reader: xzReader, file: f}, nil

	default:
		f.Close()
		return nil, fmt.Errorf("unsupported compression type: %v", compression)
	}
}

// readDataFile returns the text content of path, transparently decompressing
// gzip/bzip2/xz input and flattening XLSX workbooks to CSV text so the format
// detector and parsers see plain lines either way.
func readDataFile(path string) ([]byte, CompressionType, error) {
	if isXLSXFile(path) {
		data, err := flattenXLSX(path)
		return data, CompressionNone, err
	}

	compression, err := DetectCompression(path)
	if err != nil {
		return nil, CompressionNone, fmt.Errorf("read %s: %w", path, err)
	}
	rc, err := OpenDecompressed(path, compression)
	if err != nil {
		return nil, compression, fmt.Errorf("read %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, compression, fmt.Errorf("decompress %s: %w", path, err)
	}
	return data, compression, nil
}

// decompressingReadCloser wraps a decompressing reader and the underlying file
type decompressingReadCloser struct {
	reader io.Reader
	file   *os.File
}

func (d *decompressingReadCloser) Read(p []byte) (n int, err error) {
	return d.reader.Read(p)
}

func (d *decompressingReadCloser) Close() error {
	if closer, ok := d.reader.(io.Closer); ok {
		closer.Close()
	}
	return d.file.Close()
}
