package importer

import (
	"io"
	"path"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names the codec an import source is stored with.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionSnappy Compression = "snappy"
	CompressionZstd   Compression = "zstd"
	CompressionLZ4    Compression = "lz4"
	CompressionGzip   Compression = "gzip"
)

// DetectCompression picks the codec from the source name's extension.
func DetectCompression(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".sz":
		return CompressionSnappy
	case ".zst":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	case ".gz":
		return CompressionGzip
	default:
		return CompressionNone
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// decompress wraps src with the codec's stream reader. Closing the result
// closes src.
func decompress(src io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionSnappy:
		return readCloser{Reader: snappy.NewReader(src), close: src.Close}, nil
	case CompressionLZ4:
		return readCloser{Reader: lz4.NewReader(src), close: src.Close}, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: dec, close: func() error {
			dec.Close()
			return src.Close()
		}}, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, close: func() error {
			zerr := zr.Close()
			if err := src.Close(); err != nil {
				return err
			}
			return zerr
		}}, nil
	default:
		return src, nil
	}
}
