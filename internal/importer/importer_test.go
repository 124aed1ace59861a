package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdb/gisdb/internal/recordfile"
	"github.com/gisdb/gisdb/internal/storage"
	"github.com/gisdb/gisdb/pkg/types"
)

const sample = "FEATURE_ID|FEATURE_NAME|FEATURE_CLASS|STATE_ALPHA|STATE_NUMERIC|COUNTY_NAME|COUNTY_NUMERIC|PRIMARY_LAT_DMS|PRIM_LONG_DMS\n" +
	"1|Roanoke|Populated Place|VA|51|Roanoke (city)|770|371612N|0795628W\n" +
	"\n" +
	"2|Salem|Populated Place|VA|51|Salem (city)|775|371736N|0800315W\n"

func compress(t *testing.T, c Compression, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch c {
	case CompressionSnappy:
		w = snappy.NewBufferedWriter(&buf)
	case CompressionLZ4:
		w = lz4.NewWriter(&buf)
	case CompressionZstd:
		enc, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = enc
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	default:
		return []byte(data)
	}
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func setup(t *testing.T) (string, *Importer, *recordfile.File) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	records, err := recordfile.Open(filepath.Join(t.TempDir(), "db.txt"), true)
	require.NoError(t, err)
	t.Cleanup(func() { records.Close() })
	return dir, New(store, records), records
}

func TestDetectCompression(t *testing.T) {
	assert.Equal(t, CompressionSnappy, DetectCompression("VA_Features.txt.sz"))
	assert.Equal(t, CompressionZstd, DetectCompression("s3/VA.ZST"))
	assert.Equal(t, CompressionLZ4, DetectCompression("VA.lz4"))
	assert.Equal(t, CompressionGzip, DetectCompression("VA.txt.gz"))
	assert.Equal(t, CompressionNone, DetectCompression("VA_Features.txt"))
}

func TestImporter_AllCodecs(t *testing.T) {
	names := map[Compression]string{
		CompressionNone:   "features.txt",
		CompressionSnappy: "features.txt.sz",
		CompressionZstd:   "features.txt.zst",
		CompressionLZ4:    "features.txt.lz4",
		CompressionGzip:   "features.txt.gz",
	}
	for codec, name := range names {
		t.Run(string(codec), func(t *testing.T) {
			dir, im, records := setup(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), compress(t, codec, sample), 0644))

			res, err := im.Import(context.Background(), name)
			require.NoError(t, err)
			assert.Equal(t, codec, res.Compression)
			assert.Equal(t, 2, res.Lines)
			assert.Equal(t, types.Locator(0), res.Start)
			assert.Equal(t, types.Locator(records.Size()), res.End)

			var lines []string
			require.NoError(t, records.Scan(res.Start, func(_ types.Locator, line string) error {
				lines = append(lines, line)
				return nil
			}))
			require.Len(t, lines, 2)
			assert.True(t, strings.HasPrefix(lines[0], "1|Roanoke|"))
			assert.True(t, strings.HasPrefix(lines[1], "2|Salem|"))
		})
	}
}

func TestImporter_SecondImportAppends(t *testing.T) {
	dir, im, _ := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(sample), 0644))

	first, err := im.Import(context.Background(), "a.txt")
	require.NoError(t, err)
	second, err := im.Import(context.Background(), "a.txt")
	require.NoError(t, err)

	assert.Equal(t, first.End, second.Start)
	assert.Greater(t, second.End, second.Start)
}

func TestImporter_MissingSource(t *testing.T) {
	_, im, _ := setup(t)
	res, err := im.Import(context.Background(), "nope.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
	assert.Equal(t, 0, res.Lines)
}

// countingStorage reports every object as absent and records Open calls.
type countingStorage struct {
	existsErr error
	opens     int
}

func (s *countingStorage) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	s.opens++
	return io.NopCloser(strings.NewReader("")), nil
}

func (s *countingStorage) Exists(ctx context.Context, objectPath string) (bool, error) {
	return false, s.existsErr
}

func TestImporter_ChecksExistenceBeforeOpen(t *testing.T) {
	records, err := recordfile.Open(filepath.Join(t.TempDir(), "db.txt"), true)
	require.NoError(t, err)
	defer records.Close()

	store := &countingStorage{}
	res, err := New(store, records).Import(context.Background(), "VA_All.txt.zst")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrObjectNotFound))
	assert.Equal(t, 0, store.opens)
	assert.Equal(t, res.Start, res.End)

	store = &countingStorage{existsErr: storage.ErrDownloadFailed}
	_, err = New(store, records).Import(context.Background(), "VA_All.txt")
	assert.True(t, errors.Is(err, storage.ErrDownloadFailed))
	assert.Equal(t, 0, store.opens)
}

func TestImporter_CorruptStream(t *testing.T) {
	dir, im, _ := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.gz"), []byte("not gzip"), 0644))

	_, err := im.Import(context.Background(), "bad.gz")
	assert.Error(t, err)
}

func TestImporter_HeaderOnly(t *testing.T) {
	dir, im, records := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("FEATURE_ID|FEATURE_NAME\n"), 0644))

	res, err := im.Import(context.Background(), "empty.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Lines)
	assert.Equal(t, int64(0), records.Size())
}
