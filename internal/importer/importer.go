// Package importer copies GNIS feature files from object storage into the
// record file.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"log"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
	"github.com/gisdb/gisdb/internal/recordfile"
	"github.com/gisdb/gisdb/internal/storage"
	"github.com/gisdb/gisdb/pkg/types"
)

// maxLineBytes bounds a single record line.
const maxLineBytes = 1 << 20

// Result describes one import. Records occupy [Start, End) in the record file.
type Result struct {
	Source      string        `json:"source"`
	Compression Compression   `json:"compression"`
	Start       types.Locator `json:"start"`
	End         types.Locator `json:"end"`
	Lines       int           `json:"lines"`
}

// Importer appends feature files to a record file.
type Importer struct {
	storage storage.ObjectStorage
	records *recordfile.File
}

// New creates an importer reading from store and writing to records.
func New(store storage.ObjectStorage, records *recordfile.File) *Importer {
	return &Importer{storage: store, records: records}
}

// Import copies every line after the header of source into the record file.
// Blank lines are skipped. On error, records appended before the failure
// remain in the file and are reported in the partial result.
func (im *Importer) Import(ctx context.Context, source string) (*Result, error) {
	res := &Result{
		Source:      source,
		Compression: DetectCompression(source),
		Start:       types.Locator(im.records.Size()),
	}
	res.End = res.Start

	exists, err := im.storage.Exists(ctx, source)
	if err != nil {
		return res, err
	}
	if !exists {
		return res, gisErrors.NewStorageError(gisErrors.CodeObjectNotFound,
			fmt.Sprintf("import source %s not found", source), nil)
	}

	raw, err := im.storage.Open(ctx, source)
	if err != nil {
		return res, err
	}
	rc, err := decompress(raw, res.Compression)
	if err != nil {
		raw.Close()
		return res, gisErrors.NewStorageError(gisErrors.CodeReadFailed,
			fmt.Sprintf("failed to open %s stream for %s", res.Compression, source), err)
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := scanner.Text()
		if line == "" || line == "\r" {
			continue
		}
		if _, err := im.records.Append(line); err != nil {
			return res, err
		}
		res.Lines++
		res.End = types.Locator(im.records.Size())
	}
	if err := scanner.Err(); err != nil {
		return res, gisErrors.NewStorageError(gisErrors.CodeReadFailed,
			fmt.Sprintf("failed to read %s", source), err)
	}
	if err := im.records.Flush(); err != nil {
		return res, err
	}

	log.Printf("importer: appended %d records from %s (%s) at [%d, %d)",
		res.Lines, source, res.Compression, res.Start, res.End)
	return res, nil
}
