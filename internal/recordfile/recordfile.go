// Package recordfile provides the append-only record store: one record per
// newline-terminated line, addressed by the byte offset where the line starts.
package recordfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
	"github.com/gisdb/gisdb/pkg/types"
)

// File is an open record store. It is not safe for concurrent use.
type File struct {
	path string
	file *os.File
	w    *bufio.Writer
	size int64
}

// Open opens or creates the record file at path. With reset the file is
// truncated. An existing file without a trailing newline is terminated so the
// next record starts on its own line.
func Open(path string, reset bool) (*File, error) {
	flags := os.O_RDWR | os.O_CREATE
	if reset {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, gisErrors.NewStorageError(gisErrors.CodeWriteFailed,
			fmt.Sprintf("failed to open record file %s", path), err)
	}

	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, gisErrors.NewStorageError(gisErrors.CodeReadFailed, "failed to seek record file", err)
	}

	f := &File{path: path, file: file, w: bufio.NewWriter(file), size: size}
	if size > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, size-1); err != nil {
			file.Close()
			return nil, gisErrors.NewStorageError(gisErrors.CodeReadFailed, "failed to read record file tail", err)
		}
		if last[0] != '\n' {
			if err := f.write("\n"); err != nil {
				file.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Size returns the logical size in bytes, including unflushed appends.
func (f *File) Size() int64 {
	return f.size
}

// Append writes line as a new record and returns its locator.
func (f *File) Append(line string) (types.Locator, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.ContainsAny(line, "\r\n") {
		return 0, gisErrors.NewValidationError(gisErrors.CodeInvalidRecord, "record contains a line break")
	}
	loc := types.Locator(f.size)
	if err := f.write(line + "\n"); err != nil {
		return 0, err
	}
	return loc, nil
}

func (f *File) write(s string) error {
	n, err := f.w.WriteString(s)
	f.size += int64(n)
	if err != nil {
		return gisErrors.NewStorageError(gisErrors.CodeWriteFailed, "failed to append record", err)
	}
	return nil
}

// Flush pushes buffered appends to the file.
func (f *File) Flush() error {
	if err := f.w.Flush(); err != nil {
		return gisErrors.NewStorageError(gisErrors.CodeWriteFailed, "failed to flush record file", err)
	}
	return nil
}

// ReadAt returns the record starting at loc, without its newline.
func (f *File) ReadAt(loc types.Locator) (string, error) {
	if int64(loc) >= f.size {
		return "", gisErrors.NewStorageError(gisErrors.CodeReadFailed,
			fmt.Sprintf("locator %d beyond end of record file (%d bytes)", loc, f.size), nil)
	}
	if err := f.Flush(); err != nil {
		return "", err
	}
	r := bufio.NewReader(io.NewSectionReader(f.file, int64(loc), f.size-int64(loc)))
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", gisErrors.NewStorageError(gisErrors.CodeReadFailed,
			fmt.Sprintf("failed to read record at %d", loc), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Scan calls fn for every record starting at or after from, in file order.
// from must be the start of a record. Scanning stops at the first error fn
// returns.
func (f *File) Scan(from types.Locator, fn func(loc types.Locator, line string) error) error {
	if err := f.Flush(); err != nil {
		return err
	}
	if int64(from) >= f.size {
		return nil
	}
	r := bufio.NewReader(io.NewSectionReader(f.file, int64(from), f.size-int64(from)))
	offset := int64(from)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			if ferr := fn(types.Locator(offset), strings.TrimRight(line, "\r\n")); ferr != nil {
				return ferr
			}
			offset += int64(len(line))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return gisErrors.NewStorageError(gisErrors.CodeReadFailed,
				fmt.Sprintf("failed to scan record file at %d", offset), err)
		}
	}
}

// Close flushes, syncs and closes the file.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	if err := f.Flush(); err != nil {
		return err
	}
	if err := f.file.Sync(); err != nil {
		return gisErrors.NewStorageError(gisErrors.CodeWriteFailed, "failed to fsync record file", err)
	}
	err := f.file.Close()
	f.file = nil
	if err != nil {
		return gisErrors.NewStorageError(gisErrors.CodeWriteFailed, "failed to close record file", err)
	}
	return nil
}
