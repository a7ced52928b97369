package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/specval/internal/errors"
)

// MaxFileSize is the maximum size of a document we'll read (64MB).
// Workspaces with many channels get large, but not this large.
const MaxFileSize = 64 << 20

// ErrFileTooLarge indicates that input exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("input exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast on regular files whose size is already known
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	return ReadAllWithLimit(f)
}

// ReadAllWithLimit reads r until EOF or MaxFileSize+1 bytes.
// Used for stdin and other streams with no known size.
func ReadAllWithLimit(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading input")
	}

	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
