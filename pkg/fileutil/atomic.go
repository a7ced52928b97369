// Package fileutil provides bounded reads of input documents and atomic
// writes of reports and rendered schemas.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/specval/internal/errors"
)

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// Interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory, so the rename stays on one filesystem
	tmp, err := os.CreateTemp(dir, ".specval-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	committed = true

	return nil
}

// AtomicWriteJSON writes v as 2-space indented JSON with a trailing newline.
// The file is created with 0644 permissions.
func AtomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	return AtomicWriteFile(path, append(data, '\n'), 0644)
}

// AtomicWriteYAML writes v as YAML. The file is created with 0644 permissions.
func AtomicWriteYAML(path string, v any) (err error) {
	// yaml.Marshal panics on unmarshalable types
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	return AtomicWriteFile(path, data, 0644)
}

// AtomicWriteByExt picks JSON or YAML from the extension of path.
// Anything other than .yaml/.yml is written as JSON.
func AtomicWriteByExt(path string, v any) error {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return AtomicWriteYAML(path, v)
	default:
		return AtomicWriteJSON(path, v)
	}
}
