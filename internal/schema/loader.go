package schema

import (
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/thoreinstein/specval/internal/errors"
)

// Loader reads a schema document by path. Paths have the form
// "{version}/{name}". Implementations do not cache.
type Loader interface {
	Load(path string) (any, error)
}

// Lister is implemented by loaders that can enumerate their documents.
type Lister interface {
	// Versions returns the available schema versions, sorted.
	Versions() ([]string, error)
	// List returns the schema names available for a version, sorted.
	List(version string) ([]string, error)
}

// FSLoader loads schema documents from a file system.
type FSLoader struct {
	fsys fs.FS
}

// NewFSLoader returns a loader rooted at fsys. Use [Bundled] for the
// schemas shipped with the binary or os.DirFS for a schema directory.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Load reads and parses the document at p.
func (l *FSLoader) Load(p string) (any, error) {
	if !fs.ValidPath(p) {
		return nil, &SchemaLoadError{Path: p, Err: errors.New("invalid schema path")}
	}

	f, err := l.fsys.Open(p)
	if err != nil {
		return nil, &SchemaLoadError{Path: p, Err: err}
	}
	defer f.Close()

	doc, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		return nil, &SchemaLoadError{Path: p, Err: errors.Wrap(err, "parsing JSON")}
	}
	return doc, nil
}

// Versions returns the top-level directories of the file system.
func (l *FSLoader) Versions() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading schema root")
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			versions = append(versions, e.Name())
		}
	}
	slices.Sort(versions)
	return versions, nil
}

// List returns the JSON documents of a version, excluding [DefsName].
func (l *FSLoader) List(version string) ([]string, error) {
	if !fs.ValidPath(version) || strings.Contains(version, "/") {
		return nil, &SchemaLoadError{Path: version, Err: errors.New("invalid schema version")}
	}
	matches, err := fs.Glob(l.fsys, version+"/*.json")
	if err != nil {
		return nil, errors.Wrap(err, "listing schemas")
	}
	if len(matches) == 0 {
		return nil, &SchemaLoadError{Path: version, Err: errors.Wrap(fs.ErrNotExist, "no schemas for version")}
	}

	var names []string
	for _, m := range matches {
		name := path.Base(m)
		if name == DefsName {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
