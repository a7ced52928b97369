package schema

import (
	"io/fs"
	"strings"

	"github.com/thoreinstein/specval/internal/errors"
)

const (
	// DefaultVersion is the schema version used when a caller does not ask
	// for one.
	DefaultVersion = "1.0.0"

	// BaseURL is the URI prefix under which every schema document lives.
	// It matches the $id of the bundled schemas.
	BaseURL = "https://scikit-hep.org/pyhf/schemas/"

	// DefsName is the shared definitions document of every version.
	DefsName = "defs.json"
)

// VersionBaseURI returns the directory URI of a schema version. The trailing
// slash is significant: relative references such as "defs.json" resolve
// against it as siblings.
func VersionBaseURI(version string) string {
	return BaseURL + version + "/"
}

// SchemaURI returns the absolute URI of a named schema in a version.
func SchemaURI(version, name string) string {
	return VersionBaseURI(version) + name
}

// documentKey strips the fragment from a URI.
func documentKey(uri string) string {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i]
	}
	return uri
}

// PathFromURI maps a schema URI to the "{version}/{name}" path a [Loader]
// understands. URIs outside [BaseURL] and paths that would escape the
// schema root are rejected.
func PathFromURI(uri string) (string, error) {
	key := documentKey(uri)
	rel, ok := strings.CutPrefix(key, BaseURL)
	if !ok {
		return "", &SchemaLoadError{Path: key, Err: errors.Newf("URI is outside %s", BaseURL)}
	}
	if !fs.ValidPath(rel) || !strings.Contains(rel, "/") {
		return "", &SchemaLoadError{Path: rel, Err: errors.New("invalid schema path")}
	}
	return rel, nil
}
