package schema

import (
	"embed"
	"io/fs"
)

//go:embed schemas
var bundled embed.FS

// Bundled returns the schema documents compiled into the binary, rooted so
// that "1.0.0/workspace.json" is a valid path.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "schemas")
	if err != nil {
		// "schemas" is a valid, embedded directory name.
		panic(err)
	}
	return sub
}
