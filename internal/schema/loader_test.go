package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/specval/internal/errors"
)

func TestFSLoader_LoadBundled(t *testing.T) {
	l := NewFSLoader(Bundled())

	for _, name := range []string{"defs.json", "workspace.json", "model.json", "measurement.json", "patchset.json", "jsonpatch.json"} {
		t.Run(name, func(t *testing.T) {
			doc, err := l.Load(DefaultVersion + "/" + name)
			require.NoError(t, err)
			m, ok := doc.(map[string]any)
			require.True(t, ok, "document should be an object, got %T", doc)
			assert.Equal(t, SchemaURI(DefaultVersion, name), m["$id"])
		})
	}
}

func TestFSLoader_LoadErrors(t *testing.T) {
	l := NewFSLoader(testFS())

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "2.0.0/nope.json"},
		{"missing version", "9.9.9/workspace.json"},
		{"malformed JSON", "2.0.0/broken.json"},
		{"escaping path", "../2.0.0/a.json"},
		{"absolute path", "/2.0.0/a.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaLoad), "error should match ErrSchemaLoad: %v", err)

			var loadErr *SchemaLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.path, loadErr.Path)
		})
	}
}

func TestFSLoader_List(t *testing.T) {
	l := NewFSLoader(Bundled())

	names, err := l.List(DefaultVersion)
	require.NoError(t, err)
	assert.Equal(t, []string{"jsonpatch.json", "measurement.json", "model.json", "patchset.json", "workspace.json"}, names)

	_, err = l.List("9.9.9")
	assert.True(t, errors.Is(err, ErrSchemaLoad))

	_, err = l.List("../etc")
	assert.True(t, errors.Is(err, ErrSchemaLoad))
}

func TestFSLoader_Versions(t *testing.T) {
	versions, err := NewFSLoader(testFS()).Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0.0", "3.0.0"}, versions)

	versions, err = NewFSLoader(Bundled()).Versions()
	require.NoError(t, err)
	assert.Contains(t, versions, DefaultVersion)
}

func TestPathFromURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    string
		wantErr bool
	}{
		{"schema", SchemaURI("1.0.0", "workspace.json"), "1.0.0/workspace.json", false},
		{"fragment stripped", SchemaURI("1.0.0", "defs.json") + "#/definitions/channel", "1.0.0/defs.json", false},
		{"foreign host", "https://example.com/1.0.0/defs.json", "", true},
		{"parent escape", BaseURL + "1.0.0/../../x.json", "", true},
		{"no version", BaseURL + "defs.json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PathFromURI(tt.uri)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrSchemaLoad), "want ErrSchemaLoad, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
