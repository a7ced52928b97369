package schema

import (
	"os"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/require"
)

// countingLoader records how often each path is loaded.
type countingLoader struct {
	Loader

	mu     sync.Mutex
	counts map[string]int
}

func newCountingLoader(l Loader) *countingLoader {
	return &countingLoader{Loader: l, counts: make(map[string]int)}
}

func (c *countingLoader) Load(p string) (any, error) {
	c.mu.Lock()
	c.counts[p]++
	c.mu.Unlock()
	return c.Loader.Load(p)
}

// Versions and List forward to the wrapped loader so listing survives
// the wrapper.
func (c *countingLoader) Versions() ([]string, error) {
	return c.Loader.(Lister).Versions()
}

func (c *countingLoader) List(version string) ([]string, error) {
	return c.Loader.(Lister).List(version)
}

func (c *countingLoader) count(p string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[p]
}

func (c *countingLoader) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// testFS is a small schema tree for version 2.0.0.
func testFS() fstest.MapFS {
	return fstest.MapFS{
		"2.0.0/defs.json": {Data: []byte(`{
			"definitions": {
				"X": {
					"type": "object",
					"required": ["a"],
					"properties": {"a": {"type": "integer", "minimum": 1}}
				}
			}
		}`)},
		"2.0.0/a.json": {Data: []byte(`{"$ref": "defs.json#/definitions/X"}`)},
		"2.0.0/inlined.json": {Data: []byte(`{
			"type": "object",
			"required": ["a"],
			"properties": {"a": {"type": "integer", "minimum": 1}}
		}`)},
		"2.0.0/format.json": {Data: []byte(`{"type": "string", "format": "email"}`)},
		"2.0.0/union.json":  {Data: []byte(`{"type": ["string", "null"]}`)},
		"2.0.0/broken.json": {Data: []byte(`{not json`)},
		"3.0.0/orphan.json": {Data: []byte(`{"$ref": "defs.json#/definitions/X"}`)},
	}
}

func readDoc(t *testing.T, path string) any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := jsonschema.UnmarshalJSON(f)
	require.NoError(t, err)
	return doc
}
