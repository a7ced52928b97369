package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/specval/internal/config"
	"github.com/thoreinstein/specval/internal/logging"
)

const validWorkspace = "../../../internal/schema/testdata/workspace.json"

// testApp builds an app over the bundled schemas with default config.
func testApp(t *testing.T) *app {
	t.Helper()
	a, err := newApp(config.Default(), logging.ForTest(t))
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	return a
}

// writeFile writes content to name inside a fresh temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
