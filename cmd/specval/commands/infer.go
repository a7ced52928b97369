package commands

import (
	"path/filepath"
	"strings"
)

// documentExts are stripped from file names before matching schema names.
var documentExts = []string{".json", ".yaml", ".yml", ".toml"}

// inferSchema picks a schema for file from its base name. A schema
// "patchset.json" matches "patchset.json", "patchset.yaml",
// "signal.patchset.json", "my-patchset.toml" and "my_patchset.json".
// The longest matching schema name wins, so "jsonpatch" is not mistaken
// for "patch".
func inferSchema(file string, schemas []string) (string, bool) {
	base := strings.ToLower(filepath.Base(file))
	for _, ext := range documentExts {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}

	best, bestLen := "", 0
	for _, name := range schemas {
		stem := strings.TrimSuffix(strings.ToLower(name), ".json")
		if matchesStem(base, stem) && len(stem) > bestLen {
			best, bestLen = name, len(stem)
		}
	}
	return best, best != ""
}

func matchesStem(base, stem string) bool {
	if base == stem {
		return true
	}
	for _, sep := range []string{".", "-", "_"} {
		if strings.HasSuffix(base, sep+stem) {
			return true
		}
	}
	return false
}
