package commands

import (
	"github.com/goccy/go-json"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/schema"
)

// pickSchema lets the user choose a schema with a fuzzy finder, previewing
// each schema document.
func pickSchema(a *app, version string) (string, error) {
	if version == "" {
		version = a.validator.DefaultVersion()
	}

	names, err := a.validator.Schemas(version)
	if err != nil {
		return "", errors.NewSystemError(err, "Run 'specval schema list' to see available versions")
	}
	if len(names) == 0 {
		return "", errors.NewUserError(errors.Newf("no schemas for version %s", version), "")
	}

	idx, err := fuzzyfinder.Find(
		names,
		func(i int) string {
			return names[i]
		},
		fuzzyfinder.WithPromptString("schema> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return previewSchema(a, version, names[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", errors.NewUserError(errors.New("no schema selected"), "Pass --schema to skip the picker")
		}
		return "", errors.Wrap(err, "interactive schema selection failed")
	}

	return names[idx], nil
}

func previewSchema(a *app, version, name string) string {
	doc, err := a.store.GetOrLoad(schema.SchemaURI(version, name))
	if err != nil {
		return err.Error()
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(out)
}
