package schema

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
)

func newBundledValidator(t *testing.T) (*Validator, *countingLoader) {
	t.Helper()
	loader := newCountingLoader(NewFSLoader(Bundled()))
	return New(NewStore(loader), WithLogger(logging.ForTest(t))), loader
}

func newTestValidator(t *testing.T) (*Validator, *countingLoader) {
	t.Helper()
	loader := newCountingLoader(NewFSLoader(testFS()))
	return New(NewStore(loader), WithDefaultVersion("2.0.0"), WithLogger(logging.ForTest(t))), loader
}

func TestValidate_ValidDocuments(t *testing.T) {
	v, _ := newBundledValidator(t)

	tests := []struct {
		schema string
		doc    any
	}{
		{"workspace.json", readDoc(t, "testdata/workspace.json")},
		{"patchset.json", readDoc(t, "testdata/patchset.json")},
		{"measurement.json", map[string]any{
			"name":   "Measurement",
			"config": map[string]any{"poi": "mu", "parameters": []any{map[string]any{"name": "mu", "bounds": []any{[]any{0, 10}}}}},
		}},
		{"model.json", map[string]any{
			"channels": []any{map[string]any{
				"name": "ch",
				"samples": []any{map[string]any{
					"name": "s", "data": []any{1.5}, "modifiers": []any{map[string]any{"name": "lumi", "type": "lumi", "data": nil}},
				}},
			}},
		}},
		{"jsonpatch.json", []any{map[string]any{"op": "remove", "path": "/channels/0"}}},
	}
	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			assert.NoError(t, v.Validate(tt.doc, tt.schema, ""))
		})
	}
}

func TestValidate_MissingRequiredAtRoot(t *testing.T) {
	v, _ := newBundledValidator(t)
	doc := map[string]any{"channels": []any{}, "measurements": []any{}}

	err := v.Validate(doc, "workspace.json", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSpecification))
	assert.False(t, errors.Is(err, ErrSchemaLoad))

	var invalid *InvalidSpecification
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "workspace.json", invalid.SchemaName)
	assert.Equal(t, DefaultVersion, invalid.Version)
	assert.Equal(t, "", invalid.Path(), "first violation should be at the document root")
	assert.Contains(t, invalid.Reason(), "observations")
	assert.Contains(t, invalid.Error(), "document failed workspace.json validation at (root)")
	require.Error(t, invalid.Err)
	assert.Equal(t, invalid.Err, errors.Unwrap(invalid))

	var found bool
	for _, vio := range invalid.Violations {
		if vio.InstanceLocation == "" && strings.HasSuffix(vio.KeywordLocation, "/required") {
			found = true
		}
	}
	assert.True(t, found, "expected a required violation at the root: %+v", invalid.Violations)
}

func TestValidate_NestedViolationPath(t *testing.T) {
	v, _ := newBundledValidator(t)
	doc := readDoc(t, "testdata/workspace.json").(map[string]any)
	doc["observations"] = []any{map[string]any{"name": "singlechannel", "data": "not-an-array"}}

	err := v.Validate(doc, "workspace.json", "")
	var invalid *InvalidSpecification
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Equal(t, "/observations/0/data", invalid.Path())
	assert.Contains(t, invalid.Violations[0].KeywordLocation, "defs.json#/definitions/observation")
}

func TestValidate_CrossDocumentRef(t *testing.T) {
	v, loader := newBundledValidator(t)
	doc := readDoc(t, "testdata/patchset.json").(map[string]any)
	patch := doc["patches"].([]any)[0].(map[string]any)
	patch["patch"] = []any{map[string]any{"op": "frobnicate", "path": "/x"}}

	err := v.Validate(doc, "patchset.json", "")
	var invalid *InvalidSpecification
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Equal(t, "/patches/0/patch/0/op", invalid.Path())
	assert.Equal(t, 1, loader.count(DefaultVersion+"/jsonpatch.json"))
}

func TestValidate_UnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	v := New(NewStore(NewFSLoader(Bundled())), WithLogger(logger))

	err := v.Validate(map[string]any{}, "workspace.json", "9.9.9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaLoad), "got %v", err)
	assert.False(t, errors.Is(err, ErrInvalidSpecification))

	var invalid *InvalidSpecification
	assert.False(t, errors.As(err, &invalid))
	assert.Contains(t, buf.String(), "requested version 9.9.9 but latest is 1.0.0")
}

func TestValidate_VersionFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	v := New(NewStore(NewFSLoader(Bundled())), WithLogger(logger))
	invalidDoc := map[string]any{"channels": []any{}}

	implicit := v.Validate(invalidDoc, "workspace.json", "")
	explicit := v.Validate(invalidDoc, "workspace.json", DefaultVersion)
	require.Error(t, implicit)
	assert.Equal(t, implicit.Error(), explicit.Error())

	var a, b *InvalidSpecification
	require.True(t, errors.As(implicit, &a))
	require.True(t, errors.As(explicit, &b))
	assert.Equal(t, a.Violations, b.Violations)
	assert.Empty(t, buf.String(), "the default version must not warn")
}

func TestValidate_OlderVersionWarnsAndProceeds(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	v := New(NewStore(NewFSLoader(testFS())), WithDefaultVersion("3.0.0"), WithLogger(logger))

	require.NoError(t, v.Validate(map[string]any{"a": 2}, "a.json", "2.0.0"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "requested version 2.0.0 but latest is 3.0.0")
	assert.Contains(t, buf.String(), "schema=a.json version=2.0.0")
}

func TestValidate_CacheCorrectness(t *testing.T) {
	v, loader := newBundledValidator(t)
	valid := readDoc(t, "testdata/workspace.json")

	require.NoError(t, v.Validate(valid, "workspace.json", ""))
	loadsAfterFirst := loader.total()
	require.Positive(t, loadsAfterFirst)

	err := v.Validate(map[string]any{"channels": []any{}}, "workspace.json", "")
	assert.True(t, errors.Is(err, ErrInvalidSpecification), "second call must still validate fully")
	require.NoError(t, v.Validate(valid, "workspace.json", ""))

	assert.Equal(t, loadsAfterFirst, loader.total(), "loader must not be invoked again")
	assert.Equal(t, 1, loader.count(DefaultVersion+"/workspace.json"))
	assert.Equal(t, 1, loader.count(DefaultVersion+"/defs.json"))
}

func TestValidate_SharedStoreAcrossSchemas(t *testing.T) {
	v, loader := newBundledValidator(t)

	require.NoError(t, v.Validate(readDoc(t, "testdata/workspace.json"), "workspace.json", ""))
	require.NoError(t, v.Validate(readDoc(t, "testdata/patchset.json"), "patchset.json", ""))

	assert.Equal(t, 1, loader.count(DefaultVersion+"/defs.json"), "defs.json is shared by every schema of a version")
}

func TestValidate_IdempotentAndNonMutating(t *testing.T) {
	v, _ := newBundledValidator(t)
	doc := map[string]any{"channels": []any{}, "measurements": []any{}}
	snapshot, err := json.Marshal(doc)
	require.NoError(t, err)

	defsBefore, err := v.Store().GetOrLoad(SchemaURI(DefaultVersion, DefsName))
	require.NoError(t, err)
	defsSnapshot, err := json.Marshal(defsBefore)
	require.NoError(t, err)

	first := v.Validate(doc, "workspace.json", "")
	second := v.Validate(doc, "workspace.json", "")
	require.Error(t, first)
	assert.Equal(t, first.Error(), second.Error())

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot), string(after))

	defsAfter, err := v.Store().GetOrLoad(SchemaURI(DefaultVersion, DefsName))
	require.NoError(t, err)
	assert.Equal(t, reflect.ValueOf(defsBefore).Pointer(), reflect.ValueOf(defsAfter).Pointer())
	defsAfterSnapshot, err := json.Marshal(defsAfter)
	require.NoError(t, err)
	assert.JSONEq(t, string(defsSnapshot), string(defsAfterSnapshot))
}

func TestValidate_RefMatchesInlined(t *testing.T) {
	v, _ := newTestValidator(t)

	docs := []any{
		map[string]any{"a": 1},
		map[string]any{"a": 0},
		map[string]any{"a": "one"},
		map[string]any{"b": 1},
		map[string]any{},
		[]any{},
		"a",
	}
	for _, doc := range docs {
		refErr := v.Validate(doc, "a.json", "")
		inlineErr := v.Validate(doc, "inlined.json", "")
		assert.Equal(t, refErr == nil, inlineErr == nil, "doc %v: ref=%v inline=%v", doc, refErr, inlineErr)

		var refInvalid, inlineInvalid *InvalidSpecification
		if errors.As(refErr, &refInvalid) && errors.As(inlineErr, &inlineInvalid) {
			assert.Equal(t, inlineInvalid.Path(), refInvalid.Path())
			assert.Equal(t, inlineInvalid.Reason(), refInvalid.Reason())
		}
	}
}

func TestValidate_FormatNotAsserted(t *testing.T) {
	v, _ := newTestValidator(t)
	assert.NoError(t, v.Validate("definitely not an email", "format.json", ""))
	assert.True(t, errors.Is(v.Validate(42, "format.json", ""), ErrInvalidSpecification))
}

func TestValidate_TypeUnion(t *testing.T) {
	v, _ := newTestValidator(t)
	assert.NoError(t, v.Validate("x", "union.json", ""))
	assert.NoError(t, v.Validate(nil, "union.json", ""))
	assert.True(t, errors.Is(v.Validate(1, "union.json", ""), ErrInvalidSpecification))
}

func TestValidate_SchemaLoadFailures(t *testing.T) {
	v, _ := newTestValidator(t)

	tests := []struct {
		name    string
		schema  string
		version string
	}{
		{"missing schema", "nope.json", ""},
		{"malformed schema", "broken.json", ""},
		{"missing defs", "orphan.json", "3.0.0"},
		{"path escape", "../2.0.0/a.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(map[string]any{"a": 1}, tt.schema, tt.version)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaLoad), "got %v", err)
		})
	}
}

func TestValidate_Concurrent(t *testing.T) {
	v, loader := newBundledValidator(t)
	valid := readDoc(t, "testdata/workspace.json")

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Go(func() {
			var err error
			if i%2 == 0 {
				err = v.Validate(valid, "workspace.json", "")
			} else {
				err = v.Validate(map[string]any{}, "workspace.json", "")
				if errors.Is(err, ErrInvalidSpecification) {
					err = nil
				}
			}
			if err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, loader.count(DefaultVersion+"/workspace.json"))
}

func TestValidate_Observer(t *testing.T) {
	obs := &validationRecorder{}
	v := New(NewStore(NewFSLoader(Bundled())), WithObserver(obs), WithLogger(logging.NewDiscard()))

	_ = v.Validate(readDoc(t, "testdata/workspace.json"), "workspace.json", "")
	_ = v.Validate(map[string]any{}, "workspace.json", "")

	assert.Equal(t, []bool{true, false}, obs.outcomes)
}

type validationRecorder struct {
	NopObserver
	outcomes []bool
}

func (r *validationRecorder) Validated(_, _ string, err error) {
	r.outcomes = append(r.outcomes, err == nil)
}

func TestValidator_Listing(t *testing.T) {
	v, _ := newTestValidator(t)

	names, err := v.Schemas("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "broken.json", "format.json", "inlined.json", "union.json"}, names)

	versions, err := v.Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0.0", "3.0.0"}, versions)

	r, err := v.Resolver("")
	require.NoError(t, err)
	x, err := r.Resolve("defs.json#/definitions/X/required/0")
	require.NoError(t, err)
	assert.Equal(t, "a", x)
}

// loadOnly hides every method of the wrapped loader except Load.
type loadOnly struct{ Loader }

func TestValidator_ListingRequiresLister(t *testing.T) {
	fsLoader := NewFSLoader(testFS())

	v := New(NewStore(loadOnly{fsLoader}), WithDefaultVersion("2.0.0"))
	_, err := v.Versions()
	assert.True(t, errors.Is(err, ErrNotListable), "got %v", err)
	_, err = v.Schemas("")
	assert.True(t, errors.Is(err, ErrNotListable), "got %v", err)

	v = New(NewStore(loadOnly{fsLoader}, WithLister(fsLoader)), WithDefaultVersion("2.0.0"))
	versions, err := v.Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0.0", "3.0.0"}, versions)
	names, err := v.Schemas("")
	require.NoError(t, err)
	assert.Contains(t, names, "a.json")
}

func TestPackageValidate(t *testing.T) {
	assert.NoError(t, Validate(readDoc(t, "testdata/workspace.json"), "workspace.json", ""))
	assert.True(t, errors.Is(Validate(map[string]any{}, "model.json", ""), ErrInvalidSpecification))
}

func TestValidator_Compile(t *testing.T) {
	v, loader := newTestValidator(t)

	require.NoError(t, v.Compile("a.json", ""))
	require.NoError(t, v.Validate(map[string]any{"a": 1}, "a.json", ""))
	assert.Equal(t, 1, loader.count("2.0.0/a.json"), "compile and validate share the cached schema")

	err := v.Compile("broken.json", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaLoad))

	err = v.Compile("orphan.json", "3.0.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaLoad), "a missing defs.json is a load failure")
}
