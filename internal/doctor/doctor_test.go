package doctor

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/specval/internal/config"
	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
	"github.com/thoreinstein/specval/internal/schema"
)

// stubCheck returns a fixed result.
type stubCheck struct {
	name   string
	result CheckResult
}

func (s stubCheck) Name() string     { return s.name }
func (s stubCheck) Category() string { return "test" }
func (s stubCheck) Run() *CheckResult {
	r := s.result
	return &r
}

func TestRunner_Run(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	r := NewRunner(
		stubCheck{name: "a", result: CheckResult{Status: SeverityPass}},
		stubCheck{name: "b", result: CheckResult{Status: SeverityWarning}},
	)
	r.AddCheck(stubCheck{name: "c", result: CheckResult{Status: SeverityError, Name: "custom"}})
	r.AddCheck(stubCheck{name: "d", result: CheckResult{Status: SeverityInfo}})
	r.now = func() time.Time { return fixed }

	report := r.Run()

	assert.Equal(t, fixed, report.Timestamp)
	require.Len(t, report.Results, 4)
	assert.Equal(t, "a", report.Results[0].Name, "name defaults to the check's")
	assert.Equal(t, "test", report.Results[0].Category)
	assert.Equal(t, "custom", report.Results[2].Name, "explicit names are kept")
	assert.Equal(t, Summary{Passed: 1, Info: 1, Warnings: 1, Errors: 1}, report.Summary)
	assert.True(t, report.HasErrors())
	assert.True(t, report.HasWarnings())
}

func TestRunner_Empty(t *testing.T) {
	report := NewRunner().Run()
	assert.Empty(t, report.Results)
	assert.False(t, report.HasErrors())
	assert.False(t, report.HasWarnings())
}

func TestSeverity_String(t *testing.T) {
	for s, want := range map[Severity]string{
		SeverityPass:    "pass",
		SeverityInfo:    "info",
		SeverityWarning: "warning",
		SeverityError:   "error",
		Severity(42):    "unknown",
	} {
		assert.Equal(t, want, s.String())
		b, err := s.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
}

func TestConfigCheck(t *testing.T) {
	assert.Equal(t, SeverityError, NewConfigCheck(nil, "", errors.New("bad")).Run().Status)
	assert.Equal(t, SeverityInfo, NewConfigCheck(config.Default(), "", nil).Run().Status)

	res := NewConfigCheck(config.Default(), "/etc/specval/config.yaml", nil).Run()
	assert.Equal(t, SeverityPass, res.Status)
	assert.Equal(t, "/etc/specval/config.yaml", res.Details["file"])
}

func TestSchemaChecks_Bundled(t *testing.T) {
	v := schema.New(schema.NewStore(schema.NewFSLoader(schema.Bundled())), schema.WithLogger(logging.ForTest(t)))

	report := NewRunner(SchemaChecks(v)...).Run()

	for _, r := range report.Results {
		assert.Equal(t, SeverityPass, r.Status, "%s: %s", r.Name, r.Message)
	}
	assert.GreaterOrEqual(t, len(report.Results), 2)
}

func TestSchemaChecks_BrokenSet(t *testing.T) {
	fsys := fstest.MapFS{
		"1.0.0/defs.json": {Data: []byte(`{"definitions": {"ok": {"type": "object"}}}`)},
		"1.0.0/ok.json":   {Data: []byte(`{"$ref": "defs.json#/definitions/ok"}`)},
		"1.0.0/bad.json":  {Data: []byte(`{"$ref": "defs.json#/definitions/missing"}`)},
		"0.9.0/defs.json": {Data: []byte(`{"definitions": {}}`)},
		"0.9.0/ok.json":   {Data: []byte(`{"type": "object"}`)},
		"0.1.0/x.json":    {Data: []byte(`{"type": "object"}`)},
	}
	v := schema.New(schema.NewStore(schema.NewFSLoader(fsys)), schema.WithDefaultVersion("2.0.0"), schema.WithLogger(logging.ForTest(t)))

	report := NewRunner(SchemaChecks(v)...).Run()
	byName := map[string]*CheckResult{}
	for _, r := range report.Results {
		byName[r.Name] = r
	}

	require.Contains(t, byName, "default-version")
	assert.Equal(t, SeverityError, byName["default-version"].Status, "2.0.0 is not in the set")

	require.Contains(t, byName, "schemas-1.0.0")
	assert.Equal(t, SeverityError, byName["schemas-1.0.0"].Status)
	assert.Contains(t, byName["schemas-1.0.0"].Message, "bad.json")
	assert.NotContains(t, byName["schemas-1.0.0"].Message, "ok.json")

	require.Contains(t, byName, "schemas-0.9.0")
	assert.Equal(t, SeverityInfo, byName["schemas-0.9.0"].Status, "complete, but not the default version")

	require.Contains(t, byName, "schemas-0.1.0")
	assert.Equal(t, SeverityError, byName["schemas-0.1.0"].Status, "a version without defs.json cannot compile")
	assert.Contains(t, byName["schemas-0.1.0"].Message, "x.json")
}
