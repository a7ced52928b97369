package schema

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/specval/internal/errors"
)

func TestComparePointers(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "/a", -1},
		{"/a", "/a/b", -1},
		{"/2", "/10", -1},
		{"/items/10/x", "/items/9/x", 1},
		{"/b", "/a", 1},
		{"/10", "/a", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, comparePointers(tt.a, tt.b))
		})
	}
}

func TestSortViolations(t *testing.T) {
	vs := []Violation{
		{InstanceLocation: "/10", KeywordLocation: "k"},
		{InstanceLocation: "/2", KeywordLocation: "k"},
		{InstanceLocation: "", KeywordLocation: "z"},
		{InstanceLocation: "/2", KeywordLocation: "a"},
	}
	sortViolations(vs)

	var got []string
	for _, v := range vs {
		got = append(got, v.InstanceLocation+"|"+v.KeywordLocation)
	}
	assert.Equal(t, []string{"|z", "/2|a", "/2|k", "/10|k"}, got)
}

func TestInvalidSpecification_ArrayIndexOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"1.0.0/defs.json": {Data: []byte(`{"definitions": {}}`)},
		"1.0.0/list.json": {Data: []byte(`{"type": "array", "items": {"type": "integer"}}`)},
	}
	v := New(NewStore(NewFSLoader(fsys)))

	doc := make([]any, 12)
	for i := range doc {
		doc[i] = json.Number("1")
	}
	doc[2] = "two"
	doc[10] = "ten"

	err := v.Validate(doc, "list.json", "")
	var invalid *InvalidSpecification
	require.True(t, errors.As(err, &invalid), "got %v", err)
	require.Len(t, invalid.Violations, 2)
	assert.Equal(t, "/2", invalid.Path())
	assert.Equal(t, "/10", invalid.Violations[1].InstanceLocation)
}
