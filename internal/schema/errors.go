package schema

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/thoreinstein/specval/internal/errors"
)

// Sentinel errors matched by the typed errors of this package.
var (
	// ErrSchemaLoad indicates a schema document could not be found, read or
	// compiled.
	ErrSchemaLoad = errors.New("schema could not be loaded")

	// ErrInvalidSpecification indicates a document does not conform to its
	// schema.
	ErrInvalidSpecification = errors.New("invalid specification")

	// ErrNotListable indicates a store has no way to enumerate its schemas.
	ErrNotListable = errors.New("loader cannot list schemas")
)

var printer = message.NewPrinter(language.English)

// SchemaLoadError reports a schema that could not be loaded.
type SchemaLoadError struct {
	// Path is the loader path or URI that failed.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("loading schema %s: %v", e.Path, e.Err)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrSchemaLoad].
func (e *SchemaLoadError) Is(target error) bool {
	return target == ErrSchemaLoad
}

// Violation is a single failed constraint.
type Violation struct {
	// InstanceLocation is the JSON pointer of the offending value in the
	// document. The empty string is the document root.
	InstanceLocation string `json:"instance_location"`
	// KeywordLocation is the absolute location of the failing keyword.
	KeywordLocation string `json:"keyword_location"`
	// Message describes the failure, e.g. "missing property 'name'".
	Message string `json:"message"`
}

// InvalidSpecification is returned when a document violates its schema.
type InvalidSpecification struct {
	// SchemaName is the schema the document was checked against.
	SchemaName string
	// Version is the schema version that was used.
	Version string
	// Violations holds the leaf constraint failures, ordered by instance
	// location. It is never empty.
	Violations []Violation
	// Err is the engine's full report as a plain error. It never holds an
	// engine type.
	Err error
}

func (e *InvalidSpecification) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document failed %s validation at %s: %s", e.SchemaName, DisplayPath(e.Path()), e.Reason())
	if n := len(e.Violations) - 1; n > 0 {
		fmt.Fprintf(&sb, " (and %d more)", n)
	}
	return sb.String()
}

// Is reports whether target is [ErrInvalidSpecification].
func (e *InvalidSpecification) Is(target error) bool {
	return target == ErrInvalidSpecification
}

// Path returns the instance location of the first violation.
func (e *InvalidSpecification) Path() string {
	if len(e.Violations) == 0 {
		return ""
	}
	return e.Violations[0].InstanceLocation
}

// Reason returns the message of the first violation.
func (e *InvalidSpecification) Reason() string {
	if len(e.Violations) == 0 {
		return "document is invalid"
	}
	return e.Violations[0].Message
}

func (e *InvalidSpecification) Unwrap() error {
	return e.Err
}

// DisplayPath renders an instance location for humans.
func DisplayPath(pointer string) string {
	if pointer == "" {
		return "(root)"
	}
	return pointer
}

func newInvalidSpecification(verr *jsonschema.ValidationError, schemaName, version string) *InvalidSpecification {
	return &InvalidSpecification{
		SchemaName: schemaName,
		Version:    version,
		Violations: collectViolations(verr),
		Err:        errors.New(verr.Error()),
	}
}

// collectViolations flattens the engine's error tree into its leaves.
func collectViolations(verr *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{
				InstanceLocation: jsonPointer(e.InstanceLocation),
				KeywordLocation:  keywordLocation(e),
				Message:          e.ErrorKind.LocalizedString(printer),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)

	sortViolations(out)
	return out
}

// sortViolations orders violations by instance location in document order,
// then by keyword location.
func sortViolations(vs []Violation) {
	slices.SortStableFunc(vs, func(a, b Violation) int {
		if c := comparePointers(a.InstanceLocation, b.InstanceLocation); c != 0 {
			return c
		}
		return strings.Compare(a.KeywordLocation, b.KeywordLocation)
	})
}

// comparePointers compares JSON pointers token by token. Array indices
// compare numerically and a pointer sorts before its descendants.
func comparePointers(a, b string) int {
	if a == b {
		return 0
	}
	at := strings.Split(strings.TrimPrefix(a, "/"), "/")
	bt := strings.Split(strings.TrimPrefix(b, "/"), "/")
	if a == "" {
		at = nil
	}
	if b == "" {
		bt = nil
	}
	for i := 0; i < len(at) && i < len(bt); i++ {
		if c := compareTokens(at[i], bt[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(at), len(bt))
}

func compareTokens(a, b string) int {
	ai, aerr := strconv.ParseUint(a, 10, 64)
	bi, berr := strconv.ParseUint(b, 10, 64)
	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}
	return strings.Compare(a, b)
}

func keywordLocation(e *jsonschema.ValidationError) string {
	loc := e.SchemaURL
	if !strings.Contains(loc, "#") {
		loc += "#"
	}
	for _, tok := range e.ErrorKind.KeywordPath() {
		loc += "/" + escapePointerToken(tok)
	}
	return loc
}

func jsonPointer(tokens []string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteByte('/')
		sb.WriteString(escapePointerToken(tok))
	}
	return sb.String()
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointerToken(tok string) string {
	return pointerEscaper.Replace(tok)
}

func unescapePointerToken(tok string) string {
	return pointerUnescaper.Replace(tok)
}
