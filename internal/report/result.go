package report

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/schema"
)

// Severity represents the impact of a validation issue.
type Severity int

const (
	// SeverityError indicates a blocking validation failure.
	SeverityError Severity = iota
	// SeverityWarning indicates a recommended but non-blocking issue.
	SeverityWarning
	// SeverityInfo indicates an informational note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Newf("unknown severity %q", string(b))
	}
	return nil
}

// Issue represents a single validation problem.
type Issue struct {
	Severity Severity `json:"severity"`
	// Field is the JSON pointer of the offending value, "" for the root.
	Field   string `json:"field"`
	Message string `json:"message"`
	// Value is the actual value that failed validation (optional).
	Value any `json:"value,omitempty"`
	// Context carries the schema keyword location and similar details.
	Context map[string]string `json:"context,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.Field != "" {
		sb.WriteString("field \"")
		sb.WriteString(i.Field)
		sb.WriteString("\": ")
	}
	sb.WriteString(i.Message)
	if i.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", i.Value)
	}
	return sb.String()
}

// Result aggregates the issues found in one document.
type Result struct {
	Document string  `json:"document"`
	Schema   string  `json:"schema,omitempty"`
	Version  string  `json:"version,omitempty"`
	Valid    bool    `json:"valid"`
	Issues   []Issue `json:"issues"`
}

// NewResult creates an empty, valid result for a document.
func NewResult(document, schemaName, version string) *Result {
	return &Result{
		Document: document,
		Schema:   schemaName,
		Version:  version,
		Valid:    true,
		Issues:   []Issue{},
	}
}

// FromError converts the outcome of a schema validation into a Result.
// A nil err yields a valid result. An *schema.InvalidSpecification yields
// one error issue per violation, in the order the validator reported them.
// Any other error, such as a schema that failed to load, becomes a single
// error issue at the document root.
func FromError(document, schemaName, version string, err error) *Result {
	r := NewResult(document, schemaName, version)
	if err == nil {
		return r
	}

	var invalid *schema.InvalidSpecification
	if errors.As(err, &invalid) {
		if invalid.Version != "" {
			r.Version = invalid.Version
		}
		for _, v := range invalid.Violations {
			r.add(Issue{
				Severity: SeverityError,
				Field:    v.InstanceLocation,
				Message:  v.Message,
				Context:  map[string]string{"keyword": v.KeywordLocation},
			})
		}
		if len(invalid.Violations) == 0 {
			r.AddError("", invalid.Error(), nil)
		}
		return r
	}

	issue := Issue{Severity: SeverityError, Message: err.Error()}
	if errors.Is(err, schema.ErrSchemaLoad) {
		issue.Context = map[string]string{"kind": "schema-load"}
	}
	r.add(issue)
	return r
}

func (r *Result) add(i Issue) {
	r.Issues = append(r.Issues, i)
	if i.Severity == SeverityError {
		r.Valid = false
	}
}

// HasErrors returns true if any issue has SeverityError.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has SeverityWarning.
func (r *Result) HasWarnings() bool {
	if r == nil {
		return false
	}
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// AddError adds an error issue to the result.
func (r *Result) AddError(field, message string, value any) {
	r.add(Issue{Severity: SeverityError, Field: field, Message: message, Value: value})
}

// AddWarning adds a warning issue to the result.
func (r *Result) AddWarning(field, message string, value any) {
	r.add(Issue{Severity: SeverityWarning, Field: field, Message: message, Value: value})
}

// AddInfo adds an info issue to the result.
func (r *Result) AddInfo(field, message string, value any) {
	r.add(Issue{Severity: SeverityInfo, Field: field, Message: message, Value: value})
}

// Errors returns a slice of all issues with SeverityError.
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns a slice of all issues with SeverityWarning.
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			res = append(res, i)
		}
	}
	return res
}
