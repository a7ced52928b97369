package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/schema"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the results to the output. JSON output is always an
// array, even for a single result.
func (r *Reporter) Report(results ...*Result) error {
	nonNil := make([]*Result, 0, len(results))
	for _, res := range results {
		if res != nil {
			nonNil = append(nonNil, res)
		}
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(nonNil)
	default:
		for _, res := range nonNil {
			r.reportText(res)
		}
		return nil
	}
}

func (r *Reporter) reportJSON(results []*Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(results), "encoding JSON report")
}

func (r *Reporter) reportText(result *Result) {
	name := result.Document
	if result.Schema != "" {
		name += color.New(color.FgHiBlack).Sprintf(" (%s %s)", result.Schema, result.Version)
	}

	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintf(r.out, "%s %s\n", color.GreenString("✓"), name)
		return
	}

	errs := result.Errors()
	warnings := result.Warnings()

	summary := []string{}
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}

	mark := color.YellowString("!")
	if len(errs) > 0 {
		mark = color.RedString("✗")
	}
	fmt.Fprintf(r.out, "%s %s: %s\n", mark, name, strings.Join(summary, ", "))

	for _, e := range errs {
		r.printIssue(e, color.FgRed)
	}
	for _, w := range warnings {
		r.printIssue(w, color.FgYellow)
	}
}

func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	printer := color.New(c).SprintFunc()

	// Format:  • field: message (context) [value]

	var sb strings.Builder
	sb.WriteString("  • ")

	if i.Field != "" || i.Severity == SeverityError {
		sb.WriteString(printer(schema.DisplayPath(i.Field)))
		sb.WriteString(": ")
	}

	sb.WriteString(i.Message)

	if len(i.Context) > 0 {
		var ctxParts []string
		for k, v := range i.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%s", k, v))
		}
		// Sort for deterministic output
		sort.Strings(ctxParts)

		sb.WriteString(" ")
		sb.WriteString(color.New(color.FgHiBlack).Sprintf("(%s)", strings.Join(ctxParts, ", ")))
	}

	if i.Value != nil {
		valStr := fmt.Sprintf("%v", i.Value)
		// Truncate long values
		if len(valStr) > 50 {
			valStr = valStr[:47] + "..."
		}
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" [%s]", valStr))
	}

	fmt.Fprintln(r.out, sb.String())
}
