// Package report renders validation outcomes for people and machines.
//
// A [Result] collects the [Issue]s found in one document. [FromError]
// builds a Result from the error returned by schema validation, with one
// error issue per schema violation:
//
//	err := v.Validate(doc, "workspace.json", "")
//	result := report.FromError("workspace.json", "workspace.json", "1.0.0", err)
//	_ = report.NewReporter(os.Stdout, report.FormatText).Report(result)
//
// Text output is coloured when the terminal supports it (fatih/color
// honours NO_COLOR); JSON output is a stable array of results.
package report
