package commands

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/specval/internal/config"
	"github.com/thoreinstein/specval/internal/doctor"
	"github.com/thoreinstein/specval/internal/errors"
)

var (
	doctorJSON bool
	doctorAll  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show all checks including passed ones")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and schema set issues",
	Long: `Run diagnostic checks on the specval configuration and schema set.

Checks that the config file loads, that the default schema version exists,
and that every schema of every version compiles.

Exit codes:
  0 - No errors (warnings and info are OK)
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDoctor(cmd, cmd.OutOrStdout())
	},
}

func runDoctor(cmd *cobra.Command, w io.Writer) error {
	checks := []doctor.Check{doctor.NewConfigCheck(cfg, config.FileUsed(), configLoadErr)}

	a, err := getApp(cmd.Context())
	if err != nil {
		return err
	}
	checks = append(checks, doctor.SchemaChecks(a.validator)...)

	report := doctor.NewRunner(checks...).Run()

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		writeDoctorText(w, report, doctorAll)
	}

	if report.HasErrors() {
		return errors.NewSystemError(errors.Newf("%d check(s) failed", report.Summary.Errors), "")
	}
	return nil
}

func writeDoctorText(w io.Writer, report *doctor.Report, showAll bool) {
	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
