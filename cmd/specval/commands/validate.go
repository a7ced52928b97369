package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/specval/internal/document"
	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
	"github.com/thoreinstein/specval/internal/paths"
	"github.com/thoreinstein/specval/internal/report"
	"github.com/thoreinstein/specval/internal/schema"
	"github.com/thoreinstein/specval/internal/watch"
	"github.com/thoreinstein/specval/pkg/fileutil"
)

var (
	validateSchema      string
	validateVersion     string
	validateJSON        bool
	validateWatch       bool
	validateInteractive bool
	validateReport      string
)

var errValidationFailed = errors.New("validation failed")

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "",
		"schema to validate against, e.g. workspace.json (default: inferred from file name)")
	validateCmd.Flags().StringVar(&validateVersion, "version", "",
		"schema version (default from config)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false,
		"output results as JSON")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false,
		"re-validate files when they change")
	validateCmd.Flags().BoolVarP(&validateInteractive, "interactive", "i", false,
		"pick the schema with a fuzzy finder")
	validateCmd.Flags().StringVar(&validateReport, "report", "",
		"also write the JSON report to this file")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate documents against a schema",
	Long: `Validate one or more documents against a versioned JSON schema.

Documents may be JSON, YAML or TOML, chosen by extension; "-" reads JSON
from stdin. Without --schema the schema is inferred from each file name
(workspace.json, signal.model.yaml, my-patchset.json, ...).

Exit codes:
  0 - All documents valid
  1 - At least one document is invalid or could not be read
  2 - A schema could not be loaded`,
	Example: `  # Validate a workspace
  specval validate workspace.json

  # Validate YAML from another tool
  make-model | specval validate --schema model.json -

  # JSON output for CI/CD
  specval validate --json --report report.json *.workspace.json

  # Re-validate on save
  specval validate --watch workspace.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}

		schemaName := validateSchema
		if schemaName == "" && validateInteractive {
			schemaName, err = pickSchema(a, validateVersion)
			if err != nil {
				return err
			}
		}

		format := report.FormatText
		if validateJSON {
			format = report.FormatJSON
		}
		opts := validateOptions{
			schema:  schemaName,
			version: validateVersion,
			format:  format,
			report:  validateReport,
		}

		runErr := runValidate(cmd.OutOrStdout(), a, args, opts)
		if !validateWatch {
			return runErr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchAndValidate(ctx, cmd.OutOrStdout(), a, args, opts)
	},
}

type validateOptions struct {
	schema  string
	version string
	format  report.Format
	report  string
}

// runValidate validates every file and reports the results. The returned
// error carries exit code 2 when a schema failed to load, 1 when any
// document is invalid or unreadable.
func runValidate(w io.Writer, a *app, files []string, opts validateOptions) error {
	results := make([]*report.Result, 0, len(files))
	failed := 0
	var loadErr error

	for _, file := range files {
		res, err := validateFile(a, file, opts)
		results = append(results, res)
		if !res.Valid {
			failed++
		}
		if err != nil && errors.Is(err, schema.ErrSchemaLoad) && loadErr == nil {
			loadErr = err
		}
	}

	if err := report.NewReporter(w, opts.format).Report(results...); err != nil {
		return errors.NewSystemError(err, "")
	}
	if opts.report != "" {
		if err := paths.EnsureDir(filepath.Dir(opts.report), 0o755); err != nil {
			return errors.NewSystemError(err, "Check the --report path")
		}
		if err := fileutil.AtomicWriteJSON(opts.report, results); err != nil {
			return errors.NewSystemError(err, "Check the --report path")
		}
	}

	switch {
	case loadErr != nil:
		return errors.NewSystemError(loadErr, "Check --version and schema_root; run 'specval schema list' to see what is available")
	case failed > 0:
		return errors.NewExitError(errors.Wrapf(errValidationFailed, "%d of %d document(s)", failed, len(files)), errors.ExitUser)
	default:
		return nil
	}
}

// validateFile validates a single document. The result is always non-nil;
// err is the validation or read error it was built from.
func validateFile(a *app, file string, opts validateOptions) (*report.Result, error) {
	version := opts.version
	if version == "" {
		version = a.validator.DefaultVersion()
	}

	name := opts.schema
	if name == "" {
		names, err := a.validator.Schemas(version)
		if err != nil {
			return report.FromError(file, "", version, err), err
		}
		inferred, ok := inferSchema(file, names)
		if !ok {
			err := errors.Newf("cannot infer schema from file name %q", file)
			res := report.FromError(file, "", version, err)
			res.Issues[0].Context = map[string]string{"hint": "pass --schema"}
			return res, err
		}
		name = inferred
	}

	doc, err := document.ReadFile(file)
	if err != nil {
		res := report.FromError(file, name, version, err)
		res.Issues[0].Context = map[string]string{"kind": "decode"}
		return res, err
	}

	err = a.validator.Validate(doc, name, version)
	res := report.FromError(file, name, version, err)
	logging.WithSchema(logging.WithDocument(a.logger, file), name, version).Debug("document checked",
		"valid", res.Valid, "issues", len(res.Issues))
	if version != a.validator.DefaultVersion() {
		res.AddWarning("", "schema version is not the latest ("+a.validator.DefaultVersion()+")", version)
	}
	return res, err
}

// watchAndValidate re-validates each file as it changes until ctx ends.
func watchAndValidate(ctx context.Context, w io.Writer, a *app, files []string, opts validateOptions) error {
	logger := logging.FromContext(ctx)

	var watched []string
	for _, f := range files {
		if f != document.Stdin {
			watched = append(watched, f)
		}
	}
	if len(watched) == 0 {
		return errors.NewUserError(errors.New("nothing to watch"), "--watch cannot follow stdin")
	}

	watcher, err := watch.New(watch.Config{Paths: watched, Debounce: a.cfg.Watch.Debounce}, logger)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	defer watcher.Close()

	fmt.Fprintln(w, "Watching for changes. Press Ctrl+C to stop.")
	err = watcher.Watch(ctx, func(path string) error {
		runErr := runValidate(w, a, []string{path}, opts)
		if runErr != nil {
			logger.Debug("re-validation finished with errors", logging.Document(path), slog.Any("error", runErr))
		}
		return nil
	})
	return errors.Wrap(err, "watching files")
}
