package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/schema"
	"github.com/thoreinstein/specval/pkg/fileutil"
)

var (
	schemaVersion string
	schemaOutput  string
	schemaURIOnly bool
)

func init() {
	schemaCmd.PersistentFlags().StringVar(&schemaVersion, "version", "",
		"schema version (default from config)")
	schemaShowCmd.Flags().StringVarP(&schemaOutput, "output", "o", "",
		"write the schema to a file (.json, .yaml) instead of stdout")
	schemaResolveCmd.Flags().BoolVar(&schemaURIOnly, "uri", false,
		"print only the absolute URI of the reference")

	schemaCmd.AddCommand(schemaListCmd, schemaShowCmd, schemaResolveCmd)
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the available schemas",
	Long:  `Inspect the versioned schema set specval validates against.`,
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schema versions and the schemas in each",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		return runSchemaList(cmd.OutOrStdout(), a, schemaVersion)
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a schema document",
	Example: `  specval schema show workspace.json
  specval schema show defs.json --version 1.0.0 -o defs.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		return runSchemaShow(cmd.OutOrStdout(), a, args[0], schemaVersion, schemaOutput)
	},
}

var schemaResolveCmd = &cobra.Command{
	Use:   "resolve <ref>",
	Short: "Resolve a $ref against a schema version",
	Long: `Resolve a $ref the way the validator does: relative to the version's
base URI, with defs.json registered as the referrer.`,
	Example: `  specval schema resolve 'defs.json#/definitions/sample'
  specval schema resolve --uri 'workspace.json'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		return runSchemaResolve(cmd.OutOrStdout(), a, args[0], schemaVersion, schemaURIOnly)
	},
}

func runSchemaList(w io.Writer, a *app, version string) error {
	versions := []string{version}
	if version == "" {
		var err error
		versions, err = a.validator.Versions()
		if err != nil {
			return errors.NewSystemError(err, "Check schema_root in your config")
		}
	}

	for _, v := range versions {
		names, err := a.validator.Schemas(v)
		if err != nil {
			return errors.NewSystemError(err, "Run 'specval schema list' without --version to see available versions")
		}

		marker := ""
		if v == a.validator.DefaultVersion() {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%s%s%s%s\n", colorBold, v, colorReset, marker)
		for _, n := range names {
			fmt.Fprintf(w, "  %s\n", n)
		}
	}
	return nil
}

func runSchemaShow(w io.Writer, a *app, name, version, output string) error {
	if version == "" {
		version = a.validator.DefaultVersion()
	}

	doc, err := a.store.GetOrLoad(schema.SchemaURI(version, name))
	if err != nil {
		return errors.NewSystemError(err, "Run 'specval schema list' to see available schemas")
	}

	if output != "" {
		if err := fileutil.AtomicWriteByExt(output, doc); err != nil {
			return errors.NewSystemError(err, "")
		}
		fmt.Fprintf(w, "Wrote %s %s to %s\n", name, version, output)
		return nil
	}
	return writeJSON(w, doc)
}

func runSchemaResolve(w io.Writer, a *app, ref, version string, uriOnly bool) error {
	r, err := a.validator.Resolver(version)
	if err != nil {
		return errors.NewSystemError(err, "Check --version")
	}

	if uriOnly {
		uri, err := r.ResolveURI(ref)
		if err != nil {
			return errors.NewUserError(err, "")
		}
		fmt.Fprintln(w, uri)
		return nil
	}

	v, err := r.Resolve(ref)
	if err != nil {
		if errors.Is(err, schema.ErrSchemaLoad) {
			return errors.NewSystemError(err, "")
		}
		return errors.NewUserError(err, "References look like 'defs.json#/definitions/<name>'")
	}
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(string(out), "\n"))
	return err
}
