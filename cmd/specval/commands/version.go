package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/specval/cmd"
	"github.com/thoreinstein/specval/internal/schema"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit and build date of specval, and the bundled schema versions.`,
	RunE: func(c *cobra.Command, _ []string) error {
		w := c.OutOrStdout()
		fmt.Fprintf(w, "specval version %s\n", cmd.Version)
		fmt.Fprintf(w, "  commit:    %s\n", cmd.Commit)
		fmt.Fprintf(w, "  built:     %s\n", cmd.Date)
		fmt.Fprintf(w, "  go:        %s\n", runtime.Version())
		fmt.Fprintln(w, "  schemas:")

		versions, err := schema.NewFSLoader(schema.Bundled()).Versions()
		if err != nil {
			return err
		}
		for _, v := range versions {
			status := ""
			if v == schema.DefaultVersion {
				status = "default"
			}
			fmt.Fprintf(w, "    %-10s %s\n", v, status)
		}
		return nil
	},
}
