package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/treeverse/metastore/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the metastore version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "metastore version: %s\n", version.Version)
		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}
		res, err := version.CheckLatestVersion(version.NewReleasesSource(), version.Version)
		if err != nil {
			return fmt.Errorf("check latest version: %w", err)
		}
		if res.Outdated {
			_, _ = fmt.Fprintf(w, "A newer version is available: %s (%s)\n", res.Current, version.DefaultReleasesURL)
		}
		return nil
	},
}

//nolint:gochecknoinits
func init() {
	versionCmd.Flags().Bool("check", false, "compare with the latest release")
	rootCmd.AddCommand(versionCmd)
}
