package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/treeverse/metastore/pkg/metastore"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List the available metadata store drivers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		drivers := metastore.Drivers()
		if done, err := writeValue(cmd.OutOrStdout(), drivers); done {
			return err
		}
		for _, name := range drivers {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(driversCmd)
}
