package cmd

import (
	"github.com/spf13/cobra"
)

var revisionCmd = &cobra.Command{
	Use:   "revision",
	Short: "List and show package revisions",
}

var revisionListCmd = &cobra.Command{
	Use:   "list <package id>",
	Short: "List package revisions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		revisions, err := store.RevisionList(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeRevisions(cmd.OutOrStdout(), revisions)
	},
}

var revisionShowCmd = &cobra.Command{
	Use:     "show <package id> <revision or tag>",
	Short:   "Show revision details without the metadata document",
	Example: "metastore revision show datasets/world-cities v1.0",
	Args:    cobra.ExactArgs(tagRequiredArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		rev, err := store.RevisionFetch(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return writeRevision(cmd.OutOrStdout(), rev)
	},
}

//nolint:gochecknoinits
func init() {
	revisionCmd.AddCommand(revisionListCmd, revisionShowCmd)
	rootCmd.AddCommand(revisionCmd)
}
