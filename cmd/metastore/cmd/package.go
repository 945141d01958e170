package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/treeverse/metastore/pkg/metastore"
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Create, fetch, update and delete packages",
}

var packageCreateCmd = &cobra.Command{
	Use:     "create <package id>",
	Short:   "Create a package from a JSON document",
	Example: "metastore package create datasets/world-cities -f datapackage.json",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, _ := cmd.Flags().GetString(fileFlag)
		message, _ := cmd.Flags().GetString(messageFlag)
		pkg, err := readPackage(filename)
		if err != nil {
			return err
		}
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		rev, err := store.Create(cmd.Context(), args[0], pkg, metastore.CreateParams{
			Author:  getAuthor(cmd),
			Message: message,
		})
		if err != nil {
			return err
		}
		return writeRevision(cmd.OutOrStdout(), rev.WithoutPackage())
	},
}

var packageFetchCmd = &cobra.Command{
	Use:     "fetch <package id>",
	Short:   "Fetch a package revision with its metadata document",
	Example: "metastore package fetch datasets/world-cities --ref v1.0",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, _ := cmd.Flags().GetString("ref")
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		rev, err := store.Fetch(cmd.Context(), args[0], ref)
		if err != nil {
			return err
		}
		return writePackage(cmd.OutOrStdout(), rev)
	},
}

var packageUpdateCmd = &cobra.Command{
	Use:     "update <package id>",
	Short:   "Store a new revision of a package",
	Example: "metastore package update datasets/world-cities --partial -f changes.json",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, _ := cmd.Flags().GetString(fileFlag)
		message, _ := cmd.Flags().GetString(messageFlag)
		partial, _ := cmd.Flags().GetBool("partial")
		base, _ := cmd.Flags().GetString("base")
		pkg, err := readPackage(filename)
		if err != nil {
			return err
		}
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		rev, err := store.Update(cmd.Context(), args[0], pkg, metastore.UpdateParams{
			Author:          getAuthor(cmd),
			Partial:         partial,
			BaseRevisionRef: base,
			Message:         message,
		})
		if err != nil {
			return err
		}
		return writeRevision(cmd.OutOrStdout(), rev.WithoutPackage())
	},
}

var packageDeleteCmd = &cobra.Command{
	Use:   "delete <package id>",
	Short: "Delete a package with all its revisions and tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			ok, err := confirm(fmt.Sprintf("Delete package %s with all its revisions and tags", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return ErrAborted
			}
		}
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Package %s deleted\n", args[0])
		return err
	},
}

//nolint:gochecknoinits
func init() {
	packageCreateCmd.Flags().String(messageFlag, "", "revision description")
	addPackageFileFlag(packageCreateCmd)
	addAuthorFlags(packageCreateCmd)

	packageFetchCmd.Flags().String("ref", "", "revision or tag name (default latest revision)")

	packageUpdateCmd.Flags().String(messageFlag, "", "revision description")
	packageUpdateCmd.Flags().Bool("partial", false, "merge the document keys onto the base revision")
	packageUpdateCmd.Flags().String("base", "", "revision or tag a partial update merges onto (default latest revision)")
	addPackageFileFlag(packageUpdateCmd)
	addAuthorFlags(packageUpdateCmd)

	packageDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	packageCmd.AddCommand(packageCreateCmd, packageFetchCmd, packageUpdateCmd, packageDeleteCmd)
	rootCmd.AddCommand(packageCmd)
}
