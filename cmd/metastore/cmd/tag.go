package cmd

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"github.com/treeverse/metastore/pkg/metastore"
)

const (
	tagCreateRequiredArgs = 3
	tagRequiredArgs       = 2

	descriptionFlag = "description"
	matchFlag       = "match"
)

// tagCmd represents the tag command
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Create and manage package tags",
}

var tagCreateCmd = &cobra.Command{
	Use:     "create <package id> <revision or tag> <name>",
	Short:   "Tag a package revision",
	Example: "metastore tag create datasets/world-cities 5f3a0c1 v1.0 --description \"First release\"",
	Args:    cobra.ExactArgs(tagCreateRequiredArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString(descriptionFlag)
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		tag, err := store.TagCreate(cmd.Context(), args[0], args[1], args[2], metastore.TagCreateParams{
			Author:      getAuthor(cmd),
			Description: description,
		})
		if err != nil {
			return err
		}
		return writeTag(cmd.OutOrStdout(), tag)
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list <package id>",
	Short:   "List package tags by creation time",
	Example: "metastore tag list datasets/world-cities --match 'v1.*'",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, _ := cmd.Flags().GetString(matchFlag)
		var matcher glob.Glob
		if pattern != "" {
			var err error
			matcher, err = glob.Compile(pattern)
			if err != nil {
				return fmt.Errorf("%w: match pattern %q: %s", metastore.ErrInvalidArgument, pattern, err)
			}
		}
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		tags, err := store.TagList(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if matcher != nil {
			tags = filterTags(tags, matcher)
		}
		return writeTags(cmd.OutOrStdout(), tags)
	},
}

// filterTags keeps the tags whose name matches, order is preserved
func filterTags(tags []*metastore.TagInfo, matcher glob.Glob) []*metastore.TagInfo {
	res := make([]*metastore.TagInfo, 0, len(tags))
	for _, tag := range tags {
		if matcher.Match(tag.Name) {
			res = append(res, tag)
		}
	}
	return res
}

var tagShowCmd = &cobra.Command{
	Use:   "show <package id> <name>",
	Short: "Show a tag and the revision it points to",
	Args:  cobra.ExactArgs(tagRequiredArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		tag, err := store.TagFetch(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return writeTag(cmd.OutOrStdout(), tag)
	},
}

var tagUpdateCmd = &cobra.Command{
	Use:     "update <package id> <name>",
	Short:   "Rename a tag or replace its description",
	Example: "metastore tag update datasets/world-cities v1 --name v1.0",
	Args:    cobra.ExactArgs(tagRequiredArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params metastore.TagUpdateParams
		params.Author = getAuthor(cmd)
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			params.NewName = &name
		}
		if cmd.Flags().Changed(descriptionFlag) {
			description, _ := cmd.Flags().GetString(descriptionFlag)
			params.NewDescription = &description
		}
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		tag, err := store.TagUpdate(cmd.Context(), args[0], args[1], params)
		if err != nil {
			return err
		}
		return writeTag(cmd.OutOrStdout(), tag)
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <package id> <name>",
	Short: "Delete a tag, the revision it points to is kept",
	Args:  cobra.ExactArgs(tagRequiredArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStore(cmd.Context())
		if err != nil {
			return err
		}
		if err := store.TagDelete(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Tag %s deleted\n", args[1])
		return err
	},
}

//nolint:gochecknoinits
func init() {
	tagCreateCmd.Flags().String(descriptionFlag, "", "tag description")
	addAuthorFlags(tagCreateCmd)

	tagListCmd.Flags().String(matchFlag, "", "list only tags whose name matches the glob pattern")

	tagUpdateCmd.Flags().String("name", "", "new tag name")
	tagUpdateCmd.Flags().String(descriptionFlag, "", "new tag description")
	addAuthorFlags(tagUpdateCmd)

	tagCmd.AddCommand(tagCreateCmd, tagListCmd, tagShowCmd, tagUpdateCmd, tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}
