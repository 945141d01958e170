package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/treeverse/metastore/pkg/config"
)

var ErrAborted = errors.New("aborted by user")

// confirm asks a yes/no question on the terminal
func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return nil
	}
	_, err := url.ParseRequestURI(raw)
	return err
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create/update local metastore configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.ConfigFileUsed() == "" {
			home, err := homedir.Dir()
			if err != nil {
				return err
			}
			viper.SetConfigFile(filepath.Join(home, configFileName+"."+configFileType))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config file %s will be used\n", viper.ConfigFileUsed())

		questions := []struct {
			Key    string
			Prompt *promptui.Prompt
		}{
			{Key: config.MetastoreTypeKey, Prompt: &promptui.Prompt{Label: "Metadata store type (github, filesystem)"}},
			{Key: config.MetastoreGitHubTokenKey, Prompt: &promptui.Prompt{Label: "GitHub token", Mask: '*'}},
			{Key: config.MetastoreGitHubDefaultOwnerKey, Prompt: &promptui.Prompt{Label: "Default package owner"}},
			{Key: config.MetastoreGitHubLFSServerURLKey, Prompt: &promptui.Prompt{Label: "Git LFS server URL", Validate: validateURL}},
			{Key: config.MetastoreDefaultAuthorNameKey, Prompt: &promptui.Prompt{Label: "Default author name"}},
			{Key: config.MetastoreDefaultAuthorEmailKey, Prompt: &promptui.Prompt{Label: "Default author email"}},
		}
		for _, question := range questions {
			question.Prompt.Default = viper.GetString(question.Key)
			val, err := question.Prompt.Run()
			if err != nil {
				return err
			}
			viper.Set(question.Key, val)
		}

		err := viper.SafeWriteConfig()
		if err != nil {
			err = viper.WriteConfig()
		}
		return err
	},
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(configCmd)
}
