package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/treeverse/metastore/pkg/config"
	"github.com/treeverse/metastore/pkg/logging"
	"github.com/treeverse/metastore/pkg/metastore"
	_ "github.com/treeverse/metastore/pkg/metastore/filesystem"
	_ "github.com/treeverse/metastore/pkg/metastore/git/github"
	_ "github.com/treeverse/metastore/pkg/metastore/git/mem"
	"github.com/treeverse/metastore/pkg/version"
)

const (
	configFileName = ".metastore"
	configFileType = "yaml"
	serviceName    = "metastore-cli"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any sub-commands
var rootCmd = &cobra.Command{
	Use:           "metastore",
	Short:         "Manage versioned package metadata",
	Long:          `metastore stores dataset package metadata with revisions and tags on top of a Git hosting service or a local directory`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColorRequested {
			DisableColors()
		}
		if err := readConfigFile(); err != nil {
			return err
		}
		var err error
		cfg, err = config.NewConfig()
		if err != nil {
			return err
		}
		ctx := logging.AddFields(cmd.Context(), logging.Fields{
			logging.ServiceNameFieldKey: serviceName,
			"command":                   cmd.CommandPath(),
		})
		cmd.SetContext(ctx)
		logging.FromContext(ctx).
			WithField("file", viper.ConfigFileUsed()).
			WithFields(cfg.ToLoggerFields()).
			Debug("Configuration loaded")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.CloseWriters()
	},
}

// readConfigFile reads the configuration file. A missing default file is not an error, the
// configuration comes from defaults and the environment.
func readConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	if errors.As(err, &viper.ConfigFileNotFoundError{}) && cfgFile == "" {
		return nil
	}
	return err
}

// getStore opens the configured metadata store
func getStore(ctx context.Context) (metastore.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := cfg.MetastoreParams()
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).WithField(logging.DriverFieldKey, p.Type).Debug("Open metadata store")
	return metastore.Open(ctx, p)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		DieErr(err)
	}
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.metastore.yaml)")
	flags.BoolVar(&noColorRequested, "no-color", false, "don't use fancy output colors (default when not attached to an interactive terminal)")
	flags.StringVarP(&outputFormat, "output", "o", outputTable, "output format: table, json or yaml")
	flags.String("type", "", "metadata store driver (default from configuration: "+config.DefaultMetastoreType+")")
	flags.String("log-level", "", "set logging level")
	flags.String("log-format", "", "set logging output format")
	flags.StringSlice("log-output", nil, "set logging output(s)")

	for key, flag := range map[string]string{
		config.MetastoreTypeKey: "type",
		config.LoggingLevelKey:  "log-level",
		config.LoggingFormatKey: "log-format",
		config.LoggingOutputKey: "log-output",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// initConfig sets up viper to read the config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			DieErr(err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigType(configFileType)
		viper.SetConfigName(configFileName)
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // support nested config
	viper.AutomaticEnv()                                   // read in environment variables that match
}

// stdin is the source of "-" package documents
var stdin io.Reader = os.Stdin
