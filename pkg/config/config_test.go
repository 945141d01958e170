package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/treeverse/metastore/pkg/config"
	"github.com/treeverse/metastore/pkg/metastore/params"
)

func newConfigFromFile(t *testing.T, fn string) (*config.Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigFile(fn)
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func TestConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	c, err := config.NewConfig()
	require.NoError(t, err)

	require.Equal(t, config.DefaultMetastoreType, c.Metastore.Type)
	require.Equal(t, config.DefaultGitHubDefaultBranch, c.Metastore.GitHub.DefaultBranch)
	require.Equal(t, config.DefaultOwnerCacheSize, c.Metastore.GitHub.OwnerCache.Size)
	require.Zero(t, c.Metastore.GitHub.OwnerCache.TTL)
	require.Equal(t, config.DefaultFilesystemPath, c.Metastore.Filesystem.Path)
	require.Equal(t, config.Strings{config.DefaultLoggingOutput}, c.Logging.Output)

	// github driver is the default and requires a token
	require.ErrorIs(t, c.Validate(), config.ErrMissingGitHubToken)
}

func TestConfig_NewFromFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		c, err := newConfigFromFile(t, "testdata/valid_config.yaml")
		require.NoError(t, err)
		require.Equal(t, "json", c.Logging.Format)
		require.Equal(t, "ghp_not_a_real_token", c.Metastore.GitHub.Token.SecureValue())
		require.Equal(t, 5*time.Minute, c.Metastore.GitHub.OwnerCache.TTL)
		require.Equal(t, 10, c.Metastore.GitHub.OwnerCache.Size)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := newConfigFromFile(t, "testdata/invalid_config.yaml")
		require.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := newConfigFromFile(t, "testdata/unknown_key.yaml")
		require.Error(t, err)
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := newConfigFromFile(t, "testdata/valid_configgggggggggggggggg.yaml")
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected missing configuration file to fail, got %v", err)
		}
	})
}

func TestConfig_MetastoreParams(t *testing.T) {
	c, err := newConfigFromFile(t, "testdata/valid_config.yaml")
	require.NoError(t, err)
	p, err := c.MetastoreParams()
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	require.Equal(t, "github", p.Type)
	require.Equal(t, &params.Author{Name: "Metastore Bot", Email: "bot@example.com"}, p.DefaultAuthor)
	require.Equal(t, &params.GitHub{
		Token:          "ghp_not_a_real_token",
		DefaultOwner:   "datasets",
		DefaultBranch:  config.DefaultGitHubDefaultBranch,
		LFSServerURL:   "https://lfs.example.com/",
		OwnerCacheSize: 10,
		OwnerCacheTTL:  5 * time.Minute,

		RequestsPerSecond: 20,
	}, p.GitHub)
	require.Equal(t, filepath.Join(home, "packages"), p.Filesystem.Path)
}

func TestConfig_FilesystemWithoutToken(t *testing.T) {
	c, err := newConfigFromFile(t, "testdata/filesystem_config.yaml")
	require.NoError(t, err)
	p, err := c.MetastoreParams()
	require.NoError(t, err)
	require.Equal(t, "filesystem", p.Type)
	require.Nil(t, p.DefaultAuthor)
	require.Equal(t, "/var/lib/metastore", p.Filesystem.Path)
}

func TestConfig_EnvironmentVariables(t *testing.T) {
	const token = "token-from-env"
	t.Setenv("METASTORE_METASTORE_GITHUB_TOKEN", token)

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // support nested config
	viper.AutomaticEnv()

	c, err := config.NewConfig()
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.Equal(t, token, c.Metastore.GitHub.Token.SecureValue())
}

func TestConfig_LoggerFieldsHideSecrets(t *testing.T) {
	c, err := newConfigFromFile(t, "testdata/valid_config.yaml")
	require.NoError(t, err)
	fields := c.ToLoggerFields()
	require.Equal(t, "[SECRET]", fields["metastore.github.token"])
	require.Equal(t, "datasets", fields["metastore.github.default_owner"])
	require.Equal(t, "5m0s", fields["metastore.github.owner_cache.ttl"])
}
