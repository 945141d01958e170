// Package config loads the metastore configuration from viper: configuration file, environment
// and flags bound by the command line.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/treeverse/metastore/pkg/logging"
	"github.com/treeverse/metastore/pkg/metastore/params"
)

const (
	DefaultMetastoreType       = "github"
	DefaultGitHubDefaultBranch = "master"
	DefaultOwnerCacheSize      = 100
	DefaultOwnerCacheTTL       = time.Duration(0) // owner scopes are kept for the store lifetime
	DefaultFilesystemPath      = "~/metastore/data"

	// EnvPrefix is the prefix of environment variables overriding configuration keys,
	// ex: METASTORE_METASTORE_GITHUB_TOKEN for metastore.github.token
	EnvPrefix = "METASTORE"

	githubType = "github"
)

// Configuration keys
const (
	LoggingFormatKey        = "logging.format"
	LoggingLevelKey         = "logging.level"
	LoggingOutputKey        = "logging.output"
	LoggingFileMaxSizeMBKey = "logging.file_max_size_mb"
	LoggingFilesKeepKey     = "logging.files_keep"

	MetastoreTypeKey                = "metastore.type"
	MetastoreDefaultAuthorNameKey   = "metastore.default_author.name"
	MetastoreDefaultAuthorEmailKey  = "metastore.default_author.email"
	MetastoreGitHubTokenKey         = "metastore.github.token"
	MetastoreGitHubBaseURLKey       = "metastore.github.base_url"
	MetastoreGitHubDefaultOwnerKey  = "metastore.github.default_owner"
	MetastoreGitHubDefaultBranchKey = "metastore.github.default_branch"
	MetastoreGitHubLFSServerURLKey  = "metastore.github.lfs_server_url"
	MetastoreGitHubCacheSizeKey     = "metastore.github.owner_cache.size"
	MetastoreGitHubCacheTTLKey      = "metastore.github.owner_cache.ttl"
	MetastoreGitHubRateLimitKey     = "metastore.github.requests_per_second"
	MetastoreFilesystemPathKey      = "metastore.filesystem.path"
)

var (
	ErrBadConfiguration    = errors.New("bad configuration")
	ErrMissingRequiredKeys = fmt.Errorf("%w: missing required keys", ErrBadConfiguration)
	ErrMissingGitHubToken  = fmt.Errorf("%w: %s cannot be empty", ErrBadConfiguration, MetastoreGitHubTokenKey)
)

// Config is the decoded configuration. Read values through its fields, a key read with a viper
// accessor is not validated.
type Config struct {
	Logging struct {
		Format        string  `mapstructure:"format"`
		Level         string  `mapstructure:"level"`
		Output        Strings `mapstructure:"output"`
		FileMaxSizeMB int     `mapstructure:"file_max_size_mb"`
		FilesKeep     int     `mapstructure:"files_keep"`
	} `mapstructure:"logging"`

	Metastore struct {
		Type          string `mapstructure:"type" validate:"required"`
		DefaultAuthor struct {
			Name  string `mapstructure:"name"`
			Email string `mapstructure:"email"`
		} `mapstructure:"default_author"`
		GitHub struct {
			Token             SecureString `mapstructure:"token"`
			BaseURL           string       `mapstructure:"base_url"`
			DefaultOwner      string       `mapstructure:"default_owner"`
			DefaultBranch     string       `mapstructure:"default_branch"`
			LFSServerURL      string       `mapstructure:"lfs_server_url"`
			RequestsPerSecond int          `mapstructure:"requests_per_second"`
			OwnerCache        struct {
				Size int           `mapstructure:"size"`
				TTL  time.Duration `mapstructure:"ttl"`
			} `mapstructure:"owner_cache"`
		} `mapstructure:"github"`
		Filesystem struct {
			Path string `mapstructure:"path"`
		} `mapstructure:"filesystem"`
	} `mapstructure:"metastore"`
}

func setDefaults() {
	viper.SetDefault(LoggingFormatKey, DefaultLoggingFormat)
	viper.SetDefault(LoggingLevelKey, DefaultLoggingLevel)
	viper.SetDefault(LoggingOutputKey, DefaultLoggingOutput)
	viper.SetDefault(LoggingFileMaxSizeMBKey, DefaultLoggingFileMaxSizeMB)
	viper.SetDefault(LoggingFilesKeepKey, DefaultLoggingFilesKeep)

	viper.SetDefault(MetastoreTypeKey, DefaultMetastoreType)
	viper.SetDefault(MetastoreGitHubDefaultBranchKey, DefaultGitHubDefaultBranch)
	viper.SetDefault(MetastoreGitHubCacheSizeKey, DefaultOwnerCacheSize)
	viper.SetDefault(MetastoreGitHubCacheTTLKey, DefaultOwnerCacheTTL)
	viper.SetDefault(MetastoreFilesystemPathKey, DefaultFilesystemPath)
}

// NewConfig decodes the viper configuration and sets up logging with it
func NewConfig() (*Config, error) {
	c := &Config{}

	// Inform viper of all expected fields.  Otherwise, it fails to deserialize from the
	// environment.
	keys := GetStructKeys(reflect.TypeOf(c), "mapstructure", "squash")
	for _, key := range keys {
		viper.SetDefault(key, nil)
	}
	setDefaults()

	err := viper.UnmarshalExact(c, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			DecodeStrings, mapstructure.StringToTimeDurationHookFunc())))
	if err != nil {
		return nil, err
	}
	if err := c.setupLogger(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	missingKeys := ValidateMissingRequiredKeys(c, "mapstructure", "squash")
	if len(missingKeys) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingRequiredKeys, missingKeys)
	}
	if c.Metastore.Type == githubType && c.Metastore.GitHub.Token.SecureValue() == "" {
		return ErrMissingGitHubToken
	}
	return nil
}

// MetastoreParams returns the parameters opening the configured metastore driver
func (c *Config) MetastoreParams() (params.Params, error) {
	p := params.Params{Type: c.Metastore.Type}
	if author := c.Metastore.DefaultAuthor; author.Name != "" || author.Email != "" {
		p.DefaultAuthor = &params.Author{Name: author.Name, Email: author.Email}
	}
	gh := c.Metastore.GitHub
	p.GitHub = &params.GitHub{
		Token:          gh.Token.SecureValue(),
		BaseURL:        gh.BaseURL,
		DefaultOwner:   gh.DefaultOwner,
		DefaultBranch:  gh.DefaultBranch,
		LFSServerURL:   gh.LFSServerURL,
		OwnerCacheSize: gh.OwnerCache.Size,
		OwnerCacheTTL:  gh.OwnerCache.TTL,

		RequestsPerSecond: gh.RequestsPerSecond,
	}
	p.GitMem = &params.GitMem{
		DefaultOwner:  gh.DefaultOwner,
		DefaultBranch: gh.DefaultBranch,
		LFSServerURL:  gh.LFSServerURL,
	}
	fsPath, err := homedir.Expand(c.Metastore.Filesystem.Path)
	if err != nil {
		return params.Params{}, fmt.Errorf("%s: %w", MetastoreFilesystemPathKey, err)
	}
	p.Filesystem = &params.Filesystem{Path: fsPath}
	return p, nil
}

func (c *Config) ToLoggerFields() logging.Fields {
	return MapLoggingFields(c)
}
