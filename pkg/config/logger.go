package config

import (
	"github.com/treeverse/metastore/pkg/logging"
)

const (
	DefaultLoggingFormat        = "text"
	DefaultLoggingLevel         = "INFO"
	DefaultLoggingOutput        = "-"
	DefaultLoggingFileMaxSizeMB = 100
	DefaultLoggingFilesKeep     = 10
)

func (c *Config) setupLogger() error {
	logging.SetOutputFormat(c.Logging.Format)
	if err := logging.SetOutputs([]string(c.Logging.Output), c.Logging.FileMaxSizeMB, c.Logging.FilesKeep); err != nil {
		return err
	}
	logging.SetLevel(c.Logging.Level)
	return nil
}
