package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/treeverse/metastore/pkg/metastore"
)

const (
	stdinFileName = "-"

	authorNameFlag  = "author-name"
	authorEmailFlag = "author-email"
	messageFlag     = "message"
	fileFlag        = "file"
)

var ErrInvalidPackageFile = fmt.Errorf("package file: %w", metastore.ErrInvalidArgument)

// readPackage decodes a JSON package document from the named file or from stdin for "-"
func readPackage(filename string) (metastore.Package, error) {
	var r io.Reader
	if filename == stdinFileName {
		r = stdin
	} else {
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var pkg metastore.Package
	if err := json.NewDecoder(r).Decode(&pkg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPackageFile)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPackageFile, err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w: expecting a JSON object", ErrInvalidPackageFile)
	}
	return pkg, nil
}

func addAuthorFlags(cmd *cobra.Command) {
	cmd.Flags().String(authorNameFlag, "", "author name (default from configuration)")
	cmd.Flags().String(authorEmailFlag, "", "author email (default from configuration)")
}

// getAuthor returns the author given by flags, nil when none is set
func getAuthor(cmd *cobra.Command) *metastore.Author {
	name, _ := cmd.Flags().GetString(authorNameFlag)
	email, _ := cmd.Flags().GetString(authorEmailFlag)
	if name == "" && email == "" {
		return nil
	}
	return &metastore.Author{Name: name, Email: email}
}

func addPackageFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(fileFlag, "f", stdinFileName, "JSON package document, - for stdin")
}
