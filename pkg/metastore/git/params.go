package git

import (
	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/params"
)

// DefaultAuthor converts the configured default author, nil when none is set
func DefaultAuthor(p params.Params) *metastore.Author {
	if p.DefaultAuthor == nil || (p.DefaultAuthor.Name == "" && p.DefaultAuthor.Email == "") {
		return nil
	}
	return &metastore.Author{Name: p.DefaultAuthor.Name, Email: p.DefaultAuthor.Email}
}
