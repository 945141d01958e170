package mem

import (
	"context"

	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/git"
	"github.com/treeverse/metastore/pkg/metastore/params"
)

const DriverName = "git-mem"

//nolint:gochecknoinits
func init() {
	metastore.Register(DriverName, &Driver{})
}

// Driver opens a Git backed store over a fresh in-memory host. Nothing outlives the store.
type Driver struct{}

func (d *Driver) Open(_ context.Context, p params.Params) (metastore.Store, error) {
	var cfg params.GitMem
	if p.GitMem != nil {
		cfg = *p.GitMem
	}
	var opts []Option
	if cfg.Login != "" {
		opts = append(opts, WithLogin(cfg.Login))
	}
	if cfg.DefaultBranch != "" {
		opts = append(opts, WithDefaultBranch(cfg.DefaultBranch))
	}
	store, err := git.New(New(opts...), git.Config{
		DefaultOwner:  cfg.DefaultOwner,
		DefaultAuthor: git.DefaultAuthor(p),
		DefaultBranch: cfg.DefaultBranch,
		LFSServerURL:  cfg.LFSServerURL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
