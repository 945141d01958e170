package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/git"
	"github.com/treeverse/metastore/pkg/metastore/params"
)

const (
	DriverName = "github"
	// requestTimeout bounds every API call issued by the driver
	requestTimeout = 30 * time.Second
)

//nolint:gochecknoinits
func init() {
	metastore.Register(DriverName, &Driver{})
}

// Driver opens a Git backed store over GitHub repositories
type Driver struct{}

func (d *Driver) Open(ctx context.Context, p params.Params) (metastore.Store, error) {
	if p.GitHub == nil {
		return nil, fmt.Errorf("%w: missing github configuration", metastore.ErrDriverConfiguration)
	}
	cfg := p.GitHub
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: missing github token", metastore.ErrDriverConfiguration)
	}
	host, err := NewHost(ctx, Config{
		Token:             cfg.Token,
		BaseURL:           cfg.BaseURL,
		DefaultBranch:     cfg.DefaultBranch,
		HTTPClient:        &http.Client{Timeout: requestTimeout},
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", metastore.ErrDriverConfiguration, err)
	}
	store, err := git.New(host, git.Config{
		DefaultOwner:   cfg.DefaultOwner,
		DefaultAuthor:  git.DefaultAuthor(p),
		DefaultBranch:  cfg.DefaultBranch,
		LFSServerURL:   cfg.LFSServerURL,
		OwnerCacheSize: cfg.OwnerCacheSize,
		OwnerCacheTTL:  cfg.OwnerCacheTTL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
