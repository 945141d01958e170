package filesystem

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/params"
)

const DriverName = "filesystem"

//nolint:gochecknoinits
func init() {
	metastore.Register(DriverName, &Driver{})
}

// Driver opens a store rooted at the configured path, in memory when no path is set
type Driver struct{}

func (d *Driver) Open(_ context.Context, p params.Params) (metastore.Store, error) {
	if p.Filesystem == nil || p.Filesystem.Path == "" {
		return New(nil), nil
	}
	root := p.Filesystem.Path
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: root directory %s: %s", metastore.ErrDriverConfiguration, root, err)
	}
	return New(afero.NewBasePathFs(osFs, root)), nil
}
