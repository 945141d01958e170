package filesystem_test

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/filesystem"
	"github.com/treeverse/metastore/pkg/metastore/metastoretest"
	"github.com/treeverse/metastore/pkg/metastore/params"
)

func TestStore(t *testing.T) {
	metastoretest.TestStore(t, func(t *testing.T, ctx context.Context) metastore.Store {
		t.Helper()
		return filesystem.New(afero.NewMemMapFs())
	})
}

// packageDir returns the single package directory on fs
func packageDir(t *testing.T, fs afero.Fs) string {
	t.Helper()
	entries, err := afero.ReadDir(fs, "/p")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return path.Join("/p", entries[0].Name())
}

func TestStore_Layout(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := filesystem.New(fs)

	rev, err := store.Create(ctx, "org/layout", metastore.Package{"name": "layout"}, metastore.CreateParams{Message: "hello, world"})
	require.NoError(t, err)
	require.Len(t, rev.Revision, filesystem.RevisionLength)
	require.True(t, metastore.IsRevisionLike(rev.Revision, filesystem.RevisionLength))
	_, err = store.TagCreate(ctx, "org/layout", rev.Revision, "v1", metastore.TagCreateParams{Description: "first"})
	require.NoError(t, err)

	dir := packageDir(t, fs)
	data, err := afero.ReadFile(fs, path.Join(dir, rev.Revision))
	require.NoError(t, err)
	var stored metastore.Package
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Equal(t, metastore.Package{"name": "layout"}, stored)

	log, err := afero.ReadFile(fs, path.Join(dir, "revisions.csv"))
	require.NoError(t, err)
	fields := strings.Split(strings.TrimSpace(string(log)), ",")
	require.Len(t, fields, 3)
	require.Equal(t, rev.Revision, fields[0])
	// description is base64 encoded, commas included
	require.Equal(t, "aGVsbG8sIHdvcmxk", fields[2])

	tag, err := afero.ReadFile(fs, path.Join(dir, "tags", "v1"))
	require.NoError(t, err)
	tagFields := strings.Split(string(tag), ",")
	require.Len(t, tagFields, 3)
	require.Equal(t, rev.Revision, tagFields[1])
	require.Equal(t, "Zmlyc3Q=", tagFields[2])
}

func TestStore_TagNameCharset(t *testing.T) {
	ctx := context.Background()
	store := filesystem.New(nil)
	rev, err := store.Create(ctx, "org/charset", metastore.Package{"name": "charset"}, metastore.CreateParams{})
	require.NoError(t, err)

	for _, name := range []string{"v1.0", "release_2", "a-b+c"} {
		_, err := store.TagCreate(ctx, "org/charset", rev.Revision, name, metastore.TagCreateParams{})
		require.NoError(t, err, name)
	}
	for _, name := range []string{"a/b", "v1:0", "tag@home", "über"} {
		_, err := store.TagCreate(ctx, "org/charset", rev.Revision, name, metastore.TagCreateParams{})
		require.ErrorIs(t, err, metastore.ErrInvalidTagName, name)
	}
}

func TestStore_AuthorNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := filesystem.New(nil)
	author := &metastore.Author{Name: "Jane", Email: "jane@example.com"}

	rev, err := store.Create(ctx, "org/author", metastore.Package{"name": "author"}, metastore.CreateParams{Author: author})
	require.NoError(t, err)
	require.Equal(t, author, rev.Author)

	fetched, err := store.Fetch(ctx, "org/author", "")
	require.NoError(t, err)
	require.Nil(t, fetched.Author)
}

func TestStore_CorruptMetadata(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := filesystem.New(fs)
	rev, err := store.Create(ctx, "org/corrupt", metastore.Package{"name": "corrupt"}, metastore.CreateParams{})
	require.NoError(t, err)

	dir := packageDir(t, fs)
	require.NoError(t, afero.WriteFile(fs, path.Join(dir, rev.Revision), []byte("{not json"), 0o644))
	_, err = store.Fetch(ctx, "org/corrupt", "")
	require.ErrorIs(t, err, metastore.ErrCorruptMetadata)
	require.ErrorIs(t, err, metastore.ErrStorageFault)

	require.NoError(t, fs.Remove(path.Join(dir, rev.Revision)))
	_, err = store.Fetch(ctx, "org/corrupt", rev.Revision)
	require.ErrorIs(t, err, metastore.ErrMetadataNotFound)
}

func TestStore_UppercaseRevision(t *testing.T) {
	ctx := context.Background()
	store := filesystem.New(nil)
	rev, err := store.Create(ctx, "org/upper", metastore.Package{"name": "upper"}, metastore.CreateParams{})
	require.NoError(t, err)

	fetched, err := store.Fetch(ctx, "org/upper", strings.ToUpper(rev.Revision))
	require.NoError(t, err)
	require.Equal(t, rev.Revision, fetched.Revision)
}

func TestStore_InvalidPackageID(t *testing.T) {
	store := filesystem.New(nil)
	_, err := store.Create(context.Background(), "", metastore.Package{}, metastore.CreateParams{})
	require.ErrorIs(t, err, metastore.ErrInvalidPackageID)
}

func TestDriver(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := metastore.Open(ctx, params.Params{
		Type:       filesystem.DriverName,
		Filesystem: &params.Filesystem{Path: root},
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, "org/on-disk", metastore.Package{"name": "on-disk"}, metastore.CreateParams{})
	require.NoError(t, err)

	// a second store over the same root sees the package
	reopened, err := metastore.Open(ctx, params.Params{
		Type:       filesystem.DriverName,
		Filesystem: &params.Filesystem{Path: root},
	})
	require.NoError(t, err)
	rev, err := reopened.Fetch(ctx, "org/on-disk", "")
	require.NoError(t, err)
	require.Equal(t, "on-disk", rev.Package["name"])
}
