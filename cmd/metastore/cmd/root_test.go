package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/require"
	"github.com/treeverse/metastore/pkg/metastore"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	DisableColors()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "metastore.yaml")
	content := fmt.Sprintf(`---
logging:
  level: ERROR
metastore:
  type: filesystem
  filesystem:
    path: %s
`, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath
}

func runCommand(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = os.Stdin })
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_PackageLifecycle(t *testing.T) {
	cfgPath := writeConfig(t)
	const id = "datasets/world-cities"

	out, err := runCommand(t, `{"name": "world-cities", "title": "World cities"}`,
		"--config", cfgPath, "-o", "json", "package", "create", id, "--message", "first")
	require.NoError(t, err)
	var created metastore.PackageRevisionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.Equal(t, id, created.PackageID)
	require.Equal(t, "first", created.Description)
	require.Nil(t, created.Package)

	_, err = runCommand(t, `{"version": "2"}`,
		"--config", cfgPath, "-o", "json", "package", "update", id, "--partial")
	require.NoError(t, err)

	out, err = runCommand(t, "", "--config", cfgPath, "-o", "json", "package", "fetch", id)
	require.NoError(t, err)
	var latest metastore.PackageRevisionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &latest))
	require.Equal(t, metastore.Package{"name": "world-cities", "title": "World cities", "version": "2"}, latest.Package)

	out, err = runCommand(t, "", "--config", cfgPath, "-o", "json", "tag", "create", id, created.Revision, "v1", "--description", "First release")
	require.NoError(t, err)
	var tag metastore.TagInfo
	require.NoError(t, json.Unmarshal([]byte(out), &tag))
	require.Equal(t, created.Revision, tag.RevisionRef)

	out, err = runCommand(t, "", "--config", cfgPath, "-o", "json", "revision", "list", id)
	require.NoError(t, err)
	var revisions []*metastore.PackageRevisionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &revisions))
	require.Len(t, revisions, 2)
	require.Equal(t, latest.Revision, revisions[0].Revision)

	out, err = runCommand(t, "", "--config", cfgPath, "-o", "table", "tag", "list", id)
	require.NoError(t, err)
	require.Contains(t, out, "v1\t"+created.Revision)

	out, err = runCommand(t, "", "--config", cfgPath, "-o", "json", "tag", "list", id, "--match", "v2.*")
	require.NoError(t, err)
	require.JSONEq(t, "[]", out)

	_, err = runCommand(t, "", "--config", cfgPath, "tag", "list", id, "--match", "v[")
	require.ErrorIs(t, err, metastore.ErrInvalidArgument)

	out, err = runCommand(t, "", "--config", cfgPath, "-o", "yaml", "package", "fetch", id, "--ref", "v1")
	require.NoError(t, err)
	require.Contains(t, out, "title: World cities")
	require.NotContains(t, out, "version:")

	_, err = runCommand(t, "", "--config", cfgPath, "package", "delete", id, "--yes")
	require.NoError(t, err)

	_, err = runCommand(t, "", "--config", cfgPath, "package", "fetch", id)
	require.ErrorIs(t, err, metastore.ErrNotFound)
	require.Equal(t, ExitCodeNotFound, exitCode(err))
}

func TestCLI_Drivers(t *testing.T) {
	cfgPath := writeConfig(t)
	out, err := runCommand(t, "", "--config", cfgPath, "-o", "table", "drivers")
	require.NoError(t, err)
	require.Equal(t, "filesystem\ngit-mem\ngithub\n", out)
}

func TestCLI_InvalidPackageDocument(t *testing.T) {
	cfgPath := writeConfig(t)
	_, err := runCommand(t, `["not", "an", "object"]`, "--config", cfgPath, "package", "create", "datasets/bad")
	require.ErrorIs(t, err, metastore.ErrInvalidArgument)
	require.Equal(t, ExitCodeInvalidArgument, exitCode(err))
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err      error
		expected int
	}{
		{err: metastore.ErrPackageNotFound, expected: ExitCodeNotFound},
		{err: fmt.Errorf("tag v1: %w", metastore.ErrTagNotFound), expected: ExitCodeNotFound},
		{err: metastore.ErrTagExists, expected: ExitCodeConflict},
		{err: metastore.ErrInvalidTagName, expected: ExitCodeInvalidArgument},
		{err: metastore.ErrCorruptMetadata, expected: ExitCodeError},
		{err: ErrAborted, expected: ExitCodeError},
	}
	for _, tt := range cases {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.expected, exitCode(tt.err))
		})
	}
}

func TestFilterTags(t *testing.T) {
	tags := []*metastore.TagInfo{{Name: "v1.0"}, {Name: "v1.1"}, {Name: "v2.0"}, {Name: "latest"}}
	matched := filterTags(tags, glob.MustCompile("v1.*"))
	require.Equal(t, []*metastore.TagInfo{tags[0], tags[1]}, matched)
	require.Empty(t, filterTags(tags, glob.MustCompile("stable")))
}

func TestReadPackage(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "datapackage.json")
	require.NoError(t, os.WriteFile(fn, []byte(`{"name": "from-file"}`), 0o600))

	pkg, err := readPackage(fn)
	require.NoError(t, err)
	require.Equal(t, metastore.Package{"name": "from-file"}, pkg)

	stdin = strings.NewReader("")
	t.Cleanup(func() { stdin = os.Stdin })
	_, err = readPackage(stdinFileName)
	require.ErrorIs(t, err, ErrInvalidPackageFile)

	_, err = readPackage(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
