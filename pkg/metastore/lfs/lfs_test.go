package lfs_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/require"
	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/lfs"
)

const (
	testSHA256    = "1d0a7c7b3f3f8c4b6e08d9ac7a5d40ae0d8ee4b4a1e1d3d0e7ed0a7e1c2a3f4b"
	testServerURL = "https://lfs.example.com/org/ds1"
)

func TestIsPosixPathResource(t *testing.T) {
	cases := []struct {
		name     string
		resource map[string]interface{}
		want     bool
	}{
		{"relative", map[string]interface{}{"path": "data/file.csv"}, true},
		{"strange_name", map[string]interface{}{"path": "a file with some stange name"}, true},
		{"http", map[string]interface{}{"path": "http://example.com/my-resource"}, false},
		{"https", map[string]interface{}{"path": "https://example.com/my-resource"}, false},
		{"inline_data", map[string]interface{}{"data": "some-inline-data"}, false},
		{"multipart", map[string]interface{}{"path": []interface{}{"file1.csv", "file2.csv"}}, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := lfs.IsPosixPathResource(tt.resource); got != tt.want {
				t.Fatalf("IsPosixPathResource(%v)=%t, expected %t", tt.resource, got, tt.want)
			}
		})
	}
}

func TestHasLFSAttributes(t *testing.T) {
	cases := []struct {
		name     string
		resource map[string]interface{}
		want     bool
	}{
		{"complete", map[string]interface{}{"path": "data.csv", "bytes": 1234, "sha256": "someshavalue"}, true},
		{"json_float", map[string]interface{}{"path": "data.csv", "bytes": float64(1234), "sha256": "someshavalue"}, true},
		{"json_number", map[string]interface{}{"path": "data.csv", "bytes": json.Number("1234"), "sha256": "someshavalue"}, true},
		{"fraction", map[string]interface{}{"path": "data.csv", "bytes": 12.5, "sha256": "someshavalue"}, false},
		{"negative", map[string]interface{}{"path": "data.csv", "bytes": -1, "sha256": "someshavalue"}, false},
		{"negative_float", map[string]interface{}{"path": "data.csv", "bytes": float64(-1), "sha256": "someshavalue"}, false},
		{"negative_json_number", map[string]interface{}{"path": "data.csv", "bytes": json.Number("-1"), "sha256": "someshavalue"}, false},
		{"float_overflow", map[string]interface{}{"path": "data.csv", "bytes": float64(1 << 63), "sha256": "someshavalue"}, false},
		{"float_huge", map[string]interface{}{"path": "data.csv", "bytes": 1e30, "sha256": "someshavalue"}, false},
		{"zero", map[string]interface{}{"path": "data.csv", "bytes": 0, "sha256": "someshavalue"}, true},
		{"size_key", map[string]interface{}{"path": "data.csv", "size": 1234, "sha256": "someshavalue"}, false},
		{"no_bytes", map[string]interface{}{"path": "data.csv", "sha256": "someshavalue"}, false},
		{"no_sha256", map[string]interface{}{"path": "data.csv", "bytes": 1234}, false},
		{"path_only", map[string]interface{}{"path": "data.csv"}, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := lfs.HasLFSAttributes(tt.resource); got != tt.want {
				t.Fatalf("HasLFSAttributes(%v)=%t, expected %t", tt.resource, got, tt.want)
			}
		})
	}
}

func TestPointerFile(t *testing.T) {
	content, err := lfs.PointerFile(testSHA256, 1234)
	require.NoError(t, err)
	expected := "version https://git-lfs.github.com/spec/v1\n" +
		"oid sha256:" + testSHA256 + "\n" +
		"size 1234\n"
	require.Equal(t, expected, content)

	_, err = lfs.PointerFile("not-a-sha", 1)
	require.ErrorIs(t, err, metastore.ErrInvalidArgument)
}

func TestGitAttributesFile(t *testing.T) {
	content := lfs.GitAttributesFile([]string{"data/a.csv", "data/b.csv"})
	expected := "data/a.csv filter=lfs diff=lfs merge=lfs -text\n" +
		"data/b.csv filter=lfs diff=lfs merge=lfs -text\n"
	require.Equal(t, expected, content)
}

func TestConfigFile(t *testing.T) {
	require.Equal(t, "[remote \"origin\"]\n\tlfsurl = "+testServerURL, lfs.ConfigFile(testServerURL, ""))
	require.Equal(t, "[remote \"upstream\"]\n\tlfsurl = "+testServerURL, lfs.ConfigFile(testServerURL, "upstream"))
}

func resource(path string) map[string]interface{} {
	return map[string]interface{}{"path": path, "sha256": testSHA256, "bytes": float64(10)}
}

func TestFiles(t *testing.T) {
	pkg := metastore.Package{
		"name": "ds1",
		"resources": []interface{}{
			resource("data/b.csv"),
			resource("data/a.csv"),
			map[string]interface{}{"path": "https://example.com/remote.csv", "sha256": testSHA256, "bytes": float64(1)},
			map[string]interface{}{"path": "data/no-hash.csv"},
		},
	}
	files, err := lfs.Files(pkg, testServerURL)
	require.NoError(t, err)

	pointer, _ := lfs.PointerFile(testSHA256, 10)
	expected := []lfs.File{
		{Path: "data/a.csv", Content: pointer},
		{Path: "data/b.csv", Content: pointer},
		{Path: ".gitattributes", Content: lfs.GitAttributesFile([]string{"data/a.csv", "data/b.csv"})},
		{Path: ".lfsconfig", Content: lfs.ConfigFile(testServerURL, "origin")},
	}
	if diff := deep.Equal(files, expected); diff != nil {
		t.Fatalf("files diff: %s", diff)
	}
}

func TestFiles_NoServer(t *testing.T) {
	pkg := metastore.Package{"resources": []interface{}{resource("data/a.csv"), resource("data/a.csv")}}
	files, err := lfs.Files(pkg, "")
	require.NoError(t, err)
	require.Nil(t, files)
}

func TestFiles_NoEligibleResources(t *testing.T) {
	pkg := metastore.Package{"resources": []interface{}{map[string]interface{}{"path": "data/r.csv"}}}
	files, err := lfs.Files(pkg, testServerURL)
	require.NoError(t, err)
	require.Nil(t, files)
}

func TestFiles_InvalidResources(t *testing.T) {
	cases := []struct {
		name      string
		resources []interface{}
		contains  string
	}{
		{"duplicate", []interface{}{resource("data/a.csv"), resource("data/a.csv")}, "conflicting resource path data/a.csv"},
		{"absolute", []interface{}{resource("/etc/passwd")}, "/etc/passwd"},
		{"parent", []interface{}{resource("../outside.csv")}, "../outside.csv"},
		{"nested_parent", []interface{}{resource("data/../../outside.csv")}, "data/../../outside.csv"},
		{"bad_sha", []interface{}{map[string]interface{}{"path": "data/a.csv", "sha256": "xyz", "bytes": 1}}, "data/a.csv"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			files, err := lfs.Files(metastore.Package{"resources": tt.resources}, testServerURL)
			if !errors.Is(err, metastore.ErrInvalidResource) {
				t.Fatalf("expected invalid resource error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("error %q should mention %q", err, tt.contains)
			}
			if files != nil {
				t.Fatalf("expected no files, got %v", files)
			}
		})
	}
}
