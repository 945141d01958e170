package metastore_test

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/treeverse/metastore/pkg/metastore"
)

func TestMergePackage(t *testing.T) {
	base := metastore.Package{
		"name":      "ds1",
		"resources": []interface{}{map[string]interface{}{"path": "data/r.csv"}},
		"version":   "1",
	}
	delta := metastore.Package{
		"type":    "csv",
		"version": "2",
	}
	merged := metastore.MergePackage(base, delta)
	expected := metastore.Package{
		"name":      "ds1",
		"resources": []interface{}{map[string]interface{}{"path": "data/r.csv"}},
		"version":   "2",
		"type":      "csv",
	}
	if diff := deep.Equal(merged, expected); diff != nil {
		t.Fatalf("merged package diff: %s", diff)
	}
	if _, ok := base["type"]; ok {
		t.Fatal("merge modified the base package")
	}
	if base["version"] != "1" {
		t.Fatalf("base version changed to %v", base["version"])
	}
}

func TestMergePackage_Shallow(t *testing.T) {
	base := metastore.Package{"licenses": map[string]interface{}{"name": "MIT", "path": "LICENSE"}}
	delta := metastore.Package{"licenses": map[string]interface{}{"name": "BSD"}}
	merged := metastore.MergePackage(base, delta)
	if diff := deep.Equal(merged["licenses"], map[string]interface{}{"name": "BSD"}); diff != nil {
		t.Fatalf("nested value should be replaced as a whole: %s", diff)
	}
}

func TestPackageRevisionInfo_Equal(t *testing.T) {
	now := time.Now()
	r1 := &metastore.PackageRevisionInfo{PackageID: "org/ds", Revision: "abc", Created: now, Description: "one"}
	r2 := &metastore.PackageRevisionInfo{PackageID: "org/ds", Revision: "abc", Created: now.Add(time.Hour), Description: "two"}
	r3 := &metastore.PackageRevisionInfo{PackageID: "org/ds", Revision: "def"}
	if !r1.Equal(r2) {
		t.Error("revisions with same package and revision should be equal")
	}
	if r1.Equal(r3) {
		t.Error("revisions with different revision should not be equal")
	}
	if r1.Equal(nil) {
		t.Error("revision should not equal nil")
	}
}

func TestTagInfo_Equal(t *testing.T) {
	t1 := &metastore.TagInfo{PackageID: "org/ds", Name: "v1", RevisionRef: "abc"}
	t2 := &metastore.TagInfo{PackageID: "org/ds", Name: "v1", RevisionRef: "def", Description: "moved"}
	t3 := &metastore.TagInfo{PackageID: "org/other", Name: "v1", RevisionRef: "abc"}
	if !t1.Equal(t2) {
		t.Error("tags with same package and name should be equal")
	}
	if t1.Equal(t3) {
		t.Error("tags of different packages should not be equal")
	}
}

func TestAuthor_String(t *testing.T) {
	cases := []struct {
		author   *metastore.Author
		expected string
	}{
		{nil, ""},
		{&metastore.Author{Name: "Jane"}, "Jane"},
		{&metastore.Author{Email: "jane@example.com"}, "<jane@example.com>"},
		{&metastore.Author{Name: "Jane", Email: "jane@example.com"}, "Jane <jane@example.com>"},
	}
	for _, tt := range cases {
		if s := tt.author.String(); s != tt.expected {
			t.Errorf("String()=%q, expected %q", s, tt.expected)
		}
	}
}
