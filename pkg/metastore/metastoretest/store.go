// Package metastoretest is a test suite every metastore.Store implementation is expected to pass
package metastoretest

import (
	"context"
	"errors"
	"testing"

	"github.com/go-test/deep"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/treeverse/metastore/pkg/metastore"
)

type MakeStore func(t *testing.T, ctx context.Context) metastore.Store

const packageOwner = "org"

var runTestID = nanoid.MustGenerate("abcdef1234567890", 8)

// missingRevisions are revision references no store knows: a commit sha length and a uuid hex
// length reference
var missingRevisions = []string{
	"0000000000000000000000000000000000000000",
	"00000000000000000000000000000000",
}

func strPtr(s string) *string {
	return &s
}

// uniquePackageID returns a package id for name unique to this run, deleting the package when
// the test completes
func uniquePackageID(t *testing.T, store metastore.Store, name string) string {
	t.Helper()
	id := packageOwner + "/" + runTestID + "-" + name
	t.Cleanup(func() {
		err := store.Delete(context.Background(), id)
		if err != nil && !errors.Is(err, metastore.ErrNotFound) {
			t.Errorf("cleanup package %s: %s", id, err)
		}
	})
	return id
}

func samplePackage(name string) metastore.Package {
	return metastore.Package{
		"name":  name,
		"title": "Sample dataset " + name,
		"resources": []interface{}{
			map[string]interface{}{"path": "data/r.csv", "format": "csv"},
		},
	}
}

func requirePackage(t *testing.T, rev *metastore.PackageRevisionInfo, expected metastore.Package) {
	t.Helper()
	if diff := deep.Equal(rev.Package, expected); diff != nil {
		t.Fatalf("package %s@%s payload diff: %s", rev.PackageID, rev.Revision, diff)
	}
}

func requireErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err=%v, expected %v", err, target)
	}
}

func mustCreate(t *testing.T, ctx context.Context, store metastore.Store, id string, pkg metastore.Package) *metastore.PackageRevisionInfo {
	t.Helper()
	rev, err := store.Create(ctx, id, pkg, metastore.CreateParams{})
	if err != nil {
		t.Fatalf("create package %s: %s", id, err)
	}
	return rev
}

func TestStore(t *testing.T, ms MakeStore) {
	t.Run("Create_Fetch", func(t *testing.T) { testCreateFetch(t, ms) })
	t.Run("Create_Conflict", func(t *testing.T) { testCreateConflict(t, ms) })
	t.Run("Fetch_NotFound", func(t *testing.T) { testFetchNotFound(t, ms) })
	t.Run("Update_Partial", func(t *testing.T) { testUpdatePartial(t, ms) })
	t.Run("Update_Replace", func(t *testing.T) { testUpdateReplace(t, ms) })
	t.Run("Update_BaseRevision", func(t *testing.T) { testUpdateBaseRevision(t, ms) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, ms) })
	t.Run("Revision_List", func(t *testing.T) { testRevisionList(t, ms) })
	t.Run("Revision_Fetch", func(t *testing.T) { testRevisionFetch(t, ms) })
	t.Run("Tag_CreateFetch", func(t *testing.T) { testTagCreateFetch(t, ms) })
	t.Run("Tag_CreateErrors", func(t *testing.T) { testTagCreateErrors(t, ms) })
	t.Run("Tag_List", func(t *testing.T) { testTagList(t, ms) })
	t.Run("Tag_Update", func(t *testing.T) { testTagUpdate(t, ms) })
	t.Run("Tag_Delete", func(t *testing.T) { testTagDelete(t, ms) })
	t.Run("Example_Scenario", func(t *testing.T) { testExampleScenario(t, ms) })
}

func testCreateFetch(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "create-fetch")
	pkg := samplePackage("create-fetch")
	author := &metastore.Author{Name: "Jane Doe", Email: "jane@example.com"}

	created, err := store.Create(ctx, id, pkg, metastore.CreateParams{Author: author, Message: "first version"})
	if err != nil {
		t.Fatalf("create package %s: %s", id, err)
	}
	if created.PackageID != id || created.Revision == "" {
		t.Fatalf("created revision %+v, expected package id %s and a revision", created, id)
	}
	if created.Description != "first version" {
		t.Errorf("created description %q, expected %q", created.Description, "first version")
	}
	if created.Author == nil || *created.Author != *author {
		t.Errorf("created author %v, expected %v", created.Author, author)
	}
	requirePackage(t, created, pkg)

	latest, err := store.Fetch(ctx, id, "")
	if err != nil {
		t.Fatalf("fetch %s: %s", id, err)
	}
	if !latest.Equal(created) {
		t.Fatalf("fetch latest got revision %s, expected %s", latest.Revision, created.Revision)
	}
	if latest.Description != "first version" {
		t.Errorf("fetched description %q, expected %q", latest.Description, "first version")
	}
	requirePackage(t, latest, pkg)

	byRevision, err := store.Fetch(ctx, id, created.Revision)
	if err != nil {
		t.Fatalf("fetch %s@%s: %s", id, created.Revision, err)
	}
	if !byRevision.Equal(created) {
		t.Fatalf("fetch by revision got %s, expected %s", byRevision.Revision, created.Revision)
	}
	requirePackage(t, byRevision, pkg)
}

func testCreateConflict(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "conflict")
	pkg := samplePackage("conflict")
	first := mustCreate(t, ctx, store, id, pkg)

	_, err := store.Create(ctx, id, metastore.Package{"name": "other"}, metastore.CreateParams{})
	requireErrorIs(t, err, metastore.ErrConflict)

	// existing package is untouched
	latest, err := store.Fetch(ctx, id, "")
	if err != nil {
		t.Fatalf("fetch %s: %s", id, err)
	}
	if !latest.Equal(first) {
		t.Fatalf("latest revision %s, expected %s", latest.Revision, first.Revision)
	}
	requirePackage(t, latest, pkg)
}

func testFetchNotFound(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)

	missingID := packageOwner + "/" + runTestID + "-no-such-package"
	_, err := store.Fetch(ctx, missingID, "")
	requireErrorIs(t, err, metastore.ErrNotFound)

	id := uniquePackageID(t, store, "fetch-not-found")
	mustCreate(t, ctx, store, id, samplePackage("fetch-not-found"))
	for _, ref := range append(missingRevisions, "no-such-tag") {
		_, err = store.Fetch(ctx, id, ref)
		requireErrorIs(t, err, metastore.ErrNotFound)
	}
}

func testUpdatePartial(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "update-partial")
	pkg := samplePackage("update-partial")
	first := mustCreate(t, ctx, store, id, pkg)

	updated, err := store.Update(ctx, id, metastore.Package{"title": "New title", "version": "1.1"}, metastore.UpdateParams{
		Partial: true,
		Message: "retitle",
	})
	if err != nil {
		t.Fatalf("update %s: %s", id, err)
	}
	if updated.Revision == first.Revision {
		t.Fatalf("update kept revision %s, expected a new revision", first.Revision)
	}
	if updated.Description != "retitle" {
		t.Errorf("update description %q, expected %q", updated.Description, "retitle")
	}
	expected := metastore.Package{
		"name":      pkg["name"],
		"title":     "New title",
		"version":   "1.1",
		"resources": pkg["resources"],
	}
	requirePackage(t, updated, expected)

	latest, err := store.Fetch(ctx, id, "")
	if err != nil {
		t.Fatalf("fetch %s: %s", id, err)
	}
	requirePackage(t, latest, expected)

	// the previous revision is immutable
	old, err := store.Fetch(ctx, id, first.Revision)
	if err != nil {
		t.Fatalf("fetch %s@%s: %s", id, first.Revision, err)
	}
	requirePackage(t, old, pkg)
}

func testUpdateReplace(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "update-replace")
	mustCreate(t, ctx, store, id, samplePackage("update-replace"))

	replacement := metastore.Package{"name": "update-replace", "version": "2.0"}
	updated, err := store.Update(ctx, id, replacement, metastore.UpdateParams{})
	if err != nil {
		t.Fatalf("update %s: %s", id, err)
	}
	requirePackage(t, updated, replacement)

	latest, err := store.Fetch(ctx, id, "")
	if err != nil {
		t.Fatalf("fetch %s: %s", id, err)
	}
	requirePackage(t, latest, replacement)

	_, err = store.Update(ctx, packageOwner+"/"+runTestID+"-no-such-package", replacement, metastore.UpdateParams{})
	requireErrorIs(t, err, metastore.ErrNotFound)
}

func testUpdateBaseRevision(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "update-base")
	first := mustCreate(t, ctx, store, id, metastore.Package{"name": "update-base", "a": "1"})
	if _, err := store.Update(ctx, id, metastore.Package{"b": "2"}, metastore.UpdateParams{Partial: true}); err != nil {
		t.Fatalf("update %s: %s", id, err)
	}

	third, err := store.Update(ctx, id, metastore.Package{"c": "3"}, metastore.UpdateParams{
		Partial:         true,
		BaseRevisionRef: first.Revision,
	})
	if err != nil {
		t.Fatalf("update %s from base %s: %s", id, first.Revision, err)
	}
	// merged onto the base, written on top of the latest revision
	requirePackage(t, third, metastore.Package{"name": "update-base", "a": "1", "c": "3"})

	revisions, err := store.RevisionList(ctx, id)
	if err != nil {
		t.Fatalf("revision list %s: %s", id, err)
	}
	if len(revisions) != 3 {
		t.Fatalf("got %d revisions, expected 3", len(revisions))
	}
	if !revisions[0].Equal(third) {
		t.Fatalf("latest revision %s, expected %s", revisions[0].Revision, third.Revision)
	}

	_, err = store.Update(ctx, id, metastore.Package{"d": "4"}, metastore.UpdateParams{
		Partial:         true,
		BaseRevisionRef: missingRevisions[0],
	})
	requireErrorIs(t, err, metastore.ErrNotFound)
}

func testDelete(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "delete")
	rev := mustCreate(t, ctx, store, id, samplePackage("delete"))
	if _, err := store.TagCreate(ctx, id, rev.Revision, "v1", metastore.TagCreateParams{}); err != nil {
		t.Fatalf("tag create %s: %s", id, err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete %s: %s", id, err)
	}
	_, err := store.Fetch(ctx, id, "")
	requireErrorIs(t, err, metastore.ErrNotFound)
	_, err = store.RevisionList(ctx, id)
	requireErrorIs(t, err, metastore.ErrNotFound)
	_, err = store.TagFetch(ctx, id, "v1")
	requireErrorIs(t, err, metastore.ErrNotFound)

	err = store.Delete(ctx, id)
	requireErrorIs(t, err, metastore.ErrNotFound)

	// the id can be reused
	recreated := mustCreate(t, ctx, store, id, metastore.Package{"name": "recreated"})
	revisions, err := store.RevisionList(ctx, id)
	if err != nil {
		t.Fatalf("revision list %s: %s", id, err)
	}
	if len(revisions) != 1 || !revisions[0].Equal(recreated) {
		t.Fatalf("revisions after recreate %v, expected only %s", revisions, recreated.Revision)
	}
}

func testRevisionList(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "revision-list")
	created := []*metastore.PackageRevisionInfo{mustCreate(t, ctx, store, id, samplePackage("revision-list"))}

	const updates = 3
	for i := 0; i < updates; i++ {
		revisions, err := store.RevisionList(ctx, id)
		if err != nil {
			t.Fatalf("revision list %s: %s", id, err)
		}
		if len(revisions) != len(created) {
			t.Fatalf("got %d revisions, expected %d", len(revisions), len(created))
		}
		rev, err := store.Update(ctx, id, metastore.Package{"iteration": float64(i)}, metastore.UpdateParams{Partial: true})
		if err != nil {
			t.Fatalf("update %s: %s", id, err)
		}
		created = append(created, rev)
	}

	// an update leaving the payload unchanged still adds a revision
	unchanged, err := store.Update(ctx, id, metastore.Package{}, metastore.UpdateParams{Partial: true})
	if err != nil {
		t.Fatalf("unchanged update %s: %s", id, err)
	}
	if unchanged.Equal(created[len(created)-1]) {
		t.Fatalf("unchanged update returned the previous revision %s", unchanged.Revision)
	}
	created = append(created, unchanged)

	revisions, err := store.RevisionList(ctx, id)
	if err != nil {
		t.Fatalf("revision list %s: %s", id, err)
	}
	if len(revisions) != len(created) {
		t.Fatalf("got %d revisions, expected %d", len(revisions), len(created))
	}
	for i, rev := range revisions {
		expected := created[len(created)-1-i]
		if !rev.Equal(expected) {
			t.Errorf("revision %d is %s, expected %s (newest first)", i, rev.Revision, expected.Revision)
		}
		if rev.Package != nil {
			t.Errorf("revision %d carries a payload, expected metadata only", i)
		}
		if i > 0 && rev.Created.After(revisions[i-1].Created) {
			t.Errorf("revision %d created %s after newer revision %s", i, rev.Created, revisions[i-1].Created)
		}
	}
}

func testRevisionFetch(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "revision-fetch")
	created, err := store.Create(ctx, id, samplePackage("revision-fetch"), metastore.CreateParams{Message: "init"})
	if err != nil {
		t.Fatalf("create %s: %s", id, err)
	}

	rev, err := store.RevisionFetch(ctx, id, created.Revision)
	if err != nil {
		t.Fatalf("revision fetch %s@%s: %s", id, created.Revision, err)
	}
	if !rev.Equal(created) {
		t.Fatalf("revision fetch got %s, expected %s", rev.Revision, created.Revision)
	}
	if rev.Package != nil {
		t.Errorf("revision fetch carries a payload, expected metadata only")
	}
	if rev.Description != "init" {
		t.Errorf("revision description %q, expected %q", rev.Description, "init")
	}

	for _, ref := range missingRevisions {
		_, err = store.RevisionFetch(ctx, id, ref)
		requireErrorIs(t, err, metastore.ErrNotFound)
	}
}

func testTagCreateFetch(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "tag-create")
	pkg := samplePackage("tag-create")
	first := mustCreate(t, ctx, store, id, pkg)
	if _, err := store.Update(ctx, id, metastore.Package{"version": "2"}, metastore.UpdateParams{Partial: true}); err != nil {
		t.Fatalf("update %s: %s", id, err)
	}

	author := &metastore.Author{Name: "Tagger", Email: "tagger@example.com"}
	tag, err := store.TagCreate(ctx, id, first.Revision, "v1.0", metastore.TagCreateParams{
		Author:      author,
		Description: "First release",
	})
	if err != nil {
		t.Fatalf("tag create %s: %s", id, err)
	}
	if tag.Name != "v1.0" || tag.RevisionRef != first.Revision || tag.Description != "First release" {
		t.Fatalf("created tag %+v, expected v1.0 at %s", tag, first.Revision)
	}

	fetched, err := store.TagFetch(ctx, id, "v1.0")
	if err != nil {
		t.Fatalf("tag fetch %s: %s", id, err)
	}
	if !fetched.Equal(tag) {
		t.Fatalf("fetched tag %s, expected %s", fetched.Name, tag.Name)
	}
	if fetched.RevisionRef != first.Revision {
		t.Errorf("tag revision %s, expected %s", fetched.RevisionRef, first.Revision)
	}
	if fetched.Description != "First release" {
		t.Errorf("tag description %q, expected %q", fetched.Description, "First release")
	}
	if fetched.Revision == nil || !fetched.Revision.Equal(first) {
		t.Errorf("tag attached revision %v, expected %s", fetched.Revision, first.Revision)
	}

	// a tag name is a revision reference
	byTag, err := store.Fetch(ctx, id, "v1.0")
	if err != nil {
		t.Fatalf("fetch %s@v1.0: %s", id, err)
	}
	requirePackage(t, byTag, pkg)

	// tagging by tag name targets the same revision
	again, err := store.TagCreate(ctx, id, "v1.0", "v1.0-again", metastore.TagCreateParams{})
	if err != nil {
		t.Fatalf("tag create by tag ref %s: %s", id, err)
	}
	if again.RevisionRef != first.Revision {
		t.Errorf("tag by tag ref revision %s, expected %s", again.RevisionRef, first.Revision)
	}
	if again.Description == "" {
		t.Errorf("tag created without description has an empty description, expected a default")
	}
}

func testTagCreateErrors(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "tag-errors")
	rev := mustCreate(t, ctx, store, id, samplePackage("tag-errors"))

	if _, err := store.TagCreate(ctx, id, rev.Revision, "v1", metastore.TagCreateParams{}); err != nil {
		t.Fatalf("tag create %s: %s", id, err)
	}
	_, err := store.TagCreate(ctx, id, rev.Revision, "v1", metastore.TagCreateParams{})
	requireErrorIs(t, err, metastore.ErrConflict)

	for _, ref := range missingRevisions {
		_, err = store.TagCreate(ctx, id, ref, "v2", metastore.TagCreateParams{})
		requireErrorIs(t, err, metastore.ErrNotFound)
	}

	for _, name := range []string{"", "with space", "tab\tname", "new\nline", "bell\a"} {
		_, err = store.TagCreate(ctx, id, rev.Revision, name, metastore.TagCreateParams{})
		requireErrorIs(t, err, metastore.ErrInvalidArgument)
	}

	_, err = store.TagCreate(ctx, packageOwner+"/"+runTestID+"-no-such-package", rev.Revision, "v1", metastore.TagCreateParams{})
	requireErrorIs(t, err, metastore.ErrNotFound)
}

func testTagList(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "tag-list")
	rev := mustCreate(t, ctx, store, id, samplePackage("tag-list"))

	tags, err := store.TagList(ctx, id)
	if err != nil {
		t.Fatalf("tag list %s: %s", id, err)
	}
	if len(tags) != 0 {
		t.Fatalf("got %d tags on a new package, expected none", len(tags))
	}

	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		if _, err := store.TagCreate(ctx, id, rev.Revision, name, metastore.TagCreateParams{Description: "tag " + name}); err != nil {
			t.Fatalf("tag create %s %s: %s", id, name, err)
		}
	}
	tags, err = store.TagList(ctx, id)
	if err != nil {
		t.Fatalf("tag list %s: %s", id, err)
	}
	if len(tags) != len(names) {
		t.Fatalf("got %d tags, expected %d", len(tags), len(names))
	}
	found := map[string]bool{}
	for i, tag := range tags {
		found[tag.Name] = true
		if tag.RevisionRef != rev.Revision {
			t.Errorf("tag %s revision %s, expected %s", tag.Name, tag.RevisionRef, rev.Revision)
		}
		if tag.Description != "tag "+tag.Name {
			t.Errorf("tag %s description %q, expected %q", tag.Name, tag.Description, "tag "+tag.Name)
		}
		if i > 0 && tag.Created.Before(tags[i-1].Created) {
			t.Errorf("tag %s created %s before previous tag %s", tag.Name, tag.Created, tags[i-1].Created)
		}
	}
	for _, name := range names {
		if !found[name] {
			t.Errorf("tag %s missing from list", name)
		}
	}
}

func testTagUpdate(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "tag-update")
	rev := mustCreate(t, ctx, store, id, samplePackage("tag-update"))
	if _, err := store.TagCreate(ctx, id, rev.Revision, "v1", metastore.TagCreateParams{Description: "one"}); err != nil {
		t.Fatalf("tag create %s: %s", id, err)
	}

	t.Run("missing_arguments", func(t *testing.T) {
		_, err := store.TagUpdate(ctx, id, "v1", metastore.TagUpdateParams{})
		requireErrorIs(t, err, metastore.ErrInvalidArgument)
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := store.TagUpdate(ctx, id, "no-such-tag", metastore.TagUpdateParams{NewDescription: strPtr("x")})
		requireErrorIs(t, err, metastore.ErrNotFound)
	})

	t.Run("no_change", func(t *testing.T) {
		tag, err := store.TagUpdate(ctx, id, "v1", metastore.TagUpdateParams{NewName: strPtr("v1"), NewDescription: strPtr("one")})
		if err != nil {
			t.Fatalf("tag update %s: %s", id, err)
		}
		if tag.Name != "v1" || tag.Description != "one" || tag.RevisionRef != rev.Revision {
			t.Fatalf("tag after no-op update %+v", tag)
		}
	})

	t.Run("description", func(t *testing.T) {
		tag, err := store.TagUpdate(ctx, id, "v1", metastore.TagUpdateParams{NewDescription: strPtr("updated")})
		if err != nil {
			t.Fatalf("tag update %s: %s", id, err)
		}
		if tag.Name != "v1" || tag.Description != "updated" {
			t.Fatalf("tag after description update %+v", tag)
		}
		fetched, err := store.TagFetch(ctx, id, "v1")
		if err != nil {
			t.Fatalf("tag fetch %s: %s", id, err)
		}
		if fetched.Description != "updated" || fetched.RevisionRef != rev.Revision {
			t.Fatalf("fetched tag %+v, expected description updated at %s", fetched, rev.Revision)
		}
	})

	t.Run("rename", func(t *testing.T) {
		tag, err := store.TagUpdate(ctx, id, "v1", metastore.TagUpdateParams{NewName: strPtr("v1.0")})
		if err != nil {
			t.Fatalf("tag rename %s: %s", id, err)
		}
		if tag.Name != "v1.0" || tag.RevisionRef != rev.Revision || tag.Description != "updated" {
			t.Fatalf("renamed tag %+v", tag)
		}
		_, err = store.TagFetch(ctx, id, "v1")
		requireErrorIs(t, err, metastore.ErrNotFound)
		fetched, err := store.TagFetch(ctx, id, "v1.0")
		if err != nil {
			t.Fatalf("tag fetch %s: %s", id, err)
		}
		if fetched.RevisionRef != rev.Revision {
			t.Fatalf("renamed tag revision %s, expected %s", fetched.RevisionRef, rev.Revision)
		}
	})

	t.Run("rename_and_describe", func(t *testing.T) {
		tag, err := store.TagUpdate(ctx, id, "v1.0", metastore.TagUpdateParams{NewName: strPtr("v1.1"), NewDescription: strPtr("both")})
		if err != nil {
			t.Fatalf("tag update %s: %s", id, err)
		}
		if tag.Name != "v1.1" || tag.Description != "both" {
			t.Fatalf("tag after rename and describe %+v", tag)
		}
		_, err = store.TagFetch(ctx, id, "v1.0")
		requireErrorIs(t, err, metastore.ErrNotFound)
	})

	t.Run("rename_conflict", func(t *testing.T) {
		if _, err := store.TagCreate(ctx, id, rev.Revision, "taken", metastore.TagCreateParams{}); err != nil {
			t.Fatalf("tag create %s: %s", id, err)
		}
		_, err := store.TagUpdate(ctx, id, "v1.1", metastore.TagUpdateParams{NewName: strPtr("taken")})
		requireErrorIs(t, err, metastore.ErrConflict)
		// the tag being renamed is left in place
		if _, err := store.TagFetch(ctx, id, "v1.1"); err != nil {
			t.Fatalf("tag fetch after failed rename: %s", err)
		}
	})

	t.Run("rename_invalid", func(t *testing.T) {
		_, err := store.TagUpdate(ctx, id, "v1.1", metastore.TagUpdateParams{NewName: strPtr("bad name")})
		requireErrorIs(t, err, metastore.ErrInvalidArgument)
	})
}

func testTagDelete(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "tag-delete")
	rev := mustCreate(t, ctx, store, id, samplePackage("tag-delete"))
	if _, err := store.TagCreate(ctx, id, rev.Revision, "v1", metastore.TagCreateParams{}); err != nil {
		t.Fatalf("tag create %s: %s", id, err)
	}

	if err := store.TagDelete(ctx, id, "v1"); err != nil {
		t.Fatalf("tag delete %s: %s", id, err)
	}
	_, err := store.TagFetch(ctx, id, "v1")
	requireErrorIs(t, err, metastore.ErrNotFound)
	err = store.TagDelete(ctx, id, "v1")
	requireErrorIs(t, err, metastore.ErrNotFound)

	// revision outlives its tag
	if _, err := store.RevisionFetch(ctx, id, rev.Revision); err != nil {
		t.Fatalf("revision fetch after tag delete: %s", err)
	}
	// name can be reused
	if _, err := store.TagCreate(ctx, id, rev.Revision, "v1", metastore.TagCreateParams{}); err != nil {
		t.Fatalf("tag create after delete: %s", err)
	}
}

func testExampleScenario(t *testing.T, ms MakeStore) {
	ctx := context.Background()
	store := ms(t, ctx)
	id := uniquePackageID(t, store, "ds1")
	original := metastore.Package{
		"name":      "ds1",
		"resources": []interface{}{map[string]interface{}{"path": "data/r.csv"}},
	}

	r1 := mustCreate(t, ctx, store, id, original)
	r2, err := store.Update(ctx, id, metastore.Package{"type": "csv"}, metastore.UpdateParams{Partial: true})
	if err != nil {
		t.Fatalf("update %s: %s", id, err)
	}
	if r2.Revision == r1.Revision {
		t.Fatalf("update returned revision %s, expected a new revision", r2.Revision)
	}
	requirePackage(t, r2, metastore.Package{
		"name":      "ds1",
		"resources": original["resources"],
		"type":      "csv",
	})

	if _, err := store.TagCreate(ctx, id, r1.Revision, "v1", metastore.TagCreateParams{}); err != nil {
		t.Fatalf("tag create %s: %s", id, err)
	}
	tagged, err := store.Fetch(ctx, id, "v1")
	if err != nil {
		t.Fatalf("fetch %s@v1: %s", id, err)
	}
	if !tagged.Equal(r1) {
		t.Fatalf("fetch by tag got revision %s, expected %s", tagged.Revision, r1.Revision)
	}
	requirePackage(t, tagged, original)
}
