package metastore

import (
	"context"
)

// CreateParams holds the optional arguments of Store.Create
type CreateParams struct {
	Author  *Author
	Message string
}

// UpdateParams holds the optional arguments of Store.Update
type UpdateParams struct {
	Author *Author
	// Partial merges the given metadata keys onto the base revision payload instead of
	// replacing it.
	Partial bool
	// BaseRevisionRef is the revision or tag the partial update merges onto, latest when empty
	BaseRevisionRef string
	Message         string
}

// TagCreateParams holds the optional arguments of Store.TagCreate
type TagCreateParams struct {
	Author      *Author
	Description string
}

// TagUpdateParams holds the arguments of Store.TagUpdate. At least one of NewName or
// NewDescription must be set.
type TagUpdateParams struct {
	Author         *Author
	NewName        *string
	NewDescription *string
}

// Store is the versioned package metadata store contract implemented by every backend.
//
// A revision ref is either a revision identifier or a tag name. An empty ref means the latest
// revision.
type Store interface {
	// Create stores the first revision of a new package.
	// Returns ErrPackageExists if a package with the same id already exists.
	Create(ctx context.Context, packageID string, metadata Package, params CreateParams) (*PackageRevisionInfo, error)

	// Fetch returns the revision pointed by revisionRef, including the package payload.
	Fetch(ctx context.Context, packageID, revisionRef string) (*PackageRevisionInfo, error)

	// Update stores a new revision of an existing package.
	Update(ctx context.Context, packageID string, metadata Package, params UpdateParams) (*PackageRevisionInfo, error)

	// Delete removes the package with all its revisions and tags.
	Delete(ctx context.Context, packageID string) error

	// RevisionList returns the package revisions, newest first, without payload.
	RevisionList(ctx context.Context, packageID string) ([]*PackageRevisionInfo, error)

	// RevisionFetch returns revision metadata without payload.
	RevisionFetch(ctx context.Context, packageID, revisionRef string) (*PackageRevisionInfo, error)

	// TagCreate labels the revision pointed by revisionRef with name.
	TagCreate(ctx context.Context, packageID, revisionRef, name string, params TagCreateParams) (*TagInfo, error)

	// TagList returns the package tags ordered by creation time.
	TagList(ctx context.Context, packageID string) ([]*TagInfo, error)

	// TagFetch returns the named tag, with the revision it points to.
	TagFetch(ctx context.Context, packageID, name string) (*TagInfo, error)

	// TagUpdate renames a tag and/or replaces its description. Renaming creates the new tag
	// before deleting the old one.
	TagUpdate(ctx context.Context, packageID, name string, params TagUpdateParams) (*TagInfo, error)

	// TagDelete removes the named tag.
	TagDelete(ctx context.Context, packageID, name string) error
}
