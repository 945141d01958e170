package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/treeverse/metastore/pkg/logging"
	"github.com/treeverse/metastore/pkg/metastore"
)

// tagRecord is the content of a tag file: created, revision and base64 description
func tagRecord(created time.Time, revision, description string) string {
	return strings.Join([]string{created.Format(time.RFC3339Nano), revision, encodeDescription(description)}, recordSeparator)
}

func parseTagRecord(packageID, name, content string) (*metastore.TagInfo, error) {
	fields := strings.SplitN(strings.TrimSpace(content), recordSeparator, recordFields)
	if len(fields) != recordFields {
		return nil, fmt.Errorf("tag %s record %q: %w", name, content, metastore.ErrStorageFault)
	}
	created, err := time.Parse(time.RFC3339Nano, fields[0])
	if err != nil {
		return nil, fmt.Errorf("tag %s record %q: %s: %w", name, content, err, metastore.ErrStorageFault)
	}
	description, err := decodeDescription(fields[2])
	if err != nil {
		return nil, err
	}
	return &metastore.TagInfo{
		PackageID:   packageID,
		Name:        name,
		Created:     created,
		RevisionRef: fields[1],
		Description: description,
	}, nil
}

func tagPath(dir, name string) string {
	return path.Join(dir, tagsDir, name)
}

// readTag reads the named tag without its revision, ErrTagNotFound if there is no such tag
func (s *Store) readTag(packageID, dir, name string) (*metastore.TagInfo, error) {
	p := tagPath(dir, name)
	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %s: %w", packageID, name, metastore.ErrTagNotFound)
	}
	if err != nil {
		return nil, fsError("read", p, err)
	}
	return parseTagRecord(packageID, name, string(data))
}

// tagFetch reads the named tag with the revision it points to
func (s *Store) tagFetch(packageID, dir, name string) (*metastore.TagInfo, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}
	tag, err := s.readTag(packageID, dir, name)
	if err != nil {
		return nil, err
	}
	rev, err := s.resolve(packageID, dir, tag.RevisionRef)
	if err != nil {
		return nil, err
	}
	tag.Revision = rev
	return tag, nil
}

// writeTag stores a tag on rev, failing with ErrTagExists when the name is taken unless
// overwrite is set. Caller holds the write lock.
func (s *Store) writeTag(dir string, rev *metastore.PackageRevisionInfo, name, description string, author *metastore.Author, overwrite bool) (*metastore.TagInfo, error) {
	tagDir := path.Join(dir, tagsDir)
	if err := s.fs.MkdirAll(tagDir, dirPerm); err != nil {
		return nil, fsError("mkdir", tagDir, err)
	}
	p := tagPath(dir, name)
	if !overwrite {
		exists, err := afero.Exists(s.fs, p)
		if err != nil {
			return nil, fsError("stat", p, err)
		}
		if exists {
			return nil, fmt.Errorf("%s: %s: %w", rev.PackageID, name, metastore.ErrTagExists)
		}
	}
	created := s.now()
	if err := afero.WriteFile(s.fs, p, []byte(tagRecord(created, rev.Revision, description)), filePerm); err != nil {
		return nil, fsError("write", p, err)
	}
	return &metastore.TagInfo{
		PackageID:   rev.PackageID,
		Name:        name,
		Created:     created,
		RevisionRef: rev.Revision,
		Author:      author,
		Revision:    rev,
		Description: description,
	}, nil
}

func (s *Store) TagCreate(ctx context.Context, packageID, revisionRef, name string, params metastore.TagCreateParams) (*metastore.TagInfo, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	rev, err := s.resolve(packageID, dir, revisionRef)
	if err != nil {
		return nil, err
	}
	description := params.Description
	if description == "" {
		description = DefaultTagDescription
	}
	tag, err := s.writeTag(dir, rev, name, description, params.Author, false)
	if err != nil {
		return nil, err
	}
	s.log(ctx, packageID).
		WithFields(logging.Fields{logging.TagFieldKey: name, logging.RevisionFieldKey: rev.Revision}).
		Debug("Tag created")
	return tag, nil
}

func (s *Store) TagList(_ context.Context, packageID string) ([]*metastore.TagInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	tagDir := path.Join(dir, tagsDir)
	entries, err := afero.ReadDir(s.fs, tagDir)
	if errors.Is(err, os.ErrNotExist) {
		return []*metastore.TagInfo{}, nil
	}
	if err != nil {
		return nil, fsError("list", tagDir, err)
	}
	revisions, err := s.revisions(packageID, dir)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*metastore.PackageRevisionInfo, len(revisions))
	for _, rev := range revisions {
		byID[rev.Revision] = rev
	}
	tags := make([]*metastore.TagInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		tag, err := s.readTag(packageID, dir, entry.Name())
		if err != nil {
			return nil, err
		}
		tag.Revision = byID[tag.RevisionRef]
		tags = append(tags, tag)
	}
	sortTags(tags)
	return tags, nil
}

func (s *Store) TagFetch(_ context.Context, packageID, name string) (*metastore.TagInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	return s.tagFetch(packageID, dir, name)
}

func (s *Store) TagUpdate(ctx context.Context, packageID, name string, params metastore.TagUpdateParams) (*metastore.TagInfo, error) {
	if params.NewName == nil && params.NewDescription == nil {
		return nil, metastore.ErrMissingTagUpdate
	}
	if params.NewName != nil {
		if err := validateTagName(*params.NewName); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return nil, err
	}
	current, err := s.tagFetch(packageID, dir, name)
	if err != nil {
		return nil, err
	}
	newName := current.Name
	if params.NewName != nil {
		newName = *params.NewName
	}
	description := current.Description
	if params.NewDescription != nil {
		description = *params.NewDescription
	}
	if newName == current.Name && description == current.Description {
		return current, nil
	}

	rename := newName != current.Name
	tag, err := s.writeTag(dir, current.Revision, newName, description, params.Author, !rename)
	if err != nil {
		return nil, err
	}
	if rename {
		p := tagPath(dir, current.Name)
		if err := s.fs.Remove(p); err != nil {
			return nil, fsError("remove", p, err)
		}
	}
	s.log(ctx, packageID).
		WithFields(logging.Fields{logging.TagFieldKey: name, "new_name": newName}).
		Debug("Tag updated")
	return tag, nil
}

func (s *Store) TagDelete(ctx context.Context, packageID, name string) error {
	if err := validateTagName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dir, err := s.packageDir(packageID)
	if err != nil {
		return err
	}
	p := tagPath(dir, name)
	exists, err := afero.Exists(s.fs, p)
	if err != nil {
		return fsError("stat", p, err)
	}
	if !exists {
		return fmt.Errorf("%s: %s: %w", packageID, name, metastore.ErrTagNotFound)
	}
	if err := s.fs.Remove(p); err != nil {
		return fsError("remove", p, err)
	}
	s.log(ctx, packageID).WithField(logging.TagFieldKey, name).Debug("Tag deleted")
	return nil
}
