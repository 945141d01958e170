package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/treeverse/metastore/pkg/logging"
	"github.com/treeverse/metastore/pkg/metastore"
)

func tagRef(name string) string {
	return tagsRefPrefix + name
}

func (s *Store) TagCreate(ctx context.Context, packageID, revisionRef, name string, params metastore.TagCreateParams) (*metastore.TagInfo, error) {
	if err := metastore.ValidateTagName(name); err != nil {
		return nil, err
	}
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	revision, err := s.revisionFetch(ctx, packageID, repo, revisionRef)
	if err != nil {
		return nil, err
	}
	description := params.Description
	if description == "" {
		description = s.cfg.DefaultTagMessage
	}
	tag, err := s.createTag(ctx, repo, name, description, revision.Revision, params.Author)
	if err != nil {
		return nil, fmt.Errorf("%s: tag %s: %w", packageID, name, err)
	}
	s.log(ctx, packageID).
		WithFields(logging.Fields{logging.TagFieldKey: name, logging.RevisionFieldKey: revision.Revision}).
		Debug("Tag created")
	return tagToInfo(packageID, name, tag, revision), nil
}

// createTag creates the tag object and the reference naming it
// tagObject creates the annotated tag object, a name the host refuses is an invalid tag name
func (s *Store) tagObject(ctx context.Context, repo Repo, name, description, revision string, author *metastore.Author) (*Tag, error) {
	tag, err := s.host.CreateTag(ctx, repo, NewTag{
		Name:      name,
		Message:   description,
		ObjectSHA: revision,
		Tagger:    s.signature(author),
	})
	if errors.Is(err, ErrTagRejected) {
		return nil, fmt.Errorf("%w: %w", metastore.ErrInvalidTagName, err)
	}
	return tag, err
}

func (s *Store) createTag(ctx context.Context, repo Repo, name, description, revision string, author *metastore.Author) (*Tag, error) {
	tag, err := s.tagObject(ctx, repo, name, description, revision, author)
	if err != nil {
		return nil, err
	}
	err = s.host.CreateRef(ctx, repo, tagRef(name), tag.SHA)
	switch {
	case errors.Is(err, ErrRefExists):
		return nil, metastore.ErrTagExists
	case errors.Is(err, ErrRefRejected):
		return nil, fmt.Errorf("%w: %s", metastore.ErrInvalidTagName, err)
	case err != nil:
		return nil, err
	}
	return tag, nil
}

func (s *Store) TagList(ctx context.Context, packageID string) ([]*metastore.TagInfo, error) {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	refs, err := s.host.ListMatchingRefs(ctx, repo, tagsRefPrefix)
	if err != nil {
		return nil, err
	}
	tags := make([]*metastore.TagInfo, 0, len(refs))
	for _, ref := range refs {
		tag, err := s.refToTag(ctx, packageID, repo, ref, true)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", packageID, ref.Name, err)
		}
		tags = append(tags, tag)
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Created.Before(tags[j].Created)
	})
	return tags, nil
}

func (s *Store) TagFetch(ctx context.Context, packageID, name string) (*metastore.TagInfo, error) {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	return s.tagFetch(ctx, packageID, repo, name, true)
}

// tagFetch loads tag name, attaching its revision when withRevision is set
func (s *Store) tagFetch(ctx context.Context, packageID string, repo Repo, name string, withRevision bool) (*metastore.TagInfo, error) {
	ref, err := s.host.GetRef(ctx, repo, tagRef(name))
	if errors.Is(err, ErrObjectNotFound) {
		return nil, fmt.Errorf("%s: %s: %w", packageID, name, metastore.ErrTagNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.refToTag(ctx, packageID, repo, ref, withRevision)
}

// refToTag converts a tag reference to a TagInfo. References pointing directly to a commit
// (lightweight tags) carry no tagger or description.
func (s *Store) refToTag(ctx context.Context, packageID string, repo Repo, ref *Ref, withRevision bool) (*metastore.TagInfo, error) {
	name := strings.TrimPrefix(ref.Name, fullRefPrefix+tagsRefPrefix)
	tag := &Tag{Name: name, ObjectSHA: ref.SHA}
	if ref.Type == ObjectTypeTag {
		var err error
		tag, err = s.host.GetTag(ctx, repo, ref.SHA)
		if err != nil {
			return nil, fmt.Errorf("get tag object %s: %w", ref.SHA, err)
		}
	}
	info := tagToInfo(packageID, name, tag, nil)
	if !withRevision {
		return info, nil
	}
	revision, err := s.revisionFetch(ctx, packageID, repo, tag.ObjectSHA)
	if err != nil {
		return nil, err
	}
	info.Revision = revision
	if tag.Tagger == nil {
		info.Created = revision.Created
	}
	return info, nil
}

func (s *Store) TagUpdate(ctx context.Context, packageID, name string, params metastore.TagUpdateParams) (*metastore.TagInfo, error) {
	if params.NewName == nil && params.NewDescription == nil {
		return nil, metastore.ErrMissingTagUpdate
	}
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	current, err := s.tagFetch(ctx, packageID, repo, name, true)
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

	log := s.log(ctx, packageID).WithField(logging.TagFieldKey, current.Name)
	var tag *Tag
	if newName != current.Name {
		if err := metastore.ValidateTagName(newName); err != nil {
			return nil, err
		}
		tag, err = s.createTag(ctx, repo, newName, description, current.RevisionRef, params.Author)
		if err != nil {
			return nil, fmt.Errorf("%s: tag %s: %w", packageID, newName, err)
		}
		if err := s.host.DeleteRef(ctx, repo, tagRef(current.Name)); err != nil {
			log.WithError(err).WithField("new_tag", newName).
				Warn("Renamed tag created but the old tag could not be deleted, both names exist")
			return nil, fmt.Errorf("%s: delete renamed tag %s: %w", packageID, current.Name, err)
		}
		log.WithField("new_tag", newName).Debug("Tag renamed")
	} else {
		tag, err = s.tagObject(ctx, repo, newName, description, current.RevisionRef, params.Author)
		if err != nil {
			return nil, fmt.Errorf("%s: tag %s: %w", packageID, newName, err)
		}
		if err := s.host.UpdateRef(ctx, repo, tagRef(newName), tag.SHA, true); err != nil {
			return nil, fmt.Errorf("%s: update tag %s: %w", packageID, newName, err)
		}
		log.Debug("Tag description updated")
	}
	return tagToInfo(packageID, newName, tag, current.Revision), nil
}

func (s *Store) TagDelete(ctx context.Context, packageID, name string) error {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return err
	}
	if _, err := s.host.GetRef(ctx, repo, tagRef(name)); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return fmt.Errorf("%s: %s: %w", packageID, name, metastore.ErrTagNotFound)
		}
		return err
	}
	err = s.host.DeleteRef(ctx, repo, tagRef(name))
	if errors.Is(err, ErrObjectNotFound) {
		return fmt.Errorf("%s: %s: %w", packageID, name, metastore.ErrTagNotFound)
	}
	if err != nil {
		return err
	}
	s.log(ctx, packageID).WithField(logging.TagFieldKey, name).Debug("Tag deleted")
	return nil
}

func tagToInfo(packageID, name string, tag *Tag, revision *metastore.PackageRevisionInfo) *metastore.TagInfo {
	info := &metastore.TagInfo{
		PackageID:   packageID,
		Name:        name,
		RevisionRef: tag.ObjectSHA,
		Description: tag.Message,
		Revision:    revision,
	}
	if tag.Tagger != nil {
		info.Created = tag.Tagger.Date
		info.Author = signatureAuthor(tag.Tagger)
	}
	return info
}
