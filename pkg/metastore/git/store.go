// Package git implements a metastore.Store on top of the object model of a Git hosting
// service. Every package is a repository, every revision is a commit on the default branch
// changing the metadata file and every tag is an annotated tag object with its reference.
package git

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/treeverse/metastore/pkg/cache"
	"github.com/treeverse/metastore/pkg/logging"
	"github.com/treeverse/metastore/pkg/metastore"
	"github.com/treeverse/metastore/pkg/metastore/lfs"
)

const (
	// MetadataPath is the path of the package metadata file in every revision
	MetadataPath = "datapackage.json"
	ReadmePath   = "README.md"

	DefaultBranch               = "master"
	DefaultCommitMessage        = "Datapackage updated"
	DefaultInitialCommitMessage = "Initial datapackage commit"
	DefaultTagMessage           = "Tagging revision"
	DefaultOwnerCacheSize       = 100
	readmeCommitMessage         = "Initialize data repository"

	// RevisionLength is the length of a revision id, the hex encoded commit sha
	RevisionLength = 40

	headsRefPrefix = "heads/"
	tagsRefPrefix  = "tags/"
	fullRefPrefix  = "refs/"
	packageIDSep   = "/"
)

const DefaultReadme = "# ¯\\_(ツ)_/¯\n" +
	"This is a datapackage repository created by " +
	"[`metastore-lib`](https://github.com/datopian/metastore-lib)"

type Config struct {
	// DefaultOwner is the owner of packages whose id has no owner part
	DefaultOwner string
	// DefaultAuthor signs commits and tags written without an explicit author
	DefaultAuthor        *metastore.Author
	DefaultBranch        string
	DefaultCommitMessage string
	InitialCommitMessage string
	DefaultTagMessage    string
	// LFSServerURL enables writing LFS pointer files for package resources
	LFSServerURL   string
	OwnerCacheSize int
	// OwnerCacheTTL zero keeps owner scopes for the store lifetime
	OwnerCacheTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultBranch == "" {
		c.DefaultBranch = DefaultBranch
	}
	if c.DefaultCommitMessage == "" {
		c.DefaultCommitMessage = DefaultCommitMessage
	}
	if c.InitialCommitMessage == "" {
		c.InitialCommitMessage = DefaultInitialCommitMessage
	}
	if c.DefaultTagMessage == "" {
		c.DefaultTagMessage = DefaultTagMessage
	}
	if c.OwnerCacheSize <= 0 {
		c.OwnerCacheSize = DefaultOwnerCacheSize
	}
	return c
}

type Store struct {
	host   Host
	cfg    Config
	owners *cache.GetSetCache
}

// authenticatedLoginKey caches the login of the host identity next to the owner scopes
type authenticatedLoginKey struct{}

func New(host Host, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	owners, err := cache.NewCacheByParams(&cache.Params{
		Name:   "owners",
		Size:   cfg.OwnerCacheSize,
		Expiry: cfg.OwnerCacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("owner cache: %w", err)
	}
	return &Store{
		host:   host,
		cfg:    cfg,
		owners: owners,
	}, nil
}

// parseID splits a package id into owner and repository name
func (s *Store) parseID(packageID string) (Repo, error) {
	owner, name, found := strings.Cut(packageID, packageIDSep)
	if !found {
		owner, name = s.cfg.DefaultOwner, packageID
	}
	if owner == "" || name == "" {
		return Repo{}, fmt.Errorf("%s: %w", packageID, metastore.ErrInvalidPackageID)
	}
	return Repo{Owner: owner, Name: name}, nil
}

func (s *Store) authenticatedLogin(ctx context.Context) (string, error) {
	v, err := s.owners.GetOrSet(authenticatedLoginKey{}, func() (interface{}, error) {
		return s.host.AuthenticatedLogin(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// owner returns the account scope for login, distinguishing the authenticated identity from
// organizations
func (s *Store) owner(ctx context.Context, login string) (Owner, error) {
	v, err := s.owners.GetOrSet(login, func() (interface{}, error) {
		authenticated, err := s.authenticatedLogin(ctx)
		if err != nil {
			return nil, err
		}
		return Owner{Login: login, Authenticated: strings.EqualFold(login, authenticated)}, nil
	})
	if err != nil {
		return Owner{}, fmt.Errorf("resolve owner %s: %w", login, err)
	}
	return v.(Owner), nil
}

// repository parses packageID and verifies its repository exists
func (s *Store) repository(ctx context.Context, packageID string) (Repo, error) {
	repo, err := s.parseID(packageID)
	if err != nil {
		return Repo{}, err
	}
	err = s.host.GetRepository(ctx, repo)
	if errors.Is(err, ErrObjectNotFound) {
		return Repo{}, fmt.Errorf("%s: %w", packageID, metastore.ErrPackageNotFound)
	}
	if err != nil {
		return Repo{}, err
	}
	return repo, nil
}

func (s *Store) log(ctx context.Context, packageID string) logging.Logger {
	return logging.FromContext(ctx).WithField(logging.PackageIDFieldKey, packageID)
}

func (s *Store) branchRef() string {
	return headsRefPrefix + s.cfg.DefaultBranch
}

// packageFiles renders the metadata file followed by the LFS files of metadata
func (s *Store) packageFiles(metadata metastore.Package) ([]lfs.File, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(metadata); err != nil {
		return nil, fmt.Errorf("encode package metadata: %w", err)
	}
	lfsFiles, err := lfs.Files(metadata, s.cfg.LFSServerURL)
	if err != nil {
		return nil, err
	}
	files := make([]lfs.File, 0, len(lfsFiles)+1)
	files = append(files, lfs.File{Path: MetadataPath, Content: buf.String()})
	return append(files, lfsFiles...), nil
}

// storedPackage decodes the metadata file of files, the payload as a later fetch returns it
func storedPackage(files []lfs.File) (metastore.Package, error) {
	var pkg metastore.Package
	if err := json.Unmarshal([]byte(files[0].Content), &pkg); err != nil {
		return nil, fmt.Errorf("decode package metadata: %w", err)
	}
	return pkg, nil
}

func (s *Store) Create(ctx context.Context, packageID string, metadata metastore.Package, params metastore.CreateParams) (*metastore.PackageRevisionInfo, error) {
	repo, err := s.parseID(packageID)
	if err != nil {
		return nil, err
	}
	files, err := s.packageFiles(metadata)
	if err != nil {
		return nil, err
	}
	stored, err := storedPackage(files)
	if err != nil {
		return nil, err
	}
	owner, err := s.owner(ctx, repo.Owner)
	if err != nil {
		return nil, err
	}
	log := s.log(ctx, packageID).WithField(logging.OwnerFieldKey, owner.Login)

	err = s.host.CreateRepository(ctx, owner, repo.Name)
	if errors.Is(err, ErrRepositoryExists) {
		return nil, fmt.Errorf("%s: %w", packageID, metastore.ErrPackageExists)
	}
	if err != nil {
		return nil, fmt.Errorf("create repository %s: %w", repo, err)
	}

	message := params.Message
	if message == "" {
		message = s.cfg.InitialCommitMessage
	}
	commit, err := s.initialize(ctx, repo, files, params.Author, message)
	if err != nil {
		if rollbackErr := s.host.DeleteRepository(ctx, repo); rollbackErr != nil {
			log.WithError(multierror.Append(err, rollbackErr)).
				WithField(logging.RepositoryFieldKey, repo.String()).
				Warn("Failed to delete partially created package repository")
		}
		return nil, err
	}
	log.WithField(logging.RevisionFieldKey, commit.SHA).Debug("Package created")
	return commitToRevision(packageID, commit, stored), nil
}

// initialize writes the initializer file on the new repository, giving it a default branch,
// and commits the package files on top of it
func (s *Store) initialize(ctx context.Context, repo Repo, files []lfs.File, author *metastore.Author, message string) (*Commit, error) {
	if err := s.host.CreateFile(ctx, repo, ReadmePath, readmeCommitMessage, []byte(DefaultReadme)); err != nil {
		return nil, fmt.Errorf("initialize repository %s: %w", repo, err)
	}
	return s.commitFiles(ctx, repo, files, author, message)
}

func (s *Store) Fetch(ctx context.Context, packageID, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, packageID, repo, revisionRef)
}

// resolveRevision returns the commit sha revisionRef stands for: the branch head when empty,
// the tagged commit for a tag name or revisionRef itself when it looks like a revision id
func (s *Store) resolveRevision(ctx context.Context, packageID string, repo Repo, revisionRef string) (string, error) {
	switch {
	case revisionRef == "":
		ref, err := s.host.GetRef(ctx, repo, s.branchRef())
		if errors.Is(err, ErrObjectNotFound) {
			return "", fmt.Errorf("%s: branch %s: %w", packageID, s.cfg.DefaultBranch, metastore.ErrRevisionNotFound)
		}
		if err != nil {
			return "", err
		}
		if ref.Type != ObjectTypeCommit {
			return "", fmt.Errorf("%s: branch %s points to a %s: %w", packageID, s.cfg.DefaultBranch, ref.Type, metastore.ErrStorageFault)
		}
		return ref.SHA, nil
	case !metastore.IsRevisionLike(revisionRef, RevisionLength):
		tag, err := s.tagFetch(ctx, packageID, repo, revisionRef, false)
		if err != nil {
			return "", err
		}
		return tag.RevisionRef, nil
	default:
		return strings.ToLower(revisionRef), nil
	}
}

func (s *Store) fetch(ctx context.Context, packageID string, repo Repo, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	sha, err := s.resolveRevision(ctx, packageID, repo, revisionRef)
	if err != nil {
		return nil, err
	}
	commit, err := s.host.GetCommit(ctx, repo, sha)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, fmt.Errorf("%s@%s: %w", packageID, revisionRef, metastore.ErrRevisionNotFound)
	}
	if err != nil {
		return nil, err
	}

	content, err := s.host.GetFileContents(ctx, repo, MetadataPath, commit.SHA)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, fmt.Errorf("%s@%s: %w", packageID, revisionRef, metastore.ErrMetadataNotFound)
	}
	if err != nil {
		return nil, err
	}
	var pkg metastore.Package
	if err := json.Unmarshal(content, &pkg); err != nil || pkg == nil {
		return nil, fmt.Errorf("%s@%s: %w", packageID, revisionRef, metastore.ErrCorruptMetadata)
	}
	return commitToRevision(packageID, commit, pkg), nil
}

func (s *Store) Update(ctx context.Context, packageID string, metadata metastore.Package, params metastore.UpdateParams) (*metastore.PackageRevisionInfo, error) {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	base, err := s.fetch(ctx, packageID, repo, params.BaseRevisionRef)
	if err != nil {
		return nil, err
	}
	if params.Partial {
		metadata = metastore.MergePackage(base.Package, metadata)
	}
	files, err := s.packageFiles(metadata)
	if err != nil {
		return nil, err
	}
	stored, err := storedPackage(files)
	if err != nil {
		return nil, err
	}
	message := params.Message
	if message == "" {
		message = s.cfg.DefaultCommitMessage
	}

	// lands on the current head, which may be newer than base
	commit, err := s.commitFiles(ctx, repo, files, params.Author, message)
	if err != nil {
		return nil, err
	}
	s.log(ctx, packageID).
		WithFields(logging.Fields{logging.RevisionFieldKey: commit.SHA, "base": base.Revision}).
		Debug("Package updated")
	return commitToRevision(packageID, commit, stored), nil
}

func (s *Store) Delete(ctx context.Context, packageID string) error {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return err
	}
	err = s.host.DeleteRepository(ctx, repo)
	if errors.Is(err, ErrObjectNotFound) {
		return fmt.Errorf("%s: %w", packageID, metastore.ErrPackageNotFound)
	}
	if err != nil {
		return err
	}
	s.log(ctx, packageID).Debug("Package deleted")
	return nil
}

func (s *Store) RevisionList(ctx context.Context, packageID string) ([]*metastore.PackageRevisionInfo, error) {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	commits, err := s.host.ListCommits(ctx, repo)
	if err != nil {
		return nil, err
	}
	revisions := make([]*metastore.PackageRevisionInfo, 0, len(commits))
	for _, c := range commits {
		// the root commit is the repository initializer, every later commit is a revision
		if len(c.Parents) == 0 {
			continue
		}
		revisions = append(revisions, commitToRevision(packageID, c, nil))
	}
	return revisions, nil
}

func (s *Store) RevisionFetch(ctx context.Context, packageID, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	repo, err := s.repository(ctx, packageID)
	if err != nil {
		return nil, err
	}
	return s.revisionFetch(ctx, packageID, repo, revisionRef)
}

func (s *Store) revisionFetch(ctx context.Context, packageID string, repo Repo, revisionRef string) (*metastore.PackageRevisionInfo, error) {
	rev, err := s.fetch(ctx, packageID, repo, revisionRef)
	if err != nil {
		return nil, err
	}
	return rev.WithoutPackage(), nil
}

func commitToRevision(packageID string, c *Commit, pkg metastore.Package) *metastore.PackageRevisionInfo {
	rev := &metastore.PackageRevisionInfo{
		PackageID:   packageID,
		Revision:    c.SHA,
		Description: c.Message,
		Package:     pkg,
	}
	if c.Author != nil {
		rev.Created = c.Author.Date
		rev.Author = signatureAuthor(c.Author)
	}
	return rev
}
